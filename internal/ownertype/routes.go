package ownertype

import (
	"field-console-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, ownerTypeService OwnerTypeServiceAPI) {
	ownerTypeController := &OwnerTypeController{Service: ownerTypeService}

	ownerTypeGroup := r.Group("/api/owner-types")
	ownerTypeGroup.Use(middlewares.AuthMiddleware())
	{
		ownerTypeGroup.GET("", ownerTypeController.GetAllOwnerTypes)
		ownerTypeGroup.POST("", ownerTypeController.CreateOwnerType)
	}
}

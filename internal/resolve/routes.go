package resolve

import (
	"field-console-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, resolveService ResolveServiceAPI) {
	resolveController := &ResolveController{ResolveService: resolveService}

	resolveGroup := r.Group("/api/personal")
	resolveGroup.Use(middlewares.AuthMiddleware())
	{
		resolveGroup.GET("/:userID/fields/effective", resolveController.GetEffectiveFields)
	}
}

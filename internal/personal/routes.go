package personal

import (
	"field-console-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, personalService PersonalServiceAPI, auditService AuditPort) {
	personalController := &PersonalFieldController{
		PersonalService: personalService,
		AuditService:    auditService,
	}

	personalGroup := r.Group("/api/personal")
	personalGroup.Use(middlewares.AuthMiddleware())
	{
		personalGroup.GET("/:userID/fields", personalController.ListFields)
		personalGroup.POST("/:userID/fields", personalController.CreateField)
		personalGroup.POST("/:userID/fields/reorder", personalController.ReorderFields)
		personalGroup.GET("/:userID/values", personalController.GetValues)
		personalGroup.PUT("/:userID/values", personalController.SaveValues)
		personalGroup.DELETE("/:userID/values/:fieldName", personalController.DeleteValue)
		personalGroup.POST("/:userID/attachments", personalController.UploadAttachment)
	}

	fieldGroup := r.Group("/api/personal-fields")
	fieldGroup.Use(middlewares.AuthMiddleware())
	{
		fieldGroup.PUT("/:id", personalController.UpdateField)
		fieldGroup.DELETE("/:id", personalController.DeleteField)
		fieldGroup.PATCH("/:id/status", personalController.ToggleFieldStatus)
		fieldGroup.POST("/:id/duplicate", personalController.DuplicateField)
	}
}

package template

import (
	"field-console-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, templateService TemplateServiceAPI, auditService AuditPort) {
	templateController := &TemplateFieldController{
		TemplateService: templateService,
		AuditService:    auditService,
	}

	templateGroup := r.Group("/api/templates")
	templateGroup.Use(middlewares.AuthMiddleware())
	{
		templateGroup.GET("/:typeID/fields", templateController.ListFields)
		templateGroup.POST("/:typeID/fields", templateController.CreateField)
		templateGroup.POST("/:typeID/fields/reorder", templateController.ReorderFields)
	}

	// id-scoped operations live under their own prefix; gin does not allow a
	// literal segment next to the :typeID wildcard above.
	fieldGroup := r.Group("/api/template-fields")
	fieldGroup.Use(middlewares.AuthMiddleware())
	{
		fieldGroup.PUT("/:id", templateController.UpdateField)
		fieldGroup.DELETE("/:id", templateController.DeleteField)
		fieldGroup.PATCH("/:id/status", templateController.ToggleFieldStatus)
		fieldGroup.POST("/:id/duplicate", templateController.DuplicateField)
	}
}

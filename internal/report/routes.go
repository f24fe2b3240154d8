package report

import (
	"field-console-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, reportService ReportServiceAPI) {
	reportController := &ReportController{ReportService: reportService}

	reportGroup := r.Group("/api/reports")
	reportGroup.Use(middlewares.AuthMiddleware())
	{
		reportGroup.GET("/templates/:typeID/fields/export", reportController.ExportTemplateFields)
		reportGroup.GET("/personal/:userID/fields/export", reportController.ExportEffectiveFields)
	}
}

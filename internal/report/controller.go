package report

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"field-console-api/internal/fields"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportController struct {
	ReportService ReportServiceAPI
}

func (rc *ReportController) ExportTemplateFields(c *gin.Context) {
	typeID, ok := parseUintParam(c, "typeID")
	if !ok {
		return
	}

	data, fileName, err := rc.ReportService.ExportTemplateFields(c.Request.Context(), typeID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (rc *ReportController) ExportEffectiveFields(c *gin.Context) {
	userID, ok := parseUintParam(c, "userID")
	if !ok {
		return
	}

	raw := c.Query("type_id")
	typeID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || typeID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid type_id is required"})
		return
	}

	data, fileName, err := rc.ReportService.ExportEffectiveFields(c.Request.Context(), uint(typeID), userID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func statusForError(err error) int {
	if errors.Is(err, fields.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid " + name + " is required"})
		return 0, false
	}
	return uint(v), true
}

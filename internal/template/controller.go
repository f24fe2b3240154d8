package template

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"field-console-api/internal/audit"
	"field-console-api/internal/fields"
	"field-console-api/internal/util"
)

type TemplateFieldController struct {
	TemplateService TemplateServiceAPI
	AuditService    AuditPort
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, fields.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, fields.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, fields.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func requestUserID(c *gin.Context) *uint {
	v, ok := c.Get("userID")
	if !ok {
		return nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	u := uint(f)
	return &u
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

func (tc *TemplateFieldController) audit(c *gin.Context, level, action, message string, ownerTypeID uint, fieldName string, metadata any) {
	name := fieldName
	_ = tc.AuditService.Log(audit.FieldAudit{
		Level:     level,
		Service:   "template",
		UserID:    requestUserID(c),
		Action:    action,
		Message:   message,
		FieldName: &name,
		Scopes:    pq.StringArray{util.ScopeTag("type", ownerTypeID)},
	}, metadata)
}

func (tc *TemplateFieldController) ListFields(c *gin.Context) {
	typeID, ok := parseUintParam(c, "typeID")
	if !ok {
		return
	}

	list, err := tc.TemplateService.List(c.Request.Context(), typeID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Template fields fetched successfully",
		"fields":  list,
	})
}

func (tc *TemplateFieldController) CreateField(c *gin.Context) {
	typeID, ok := parseUintParam(c, "typeID")
	if !ok {
		return
	}

	var input FieldInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := tc.TemplateService.Create(c.Request.Context(), typeID, input)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	tc.audit(c, "INFO", "CREATE_TEMPLATE_FIELD",
		fmt.Sprintf("Template field created : %s", created.Name), typeID, created.Name, nil)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Template field created successfully",
		"field":   created,
	})
}

func (tc *TemplateFieldController) UpdateField(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var input FieldInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := tc.TemplateService.Update(c.Request.Context(), id, input)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	tc.audit(c, "INFO", "UPDATE_TEMPLATE_FIELD",
		fmt.Sprintf("Template field updated : %s", updated.Name), updated.OwnerTypeID, updated.Name, nil)

	c.JSON(http.StatusOK, gin.H{
		"message": "Template field updated successfully",
		"field":   updated,
	})
}

func (tc *TemplateFieldController) DeleteField(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	deleted, err := tc.TemplateService.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	tc.audit(c, "WARN", "DELETE_TEMPLATE_FIELD",
		fmt.Sprintf("Template field deleted : %s (overrides demoted)", deleted.Name), deleted.OwnerTypeID, deleted.Name, nil)

	c.JSON(http.StatusOK, gin.H{
		"message": "Template field deleted successfully",
	})
}

func (tc *TemplateFieldController) ReorderFields(c *gin.Context) {
	typeID, ok := parseUintParam(c, "typeID")
	if !ok {
		return
	}

	var input struct {
		Items []ReorderItem `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := tc.TemplateService.Reorder(c.Request.Context(), typeID, input.Items); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	tc.audit(c, "INFO", "REORDER_TEMPLATE_FIELDS",
		fmt.Sprintf("Template fields reordered (%d moved)", len(input.Items)), typeID, "", map[string]any{"moved": len(input.Items)})

	c.JSON(http.StatusOK, gin.H{
		"message": "Template fields reordered successfully",
	})
}

func (tc *TemplateFieldController) ToggleFieldStatus(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var input StatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := tc.TemplateService.ToggleStatus(c.Request.Context(), id, *input.IsActive)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	tc.audit(c, "INFO", "TOGGLE_TEMPLATE_FIELD",
		fmt.Sprintf("Template field %s set active=%t", updated.Name, updated.IsActive), updated.OwnerTypeID, updated.Name, nil)

	c.JSON(http.StatusOK, gin.H{
		"message": "Template field status updated successfully",
		"field":   updated,
	})
}

func (tc *TemplateFieldController) DuplicateField(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	clone, err := tc.TemplateService.Duplicate(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	tc.audit(c, "INFO", "DUPLICATE_TEMPLATE_FIELD",
		fmt.Sprintf("Template field duplicated as : %s", clone.Name), clone.OwnerTypeID, clone.Name, nil)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Template field duplicated successfully",
		"field":   clone,
	})
}

package personal

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

type PersonalFieldController struct {
	PersonalService PersonalServiceAPI
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

func (pc *PersonalFieldController) audit(c *gin.Context, level, action, message string, ownerUserID uint, fieldName string, metadata any) {
	name := fieldName
	_ = pc.AuditService.Log(audit.FieldAudit{
		Level:     level,
		Service:   "personal",
		UserID:    requestUserID(c),
		Action:    action,
		Message:   message,
		FieldName: &name,
		Scopes:    pq.StringArray{util.ScopeTag("user", ownerUserID)},
	}, metadata)
}

func (pc *PersonalFieldController) ListFields(c *gin.Context) {
	userID, ok := parseUintParam(c, "userID")
	if !ok {
		return
	}

	list, err := pc.PersonalService.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Personal fields fetched successfully",
		"fields":  list,
	})
}

func (pc *PersonalFieldController) CreateField(c *gin.Context) {
	userID, ok := parseUintParam(c, "userID")
	if !ok {
		return
	}

	var input FieldInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := pc.PersonalService.Create(c.Request.Context(), userID, input)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	pc.audit(c, "INFO", "CREATE_PERSONAL_FIELD",
		fmt.Sprintf("Personal field created : %s", created.Name), userID, created.Name, nil)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Personal field created successfully",
		"field":   created,
	})
}

func (pc *PersonalFieldController) UpdateField(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var input FieldInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := pc.PersonalService.Update(c.Request.Context(), id, input)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	pc.audit(c, "INFO", "UPDATE_PERSONAL_FIELD",
		fmt.Sprintf("Personal field updated : %s", updated.Name), updated.OwnerUserID, updated.Name, nil)

	c.JSON(http.StatusOK, gin.H{
		"message": "Personal field updated successfully",
		"field":   updated,
	})
}

func (pc *PersonalFieldController) DeleteField(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	deleted, err := pc.PersonalService.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	pc.audit(c, "WARN", "DELETE_PERSONAL_FIELD",
		fmt.Sprintf("Personal field deleted : %s (stored value kept)", deleted.Name), deleted.OwnerUserID, deleted.Name, nil)

	c.JSON(http.StatusOK, gin.H{
		"message": "Personal field deleted successfully",
	})
}

func (pc *PersonalFieldController) ReorderFields(c *gin.Context) {
	userID, ok := parseUintParam(c, "userID")
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

	if err := pc.PersonalService.Reorder(c.Request.Context(), userID, input.Items); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	pc.audit(c, "INFO", "REORDER_PERSONAL_FIELDS",
		fmt.Sprintf("Personal fields reordered (%d moved)", len(input.Items)), userID, "", map[string]any{"moved": len(input.Items)})

	c.JSON(http.StatusOK, gin.H{
		"message": "Personal fields reordered successfully",
	})
}

func (pc *PersonalFieldController) ToggleFieldStatus(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var input StatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := pc.PersonalService.ToggleStatus(c.Request.Context(), id, *input.IsActive)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	pc.audit(c, "INFO", "TOGGLE_PERSONAL_FIELD",
		fmt.Sprintf("Personal field %s set active=%t", updated.Name, updated.IsActive), updated.OwnerUserID, updated.Name, nil)

	c.JSON(http.StatusOK, gin.H{
		"message": "Personal field status updated successfully",
		"field":   updated,
	})
}

func (pc *PersonalFieldController) DuplicateField(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	clone, err := pc.PersonalService.Duplicate(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	pc.audit(c, "INFO", "DUPLICATE_PERSONAL_FIELD",
		fmt.Sprintf("Personal field duplicated as : %s", clone.Name), clone.OwnerUserID, clone.Name, nil)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Personal field duplicated successfully",
		"field":   clone,
	})
}

// SaveValues upserts a partial value map. With ?type_id= the payload is
// validated against the effective schema first; failures come back as 422
// with a field->message map and nothing is written.
func (pc *PersonalFieldController) SaveValues(c *gin.Context) {
	userID, ok := parseUintParam(c, "userID")
	if !ok {
		return
	}

	var input SaveValuesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var typeID *uint
	if raw := c.Query("type_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || v == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "valid type_id is required"})
			return
		}
		u := uint(v)
		typeID = &u
	}

	validationErrs, err := pc.PersonalService.SaveValues(c.Request.Context(), userID, typeID, input.Values)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	if len(validationErrs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation failed",
			"fields": validationErrs,
		})
		return
	}

	pc.audit(c, "INFO", "SAVE_FIELD_VALUES",
		fmt.Sprintf("Field values saved (%d keys)", len(input.Values)), userID, "", map[string]any{"keys": len(input.Values)})

	c.JSON(http.StatusOK, gin.H{
		"message": "Field values saved successfully",
	})
}

func (pc *PersonalFieldController) GetValues(c *gin.Context) {
	userID, ok := parseUintParam(c, "userID")
	if !ok {
		return
	}

	values, err := pc.PersonalService.LoadValues(c.Request.Context(), userID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Field values fetched successfully",
		"values":  values,
	})
}

func (pc *PersonalFieldController) DeleteValue(c *gin.Context) {
	userID, ok := parseUintParam(c, "userID")
	if !ok {
		return
	}
	fieldName := c.Param("fieldName")
	if fieldName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid fieldName is required"})
		return
	}

	if err := pc.PersonalService.DeleteValue(c.Request.Context(), userID, fieldName); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	pc.audit(c, "WARN", "DELETE_FIELD_VALUE",
		fmt.Sprintf("Field value deleted : %s", fieldName), userID, fieldName, nil)

	c.JSON(http.StatusOK, gin.H{
		"message": "Field value deleted successfully",
	})
}

func (pc *PersonalFieldController) UploadAttachment(c *gin.Context) {
	userID, ok := parseUintParam(c, "userID")
	if !ok {
		return
	}

	var input AttachmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, size, err := pc.PersonalService.UploadAttachment(c.Request.Context(), userID, input)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	pc.audit(c, "INFO", "UPLOAD_FIELD_ATTACHMENT",
		fmt.Sprintf("Attachment stored for field : %s", input.FieldName), userID, input.FieldName,
		map[string]any{"size": size})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Attachment uploaded successfully",
		"url":     url,
		"size":    size,
	})
}

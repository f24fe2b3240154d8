package personal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"field-console-api/internal/audit"
	"field-console-api/internal/fields"
)

type personalServiceStub struct {
	listFn        func(ctx context.Context, ownerUserID uint) ([]PersonalField, error)
	createFn      func(ctx context.Context, ownerUserID uint, in FieldInput) (PersonalField, error)
	updateFn      func(ctx context.Context, id uint, in FieldInput) (PersonalField, error)
	deleteFn      func(ctx context.Context, id uint) (PersonalField, error)
	reorderFn     func(ctx context.Context, ownerUserID uint, items []ReorderItem) error
	toggleFn      func(ctx context.Context, id uint, isActive bool) (PersonalField, error)
	duplicateFn   func(ctx context.Context, id uint) (PersonalField, error)
	saveValuesFn  func(ctx context.Context, ownerUserID uint, ownerTypeID *uint, values map[string]any) (map[string]string, error)
	loadValuesFn  func(ctx context.Context, ownerUserID uint) (map[string]any, error)
	deleteValueFn func(ctx context.Context, ownerUserID uint, fieldName string) error
	uploadFn      func(ctx context.Context, ownerUserID uint, in AttachmentInput) (string, int64, error)
}

func (s *personalServiceStub) List(ctx context.Context, ownerUserID uint) ([]PersonalField, error) {
	return s.listFn(ctx, ownerUserID)
}
func (s *personalServiceStub) Create(ctx context.Context, ownerUserID uint, in FieldInput) (PersonalField, error) {
	return s.createFn(ctx, ownerUserID, in)
}
func (s *personalServiceStub) Update(ctx context.Context, id uint, in FieldInput) (PersonalField, error) {
	return s.updateFn(ctx, id, in)
}
func (s *personalServiceStub) Delete(ctx context.Context, id uint) (PersonalField, error) {
	return s.deleteFn(ctx, id)
}
func (s *personalServiceStub) Reorder(ctx context.Context, ownerUserID uint, items []ReorderItem) error {
	return s.reorderFn(ctx, ownerUserID, items)
}
func (s *personalServiceStub) ToggleStatus(ctx context.Context, id uint, isActive bool) (PersonalField, error) {
	return s.toggleFn(ctx, id, isActive)
}
func (s *personalServiceStub) Duplicate(ctx context.Context, id uint) (PersonalField, error) {
	return s.duplicateFn(ctx, id)
}
func (s *personalServiceStub) SaveValues(ctx context.Context, ownerUserID uint, ownerTypeID *uint, values map[string]any) (map[string]string, error) {
	return s.saveValuesFn(ctx, ownerUserID, ownerTypeID, values)
}
func (s *personalServiceStub) LoadValues(ctx context.Context, ownerUserID uint) (map[string]any, error) {
	return s.loadValuesFn(ctx, ownerUserID)
}
func (s *personalServiceStub) DeleteValue(ctx context.Context, ownerUserID uint, fieldName string) error {
	return s.deleteValueFn(ctx, ownerUserID, fieldName)
}
func (s *personalServiceStub) UploadAttachment(ctx context.Context, ownerUserID uint, in AttachmentInput) (string, int64, error) {
	return s.uploadFn(ctx, ownerUserID, in)
}

type auditStub struct {
	entries []audit.FieldAudit
}

func (a *auditStub) Log(entry audit.FieldAudit, metadata interface{}) error {
	a.entries = append(a.entries, entry)
	return nil
}

func perform(t *testing.T, method, path string, body any, register func(r *gin.Engine)) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	register(r)

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("json unmarshal: %v body=%s", err, string(body))
	}
	return m
}

func TestCreateField_201_WritesAudit(t *testing.T) {
	stub := &personalServiceStub{
		createFn: func(_ context.Context, ownerUserID uint, in FieldInput) (PersonalField, error) {
			return PersonalField{ID: 1, OwnerUserID: ownerUserID, Name: in.Name}, nil
		},
	}
	audits := &auditStub{}
	pc := &PersonalFieldController{PersonalService: stub, AuditService: audits}

	body := map[string]any{"name": "nickname", "label": "Nickname", "type": "text"}
	w := perform(t, "POST", "/api/personal/7/fields", body, func(r *gin.Engine) {
		r.POST("/api/personal/:userID/fields", pc.CreateField)
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
	}
	if len(audits.entries) != 1 || audits.entries[0].Service != "personal" {
		t.Fatalf("audit entries = %+v", audits.entries)
	}
}

func TestCreateField_400_BadParent(t *testing.T) {
	stub := &personalServiceStub{
		createFn: func(context.Context, uint, FieldInput) (PersonalField, error) {
			return PersonalField{}, fmt.Errorf("%w: parent field 99 does not exist", fields.ErrInvalid)
		},
	}
	pc := &PersonalFieldController{PersonalService: stub, AuditService: &auditStub{}}

	body := map[string]any{"name": "phone", "label": "Phone", "type": "text", "parent_field_id": 99}
	w := perform(t, "POST", "/api/personal/7/fields", body, func(r *gin.Engine) {
		r.POST("/api/personal/:userID/fields", pc.CreateField)
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestSaveValues_422_OnValidationFailure(t *testing.T) {
	stub := &personalServiceStub{
		saveValuesFn: func(_ context.Context, _ uint, ownerTypeID *uint, _ map[string]any) (map[string]string, error) {
			if ownerTypeID == nil || *ownerTypeID != 3 {
				t.Fatalf("type id = %v", ownerTypeID)
			}
			return map[string]string{"email": "Email is required"}, nil
		},
	}
	pc := &PersonalFieldController{PersonalService: stub, AuditService: &auditStub{}}

	body := map[string]any{"values": map[string]any{"email": ""}}
	w := perform(t, "PUT", "/api/personal/7/values?type_id=3", body, func(r *gin.Engine) {
		r.PUT("/api/personal/:userID/values", pc.SaveValues)
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", w.Code, w.Body.String())
	}
	m := decodeJSON(t, w.Body.Bytes())
	fieldsMap, _ := m["fields"].(map[string]any)
	if fieldsMap["email"] != "Email is required" {
		t.Fatalf("failure map = %v", m)
	}
}

func TestSaveValues_200(t *testing.T) {
	stub := &personalServiceStub{
		saveValuesFn: func(context.Context, uint, *uint, map[string]any) (map[string]string, error) {
			return nil, nil
		},
	}
	audits := &auditStub{}
	pc := &PersonalFieldController{PersonalService: stub, AuditService: audits}

	body := map[string]any{"values": map[string]any{"nickname": "kat"}}
	w := perform(t, "PUT", "/api/personal/7/values", body, func(r *gin.Engine) {
		r.PUT("/api/personal/:userID/values", pc.SaveValues)
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	if len(audits.entries) != 1 || audits.entries[0].Action != "SAVE_FIELD_VALUES" {
		t.Fatalf("audit entries = %+v", audits.entries)
	}
}

func TestSaveValues_400_BadTypeID(t *testing.T) {
	pc := &PersonalFieldController{PersonalService: &personalServiceStub{}, AuditService: &auditStub{}}

	body := map[string]any{"values": map[string]any{}}
	w := perform(t, "PUT", "/api/personal/7/values?type_id=zero", body, func(r *gin.Engine) {
		r.PUT("/api/personal/:userID/values", pc.SaveValues)
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestDeleteValue_404(t *testing.T) {
	stub := &personalServiceStub{
		deleteValueFn: func(context.Context, uint, string) error {
			return fmt.Errorf("value %q: %w", "a", fields.ErrNotFound)
		},
	}
	pc := &PersonalFieldController{PersonalService: stub, AuditService: &auditStub{}}

	w := perform(t, "DELETE", "/api/personal/7/values/a", nil, func(r *gin.Engine) {
		r.DELETE("/api/personal/:userID/values/:fieldName", pc.DeleteValue)
	})

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestUploadAttachment_201(t *testing.T) {
	stub := &personalServiceStub{
		uploadFn: func(_ context.Context, _ uint, in AttachmentInput) (string, int64, error) {
			return "https://storage.googleapis.com/b/attachments/7/" + in.FieldName, 42, nil
		},
	}
	audits := &auditStub{}
	pc := &PersonalFieldController{PersonalService: stub, AuditService: audits}

	body := map[string]any{
		"field_name":  "contract",
		"file_name":   "contract.pdf",
		"mime_type":   "application/pdf",
		"data_base64": "JVBERi0=",
	}
	w := perform(t, "POST", "/api/personal/7/attachments", body, func(r *gin.Engine) {
		r.POST("/api/personal/:userID/attachments", pc.UploadAttachment)
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
	}
	m := decodeJSON(t, w.Body.Bytes())
	if m["size"] != float64(42) {
		t.Fatalf("size = %v", m["size"])
	}
	if len(audits.entries) != 1 || audits.entries[0].Action != "UPLOAD_FIELD_ATTACHMENT" {
		t.Fatalf("audit entries = %+v", audits.entries)
	}
}

func TestUploadAttachment_400_MissingPayload(t *testing.T) {
	pc := &PersonalFieldController{PersonalService: &personalServiceStub{}, AuditService: &auditStub{}}

	body := map[string]any{"field_name": "contract"}
	w := perform(t, "POST", "/api/personal/7/attachments", body, func(r *gin.Engine) {
		r.POST("/api/personal/:userID/attachments", pc.UploadAttachment)
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestGetValues_200(t *testing.T) {
	stub := &personalServiceStub{
		loadValuesFn: func(context.Context, uint) (map[string]any, error) {
			return map[string]any{"nickname": "kat"}, nil
		},
	}
	pc := &PersonalFieldController{PersonalService: stub, AuditService: &auditStub{}}

	w := perform(t, "GET", "/api/personal/7/values", nil, func(r *gin.Engine) {
		r.GET("/api/personal/:userID/values", pc.GetValues)
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	m := decodeJSON(t, w.Body.Bytes())
	values, _ := m["values"].(map[string]any)
	if values["nickname"] != "kat" {
		t.Fatalf("values = %v", m)
	}
}

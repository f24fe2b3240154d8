package personal

import (
	"context"

	"field-console-api/internal/audit"
	"field-console-api/internal/fields"
)

type PersonalServiceAPI interface {
	List(ctx context.Context, ownerUserID uint) ([]PersonalField, error)
	Create(ctx context.Context, ownerUserID uint, in FieldInput) (PersonalField, error)
	Update(ctx context.Context, id uint, in FieldInput) (PersonalField, error)
	Delete(ctx context.Context, id uint) (PersonalField, error)
	Reorder(ctx context.Context, ownerUserID uint, items []ReorderItem) error
	ToggleStatus(ctx context.Context, id uint, isActive bool) (PersonalField, error)
	Duplicate(ctx context.Context, id uint) (PersonalField, error)
	SaveValues(ctx context.Context, ownerUserID uint, ownerTypeID *uint, values map[string]any) (map[string]string, error)
	LoadValues(ctx context.Context, ownerUserID uint) (map[string]any, error)
	DeleteValue(ctx context.Context, ownerUserID uint, fieldName string) error
	UploadAttachment(ctx context.Context, ownerUserID uint, in AttachmentInput) (string, int64, error)
}

// EffectiveResolver is the slice of the resolution engine the value store
// needs for write-time validation.
type EffectiveResolver interface {
	EffectiveFields(ctx context.Context, ownerTypeID, ownerUserID uint) ([]fields.EffectiveField, error)
}

type AuditPort interface {
	Log(entry audit.FieldAudit, metadata interface{}) error
}

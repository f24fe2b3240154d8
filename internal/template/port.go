package template

import (
	"context"

	"field-console-api/internal/audit"
)

type TemplateServiceAPI interface {
	List(ctx context.Context, ownerTypeID uint) ([]TemplateField, error)
	Create(ctx context.Context, ownerTypeID uint, in FieldInput) (*TemplateField, error)
	Update(ctx context.Context, id uint, in FieldInput) (*TemplateField, error)
	Delete(ctx context.Context, id uint) (*TemplateField, error)
	Reorder(ctx context.Context, ownerTypeID uint, items []ReorderItem) error
	ToggleStatus(ctx context.Context, id uint, isActive bool) (*TemplateField, error)
	Duplicate(ctx context.Context, id uint) (*TemplateField, error)
}

type AuditPort interface {
	Log(entry audit.FieldAudit, metadata interface{}) error
}

// TypeRegistry answers whether an owner type exists; satisfied by the owner
// type service.
type TypeRegistry interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

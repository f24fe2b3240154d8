package template

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"field-console-api/internal/fields"
)

// TemplateField is a field definition scoped to an owner type. Every user of
// that type inherits it unless they override it with a personal field.
type TemplateField struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerTypeID   uint           `gorm:"not null;index;uniqueIndex:uq_template_fields_scope_name" json:"owner_type_id"`
	Name          string         `gorm:"size:150;not null;uniqueIndex:uq_template_fields_scope_name" json:"name"`
	Label         string         `gorm:"type:text;not null" json:"label"`
	Description   string         `gorm:"type:text;not null;default:''" json:"description"`
	FieldType     string         `gorm:"size:50;not null;column:field_type" json:"type"`
	Validation    datatypes.JSON `gorm:"type:jsonb" json:"validation"`
	Options       datatypes.JSON `gorm:"type:jsonb" json:"options,omitempty"`
	DefaultValue  datatypes.JSON `gorm:"type:jsonb" json:"default_value,omitempty"`
	Placeholder   string         `gorm:"type:text;not null;default:''" json:"placeholder"`
	IsInheritable bool           `gorm:"not null" json:"is_inheritable"`
	SortOrder     int            `gorm:"not null;default:0;column:sort_order" json:"order"`
	Metadata      datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	IsActive      bool           `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (TemplateField) TableName() string {
	return "template_fields"
}

// FieldInput is the create/update payload for a field definition.
type FieldInput struct {
	Name          string                `json:"name" binding:"required"`
	Label         string                `json:"label" binding:"required"`
	Description   string                `json:"description"`
	Type          fields.FieldType      `json:"type" binding:"required"`
	Validation    fields.ValidationRule `json:"validation"`
	Options       []fields.Option       `json:"options"`
	DefaultValue  any                   `json:"default_value"`
	Placeholder   string                `json:"placeholder"`
	IsInheritable *bool                 `json:"is_inheritable"`
	Order         *int                  `json:"order"`
	Metadata      map[string]any        `json:"metadata"`
	IsActive      *bool                 `json:"is_active"`
}

type ReorderItem struct {
	FieldID uint `json:"field_id" binding:"required"`
	Order   int  `json:"order"`
}

type StatusInput struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// Definition projects the stored row into the shape the engines consume.
func (tf TemplateField) Definition() fields.Definition {
	var rule fields.ValidationRule
	if len(tf.Validation) > 0 {
		_ = json.Unmarshal(tf.Validation, &rule)
	}
	var opts []fields.Option
	if len(tf.Options) > 0 {
		_ = json.Unmarshal(tf.Options, &opts)
	}
	var defVal any
	if len(tf.DefaultValue) > 0 {
		_ = json.Unmarshal(tf.DefaultValue, &defVal)
	}
	var meta map[string]any
	if len(tf.Metadata) > 0 {
		_ = json.Unmarshal(tf.Metadata, &meta)
	}

	return fields.Definition{
		Name:          tf.Name,
		Label:         tf.Label,
		Description:   tf.Description,
		Type:          fields.FieldType(tf.FieldType),
		Validation:    rule,
		Options:       opts,
		DefaultValue:  defVal,
		Placeholder:   tf.Placeholder,
		IsInheritable: tf.IsInheritable,
		Order:         tf.SortOrder,
		Metadata:      meta,
		IsActive:      tf.IsActive,
	}
}

// Source pairs the row id with its definition for the resolution engine.
func (tf TemplateField) Source() fields.TemplateSource {
	return fields.TemplateSource{ID: tf.ID, Definition: tf.Definition()}
}

// Definition builds the engine-side view of the payload for definition-time
// validation before anything touches the database.
func (in FieldInput) Definition() fields.Definition {
	d := fields.Definition{
		Name:          in.Name,
		Label:         in.Label,
		Description:   in.Description,
		Type:          in.Type,
		Validation:    in.Validation,
		Options:       in.Options,
		DefaultValue:  in.DefaultValue,
		Placeholder:   in.Placeholder,
		IsInheritable: true,
		IsActive:      true,
	}
	if in.IsInheritable != nil {
		d.IsInheritable = *in.IsInheritable
	}
	if in.Order != nil {
		d.Order = *in.Order
	}
	if in.IsActive != nil {
		d.IsActive = *in.IsActive
	}
	d.Metadata = in.Metadata
	return d
}

func marshalJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

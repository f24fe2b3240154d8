package personal

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"field-console-api/internal/fields"
)

// PersonalField is a field definition scoped to a single user. With a parent
// reference it overrides the inherited template field; without one it is a
// freestanding personal field.
type PersonalField struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerUserID   uint           `gorm:"not null;index;uniqueIndex:uq_personal_fields_scope_name" json:"owner_user_id"`
	ParentFieldID *uint          `gorm:"index" json:"parent_field_id,omitempty"`
	Name          string         `gorm:"size:150;not null;uniqueIndex:uq_personal_fields_scope_name" json:"name"`
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

func (PersonalField) TableName() string {
	return "personal_fields"
}

// FieldValue stores one user's value for a field, keyed by the field's
// machine name. Its lifecycle is independent of the schema: the row survives
// deletion of the field definition and is only removed explicitly.
type FieldValue struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerUserID uint      `gorm:"not null;index;uniqueIndex:uq_field_values_owner_name" json:"owner_user_id"`
	FieldName   string    `gorm:"size:150;not null;uniqueIndex:uq_field_values_owner_name" json:"field_name"`
	Value       JSONValue `gorm:"type:jsonb" json:"value"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (FieldValue) TableName() string {
	return "field_values"
}

// JSONValue carries a stored value's jsonb document. Values can be bare JSON
// scalars, which some drivers hand back as native numbers or booleans instead
// of text, so Scan re-encodes those before treating the input as raw JSON.
type JSONValue datatypes.JSON

func (j JSONValue) Value() (driver.Value, error) {
	return datatypes.JSON(j).Value()
}

func (j *JSONValue) Scan(src any) error {
	switch src.(type) {
	case int64, float64, bool:
		b, err := json.Marshal(src)
		if err != nil {
			return err
		}
		*j = JSONValue(b)
		return nil
	}
	var raw datatypes.JSON
	if err := raw.Scan(src); err != nil {
		return err
	}
	*j = JSONValue(raw)
	return nil
}

func (j JSONValue) MarshalJSON() ([]byte, error) {
	return datatypes.JSON(j).MarshalJSON()
}

func (j *JSONValue) UnmarshalJSON(b []byte) error {
	var raw datatypes.JSON
	if err := raw.UnmarshalJSON(b); err != nil {
		return err
	}
	*j = JSONValue(raw)
	return nil
}

// FieldInput is the create/update payload for a personal field. A non-nil
// ParentFieldID makes the record an override of that template field.
type FieldInput struct {
	Name          string                `json:"name" binding:"required"`
	Label         string                `json:"label" binding:"required"`
	Description   string                `json:"description"`
	Type          fields.FieldType      `json:"type" binding:"required"`
	Validation    fields.ValidationRule `json:"validation"`
	Options       []fields.Option       `json:"options"`
	DefaultValue  any                   `json:"default_value"`
	Placeholder   string                `json:"placeholder"`
	ParentFieldID *uint                 `json:"parent_field_id"`
	OwnerTypeID   *uint                 `json:"owner_type_id"`
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

type SaveValuesInput struct {
	Values map[string]any `json:"values" binding:"required"`
}

type AttachmentInput struct {
	FieldName  string `json:"field_name" binding:"required"`
	FileName   string `json:"file_name" binding:"required"`
	MimeType   string `json:"mime_type"`
	DataBase64 string `json:"data_base64" binding:"required"`
}

// Definition projects the stored row into the shape the engines consume.
func (pf PersonalField) Definition() fields.Definition {
	var rule fields.ValidationRule
	if len(pf.Validation) > 0 {
		_ = json.Unmarshal(pf.Validation, &rule)
	}
	var opts []fields.Option
	if len(pf.Options) > 0 {
		_ = json.Unmarshal(pf.Options, &opts)
	}
	var defVal any
	if len(pf.DefaultValue) > 0 {
		_ = json.Unmarshal(pf.DefaultValue, &defVal)
	}
	var meta map[string]any
	if len(pf.Metadata) > 0 {
		_ = json.Unmarshal(pf.Metadata, &meta)
	}

	return fields.Definition{
		Name:          pf.Name,
		Label:         pf.Label,
		Description:   pf.Description,
		Type:          fields.FieldType(pf.FieldType),
		Validation:    rule,
		Options:       opts,
		DefaultValue:  defVal,
		Placeholder:   pf.Placeholder,
		IsInheritable: pf.IsInheritable,
		Order:         pf.SortOrder,
		Metadata:      meta,
		IsActive:      pf.IsActive,
	}
}

// Source pairs the row with its parent reference for the resolution engine.
func (pf PersonalField) Source() fields.PersonalSource {
	return fields.PersonalSource{
		ID:            pf.ID,
		ParentFieldID: pf.ParentFieldID,
		Definition:    pf.Definition(),
	}
}

func (in FieldInput) Definition() fields.Definition {
	d := fields.Definition{
		Name:         in.Name,
		Label:        in.Label,
		Description:  in.Description,
		Type:         in.Type,
		Validation:   in.Validation,
		Options:      in.Options,
		DefaultValue: in.DefaultValue,
		Placeholder:  in.Placeholder,
		IsActive:     true,
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

package fields

import (
	"fmt"
	"regexp"
)

type FieldType string

const (
	TypeText        FieldType = "text"
	TypeTextarea    FieldType = "textarea"
	TypeNumber      FieldType = "number"
	TypeEmail       FieldType = "email"
	TypePhone       FieldType = "phone"
	TypeURL         FieldType = "url"
	TypeDate        FieldType = "date"
	TypeDatetime    FieldType = "datetime"
	TypeSelect      FieldType = "select"
	TypeMultiselect FieldType = "multiselect"
	TypeRadio       FieldType = "radio"
	TypeCheckbox    FieldType = "checkbox"
	TypeFile        FieldType = "file"
)

// Valid reports whether ft is one of the known field types. The switch lists
// every variant on purpose: adding a type means touching this function.
func (ft FieldType) Valid() bool {
	switch ft {
	case TypeText, TypeTextarea, TypeNumber, TypeEmail, TypePhone, TypeURL,
		TypeDate, TypeDatetime, TypeSelect, TypeMultiselect, TypeRadio,
		TypeCheckbox, TypeFile:
		return true
	}
	return false
}

// IsChoice reports whether ft must carry options.
func (ft FieldType) IsChoice() bool {
	switch ft {
	case TypeSelect, TypeMultiselect, TypeRadio:
		return true
	}
	return false
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type ValidationRule struct {
	Required      bool     `json:"required"`
	MinLength     *int     `json:"min_length,omitempty"`
	MaxLength     *int     `json:"max_length,omitempty"`
	Min           *float64 `json:"min,omitempty"`
	Max           *float64 `json:"max,omitempty"`
	Pattern       string   `json:"pattern,omitempty"`
	CustomMessage string   `json:"custom_message,omitempty"`
}

// Definition is the shape shared by template and personal field rows. The
// stores persist it; the resolution and validation engines only read it.
type Definition struct {
	Name          string         `json:"name"`
	Label         string         `json:"label"`
	Description   string         `json:"description,omitempty"`
	Type          FieldType      `json:"type"`
	Validation    ValidationRule `json:"validation"`
	Options       []Option       `json:"options,omitempty"`
	DefaultValue  any            `json:"default_value,omitempty"`
	Placeholder   string         `json:"placeholder,omitempty"`
	IsInheritable bool           `json:"is_inheritable"`
	Order         int            `json:"order"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	IsActive      bool           `json:"is_active"`
}

var nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidName reports whether s is a legal machine key for a field.
func ValidName(s string) bool {
	return nameRe.MatchString(s)
}

// ValidateDefinition enforces the definition-time invariants. Everything it
// rejects is rejected before any row is written, wrapped in ErrInvalid.
func (d Definition) ValidateDefinition() error {
	if !ValidName(d.Name) {
		return fmt.Errorf("%w: name %q must match %s", ErrInvalid, d.Name, nameRe.String())
	}
	if !d.Type.Valid() {
		return fmt.Errorf("%w: unknown field type %q", ErrInvalid, d.Type)
	}
	if d.Type.IsChoice() && len(d.Options) == 0 {
		return fmt.Errorf("%w: type %q requires at least one option", ErrInvalid, d.Type)
	}
	if !d.Type.IsChoice() && len(d.Options) > 0 {
		return fmt.Errorf("%w: type %q must not carry options", ErrInvalid, d.Type)
	}
	if d.Validation.Min != nil && d.Validation.Max != nil && *d.Validation.Min >= *d.Validation.Max {
		return fmt.Errorf("%w: min (%v) must be less than max (%v)", ErrInvalid, *d.Validation.Min, *d.Validation.Max)
	}
	if d.Validation.Pattern != "" {
		if _, err := regexp.Compile(d.Validation.Pattern); err != nil {
			return fmt.Errorf("%w: bad pattern %q: %v", ErrInvalid, d.Validation.Pattern, err)
		}
	}
	return nil
}

// DisplayLabel is the name shown to operators in error messages.
func (d Definition) DisplayLabel() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Name
}

package template

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"field-console-api/internal/fields"
	"field-console-api/internal/util"
)

type TemplateFieldService struct {
	DB    *gorm.DB
	Types TypeRegistry
}

func (s *TemplateFieldService) ownerTypeExists(ctx context.Context, ownerTypeID uint) error {
	ok, err := s.Types.Exists(ctx, ownerTypeID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: owner type %d", fields.ErrNotFound, ownerTypeID)
	}
	return nil
}

// List returns the type's fields in stored order.
func (s *TemplateFieldService) List(ctx context.Context, ownerTypeID uint) ([]TemplateField, error) {
	if err := s.ownerTypeExists(ctx, ownerTypeID); err != nil {
		return nil, err
	}

	var out []TemplateField
	result := s.DB.WithContext(ctx).
		Where("owner_type_id = ?", ownerTypeID).
		Order("sort_order ASC, id ASC").
		Find(&out)
	if result.Error != nil {
		return nil, result.Error
	}
	return out, nil
}

func (s *TemplateFieldService) Create(ctx context.Context, ownerTypeID uint, in FieldInput) (*TemplateField, error) {
	def := in.Definition()
	if err := def.ValidateDefinition(); err != nil {
		return nil, err
	}

	if err := s.ownerTypeExists(ctx, ownerTypeID); err != nil {
		return nil, err
	}

	var created TemplateField
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&TemplateField{}).
			Where("owner_type_id = ? AND name = ?", ownerTypeID, in.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: %q", fields.ErrConflict, in.Name)
		}

		order := 0
		if in.Order != nil {
			order = *in.Order
		} else {
			next, err := nextOrder(tx, ownerTypeID)
			if err != nil {
				return err
			}
			order = next
		}

		created = TemplateField{
			OwnerTypeID:   ownerTypeID,
			Name:          in.Name,
			Label:         in.Label,
			Description:   in.Description,
			FieldType:     string(in.Type),
			Validation:    marshalJSON(in.Validation),
			Options:       marshalJSON(in.Options),
			DefaultValue:  marshalJSON(in.DefaultValue),
			Placeholder:   in.Placeholder,
			IsInheritable: def.IsInheritable,
			SortOrder:     order,
			Metadata:      marshalJSON(in.Metadata),
			IsActive:      def.IsActive,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *TemplateFieldService) Update(ctx context.Context, id uint, in FieldInput) (*TemplateField, error) {
	var existing TemplateField
	if err := s.DB.WithContext(ctx).First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: template field %d", fields.ErrNotFound, id)
		}
		return nil, err
	}

	// The machine key is immutable once created.
	if in.Name != existing.Name {
		return nil, fmt.Errorf("%w: name is immutable (stored %q)", fields.ErrInvalid, existing.Name)
	}

	def := in.Definition()
	if err := def.ValidateDefinition(); err != nil {
		return nil, err
	}

	existing.Label = in.Label
	existing.Description = in.Description
	existing.FieldType = string(in.Type)
	existing.Validation = marshalJSON(in.Validation)
	existing.Options = marshalJSON(in.Options)
	existing.DefaultValue = marshalJSON(in.DefaultValue)
	existing.Placeholder = in.Placeholder
	existing.Metadata = marshalJSON(in.Metadata)
	if in.IsInheritable != nil {
		existing.IsInheritable = *in.IsInheritable
	}
	if in.Order != nil {
		existing.SortOrder = *in.Order
	}
	if in.IsActive != nil {
		existing.IsActive = *in.IsActive
	}

	if err := s.DB.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// Delete removes the template field and demotes any personal overrides that
// referenced it to personal-only fields, in the same transaction. Values
// stored under the field's name are kept; value lifecycle is independent of
// schema lifecycle.
func (s *TemplateFieldService) Delete(ctx context.Context, id uint) (*TemplateField, error) {
	var deleted TemplateField
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deleted, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: template field %d", fields.ErrNotFound, id)
			}
			return err
		}

		if err := tx.Table("personal_fields").
			Where("parent_field_id = ?", id).
			Update("parent_field_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&TemplateField{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// Reorder applies the supplied positions atomically; fields not in the map
// keep their order.
func (s *TemplateFieldService) Reorder(ctx context.Context, ownerTypeID uint, items []ReorderItem) error {
	if len(items) == 0 {
		return nil
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			res := tx.Model(&TemplateField{}).
				Where("id = ? AND owner_type_id = ?", item.FieldID, ownerTypeID).
				Update("sort_order", item.Order)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: template field %d in type %d", fields.ErrNotFound, item.FieldID, ownerTypeID)
			}
		}
		return nil
	})
}

func (s *TemplateFieldService) ToggleStatus(ctx context.Context, id uint, isActive bool) (*TemplateField, error) {
	var existing TemplateField
	if err := s.DB.WithContext(ctx).First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: template field %d", fields.ErrNotFound, id)
		}
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Model(&existing).
		UpdateColumn("is_active", isActive).Error; err != nil {
		return nil, err
	}
	existing.IsActive = isActive
	return &existing, nil
}

// Duplicate clones a field under a derived unique name at the end of the
// scope's order.
func (s *TemplateFieldService) Duplicate(ctx context.Context, id uint) (*TemplateField, error) {
	var clone TemplateField
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var source TemplateField
		if err := tx.First(&source, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: template field %d", fields.ErrNotFound, id)
			}
			return err
		}

		var names []string
		if err := tx.Model(&TemplateField{}).
			Where("owner_type_id = ?", source.OwnerTypeID).
			Pluck("name", &names).Error; err != nil {
			return err
		}
		taken := make(map[string]bool, len(names))
		for _, n := range names {
			taken[n] = true
		}

		next, err := nextOrder(tx, source.OwnerTypeID)
		if err != nil {
			return err
		}

		clone = source
		clone.ID = 0
		clone.Name = util.NextCopyName(source.Name, taken)
		clone.SortOrder = next
		clone.CreatedAt = time.Time{}
		clone.UpdatedAt = time.Time{}

		return tx.Create(&clone).Error
	})
	if err != nil {
		return nil, err
	}
	return &clone, nil
}

func nextOrder(tx *gorm.DB, ownerTypeID uint) (int, error) {
	var max int
	err := tx.Model(&TemplateField{}).
		Where("owner_type_id = ?", ownerTypeID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

package personal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"field-console-api/internal/fields"
	"field-console-api/internal/template"
	"field-console-api/internal/util"
)

// hooks for stubbing bucket access in tests
var (
	uploadBase64ToGCS = util.UploadBase64ToGCS
	deleteFromGCS     = util.DeleteFromGCS
)

type PersonalFieldService struct {
	DB       *gorm.DB
	Resolver EffectiveResolver
	Bucket   string
}

// List returns the user's personal fields ordered by sort order. An unknown
// user simply has an empty scope; there is no user registry to check against.
func (s *PersonalFieldService) List(ctx context.Context, ownerUserID uint) ([]PersonalField, error) {
	var rows []PersonalField
	err := s.DB.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("sort_order ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *PersonalFieldService) Create(ctx context.Context, ownerUserID uint, in FieldInput) (PersonalField, error) {
	def := in.Definition()
	if err := def.ValidateDefinition(); err != nil {
		return PersonalField{}, err
	}

	var created PersonalField
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.ParentFieldID != nil {
			if err := validateParent(tx, *in.ParentFieldID, in.OwnerTypeID); err != nil {
				return err
			}
		}

		var count int64
		if err := tx.Model(&PersonalField{}).
			Where("owner_user_id = ? AND name = ?", ownerUserID, in.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fields.ErrConflict
		}

		order := def.Order
		if in.Order == nil {
			next, err := nextOrder(tx, ownerUserID)
			if err != nil {
				return err
			}
			order = next
		}

		created = PersonalField{
			OwnerUserID:   ownerUserID,
			ParentFieldID: in.ParentFieldID,
			Name:          def.Name,
			Label:         def.Label,
			Description:   def.Description,
			FieldType:     string(def.Type),
			Validation:    marshalJSON(def.Validation),
			Options:       marshalJSON(def.Options),
			DefaultValue:  marshalJSON(def.DefaultValue),
			Placeholder:   def.Placeholder,
			IsInheritable: false,
			SortOrder:     order,
			Metadata:      marshalJSON(def.Metadata),
			IsActive:      def.IsActive,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return PersonalField{}, err
	}
	return created, nil
}

func (s *PersonalFieldService) Update(ctx context.Context, id uint, in FieldInput) (PersonalField, error) {
	var row PersonalField
	if err := s.DB.WithContext(ctx).First(&row, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return PersonalField{}, fmt.Errorf("personal field %d: %w", id, fields.ErrNotFound)
		}
		return PersonalField{}, err
	}

	if in.Name != row.Name {
		return PersonalField{}, fmt.Errorf("%w: name is immutable", fields.ErrInvalid)
	}

	def := in.Definition()
	if err := def.ValidateDefinition(); err != nil {
		return PersonalField{}, err
	}

	row.Label = def.Label
	row.Description = def.Description
	row.FieldType = string(def.Type)
	row.Validation = marshalJSON(def.Validation)
	row.Options = marshalJSON(def.Options)
	row.DefaultValue = marshalJSON(def.DefaultValue)
	row.Placeholder = def.Placeholder
	row.Metadata = marshalJSON(def.Metadata)
	if in.Order != nil {
		row.SortOrder = *in.Order
	}
	if in.IsActive != nil {
		row.IsActive = *in.IsActive
	}

	if err := s.DB.WithContext(ctx).Save(&row).Error; err != nil {
		return PersonalField{}, err
	}
	return row, nil
}

// Delete removes the definition only. Any stored value under the same field
// name is kept until deleted explicitly.
func (s *PersonalFieldService) Delete(ctx context.Context, id uint) (PersonalField, error) {
	var row PersonalField
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("personal field %d: %w", id, fields.ErrNotFound)
			}
			return err
		}
		return tx.Delete(&PersonalField{}, id).Error
	})
	if err != nil {
		return PersonalField{}, err
	}
	return row, nil
}

// Reorder applies the given sort orders in one transaction. An unknown field
// id, or one belonging to another user, rolls the whole batch back.
func (s *PersonalFieldService) Reorder(ctx context.Context, ownerUserID uint, items []ReorderItem) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			res := tx.Model(&PersonalField{}).
				Where("id = ? AND owner_user_id = ?", item.FieldID, ownerUserID).
				Update("sort_order", item.Order)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("personal field %d: %w", item.FieldID, fields.ErrNotFound)
			}
		}
		return nil
	})
}

func (s *PersonalFieldService) ToggleStatus(ctx context.Context, id uint, isActive bool) (PersonalField, error) {
	var row PersonalField
	if err := s.DB.WithContext(ctx).First(&row, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return PersonalField{}, fmt.Errorf("personal field %d: %w", id, fields.ErrNotFound)
		}
		return PersonalField{}, err
	}
	if err := s.DB.WithContext(ctx).Model(&row).UpdateColumn("is_active", isActive).Error; err != nil {
		return PersonalField{}, err
	}
	row.IsActive = isActive
	return row, nil
}

// Duplicate clones a personal field under a free copy name. The clone never
// keeps the parent reference: two overrides of the same template field would
// fight over it, so the copy starts as a freestanding field.
func (s *PersonalFieldService) Duplicate(ctx context.Context, id uint) (PersonalField, error) {
	var clone PersonalField
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var src PersonalField
		if err := tx.First(&src, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("personal field %d: %w", id, fields.ErrNotFound)
			}
			return err
		}

		var names []string
		if err := tx.Model(&PersonalField{}).
			Where("owner_user_id = ?", src.OwnerUserID).
			Pluck("name", &names).Error; err != nil {
			return err
		}
		taken := make(map[string]bool, len(names))
		for _, n := range names {
			taken[n] = true
		}

		next, err := nextOrder(tx, src.OwnerUserID)
		if err != nil {
			return err
		}

		clone = src
		clone.ID = 0
		clone.ParentFieldID = nil
		clone.Name = util.NextCopyName(src.Name, taken)
		clone.SortOrder = next
		clone.CreatedAt = time.Time{}
		clone.UpdatedAt = time.Time{}
		return tx.Create(&clone).Error
	})
	if err != nil {
		return PersonalField{}, err
	}
	return clone, nil
}

// SaveValues upserts the supplied values as a partial map. When ownerTypeID
// is set the merged document (stored values overlaid with the new ones) is
// validated against the user's effective schema first; a non-empty result map
// means nothing was written.
func (s *PersonalFieldService) SaveValues(ctx context.Context, ownerUserID uint, ownerTypeID *uint, values map[string]any) (map[string]string, error) {
	if ownerTypeID != nil && s.Resolver != nil {
		effective, err := s.Resolver.EffectiveFields(ctx, *ownerTypeID, ownerUserID)
		if err != nil {
			return nil, err
		}
		stored, err := s.LoadValues(ctx, ownerUserID)
		if err != nil {
			return nil, err
		}
		merged := make(map[string]any, len(stored)+len(values))
		for k, v := range stored {
			merged[k] = v
		}
		for k, v := range values {
			merged[k] = v
		}
		if errs := fields.ValidateAll(effective, merged); len(errs) > 0 {
			return errs, nil
		}
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for name, v := range values {
			raw, err := json.Marshal(v)
			if err != nil {
				return err
			}
			row := FieldValue{
				OwnerUserID: ownerUserID,
				FieldName:   name,
				Value:       raw,
			}
			err = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "owner_user_id"}, {Name: "field_name"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *PersonalFieldService) LoadValues(ctx context.Context, ownerUserID uint) (map[string]any, error) {
	var rows []FieldValue
	err := s.DB.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(rows))
	for _, row := range rows {
		var v any
		if len(row.Value) > 0 {
			_ = json.Unmarshal(row.Value, &v)
		}
		out[row.FieldName] = v
	}
	return out, nil
}

func (s *PersonalFieldService) DeleteValue(ctx context.Context, ownerUserID uint, fieldName string) error {
	res := s.DB.WithContext(ctx).
		Where("owner_user_id = ? AND field_name = ?", ownerUserID, fieldName).
		Delete(&FieldValue{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("value %q: %w", fieldName, fields.ErrNotFound)
	}
	return nil
}

// UploadAttachment pushes a base64 payload to the attachment bucket and
// stores the resulting URL as the field's value. Re-uploading under the same
// field replaces the value and removes the object it pointed to.
func (s *PersonalFieldService) UploadAttachment(ctx context.Context, ownerUserID uint, in AttachmentInput) (string, int64, error) {
	if in.DataBase64 == "" {
		return "", 0, fmt.Errorf("%w: empty attachment payload", fields.ErrInvalid)
	}
	prev := s.storedAttachmentURL(ctx, ownerUserID, in.FieldName)

	object := util.AttachmentObjectName(ownerUserID, in.FieldName, in.FileName, in.MimeType)
	_, size, err := uploadBase64ToGCS(ctx, in.DataBase64, in.MimeType, s.Bucket, object)
	if err != nil {
		return "", 0, err
	}
	url := util.PublicGCSURL(s.Bucket, object)
	if _, err := s.SaveValues(ctx, ownerUserID, nil, map[string]any{in.FieldName: url}); err != nil {
		return "", 0, err
	}

	if prev != "" && prev != url {
		if stale, err := util.ExtractObjectPathFromGCSURL(s.Bucket, prev); err == nil {
			// stale object cleanup is best effort
			_ = deleteFromGCS(ctx, s.Bucket, stale)
		}
	}
	return url, size, nil
}

// storedAttachmentURL returns the field's current value when it is a URL
// inside the service's own bucket, or "" otherwise.
func (s *PersonalFieldService) storedAttachmentURL(ctx context.Context, ownerUserID uint, fieldName string) string {
	var row FieldValue
	err := s.DB.WithContext(ctx).
		Where("owner_user_id = ? AND field_name = ?", ownerUserID, fieldName).
		First(&row).Error
	if err != nil {
		return ""
	}
	var v string
	if json.Unmarshal(row.Value, &v) != nil {
		return ""
	}
	if !strings.HasPrefix(v, util.PublicGCSURL(s.Bucket, "")) {
		return ""
	}
	return v
}

func validateParent(tx *gorm.DB, parentID uint, ownerTypeID *uint) error {
	if ownerTypeID == nil {
		return fmt.Errorf("%w: owner_type_id is required for overrides", fields.ErrInvalid)
	}
	var parent template.TemplateField
	if err := tx.First(&parent, parentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: parent field %d does not exist", fields.ErrInvalid, parentID)
		}
		return err
	}
	if !parent.IsInheritable {
		return fmt.Errorf("%w: parent field %q is not inheritable", fields.ErrInvalid, parent.Name)
	}
	if parent.OwnerTypeID != *ownerTypeID {
		return fmt.Errorf("%w: parent field %q belongs to another owner type", fields.ErrInvalid, parent.Name)
	}
	return nil
}

func nextOrder(tx *gorm.DB, ownerUserID uint) (int, error) {
	var next int
	err := tx.Model(&PersonalField{}).
		Where("owner_user_id = ?", ownerUserID).
		Select("COALESCE(MAX(sort_order), 0) + 1").
		Scan(&next).Error
	return next, err
}

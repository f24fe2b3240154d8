package resolve

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"field-console-api/internal/fields"
	"field-console-api/internal/ownertype"
	"field-console-api/internal/personal"
	"field-console-api/internal/template"
)

type ResolveService struct {
	DB *gorm.DB
}

// EffectiveFields merges the owner type's inheritable template fields with the
// user's personal fields into the effective schema. Both scopes are read
// concurrently; the merge itself is pure and deterministic.
func (s *ResolveService) EffectiveFields(ctx context.Context, ownerTypeID, ownerUserID uint) ([]fields.EffectiveField, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&ownertype.OwnerType{}).
		Where("id = ?", ownerTypeID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("owner type %d: %w", ownerTypeID, fields.ErrNotFound)
	}

	var (
		templateRows []template.TemplateField
		personalRows []personal.PersonalField
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.DB.WithContext(gctx).
			Where("owner_type_id = ? AND is_inheritable = ? AND is_active = ?", ownerTypeID, true, true).
			Order("sort_order ASC, id ASC").
			Find(&templateRows).Error
	})
	g.Go(func() error {
		return s.DB.WithContext(gctx).
			Where("owner_user_id = ? AND is_active = ?", ownerUserID, true).
			Order("sort_order ASC, id ASC").
			Find(&personalRows).Error
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	templates := make([]fields.TemplateSource, 0, len(templateRows))
	for _, row := range templateRows {
		templates = append(templates, row.Source())
	}
	personals := make([]fields.PersonalSource, 0, len(personalRows))
	for _, row := range personalRows {
		personals = append(personals, row.Source())
	}

	return fields.Merge(templates, personals), nil
}

// LastModified reports the newest updated_at across both schema scopes, so
// clients can poll the effective schema cheaply.
func (s *ResolveService) LastModified(ctx context.Context, ownerTypeID, ownerUserID uint) (time.Time, error) {
	var (
		newestTemplate template.TemplateField
		newestPersonal personal.PersonalField
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.DB.WithContext(gctx).
			Where("owner_type_id = ?", ownerTypeID).
			Order("updated_at DESC").
			Limit(1).
			Find(&newestTemplate).Error
	})
	g.Go(func() error {
		return s.DB.WithContext(gctx).
			Where("owner_user_id = ?", ownerUserID).
			Order("updated_at DESC").
			Limit(1).
			Find(&newestPersonal).Error
	})
	if err := g.Wait(); err != nil {
		return time.Time{}, err
	}

	var latest time.Time
	if newestTemplate.ID != 0 && newestTemplate.UpdatedAt.After(latest) {
		latest = newestTemplate.UpdatedAt
	}
	if newestPersonal.ID != 0 && newestPersonal.UpdatedAt.After(latest) {
		latest = newestPersonal.UpdatedAt
	}
	return latest, nil
}

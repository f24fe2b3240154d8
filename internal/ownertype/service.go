package ownertype

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"field-console-api/internal/fields"
)

type OwnerTypeServiceAPI interface {
	GetAllOwnerTypes(ctx context.Context) ([]OwnerType, error)
	CreateOwnerType(ctx context.Context, name, description string) (*OwnerType, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

type OwnerTypeService struct {
	DB *gorm.DB
}

func NewOwnerTypeService(db *gorm.DB) *OwnerTypeService {
	return &OwnerTypeService{DB: db}
}

func (s *OwnerTypeService) GetAllOwnerTypes(ctx context.Context) ([]OwnerType, error) {
	var types []OwnerType
	result := s.DB.WithContext(ctx).Order("name ASC").Find(&types)
	if result.Error != nil {
		return nil, result.Error
	}
	return types, nil
}

func (s *OwnerTypeService) CreateOwnerType(ctx context.Context, name, description string) (*OwnerType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("name is required")
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&OwnerType{}).
		Where("lower(name) = lower(?)", name).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fields.ErrConflict
	}

	ot := OwnerType{Name: name, Description: strings.TrimSpace(description), IsActive: true}
	if err := s.DB.WithContext(ctx).Create(&ot).Error; err != nil {
		return nil, err
	}
	return &ot, nil
}

func (s *OwnerTypeService) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&OwnerType{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

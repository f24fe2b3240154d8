package ownertype

import (
	"time"
)

// OwnerType is the template tier's scope: every user of a type inherits the
// template fields defined for it.
type OwnerType struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text;not null;default:''" json:"description"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (OwnerType) TableName() string {
	return "owner_types"
}

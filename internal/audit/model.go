package audit

import (
	"time"

	"github.com/lib/pq"
)

// FieldAudit records one lifecycle event on a field definition or value.
// Scopes carries "type:<id>" / "user:<id>" markers so one event can be found
// from either side of the two-tier schema.
type FieldAudit struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Level     string         `gorm:"size:20;not null" json:"level"`
	Service   string         `gorm:"size:100;not null" json:"service"`
	UserID    *uint          `gorm:"index" json:"user_id,omitempty"`
	Action    string         `gorm:"size:255;not null" json:"action"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	FieldName *string        `gorm:"size:150" json:"field_name,omitempty"`
	Scopes    pq.StringArray `gorm:"type:text[];column:scopes" json:"scopes"`
	Metadata  *string        `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

type AuditFilterInput struct {
	UserID    *uint    `json:"user_id"`
	Level     *string  `json:"level"`
	Service   *string  `json:"service"`
	Action    *string  `json:"action"`
	FieldName *string  `json:"field_name"`
	Scopes    []string `json:"scopes"`

	StartDate *string `json:"start_date"` // "YYYY-MM-DD"
	EndDate   *string `json:"end_date"`

	Search   *string `json:"search"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

type AggItem struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type AuditAggregates struct {
	ByAction []AggItem `json:"by_action"`
	ByField  []AggItem `json:"by_field"`
	ByScope  []AggItem `json:"by_scope"`
}

func (FieldAudit) TableName() string {
	return "field_audit"
}

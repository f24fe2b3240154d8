package audit

import (
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"field-console-api/internal/util"
)

type AuditService struct {
	DB *gorm.DB
}

func (as *AuditService) Log(entry FieldAudit, metadata interface{}) error {
	var metaStr *string

	// Convert metadata (map/struct) to JSON string if provided
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			str := string(b)
			metaStr = &str
		}
	}

	newEntry := FieldAudit{
		Level:     entry.Level,
		Service:   entry.Service,
		UserID:    entry.UserID,
		Action:    entry.Action,
		Message:   entry.Message,
		FieldName: entry.FieldName,
		Scopes:    entry.Scopes,
		Metadata:  metaStr,
		CreatedAt: time.Now(),
	}

	return as.DB.Create(&newEntry).Error
}

func (as *AuditService) GetAuditLog(input AuditFilterInput) ([]FieldAudit, AuditAggregates, int64, int, error) {
	// Defaults
	if input.Page <= 0 {
		input.Page = 1
	}
	if input.PageSize <= 0 || input.PageSize > 100 {
		input.PageSize = 20
	}

	base := as.DB.Table("field_audit")

	// Default: last 30 days if no dates
	if input.StartDate == nil && input.EndDate == nil {
		base = base.Where("field_audit.created_at >= ?", time.Now().AddDate(0, 0, -30))
	}

	// Filters
	if input.UserID != nil {
		base = base.Where("field_audit.user_id = ?", *input.UserID)
	}
	if input.Level != nil && strings.TrimSpace(*input.Level) != "" {
		base = base.Where("field_audit.level = ?", strings.TrimSpace(*input.Level))
	}
	if input.Service != nil && strings.TrimSpace(*input.Service) != "" {
		base = base.Where("field_audit.service = ?", strings.TrimSpace(*input.Service))
	}
	if input.Action != nil && strings.TrimSpace(*input.Action) != "" {
		base = base.Where("field_audit.action = ?", strings.TrimSpace(*input.Action))
	}
	if input.FieldName != nil && strings.TrimSpace(*input.FieldName) != "" {
		base = base.Where("COALESCE(field_audit.field_name,'') ILIKE ?", "%"+strings.TrimSpace(*input.FieldName)+"%")
	}

	// Scope filter: overlap (ANY match)
	if len(input.Scopes) > 0 {
		base = base.Where("field_audit.scopes && ?", pq.Array(input.Scopes))
	}

	// Date range (inclusive end day)
	start, hasStart, endExclusive, hasEnd, err := util.ParseDateRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, AuditAggregates{}, 0, 0, err
	}
	if hasStart {
		base = base.Where("field_audit.created_at >= ?", start)
	}
	if hasEnd {
		base = base.Where("field_audit.created_at < ?", endExclusive)
	}

	// Search across the text columns
	if input.Search != nil && strings.TrimSpace(*input.Search) != "" {
		like := "%" + strings.TrimSpace(*input.Search) + "%"
		base = base.Where(
			`CAST(field_audit.id AS TEXT) ILIKE ?
			 OR field_audit.level ILIKE ?
			 OR field_audit.service ILIKE ?
			 OR field_audit.action ILIKE ?
			 OR field_audit.message ILIKE ?
			 OR COALESCE(field_audit.field_name,'') ILIKE ?
			 OR COALESCE(array_to_string(field_audit.scopes, ','),'') ILIKE ?`,
			like, like, like, like, like, like, like,
		)
	}

	// Total count (no paging)
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, AuditAggregates{}, 0, 0, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(input.PageSize)))
	if totalPages == 0 {
		totalPages = 1
	}

	// Paged rows
	var rows []FieldAudit
	if err := base.
		Session(&gorm.Session{}).
		Order("field_audit.created_at DESC").
		Limit(input.PageSize).
		Offset((input.Page - 1) * input.PageSize).
		Scan(&rows).Error; err != nil {
		return nil, AuditAggregates{}, 0, 0, err
	}

	aggs, err := as.getAggregatesFromBase(base)
	if err != nil {
		return nil, AuditAggregates{}, 0, 0, err
	}

	return rows, aggs, total, totalPages, nil
}

func (as *AuditService) getAggregatesFromBase(base *gorm.DB) (AuditAggregates, error) {
	aggs := AuditAggregates{}
	limit := 12

	// Use derived table so filters are identical
	sub := base.Session(&gorm.Session{}).
		Select("field_audit.action, field_audit.field_name, field_audit.scopes")

	derived := as.DB.Table("(?) as x", sub)

	// By action
	{
		type r struct {
			Label string
			Count int64
		}
		var out []r

		if err := derived.Session(&gorm.Session{}).
			Select("x.action AS label, COUNT(*) AS count").
			Group("label").
			Order("count DESC").
			Limit(limit).
			Scan(&out).Error; err != nil {
			return AuditAggregates{}, err
		}

		aggs.ByAction = make([]AggItem, 0, len(out))
		for _, row := range out {
			aggs.ByAction = append(aggs.ByAction, AggItem{Label: row.Label, Count: row.Count})
		}
	}

	// By field
	{
		type r struct {
			Label string
			Count int64
		}
		var out []r

		if err := derived.Session(&gorm.Session{}).
			Select("COALESCE(NULLIF(TRIM(x.field_name), ''), 'No field') AS label, COUNT(*) AS count").
			Group("label").
			Order("count DESC").
			Limit(limit).
			Scan(&out).Error; err != nil {
			return AuditAggregates{}, err
		}

		aggs.ByField = make([]AggItem, 0, len(out))
		for _, row := range out {
			aggs.ByField = append(aggs.ByField, AggItem{Label: row.Label, Count: row.Count})
		}
	}

	// By scope: unnest text[], plus a bucket for rows with no scope at all
	{
		type r struct {
			Label string
			Count int64
		}

		var outA []r
		if err := derived.Session(&gorm.Session{}).
			Select("s AS label, COUNT(*) AS count").
			Joins("JOIN LATERAL unnest(x.scopes) AS s ON TRUE").
			Group("s").
			Order("count DESC").
			Limit(limit).
			Scan(&outA).Error; err != nil {
			return AuditAggregates{}, err
		}

		var outB []r
		if err := derived.Session(&gorm.Session{}).
			Select("'No scope' AS label, COUNT(*) AS count").
			Where("x.scopes IS NULL OR array_length(x.scopes, 1) IS NULL OR array_length(x.scopes, 1) = 0").
			Group("label").
			Scan(&outB).Error; err != nil {
			return AuditAggregates{}, err
		}

		m := map[string]int64{}
		for _, row := range outA {
			m[row.Label] += row.Count
		}
		for _, row := range outB {
			m[row.Label] += row.Count
		}

		items := make([]AggItem, 0, len(m))
		for k, v := range m {
			items = append(items, AggItem{Label: k, Count: v})
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Count > items[j].Count })
		if len(items) > limit {
			items = items[:limit]
		}
		aggs.ByScope = items
	}

	return aggs, nil
}

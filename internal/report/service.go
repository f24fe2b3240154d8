package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"field-console-api/internal/fields"
	"field-console-api/internal/ownertype"
	"field-console-api/internal/personal"
	"field-console-api/internal/resolve"
	"field-console-api/internal/template"
)

type ReportService struct {
	DB       *gorm.DB
	Resolver resolve.ResolveServiceAPI
}

// ExportTemplateFields renders the owner type's template schema as a
// single-sheet workbook, one row per field in display order.
func (rs *ReportService) ExportTemplateFields(ctx context.Context, ownerTypeID uint) ([]byte, string, error) {
	var owner ownertype.OwnerType
	if err := rs.DB.WithContext(ctx).First(&owner, ownerTypeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", fmt.Errorf("owner type %d: %w", ownerTypeID, fields.ErrNotFound)
		}
		return nil, "", err
	}

	var rows []template.TemplateField
	err := rs.DB.WithContext(ctx).
		Where("owner_type_id = ?", ownerTypeID).
		Order("sort_order ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E2E8F0"}},
	})

	sheet := safeSheetName(owner.Name + " fields")
	defaultSheet := f.GetSheetName(0)
	f.NewSheet(sheet)

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, "", err
	}

	header := []interface{}{
		excelize.Cell{Value: "order", StyleID: headerStyle},
		excelize.Cell{Value: "name", StyleID: headerStyle},
		excelize.Cell{Value: "label", StyleID: headerStyle},
		excelize.Cell{Value: "type", StyleID: headerStyle},
		excelize.Cell{Value: "required", StyleID: headerStyle},
		excelize.Cell{Value: "inheritable", StyleID: headerStyle},
		excelize.Cell{Value: "active", StyleID: headerStyle},
		excelize.Cell{Value: "validation", StyleID: headerStyle},
		excelize.Cell{Value: "options", StyleID: headerStyle},
	}
	_ = sw.SetRow("A1", header)

	rowNum := 2
	for _, row := range rows {
		def := row.Definition()
		values := []interface{}{
			def.Order,
			def.Name,
			def.Label,
			string(def.Type),
			def.Validation.Required,
			def.IsInheritable,
			def.IsActive,
			compactJSON(def.Validation),
			optionSummary(def.Options),
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		_ = sw.SetRow(cell, values)
		rowNum++
	}

	if err := sw.Flush(); err != nil {
		return nil, "", err
	}
	if defaultSheet != "" {
		f.DeleteSheet(defaultSheet)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	fileName := fmt.Sprintf("template_fields_%s.xlsx", safeFilePart(owner.Name))
	return buf.Bytes(), fileName, nil
}

// ExportEffectiveFields renders a user's merged schema with their stored
// values alongside each field.
func (rs *ReportService) ExportEffectiveFields(ctx context.Context, ownerTypeID, ownerUserID uint) ([]byte, string, error) {
	effective, err := rs.Resolver.EffectiveFields(ctx, ownerTypeID, ownerUserID)
	if err != nil {
		return nil, "", err
	}

	var valueRows []personal.FieldValue
	err = rs.DB.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Find(&valueRows).Error
	if err != nil {
		return nil, "", err
	}
	values := make(map[string]string, len(valueRows))
	for _, row := range valueRows {
		var v any
		if len(row.Value) > 0 {
			_ = json.Unmarshal(row.Value, &v)
		}
		if v == nil {
			values[row.FieldName] = ""
		} else {
			values[row.FieldName] = fmt.Sprintf("%v", v)
		}
	}

	f := excelize.NewFile()
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E2E8F0"}},
	})
	overrideStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFF3C4"}},
	})

	sheet := safeSheetName(fmt.Sprintf("User %d effective", ownerUserID))
	defaultSheet := f.GetSheetName(0)
	f.NewSheet(sheet)

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, "", err
	}

	header := []interface{}{
		excelize.Cell{Value: "order", StyleID: headerStyle},
		excelize.Cell{Value: "name", StyleID: headerStyle},
		excelize.Cell{Value: "label", StyleID: headerStyle},
		excelize.Cell{Value: "type", StyleID: headerStyle},
		excelize.Cell{Value: "origin", StyleID: headerStyle},
		excelize.Cell{Value: "required", StyleID: headerStyle},
		excelize.Cell{Value: "value", StyleID: headerStyle},
	}
	_ = sw.SetRow("A1", header)

	rowNum := 2
	for _, ef := range effective {
		name := ef.Name
		origin := string(ef.Origin)
		cells := []interface{}{
			ef.Order,
			name,
			ef.DisplayLabel(),
			string(ef.Type),
			origin,
			ef.Validation.Required,
			values[name],
		}
		if ef.Origin != fields.OriginInherited {
			for i, v := range cells {
				cells[i] = excelize.Cell{Value: v, StyleID: overrideStyle}
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		_ = sw.SetRow(cell, cells)
		rowNum++
	}

	if err := sw.Flush(); err != nil {
		return nil, "", err
	}
	if defaultSheet != "" {
		f.DeleteSheet(defaultSheet)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	fileName := fmt.Sprintf("effective_fields_user_%d.xlsx", ownerUserID)
	return buf.Bytes(), fileName, nil
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func optionSummary(opts []fields.Option) string {
	if len(opts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(opts))
	for _, o := range opts {
		parts = append(parts, o.Value)
	}
	return strings.Join(parts, ",")
}

func safeSheetName(name string) string {
	n := strings.TrimSpace(name)
	n = strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_").Replace(n)
	if len(n) > 31 {
		n = n[:31]
	}
	return n
}

func safeFilePart(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, n)
}

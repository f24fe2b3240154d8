package report

import "context"

type ReportServiceAPI interface {
	ExportTemplateFields(ctx context.Context, ownerTypeID uint) ([]byte, string, error)
	ExportEffectiveFields(ctx context.Context, ownerTypeID, ownerUserID uint) ([]byte, string, error)
}

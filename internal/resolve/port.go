package resolve

import (
	"context"
	"time"

	"field-console-api/internal/fields"
)

type ResolveServiceAPI interface {
	EffectiveFields(ctx context.Context, ownerTypeID, ownerUserID uint) ([]fields.EffectiveField, error)
	LastModified(ctx context.Context, ownerTypeID, ownerUserID uint) (time.Time, error)
}

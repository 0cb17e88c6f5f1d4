package settings

import (
	"context"

	domain "palestra/internal/domain/settings"
)

// Store persists the single Settings row.
type Store interface {
	Get(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, value domain.Settings) error
}

package audit

import (
	"context"

	domain "palestra/internal/domain/audit"
)

// Store persists audit events. Events are append-only.
type Store interface {
	Append(ctx context.Context, event domain.Event) error
	List(ctx context.Context, filter ListFilter) ([]domain.Event, error)
	Count(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit    int
	Offset   int
	Category string
	ActorID  string
}

package notification

import (
	"context"

	domain "palestra/internal/domain/notification"
)

// Store persists notifications and the processed-key set that keeps the
// missed-booking scan idempotent.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Notification, error)
	Save(ctx context.Context, value domain.Notification) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	CountUnread(ctx context.Context) (int, error)
	DeleteMissedBookings(ctx context.Context) error

	LoadProcessedSet(ctx context.Context) (domain.ProcessedSet, error)
	SaveProcessedKeys(ctx context.Context, keys []string) error
	ClearProcessedSet(ctx context.Context) error
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit      int
	Offset     int
	Type       string
	UnreadOnly bool
}

package booking

import (
	"context"
	"time"

	domain "palestra/internal/domain/booking"
)

// Store persists Booking state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Booking, error)
	Save(ctx context.Context, value domain.Booking) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Booking, error)
	ListByRange(ctx context.Context, from, to time.Time) ([]domain.Booking, error)
	ListByDate(ctx context.Context, date string) ([]domain.Booking, error)
	Count(ctx context.Context) (int, error)
}

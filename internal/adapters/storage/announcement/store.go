package announcement

import (
	"context"

	domain "palestra/internal/domain/announcement"
)

// Store persists Announcement state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Announcement, error)
	Save(ctx context.Context, value domain.Announcement) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Announcement, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit         int
	Offset        int
	Status        string
	PublishedOnly bool
}

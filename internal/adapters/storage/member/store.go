package member

import (
	"context"

	domain "palestra/internal/domain/member"
)

// Store persists Member state together with access and booking history.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Member, error)
	GetByMemberNumber(ctx context.Context, number string) (domain.Member, error)
	Save(ctx context.Context, value domain.Member) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Member, error)
	ListWithHistory(ctx context.Context) ([]domain.Member, error)
	Count(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
// List results are lean: history slices are not hydrated.
type ListFilter struct {
	Limit  int
	Offset int
	Status string
	Search string // matches name, email or member number
}

package operator

import (
	"context"

	domain "palestra/internal/domain/operator"
)

// Store persists Operator state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Operator, error)
	GetByEmail(ctx context.Context, email string) (domain.Operator, error)
	Save(ctx context.Context, value domain.Operator) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Operator, error)
	Count(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, role string) (int, error)
	SaveResetToken(ctx context.Context, token domain.ResetToken) error
	GetResetTokenByToken(ctx context.Context, token string) (domain.ResetToken, error)
	InvalidateTokensForOperator(ctx context.Context, operatorID string) error
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Role   string
}

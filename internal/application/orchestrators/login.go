package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"palestra/internal/domain/operator"
)

// OperatorStoreForLogin defines the store interface needed by Login.
type OperatorStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (operator.Operator, error)
	Save(ctx context.Context, o operator.Operator) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	OperatorID string
	Email      string
	Role       string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	OperatorStore OperatorStoreForLogin
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrOperatorLocked     = errors.New("account is locked due to too many failed attempts")
	ErrOperatorSuspended  = errors.New("account is suspended")
)

// ExecuteLogin validates credentials and returns operator info for session creation.
// PRE: Valid email and password provided
// POST: Returns operator info on success, records failed login on failure
// INVARIANT: Operator must not be locked or suspended
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	if input.Email == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	op, err := deps.OperatorStore.GetByEmail(ctx, input.Email)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	if op.Status == operator.StatusSuspended {
		slog.Info("auth_event", "event", "login_blocked", "email", input.Email, "reason", "suspended")
		return LoginResult{}, ErrOperatorSuspended
	}

	if op.IsLocked() {
		slog.Info("auth_event", "event", "login_blocked", "email", input.Email, "reason", "locked")
		return LoginResult{}, ErrOperatorLocked
	}

	if err := op.CheckPassword(input.Password); err != nil {
		op.RecordFailedLogin()
		_ = deps.OperatorStore.Save(ctx, op)
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "wrong_password", "failed_logins", op.FailedLogins)
		return LoginResult{}, ErrInvalidCredentials
	}

	op.ResetFailedLogins()
	_ = deps.OperatorStore.Save(ctx, op)

	slog.Info("auth_event", "event", "login_success", "email", input.Email, "role", op.Role)

	return LoginResult{
		OperatorID: op.ID,
		Email:      op.Email,
		Role:       op.Role,
	}, nil
}

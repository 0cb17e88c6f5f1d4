package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"palestra/internal/domain/operator"
)

// ChangePasswordInput carries input for the change-password orchestrator.
type ChangePasswordInput struct {
	OperatorID      string
	CurrentPassword string
	NewPassword     string
}

// OperatorStoreForChangePassword defines the store interface needed by ChangePassword.
type OperatorStoreForChangePassword interface {
	GetByID(ctx context.Context, id string) (operator.Operator, error)
	Save(ctx context.Context, o operator.Operator) error
}

// ChangePasswordDeps holds dependencies for ChangePassword.
type ChangePasswordDeps struct {
	OperatorStore OperatorStoreForChangePassword
}

var (
	ErrCurrentPasswordWrong = errors.New("current password is incorrect")
	ErrNewPasswordSame      = errors.New("new password must be different from current password")
)

// ExecuteChangePassword validates the current password and updates to the new one.
// PRE: OperatorID is valid, both passwords are non-empty
// POST: Password is updated and failed-login counters are reset
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	if input.OperatorID == "" || input.CurrentPassword == "" || input.NewPassword == "" {
		return errors.New("all fields are required")
	}

	op, err := deps.OperatorStore.GetByID(ctx, input.OperatorID)
	if err != nil {
		return errors.New("operator not found")
	}

	if err := op.CheckPassword(input.CurrentPassword); err != nil {
		return ErrCurrentPasswordWrong
	}

	if input.CurrentPassword == input.NewPassword {
		return ErrNewPasswordSame
	}

	if err := op.SetPassword(input.NewPassword); err != nil {
		return err
	}
	op.ResetFailedLogins()

	if err := deps.OperatorStore.Save(ctx, op); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "password_changed", "operator_id", op.ID)
	return nil
}

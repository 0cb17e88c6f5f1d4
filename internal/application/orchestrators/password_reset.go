package orchestrators

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"palestra/internal/domain/operator"
	"palestra/internal/domain/outbox"
)

// ResetTokenTTL is how long a password reset link stays valid.
const ResetTokenTTL = time.Hour

// OperatorStoreForReset defines the store interface needed by the reset orchestrators.
type OperatorStoreForReset interface {
	GetByEmail(ctx context.Context, email string) (operator.Operator, error)
	GetByID(ctx context.Context, id string) (operator.Operator, error)
	Save(ctx context.Context, o operator.Operator) error
	SaveResetToken(ctx context.Context, token operator.ResetToken) error
	GetResetTokenByToken(ctx context.Context, token string) (operator.ResetToken, error)
	InvalidateTokensForOperator(ctx context.Context, operatorID string) error
}

// OutboxStoreForReset enqueues the reset email for delivery.
type OutboxStoreForReset interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// ResetEmailPayload is the outbox payload for a password reset email.
type ResetEmailPayload struct {
	To       string `json:"to"`
	Name     string `json:"name"`
	ResetURL string `json:"reset_url"`
}

// --- Request Reset ---

// RequestPasswordResetInput carries input for the request orchestrator.
type RequestPasswordResetInput struct {
	Email   string
	BaseURL string // public base URL used to build the reset link
}

// RequestPasswordResetDeps holds dependencies for RequestPasswordReset.
type RequestPasswordResetDeps struct {
	OperatorStore OperatorStoreForReset
	OutboxStore   OutboxStoreForReset
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteRequestPasswordReset issues a reset token and enqueues the email.
// Unknown emails succeed silently so the endpoint does not leak which
// addresses have accounts.
// PRE: Email is non-empty
// POST: Outstanding tokens invalidated; new token saved; email enqueued
func ExecuteRequestPasswordReset(ctx context.Context, input RequestPasswordResetInput, deps RequestPasswordResetDeps) error {
	if input.Email == "" {
		return errors.New("email is required")
	}

	op, err := deps.OperatorStore.GetByEmail(ctx, input.Email)
	if err != nil {
		slog.Info("auth_event", "event", "reset_requested_unknown", "email", input.Email)
		return nil
	}

	if err := deps.OperatorStore.InvalidateTokensForOperator(ctx, op.ID); err != nil {
		return fmt.Errorf("failed to invalidate tokens: %w", err)
	}

	now := deps.Now()
	token := operator.ResetToken{
		ID:         deps.GenerateID(),
		OperatorID: op.ID,
		Token:      randomToken(),
		ExpiresAt:  now.Add(ResetTokenTTL),
		CreatedAt:  now,
	}
	if err := deps.OperatorStore.SaveResetToken(ctx, token); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	payload, err := json.Marshal(ResetEmailPayload{
		To:       op.Email,
		Name:     op.FullName(),
		ResetURL: fmt.Sprintf("%s/reset-password?token=%s", input.BaseURL, token.Token),
	})
	if err != nil {
		return fmt.Errorf("failed to encode reset payload: %w", err)
	}

	entry := outbox.Entry{
		ID:          deps.GenerateID(),
		ActionType:  outbox.ActionTypePasswordReset,
		Payload:     string(payload),
		Status:      outbox.StatusPending,
		MaxAttempts: 5,
		CreatedAt:   now,
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := deps.OutboxStore.Save(ctx, entry); err != nil {
		return fmt.Errorf("failed to enqueue reset email: %w", err)
	}

	slog.Info("auth_event", "event", "reset_requested", "operator_id", op.ID)
	return nil
}

// --- Redeem Reset ---

// ResetPasswordInput carries input for the redeem orchestrator.
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// ResetPasswordDeps holds dependencies for ResetPassword.
type ResetPasswordDeps struct {
	OperatorStore OperatorStoreForReset
	Now           func() time.Time
}

// ExecuteResetPassword redeems a reset token and sets the new password.
// PRE: Token was issued by RequestPasswordReset and is unused and unexpired
// POST: Password updated; token and all siblings invalidated; lockout cleared
func ExecuteResetPassword(ctx context.Context, input ResetPasswordInput, deps ResetPasswordDeps) error {
	if input.Token == "" || input.NewPassword == "" {
		return operator.ErrTokenInvalid
	}

	token, err := deps.OperatorStore.GetResetTokenByToken(ctx, input.Token)
	if err != nil {
		return operator.ErrTokenInvalid
	}
	if token.Used {
		return operator.ErrTokenInvalid
	}
	if token.IsExpired(deps.Now()) {
		return operator.ErrTokenExpired
	}

	op, err := deps.OperatorStore.GetByID(ctx, token.OperatorID)
	if err != nil {
		return operator.ErrTokenInvalid
	}

	if err := op.SetPassword(input.NewPassword); err != nil {
		return err
	}
	op.ResetFailedLogins()

	if err := deps.OperatorStore.Save(ctx, op); err != nil {
		return fmt.Errorf("failed to save operator: %w", err)
	}
	if err := deps.OperatorStore.InvalidateTokensForOperator(ctx, op.ID); err != nil {
		return fmt.Errorf("failed to invalidate tokens: %w", err)
	}

	slog.Info("auth_event", "event", "password_reset", "operator_id", op.ID)
	return nil
}

// randomToken returns a 64-character hex token from a CSPRNG.
func randomToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(buf)
}

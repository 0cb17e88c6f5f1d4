package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"palestra/internal/adapters/email"
	"palestra/internal/domain/outbox"
)

// OutboxStoreForRetry defines the store interface needed by the retry worker.
type OutboxStoreForRetry interface {
	ListRetryable(ctx context.Context, limit int) ([]outbox.Entry, error)
	Save(ctx context.Context, e outbox.Entry) error
}

// RetryOutboxDeps holds dependencies for RetryOutbox.
type RetryOutboxDeps struct {
	OutboxStore OutboxStoreForRetry
	Sender      email.Sender
	From        string // default sender address
	Now         func() time.Time
}

// RetryOutboxResult summarises one drain pass.
type RetryOutboxResult struct {
	Processed int
	Succeeded int
	Failed    int
	Skipped   int
}

// retry backoff bounds
const (
	retryBaseDelay = 1 * time.Minute
	retryMaxDelay  = 1 * time.Hour
)

// ExecuteRetryOutbox drains pending and retryable outbox entries,
// delivering each email and applying exponential backoff between
// attempts.
// PRE: Sender is configured
// POST: Eligible entries attempted once; state transitions persisted
func ExecuteRetryOutbox(ctx context.Context, deps RetryOutboxDeps) (RetryOutboxResult, error) {
	entries, err := deps.OutboxStore.ListRetryable(ctx, 100)
	if err != nil {
		return RetryOutboxResult{}, fmt.Errorf("failed to list retryable outbox entries: %w", err)
	}
	if len(entries) == 0 {
		return RetryOutboxResult{}, nil
	}

	slog.Info("outbox_retry_start", "count", len(entries))
	now := deps.Now()

	var result RetryOutboxResult
	for _, entry := range entries {
		if !entry.LastAttemptedAt.IsZero() {
			nextRetry := entry.LastAttemptedAt.Add(entry.NextRetryDelay(retryBaseDelay, retryMaxDelay))
			if now.Before(nextRetry) {
				result.Skipped++
				slog.Debug("outbox_retry_skipped_backoff", "entry_id", entry.ID, "next_retry", nextRetry)
				continue
			}
		}

		result.Processed++
		entry.MarkAttempt(now)

		messageID, err := deliver(ctx, deps, entry)
		if err != nil {
			entry.MarkFailed(err)
			result.Failed++
			slog.Warn("outbox_delivery_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "attempts", entry.Attempts, "error", err)
		} else {
			entry.MarkSuccess(messageID)
			result.Succeeded++
			slog.Info("outbox_delivered", "entry_id", entry.ID, "action_type", entry.ActionType, "message_id", messageID)
		}

		if err := deps.OutboxStore.Save(ctx, entry); err != nil {
			return result, fmt.Errorf("failed to save outbox entry: %w", err)
		}
	}

	return result, nil
}

// deliver sends one outbox entry through the configured email sender.
func deliver(ctx context.Context, deps RetryOutboxDeps, entry outbox.Entry) (string, error) {
	switch entry.ActionType {
	case outbox.ActionTypePasswordReset:
		var p ResetEmailPayload
		if err := json.Unmarshal([]byte(entry.Payload), &p); err != nil {
			return "", fmt.Errorf("invalid reset payload: %w", err)
		}
		res, err := deps.Sender.Send(ctx, email.SendRequest{
			To:      []string{p.To},
			From:    deps.From,
			Subject: "Reset your password",
			HTML: fmt.Sprintf(
				"<p>Hi %s,</p><p>A password reset was requested for your account. The link below is valid for one hour.</p><p><a href=%q>Reset password</a></p>",
				p.Name, p.ResetURL,
			),
		})
		if err != nil {
			return "", err
		}
		return res.MessageID, nil

	case outbox.ActionTypeAnnouncement:
		var p AnnouncementEmailPayload
		if err := json.Unmarshal([]byte(entry.Payload), &p); err != nil {
			return "", fmt.Errorf("invalid announcement payload: %w", err)
		}
		reqs := make([]email.SendRequest, 0, len(p.Recipients))
		for _, to := range p.Recipients {
			reqs = append(reqs, email.SendRequest{
				To:      []string{to},
				From:    deps.From,
				Subject: p.Subject,
				HTML:    p.HTML,
			})
		}
		results, err := deps.Sender.SendBatch(ctx, reqs)
		if err != nil {
			return "", err
		}
		if len(results) > 0 {
			return results[0].MessageID, nil
		}
		return "", nil

	default:
		return "", fmt.Errorf("unknown outbox action type: %s", entry.ActionType)
	}
}

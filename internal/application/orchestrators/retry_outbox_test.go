package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"palestra/internal/adapters/email"
	"palestra/internal/domain/outbox"
)

// fakeSender implements email.Sender with scripted outcomes.
type fakeSender struct {
	fail   bool
	sent   []email.SendRequest
	nextID int
}

func (f *fakeSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	if f.fail {
		return email.SendResult{}, errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, req)
	f.nextID++
	return email.SendResult{MessageID: fmt.Sprintf("msg-%d", f.nextID)}, nil
}

func (f *fakeSender) SendBatch(ctx context.Context, reqs []email.SendRequest) ([]email.SendResult, error) {
	out := make([]email.SendResult, 0, len(reqs))
	for _, req := range reqs {
		res, err := f.Send(ctx, req)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func resetEntry(id string) outbox.Entry {
	payload, _ := json.Marshal(ResetEmailPayload{
		To: "anna@palestra.test", Name: "Anna Verdi",
		ResetURL: "https://backoffice.palestra.test/reset-password?token=abc",
	})
	return outbox.Entry{
		ID:          id,
		ActionType:  outbox.ActionTypePasswordReset,
		Payload:     string(payload),
		Status:      outbox.StatusPending,
		MaxAttempts: 5,
		CreatedAt:   fixedTime,
	}
}

// TestExecuteRetryOutbox_DeliversPending tests a successful drain.
func TestExecuteRetryOutbox_DeliversPending(t *testing.T) {
	store := newMockOutboxStore()
	store.entries["e-1"] = resetEntry("e-1")
	sender := &fakeSender{}

	res, err := ExecuteRetryOutbox(context.Background(), RetryOutboxDeps{
		OutboxStore: store,
		Sender:      sender,
		From:        "noreply@palestra.test",
		Now:         fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Succeeded != 1 || res.Failed != 0 {
		t.Errorf("expected 1 success, got %+v", res)
	}
	saved := store.entries["e-1"]
	if saved.Status != outbox.StatusDone {
		t.Errorf("expected status done, got %s", saved.Status)
	}
	if saved.Attempts != 1 {
		t.Errorf("expected 1 attempt recorded, got %d", saved.Attempts)
	}
	if len(sender.sent) != 1 || sender.sent[0].To[0] != "anna@palestra.test" {
		t.Error("expected one email to the operator")
	}
	if sender.sent[0].From != "noreply@palestra.test" {
		t.Errorf("expected configured From, got %s", sender.sent[0].From)
	}
}

// TestExecuteRetryOutbox_FailureKeepsRetrying tests that a delivery failure
// records the attempt without terminating the entry.
func TestExecuteRetryOutbox_FailureKeepsRetrying(t *testing.T) {
	store := newMockOutboxStore()
	store.entries["e-1"] = resetEntry("e-1")
	sender := &fakeSender{fail: true}

	res, err := ExecuteRetryOutbox(context.Background(), RetryOutboxDeps{
		OutboxStore: store,
		Sender:      sender,
		From:        "noreply@palestra.test",
		Now:         fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Failed != 1 {
		t.Errorf("expected 1 failure, got %+v", res)
	}
	saved := store.entries["e-1"]
	if saved.IsTerminal() {
		t.Errorf("expected non-terminal status, got %s", saved.Status)
	}
	if saved.Attempts != 1 {
		t.Errorf("expected attempt recorded, got %d", saved.Attempts)
	}
	if saved.ErrorMessage == "" {
		t.Error("expected last error to be recorded")
	}
}

// TestExecuteRetryOutbox_BackoffSkips tests that a recently attempted entry
// waits out its backoff window.
func TestExecuteRetryOutbox_BackoffSkips(t *testing.T) {
	store := newMockOutboxStore()
	e := resetEntry("e-1")
	e.Status = outbox.StatusRetrying
	e.Attempts = 3
	e.LastAttemptedAt = fixedTime.Add(-time.Minute) // backoff for 3 attempts is 8 min
	store.entries["e-1"] = e
	sender := &fakeSender{}

	res, err := ExecuteRetryOutbox(context.Background(), RetryOutboxDeps{
		OutboxStore: store,
		Sender:      sender,
		From:        "noreply@palestra.test",
		Now:         fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Skipped != 1 || res.Processed != 0 {
		t.Errorf("expected skip, got %+v", res)
	}
	if len(sender.sent) != 0 {
		t.Error("expected no delivery during backoff")
	}
}

// TestExecuteRetryOutbox_AnnouncementBatch tests fan-out of an announcement entry.
func TestExecuteRetryOutbox_AnnouncementBatch(t *testing.T) {
	store := newMockOutboxStore()
	payload, _ := json.Marshal(AnnouncementEmailPayload{
		Subject:    "Nuovi orari estivi",
		HTML:       "<p>Dal primo giugno apriamo alle 6.</p>",
		Recipients: []string{"giulia@example.com", "marco@example.com"},
	})
	store.entries["e-1"] = outbox.Entry{
		ID:          "e-1",
		ActionType:  outbox.ActionTypeAnnouncement,
		Payload:     string(payload),
		Status:      outbox.StatusPending,
		MaxAttempts: 5,
		CreatedAt:   fixedTime,
	}
	sender := &fakeSender{}

	res, err := ExecuteRetryOutbox(context.Background(), RetryOutboxDeps{
		OutboxStore: store,
		Sender:      sender,
		From:        "noreply@palestra.test",
		Now:         fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Succeeded != 1 {
		t.Errorf("expected success, got %+v", res)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(sender.sent))
	}
	for _, req := range sender.sent {
		if req.Subject != "Nuovi orari estivi" {
			t.Errorf("expected announcement subject, got %q", req.Subject)
		}
	}
}

// TestExecuteRetryOutbox_UnknownActionFails tests that an unrecognised
// action type is counted as a failure.
func TestExecuteRetryOutbox_UnknownActionFails(t *testing.T) {
	store := newMockOutboxStore()
	store.entries["e-1"] = outbox.Entry{
		ID: "e-1", ActionType: "carrier_pigeon", Payload: "{}",
		Status: outbox.StatusPending, MaxAttempts: 5, CreatedAt: fixedTime,
	}

	res, err := ExecuteRetryOutbox(context.Background(), RetryOutboxDeps{
		OutboxStore: store,
		Sender:      &fakeSender{},
		From:        "noreply@palestra.test",
		Now:         fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Failed != 1 {
		t.Errorf("expected 1 failure, got %+v", res)
	}
}

// TestExecuteRetryOutbox_Empty tests that an empty outbox is a no-op.
func TestExecuteRetryOutbox_Empty(t *testing.T) {
	res, err := ExecuteRetryOutbox(context.Background(), RetryOutboxDeps{
		OutboxStore: newMockOutboxStore(),
		Sender:      &fakeSender{},
		From:        "noreply@palestra.test",
		Now:         fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Processed != 0 {
		t.Errorf("expected no processing, got %+v", res)
	}
}

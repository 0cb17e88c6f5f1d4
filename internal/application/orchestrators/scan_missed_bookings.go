package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"palestra/internal/domain/member"
	"palestra/internal/domain/notification"
)

// MemberStoreForScan provides the member histories the scan walks.
type MemberStoreForScan interface {
	ListWithHistory(ctx context.Context) ([]member.Member, error)
}

// NotificationStoreForScan persists scan output and the processed set.
type NotificationStoreForScan interface {
	Save(ctx context.Context, n notification.Notification) error
	LoadProcessedSet(ctx context.Context) (notification.ProcessedSet, error)
	SaveProcessedKeys(ctx context.Context, keys []string) error
	ClearProcessedSet(ctx context.Context) error
	DeleteMissedBookings(ctx context.Context) error
}

// ScanMissedBookingsInput carries input for the scan orchestrator.
type ScanMissedBookingsInput struct {
	// Rebuild clears previously generated missed-booking notifications and
	// the processed set before scanning, regenerating state from history.
	Rebuild bool
}

// ScanMissedBookingsDeps holds dependencies for ScanMissedBookings.
type ScanMissedBookingsDeps struct {
	MemberStore       MemberStoreForScan
	NotificationStore NotificationStoreForScan
	Policy            notification.Policy
	GenerateID        func() string
	Now               func() time.Time
}

// ScanMissedBookingsResult carries the outcome of one scan.
type ScanMissedBookingsResult struct {
	Emitted      []notification.Notification
	MembersSeen  int
	KeysRecorded int
}

// ExecuteScanMissedBookings walks every member's booking history and emits
// one notification per newly detected missed booking. Keys already in the
// processed set are skipped, so repeated scans are idempotent.
// PRE: Policy has a positive grace period and thresholds
// POST: New notifications saved; processed set extended with their keys
func ExecuteScanMissedBookings(ctx context.Context, input ScanMissedBookingsInput, deps ScanMissedBookingsDeps) (ScanMissedBookingsResult, error) {
	if input.Rebuild {
		if err := deps.NotificationStore.DeleteMissedBookings(ctx); err != nil {
			return ScanMissedBookingsResult{}, fmt.Errorf("failed to clear missed-booking notifications: %w", err)
		}
		if err := deps.NotificationStore.ClearProcessedSet(ctx); err != nil {
			return ScanMissedBookingsResult{}, fmt.Errorf("failed to clear processed set: %w", err)
		}
		slog.Info("notification_rebuild_started")
	}

	members, err := deps.MemberStore.ListWithHistory(ctx)
	if err != nil {
		return ScanMissedBookingsResult{}, fmt.Errorf("failed to load members: %w", err)
	}

	processed, err := deps.NotificationStore.LoadProcessedSet(ctx)
	if err != nil {
		return ScanMissedBookingsResult{}, fmt.Errorf("failed to load processed set: %w", err)
	}

	histories := make([]notification.MemberHistory, 0, len(members))
	for _, m := range members {
		histories = append(histories, m.History())
	}

	emitted, updated := notification.Scan(histories, processed, deps.Now(), deps.Policy, deps.GenerateID)

	for _, n := range emitted {
		if err := deps.NotificationStore.Save(ctx, n); err != nil {
			return ScanMissedBookingsResult{}, fmt.Errorf("failed to save notification: %w", err)
		}
	}

	// Persist only the keys added by this scan.
	var newKeys []string
	for _, key := range updated.Keys() {
		if !processed.Contains(key) {
			newKeys = append(newKeys, key)
		}
	}
	if err := deps.NotificationStore.SaveProcessedKeys(ctx, newKeys); err != nil {
		return ScanMissedBookingsResult{}, fmt.Errorf("failed to save processed keys: %w", err)
	}

	slog.Info("missed_booking_scan_done",
		"members", len(members),
		"emitted", len(emitted),
		"new_keys", len(newKeys),
		"rebuild", input.Rebuild,
	)

	return ScanMissedBookingsResult{
		Emitted:      emitted,
		MembersSeen:  len(members),
		KeysRecorded: len(newKeys),
	}, nil
}

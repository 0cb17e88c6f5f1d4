// Package scheduler runs the periodic background jobs: the missed-booking
// scan and the email outbox drain.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"palestra/internal/application/orchestrators"
)

// Jobs bundles the dependencies of the scheduled work.
type Jobs struct {
	ScanDeps  orchestrators.ScanMissedBookingsDeps
	RetryDeps orchestrators.RetryOutboxDeps

	// JobTimeout bounds each run. Zero means one minute.
	JobTimeout time.Duration
}

// Scheduler wraps a cron runner with the application's jobs registered.
type Scheduler struct {
	cron *cron.Cron
}

// New builds a Scheduler with the scan and outbox jobs registered on the
// given cron schedules (standard 5-field specs or @every descriptors).
func New(scanSchedule, outboxSchedule string, jobs Jobs) (*Scheduler, error) {
	c := cron.New()

	if _, err := c.AddFunc(scanSchedule, func() { jobs.runScan() }); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc(outboxSchedule, func() { jobs.runOutbox() }); err != nil {
		return nil, err
	}

	return &Scheduler{cron: c}, nil
}

// Start launches the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (j Jobs) timeout() time.Duration {
	if j.JobTimeout > 0 {
		return j.JobTimeout
	}
	return time.Minute
}

func (j Jobs) runScan() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout())
	defer cancel()

	result, err := orchestrators.ExecuteScanMissedBookings(ctx, orchestrators.ScanMissedBookingsInput{}, j.ScanDeps)
	if err != nil {
		slog.Error("scan_event", "outcome", "error", "error", err)
		return
	}
	slog.Info("scan_event", "outcome", "completed",
		"members_seen", result.MembersSeen,
		"emitted", len(result.Emitted))
}

func (j Jobs) runOutbox() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout())
	defer cancel()

	result, err := orchestrators.ExecuteRetryOutbox(ctx, j.RetryDeps)
	if err != nil {
		slog.Error("outbox_event", "outcome", "error", "error", err)
		return
	}
	if result.Processed > 0 {
		slog.Info("outbox_event", "outcome", "completed",
			"processed", result.Processed,
			"succeeded", result.Succeeded,
			"failed", result.Failed,
			"skipped", result.Skipped)
	}
}

package projections

import (
	"context"
	"time"

	"palestra/internal/domain/slot"
)

// GetAvailabilityQuery carries query parameters for the occupancy grid.
type GetAvailabilityQuery struct {
	From time.Time // defaults to now
	Days int       // defaults to the standard look-ahead horizon
}

// GetAvailabilityDeps holds dependencies for GetAvailability.
type GetAvailabilityDeps struct {
	BookingStore  BookingStore
	SettingsStore SettingsStore
}

// GetAvailabilityResult carries the occupancy grid.
type GetAvailabilityResult struct {
	Capacity int
	From     string // YYYY-MM-DD
	Days     []slot.DayAvailability
}

// QueryGetAvailability computes the slot occupancy grid over the look-ahead
// horizon, using the configured floor capacity.
// PRE: Days >= 0 when set
// POST: one DayAvailability per day, each covering the full operating window
func QueryGetAvailability(ctx context.Context, query GetAvailabilityQuery, deps GetAvailabilityDeps, now time.Time) (GetAvailabilityResult, error) {
	from := query.From
	if from.IsZero() {
		from = now
	}
	days := query.Days
	if days <= 0 {
		days = slot.DefaultHorizonDays
	}

	cfg, err := deps.SettingsStore.Get(ctx)
	if err != nil {
		return GetAvailabilityResult{}, err
	}

	// Fetch every booking touching the horizon in one range query. The grid
	// starts at the opening hour of the first day and ends at closing of the
	// last.
	year, month, day := from.Date()
	rangeStart := time.Date(year, month, day, slot.OpeningHour, 0, 0, 0, from.Location())
	rangeEnd := time.Date(year, month, day, slot.ClosingHour, 0, 0, 0, from.Location()).AddDate(0, 0, days-1)

	bookings, err := deps.BookingStore.ListByRange(ctx, rangeStart, rangeEnd)
	if err != nil {
		return GetAvailabilityResult{}, err
	}

	return GetAvailabilityResult{
		Capacity: cfg.MaxCapacity,
		From:     from.Format("2006-01-02"),
		Days:     slot.BuildGrid(bookings, cfg.MaxCapacity, from, days),
	}, nil
}

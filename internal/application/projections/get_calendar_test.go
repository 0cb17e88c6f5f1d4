package projections

import (
	"context"
	"testing"
	"time"

	domainBooking "palestra/internal/domain/booking"
)

// TestQueryGetCalendar_MergesAndSummarises tests block merging and day counts.
func TestQueryGetCalendar_MergesAndSummarises(t *testing.T) {
	nine := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	store := &mockBookingStore{bookings: []domainBooking.Booking{
		mkBooking("b-1", nine, 30*time.Minute, "Giulia Bianchi"),
		mkBooking("b-2", nine.Add(30*time.Minute), 30*time.Minute, "Marco Rossi"), // adjacent, merges
		mkBooking("b-3", nine.Add(3*time.Hour), 30*time.Minute, "Sara Conti"),     // separate block
		mkBooking("b-4", nine.AddDate(0, 0, 1), 30*time.Minute, "Luca Ferrari"),   // next day
	}}

	res, err := QueryGetCalendar(context.Background(), GetCalendarDeps{BookingStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Events) != 4 {
		t.Errorf("expected 4 events, got %d", len(res.Events))
	}
	if len(res.Blocks) != 3 {
		t.Fatalf("expected 3 merged blocks, got %d", len(res.Blocks))
	}
	if res.Blocks[0].Count != 2 {
		t.Errorf("expected first block to hold 2 bookings, got %d", res.Blocks[0].Count)
	}
	if res.Blocks[0].Start != "2026-03-04T09:00:00Z" || res.Blocks[0].End != "2026-03-04T10:00:00Z" {
		t.Errorf("unexpected first block bounds: %s .. %s", res.Blocks[0].Start, res.Blocks[0].End)
	}

	if len(res.Days) != 2 {
		t.Fatalf("expected 2 day summaries, got %d", len(res.Days))
	}
	if res.Days[0].Date != "2026-03-04" || res.Days[0].Count != 3 {
		t.Errorf("unexpected first day summary: %+v", res.Days[0])
	}
	if res.Days[1].Date != "2026-03-05" || res.Days[1].Count != 1 {
		t.Errorf("unexpected second day summary: %+v", res.Days[1])
	}
}

// TestQueryGetCalendar_RoundsBlockBounds tests outward grid alignment.
func TestQueryGetCalendar_RoundsBlockBounds(t *testing.T) {
	start := time.Date(2026, 3, 4, 9, 10, 0, 0, time.UTC)
	store := &mockBookingStore{bookings: []domainBooking.Booking{
		mkBooking("b-1", start, 25*time.Minute, "Giulia Bianchi"),
	}}

	res, err := QueryGetCalendar(context.Background(), GetCalendarDeps{BookingStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(res.Blocks))
	}
	b := res.Blocks[0]
	if b.RoundedStart != "2026-03-04T09:00:00Z" {
		t.Errorf("expected rounded start 09:00, got %s", b.RoundedStart)
	}
	if b.RoundedEnd != "2026-03-04T09:30:00Z" {
		t.Errorf("expected rounded end 09:30, got %s", b.RoundedEnd)
	}
}

// TestQueryGetCalendar_Empty tests the empty calendar.
func TestQueryGetCalendar_Empty(t *testing.T) {
	res, err := QueryGetCalendar(context.Background(), GetCalendarDeps{BookingStore: &mockBookingStore{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Events) != 0 || len(res.Blocks) != 0 || len(res.Days) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

// TestQueryGetBookingsForDate_Detail tests the day-detail listing.
func TestQueryGetBookingsForDate_Detail(t *testing.T) {
	nine := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	b := mkBooking("b-1", nine, 30*time.Minute, "Giulia Bianchi")
	b.Machines = []domainBooking.Machine{
		{Value: "treadmill-2", Label: "Treadmill 2"},
		{Value: "rower-1", Label: "Rower 1"},
	}
	store := &mockBookingStore{bookings: []domainBooking.Booking{
		b,
		mkBooking("b-2", nine.AddDate(0, 0, 1), 30*time.Minute, "Marco Rossi"),
	}}

	details, err := QueryGetBookingsForDate(context.Background(), GetBookingsForDateQuery{Date: "2026-03-04"}, GetCalendarDeps{BookingStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("expected 1 booking on 2026-03-04, got %d", len(details))
	}
	if details[0].Machines != "Treadmill 2, Rower 1" {
		t.Errorf("unexpected machine labels: %q", details[0].Machines)
	}
}

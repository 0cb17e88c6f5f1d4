package projections

import (
	"context"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	domainBooking "palestra/internal/domain/booking"
)

// TestQueryExportCalendar_Feed tests that the feed round-trips through the
// iCal parser with one event per booking.
func TestQueryExportCalendar_Feed(t *testing.T) {
	nine := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	store := &mockBookingStore{bookings: []domainBooking.Booking{
		mkBooking("b-1", nine, 30*time.Minute, "Giulia Bianchi"),
		mkBooking("b-2", nine.Add(time.Hour), 30*time.Minute, "Marco Rossi"),
	}}

	feed, err := QueryExportCalendar(context.Background(), ExportCalendarDeps{BookingStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cal, err := ical.ParseCalendar(strings.NewReader(feed))
	if err != nil {
		t.Fatalf("feed does not parse: %v", err)
	}
	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	uid := events[0].GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || !strings.HasSuffix(uid.Value, "@palestra") {
		t.Errorf("expected palestra UID, got %v", uid)
	}
	summary := events[0].GetProperty(ical.ComponentPropertySummary)
	if summary == nil || summary.Value != "Giulia Bianchi" {
		t.Errorf("expected booking title as summary, got %v", summary)
	}
}

// TestQueryExportCalendar_SkipsInvalid tests that malformed intervals are dropped.
func TestQueryExportCalendar_SkipsInvalid(t *testing.T) {
	nine := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	bad := mkBooking("b-bad", nine, 0, "Sara Conti") // zero-length interval
	store := &mockBookingStore{bookings: []domainBooking.Booking{
		mkBooking("b-1", nine, 30*time.Minute, "Giulia Bianchi"),
		bad,
	}}

	feed, err := QueryExportCalendar(context.Background(), ExportCalendarDeps{BookingStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(feed, "BEGIN:VEVENT") != 1 {
		t.Errorf("expected exactly 1 event in feed, got %d", strings.Count(feed, "BEGIN:VEVENT"))
	}
}

// TestQueryExportCalendar_Empty tests an empty calendar.
func TestQueryExportCalendar_Empty(t *testing.T) {
	feed, err := QueryExportCalendar(context.Background(), ExportCalendarDeps{BookingStore: &mockBookingStore{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(feed, "BEGIN:VCALENDAR") {
		t.Error("expected a VCALENDAR envelope")
	}
	if strings.Contains(feed, "BEGIN:VEVENT") {
		t.Error("expected no events")
	}
}

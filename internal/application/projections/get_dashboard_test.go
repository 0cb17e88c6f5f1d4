package projections

import (
	"context"
	"testing"
	"time"

	domainBooking "palestra/internal/domain/booking"
	domainMember "palestra/internal/domain/member"
	domainSettings "palestra/internal/domain/settings"
)

func dashboardDeps(bookings []domainBooking.Booking, members []domainMember.Member, cfg domainSettings.Settings, unread int) GetDashboardDeps {
	return GetDashboardDeps{
		BookingStore:      &mockBookingStore{bookings: bookings},
		MemberStore:       &mockMemberStore{members: members},
		SettingsStore:     &mockSettingsStore{settings: cfg},
		NotificationStore: &mockNotificationStore{unread: unread},
	}
}

// TestQueryGetDashboardStats_Counters tests each headline counter.
func TestQueryGetDashboardStats_Counters(t *testing.T) {
	// projNow is Wednesday 2026-03-04 12:00 UTC.
	bookings := []domainBooking.Booking{
		mkBooking("b-now", projNow.Add(-10*time.Minute), 30*time.Minute, "Giulia Bianchi"), // ongoing
		mkBooking("b-week", projNow.AddDate(0, 0, 2), 30*time.Minute, "Marco Rossi"),       // Friday
		mkBooking("b-old", projNow.AddDate(0, 0, -10), 30*time.Minute, "Sara Conti"),       // last month window
	}
	members := []domainMember.Member{
		{
			ID: "m-1", FirstName: "Giulia", LastName: "Bianchi",
			Email: "giulia@example.com", MemberNumber: "M0001", Status: domainMember.StatusActive,
			AccessHistory: []domainMember.AccessEntry{
				{Date: "2026-03-02", Time: "09:00"},
				{Date: "2026-03-03", Time: "18:00"},
				{Date: "2026-02-27", Time: "09:00"}, // previous month, not counted
			},
		},
		{
			ID: "m-2", FirstName: "Marco", LastName: "Rossi",
			Email: "marco@example.com", MemberNumber: "M0002", Status: domainMember.StatusActive,
		},
	}

	stats, err := QueryGetDashboardStats(context.Background(), dashboardDeps(bookings, members, domainSettings.Default(), 4), projNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalMembers != 2 {
		t.Errorf("expected 2 members, got %d", stats.TotalMembers)
	}
	if stats.BookingsThisWeek != 2 {
		t.Errorf("expected 2 bookings this week, got %d", stats.BookingsThisWeek)
	}
	if stats.PresencesThisMonth != 2 {
		t.Errorf("expected 2 presences this month, got %d", stats.PresencesThisMonth)
	}
	if stats.CurrentPresences != 1 {
		t.Errorf("expected 1 current presence, got %d", stats.CurrentPresences)
	}
	if stats.UnreadNotifications != 4 {
		t.Errorf("expected 4 unread notifications, got %d", stats.UnreadNotifications)
	}
}

// TestQueryGetCurrentPresences_EntryMargin tests that the margin widens the
// presence window on both sides.
func TestQueryGetCurrentPresences_EntryMargin(t *testing.T) {
	bookings := []domainBooking.Booking{
		// Ended 10 minutes ago: present only with a margin >= 10.
		mkBooking("b-ended", projNow.Add(-40*time.Minute), 30*time.Minute, "Giulia Bianchi"),
		// Starts in 10 minutes: present only with a margin > 10.
		mkBooking("b-soon", projNow.Add(10*time.Minute), 30*time.Minute, "Marco Rossi"),
		// Well in the past.
		mkBooking("b-gone", projNow.Add(-3*time.Hour), 30*time.Minute, "Sara Conti"),
	}

	noMargin, err := QueryGetCurrentPresences(context.Background(),
		dashboardDeps(bookings, nil, domainSettings.Settings{MaxCapacity: 5, EntryMarginMinutes: 0}, 0), projNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(noMargin) != 0 {
		t.Errorf("expected no presences without margin, got %d", len(noMargin))
	}

	withMargin, err := QueryGetCurrentPresences(context.Background(),
		dashboardDeps(bookings, nil, domainSettings.Settings{MaxCapacity: 5, EntryMarginMinutes: 15}, 0), projNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(withMargin) != 2 {
		t.Fatalf("expected 2 presences with a 15-minute margin, got %d", len(withMargin))
	}
}

// TestQueryGetCurrentPresences_Fields tests the presence row contents.
func TestQueryGetCurrentPresences_Fields(t *testing.T) {
	bookings := []domainBooking.Booking{
		mkBooking("b-1", projNow.Add(-10*time.Minute), 30*time.Minute, "Giulia Bianchi"),
	}

	presences, err := QueryGetCurrentPresences(context.Background(),
		dashboardDeps(bookings, nil, domainSettings.Default(), 0), projNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(presences) != 1 {
		t.Fatalf("expected 1 presence, got %d", len(presences))
	}
	p := presences[0]
	if p.MemberName != "Giulia Bianchi" {
		t.Errorf("expected member name, got %q", p.MemberName)
	}
	if p.Start != "11:50" || p.End != "12:20" {
		t.Errorf("unexpected time window: %s .. %s", p.Start, p.End)
	}
}

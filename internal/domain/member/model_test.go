package member_test

import (
	"testing"

	"palestra/internal/domain/member"
	"palestra/internal/domain/notification"
)

func validMember() member.Member {
	return member.Member{
		ID:           "m-1",
		FirstName:    "Mario",
		LastName:     "Rossi",
		Email:        "mario.rossi@example.com",
		MemberNumber: "MAT001",
		UserCode:     "UC001",
		Status:       member.StatusActive,
	}
}

// TestMember_Validate tests validation of Member.
func TestMember_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*member.Member)
		wantErr error
	}{
		{"valid member", func(m *member.Member) {}, nil},
		{"empty first name", func(m *member.Member) { m.FirstName = " " }, member.ErrEmptyFirstName},
		{"empty last name", func(m *member.Member) { m.LastName = "" }, member.ErrEmptyLastName},
		{"empty email", func(m *member.Member) { m.Email = "" }, member.ErrEmptyEmail},
		{"email without at", func(m *member.Member) { m.Email = "mario.example.com" }, member.ErrInvalidEmail},
		{"empty member number", func(m *member.Member) { m.MemberNumber = "" }, member.ErrEmptyMemberNumber},
		{"invalid status", func(m *member.Member) { m.Status = "ghost" }, member.ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMember()
			tt.mutate(&m)
			err := m.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
			if tt.wantErr != nil && err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMember_FullName(t *testing.T) {
	m := validMember()
	if got := m.FullName(); got != "Mario Rossi" {
		t.Errorf("FullName() = %q, want %q", got, "Mario Rossi")
	}
}

// TestMember_MissedBookings: empty history counts as zero, never an error.
func TestMember_MissedBookings(t *testing.T) {
	m := validMember()
	if got := m.MissedBookings(); got != 0 {
		t.Errorf("MissedBookings() on empty history = %d, want 0", got)
	}

	m.BookingHistory = []member.BookingEntry{
		{Date: "2026-01-07", Time: "15:00", HasAccess: true},
		{Date: "2026-01-09", Time: "10:00", HasAccess: false},
		{Date: "2026-01-12", Time: "19:00", HasAccess: false},
	}
	if got := m.MissedBookings(); got != 2 {
		t.Errorf("MissedBookings() = %d, want 2", got)
	}
}

func TestMember_TrafficLight(t *testing.T) {
	p := notification.DefaultPolicy()
	m := validMember()
	if got := m.TrafficLight(p); got != notification.LightGreen {
		t.Errorf("TrafficLight() = %s, want green", got)
	}
	m.BookingHistory = []member.BookingEntry{
		{Date: "2026-01-09", Time: "10:00", HasAccess: false},
	}
	if got := m.TrafficLight(p); got != notification.LightOrange {
		t.Errorf("TrafficLight() = %s, want orange", got)
	}
	m.BookingHistory = append(m.BookingHistory,
		member.BookingEntry{Date: "2026-01-10", Time: "10:00", HasAccess: false},
		member.BookingEntry{Date: "2026-01-11", Time: "10:00", HasAccess: false},
	)
	if got := m.TrafficLight(p); got != notification.LightRed {
		t.Errorf("TrafficLight() = %s, want red", got)
	}
}

func TestMember_History(t *testing.T) {
	m := validMember()
	m.BookingHistory = []member.BookingEntry{
		{Date: "2026-01-09", Time: "10:00", HasAccess: false},
	}
	h := m.History()
	if h.MemberID != "m-1" || h.Name != "Mario Rossi" || h.MemberNumber != "MAT001" {
		t.Errorf("unexpected history header: %+v", h)
	}
	if len(h.Entries) != 1 || h.Entries[0].Date != "2026-01-09" || h.Entries[0].HasAccess {
		t.Errorf("unexpected history entries: %+v", h.Entries)
	}
}

package member

import (
	"errors"
	"strings"
	"time"

	"palestra/internal/domain/notification"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxEmailLength = 254
)

// Member status constants.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusArchived  = "archived"
)

// ValidStatuses contains all valid member status values.
var ValidStatuses = []string{StatusActive, StatusSuspended, StatusArchived}

// Domain errors
var (
	ErrEmptyFirstName    = errors.New("member first name cannot be empty")
	ErrEmptyLastName     = errors.New("member last name cannot be empty")
	ErrEmptyEmail        = errors.New("member email cannot be empty")
	ErrInvalidEmail      = errors.New("member email must contain '@'")
	ErrEmptyMemberNumber = errors.New("member number cannot be empty")
	ErrInvalidStatus     = errors.New("member status must be one of: active, suspended, archived")
	ErrAlreadyArchived   = errors.New("member is already archived")
)

// AccessEntry records one physical entrance of the member.
type AccessEntry struct {
	Date     string // YYYY-MM-DD
	Time     string // HH:MM
	Device   string
	Location string
}

// BookingEntry is one entry of the member's booking history. HasAccess is
// false when the member booked but never showed up.
type BookingEntry struct {
	Date      string // YYYY-MM-DD
	Time      string // HH:MM
	HasAccess bool
}

// Member is a gym member managed by the back office.
type Member struct {
	ID                 string
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	Company            string
	Birthdate          string // YYYY-MM-DD
	Gender             string
	MemberNumber       string // badge number printed on the membership card
	UserCode           string // short code encoded in the entrance QR badge
	Status             string
	MedicalCertificate bool
	RegisteredAt       time.Time
	AccessHistory      []AccessEntry
	BookingHistory     []BookingEntry
}

// Validate checks if the Member has valid data.
// PRE: Member struct is populated
// POST: Returns nil if valid, error otherwise
func (m *Member) Validate() error {
	if strings.TrimSpace(m.FirstName) == "" {
		return ErrEmptyFirstName
	}
	if strings.TrimSpace(m.LastName) == "" {
		return ErrEmptyLastName
	}
	if len(m.FirstName) > MaxNameLength || len(m.LastName) > MaxNameLength {
		return errors.New("member name cannot exceed 100 characters")
	}
	if strings.TrimSpace(m.Email) == "" {
		return ErrEmptyEmail
	}
	if len(m.Email) > MaxEmailLength {
		return errors.New("member email cannot exceed 254 characters")
	}
	if !strings.Contains(m.Email, "@") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(m.MemberNumber) == "" {
		return ErrEmptyMemberNumber
	}
	if !isValidStatus(m.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// FullName returns the member's display name.
func (m *Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// MissedBookings counts booking history entries the member did not honour.
// A missing or empty history means zero missed bookings, not an error.
func (m *Member) MissedBookings() int {
	missed := 0
	for _, e := range m.BookingHistory {
		if !e.HasAccess {
			missed++
		}
	}
	return missed
}

// TrafficLight returns the member's missed-booking standing under the policy.
func (m *Member) TrafficLight(p notification.Policy) notification.TrafficLight {
	return notification.TrafficLightForMissed(m.MissedBookings(), p)
}

// History converts the member's booking history into the scan input shape.
func (m *Member) History() notification.MemberHistory {
	entries := make([]notification.HistoryEntry, 0, len(m.BookingHistory))
	for _, e := range m.BookingHistory {
		entries = append(entries, notification.HistoryEntry{
			Date:      e.Date,
			Time:      e.Time,
			HasAccess: e.HasAccess,
		})
	}
	return notification.MemberHistory{
		MemberID:     m.ID,
		Name:         m.FullName(),
		MemberNumber: m.MemberNumber,
		Entries:      entries,
	}
}

func isValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}

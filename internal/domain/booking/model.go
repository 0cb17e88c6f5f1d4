package booking

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength      = 200
	MaxMemberNameLength = 200
)

// DefaultTitle is used when a booking is created without an explicit title.
const DefaultTitle = "Booking"

// Domain errors
var (
	ErrMissingStart    = errors.New("booking start is required")
	ErrMissingEnd      = errors.New("booking end is required")
	ErrInvalidInterval = errors.New("booking start must be before end")
	ErrEmptyMemberName = errors.New("booking member name cannot be empty")
)

// Machine identifies a piece of gym equipment reserved with a booking.
type Machine struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Booking represents a reserved time interval for one member.
// Bookings are created on confirmation and deleted on cancel; edits are
// modelled as delete + recreate, never update-in-place.
// INVARIANT: Start < End. The interval is half-open: [Start, End).
type Booking struct {
	ID         string
	Title      string
	Start      time.Time
	End        time.Time
	MemberName string
	Machines   []Machine
	CreatedAt  time.Time
}

// Validate checks the booking's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (b *Booking) Validate() error {
	if b.Start.IsZero() {
		return ErrMissingStart
	}
	if b.End.IsZero() {
		return ErrMissingEnd
	}
	if !b.Start.Before(b.End) {
		return ErrInvalidInterval
	}
	if strings.TrimSpace(b.MemberName) == "" {
		return ErrEmptyMemberName
	}
	if len(b.Title) > MaxTitleLength {
		return errors.New("booking title cannot exceed 200 characters")
	}
	if len(b.MemberName) > MaxMemberNameLength {
		return errors.New("booking member name cannot exceed 200 characters")
	}
	return nil
}

// HasValidInterval reports whether the booking carries a usable time interval.
// Slot and calendar computations skip bookings that fail this check instead of
// aborting (skip-and-continue).
func (b *Booking) HasValidInterval() bool {
	return !b.Start.IsZero() && !b.End.IsZero() && b.Start.Before(b.End)
}

// Overlaps reports whether the booking intersects the half-open interval
// [from, to). A booking ending exactly at `from` or starting exactly at `to`
// does not overlap.
func (b *Booking) Overlaps(from, to time.Time) bool {
	return b.Start.Before(to) && b.End.After(from)
}

// Date returns the booking's calendar day in YYYY-MM-DD form.
func (b *Booking) Date() string {
	return b.Start.Format("2006-01-02")
}

// MachineLabels returns a comma-separated list of reserved machine labels.
func (b *Booking) MachineLabels() string {
	labels := make([]string, 0, len(b.Machines))
	for _, m := range b.Machines {
		labels = append(labels, m.Label)
	}
	return strings.Join(labels, ", ")
}

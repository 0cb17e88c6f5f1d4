package notification

import (
	"fmt"
	"sort"
	"time"
)

// Notification type constants.
const (
	TypeMissedBooking = "missed_booking"
	TypeNewBooking    = "new_booking"
	TypeInfo          = "info"
	TypeWarning       = "warning"
)

// Severity of a missed-booking notification, derived from the member's
// running missed count at emission time.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// TrafficLight summarises a member's overall missed-booking standing.
type TrafficLight string

const (
	LightGreen  TrafficLight = "green"
	LightOrange TrafficLight = "orange"
	LightRed    TrafficLight = "red"
)

// Policy holds the product-policy knobs for missed-booking detection. The
// grace period and the severity thresholds are configuration, not constants.
type Policy struct {
	GracePeriod time.Duration // minimum age of a missed booking before it is flagged
	MediumCount int           // running count at which severity becomes medium
	HighCount   int           // running count at which severity becomes high (and stays there)
}

// DefaultPolicy returns the policy the back office ships with: one hour of
// grace, medium at the second miss, high from the third on.
func DefaultPolicy() Policy {
	return Policy{
		GracePeriod: time.Hour,
		MediumCount: 2,
		HighCount:   3,
	}
}

// Notification is an emitted back-office notification record.
type Notification struct {
	ID           string
	Type         string
	Title        string
	Message      string
	Timestamp    time.Time
	Read         bool
	MemberID     string
	MemberName   string
	MemberNumber string
	BookingDate  string // YYYY-MM-DD, set for missed-booking notifications
	BookingTime  string // HH:MM, set for missed-booking notifications
	MissedCount  int    // running missed count at emission
	Severity     Severity
	TrafficLight TrafficLight
}

// IsMissedBooking reports whether the notification belongs to the
// missed-booking category (subject to dedup and rebuild).
func (n *Notification) IsMissedBooking() bool {
	return n.BookingDate != "" && n.BookingTime != "" &&
		(n.Type == TypeMissedBooking || n.Type == TypeWarning)
}

// HistoryEntry is one entry of a member's booking history as supplied by the
// member source. HasAccess is false when the member never checked in.
type HistoryEntry struct {
	Date      string // YYYY-MM-DD
	Time      string // HH:MM
	HasAccess bool
}

// When parses the entry's date and time in the given location.
func (e HistoryEntry) When(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02T15:04", e.Date+"T"+e.Time, loc)
}

// MemberHistory is the per-member input to Scan.
type MemberHistory struct {
	MemberID     string
	Name         string
	MemberNumber string
	Entries      []HistoryEntry
}

// ProcessedSet tracks (member, booking) keys for which a notification has
// already been emitted.
type ProcessedSet map[string]struct{}

// NewProcessedSet builds a set from previously persisted keys.
func NewProcessedSet(keys []string) ProcessedSet {
	set := make(ProcessedSet, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// Contains reports whether the key has been processed.
func (s ProcessedSet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

// Add marks a key as processed.
func (s ProcessedSet) Add(key string) { s[key] = struct{}{} }

// Keys returns the set's keys in sorted order for stable persistence.
func (s ProcessedSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy of the set.
func (s ProcessedSet) Clone() ProcessedSet {
	out := make(ProcessedSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Key builds the dedup key for one missed booking.
func Key(memberID, date, tm string) string {
	return memberID + "_" + date + "_" + tm
}

// SeverityForCount maps a running missed count to a severity under the policy.
// Severity never decreases with the count.
func SeverityForCount(count int, p Policy) Severity {
	switch {
	case count >= p.HighCount:
		return SeverityHigh
	case count >= p.MediumCount:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// TrafficLightForMissed maps a member's total missed count to a standing:
// green for none, red from the high threshold on, orange in between.
func TrafficLightForMissed(missed int, p Policy) TrafficLight {
	switch {
	case missed == 0:
		return LightGreen
	case missed >= p.HighCount:
		return LightRed
	default:
		return LightOrange
	}
}

// Scan walks every member's booking history in chronological order and emits
// at most one notification per (member, missed booking) pair. The running
// missed count includes the current entry and keeps counting past entries
// that are skipped for dedup or grace, so severities never regress on later
// scans. Entries with an unparseable date or time are skipped.
// PRE: processed holds the keys of previously emitted notifications
// POST: returns new notifications plus the updated processed set; the inputs
// are not mutated. Re-running with the returned set and unchanged data emits
// nothing (idempotence).
func Scan(members []MemberHistory, processed ProcessedSet, now time.Time, p Policy, newID func() string) ([]Notification, ProcessedSet) {
	updated := processed.Clone()
	var emitted []Notification

	for _, m := range members {
		if len(m.Entries) == 0 {
			continue
		}

		entries := make([]HistoryEntry, len(m.Entries))
		copy(entries, m.Entries)
		sort.SliceStable(entries, func(i, j int) bool {
			ti, erri := entries[i].When(now.Location())
			tj, errj := entries[j].When(now.Location())
			if erri != nil || errj != nil {
				return erri == nil
			}
			return ti.Before(tj)
		})

		missedSoFar := 0
		for _, e := range entries {
			if e.HasAccess {
				continue
			}
			when, err := e.When(now.Location())
			if err != nil {
				continue
			}
			missedSoFar++

			key := Key(m.MemberID, e.Date, e.Time)
			if updated.Contains(key) {
				continue
			}
			if now.Sub(when) < p.GracePeriod {
				continue
			}

			emitted = append(emitted, newMissedBooking(m, e, missedSoFar, p, now, newID()))
			updated.Add(key)
		}
	}
	return emitted, updated
}

func newMissedBooking(m MemberHistory, e HistoryEntry, count int, p Policy, now time.Time, id string) Notification {
	severity := SeverityForCount(count, p)

	typ := TypeMissedBooking
	title := fmt.Sprintf("Missed booking: %s", m.Name)
	switch severity {
	case SeverityMedium:
		typ = TypeWarning
		title = fmt.Sprintf("Attention: %s missed another booking", m.Name)
	case SeverityHigh:
		typ = TypeWarning
		title = fmt.Sprintf("Alert: %s missed %d bookings", m.Name, count)
	}

	return Notification{
		ID:           id,
		Type:         typ,
		Title:        title,
		Message:      fmt.Sprintf("%s (member no. %s) did not show up for the booking on %s at %s", m.Name, m.MemberNumber, e.Date, e.Time),
		Timestamp:    now,
		MemberID:     m.MemberID,
		MemberName:   m.Name,
		MemberNumber: m.MemberNumber,
		BookingDate:  e.Date,
		BookingTime:  e.Time,
		MissedCount:  count,
		Severity:     severity,
		TrafficLight: TrafficLightForMissed(count, p),
	}
}

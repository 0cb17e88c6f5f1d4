package settings

import "errors"

// Defaults applied when no value has been persisted yet.
const (
	DefaultMaxCapacity        = 5
	DefaultEntryMarginMinutes = 0
)

// Domain errors
var (
	ErrInvalidCapacity = errors.New("max capacity must be at least 1")
	ErrInvalidMargin   = errors.New("entry margin must be between 0 and 180 minutes")
)

// Settings is the persisted back-office configuration. It replaces the
// browser-local storage of the legacy UI: computations receive these values
// as read-only parameters and never reach for ambient state.
type Settings struct {
	MaxCapacity        int // simultaneous bookings the gym floor can hold
	EntryMarginMinutes int // tolerance around a booking for turnstile access
}

// Default returns the settings the back office ships with.
func Default() Settings {
	return Settings{
		MaxCapacity:        DefaultMaxCapacity,
		EntryMarginMinutes: DefaultEntryMarginMinutes,
	}
}

// Validate checks if the Settings have valid data.
// PRE: Settings struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Settings) Validate() error {
	if s.MaxCapacity < 1 {
		return ErrInvalidCapacity
	}
	if s.EntryMarginMinutes < 0 || s.EntryMarginMinutes > 180 {
		return ErrInvalidMargin
	}
	return nil
}

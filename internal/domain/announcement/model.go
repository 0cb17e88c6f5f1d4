package announcement

import (
	"errors"
	"time"
)

// Announcement statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Color presets for the front desk announcement board.
const (
	ColorOrange = "orange" // default
	ColorRed    = "red"
	ColorGreen  = "green"
	ColorBlue   = "blue"
	ColorGrey   = "grey"
)

// ColorHex maps preset names to hex values.
var ColorHex = map[string]string{
	ColorOrange: "#F9B232",
	ColorRed:    "#e74c3c",
	ColorGreen:  "#27ae60",
	ColorBlue:   "#2980b9",
	ColorGrey:   "#7f8c8d",
}

// ValidColors contains all valid colour preset names.
var ValidColors = []string{ColorOrange, ColorRed, ColorGreen, ColorBlue, ColorGrey}

// Domain errors
var (
	ErrEmptyTitle       = errors.New("announcement title cannot be empty")
	ErrEmptyContent     = errors.New("announcement content cannot be empty")
	ErrInvalidStatus    = errors.New("announcement status must be one of: draft, published")
	ErrInvalidColor     = errors.New("announcement color must be one of: orange, red, green, blue, grey")
	ErrAlreadyPublished = errors.New("announcement is already published")
	ErrEmptyPublisher   = errors.New("publisher ID is required")
)

// ValidStatuses contains all valid announcement statuses.
var ValidStatuses = []string{StatusDraft, StatusPublished}

// Announcement is a message operators publish to the gym noticeboard.
// Content supports Markdown formatting.
type Announcement struct {
	ID           string
	Status       string
	Title        string
	Content      string // Markdown content
	CreatedBy    string // operator ID of creator
	PublishedBy  string // operator ID of publisher (empty if draft)
	AuthorName   string
	Color        string
	Pinned       bool
	PinnedAt     time.Time
	VisibleFrom  time.Time // scheduled appearance (zero = immediately)
	VisibleUntil time.Time // scheduled disappearance (zero = indefinite)
	CreatedAt    time.Time
	UpdatedAt    time.Time
	PublishedAt  time.Time
}

// Validate checks if the Announcement has valid data.
// PRE: Announcement struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Announcement) Validate() error {
	if a.Title == "" {
		return ErrEmptyTitle
	}
	if a.Content == "" {
		return ErrEmptyContent
	}
	if !isValidStatus(a.Status) {
		return ErrInvalidStatus
	}
	if a.Color != "" && !isValidColor(a.Color) {
		return ErrInvalidColor
	}
	return nil
}

// EffectiveColor returns the color hex value, defaulting to orange.
func (a *Announcement) EffectiveColor() string {
	if hex, ok := ColorHex[a.Color]; ok {
		return hex
	}
	return ColorHex[ColorOrange]
}

// IsVisible returns true if the announcement falls within its scheduled
// visibility window.
// PRE: now is the current time in UTC
func (a *Announcement) IsVisible(now time.Time) bool {
	if !a.VisibleFrom.IsZero() && now.Before(a.VisibleFrom) {
		return false
	}
	if !a.VisibleUntil.IsZero() && now.After(a.VisibleUntil) {
		return false
	}
	return true
}

// Pin marks the announcement as pinned to the top of the board.
func (a *Announcement) Pin(now time.Time) {
	a.Pinned = true
	a.PinnedAt = now
}

// Unpin removes the pinned status.
func (a *Announcement) Unpin() {
	a.Pinned = false
	a.PinnedAt = time.Time{}
}

// IsPublished returns true if the announcement has been published.
// INVARIANT: Status field is not mutated
func (a *Announcement) IsPublished() bool {
	return a.Status == StatusPublished
}

// Publish moves the announcement from draft to published.
// PRE: Announcement is in draft state, publisherID is non-empty
// POST: Status is published, PublishedBy and PublishedAt are set
func (a *Announcement) Publish(publisherID string, now time.Time) error {
	if a.IsPublished() {
		return ErrAlreadyPublished
	}
	if publisherID == "" {
		return ErrEmptyPublisher
	}
	a.Status = StatusPublished
	a.PublishedBy = publisherID
	a.PublishedAt = now
	return nil
}

func isValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func isValidColor(c string) bool {
	for _, v := range ValidColors {
		if v == c {
			return true
		}
	}
	return false
}

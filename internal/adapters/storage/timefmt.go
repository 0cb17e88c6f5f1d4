package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// TimeFormat is the canonical layout for timestamps persisted in TEXT columns.
const TimeFormat = "2006-01-02T15:04:05.999999999Z07:00"

// FormatTime renders a timestamp for storage. Timestamps are normalized
// to UTC so that lexical comparison of the TEXT column is chronological
// regardless of the offset the caller's time.Time carries.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// FormatNullableTime renders a timestamp for storage, mapping the zero
// value to NULL.
func FormatNullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(TimeFormat)
}

// ParseTime parses a stored timestamp, accepting the layouts that have
// appeared in the database over time.
func ParseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}

// ParseNullableTime parses a nullable stored timestamp, mapping NULL and
// empty string to the zero value.
func ParseNullableTime(ns sql.NullString) time.Time {
	if !ns.Valid || ns.String == "" {
		return time.Time{}
	}
	t, _ := ParseTime(ns.String)
	return t
}

package calendar

import (
	"sort"
	"time"

	"palestra/internal/domain/booking"
)

// gridStep is the rendering grid the merged ranges are aligned to.
const gridStep = 30 * time.Minute

// MergedRange is the union of mutually overlapping or adjacent bookings
// within one calendar day.
// INVARIANT: Start = min member start, End = max member end. Ranges produced
// by MergeOverlapping never overlap each other.
type MergedRange struct {
	Start    time.Time
	End      time.Time
	Bookings []booking.Booking
}

// DaySummary condenses one day's bookings into a single record for the
// month view, where a day shows one indicator instead of every event.
type DaySummary struct {
	Date     string // YYYY-MM-DD
	Bookings []booking.Booking
	Count    int
}

// MergeOverlapping unions all bookings whose intervals touch or overlap into
// maximal ranges. Bookings are sorted by start time and merged in a single
// left-to-right sweep, so the result is independent of input order and needs
// no cleanup pass. Bookings without a usable interval are skipped.
// POST: ranges are non-overlapping and sorted by start; every valid input
// booking belongs to exactly one range
func MergeOverlapping(bookings []booking.Booking) []MergedRange {
	valid := make([]booking.Booking, 0, len(bookings))
	for i := range bookings {
		if bookings[i].HasValidInterval() {
			valid = append(valid, bookings[i])
		}
	}
	if len(valid) == 0 {
		return nil
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Start.Before(valid[j].Start)
	})

	ranges := []MergedRange{{
		Start:    valid[0].Start,
		End:      valid[0].End,
		Bookings: []booking.Booking{valid[0]},
	}}

	for _, b := range valid[1:] {
		last := &ranges[len(ranges)-1]
		// Touching intervals merge too: a booking starting exactly where the
		// range ends joins it.
		if !b.Start.After(last.End) {
			if b.End.After(last.End) {
				last.End = b.End
			}
			last.Bookings = append(last.Bookings, b)
			continue
		}
		ranges = append(ranges, MergedRange{
			Start:    b.Start,
			End:      b.End,
			Bookings: []booking.Booking{b},
		})
	}
	return ranges
}

// Rounded returns the range bounds aligned outward to the 30-minute grid:
// start floored, end ceiled. The rounding is cosmetic; membership and counts
// are computed from the exact bounds.
func (r MergedRange) Rounded() (start, end time.Time) {
	start = r.Start.Truncate(gridStep)
	end = r.End.Truncate(gridStep)
	if end.Before(r.End) {
		end = end.Add(gridStep)
	}
	return start, end
}

// SummarizeByDay produces one summary per calendar day, sorted by date.
// Bookings without a usable interval are skipped.
func SummarizeByDay(bookings []booking.Booking) []DaySummary {
	byDate := make(map[string][]booking.Booking)
	for i := range bookings {
		if !bookings[i].HasValidInterval() {
			continue
		}
		date := bookings[i].Date()
		byDate[date] = append(byDate[date], bookings[i])
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	summaries := make([]DaySummary, 0, len(dates))
	for _, date := range dates {
		summaries = append(summaries, DaySummary{
			Date:     date,
			Bookings: byDate[date],
			Count:    len(byDate[date]),
		})
	}
	return summaries
}

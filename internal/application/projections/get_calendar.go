package projections

import (
	"context"

	"palestra/internal/domain/booking"
	"palestra/internal/domain/calendar"
)

// GetCalendarDeps holds dependencies for GetCalendar.
type GetCalendarDeps struct {
	BookingStore BookingStore
}

// MergedBlock is one merged busy range, with bounds aligned to the display
// grid for background shading.
type MergedBlock struct {
	Start        string `json:"start"` // RFC 3339
	End          string `json:"end"`
	RoundedStart string `json:"roundedStart"`
	RoundedEnd   string `json:"roundedEnd"`
	Count        int    `json:"count"` // bookings inside the block
}

// CalendarDay is the month-view summary of one day.
type CalendarDay struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// GetCalendarResult carries the calendar view data: the raw events, the
// merged busy blocks and the per-day summaries.
type GetCalendarResult struct {
	Events []booking.Booking
	Blocks []MergedBlock
	Days   []CalendarDay
}

// QueryGetCalendar aggregates all bookings into the calendar payload.
// POST: Blocks are non-overlapping and sorted by start; Days are sorted by date
func QueryGetCalendar(ctx context.Context, deps GetCalendarDeps) (GetCalendarResult, error) {
	bookings, err := deps.BookingStore.List(ctx)
	if err != nil {
		return GetCalendarResult{}, err
	}

	merged := calendar.MergeOverlapping(bookings)
	blocks := make([]MergedBlock, 0, len(merged))
	for _, r := range merged {
		rs, re := r.Rounded()
		blocks = append(blocks, MergedBlock{
			Start:        r.Start.Format("2006-01-02T15:04:05Z07:00"),
			End:          r.End.Format("2006-01-02T15:04:05Z07:00"),
			RoundedStart: rs.Format("2006-01-02T15:04:05Z07:00"),
			RoundedEnd:   re.Format("2006-01-02T15:04:05Z07:00"),
			Count:        len(r.Bookings),
		})
	}

	summaries := calendar.SummarizeByDay(bookings)
	days := make([]CalendarDay, 0, len(summaries))
	for _, s := range summaries {
		days = append(days, CalendarDay{Date: s.Date, Count: s.Count})
	}

	return GetCalendarResult{
		Events: bookings,
		Blocks: blocks,
		Days:   days,
	}, nil
}

// GetBookingsForDateQuery carries the day-detail query.
type GetBookingsForDateQuery struct {
	Date string // YYYY-MM-DD
}

// BookingDetail is one booking with the machine labels flattened for display.
type BookingDetail struct {
	Booking  booking.Booking
	Machines string
}

// QueryGetBookingsForDate lists one day's bookings with display detail.
func QueryGetBookingsForDate(ctx context.Context, query GetBookingsForDateQuery, deps GetCalendarDeps) ([]BookingDetail, error) {
	bookings, err := deps.BookingStore.ListByDate(ctx, query.Date)
	if err != nil {
		return nil, err
	}
	details := make([]BookingDetail, 0, len(bookings))
	for _, b := range bookings {
		details = append(details, BookingDetail{
			Booking:  b,
			Machines: b.MachineLabels(),
		})
	}
	return details, nil
}

package projections

import (
	"context"
	"fmt"

	ical "github.com/arran4/golang-ical"
)

// ExportCalendarDeps holds dependencies for the iCal export.
type ExportCalendarDeps struct {
	BookingStore BookingStore
}

// QueryExportCalendar serializes the full booking calendar as an iCalendar
// feed, one VEVENT per booking.
// POST: output parses as a valid VCALENDAR; bookings without a usable
// interval are skipped
func QueryExportCalendar(ctx context.Context, deps ExportCalendarDeps) (string, error) {
	bookings, err := deps.BookingStore.List(ctx)
	if err != nil {
		return "", err
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//palestra//backoffice//IT")

	for _, b := range bookings {
		if !b.HasValidInterval() {
			continue
		}
		ev := cal.AddEvent(fmt.Sprintf("%s@palestra", b.ID))
		ev.SetStartAt(b.Start)
		ev.SetEndAt(b.End)
		ev.SetSummary(b.Title)
		if b.MemberName != "" && b.MemberName != b.Title {
			ev.SetDescription(b.MemberName)
		}
		if labels := b.MachineLabels(); labels != "" {
			ev.SetLocation(labels)
		}
		if !b.CreatedAt.IsZero() {
			ev.SetDtStampTime(b.CreatedAt)
		}
	}

	return cal.Serialize(), nil
}

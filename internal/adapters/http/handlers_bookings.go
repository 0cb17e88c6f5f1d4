package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"palestra/internal/adapters/http/middleware"
	"palestra/internal/application/orchestrators"
	"palestra/internal/application/projections"
	"palestra/internal/domain/booking"
)

type bookingDTO struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Start      string            `json:"start"` // RFC 3339
	End        string            `json:"end"`
	MemberName string            `json:"memberName"`
	Machines   []booking.Machine `json:"machines"`
	CreatedAt  string            `json:"createdAt"`
}

func toBookingDTO(b booking.Booking) bookingDTO {
	return bookingDTO{
		ID:         b.ID,
		Title:      b.Title,
		Start:      b.Start.Format(time.RFC3339),
		End:        b.End.Format(time.RFC3339),
		MemberName: b.MemberName,
		Machines:   b.Machines,
		CreatedAt:  b.CreatedAt.Format(time.RFC3339),
	}
}

// handleBookingList returns the lean booking list the calendar badges
// are built from (GET /api/bookings).
func handleBookingList(w http.ResponseWriter, r *http.Request) {
	bookings, err := stores.BookingStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	dtos := make([]bookingDTO, 0, len(bookings))
	for _, b := range bookings {
		dtos = append(dtos, toBookingDTO(b))
	}
	respond(w, http.StatusOK, dtos)
}

type bookingDetailDTO struct {
	bookingDTO
	MachineLabels string `json:"machineLabels"`
}

// handleBookingsForDate returns one day's bookings with display detail
// (GET /api/bookings/date/{date}).
func handleBookingsForDate(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	details, err := projections.QueryGetBookingsForDate(r.Context(), projections.GetBookingsForDateQuery{
		Date: date,
	}, projections.GetCalendarDeps{BookingStore: stores.BookingStore})
	if err != nil {
		internalError(w, err)
		return
	}

	dtos := make([]bookingDetailDTO, 0, len(details))
	for _, d := range details {
		dtos = append(dtos, bookingDetailDTO{
			bookingDTO:    toBookingDTO(d.Booking),
			MachineLabels: d.Machines,
		})
	}
	respond(w, http.StatusOK, dtos)
}

type bookingPayload struct {
	Title      string            `json:"title"`
	Start      time.Time         `json:"start"`
	End        time.Time         `json:"end"`
	MemberName string            `json:"memberName"`
	Machines   []booking.Machine `json:"machines"`
}

// handleBookingCreate creates a booking (POST /api/bookings).
func handleBookingCreate(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	var req bookingPayload
	if err := strictDecode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	b, err := orchestrators.ExecuteCreateBooking(r.Context(), orchestrators.CreateBookingInput{
		Title:      req.Title,
		Start:      req.Start,
		End:        req.End,
		MemberName: req.MemberName,
		Machines:   req.Machines,
		ActorID:    session.OperatorID,
		ActorEmail: session.Email,
	}, orchestrators.CreateBookingDeps{
		BookingStore:      stores.BookingStore,
		NotificationStore: stores.NotificationStore,
		AuditStore:        stores.AuditStore,
		GenerateID:        generateID,
		Now:               timeNow,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusCreated, toBookingDTO(b))
}

// handleBookingDelete cancels a booking (DELETE /api/bookings/{id}).
func handleBookingDelete(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	err := orchestrators.ExecuteCancelBooking(r.Context(), orchestrators.CancelBookingInput{
		BookingID:  r.PathValue("id"),
		ActorID:    session.OperatorID,
		ActorEmail: session.Email,
	}, orchestrators.CancelBookingDeps{
		BookingStore: stores.BookingStore,
		AuditStore:   stores.AuditStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrBookingNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		internalError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "booking cancelled")
}

type slotDTO struct {
	Start    string `json:"start"` // RFC 3339
	End      string `json:"end"`
	Count    int    `json:"count"`
	Capacity int    `json:"capacity"`
	Status   string `json:"status"`
}

type dayAvailabilityDTO struct {
	Date   string    `json:"date"`
	Status string    `json:"status"`
	Slots  []slotDTO `json:"slots"`
}

// handleAvailability returns the slot occupancy grid
// (GET /api/bookings/availability?from=YYYY-MM-DD&days=N).
func handleAvailability(w http.ResponseWriter, r *http.Request) {
	query := projections.GetAvailabilityQuery{}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			respondError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		query.From = t
	}
	if days := r.URL.Query().Get("days"); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil || n < 1 || n > 60 {
			respondError(w, http.StatusBadRequest, "days must be between 1 and 60")
			return
		}
		query.Days = n
	}

	result, err := projections.QueryGetAvailability(r.Context(), query, projections.GetAvailabilityDeps{
		BookingStore:  stores.BookingStore,
		SettingsStore: stores.SettingsStore,
	}, timeNow())
	if err != nil {
		internalError(w, err)
		return
	}

	days := make([]dayAvailabilityDTO, 0, len(result.Days))
	for _, day := range result.Days {
		slots := make([]slotDTO, 0, len(day.Slots))
		for _, s := range day.Slots {
			slots = append(slots, slotDTO{
				Start:    s.SlotStart.Format(time.RFC3339),
				End:      s.SlotEnd.Format(time.RFC3339),
				Count:    s.Count,
				Capacity: s.Capacity,
				Status:   string(s.Status),
			})
		}
		days = append(days, dayAvailabilityDTO{
			Date:   day.Date,
			Status: string(day.Status),
			Slots:  slots,
		})
	}
	respond(w, http.StatusOK, map[string]any{
		"capacity": result.Capacity,
		"from":     result.From,
		"days":     days,
	})
}

// handleCalendar returns merged event blocks and day summaries
// (GET /api/bookings/calendar).
func handleCalendar(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetCalendar(r.Context(), projections.GetCalendarDeps{
		BookingStore: stores.BookingStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	events := make([]bookingDTO, 0, len(result.Events))
	for _, b := range result.Events {
		events = append(events, toBookingDTO(b))
	}
	respond(w, http.StatusOK, map[string]any{
		"events": events,
		"blocks": result.Blocks,
		"days":   result.Days,
	})
}

// handleCalendarExport streams the iCalendar feed
// (GET /api/bookings/export.ics).
func handleCalendarExport(w http.ResponseWriter, r *http.Request) {
	feed, err := projections.QueryExportCalendar(r.Context(), projections.ExportCalendarDeps{
		BookingStore: stores.BookingStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=bookings.ics")
	w.Write([]byte(feed))
}

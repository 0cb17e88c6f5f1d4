package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"palestra/internal/domain/audit"
	"palestra/internal/domain/booking"
	"palestra/internal/domain/notification"
)

// BookingStoreForOrchestrator defines the store interface needed by booking orchestrators.
type BookingStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (booking.Booking, error)
	Save(ctx context.Context, b booking.Booking) error
	Delete(ctx context.Context, id string) error
}

// NotificationStoreForBooking receives the new-booking notification.
type NotificationStoreForBooking interface {
	Save(ctx context.Context, n notification.Notification) error
}

// --- Create Booking ---

// CreateBookingInput carries input for the create booking orchestrator.
type CreateBookingInput struct {
	Title      string
	Start      time.Time
	End        time.Time
	MemberName string
	Machines   []booking.Machine
	ActorID    string
	ActorEmail string
}

// CreateBookingDeps holds dependencies for CreateBooking.
type CreateBookingDeps struct {
	BookingStore      BookingStoreForOrchestrator
	NotificationStore NotificationStoreForBooking
	AuditStore        AuditStoreForOrchestrator
	GenerateID        func() string
	Now               func() time.Time
}

// ExecuteCreateBooking creates a booking and emits a new-booking notification.
// PRE: Start is before End, MemberName is non-empty
// POST: Booking persisted; informational notification saved
func ExecuteCreateBooking(ctx context.Context, input CreateBookingInput, deps CreateBookingDeps) (booking.Booking, error) {
	now := deps.Now()

	title := input.Title
	if title == "" {
		title = input.MemberName
	}

	b := booking.Booking{
		ID:         deps.GenerateID(),
		Title:      title,
		Start:      input.Start,
		End:        input.End,
		MemberName: input.MemberName,
		Machines:   input.Machines,
		CreatedAt:  now,
	}
	if err := b.Validate(); err != nil {
		return booking.Booking{}, err
	}

	if err := deps.BookingStore.Save(ctx, b); err != nil {
		return booking.Booking{}, fmt.Errorf("failed to save booking: %w", err)
	}

	if deps.NotificationStore != nil {
		n := notification.Notification{
			ID:         deps.GenerateID(),
			Type:       notification.TypeNewBooking,
			Title:      "New booking",
			Message:    fmt.Sprintf("%s booked %s", b.MemberName, b.Start.Format("02/01/2006 15:04")),
			Timestamp:  now,
			MemberName: b.MemberName,
		}
		if err := deps.NotificationStore.Save(ctx, n); err != nil {
			slog.Warn("notification_save_failed", "error", err, "booking_id", b.ID)
		}
	}

	recordAudit(ctx, deps.AuditStore, audit.
		NewEvent(deps.GenerateID(), now, audit.CategoryBooking, audit.ActionCreate, input.ActorID, input.ActorEmail).
		WithResource("booking", b.ID).
		WithDescription(fmt.Sprintf("booking created for %s", b.MemberName)))

	slog.Info("booking_created", "booking_id", b.ID, "member", b.MemberName, "start", b.Start)
	return b, nil
}

// --- Cancel Booking ---

// CancelBookingInput carries input for the cancel booking orchestrator.
type CancelBookingInput struct {
	BookingID  string
	ActorID    string
	ActorEmail string
}

// CancelBookingDeps holds dependencies for CancelBooking.
type CancelBookingDeps struct {
	BookingStore BookingStoreForOrchestrator
	AuditStore   AuditStoreForOrchestrator
	GenerateID   func() string
	Now          func() time.Time
}

// ErrBookingNotFound is returned when the booking to cancel does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ExecuteCancelBooking removes a booking.
// PRE: BookingID references an existing booking
// POST: Booking is deleted
func ExecuteCancelBooking(ctx context.Context, input CancelBookingInput, deps CancelBookingDeps) error {
	if input.BookingID == "" {
		return ErrBookingNotFound
	}

	b, err := deps.BookingStore.GetByID(ctx, input.BookingID)
	if err != nil {
		return ErrBookingNotFound
	}

	if err := deps.BookingStore.Delete(ctx, b.ID); err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	recordAudit(ctx, deps.AuditStore, audit.
		NewEvent(deps.GenerateID(), deps.Now(), audit.CategoryBooking, audit.ActionDelete, input.ActorID, input.ActorEmail).
		WithResource("booking", b.ID).
		WithDescription(fmt.Sprintf("booking for %s cancelled", b.MemberName)))

	slog.Info("booking_cancelled", "booking_id", b.ID, "member", b.MemberName)
	return nil
}

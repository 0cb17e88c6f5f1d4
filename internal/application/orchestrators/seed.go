package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"palestra/internal/domain/booking"
	"palestra/internal/domain/member"
	"palestra/internal/domain/operator"
)

// SeedAdminDeps holds stores needed for admin seeding.
type SeedAdminDeps struct {
	OperatorStore seedOperatorStore
	Now           func() time.Time
}

type seedOperatorStore interface {
	GetByEmail(ctx context.Context, email string) (operator.Operator, error)
	Save(ctx context.Context, o operator.Operator) error
}

// ExecuteSeedAdmin creates the initial admin operator if it doesn't already
// exist. It is idempotent, checked by email.
// PRE: Database is migrated; email and password come from configuration.
// POST: An active admin operator with the given email exists.
func ExecuteSeedAdmin(ctx context.Context, email, password string, deps SeedAdminDeps) error {
	if email == "" || password == "" {
		return fmt.Errorf("seed admin: email and password are required")
	}

	if _, err := deps.OperatorStore.GetByEmail(ctx, email); err == nil {
		return nil // already seeded
	}

	admin := operator.Operator{
		ID:           uuid.New().String(),
		FirstName:    "Admin",
		LastName:     "Operator",
		Email:        email,
		Role:         operator.RoleAdmin,
		Status:       operator.StatusActive,
		RegisteredAt: deps.Now(),
	}
	if err := admin.SetPassword(password); err != nil {
		return fmt.Errorf("seed admin: set password: %w", err)
	}
	if err := deps.OperatorStore.Save(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: save: %w", err)
	}

	slog.Info("seed_event", "event", "admin_created", "email", email)
	return nil
}

// DemoSeedDeps holds stores needed for demo data seeding.
type DemoSeedDeps struct {
	MemberStore  demoMemberStore
	BookingStore demoBookingStore
	Now          func() time.Time
}

type demoMemberStore interface {
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, m member.Member) error
}

type demoBookingStore interface {
	Save(ctx context.Context, b booking.Booking) error
}

// demoMemberDef defines a single demo member to seed.
type demoMemberDef struct {
	FirstName string
	LastName  string
	Email     string
	Company   string
	Missed    int // booking history entries without a matching access
	Honoured  int
}

func demoMembers() []demoMemberDef {
	return []demoMemberDef{
		{FirstName: "Giulia", LastName: "Bianchi", Email: "giulia.bianchi@example.com", Company: "Innova SRL", Honoured: 4},
		{FirstName: "Marco", LastName: "Rossi", Email: "marco.rossi@example.com", Company: "Innova SRL", Honoured: 2, Missed: 1},
		{FirstName: "Sara", LastName: "Conti", Email: "sara.conti@example.com", Honoured: 1, Missed: 2},
		{FirstName: "Luca", LastName: "Ferrari", Email: "luca.ferrari@example.com", Company: "Ferrari Legno", Missed: 3},
		{FirstName: "Elena", LastName: "Greco", Email: "elena.greco@example.com", Honoured: 6},
	}
}

// ExecuteSeedDemoData populates demo members and bookings for a fresh
// installation. It is a no-op when members already exist.
// PRE: Database is migrated.
// POST: Demo members with access and booking history exist, plus a few
// upcoming bookings.
func ExecuteSeedDemoData(ctx context.Context, deps DemoSeedDeps) error {
	count, err := deps.MemberStore.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed demo: count members: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := deps.Now()
	for i, def := range demoMembers() {
		m := member.Member{
			ID:           uuid.New().String(),
			FirstName:    def.FirstName,
			LastName:     def.LastName,
			Email:        def.Email,
			Company:      def.Company,
			MemberNumber: fmt.Sprintf("M%04d", i+1),
			UserCode:     uuid.New().String()[:8],
			Status:       member.StatusActive,
			RegisteredAt: now.AddDate(0, -((i % 6) + 1), 0),
		}
		m.AccessHistory, m.BookingHistory = demoHistory(now, def.Honoured, def.Missed)
		if err := deps.MemberStore.Save(ctx, m); err != nil {
			return fmt.Errorf("seed demo member %s: save: %w", m.FullName(), err)
		}

		// Two upcoming bookings per member, spread over the coming days.
		for j := 0; j < 2; j++ {
			start := nextSlot(now, i+j*2)
			b := booking.Booking{
				ID:         uuid.New().String(),
				Title:      m.FullName(),
				Start:      start,
				End:        start.Add(30 * time.Minute),
				MemberName: m.FullName(),
				CreatedAt:  now,
			}
			if err := deps.BookingStore.Save(ctx, b); err != nil {
				return fmt.Errorf("seed demo booking for %s: save: %w", m.FullName(), err)
			}
		}
	}

	slog.Info("seed_event", "event", "demo_data_seeded", "members", len(demoMembers()))
	return nil
}

// demoHistory builds past access and booking history. Honoured bookings get
// a matching access entry at the same date and time, missed bookings don't.
func demoHistory(now time.Time, honoured, missed int) ([]member.AccessEntry, []member.BookingEntry) {
	var accesses []member.AccessEntry
	var bookings []member.BookingEntry

	day := now.AddDate(0, 0, -1)
	for i := 0; i < honoured+missed; i++ {
		date := day.AddDate(0, 0, -i*2).Format("2006-01-02")
		at := fmt.Sprintf("%02d:00", 9+(i%9))
		entry := member.BookingEntry{Date: date, Time: at, HasAccess: i < honoured}
		bookings = append(bookings, entry)
		if entry.HasAccess {
			accesses = append(accesses, member.AccessEntry{
				Date:     date,
				Time:     at,
				Device:   "turnstile-1",
				Location: "main entrance",
			})
		}
	}
	return accesses, bookings
}

// nextSlot returns an upcoming half-hour slot offset by n from tomorrow 09:00.
func nextSlot(now time.Time, n int) time.Time {
	base := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return base.Add(time.Duration(n) * 90 * time.Minute)
}

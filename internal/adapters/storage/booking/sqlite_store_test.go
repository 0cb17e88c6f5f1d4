package booking

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"palestra/internal/adapters/storage"
	domain "palestra/internal/domain/booking"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLiteStore(db)
}

func testBooking(id string, start, end time.Time) domain.Booking {
	return domain.Booking{
		ID:         id,
		Title:      "Mario Rossi",
		Start:      start,
		End:        end,
		MemberName: "Mario Rossi",
		Machines: []domain.Machine{
			{Value: "treadmill-2", Label: "Treadmill 2"},
		},
		CreatedAt: start.Add(-24 * time.Hour),
	}
}

func TestSaveAndGetByID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	start := time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)
	b := testBooking("b1", start, start.Add(time.Hour))

	if err := store.Save(ctx, b); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.GetByID(ctx, "b1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Start.Equal(b.Start) || !got.End.Equal(b.End) {
		t.Errorf("interval = [%v, %v), want [%v, %v)", got.Start, got.End, b.Start, b.End)
	}
	if got.MemberName != "Mario Rossi" {
		t.Errorf("MemberName = %q", got.MemberName)
	}
	if len(got.Machines) != 1 || got.Machines[0].Value != "treadmill-2" {
		t.Errorf("Machines = %+v", got.Machines)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.GetByID(context.Background(), "missing"); err == nil {
		t.Error("expected error for missing booking")
	}
}

func TestSaveUpserts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	start := time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)
	b := testBooking("b1", start, start.Add(time.Hour))
	if err := store.Save(ctx, b); err != nil {
		t.Fatalf("Save: %v", err)
	}

	b.End = start.Add(90 * time.Minute)
	if err := store.Save(ctx, b); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := store.GetByID(ctx, "b1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.End.Equal(b.End) {
		t.Errorf("End = %v, want %v", got.End, b.End)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d, want 1", count)
	}
}

func TestListByRangeHalfOpen(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	day := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	// Ends exactly at window start: excluded.
	store.Save(ctx, testBooking("before", day.Add(9*time.Hour), day.Add(10*time.Hour)))
	// Inside the window.
	store.Save(ctx, testBooking("inside", day.Add(10*time.Hour+30*time.Minute), day.Add(11*time.Hour)))
	// Starts exactly at window end: excluded.
	store.Save(ctx, testBooking("after", day.Add(12*time.Hour), day.Add(13*time.Hour)))
	// Straddles the window start: included.
	store.Save(ctx, testBooking("straddle", day.Add(9*time.Hour+30*time.Minute), day.Add(10*time.Hour+30*time.Minute)))

	got, err := store.ListByRange(ctx, day.Add(10*time.Hour), day.Add(12*time.Hour))
	if err != nil {
		t.Fatalf("ListByRange: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d bookings, want 2: %+v", len(got), got)
	}
	if got[0].ID != "straddle" || got[1].ID != "inside" {
		t.Errorf("order = %q, %q", got[0].ID, got[1].ID)
	}
}

// Stored offsets and query offsets may differ (clients send Z-suffixed
// times while the server runs in a local zone). The range filter must
// stay chronological across offsets.
func TestListByRangeMixedOffsets(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.Save(ctx, testBooking("morning",
		time.Date(2026, 1, 20, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 20, 8, 30, 0, 0, time.UTC),
	))

	// 09:45-10:15 at +02:00 is 07:45-08:15 UTC, overlapping the booking.
	rome := time.FixedZone("CEST", 2*60*60)
	got, err := store.ListByRange(ctx,
		time.Date(2026, 1, 20, 9, 45, 0, 0, rome),
		time.Date(2026, 1, 20, 10, 15, 0, 0, rome),
	)
	if err != nil {
		t.Fatalf("ListByRange: %v", err)
	}
	if len(got) != 1 || got[0].ID != "morning" {
		t.Fatalf("got %+v, want the morning booking", got)
	}

	// 10:30-11:00 at +02:00 is 08:30-09:00 UTC, not overlapping.
	got, err = store.ListByRange(ctx,
		time.Date(2026, 1, 20, 10, 30, 0, 0, rome),
		time.Date(2026, 1, 20, 11, 0, 0, 0, rome),
	)
	if err != nil {
		t.Fatalf("ListByRange: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %+v, want none", got)
	}
}

func TestListByDate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	d1 := time.Date(2026, 1, 20, 18, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 1, 21, 9, 0, 0, 0, time.UTC)
	store.Save(ctx, testBooking("b1", d1, d1.Add(time.Hour)))
	store.Save(ctx, testBooking("b2", d2, d2.Add(time.Hour)))

	got, err := store.ListByDate(ctx, "2026-01-20")
	if err != nil {
		t.Fatalf("ListByDate: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b1" {
		t.Errorf("got %+v, want only b1", got)
	}
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	start := time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)
	store.Save(ctx, testBooking("b1", start, start.Add(time.Hour)))

	if err := store.Delete(ctx, "b1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.GetByID(ctx, "b1"); err == nil {
		t.Error("expected error after delete")
	}
}

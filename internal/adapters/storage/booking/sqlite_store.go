package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"palestra/internal/adapters/storage"
	domain "palestra/internal/domain/booking"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new BookingStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const bookingColumns = "id, title, start_at, end_at, member_name, machines, created_at"

// GetByID retrieves a Booking by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Booking, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM booking WHERE id = ?", id)
	entity, err := scanBooking(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Booking{}, fmt.Errorf("booking not found: %w", err)
	}
	return entity, err
}

// Save persists a Booking to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Booking) error {
	machines, err := json.Marshal(entity.Machines)
	if err != nil {
		return fmt.Errorf("failed to encode machines: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO booking ("+bookingColumns+") VALUES (?, ?, ?, ?, ?, ?, ?) "+
			"ON CONFLICT(id) DO UPDATE SET title=excluded.title, start_at=excluded.start_at, end_at=excluded.end_at, member_name=excluded.member_name, machines=excluded.machines",
		entity.ID,
		entity.Title,
		storage.FormatTime(entity.Start),
		storage.FormatTime(entity.End),
		entity.MemberName,
		string(machines),
		storage.FormatTime(entity.CreatedAt),
	)
	return err
}

// Delete removes a Booking from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM booking WHERE id = ?", id)
	return err
}

// List retrieves all Bookings ordered by start time.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Booking, error) {
	return s.queryBookings(ctx, "SELECT "+bookingColumns+" FROM booking ORDER BY start_at")
}

// ListByRange retrieves Bookings overlapping the half-open interval [from, to).
// PRE: from is before to
// POST: Returns bookings with start_at < to and end_at > from
func (s *SQLiteStore) ListByRange(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	return s.queryBookings(ctx,
		"SELECT "+bookingColumns+" FROM booking WHERE start_at < ? AND end_at > ? ORDER BY start_at",
		storage.FormatTime(to), storage.FormatTime(from),
	)
}

// ListByDate retrieves Bookings starting on the given calendar date.
// PRE: date is formatted YYYY-MM-DD
func (s *SQLiteStore) ListByDate(ctx context.Context, date string) ([]domain.Booking, error) {
	return s.queryBookings(ctx,
		"SELECT "+bookingColumns+" FROM booking WHERE substr(start_at, 1, 10) = ? ORDER BY start_at",
		date,
	)
}

// Count returns the total number of bookings.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM booking").Scan(&count)
	return count, err
}

func (s *SQLiteStore) queryBookings(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Booking
	for rows.Next() {
		entity, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanBooking extracts a Booking from a row scanner function.
func scanBooking(scan func(dest ...any) error) (domain.Booking, error) {
	var entity domain.Booking
	var start, end, createdAt, machines string
	err := scan(
		&entity.ID,
		&entity.Title,
		&start,
		&end,
		&entity.MemberName,
		&machines,
		&createdAt,
	)
	if err != nil {
		return domain.Booking{}, err
	}
	entity.Start, _ = storage.ParseTime(start)
	entity.End, _ = storage.ParseTime(end)
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	if machines != "" {
		if err := json.Unmarshal([]byte(machines), &entity.Machines); err != nil {
			return domain.Booking{}, fmt.Errorf("failed to decode machines: %w", err)
		}
	}
	return entity, nil
}

package notification

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"palestra/internal/adapters/storage"
	domain "palestra/internal/domain/notification"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new NotificationStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const notificationColumns = "id, type, severity, traffic_light, title, message, member_id, member_name, member_number, booking_date, booking_time, missed_count, read, created_at"

// GetByID retrieves a Notification by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Notification, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+notificationColumns+" FROM notification WHERE id = ?", id)
	entity, err := scanNotification(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Notification{}, fmt.Errorf("notification not found: %w", err)
	}
	return entity, err
}

// Save persists a Notification to the database.
// PRE: entity has a unique ID
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Notification) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO notification ("+notificationColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) "+
			"ON CONFLICT(id) DO UPDATE SET read=excluded.read",
		entity.ID,
		entity.Type,
		string(entity.Severity),
		string(entity.TrafficLight),
		entity.Title,
		entity.Message,
		entity.MemberID,
		entity.MemberName,
		entity.MemberNumber,
		entity.BookingDate,
		entity.BookingTime,
		entity.MissedCount,
		boolToInt(entity.Read),
		storage.FormatTime(entity.Timestamp),
	)
	return err
}

// Delete removes a Notification from the database.
// PRE: id is non-empty
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM notification WHERE id = ?", id)
	return err
}

// List retrieves Notifications based on the filter, newest first.
// PRE: filter has valid parameters
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Notification, error) {
	var queryBuilder strings.Builder
	var args []any

	queryBuilder.WriteString("SELECT " + notificationColumns + " FROM notification")

	var where []string
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, filter.Type)
	}
	if filter.UnreadOnly {
		where = append(where, "read = 0")
	}
	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY created_at DESC LIMIT ? OFFSET ?")
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Notification
	for rows.Next() {
		entity, err := scanNotification(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// MarkRead marks one notification as read.
// PRE: id is non-empty
func (s *SQLiteStore) MarkRead(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE notification SET read = 1 WHERE id = ?", id)
	return err
}

// MarkAllRead marks every notification as read.
func (s *SQLiteStore) MarkAllRead(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "UPDATE notification SET read = 1 WHERE read = 0")
	return err
}

// CountUnread returns the number of unread notifications.
func (s *SQLiteStore) CountUnread(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notification WHERE read = 0").Scan(&count)
	return count, err
}

// DeleteMissedBookings removes all missed-booking notifications. Used by
// the rebuild operation before a fresh scan. Medium and high severity
// emissions carry type warning, so the match mirrors IsMissedBooking.
func (s *SQLiteStore) DeleteMissedBookings(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM notification WHERE booking_date != '' AND booking_time != '' AND type IN (?, ?)",
		domain.TypeMissedBooking, domain.TypeWarning,
	)
	return err
}

// LoadProcessedSet loads every processed key.
// POST: Returns the full set; empty set when no keys exist
func (s *SQLiteStore) LoadProcessedSet(ctx context.Context) (domain.ProcessedSet, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM processed_notification")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := domain.NewProcessedSet(nil)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		set.Add(key)
	}
	return set, rows.Err()
}

// SaveProcessedKeys inserts the given keys into the processed set.
// Existing keys are kept untouched.
func (s *SQLiteStore) SaveProcessedKeys(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := storage.FormatTime(time.Now().UTC())
	for _, key := range keys {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO processed_notification (key, created_at) VALUES (?, ?) ON CONFLICT(key) DO NOTHING",
			key, now,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ClearProcessedSet removes every processed key. Used by the rebuild
// operation.
func (s *SQLiteStore) ClearProcessedSet(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM processed_notification")
	return err
}

// scanNotification extracts a Notification from a row scanner function.
func scanNotification(scan func(dest ...any) error) (domain.Notification, error) {
	var entity domain.Notification
	var severity, trafficLight, createdAt string
	var read int
	err := scan(
		&entity.ID,
		&entity.Type,
		&severity,
		&trafficLight,
		&entity.Title,
		&entity.Message,
		&entity.MemberID,
		&entity.MemberName,
		&entity.MemberNumber,
		&entity.BookingDate,
		&entity.BookingTime,
		&entity.MissedCount,
		&read,
		&createdAt,
	)
	if err != nil {
		return domain.Notification{}, err
	}
	entity.Severity = domain.Severity(severity)
	entity.TrafficLight = domain.TrafficLight(trafficLight)
	entity.Read = read != 0
	entity.Timestamp, _ = storage.ParseTime(createdAt)
	return entity, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package member

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"palestra/internal/adapters/storage"
	domain "palestra/internal/domain/member"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new MemberStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const memberColumns = "id, first_name, last_name, email, phone, company, birthdate, gender, member_number, user_code, status, medical_certificate, registered_at"

// GetByID retrieves a Member by its ID, with history hydrated.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM member WHERE id = ?", id)
	entity, err := scanMember(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Member{}, fmt.Errorf("member not found: %w", err)
	}
	if err != nil {
		return domain.Member{}, err
	}
	return s.hydrate(ctx, entity)
}

// GetByMemberNumber retrieves a Member by its badge number, with history.
// PRE: number is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByMemberNumber(ctx context.Context, number string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM member WHERE member_number = ?", number)
	entity, err := scanMember(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Member{}, fmt.Errorf("member not found: %w", err)
	}
	if err != nil {
		return domain.Member{}, err
	}
	return s.hydrate(ctx, entity)
}

// Save persists a Member and replaces its history rows.
// PRE: entity has been validated
// POST: Entity and history are persisted atomically
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Member) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO member ("+memberColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) "+
			"ON CONFLICT(id) DO UPDATE SET first_name=excluded.first_name, last_name=excluded.last_name, email=excluded.email, phone=excluded.phone, company=excluded.company, birthdate=excluded.birthdate, gender=excluded.gender, member_number=excluded.member_number, user_code=excluded.user_code, status=excluded.status, medical_certificate=excluded.medical_certificate",
		entity.ID,
		entity.FirstName,
		entity.LastName,
		entity.Email,
		entity.Phone,
		entity.Company,
		entity.Birthdate,
		entity.Gender,
		entity.MemberNumber,
		entity.UserCode,
		entity.Status,
		boolToInt(entity.MedicalCertificate),
		storage.FormatTime(entity.RegisteredAt),
	)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM member_access WHERE member_id = ?", entity.ID); err != nil {
		return err
	}
	for i, a := range entity.AccessHistory {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO member_access (id, member_id, access_date, access_time, device, location) VALUES (?, ?, ?, ?, ?, ?)",
			fmt.Sprintf("%s-a%d", entity.ID, i), entity.ID, a.Date, a.Time, a.Device, a.Location,
		)
		if err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM member_booking WHERE member_id = ?", entity.ID); err != nil {
		return err
	}
	for i, b := range entity.BookingHistory {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO member_booking (id, member_id, booking_date, booking_time, has_access) VALUES (?, ?, ?, ?, ?)",
			fmt.Sprintf("%s-b%d", entity.ID, i), entity.ID, b.Date, b.Time, boolToInt(b.HasAccess),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete removes a Member and its history rows.
// PRE: id is non-empty
// POST: Entity and child rows are removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM member_access WHERE member_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM member_booking WHERE member_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM member WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// List retrieves lean Members based on the filter.
// PRE: filter has valid parameters
// POST: Returns matching entities without history hydration
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Member, error) {
	var queryBuilder strings.Builder
	var args []any

	queryBuilder.WriteString("SELECT " + memberColumns + " FROM member")

	var where []string
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		where = append(where, "(first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR member_number LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY last_name, first_name LIMIT ? OFFSET ?")
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Member
	for rows.Next() {
		entity, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// ListWithHistory retrieves all Members with access and booking history.
// Used by the missed-booking scan, which needs every member's history.
func (s *SQLiteStore) ListWithHistory(ctx context.Context) ([]domain.Member, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+memberColumns+" FROM member ORDER BY last_name, first_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Member
	for rows.Next() {
		entity, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range results {
		results[i], err = s.hydrate(ctx, results[i])
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Count returns the total number of members.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM member").Scan(&count)
	return count, err
}

// hydrate loads the access and booking history for a member.
func (s *SQLiteStore) hydrate(ctx context.Context, entity domain.Member) (domain.Member, error) {
	accessRows, err := s.db.QueryContext(ctx,
		"SELECT access_date, access_time, device, location FROM member_access WHERE member_id = ? ORDER BY access_date, access_time",
		entity.ID,
	)
	if err != nil {
		return domain.Member{}, err
	}
	defer accessRows.Close()

	for accessRows.Next() {
		var a domain.AccessEntry
		if err := accessRows.Scan(&a.Date, &a.Time, &a.Device, &a.Location); err != nil {
			return domain.Member{}, err
		}
		entity.AccessHistory = append(entity.AccessHistory, a)
	}
	if err := accessRows.Err(); err != nil {
		return domain.Member{}, err
	}

	bookingRows, err := s.db.QueryContext(ctx,
		"SELECT booking_date, booking_time, has_access FROM member_booking WHERE member_id = ? ORDER BY booking_date, booking_time",
		entity.ID,
	)
	if err != nil {
		return domain.Member{}, err
	}
	defer bookingRows.Close()

	for bookingRows.Next() {
		var b domain.BookingEntry
		var hasAccess int
		if err := bookingRows.Scan(&b.Date, &b.Time, &hasAccess); err != nil {
			return domain.Member{}, err
		}
		b.HasAccess = hasAccess != 0
		entity.BookingHistory = append(entity.BookingHistory, b)
	}
	return entity, bookingRows.Err()
}

// scanMember extracts a Member from a row scanner function.
func scanMember(scan func(dest ...any) error) (domain.Member, error) {
	var entity domain.Member
	var registeredAt string
	var medical int
	err := scan(
		&entity.ID,
		&entity.FirstName,
		&entity.LastName,
		&entity.Email,
		&entity.Phone,
		&entity.Company,
		&entity.Birthdate,
		&entity.Gender,
		&entity.MemberNumber,
		&entity.UserCode,
		&entity.Status,
		&medical,
		&registeredAt,
	)
	if err != nil {
		return domain.Member{}, err
	}
	entity.MedicalCertificate = medical != 0
	entity.RegisteredAt, _ = storage.ParseTime(registeredAt)
	return entity, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

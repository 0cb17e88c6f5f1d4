package operator

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"palestra/internal/adapters/storage"
	domain "palestra/internal/domain/operator"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new OperatorStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const operatorColumns = "id, email, password_hash, first_name, last_name, phone, birthdate, gender, role, status, failed_logins, locked_until, registered_at"

// GetByID retrieves an Operator by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Operator, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+operatorColumns+" FROM operator WHERE id = ?", id)
	entity, err := scanOperator(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Operator{}, fmt.Errorf("operator not found: %w", err)
	}
	return entity, err
}

// GetByEmail retrieves an Operator by email.
// PRE: email is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Operator, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+operatorColumns+" FROM operator WHERE email = ?", email)
	entity, err := scanOperator(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Operator{}, fmt.Errorf("operator not found: %w", err)
	}
	return entity, err
}

// Save persists an Operator to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Operator) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO operator ("+operatorColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) "+
			"ON CONFLICT(id) DO UPDATE SET email=excluded.email, password_hash=excluded.password_hash, first_name=excluded.first_name, last_name=excluded.last_name, phone=excluded.phone, birthdate=excluded.birthdate, gender=excluded.gender, role=excluded.role, status=excluded.status, failed_logins=excluded.failed_logins, locked_until=excluded.locked_until",
		entity.ID,
		entity.Email,
		entity.PasswordHash,
		entity.FirstName,
		entity.LastName,
		entity.Phone,
		entity.Birthdate,
		entity.Gender,
		entity.Role,
		entity.Status,
		entity.FailedLogins,
		storage.FormatNullableTime(entity.LockedUntil),
		storage.FormatTime(entity.RegisteredAt),
	)
	return err
}

// Delete removes an Operator from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM operator WHERE id = ?", id)
	return err
}

// List retrieves Operators based on the filter.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Operator, error) {
	var queryBuilder strings.Builder
	var args []any

	queryBuilder.WriteString("SELECT " + operatorColumns + " FROM operator")
	if filter.Role != "" {
		queryBuilder.WriteString(" WHERE role = ?")
		args = append(args, filter.Role)
	}
	queryBuilder.WriteString(" ORDER BY registered_at DESC LIMIT ? OFFSET ?")
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Operator
	for rows.Next() {
		entity, err := scanOperator(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of operators.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM operator").Scan(&count)
	return count, err
}

// CountByRole returns the number of operators holding the given role.
func (s *SQLiteStore) CountByRole(ctx context.Context, role string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM operator WHERE role = ?", role).Scan(&count)
	return count, err
}

// SaveResetToken persists a password reset token.
// PRE: token has a unique Token value
func (s *SQLiteStore) SaveResetToken(ctx context.Context, token domain.ResetToken) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO reset_token (id, operator_id, token, expires_at, used, created_at) VALUES (?, ?, ?, ?, ?, ?) "+
			"ON CONFLICT(id) DO UPDATE SET used=excluded.used",
		token.ID,
		token.OperatorID,
		token.Token,
		storage.FormatTime(token.ExpiresAt),
		boolToInt(token.Used),
		storage.FormatTime(token.CreatedAt),
	)
	return err
}

// GetResetTokenByToken retrieves a reset token by its opaque value.
// PRE: token is non-empty
// POST: Returns the token or an error if not found
func (s *SQLiteStore) GetResetTokenByToken(ctx context.Context, token string) (domain.ResetToken, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, operator_id, token, expires_at, used, created_at FROM reset_token WHERE token = ?", token)

	var entity domain.ResetToken
	var expiresAt, createdAt string
	var used int
	err := row.Scan(&entity.ID, &entity.OperatorID, &entity.Token, &expiresAt, &used, &createdAt)
	if err == sql.ErrNoRows {
		return domain.ResetToken{}, fmt.Errorf("reset token not found: %w", err)
	}
	if err != nil {
		return domain.ResetToken{}, err
	}
	entity.Used = used != 0
	entity.ExpiresAt, _ = storage.ParseTime(expiresAt)
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	return entity, nil
}

// InvalidateTokensForOperator marks all of an operator's tokens as used.
// POST: No outstanding token for the operator can be redeemed
func (s *SQLiteStore) InvalidateTokensForOperator(ctx context.Context, operatorID string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE reset_token SET used = 1 WHERE operator_id = ?", operatorID)
	return err
}

// scanOperator extracts an Operator from a row scanner function.
func scanOperator(scan func(dest ...any) error) (domain.Operator, error) {
	var entity domain.Operator
	var registeredAt string
	var lockedUntil sql.NullString
	err := scan(
		&entity.ID,
		&entity.Email,
		&entity.PasswordHash,
		&entity.FirstName,
		&entity.LastName,
		&entity.Phone,
		&entity.Birthdate,
		&entity.Gender,
		&entity.Role,
		&entity.Status,
		&entity.FailedLogins,
		&lockedUntil,
		&registeredAt,
	)
	if err != nil {
		return domain.Operator{}, err
	}
	entity.RegisteredAt, _ = storage.ParseTime(registeredAt)
	entity.LockedUntil = storage.ParseNullableTime(lockedUntil)
	return entity, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

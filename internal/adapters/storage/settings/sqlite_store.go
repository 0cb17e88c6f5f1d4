package settings

import (
	"context"
	"database/sql"
	"time"

	"palestra/internal/adapters/storage"
	domain "palestra/internal/domain/settings"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SettingsStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves the settings row, falling back to defaults when the row
// has never been written.
func (s *SQLiteStore) Get(ctx context.Context) (domain.Settings, error) {
	row := s.db.QueryRowContext(ctx, "SELECT max_capacity, entry_margin_minutes FROM settings WHERE id = 1")

	var entity domain.Settings
	err := row.Scan(&entity.MaxCapacity, &entity.EntryMarginMinutes)
	if err == sql.ErrNoRows {
		return domain.Default(), nil
	}
	if err != nil {
		return domain.Settings{}, err
	}
	return entity, nil
}

// Save persists the settings row.
// PRE: value has been validated
// POST: The single row reflects value
func (s *SQLiteStore) Save(ctx context.Context, value domain.Settings) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO settings (id, max_capacity, entry_margin_minutes, updated_at) VALUES (1, ?, ?, ?) "+
			"ON CONFLICT(id) DO UPDATE SET max_capacity=excluded.max_capacity, entry_margin_minutes=excluded.entry_margin_minutes, updated_at=excluded.updated_at",
		value.MaxCapacity,
		value.EntryMarginMinutes,
		storage.FormatTime(time.Now().UTC()),
	)
	return err
}

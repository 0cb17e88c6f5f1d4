package announcement

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"palestra/internal/adapters/storage"
	domain "palestra/internal/domain/announcement"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AnnouncementStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const announcementColumns = "id, status, title, content, created_by, published_by, author_name, color, pinned, pinned_at, visible_from, visible_until, created_at, updated_at, published_at"

// GetByID retrieves an Announcement by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Announcement, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+announcementColumns+" FROM announcement WHERE id = ?", id)
	entity, err := scanAnnouncement(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Announcement{}, fmt.Errorf("announcement not found: %w", err)
	}
	return entity, err
}

// Save persists an Announcement to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Announcement) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO announcement ("+announcementColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) "+
			"ON CONFLICT(id) DO UPDATE SET status=excluded.status, title=excluded.title, content=excluded.content, published_by=excluded.published_by, author_name=excluded.author_name, color=excluded.color, pinned=excluded.pinned, pinned_at=excluded.pinned_at, visible_from=excluded.visible_from, visible_until=excluded.visible_until, updated_at=excluded.updated_at, published_at=excluded.published_at",
		entity.ID,
		entity.Status,
		entity.Title,
		entity.Content,
		entity.CreatedBy,
		entity.PublishedBy,
		entity.AuthorName,
		entity.Color,
		boolToInt(entity.Pinned),
		storage.FormatNullableTime(entity.PinnedAt),
		storage.FormatNullableTime(entity.VisibleFrom),
		storage.FormatNullableTime(entity.VisibleUntil),
		storage.FormatTime(entity.CreatedAt),
		storage.FormatNullableTime(entity.UpdatedAt),
		storage.FormatNullableTime(entity.PublishedAt),
	)
	return err
}

// Delete removes an Announcement from the database.
// PRE: id is non-empty
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM announcement WHERE id = ?", id)
	return err
}

// List retrieves Announcements, pinned first then newest first.
// PRE: filter has valid parameters
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Announcement, error) {
	var queryBuilder strings.Builder
	var args []any

	queryBuilder.WriteString("SELECT " + announcementColumns + " FROM announcement")

	var where []string
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.PublishedOnly {
		where = append(where, "status = 'published'")
	}
	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY pinned DESC, created_at DESC LIMIT ? OFFSET ?")
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Announcement
	for rows.Next() {
		entity, err := scanAnnouncement(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanAnnouncement extracts an Announcement from a row scanner function.
func scanAnnouncement(scan func(dest ...any) error) (domain.Announcement, error) {
	var entity domain.Announcement
	var createdAt string
	var publishedBy, pinnedAt, visibleFrom, visibleUntil, updatedAt, publishedAt sql.NullString
	var pinned int
	err := scan(
		&entity.ID,
		&entity.Status,
		&entity.Title,
		&entity.Content,
		&entity.CreatedBy,
		&publishedBy,
		&entity.AuthorName,
		&entity.Color,
		&pinned,
		&pinnedAt,
		&visibleFrom,
		&visibleUntil,
		&createdAt,
		&updatedAt,
		&publishedAt,
	)
	if err != nil {
		return domain.Announcement{}, err
	}
	entity.PublishedBy = publishedBy.String
	entity.Pinned = pinned != 0
	entity.PinnedAt = storage.ParseNullableTime(pinnedAt)
	entity.VisibleFrom = storage.ParseNullableTime(visibleFrom)
	entity.VisibleUntil = storage.ParseNullableTime(visibleUntil)
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	entity.UpdatedAt = storage.ParseNullableTime(updatedAt)
	entity.PublishedAt = storage.ParseNullableTime(publishedAt)
	return entity, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package audit

import (
	"context"
	"strings"

	"palestra/internal/adapters/storage"
	domain "palestra/internal/domain/audit"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AuditStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const auditColumns = "id, timestamp, category, action, severity, actor_id, actor_email, resource_id, resource_type, description, ip_address, metadata"

// Append writes one audit event. Events are never updated or deleted.
// PRE: event has a unique ID
func (s *SQLiteStore) Append(ctx context.Context, event domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO audit_log ("+auditColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		event.ID,
		storage.FormatTime(event.Timestamp),
		string(event.Category),
		string(event.Action),
		string(event.Severity),
		event.ActorID,
		event.ActorEmail,
		event.ResourceID,
		event.ResourceType,
		event.Description,
		event.IPAddress,
		event.Metadata,
	)
	return err
}

// List retrieves audit events, newest first.
// PRE: filter has valid parameters
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Event, error) {
	var queryBuilder strings.Builder
	var args []any

	queryBuilder.WriteString("SELECT " + auditColumns + " FROM audit_log")

	var where []string
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.ActorID != "" {
		where = append(where, "actor_id = ?")
		args = append(args, filter.ActorID)
	}
	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY timestamp DESC LIMIT ? OFFSET ?")
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Event
	for rows.Next() {
		var e domain.Event
		var ts, category, action, severity string
		err := rows.Scan(
			&e.ID, &ts, &category, &action, &severity,
			&e.ActorID, &e.ActorEmail, &e.ResourceID, &e.ResourceType,
			&e.Description, &e.IPAddress, &e.Metadata,
		)
		if err != nil {
			return nil, err
		}
		e.Timestamp, _ = storage.ParseTime(ts)
		e.Category = domain.Category(category)
		e.Action = domain.Action(action)
		e.Severity = domain.Severity(severity)
		results = append(results, e)
	}
	return results, rows.Err()
}

// Count returns the total number of audit events.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_log").Scan(&count)
	return count, err
}

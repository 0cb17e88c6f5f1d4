package orchestrators

import (
	"context"
	"log/slog"

	"palestra/internal/domain/audit"
)

// AuditStoreForOrchestrator defines the append-only audit interface used
// by mutating orchestrators.
type AuditStoreForOrchestrator interface {
	Append(ctx context.Context, event audit.Event) error
}

// recordAudit appends an audit event, logging instead of failing the
// operation when the append does not succeed. A nil store disables
// auditing (tests, seeding).
func recordAudit(ctx context.Context, store AuditStoreForOrchestrator, event audit.Event) {
	if store == nil {
		return
	}
	if err := store.Append(ctx, event); err != nil {
		slog.Warn("audit_append_failed", "error", err, "category", event.Category, "action", event.Action)
	}
}

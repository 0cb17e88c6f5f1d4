package web

import (
	"net/http"

	storageAudit "palestra/internal/adapters/storage/audit"
	"palestra/internal/application/listutil"
)

// handleAuditList returns the audit trail, newest first (GET /api/audit).
func handleAuditList(w http.ResponseWriter, r *http.Request) {
	page := listutil.ParsePageParams(r.URL.Query())

	events, err := stores.AuditStore.List(r.Context(), storageAudit.ListFilter{
		Limit:    page.PerPage,
		Offset:   (page.Page - 1) * page.PerPage,
		Category: r.URL.Query().Get("category"),
		ActorID:  r.URL.Query().Get("actor_id"),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	total, err := stores.AuditStore.Count(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"events":   events,
		"pageInfo": listutil.NewPageInfo(page.Page, page.PerPage, total),
	})
}

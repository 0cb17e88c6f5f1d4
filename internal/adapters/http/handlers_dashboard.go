package web

import (
	"net/http"

	"palestra/internal/application/projections"
)

func dashboardDeps() projections.GetDashboardDeps {
	return projections.GetDashboardDeps{
		BookingStore:      stores.BookingStore,
		MemberStore:       stores.MemberStore,
		SettingsStore:     stores.SettingsStore,
		NotificationStore: stores.NotificationStore,
	}
}

// handleDashboardStats returns the dashboard counters
// (GET /api/dashboard/stats).
func handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := projections.QueryGetDashboardStats(r.Context(), dashboardDeps(), timeNow())
	if err != nil {
		internalError(w, err)
		return
	}
	respond(w, http.StatusOK, stats)
}

// handleCurrentPresences returns the number of members currently inside
// (GET /api/dashboard/stats/current-presences).
func handleCurrentPresences(w http.ResponseWriter, r *http.Request) {
	presences, err := projections.QueryGetCurrentPresences(r.Context(), dashboardDeps(), timeNow())
	if err != nil {
		internalError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{"count": len(presences)})
}

// handleCurrentPresencesList returns who is currently inside
// (GET /api/dashboard/stats/current-presences-list).
func handleCurrentPresencesList(w http.ResponseWriter, r *http.Request) {
	presences, err := projections.QueryGetCurrentPresences(r.Context(), dashboardDeps(), timeNow())
	if err != nil {
		internalError(w, err)
		return
	}
	respond(w, http.StatusOK, presences)
}

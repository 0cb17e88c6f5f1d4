package web

import (
	"net/http"

	"palestra/internal/adapters/http/middleware"
)

// registerRoutes wires every API endpoint onto the mux. Authenticated
// routes go through RequireAuth; admin-only routes through RequireAdmin.
func registerRoutes(mux *http.ServeMux) {
	authed := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }
	admin := func(h http.HandlerFunc) http.Handler { return middleware.RequireAdmin(h) }

	mux.HandleFunc("GET /health", handleHealth)

	// Auth: login, logout and password reset are reachable without a session.
	mux.HandleFunc("POST /api/auth/login", handleLogin)
	mux.HandleFunc("POST /api/auth/logout", handleLogout)
	mux.HandleFunc("POST /api/auth/password-reset", handlePasswordResetRequest)
	mux.HandleFunc("POST /api/auth/password-reset/confirm", handlePasswordResetConfirm)

	// Turnstile token verification (the device has no operator session).
	mux.HandleFunc("POST /api/access/verify", handleAccessVerify)

	// Dashboard
	mux.Handle("GET /api/dashboard/stats", authed(handleDashboardStats))
	mux.Handle("GET /api/dashboard/stats/current-presences", authed(handleCurrentPresences))
	mux.Handle("GET /api/dashboard/stats/current-presences-list", authed(handleCurrentPresencesList))

	// Bookings
	mux.Handle("GET /api/bookings", authed(handleBookingList))
	mux.Handle("POST /api/bookings", authed(handleBookingCreate))
	mux.Handle("GET /api/bookings/date/{date}", authed(handleBookingsForDate))
	mux.Handle("DELETE /api/bookings/{id}", authed(handleBookingDelete))
	mux.Handle("GET /api/bookings/availability", authed(handleAvailability))
	mux.Handle("GET /api/bookings/calendar", authed(handleCalendar))
	mux.Handle("GET /api/bookings/export.ics", authed(handleCalendarExport))

	// Members
	mux.Handle("GET /api/members", authed(handleMemberList))
	mux.Handle("POST /api/members", authed(handleMemberCreate))
	mux.Handle("GET /api/members/{id}", authed(handleMemberProfile))
	mux.Handle("PUT /api/members/{id}", authed(handleMemberUpdate))
	mux.Handle("DELETE /api/members/{id}", authed(handleMemberDelete))
	mux.Handle("GET /api/members/{id}/badge.pdf", authed(handleMemberBadge))

	// Operators (admin only)
	mux.Handle("GET /api/operators", admin(handleOperatorList))
	mux.Handle("POST /api/operators", admin(handleOperatorCreate))
	mux.Handle("PUT /api/operators/{id}", admin(handleOperatorUpdate))
	mux.Handle("DELETE /api/operators/{id}", admin(handleOperatorDelete))

	// Own profile
	mux.Handle("GET /api/operator/profile", authed(handleProfileGet))
	mux.Handle("PUT /api/operator/profile", authed(handleProfileUpdate))
	mux.Handle("POST /api/operator/profile/change-password", authed(handleChangePassword))

	// Settings (admin only)
	mux.Handle("GET /api/settings", authed(handleSettingsGet))
	mux.Handle("PUT /api/settings", admin(handleSettingsUpdate))

	// Notifications
	mux.Handle("GET /api/notifications", authed(handleNotificationList))
	mux.Handle("POST /api/notifications/{id}/read", authed(handleNotificationRead))
	mux.Handle("POST /api/notifications/read-all", authed(handleNotificationReadAll))
	mux.Handle("DELETE /api/notifications/{id}", authed(handleNotificationDelete))
	mux.Handle("POST /api/notifications/rebuild", admin(handleNotificationRebuild))

	// Announcements
	mux.Handle("GET /api/announcements", authed(handleAnnouncementList))
	mux.Handle("POST /api/announcements", admin(handleAnnouncementCreate))
	mux.Handle("PUT /api/announcements/{id}", admin(handleAnnouncementUpdate))
	mux.Handle("POST /api/announcements/{id}/publish", admin(handleAnnouncementPublish))
	mux.Handle("DELETE /api/announcements/{id}", admin(handleAnnouncementDelete))

	// Audit trail (admin only)
	mux.Handle("GET /api/audit", admin(handleAuditList))
}

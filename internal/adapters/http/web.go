// Package web wires the JSON API consumed by the back-office SPA.
package web

import (
	"net/http"

	"github.com/rs/cors"

	"palestra/internal/adapters/badge"
	"palestra/internal/adapters/http/middleware"
	announcementStore "palestra/internal/adapters/storage/announcement"
	auditStore "palestra/internal/adapters/storage/audit"
	bookingStore "palestra/internal/adapters/storage/booking"
	memberStore "palestra/internal/adapters/storage/member"
	notificationStore "palestra/internal/adapters/storage/notification"
	operatorStore "palestra/internal/adapters/storage/operator"
	outboxStore "palestra/internal/adapters/storage/outbox"
	settingsStore "palestra/internal/adapters/storage/settings"
	"palestra/internal/domain/notification"
)

// Stores holds all storage dependencies.
type Stores struct {
	OperatorStore     operatorStore.Store
	MemberStore       memberStore.Store
	BookingStore      bookingStore.Store
	NotificationStore notificationStore.Store
	SettingsStore     settingsStore.Store
	AnnouncementStore announcementStore.Store
	AuditStore        auditStore.Store
	OutboxStore       outboxStore.Store
}

// Options carries the HTTP-layer configuration.
type Options struct {
	CSRFKey        []byte
	Production     bool
	AllowedOrigins []string // SPA origins allowed by CORS
	BaseURL        string   // public base URL for reset links
	BadgeSigner    *badge.Signer
	Policy         notification.Policy // missed-booking scan policy for rebuild
}

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global wiring set by NewMux.
var (
	stores   *Stores
	sessions *middleware.SessionStore
	options  Options
)

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, opts Options) http.Handler {
	stores = s
	options = opts
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = opts.Production

	mux := http.NewServeMux()
	registerRoutes(mux)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
	})

	limiter := middleware.NewRateLimiter(RateLimitPerSecond)

	// Outer to inner: AccessLog, Recover, SecurityHeaders, CORS, CSRF,
	// Auth, RateLimit, mux.
	return middleware.Chain(mux,
		middleware.RateLimit(limiter),
		middleware.Auth(sessions),
		middleware.CSRF(opts.CSRFKey, opts.Production, opts.AllowedOrigins),
		corsHandler.Handler,
		middleware.SecurityHeaders,
		middleware.Recover,
		middleware.AccessLog,
	)
}

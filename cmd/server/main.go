package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"palestra/internal/adapters/badge"
	"palestra/internal/adapters/email"
	web "palestra/internal/adapters/http"
	"palestra/internal/adapters/storage"
	announcementstore "palestra/internal/adapters/storage/announcement"
	auditstore "palestra/internal/adapters/storage/audit"
	bookingstore "palestra/internal/adapters/storage/booking"
	memberstore "palestra/internal/adapters/storage/member"
	notificationstore "palestra/internal/adapters/storage/notification"
	operatorstore "palestra/internal/adapters/storage/operator"
	outboxstore "palestra/internal/adapters/storage/outbox"
	settingsstore "palestra/internal/adapters/storage/settings"
	"palestra/internal/application/orchestrators"
	"palestra/internal/config"
	"palestra/internal/domain/notification"
	"palestra/internal/scheduler"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	timedDB := storage.NewTimedDB(db)

	opStore := operatorstore.NewSQLiteStore(timedDB)
	mbrStore := memberstore.NewSQLiteStore(timedDB)
	bkStore := bookingstore.NewSQLiteStore(timedDB)
	ntfStore := notificationstore.NewSQLiteStore(timedDB)
	obStore := outboxstore.NewSQLiteStore(timedDB)

	stores := &web.Stores{
		OperatorStore:     opStore,
		MemberStore:       mbrStore,
		BookingStore:      bkStore,
		NotificationStore: ntfStore,
		SettingsStore:     settingsstore.NewSQLiteStore(timedDB),
		AnnouncementStore: announcementstore.NewSQLiteStore(timedDB),
		AuditStore:        auditstore.NewSQLiteStore(timedDB),
		OutboxStore:       obStore,
	}

	if cfg.AdminPassword != "" {
		seedDeps := orchestrators.SeedAdminDeps{OperatorStore: opStore, Now: time.Now}
		if err := orchestrators.ExecuteSeedAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword, seedDeps); err != nil {
			log.Fatalf("failed to seed admin account: %v", err)
		}
	} else if !cfg.IsProduction() {
		log.Println("WARNING: PALESTRA_ADMIN_PASSWORD is not set, no admin account seeded")
	}

	if cfg.SeedDemoData && !cfg.IsProduction() {
		demoDeps := orchestrators.DemoSeedDeps{MemberStore: mbrStore, BookingStore: bkStore, Now: time.Now}
		if err := orchestrators.ExecuteSeedDemoData(context.Background(), demoDeps); err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
	}

	var sender email.Sender
	if cfg.ResendAPIKey != "" {
		sender = email.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
		log.Println("Email delivery via Resend")
	} else {
		sender = email.NewNoopSender()
		if cfg.IsProduction() {
			log.Println("WARNING: PALESTRA_RESEND_API_KEY is not set, outgoing email is disabled")
		} else {
			log.Println("Email delivery disabled (noop sender)")
		}
	}

	policy := notification.Policy{
		GracePeriod: cfg.NotificationGracePeriod,
		MediumCount: cfg.NotificationMediumCount,
		HighCount:   cfg.NotificationHighCount,
	}

	sched, err := scheduler.New(cfg.ScanSchedule, cfg.OutboxSchedule, scheduler.Jobs{
		ScanDeps: orchestrators.ScanMissedBookingsDeps{
			MemberStore:       mbrStore,
			NotificationStore: ntfStore,
			Policy:            policy,
			GenerateID:        func() string { return uuid.New().String() },
			Now:               time.Now,
		},
		RetryDeps: orchestrators.RetryOutboxDeps{
			OutboxStore: obStore,
			Sender:      sender,
			From:        cfg.EmailFrom,
			Now:         time.Now,
		},
	})
	if err != nil {
		log.Fatalf("failed to build scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	handler := web.NewMux(stores, web.Options{
		CSRFKey:        loadCSRFKey(cfg),
		Production:     cfg.IsProduction(),
		AllowedOrigins: []string{cfg.BaseURL},
		BaseURL:        cfg.BaseURL,
		BadgeSigner:    badge.NewSigner([]byte(cfg.BadgeSecret), 0),
		Policy:         policy,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("palestra %s listening on %s (env=%s, schema=v%d)", version, cfg.Addr, cfg.Environment, storage.LatestSchemaVersion())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// loadCSRFKey decodes the configured CSRF secret (64 hex characters,
// 32 bytes). In development a random per-start key is generated when
// the variable is unset; production refuses to start without one.
func loadCSRFKey(cfg config.Config) []byte {
	if cfg.CSRFKey != "" {
		key, err := hex.DecodeString(cfg.CSRFKey)
		if err != nil || len(key) != 32 {
			log.Fatal("PALESTRA_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if cfg.IsProduction() {
		log.Fatal("PALESTRA_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using a random CSRF key, sessions will not survive restarts")
	return key
}

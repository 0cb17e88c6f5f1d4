// Package config loads the application configuration from the environment.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Addr        string `envconfig:"ADDR" default:":8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"` // development|production
	DBPath      string `envconfig:"DB_PATH" default:"./data/palestra.db"`
	BaseURL     string `envconfig:"BASE_URL" default:"http://localhost:4200"`

	CSRFKey     string `envconfig:"CSRF_KEY"`
	BadgeSecret string `envconfig:"BADGE_SECRET" required:"true"`

	ResendAPIKey string `envconfig:"RESEND_API_KEY"`
	EmailFrom    string `envconfig:"EMAIL_FROM" default:"Palestra <noreply@palestra.test>"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@palestra.test"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
	SeedDemoData  bool   `envconfig:"SEED_DEMO_DATA" default:"false"`

	ScanSchedule   string `envconfig:"SCAN_SCHEDULE" default:"@every 15m"`
	OutboxSchedule string `envconfig:"OUTBOX_SCHEDULE" default:"@every 1m"`

	NotificationGracePeriod time.Duration `envconfig:"NOTIFICATION_GRACE_PERIOD" default:"1h"`
	NotificationMediumCount int           `envconfig:"NOTIFICATION_MEDIUM_COUNT" default:"2"`
	NotificationHighCount   int           `envconfig:"NOTIFICATION_HIGH_COUNT" default:"3"`
}

// Load reads a .env file when present, then processes environment
// variables into Config.
func Load() (Config, error) {
	// Missing .env is fine; the environment may be set by the deployment.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("PALESTRA", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// IsProduction reports whether the app runs with production hardening
// (secure cookies, strict CSRF).
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"palestra/internal/domain/audit"
	"palestra/internal/domain/settings"
)

// SettingsStoreForOrchestrator defines the store interface needed by UpdateSettings.
type SettingsStoreForOrchestrator interface {
	Get(ctx context.Context) (settings.Settings, error)
	Save(ctx context.Context, s settings.Settings) error
}

// UpdateSettingsInput carries input for the update settings orchestrator.
type UpdateSettingsInput struct {
	MaxCapacity        int
	EntryMarginMinutes int
	ActorID            string
	ActorEmail         string
}

// UpdateSettingsDeps holds dependencies for UpdateSettings.
type UpdateSettingsDeps struct {
	SettingsStore SettingsStoreForOrchestrator
	AuditStore    AuditStoreForOrchestrator
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteUpdateSettings validates and persists the gym settings.
// PRE: input values are within the allowed ranges
// POST: The settings row reflects the new values
func ExecuteUpdateSettings(ctx context.Context, input UpdateSettingsInput, deps UpdateSettingsDeps) (settings.Settings, error) {
	s := settings.Settings{
		MaxCapacity:        input.MaxCapacity,
		EntryMarginMinutes: input.EntryMarginMinutes,
	}
	if err := s.Validate(); err != nil {
		return settings.Settings{}, err
	}

	if err := deps.SettingsStore.Save(ctx, s); err != nil {
		return settings.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}

	recordAudit(ctx, deps.AuditStore, audit.
		NewEvent(deps.GenerateID(), deps.Now(), audit.CategorySettings, audit.ActionUpdate, input.ActorID, input.ActorEmail).
		WithDescription(fmt.Sprintf("max capacity set to %d, entry margin to %d min", s.MaxCapacity, s.EntryMarginMinutes)))

	slog.Info("settings_updated", "max_capacity", s.MaxCapacity, "entry_margin_minutes", s.EntryMarginMinutes)
	return s, nil
}

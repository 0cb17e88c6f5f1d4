package web

import (
	"errors"
	"net/http"

	"palestra/internal/adapters/http/middleware"
	"palestra/internal/application/orchestrators"
	"palestra/internal/domain/settings"
)

type settingsDTO struct {
	MaxCapacity        int `json:"maxCapacity"`
	EntryMarginMinutes int `json:"entryMarginMinutes"`
}

// handleSettingsGet returns the gym settings (GET /api/settings).
func handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	s, err := stores.SettingsStore.Get(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	respond(w, http.StatusOK, settingsDTO{
		MaxCapacity:        s.MaxCapacity,
		EntryMarginMinutes: s.EntryMarginMinutes,
	})
}

// handleSettingsUpdate validates and persists the gym settings
// (PUT /api/settings).
func handleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	var req settingsDTO
	if err := strictDecode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	s, err := orchestrators.ExecuteUpdateSettings(r.Context(), orchestrators.UpdateSettingsInput{
		MaxCapacity:        req.MaxCapacity,
		EntryMarginMinutes: req.EntryMarginMinutes,
		ActorID:            session.OperatorID,
		ActorEmail:         session.Email,
	}, orchestrators.UpdateSettingsDeps{
		SettingsStore: stores.SettingsStore,
		AuditStore:    stores.AuditStore,
		GenerateID:    generateID,
		Now:           timeNow,
	})
	if err != nil {
		if errors.Is(err, settings.ErrInvalidCapacity) || errors.Is(err, settings.ErrInvalidMargin) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		internalError(w, err)
		return
	}
	respond(w, http.StatusOK, settingsDTO{
		MaxCapacity:        s.MaxCapacity,
		EntryMarginMinutes: s.EntryMarginMinutes,
	})
}

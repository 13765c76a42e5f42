package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"serenity/internal/models"
	"serenity/internal/services"
	"serenity/internal/store"
)

type PreferencesHandler struct {
	store  store.Store
	logger *zap.Logger
}

func NewPreferencesHandler(s store.Store, logger *zap.Logger) *PreferencesHandler {
	return &PreferencesHandler{store: s, logger: logger}
}

// Create stores onboarding answers together with the mood-derived theme.
func (h *PreferencesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := decodeBody(r, &req); err != nil {
		invalidBody(w, "invalid request body")
		return
	}
	if req.Identity == nil || req.CurrentMood == nil || req.MoodFrequency == nil {
		invalidBody(w, "identity, current_mood and mood_frequency are required")
		return
	}

	prefs := models.UserPreferences{
		ID:            models.NewID(),
		Identity:      *req.Identity,
		CurrentMood:   *req.CurrentMood,
		MoodFrequency: *req.MoodFrequency,
		ThemeColors:   services.GenerateThemeColors(*req.CurrentMood, *req.Identity),
		CreatedAt:     models.Now(),
	}
	if err := h.store.CreatePreferences(r.Context(), &prefs); err != nil {
		serverError(w, r, h.logger, "could not save preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *PreferencesHandler) List(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.store.ListPreferences(r.Context())
	if err != nil {
		serverError(w, r, h.logger, "could not fetch preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	mw "serenity/internal/middleware"
	"serenity/internal/models"
	"serenity/internal/store"
)

// summaryWindow is how far back the usage summary looks.
const summaryWindow = 7 * 24 * time.Hour

type AnalyticsHandler struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewAnalyticsHandler(s store.Store, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{store: s, logger: logger, now: models.Now}
}

func (h *AnalyticsHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req usageRequest
	if err := decodeBody(r, &req); err != nil {
		invalidBody(w, "invalid request body")
		return
	}
	if req.Feature == nil || req.Action == nil {
		invalidBody(w, "feature and action are required")
		return
	}

	event := models.UsageAnalytics{
		ID:        models.NewID(),
		UserID:    mw.UserID(r.Context()),
		Feature:   *req.Feature,
		Action:    *req.Action,
		Duration:  req.Duration,
		Metadata:  req.Metadata,
		CreatedAt: h.now(),
	}
	if err := h.store.RecordUsage(r.Context(), &event); err != nil {
		serverError(w, r, h.logger, "could not record usage", err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Summary aggregates the user's usage over the last week.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	since := h.now().Add(-summaryWindow)
	sum, err := h.store.UsageSummary(r.Context(), mw.UserID(r.Context()), since)
	if err != nil {
		serverError(w, r, h.logger, "could not summarise usage", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

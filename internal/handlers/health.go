package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"serenity/internal/store"
)

type HealthHandler struct {
	store  store.Store
	logger *zap.Logger
}

func NewHealthHandler(s store.Store, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{store: s, logger: logger}
}

func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Serenity Space API", "status": "running"})
}

// Ready reports whether the store answers a ping within two seconds.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("store ping failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

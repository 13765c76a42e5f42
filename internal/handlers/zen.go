package handlers

import (
	"net/http"

	"go.uber.org/zap"

	mw "serenity/internal/middleware"
	"serenity/internal/models"
	"serenity/internal/store"
)

type ZenHandler struct {
	store  store.Store
	logger *zap.Logger
}

func NewZenHandler(s store.Store, logger *zap.Logger) *ZenHandler {
	return &ZenHandler{store: s, logger: logger}
}

func (h *ZenHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req zenSessionRequest
	if err := decodeBody(r, &req); err != nil {
		invalidBody(w, "invalid request body")
		return
	}
	if req.SessionType == nil || req.Duration == nil {
		invalidBody(w, "session_type and duration are required")
		return
	}

	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}
	session := models.ZenSession{
		ID:          models.NewID(),
		UserID:      mw.UserID(r.Context()),
		SessionType: *req.SessionType,
		Duration:    *req.Duration,
		Completed:   completed,
		CreatedAt:   models.Now(),
	}
	if err := h.store.CreateZenSession(r.Context(), &session); err != nil {
		serverError(w, r, h.logger, "could not save session", err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *ZenHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.ListZenSessions(r.Context(), mw.UserID(r.Context()))
	if err != nil {
		serverError(w, r, h.logger, "could not fetch sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

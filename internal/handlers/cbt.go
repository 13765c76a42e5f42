package handlers

import (
	"net/http"

	"go.uber.org/zap"

	mw "serenity/internal/middleware"
	"serenity/internal/models"
	"serenity/internal/services"
	"serenity/internal/store"
)

type CBTHandler struct {
	store     store.Store
	encSvc    *services.EncryptionService
	questions *services.QuestionGenerator
	logger    *zap.Logger
}

func NewCBTHandler(s store.Store, encSvc *services.EncryptionService, questions *services.QuestionGenerator, logger *zap.Logger) *CBTHandler {
	return &CBTHandler{store: s, encSvc: encSvc, questions: questions, logger: logger}
}

// CreateSession persists a completed reframing session. Answers are stored as
// given; nothing checks them against a question set.
func (h *CBTHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req cbtSessionRequest
	if err := decodeBody(r, &req); err != nil {
		invalidBody(w, "invalid request body")
		return
	}
	if req.NegativeThought == nil || req.QuestionsAndAnswers == nil {
		invalidBody(w, "negative_thought and questions_and_answers are required")
		return
	}

	session := models.CBTSession{
		ID:                  models.NewID(),
		UserID:              mw.UserID(r.Context()),
		NegativeThought:     *req.NegativeThought,
		QuestionsAndAnswers: req.QuestionsAndAnswers,
		CreatedAt:           models.Now(),
	}

	// Encrypt journal text before storing
	stored, err := h.encSvc.EncryptCBTSession(session)
	if err != nil {
		serverError(w, r, h.logger, "could not encrypt session", err)
		return
	}
	if err := h.store.CreateCBTSession(r.Context(), &stored); err != nil {
		serverError(w, r, h.logger, "could not save session", err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *CBTHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.ListCBTSessions(r.Context(), mw.UserID(r.Context()))
	if err != nil {
		serverError(w, r, h.logger, "could not fetch sessions", err)
		return
	}
	out := make([]models.CBTSession, 0, len(sessions))
	for _, s := range sessions {
		plain, err := h.encSvc.DecryptCBTSession(s)
		if err != nil {
			h.logger.Warn("skipping undecryptable cbt session", zap.String("id", s.ID), zap.Error(err))
			continue
		}
		out = append(out, plain)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CBTHandler) StaticQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, services.StaticQuestions())
}

// DynamicQuestions answers with AI-personalised questions, or the static set
// when generation fails. Only a missing AI credential is reported as an error.
func (h *CBTHandler) DynamicQuestions(w http.ResponseWriter, r *http.Request) {
	var req dynamicQuestionRequest
	if err := decodeBody(r, &req); err != nil {
		invalidBody(w, "invalid request body")
		return
	}
	if req.NegativeThought == nil {
		invalidBody(w, "negative_thought is required")
		return
	}
	userContext := ""
	if req.UserContext != nil {
		userContext = *req.UserContext
	}

	questions, err := h.questions.Generate(r.Context(), *req.NegativeThought, userContext)
	if err != nil {
		// ErrAINotConfigured is the only error Generate returns.
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

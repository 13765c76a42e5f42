package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Required request fields are pointers so a missing key can be told apart
// from an empty value. Empty strings are accepted and stored as sent.

type preferencesRequest struct {
	Identity      *string `json:"identity"`
	CurrentMood   *string `json:"current_mood"`
	MoodFrequency *string `json:"mood_frequency"`
}

type cbtSessionRequest struct {
	NegativeThought     *string             `json:"negative_thought"`
	QuestionsAndAnswers []map[string]string `json:"questions_and_answers"`
}

type dynamicQuestionRequest struct {
	NegativeThought *string `json:"negative_thought"`
	UserContext     *string `json:"user_context"`
}

type zenSessionRequest struct {
	SessionType *string `json:"session_type"`
	Duration    *int    `json:"duration"` // minutes
	Completed   *bool   `json:"completed"`
}

type favoriteRequest struct {
	ArticleID string `json:"article_id"`
	UserID    string `json:"user_id"`
}

type usageRequest struct {
	Feature  *string        `json:"feature"`
	Action   *string        `json:"action"`
	Duration *int           `json:"duration"` // seconds
	Metadata map[string]any `json:"metadata"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

var errEmptyBody = errors.New("empty body")

// decodeBody decodes a JSON request body into v. An absent body yields
// errEmptyBody so callers with optional bodies can tell it apart.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errEmptyBody
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// invalidBody answers a request whose body failed to decode or lacks a
// required field.
func invalidBody(w http.ResponseWriter, detail string) {
	writeError(w, http.StatusUnprocessableEntity, detail)
}

// serverError logs err and answers with an opaque 500.
func serverError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, msg string, err error) {
	logger.Error(msg, zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

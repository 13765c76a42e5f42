package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	mw "serenity/internal/middleware"
	"serenity/internal/models"
	"serenity/internal/store"
)

type FavoritesHandler struct {
	store  store.Store
	logger *zap.Logger
}

func NewFavoritesHandler(s store.Store, logger *zap.Logger) *FavoritesHandler {
	return &FavoritesHandler{store: s, logger: logger}
}

// Add favorites an article for the user. article_id and user_id come from the
// query string, with an optional JSON body as a fallback. Adding an existing
// pair returns the stored record.
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	var body favoriteRequest
	if err := decodeBody(r, &body); err != nil && !errors.Is(err, errEmptyBody) {
		invalidBody(w, "invalid request body")
		return
	}

	q := r.URL.Query()
	articleID := strings.TrimSpace(q.Get("article_id"))
	if articleID == "" {
		articleID = strings.TrimSpace(body.ArticleID)
	}
	if articleID == "" {
		invalidBody(w, "article_id is required")
		return
	}
	userID := mw.UserID(r.Context())
	if !q.Has("user_id") && strings.TrimSpace(body.UserID) != "" {
		userID = strings.TrimSpace(body.UserID)
	}

	fav, err := h.store.AddFavorite(r.Context(), models.FavoriteArticle{
		ID:        models.NewID(),
		UserID:    userID,
		ArticleID: articleID,
		CreatedAt: models.Now(),
	})
	if err != nil {
		serverError(w, r, h.logger, "could not save favorite", err)
		return
	}
	writeJSON(w, http.StatusOK, fav)
}

// List returns only the favorited article ids.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.store.ListFavoriteArticleIDs(r.Context(), mw.UserID(r.Context()))
	if err != nil {
		serverError(w, r, h.logger, "could not fetch favorites", err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

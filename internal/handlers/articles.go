package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"serenity/internal/services"
	"serenity/internal/store"
)

type ArticleHandler struct {
	store  store.Store
	logger *zap.Logger
}

func NewArticleHandler(s store.Store, logger *zap.Logger) *ArticleHandler {
	return &ArticleHandler{store: s, logger: logger}
}

// List returns the article library, seeding the default set the first time
// it is found empty.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	articles, err := h.store.ListArticles(ctx)
	if err != nil {
		serverError(w, r, h.logger, "could not fetch articles", err)
		return
	}
	if len(articles) == 0 {
		seeded, err := h.store.SeedArticles(ctx, services.SampleArticles())
		if err != nil {
			serverError(w, r, h.logger, "could not seed articles", err)
			return
		}
		if seeded {
			h.logger.Info("seeded default articles")
		}
		if articles, err = h.store.ListArticles(ctx); err != nil {
			serverError(w, r, h.logger, "could not fetch articles", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, articles)
}

func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	article, err := h.store.GetArticle(r.Context(), chi.URLParam(r, "articleID"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Article not found")
		return
	}
	if err != nil {
		serverError(w, r, h.logger, "could not fetch article", err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

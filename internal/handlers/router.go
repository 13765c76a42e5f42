package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	mw "serenity/internal/middleware"
	"serenity/internal/services"
	"serenity/internal/store"
)

// Deps are the process-scoped resources shared by every handler.
type Deps struct {
	Store       store.Store
	Encryption  *services.EncryptionService
	Questions   *services.QuestionGenerator
	Logger      *zap.Logger
	CORSOrigins []string
}

// NewRouter mounts every endpoint under /api.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	questions := d.Questions
	if questions == nil {
		questions = services.NewQuestionGenerator(nil, logger)
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(mw.ZapRecoverer(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.ResolveUser)
	r.Use(mw.ZapRequestLogger(logger))

	health := NewHealthHandler(d.Store, logger)
	prefs := NewPreferencesHandler(d.Store, logger)
	cbt := NewCBTHandler(d.Store, d.Encryption, questions, logger)
	zen := NewZenHandler(d.Store, logger)
	articles := NewArticleHandler(d.Store, logger)
	favorites := NewFavoritesHandler(d.Store, logger)
	analytics := NewAnalyticsHandler(d.Store, logger)

	r.Route("/api", func(api chi.Router) {
		api.Get("/", health.Root)
		api.Get("/healthz", health.Ready)

		api.Post("/preferences", prefs.Create)
		api.Get("/preferences", prefs.List)

		api.Post("/cbt-sessions", cbt.CreateSession)
		api.Get("/cbt-sessions", cbt.ListSessions)
		api.Get("/cbt-questions", cbt.StaticQuestions)
		api.Post("/cbt-questions/dynamic", cbt.DynamicQuestions)

		api.Post("/zen-sessions", zen.Create)
		api.Get("/zen-sessions", zen.List)

		api.Get("/articles", articles.List)
		api.Get("/articles/{articleID}", articles.Get)

		api.Post("/favorites", favorites.Add)
		api.Get("/favorites", favorites.List)

		api.Post("/analytics", analytics.Record)
		api.Get("/analytics/summary", analytics.Summary)
	})
	return r
}

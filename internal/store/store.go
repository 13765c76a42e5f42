// Package store persists the wellness records. Two backends implement Store:
// Postgres (sqlx over pgx, JSONB for the schema-light fields) and Mongo.
package store

import (
	"context"
	"errors"
	"time"

	"serenity/internal/models"
)

// ListLimit caps every list query.
const ListLimit = 1000

// RecentActivityLimit caps the recent_activity slice of a usage summary.
const RecentActivityLimit = 10

var ErrNotFound = errors.New("record not found")

// Store is safe for concurrent use by multiple handlers.
type Store interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error

	CreatePreferences(ctx context.Context, p *models.UserPreferences) error
	ListPreferences(ctx context.Context) ([]models.UserPreferences, error)

	CreateCBTSession(ctx context.Context, s *models.CBTSession) error
	ListCBTSessions(ctx context.Context, userID string) ([]models.CBTSession, error)

	CreateZenSession(ctx context.Context, s *models.ZenSession) error
	ListZenSessions(ctx context.Context, userID string) ([]models.ZenSession, error)

	ListArticles(ctx context.Context) ([]models.Article, error)
	GetArticle(ctx context.Context, id string) (*models.Article, error)
	// SeedArticles inserts articles in one bulk write unless the collection
	// already holds rows. It reports whether anything was inserted.
	SeedArticles(ctx context.Context, articles []models.Article) (bool, error)

	// AddFavorite stores f unless the (user_id, article_id) pair exists, in
	// which case the stored record is returned unchanged.
	AddFavorite(ctx context.Context, f models.FavoriteArticle) (*models.FavoriteArticle, error)
	ListFavoriteArticleIDs(ctx context.Context, userID string) ([]string, error)

	RecordUsage(ctx context.Context, u *models.UsageAnalytics) error
	UsageSummary(ctx context.Context, userID string, since time.Time) (*models.UsageSummary, error)
}

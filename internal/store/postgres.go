package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"serenity/internal/models"
)

// seedLockKey serialises article seeding across every API instance sharing
// the database.
const seedLockKey = 7_345_001

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var (
	preferencesColumns = []string{"id", "identity", "current_mood", "mood_frequency", "theme_colors", "created_at"}
	cbtColumns         = []string{"id", "user_id", "negative_thought", "questions_and_answers", "created_at"}
	zenColumns         = []string{"id", "user_id", "session_type", "duration", "completed", "created_at"}
	articleColumns     = []string{"id", "title", "content", "category", "author", "created_at"}
	favoriteColumns    = []string{"id", "user_id", "article_id", "created_at"}
	usageColumns       = []string{"id", "user_id", "feature", "action", "duration", "metadata", "created_at"}
)

type Postgres struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Postgres) Close(context.Context) error { return s.db.Close() }

func (s *Postgres) exec(ctx context.Context, b squirrel.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.db.ExecContext(ctx, query, args...)
}

func (s *Postgres) selectInto(ctx context.Context, dest interface{}, b squirrel.SelectBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return s.db.SelectContext(ctx, dest, query, args...)
}

type preferencesRow struct {
	models.UserPreferences
	ThemeColors jsonColumn[map[string]string] `db:"theme_colors"`
}

func (s *Postgres) CreatePreferences(ctx context.Context, p *models.UserPreferences) error {
	_, err := s.exec(ctx, psql.Insert("user_preferences").Columns(preferencesColumns...).
		Values(p.ID, p.Identity, p.CurrentMood, p.MoodFrequency, jsonColumn[map[string]string]{V: p.ThemeColors}, p.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert preferences: %w", err)
	}
	return nil
}

func (s *Postgres) ListPreferences(ctx context.Context) ([]models.UserPreferences, error) {
	var rows []preferencesRow
	q := psql.Select(preferencesColumns...).From("user_preferences").OrderBy("seq").Limit(ListLimit)
	if err := s.selectInto(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	out := make([]models.UserPreferences, 0, len(rows))
	for _, r := range rows {
		p := r.UserPreferences
		p.ThemeColors = r.ThemeColors.V
		out = append(out, p)
	}
	return out, nil
}

type cbtRow struct {
	models.CBTSession
	QuestionsAndAnswers jsonColumn[[]map[string]string] `db:"questions_and_answers"`
}

func (s *Postgres) CreateCBTSession(ctx context.Context, c *models.CBTSession) error {
	_, err := s.exec(ctx, psql.Insert("cbt_sessions").Columns(cbtColumns...).
		Values(c.ID, c.UserID, c.NegativeThought, jsonColumn[[]map[string]string]{V: c.QuestionsAndAnswers}, c.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert cbt session: %w", err)
	}
	return nil
}

func (s *Postgres) ListCBTSessions(ctx context.Context, userID string) ([]models.CBTSession, error) {
	var rows []cbtRow
	q := psql.Select(cbtColumns...).From("cbt_sessions").
		Where(squirrel.Eq{"user_id": userID}).OrderBy("seq").Limit(ListLimit)
	if err := s.selectInto(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("list cbt sessions: %w", err)
	}
	out := make([]models.CBTSession, 0, len(rows))
	for _, r := range rows {
		c := r.CBTSession
		c.QuestionsAndAnswers = r.QuestionsAndAnswers.V
		out = append(out, c)
	}
	return out, nil
}

func (s *Postgres) CreateZenSession(ctx context.Context, z *models.ZenSession) error {
	_, err := s.exec(ctx, psql.Insert("zen_sessions").Columns(zenColumns...).
		Values(z.ID, z.UserID, z.SessionType, z.Duration, z.Completed, z.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert zen session: %w", err)
	}
	return nil
}

func (s *Postgres) ListZenSessions(ctx context.Context, userID string) ([]models.ZenSession, error) {
	out := []models.ZenSession{}
	q := psql.Select(zenColumns...).From("zen_sessions").
		Where(squirrel.Eq{"user_id": userID}).OrderBy("seq").Limit(ListLimit)
	if err := s.selectInto(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list zen sessions: %w", err)
	}
	return out, nil
}

func (s *Postgres) ListArticles(ctx context.Context) ([]models.Article, error) {
	out := []models.Article{}
	q := psql.Select(articleColumns...).From("articles").OrderBy("seq").Limit(ListLimit)
	if err := s.selectInto(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return out, nil
}

func (s *Postgres) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	query, args, err := psql.Select(articleColumns...).From("articles").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var a models.Article
	if err := s.db.GetContext(ctx, &a, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return &a, nil
}

// SeedArticles holds a transaction-scoped advisory lock while it checks and
// fills the table, so concurrent first readers seed exactly once.
func (s *Postgres) SeedArticles(ctx context.Context, articles []models.Article) (bool, error) {
	if len(articles) == 0 {
		return false, nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, seedLockKey); err != nil {
		return false, fmt.Errorf("lock seed: %w", err)
	}
	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM articles`); err != nil {
		return false, fmt.Errorf("count articles: %w", err)
	}
	if count > 0 {
		return false, tx.Commit()
	}

	ins := psql.Insert("articles").Columns(articleColumns...)
	for _, a := range articles {
		ins = ins.Values(a.ID, a.Title, a.Content, a.Category, a.Author, a.CreatedAt)
	}
	query, args, err := ins.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("insert articles: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit seed: %w", err)
	}
	return true, nil
}

// AddFavorite relies on the (user_id, article_id) unique constraint: a losing
// concurrent insert is a no-op and the winner's row is returned.
func (s *Postgres) AddFavorite(ctx context.Context, f models.FavoriteArticle) (*models.FavoriteArticle, error) {
	res, err := s.exec(ctx, psql.Insert("favorite_articles").Columns(favoriteColumns...).
		Values(f.ID, f.UserID, f.ArticleID, f.CreatedAt).
		Suffix("ON CONFLICT (user_id, article_id) DO NOTHING"))
	if err != nil {
		return nil, fmt.Errorf("insert favorite: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return &f, nil
	}

	query, args, err := psql.Select(favoriteColumns...).From("favorite_articles").
		Where(squirrel.Eq{"user_id": f.UserID, "article_id": f.ArticleID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var existing models.FavoriteArticle
	if err := s.db.GetContext(ctx, &existing, query, args...); err != nil {
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	return &existing, nil
}

func (s *Postgres) ListFavoriteArticleIDs(ctx context.Context, userID string) ([]string, error) {
	out := []string{}
	q := psql.Select("article_id").From("favorite_articles").
		Where(squirrel.Eq{"user_id": userID}).OrderBy("seq").Limit(ListLimit)
	if err := s.selectInto(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return out, nil
}

type usageRow struct {
	models.UsageAnalytics
	Metadata jsonColumn[map[string]any] `db:"metadata"`
}

func (s *Postgres) RecordUsage(ctx context.Context, u *models.UsageAnalytics) error {
	_, err := s.exec(ctx, psql.Insert("usage_analytics").Columns(usageColumns...).
		Values(u.ID, u.UserID, u.Feature, u.Action, u.Duration, jsonColumn[map[string]any]{V: u.Metadata}, u.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert usage: %w", err)
	}
	return nil
}

func (s *Postgres) UsageSummary(ctx context.Context, userID string, since time.Time) (*models.UsageSummary, error) {
	window := squirrel.And{squirrel.Eq{"user_id": userID}, squirrel.GtOrEq{"created_at": since}}

	query, args, err := psql.Select("COUNT(*)").From("usage_analytics").Where(window).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	sum := &models.UsageSummary{FeatureStats: []models.FeatureStat{}, RecentActivity: []models.UsageAnalytics{}}
	if err := s.db.GetContext(ctx, &sum.TotalSessions, query, args...); err != nil {
		return nil, fmt.Errorf("count usage: %w", err)
	}

	stats := psql.Select("feature", "COUNT(*) AS total_sessions", "COALESCE(SUM(duration), 0) AS total_duration").
		From("usage_analytics").Where(window).GroupBy("feature").OrderBy("feature")
	if err := s.selectInto(ctx, &sum.FeatureStats, stats); err != nil {
		return nil, fmt.Errorf("usage feature stats: %w", err)
	}

	var rows []usageRow
	recent := psql.Select(usageColumns...).From("usage_analytics").Where(window).
		OrderBy("created_at DESC").Limit(RecentActivityLimit)
	if err := s.selectInto(ctx, &rows, recent); err != nil {
		return nil, fmt.Errorf("recent usage: %w", err)
	}
	for _, r := range rows {
		u := r.UsageAnalytics
		u.Metadata = r.Metadata.V
		sum.RecentActivity = append(sum.RecentActivity, u)
	}
	return sum, nil
}

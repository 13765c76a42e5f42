package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"serenity/internal/models"
)

// Memory keeps every collection in process memory. It backs DB_DRIVER=memory
// for local runs and the handler tests.
type Memory struct {
	mu          sync.RWMutex
	preferences []models.UserPreferences
	cbt         []models.CBTSession
	zen         []models.ZenSession
	articles    []models.Article
	favorites   []models.FavoriteArticle
	usage       []models.UsageAnalytics
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Ping(context.Context) error  { return nil }
func (m *Memory) Close(context.Context) error { return nil }

func firstN[T any](in []T, keep func(T) bool) []T {
	out := []T{}
	for _, v := range in {
		if len(out) == ListLimit {
			break
		}
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func (m *Memory) CreatePreferences(_ context.Context, p *models.UserPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	cp.ThemeColors = make(map[string]string, len(p.ThemeColors))
	for k, v := range p.ThemeColors {
		cp.ThemeColors[k] = v
	}
	m.preferences = append(m.preferences, cp)
	return nil
}

func (m *Memory) ListPreferences(context.Context) ([]models.UserPreferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return firstN(m.preferences, nil), nil
}

func (m *Memory) CreateCBTSession(_ context.Context, s *models.CBTSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	cp.QuestionsAndAnswers = make([]map[string]string, 0, len(s.QuestionsAndAnswers))
	for _, qa := range s.QuestionsAndAnswers {
		pair := make(map[string]string, len(qa))
		for k, v := range qa {
			pair[k] = v
		}
		cp.QuestionsAndAnswers = append(cp.QuestionsAndAnswers, pair)
	}
	m.cbt = append(m.cbt, cp)
	return nil
}

func (m *Memory) ListCBTSessions(_ context.Context, userID string) ([]models.CBTSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return firstN(m.cbt, func(s models.CBTSession) bool { return s.UserID == userID }), nil
}

func (m *Memory) CreateZenSession(_ context.Context, s *models.ZenSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zen = append(m.zen, *s)
	return nil
}

func (m *Memory) ListZenSessions(_ context.Context, userID string) ([]models.ZenSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return firstN(m.zen, func(s models.ZenSession) bool { return s.UserID == userID }), nil
}

func (m *Memory) ListArticles(context.Context) ([]models.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return firstN(m.articles, nil), nil
}

func (m *Memory) GetArticle(_ context.Context, id string) (*models.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.articles {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) SeedArticles(_ context.Context, articles []models.Article) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.articles) > 0 || len(articles) == 0 {
		return false, nil
	}
	m.articles = append(m.articles, articles...)
	return true, nil
}

func (m *Memory) AddFavorite(_ context.Context, f models.FavoriteArticle) (*models.FavoriteArticle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.favorites {
		if existing.UserID == f.UserID && existing.ArticleID == f.ArticleID {
			return &existing, nil
		}
	}
	m.favorites = append(m.favorites, f)
	return &f, nil
}

func (m *Memory) ListFavoriteArticleIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := []string{}
	for _, f := range firstN(m.favorites, func(f models.FavoriteArticle) bool { return f.UserID == userID }) {
		ids = append(ids, f.ArticleID)
	}
	return ids, nil
}

func (m *Memory) RecordUsage(_ context.Context, u *models.UsageAnalytics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage = append(m.usage, *u)
	return nil
}

func (m *Memory) UsageSummary(_ context.Context, userID string, since time.Time) (*models.UsageSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sum := &models.UsageSummary{FeatureStats: []models.FeatureStat{}, RecentActivity: []models.UsageAnalytics{}}
	byFeature := map[string]*models.FeatureStat{}
	var window []models.UsageAnalytics
	for _, u := range m.usage {
		if u.UserID != userID || u.CreatedAt.Before(since) {
			continue
		}
		window = append(window, u)
		st, ok := byFeature[u.Feature]
		if !ok {
			st = &models.FeatureStat{Feature: u.Feature}
			byFeature[u.Feature] = st
		}
		st.TotalSessions++
		if u.Duration != nil {
			st.TotalDuration += *u.Duration
		}
	}
	sum.TotalSessions = len(window)

	for _, st := range byFeature {
		sum.FeatureStats = append(sum.FeatureStats, *st)
	}
	sort.Slice(sum.FeatureStats, func(i, j int) bool {
		return sum.FeatureStats[i].Feature < sum.FeatureStats[j].Feature
	})

	sort.SliceStable(window, func(i, j int) bool { return window[i].CreatedAt.After(window[j].CreatedAt) })
	if len(window) > RecentActivityLimit {
		window = window[:RecentActivityLimit]
	}
	sum.RecentActivity = append(sum.RecentActivity, window...)
	return sum, nil
}

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"serenity/internal/models"
)

// Runs against a live server only when MONGO_TEST_URL is set, e.g.
// MONGO_TEST_URL=mongodb://localhost:27017 go test ./internal/store/...
func newTestMongo(t *testing.T) *Mongo {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URL")
	if uri == "" {
		t.Skip("MONGO_TEST_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbName := "serenity_test_" + models.NewID()[:8]
	m, err := NewMongo(ctx, uri, dbName)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = m.db.Drop(ctx)
		_ = m.Close(ctx)
	})
	return m
}

func TestMongoIntegration(t *testing.T) {
	m := newTestMongo(t)
	ctx := context.Background()

	t.Run("seed runs once", func(t *testing.T) {
		arts := []models.Article{{ID: "a1", Title: "One", CreatedAt: models.Now()}}
		seeded, err := m.SeedArticles(ctx, arts)
		require.NoError(t, err)
		assert.True(t, seeded)

		seeded, err = m.SeedArticles(ctx, []models.Article{{ID: "a2", Title: "Two"}})
		require.NoError(t, err)
		assert.False(t, seeded)

		got, err := m.GetArticle(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "One", got.Title)

		_, err = m.GetArticle(ctx, "a2")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("favorites are unique per user", func(t *testing.T) {
		first, err := m.AddFavorite(ctx, models.FavoriteArticle{ID: "f1", UserID: "u", ArticleID: "a1", CreatedAt: models.Now()})
		require.NoError(t, err)
		second, err := m.AddFavorite(ctx, models.FavoriteArticle{ID: "f2", UserID: "u", ArticleID: "a1", CreatedAt: models.Now()})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		ids, err := m.ListFavoriteArticleIDs(ctx, "u")
		require.NoError(t, err)
		assert.Equal(t, []string{"a1"}, ids)
	})

	t.Run("cbt sessions keep nested answers", func(t *testing.T) {
		s := &models.CBTSession{
			ID: "c1", UserID: "u", NegativeThought: "I always fail",
			QuestionsAndAnswers: []map[string]string{{"question": "q", "answer": "a"}},
			CreatedAt:           models.Now(),
		}
		require.NoError(t, m.CreateCBTSession(ctx, s))
		list, err := m.ListCBTSessions(ctx, "u")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, s.QuestionsAndAnswers, list[0].QuestionsAndAnswers)
	})

	t.Run("usage summary", func(t *testing.T) {
		d := 90
		require.NoError(t, m.RecordUsage(ctx, &models.UsageAnalytics{ID: "u1", UserID: "u", Feature: "zen", Action: "complete", Duration: &d, CreatedAt: models.Now()}))
		require.NoError(t, m.RecordUsage(ctx, &models.UsageAnalytics{ID: "u2", UserID: "u", Feature: "cbt", Action: "view", CreatedAt: models.Now()}))

		sum, err := m.UsageSummary(ctx, "u", models.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 2, sum.TotalSessions)
		assert.Equal(t, []models.FeatureStat{
			{Feature: "cbt", TotalSessions: 1},
			{Feature: "zen", TotalSessions: 1, TotalDuration: 90},
		}, sum.FeatureStats)
		assert.Len(t, sum.RecentActivity, 2)
	})
}

func TestMongoSeedClaims(t *testing.T) {
	arts := []models.Article{
		{ID: "a1", Title: "One", CreatedAt: models.Now()},
		{ID: "a2", Title: "Two", CreatedAt: models.Now()},
	}
	claim := func(t *testing.T, m *Mongo, at time.Time) {
		t.Helper()
		_, err := m.db.Collection(collSeedMarkers).InsertOne(context.Background(),
			bson.M{"_id": collArticles, "claimed_at": at})
		require.NoError(t, err)
	}

	t.Run("waiting reader sees the winner's articles", func(t *testing.T) {
		m := newTestMongo(t)
		ctx := context.Background()
		claim(t, m, models.Now())

		done := make(chan error, 1)
		go func() {
			time.Sleep(200 * time.Millisecond)
			_, err := m.db.Collection(collArticles).InsertMany(ctx, []interface{}{arts[0], arts[1]})
			done <- err
		}()

		seeded, err := m.SeedArticles(ctx, []models.Article{{ID: "other", Title: "Other"}})
		require.NoError(t, err)
		assert.False(t, seeded)
		require.NoError(t, <-done)

		list, err := m.ListArticles(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("released claim is taken over", func(t *testing.T) {
		m := newTestMongo(t)
		ctx := context.Background()
		claim(t, m, models.Now())

		go func() {
			time.Sleep(200 * time.Millisecond)
			_, _ = m.db.Collection(collSeedMarkers).DeleteOne(ctx, bson.M{"_id": collArticles})
		}()

		seeded, err := m.SeedArticles(ctx, arts)
		require.NoError(t, err)
		assert.True(t, seeded)

		list, err := m.ListArticles(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("stale claim does not block seeding", func(t *testing.T) {
		m := newTestMongo(t)
		ctx := context.Background()
		claim(t, m, models.Now().Add(-time.Hour))

		seeded, err := m.SeedArticles(ctx, arts)
		require.NoError(t, err)
		assert.True(t, seeded)
	})

	t.Run("cancelled caller still completes its claimed write", func(t *testing.T) {
		m := newTestMongo(t)
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		seeded, err := m.insertSeed(cancelled, arts)
		require.NoError(t, err)
		assert.True(t, seeded)

		list, err := m.ListArticles(context.Background())
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("failed bulk write releases the claim", func(t *testing.T) {
		m := newTestMongo(t)
		ctx := context.Background()
		require.NoError(t, m.db.RunCommand(ctx, bson.D{
			{Key: "collMod", Value: collArticles},
			{Key: "validator", Value: bson.M{"title": bson.M{"$ne": "rejected"}}},
		}).Err())
		claim(t, m, models.Now())

		_, err := m.insertSeed(ctx, []models.Article{{ID: "r1", Title: "rejected"}})
		require.Error(t, err)

		n, err := m.db.Collection(collSeedMarkers).CountDocuments(ctx, bson.M{"_id": collArticles})
		require.NoError(t, err)
		assert.Zero(t, n)

		seeded, err := m.SeedArticles(ctx, arts)
		require.NoError(t, err)
		assert.True(t, seeded)
	})
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"serenity/internal/models"
)

const (
	collPreferences = "user_preferences"
	collCBT         = "cbt_sessions"
	collZen         = "zen_sessions"
	collArticles    = "articles"
	collFavorites   = "favorite_articles"
	collUsage       = "usage_analytics"
	collSeedMarkers = "seed_markers"
)

// Mongo stores each entity in its own collection, one document per record.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	m := &Mongo{client: client, db: client.Database(dbName)}
	if err := m.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return m, nil
}

func (s *Mongo) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		collFavorites: {{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "article_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		collArticles: {{Keys: bson.D{{Key: "id", Value: 1}}}},
		collCBT:      {{Keys: bson.D{{Key: "user_id", Value: 1}}}},
		collZen:      {{Keys: bson.D{{Key: "user_id", Value: 1}}}},
		collUsage:    {{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}}},
	}
	for coll, idx := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func (s *Mongo) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

func (s *Mongo) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func (s *Mongo) insert(ctx context.Context, coll string, doc interface{}) error {
	if _, err := s.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert %s: %w", coll, err)
	}
	return nil
}

func findAll[T any](ctx context.Context, c *mongo.Collection, filter interface{}, opts *options.FindOptions) ([]T, error) {
	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.Name(), err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.Name(), err)
	}
	return out, nil
}

func limited() *options.FindOptions { return options.Find().SetLimit(ListLimit) }

func (s *Mongo) CreatePreferences(ctx context.Context, p *models.UserPreferences) error {
	return s.insert(ctx, collPreferences, p)
}

func (s *Mongo) ListPreferences(ctx context.Context) ([]models.UserPreferences, error) {
	return findAll[models.UserPreferences](ctx, s.db.Collection(collPreferences), bson.M{}, limited())
}

func (s *Mongo) CreateCBTSession(ctx context.Context, c *models.CBTSession) error {
	return s.insert(ctx, collCBT, c)
}

func (s *Mongo) ListCBTSessions(ctx context.Context, userID string) ([]models.CBTSession, error) {
	return findAll[models.CBTSession](ctx, s.db.Collection(collCBT), bson.M{"user_id": userID}, limited())
}

func (s *Mongo) CreateZenSession(ctx context.Context, z *models.ZenSession) error {
	return s.insert(ctx, collZen, z)
}

func (s *Mongo) ListZenSessions(ctx context.Context, userID string) ([]models.ZenSession, error) {
	return findAll[models.ZenSession](ctx, s.db.Collection(collZen), bson.M{"user_id": userID}, limited())
}

func (s *Mongo) ListArticles(ctx context.Context) ([]models.Article, error) {
	return findAll[models.Article](ctx, s.db.Collection(collArticles), bson.M{}, limited())
}

func (s *Mongo) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	var a models.Article
	err := s.db.Collection(collArticles).FindOne(ctx, bson.M{"id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	return &a, nil
}

const (
	// seedWriteTimeout bounds the bulk write, which runs detached from the
	// caller's cancellation so a dropped request cannot strand a claim.
	seedWriteTimeout = 10 * time.Second
	// seedClaimTTL is how old a claim may get before another reader may
	// take it over from a process that died mid-seed.
	seedClaimTTL     = 30 * time.Second
	seedPollInterval = 50 * time.Millisecond
)

// SeedArticles claims a marker document with a fixed _id before inserting, so
// only one of several concurrent first readers performs the bulk write. A
// reader that loses the claim waits until the winner's articles are visible,
// and takes over when the winner gives up or its claim goes stale.
func (s *Mongo) SeedArticles(ctx context.Context, articles []models.Article) (bool, error) {
	if len(articles) == 0 {
		return false, nil
	}
	arts := s.db.Collection(collArticles)
	markers := s.db.Collection(collSeedMarkers)

	for {
		n, err := arts.CountDocuments(ctx, bson.M{})
		if err != nil {
			return false, fmt.Errorf("count articles: %w", err)
		}
		if n > 0 {
			return false, nil
		}

		claimedAt := models.Now()
		_, err = markers.InsertOne(ctx, bson.M{"_id": collArticles, "claimed_at": claimedAt})
		if err == nil {
			return s.insertSeed(ctx, articles)
		}
		if !mongo.IsDuplicateKeyError(err) {
			return false, fmt.Errorf("claim seed: %w", err)
		}
		if err := s.releaseStaleClaim(ctx); err != nil {
			return false, err
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(seedPollInterval):
		}
	}
}

func (s *Mongo) insertSeed(ctx context.Context, articles []models.Article) (bool, error) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), seedWriteTimeout)
	defer cancel()

	docs := make([]interface{}, 0, len(articles))
	for i := range articles {
		docs = append(docs, articles[i])
	}
	if _, err := s.db.Collection(collArticles).InsertMany(wctx, docs); err != nil {
		if _, derr := s.db.Collection(collSeedMarkers).DeleteOne(wctx, bson.M{"_id": collArticles}); derr != nil {
			return false, fmt.Errorf("insert articles: %w (release claim: %v)", err, derr)
		}
		return false, fmt.Errorf("insert articles: %w", err)
	}
	return true, nil
}

// releaseStaleClaim drops the marker when it is older than seedClaimTTL and
// the articles collection is still empty.
func (s *Mongo) releaseStaleClaim(ctx context.Context) error {
	cutoff := models.Now().Add(-seedClaimTTL)
	_, err := s.db.Collection(collSeedMarkers).DeleteOne(ctx, bson.M{
		"_id":        collArticles,
		"claimed_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return fmt.Errorf("release stale seed claim: %w", err)
	}
	return nil
}

func (s *Mongo) AddFavorite(ctx context.Context, f models.FavoriteArticle) (*models.FavoriteArticle, error) {
	c := s.db.Collection(collFavorites)
	_, err := c.InsertOne(ctx, f)
	if err == nil {
		return &f, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("insert favorite: %w", err)
	}
	var existing models.FavoriteArticle
	if err := c.FindOne(ctx, bson.M{"user_id": f.UserID, "article_id": f.ArticleID}).Decode(&existing); err != nil {
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	return &existing, nil
}

func (s *Mongo) ListFavoriteArticleIDs(ctx context.Context, userID string) ([]string, error) {
	favs, err := findAll[models.FavoriteArticle](ctx, s.db.Collection(collFavorites), bson.M{"user_id": userID}, limited())
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.ArticleID)
	}
	return ids, nil
}

func (s *Mongo) RecordUsage(ctx context.Context, u *models.UsageAnalytics) error {
	return s.insert(ctx, collUsage, u)
}

func (s *Mongo) UsageSummary(ctx context.Context, userID string, since time.Time) (*models.UsageSummary, error) {
	c := s.db.Collection(collUsage)
	window := bson.M{"user_id": userID, "created_at": bson.M{"$gte": since}}

	total, err := c.CountDocuments(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("count usage: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: window}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$feature",
			"total_sessions": bson.M{"$sum": 1},
			"total_duration": bson.M{"$sum": bson.M{"$ifNull": bson.A{"$duration", 0}}},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cur, err := c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate usage: %w", err)
	}
	stats := []models.FeatureStat{}
	if err := cur.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("decode usage stats: %w", err)
	}

	recent, err := findAll[models.UsageAnalytics](ctx, c, window,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(RecentActivityLimit))
	if err != nil {
		return nil, err
	}

	return &models.UsageSummary{
		TotalSessions:  int(total),
		FeatureStats:   stats,
		RecentActivity: recent,
	}, nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// AnonymousUser is the user_id stamped on records created without an explicit user.
const AnonymousUser = "anonymous"

// DefaultAuthor is credited on articles that do not name one.
const DefaultAuthor = "Serenity Team"

// NewID returns a fresh random identifier for any record.
func NewID() string { return uuid.NewString() }

// Now returns the creation timestamp used for new records.
func Now() time.Time { return time.Now().UTC() }

type UserPreferences struct {
	ID            string            `db:"id" bson:"id" json:"id"`
	Identity      string            `db:"identity" bson:"identity" json:"identity"`             // Student, Creative, Professional, Other
	CurrentMood   string            `db:"current_mood" bson:"current_mood" json:"current_mood"` // Anxious, Unfocused, Sad, Stressed, Calm
	MoodFrequency string            `db:"mood_frequency" bson:"mood_frequency" json:"mood_frequency"`
	ThemeColors   map[string]string `db:"-" bson:"theme_colors" json:"theme_colors"`
	CreatedAt     time.Time         `db:"created_at" bson:"created_at" json:"created_at"`
}

type CBTSession struct {
	ID                  string              `db:"id" bson:"id" json:"id"`
	UserID              string              `db:"user_id" bson:"user_id" json:"user_id"`
	NegativeThought     string              `db:"negative_thought" bson:"negative_thought" json:"negative_thought"` // Encrypted in DB when a key is configured
	QuestionsAndAnswers []map[string]string `db:"-" bson:"questions_and_answers" json:"questions_and_answers"`      // Answers encrypted in DB when a key is configured
	CreatedAt           time.Time           `db:"created_at" bson:"created_at" json:"created_at"`
}

type ZenSession struct {
	ID          string    `db:"id" bson:"id" json:"id"`
	UserID      string    `db:"user_id" bson:"user_id" json:"user_id"`
	SessionType string    `db:"session_type" bson:"session_type" json:"session_type"` // breathing, meditation
	Duration    int       `db:"duration" bson:"duration" json:"duration"`             // minutes
	Completed   bool      `db:"completed" bson:"completed" json:"completed"`
	CreatedAt   time.Time `db:"created_at" bson:"created_at" json:"created_at"`
}

type Article struct {
	ID        string    `db:"id" bson:"id" json:"id"`
	Title     string    `db:"title" bson:"title" json:"title"`
	Content   string    `db:"content" bson:"content" json:"content"`
	Category  string    `db:"category" bson:"category" json:"category"`
	Author    string    `db:"author" bson:"author" json:"author"`
	CreatedAt time.Time `db:"created_at" bson:"created_at" json:"created_at"`
}

type FavoriteArticle struct {
	ID        string    `db:"id" bson:"id" json:"id"`
	UserID    string    `db:"user_id" bson:"user_id" json:"user_id"`
	ArticleID string    `db:"article_id" bson:"article_id" json:"article_id"`
	CreatedAt time.Time `db:"created_at" bson:"created_at" json:"created_at"`
}

type UsageAnalytics struct {
	ID        string         `db:"id" bson:"id" json:"id"`
	UserID    string         `db:"user_id" bson:"user_id" json:"user_id"`
	Feature   string         `db:"feature" bson:"feature" json:"feature"`              // zen, music, cbt, visual, articles
	Action    string         `db:"action" bson:"action" json:"action"`                 // view, complete, interact
	Duration  *int           `db:"duration" bson:"duration,omitempty" json:"duration"` // seconds
	Metadata  map[string]any `db:"-" bson:"metadata,omitempty" json:"metadata"`
	CreatedAt time.Time      `db:"created_at" bson:"created_at" json:"created_at"`
}

// FeatureStat aggregates usage events of one feature.
type FeatureStat struct {
	Feature       string `db:"feature" bson:"_id" json:"_id"`
	TotalSessions int    `db:"total_sessions" bson:"total_sessions" json:"total_sessions"`
	TotalDuration int    `db:"total_duration" bson:"total_duration" json:"total_duration"`
}

type UsageSummary struct {
	TotalSessions  int              `json:"total_sessions"`
	FeatureStats   []FeatureStat    `json:"feature_stats"`
	RecentActivity []UsageAnalytics `json:"recent_activity"`
}

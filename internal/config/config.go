package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	Port        string
	Environment string

	DBDriver    string
	DatabaseURL string
	MongoURL    string
	DBName      string

	CORSOrigins []string

	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string
	AITimeout  time.Duration

	EncryptionKey string
	LogFile       string
}

func (c Config) IsDevelopment() bool { return c.Environment == "development" }

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, applying defaults for unset keys.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := Config{
		Port:          get("PORT", "8080"),
		Environment:   get("APP_ENV", "production"),
		DatabaseURL:   get("DATABASE_URL", ""),
		MongoURL:      get("MONGO_URL", ""),
		DBName:        get("DB_NAME", "serenity"),
		LLMAPIKey:     get("EMERGENT_LLM_KEY", get("LLM_API_KEY", "")),
		LLMBaseURL:    get("LLM_BASE_URL", ""),
		LLMModel:      get("LLM_MODEL", ""),
		EncryptionKey: get("ENCRYPTION_KEY", ""),
		LogFile:       get("LOG_FILE", ""),
	}

	for _, origin := range strings.Split(get("CORS_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if raw := get("AI_TIMEOUT", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("invalid AI_TIMEOUT %q", raw)
		}
		cfg.AITimeout = d
	}

	cfg.DBDriver = get("DB_DRIVER", "")
	if cfg.DBDriver == "" {
		if cfg.MongoURL != "" {
			cfg.DBDriver = DriverMongo
		} else {
			cfg.DBDriver = DriverPostgres
		}
	}
	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required for the %s driver", cfg.DBDriver)
		}
	case DriverMongo:
		if cfg.MongoURL == "" {
			return Config{}, fmt.Errorf("MONGO_URL is required for the %s driver", cfg.DBDriver)
		}
	case DriverMemory:
	default:
		return Config{}, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

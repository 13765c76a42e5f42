package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"serenity/internal/config"
	"serenity/internal/db"
	"serenity/internal/handlers"
	"serenity/internal/llm"
	"serenity/internal/logging"
	"serenity/internal/services"
	"serenity/internal/store"
)

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		return store.NewMongo(ctx, cfg.MongoURL, cfg.DBName)
	case config.DriverMemory:
		return store.NewMemory(), nil
	default:
		dbConn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(ctx, dbConn); err != nil {
			dbConn.Close()
			return nil, err
		}
		return store.NewPostgres(dbConn), nil
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	logger := logging.New(cfg.IsDevelopment(), cfg.LogFile)
	defer logger.Sync()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	st, err := openStore(startCtx, cfg)
	cancelStart()
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}

	encSvc, err := services.NewEncryptionService(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal("failed to init encryption", zap.Error(err))
	}
	if !encSvc.Enabled() {
		logger.Warn("ENCRYPTION_KEY not set; CBT journal text is stored in plaintext")
	}

	var chat services.ChatClient
	if cfg.LLMAPIKey != "" {
		client := llm.NewClient(llm.Config{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
			Timeout: cfg.AITimeout,
		})
		chat = client
		logger.Info("AI question generation enabled", zap.String("model", client.Model()))
	} else {
		logger.Warn("EMERGENT_LLM_KEY not set; dynamic CBT questions are disabled")
	}

	router := handlers.NewRouter(handlers.Deps{
		Store:       st,
		Encryption:  encSvc,
		Questions:   services.NewQuestionGenerator(chat, logger),
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("driver", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown initiated")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	if err := st.Close(ctx); err != nil {
		logger.Error("failed to close store", zap.Error(err))
	}
	logger.Info("server stopped")
}

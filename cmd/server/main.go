package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"podcast-highlighter/internal/config"
	"podcast-highlighter/internal/db"
	"podcast-highlighter/internal/episodes"
	"podcast-highlighter/internal/handlers"
	"podcast-highlighter/internal/highlights"
	"podcast-highlighter/internal/logging"
	"podcast-highlighter/internal/prompts"
	"podcast-highlighter/internal/store/backends"
	"podcast-highlighter/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, dotenv, err := config.Load()
	if err != nil {
		bootLogger := logging.New("", "info")
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := logging.New(cfg.Environment, cfg.LogLevel)
	if !dotenv {
		logger.Debug().Msg("no .env file loaded")
	}

	ctx, stop := signal.NotifyContext(logger.WithContext(context.Background()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw, closeStore, err := backends.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("could not open store")
	}
	defer closeStore()

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer client.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newHandler(db.New(gw, cfg.StoreBatchSize), client, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	logger.Info().Str("port", cfg.Port).Str("commit", CommitSHA).Str("store", cfg.StoreDriver).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server failed")
	}
	logger.Info().Msg("server stopped")
}

func newHandler(store *db.Store, enqueuer tasks.TaskEnqueuer, cfg config.Config, logger zerolog.Logger) http.Handler {
	hl := highlights.NewService(store)
	h := handlers.New(
		episodes.NewService(store, hl, enqueuer),
		hl,
		prompts.NewService(store),
		cfg.BaseURL,
		CommitSHA,
	)
	return h.Handler(logger, cfg.CORSOrigins)
}

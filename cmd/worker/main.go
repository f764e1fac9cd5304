package main

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"podcast-highlighter/internal/config"
	"podcast-highlighter/internal/db"
	"podcast-highlighter/internal/logging"
	"podcast-highlighter/internal/store/backends"
	"podcast-highlighter/internal/worker"
	"podcast-highlighter/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	cfg, _, err := config.Load()
	if err != nil {
		bootLogger := logging.New("", "info")
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := logging.New(cfg.Environment, cfg.LogLevel).With().Str("component", "worker").Logger()
	ctx := logging.Context(logger)

	gw, closeStore, err := backends.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("could not open store")
	}
	defer closeStore()

	redis := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	client := asynq.NewClient(redis)
	defer client.Close()

	srv := asynq.NewServer(redis, asynq.Config{
		// yt-dlp is slow and rate limited upstream; keep it to a couple at a time.
		Concurrency: 2,
		Queues: map[string]int{
			"high":    2,
			"default": 1,
		},
		BaseContext:    func() context.Context { return ctx },
		Logger:         logging.AsynqLogger{Logger: logger},
		RetryDelayFunc: retryDelay(logger),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			logger.Error().Err(err).Str("type", task.Type()).Int("retried", retried).Msg("task failed")
		}),
	})

	mux := asynq.NewServeMux()
	taskHandler := worker.NewTaskHandler(db.New(gw, cfg.StoreBatchSize), client, cfg.YtDlpPath, cfg.EpisodeStaleAfter)

	mux.HandleFunc(tasks.TypeProcessEpisode, taskHandler.HandleProcessEpisodeTask)
	mux.HandleFunc(tasks.TypeSweepPendingEpisodes, taskHandler.HandleSweepPendingEpisodesTask)

	logger.Info().Str("commit", CommitSHA).Str("store", cfg.StoreDriver).Msg("worker starting")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("could not run worker")
	}
}

// retryDelay doubles from five minutes per attempt, capped at a day.
func retryDelay(logger zerolog.Logger) asynq.RetryDelayFunc {
	return func(n int, err error, task *asynq.Task) time.Duration {
		delay := 5 * time.Minute
		maxDelay := 24 * time.Hour

		for i := 0; i < n; i++ {
			delay *= 2
			if delay > maxDelay {
				delay = maxDelay
				break
			}
		}

		logger.Warn().Err(err).Str("type", task.Type()).Int("attempt", n+1).Dur("delay", delay).Msg("scheduling retry")
		return delay
	}
}

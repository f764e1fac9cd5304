package main

import (
	"github.com/hibiken/asynq"

	"podcast-highlighter/internal/config"
	"podcast-highlighter/internal/logging"
	"podcast-highlighter/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

const sweepSchedule = "@every 1h"

func main() {
	cfg, _, err := config.Load()
	if err != nil {
		bootLogger := logging.New("", "info")
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := logging.New(cfg.Environment, cfg.LogLevel).With().Str("component", "scheduler").Logger()

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		&asynq.SchedulerOpts{Logger: logging.AsynqLogger{Logger: logger}},
	)

	task, err := tasks.NewSweepPendingEpisodesTask()
	if err != nil {
		logger.Fatal().Err(err).Msg("could not create task")
	}

	entryID, err := scheduler.Register(sweepSchedule, task)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not register task")
	}

	logger.Info().Str("commit", CommitSHA).Str("entry", entryID).Str("schedule", sweepSchedule).Msg("scheduler starting")
	if err := scheduler.Run(); err != nil {
		logger.Fatal().Err(err).Msg("could not run scheduler")
	}
}

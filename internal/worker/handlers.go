// Package worker holds the asynq task handlers run by cmd/worker.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"podcast-highlighter/internal/apperr"
	"podcast-highlighter/internal/db"
	"podcast-highlighter/internal/episodes"
	"podcast-highlighter/internal/models"
	"podcast-highlighter/internal/store"
	"podcast-highlighter/pkg/tasks"
)

var execCommandContext = exec.CommandContext

// VideoMetadata is the subset of `yt-dlp --dump-json` the worker stores.
type VideoMetadata struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	UploadDate  string  `json:"upload_date"`
}

func (m VideoMetadata) publishedAt() (time.Time, bool) {
	if m.UploadDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102", m.UploadDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

type TaskHandler struct {
	store      *db.Store
	enqueuer   tasks.TaskEnqueuer
	ytdlpPath  string
	staleAfter time.Duration
	now        func() time.Time
}

func NewTaskHandler(store *db.Store, enqueuer tasks.TaskEnqueuer, ytdlpPath string, staleAfter time.Duration) *TaskHandler {
	if ytdlpPath == "" {
		ytdlpPath = "yt-dlp"
	}
	return &TaskHandler{
		store:      store,
		enqueuer:   enqueuer,
		ytdlpPath:  ytdlpPath,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// HandleProcessEpisodeTask moves an episode through processing and stores the
// video metadata. Completed episodes are left alone so redelivery is harmless.
func (h *TaskHandler) HandleProcessEpisodeTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.ProcessEpisodeTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.EpisodeID == "" {
		return fmt.Errorf("task payload has no episode id: %w", asynq.SkipRetry)
	}
	logger := zerolog.Ctx(ctx).With().Str("episode_id", p.EpisodeID).Logger()

	ep, err := h.store.GetEpisode(ctx, p.EpisodeID)
	if errors.Is(err, apperr.ErrNotFound) {
		logger.Warn().Msg("episode no longer exists, dropping task")
		return fmt.Errorf("episode %s: %w", p.EpisodeID, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}
	if ep.Status == models.EpisodeStatusCompleted {
		logger.Info().Msg("episode already processed")
		return nil
	}

	if err := h.store.UpdateEpisodeStatus(ctx, ep.ID, models.EpisodeStatusProcessing); err != nil {
		return fmt.Errorf("failed to update episode status to processing: %w", err)
	}

	meta, err := h.fetchMetadata(ctx, ep.YoutubeURL)
	if err != nil {
		logger.Error().Err(err).Msg("failed to resolve video metadata")
		if uerr := h.store.UpdateEpisodeStatus(ctx, ep.ID, models.EpisodeStatusFailed); uerr != nil {
			logger.Error().Err(uerr).Msg("failed to mark episode as failed")
		}
		return err
	}

	patch := store.Row{
		"status":           models.EpisodeStatusCompleted,
		"title":            meta.Title,
		"duration_seconds": int(meta.Duration),
	}
	if meta.Description != "" {
		patch["description"] = meta.Description
	}
	if published, ok := meta.publishedAt(); ok {
		patch["published_at"] = published
	}
	if _, err := h.store.UpdateEpisode(ctx, ep.ID, patch); err != nil {
		return fmt.Errorf("failed to store episode metadata: %w", err)
	}

	if p.AutoDetectHighlights {
		logger.Info().Strs("prompt_ids", p.PromptIDs).Msg("highlight detection requested, left to the detection service")
	}
	logger.Info().Str("title", meta.Title).Int("duration_seconds", int(meta.Duration)).Msg("episode processed")
	return nil
}

func (h *TaskHandler) fetchMetadata(ctx context.Context, url string) (VideoMetadata, error) {
	cmd := execCommandContext(ctx, h.ytdlpPath, "--skip-download", "--dump-json", "--no-warnings", url)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return VideoMetadata{}, fmt.Errorf("failed to execute yt-dlp: %w, output: %s", err, output)
	}

	// yt-dlp may print notices before the JSON document.
	start := bytes.IndexByte(output, '{')
	if start == -1 {
		return VideoMetadata{}, fmt.Errorf("no JSON found in yt-dlp output: %s", output)
	}
	var meta VideoMetadata
	if err := json.Unmarshal(output[start:], &meta); err != nil {
		return VideoMetadata{}, fmt.Errorf("failed to unmarshal yt-dlp output: %w", err)
	}
	if meta.Title == "" {
		return VideoMetadata{}, errors.New("yt-dlp returned no title")
	}
	return meta, nil
}

// HandleSweepPendingEpisodesTask re-enqueues episodes that stayed pending
// longer than staleAfter.
func (h *TaskHandler) HandleSweepPendingEpisodesTask(ctx context.Context, t *asynq.Task) error {
	logger := zerolog.Ctx(ctx)
	cutoff := h.now().Add(-h.staleAfter)

	pending, err := h.store.ListEpisodesCreatedBefore(ctx, models.EpisodeStatusPending, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list pending episodes: %w", err)
	}

	queued := 0
	for _, ep := range pending {
		if episodes.Enqueue(ctx, h.enqueuer, ep.ID, false, nil) {
			queued++
		}
	}
	logger.Info().Int("stale", len(pending)).Int("queued", queued).Msg("pending episode sweep finished")
	return nil
}

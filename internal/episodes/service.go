// Package episodes implements episode ingest, metadata editing and the
// explicit delete cascade.
package episodes

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"podcast-highlighter/internal/apperr"
	"podcast-highlighter/internal/db"
	"podcast-highlighter/internal/models"
	"podcast-highlighter/internal/speakers"
	"podcast-highlighter/internal/store"
	"podcast-highlighter/internal/validate"
	"podcast-highlighter/pkg/tasks"
)

// PlaceholderTitle is stored until the worker resolves the real title.
const PlaceholderTitle = "Processing..."

const (
	DefaultLimit = 50
)

// HighlightRemover deletes the highlights of an episode together with their dependents.
type HighlightRemover interface {
	DeleteForEpisode(ctx context.Context, episodeID string) (int, error)
}

type Service struct {
	store      *db.Store
	highlights HighlightRemover
	enqueuer   tasks.TaskEnqueuer
	resolver   *speakers.Resolver
	validate   *validate.Validator
}

func NewService(store *db.Store, highlights HighlightRemover, enqueuer tasks.TaskEnqueuer) *Service {
	return &Service{
		store:      store,
		highlights: highlights,
		enqueuer:   enqueuer,
		resolver:   speakers.NewResolver(store),
		validate:   validate.New(),
	}
}

// Ingest registers a new episode and schedules its processing. An enqueue
// failure does not fail the request; the pending sweep retries it.
func (s *Service) Ingest(ctx context.Context, req models.EpisodeIngest) (models.Episode, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.Episode{}, err
	}
	_, err := s.store.GetEpisodeByYoutubeURL(ctx, req.YoutubeURL)
	if err == nil {
		return models.Episode{}, apperr.AlreadyExists("episode", req.YoutubeURL)
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return models.Episode{}, err
	}

	ep, err := s.store.CreateEpisode(ctx, models.Episode{
		YoutubeURL: req.YoutubeURL,
		Title:      PlaceholderTitle,
		Status:     models.EpisodeStatusPending,
	})
	if err != nil {
		return models.Episode{}, err
	}
	zerolog.Ctx(ctx).Info().Str("episode_id", ep.ID).Str("youtube_url", ep.YoutubeURL).Msg("episode ingested")

	Enqueue(ctx, s.enqueuer, ep.ID, req.AutoDetectHighlights, req.PromptIDs)
	return ep, nil
}

// Enqueue schedules processing of an episode and reports whether a task was queued.
func Enqueue(ctx context.Context, enqueuer tasks.TaskEnqueuer, episodeID string, autoDetect bool, promptIDs []string) bool {
	logger := zerolog.Ctx(ctx).With().Str("episode_id", episodeID).Logger()
	task, err := tasks.NewProcessEpisodeTask(episodeID, autoDetect, promptIDs)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create process episode task")
		return false
	}
	if _, err := enqueuer.Enqueue(task, tasks.ProcessEpisodeOptions(episodeID)...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			logger.Debug().Msg("episode already queued")
			return false
		}
		logger.Warn().Err(err).Msg("failed to enqueue process episode task")
		return false
	}
	return true
}

func (s *Service) List(ctx context.Context, f models.EpisodeFilters) ([]models.Episode, error) {
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
	if err := s.validate.Struct(f); err != nil {
		return nil, err
	}
	return s.store.ListEpisodes(ctx, f)
}

func (s *Service) Get(ctx context.Context, id string) (models.Episode, error) {
	return s.store.GetEpisode(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, patch models.EpisodePatch) (models.Episode, error) {
	if err := s.validate.Struct(patch); err != nil {
		return models.Episode{}, err
	}
	row := store.Row{}
	if patch.Title != nil {
		row["title"] = *patch.Title
	}
	if patch.Description != nil {
		row["description"] = *patch.Description
	}
	if patch.RawVideoLink != nil {
		row["raw_video_link"] = *patch.RawVideoLink
	}
	if patch.RecordedAt != nil {
		row["recorded_at"] = patch.RecordedAt.UTC()
	}
	if patch.PublishedAt != nil {
		row["published_at"] = patch.PublishedAt.UTC()
	}
	if patch.Status != nil {
		row["status"] = *patch.Status
	}
	if len(row) == 0 {
		return s.store.GetEpisode(ctx, id)
	}
	return s.store.UpdateEpisode(ctx, id, row)
}

// Segments returns the episode's segments in time order with their speaker names.
func (s *Service) Segments(ctx context.Context, id string) ([]models.SegmentWithSpeakers, error) {
	if _, err := s.store.GetEpisode(ctx, id); err != nil {
		return nil, err
	}
	segs, err := s.store.SegmentsByEpisode(ctx, id)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(segs))
	for i, seg := range segs {
		ids[i] = seg.ID
	}
	idx, err := s.resolver.Index(ctx, ids, []string{id})
	if err != nil {
		return nil, err
	}
	out := make([]models.SegmentWithSpeakers, len(segs))
	for i, seg := range segs {
		out[i] = models.SegmentWithSpeakers{Segment: seg, Speakers: idx.SegmentNames(seg.ID)}
	}
	return out, nil
}

func (s *Service) Speakers(ctx context.Context, id string) ([]models.Speaker, error) {
	if _, err := s.store.GetEpisode(ctx, id); err != nil {
		return nil, err
	}
	return s.store.SpeakersByEpisode(ctx, id)
}

func (s *Service) RenameSpeaker(ctx context.Context, speakerID string, req models.SpeakerRename) (models.Speaker, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.Speaker{}, err
	}
	return s.store.RenameSpeaker(ctx, speakerID, req.MappedName)
}

// Delete removes the episode after its highlights, segment speaker links,
// segments and speakers.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.store.GetEpisode(ctx, id); err != nil {
		return err
	}
	removed, err := s.highlights.DeleteForEpisode(ctx, id)
	if err != nil {
		return err
	}

	segs, err := s.store.SegmentsByEpisode(ctx, id)
	if err != nil {
		return err
	}
	if len(segs) > 0 {
		ids := make([]string, len(segs))
		for i, seg := range segs {
			ids[i] = seg.ID
		}
		if err := s.store.DeleteSegmentSpeakersBySegmentIDs(ctx, ids); err != nil {
			return err
		}
		if err := s.store.DeleteSegmentsByEpisode(ctx, id); err != nil {
			return err
		}
	}
	if err := s.store.DeleteSpeakersByEpisode(ctx, id); err != nil {
		return err
	}
	deleted, err := s.store.DeleteEpisode(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("episode", id)
	}
	zerolog.Ctx(ctx).Info().Str("episode_id", id).Int("highlights", removed).Int("segments", len(segs)).Msg("episode deleted")
	return nil
}

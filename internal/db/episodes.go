package db

import (
	"context"
	"fmt"
	"time"

	"podcast-highlighter/internal/apperr"
	"podcast-highlighter/internal/models"
	"podcast-highlighter/internal/store"
)

func (s *Store) CreateEpisode(ctx context.Context, e models.Episode) (models.Episode, error) {
	now := s.now()
	if e.ID == "" {
		e.ID = s.newID()
	}
	if e.Status == "" {
		e.Status = models.EpisodeStatusPending
	}
	e.CreatedAt, e.UpdatedAt = now, now

	row := store.Row{
		"id":               e.ID,
		"youtube_url":      e.YoutubeURL,
		"title":            e.Title,
		"duration_seconds": e.DurationSeconds,
		"description":      e.Description,
		"raw_video_link":   e.RawVideoLink,
		"recorded_at":      e.RecordedAt,
		"published_at":     e.PublishedAt,
		"full_transcript":  e.FullTranscript,
		"status":           e.Status,
		"created_at":       e.CreatedAt,
		"updated_at":       e.UpdatedAt,
	}
	var out []models.Episode
	if err := s.gw.Insert(ctx, store.TableEpisodes, []store.Row{row}, &out); err != nil {
		return models.Episode{}, fmt.Errorf("failed to create episode: %w", err)
	}
	if created, ok := first(out); ok {
		return created, nil
	}
	return e, nil
}

func (s *Store) GetEpisode(ctx context.Context, id string) (models.Episode, error) {
	var out []models.Episode
	if err := s.gw.Select(ctx, store.TableEpisodes, store.From().Where(store.Eq("id", id)).Range(0, 1), &out); err != nil {
		return models.Episode{}, fmt.Errorf("failed to get episode %s: %w", id, err)
	}
	e, ok := first(out)
	if !ok {
		return models.Episode{}, apperr.NotFound("episode", id)
	}
	return e, nil
}

func (s *Store) GetEpisodeByYoutubeURL(ctx context.Context, url string) (models.Episode, error) {
	var out []models.Episode
	if err := s.gw.Select(ctx, store.TableEpisodes, store.From().Where(store.Eq("youtube_url", url)).Range(0, 1), &out); err != nil {
		return models.Episode{}, fmt.Errorf("failed to get episode by url: %w", err)
	}
	e, ok := first(out)
	if !ok {
		return models.Episode{}, apperr.NotFound("episode", url)
	}
	return e, nil
}

func (s *Store) ListEpisodes(ctx context.Context, f models.EpisodeFilters) ([]models.Episode, error) {
	q := store.From().OrderBy("created_at", true).Range(f.Offset, f.Limit)
	if f.Status != "" {
		q = q.Where(store.Eq("status", f.Status))
	}
	var out []models.Episode
	if err := s.gw.Select(ctx, store.TableEpisodes, q, &out); err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	return out, nil
}

// ListEpisodesCreatedBefore returns episodes in status created before the cutoff, oldest first.
func (s *Store) ListEpisodesCreatedBefore(ctx context.Context, status string, before time.Time) ([]models.Episode, error) {
	q := store.From().
		Where(store.Eq("status", status), store.Lt("created_at", before.UTC())).
		OrderBy("created_at", false)
	var out []models.Episode
	if err := s.gw.Select(ctx, store.TableEpisodes, q, &out); err != nil {
		return nil, fmt.Errorf("failed to list %s episodes: %w", status, err)
	}
	return out, nil
}

func (s *Store) UpdateEpisode(ctx context.Context, id string, patch store.Row) (models.Episode, error) {
	patch["updated_at"] = s.now()
	var out []models.Episode
	if err := s.gw.Update(ctx, store.TableEpisodes, patch, []store.Filter{store.Eq("id", id)}, &out); err != nil {
		return models.Episode{}, fmt.Errorf("failed to update episode %s: %w", id, err)
	}
	e, ok := first(out)
	if !ok {
		return models.Episode{}, apperr.NotFound("episode", id)
	}
	return e, nil
}

func (s *Store) UpdateEpisodeStatus(ctx context.Context, id, status string) error {
	_, err := s.UpdateEpisode(ctx, id, store.Row{"status": status})
	return err
}

func (s *Store) DeleteEpisode(ctx context.Context, id string) (bool, error) {
	var out []models.Episode
	if err := s.gw.Delete(ctx, store.TableEpisodes, []store.Filter{store.Eq("id", id)}, &out); err != nil {
		return false, fmt.Errorf("failed to delete episode %s: %w", id, err)
	}
	return len(out) > 0, nil
}

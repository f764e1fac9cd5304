package db

import (
	"context"
	"fmt"

	"podcast-highlighter/internal/apperr"
	"podcast-highlighter/internal/models"
	"podcast-highlighter/internal/store"
)

func (s *Store) CreateSpeakers(ctx context.Context, speakers []models.Speaker) ([]models.Speaker, error) {
	if len(speakers) == 0 {
		return nil, nil
	}
	now := s.now()
	rows := make([]store.Row, len(speakers))
	for i := range speakers {
		if speakers[i].ID == "" {
			speakers[i].ID = s.newID()
		}
		speakers[i].CreatedAt = now
		sp := speakers[i]
		rows[i] = store.Row{
			"id":            sp.ID,
			"episode_id":    sp.EpisodeID,
			"speaker_label": sp.SpeakerLabel,
			"mapped_name":   sp.MappedName,
			"created_at":    sp.CreatedAt,
		}
	}
	var out []models.Speaker
	if err := s.gw.Insert(ctx, store.TableSpeakers, rows, &out); err != nil {
		return nil, fmt.Errorf("failed to create speakers: %w", err)
	}
	return out, nil
}

func (s *Store) SpeakersByEpisode(ctx context.Context, episodeID string) ([]models.Speaker, error) {
	var out []models.Speaker
	q := store.From().Where(store.Eq("episode_id", episodeID)).OrderBy("speaker_label", false)
	if err := s.gw.Select(ctx, store.TableSpeakers, q, &out); err != nil {
		return nil, fmt.Errorf("failed to get speakers for episode %s: %w", episodeID, err)
	}
	return out, nil
}

func (s *Store) SpeakersByEpisodeIDs(ctx context.Context, episodeIDs []string) ([]models.Speaker, error) {
	out, err := selectIn[models.Speaker](ctx, s, store.TableSpeakers, "episode_id", episodeIDs, store.From())
	if err != nil {
		return nil, fmt.Errorf("failed to get speakers by episode: %w", err)
	}
	return out, nil
}

func (s *Store) RenameSpeaker(ctx context.Context, id, name string) (models.Speaker, error) {
	var out []models.Speaker
	if err := s.gw.Update(ctx, store.TableSpeakers, store.Row{"mapped_name": name}, []store.Filter{store.Eq("id", id)}, &out); err != nil {
		return models.Speaker{}, fmt.Errorf("failed to rename speaker %s: %w", id, err)
	}
	sp, ok := first(out)
	if !ok {
		return models.Speaker{}, apperr.NotFound("speaker", id)
	}
	return sp, nil
}

func (s *Store) DeleteSpeakersByEpisode(ctx context.Context, episodeID string) error {
	if err := s.gw.Delete(ctx, store.TableSpeakers, []store.Filter{store.Eq("episode_id", episodeID)}, nil); err != nil {
		return fmt.Errorf("failed to delete speakers for episode %s: %w", episodeID, err)
	}
	return nil
}

func (s *Store) LinkSegmentSpeakers(ctx context.Context, links []models.SegmentSpeaker) error {
	if len(links) == 0 {
		return nil
	}
	rows := make([]store.Row, len(links))
	for i, l := range links {
		rows[i] = store.Row{"segment_id": l.SegmentID, "speaker_id": l.SpeakerID}
	}
	if err := s.gw.Insert(ctx, store.TableSegmentSpeakers, rows, nil); err != nil {
		return fmt.Errorf("failed to link segment speakers: %w", err)
	}
	return nil
}

func (s *Store) SegmentSpeakersBySegmentIDs(ctx context.Context, segmentIDs []string) ([]models.SegmentSpeaker, error) {
	out, err := selectIn[models.SegmentSpeaker](ctx, s, store.TableSegmentSpeakers, "segment_id", segmentIDs, store.From())
	if err != nil {
		return nil, fmt.Errorf("failed to get segment speakers: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteSegmentSpeakersBySegmentIDs(ctx context.Context, segmentIDs []string) error {
	if _, err := deleteIn[models.SegmentSpeaker](ctx, s, store.TableSegmentSpeakers, "segment_id", segmentIDs); err != nil {
		return fmt.Errorf("failed to delete segment speakers: %w", err)
	}
	return nil
}

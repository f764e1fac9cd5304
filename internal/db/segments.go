package db

import (
	"context"
	"fmt"

	"podcast-highlighter/internal/models"
	"podcast-highlighter/internal/store"
)

func (s *Store) CreateSegments(ctx context.Context, segments []models.Segment) ([]models.Segment, error) {
	if len(segments) == 0 {
		return nil, nil
	}
	now := s.now()
	rows := make([]store.Row, len(segments))
	for i := range segments {
		if segments[i].ID == "" {
			segments[i].ID = s.newID()
		}
		segments[i].CreatedAt = now
		seg := segments[i]
		rows[i] = store.Row{
			"id":         seg.ID,
			"episode_id": seg.EpisodeID,
			"start_s":    seg.StartS,
			"end_s":      seg.EndS,
			"text":       seg.Text,
			"confidence": seg.Confidence,
			"created_at": seg.CreatedAt,
		}
	}
	var out []models.Segment
	if err := s.gw.Insert(ctx, store.TableSegments, rows, &out); err != nil {
		return nil, fmt.Errorf("failed to create segments: %w", err)
	}
	return out, nil
}

func (s *Store) SegmentsByEpisode(ctx context.Context, episodeID string) ([]models.Segment, error) {
	var out []models.Segment
	q := store.From().Where(store.Eq("episode_id", episodeID)).OrderBy("start_s", false)
	if err := s.gw.Select(ctx, store.TableSegments, q, &out); err != nil {
		return nil, fmt.Errorf("failed to get segments for episode %s: %w", episodeID, err)
	}
	return out, nil
}

// SegmentsInRange returns the segments of an episode touching [from, to], ordered by start.
// The bounds are inclusive; callers narrow the result with a strict overlap test.
func (s *Store) SegmentsInRange(ctx context.Context, episodeID string, from, to float64) ([]models.Segment, error) {
	var out []models.Segment
	q := store.From().
		Where(store.Eq("episode_id", episodeID), store.Gte("end_s", from), store.Lte("start_s", to)).
		OrderBy("start_s", false)
	if err := s.gw.Select(ctx, store.TableSegments, q, &out); err != nil {
		return nil, fmt.Errorf("failed to get segments in range for episode %s: %w", episodeID, err)
	}
	return out, nil
}

func (s *Store) SegmentsByIDs(ctx context.Context, ids []string) ([]models.Segment, error) {
	out, err := selectIn[models.Segment](ctx, s, store.TableSegments, "id", ids, store.From())
	if err != nil {
		return nil, fmt.Errorf("failed to get segments by id: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteSegmentsByEpisode(ctx context.Context, episodeID string) error {
	if err := s.gw.Delete(ctx, store.TableSegments, []store.Filter{store.Eq("episode_id", episodeID)}, nil); err != nil {
		return fmt.Errorf("failed to delete segments for episode %s: %w", episodeID, err)
	}
	return nil
}

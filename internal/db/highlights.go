package db

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"podcast-highlighter/internal/apperr"
	"podcast-highlighter/internal/models"
	"podcast-highlighter/internal/store"
)

func highlightRow(h models.Highlight) store.Row {
	return store.Row{
		"id":                h.ID,
		"episode_id":        h.EpisodeID,
		"prompt_id":         h.PromptID,
		"start_s":           h.StartS,
		"end_s":             h.EndS,
		"transcript":        h.Transcript,
		"status":            h.Status,
		"raw_video_link":    h.RawVideoLink,
		"edited_video_link": h.EditedVideoLink,
		"created_at":        h.CreatedAt,
		"updated_at":        h.UpdatedAt,
	}
}

func (s *Store) CreateHighlight(ctx context.Context, h models.Highlight) (models.Highlight, error) {
	now := s.now()
	if h.ID == "" {
		h.ID = s.newID()
	}
	if h.Status == "" {
		h.Status = models.HighlightStatusPending
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	h.UpdatedAt = now

	var out []models.Highlight
	if err := s.gw.Insert(ctx, store.TableHighlights, []store.Row{highlightRow(h)}, &out); err != nil {
		return models.Highlight{}, fmt.Errorf("failed to create highlight: %w", err)
	}
	if created, ok := first(out); ok {
		return created, nil
	}
	return h, nil
}

func (s *Store) GetHighlight(ctx context.Context, id string) (models.Highlight, error) {
	var out []models.Highlight
	if err := s.gw.Select(ctx, store.TableHighlights, store.From().Where(store.Eq("id", id)).Range(0, 1), &out); err != nil {
		return models.Highlight{}, fmt.Errorf("failed to get highlight %s: %w", id, err)
	}
	h, ok := first(out)
	if !ok {
		return models.Highlight{}, apperr.NotFound("highlight", id)
	}
	return h, nil
}

// ListHighlights applies f and returns one page ordered by creation time, newest first.
func (s *Store) ListHighlights(ctx context.Context, f models.HighlightFilters) ([]models.Highlight, error) {
	q := store.From().OrderBy("created_at", true)
	if f.EpisodeID != "" {
		q = q.Where(store.Eq("episode_id", f.EpisodeID))
	}
	if f.Status != "" {
		q = q.Where(store.Eq("status", f.Status))
	}
	if f.DateFrom != nil {
		q = q.Where(store.Gte("created_at", f.DateFrom.UTC()))
	}
	if f.DateTo != nil {
		q = q.Where(store.Lte("created_at", f.DateTo.UTC()))
	}
	if f.ProfileID != "" {
		return s.listHighlightsForProfile(ctx, f, q)
	}

	var out []models.Highlight
	if err := s.gw.Select(ctx, store.TableHighlights, q.Range(f.Offset, f.Limit), &out); err != nil {
		return nil, fmt.Errorf("failed to list highlights: %w", err)
	}
	return out, nil
}

// listHighlightsForProfile looks the tagged highlights up in batches, so the
// ordering and the offset/limit window are applied to the merged result.
func (s *Store) listHighlightsForProfile(ctx context.Context, f models.HighlightFilters, q store.Query) ([]models.Highlight, error) {
	links, err := s.HighlightProfilesByProfileID(ctx, f.ProfileID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(links))
	for i, l := range links {
		ids[i] = l.HighlightID
	}

	out, err := selectIn[models.Highlight](ctx, s, store.TableHighlights, "id", ids, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list highlights for profile %s: %w", f.ProfileID, err)
	}
	slices.SortStableFunc(out, func(a, b models.Highlight) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	if f.Offset >= len(out) {
		return []models.Highlight{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) HighlightsByEpisode(ctx context.Context, episodeID string) ([]models.Highlight, error) {
	var out []models.Highlight
	q := store.From().Where(store.Eq("episode_id", episodeID)).OrderBy("start_s", false)
	if err := s.gw.Select(ctx, store.TableHighlights, q, &out); err != nil {
		return nil, fmt.Errorf("failed to get highlights for episode %s: %w", episodeID, err)
	}
	return out, nil
}

func (s *Store) UpdateHighlight(ctx context.Context, id string, patch store.Row) (models.Highlight, error) {
	patch["updated_at"] = s.now()
	var out []models.Highlight
	if err := s.gw.Update(ctx, store.TableHighlights, patch, []store.Filter{store.Eq("id", id)}, &out); err != nil {
		return models.Highlight{}, fmt.Errorf("failed to update highlight %s: %w", id, err)
	}
	h, ok := first(out)
	if !ok {
		return models.Highlight{}, apperr.NotFound("highlight", id)
	}
	return h, nil
}

// DeleteHighlights removes the highlight rows only and reports how many were deleted.
func (s *Store) DeleteHighlights(ctx context.Context, ids []string) (int, error) {
	out, err := deleteIn[models.Highlight](ctx, s, store.TableHighlights, "id", ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete highlights: %w", err)
	}
	return len(out), nil
}

// HighlightSegmentsByHighlightIDs returns composition links grouped by highlight in sequence order.
func (s *Store) HighlightSegmentsByHighlightIDs(ctx context.Context, highlightIDs []string) ([]models.HighlightSegment, error) {
	out, err := selectIn[models.HighlightSegment](ctx, s, store.TableHighlightSegments, "highlight_id", highlightIDs,
		store.From().OrderBy("sequence_order", false))
	if err != nil {
		return nil, fmt.Errorf("failed to get highlight segments: %w", err)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].HighlightID != out[j].HighlightID {
			return out[i].HighlightID < out[j].HighlightID
		}
		return out[i].SequenceOrder < out[j].SequenceOrder
	})
	return out, nil
}

func (s *Store) AddHighlightSegments(ctx context.Context, links []models.HighlightSegment) error {
	if len(links) == 0 {
		return nil
	}
	rows := make([]store.Row, len(links))
	for i, l := range links {
		rows[i] = store.Row{"highlight_id": l.HighlightID, "segment_id": l.SegmentID, "sequence_order": l.SequenceOrder}
	}
	if err := s.gw.Insert(ctx, store.TableHighlightSegments, rows, nil); err != nil {
		return fmt.Errorf("failed to add highlight segments: %w", err)
	}
	return nil
}

func (s *Store) DeleteHighlightSegments(ctx context.Context, highlightIDs []string) error {
	if _, err := deleteIn[models.HighlightSegment](ctx, s, store.TableHighlightSegments, "highlight_id", highlightIDs); err != nil {
		return fmt.Errorf("failed to delete highlight segments: %w", err)
	}
	return nil
}

func (s *Store) DeleteHighlightSegment(ctx context.Context, highlightID, segmentID string) (bool, error) {
	var out []models.HighlightSegment
	filters := []store.Filter{store.Eq("highlight_id", highlightID), store.Eq("segment_id", segmentID)}
	if err := s.gw.Delete(ctx, store.TableHighlightSegments, filters, &out); err != nil {
		return false, fmt.Errorf("failed to remove segment %s from highlight %s: %w", segmentID, highlightID, err)
	}
	return len(out) > 0, nil
}

package highlights

import (
	"context"
	"fmt"
	"strings"

	"podcast-highlighter/internal/apperr"
	"podcast-highlighter/internal/models"
	"podcast-highlighter/internal/store"
)

// Segments returns the explicit composition of a highlight in sequence order.
func (s *Service) Segments(ctx context.Context, id string) ([]models.HighlightSegmentDetail, error) {
	h, err := s.store.GetHighlight(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.agg.ExplicitSegments(ctx, h)
}

// AddSegment appends a segment to the composition, or places it at the
// requested sequence order when no other link holds that order.
func (s *Service) AddSegment(ctx context.Context, id string, req models.SegmentLinkRequest) ([]models.HighlightSegmentDetail, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	h, err := s.store.GetHighlight(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.episodeSegments(ctx, h, []string{req.SegmentID}); err != nil {
		return nil, err
	}

	links, err := s.store.HighlightSegmentsByHighlightIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	order := 0
	taken := make(map[int]string, len(links))
	for _, l := range links {
		if l.SegmentID == req.SegmentID {
			return nil, apperr.AlreadyExists("highlight segment", req.SegmentID)
		}
		taken[l.SequenceOrder] = l.SegmentID
		order = max(order, l.SequenceOrder+1)
	}
	if req.SequenceOrder != nil {
		order = *req.SequenceOrder
		if sid, ok := taken[order]; ok {
			return nil, apperr.AlreadyExists("sequence order", fmt.Sprintf("%d (held by segment %s)", order, sid))
		}
	}

	link := models.HighlightSegment{HighlightID: id, SegmentID: req.SegmentID, SequenceOrder: order}
	if err := s.store.AddHighlightSegments(ctx, []models.HighlightSegment{link}); err != nil {
		return nil, err
	}
	return s.recompose(ctx, h)
}

// ReplaceSegments sets the composition to segmentIDs in the given order.
// An empty list clears it and leaves the stored bounds as they are.
func (s *Service) ReplaceSegments(ctx context.Context, id string, segmentIDs []string) ([]models.HighlightSegmentDetail, error) {
	h, err := s.store.GetHighlight(ctx, id)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(segmentIDs))
	for _, sid := range segmentIDs {
		if _, dup := seen[sid]; dup {
			return nil, apperr.Invalid("segment_ids", fmt.Sprintf("segment %s listed twice", sid))
		}
		seen[sid] = struct{}{}
	}
	if _, err := s.episodeSegments(ctx, h, segmentIDs); err != nil {
		return nil, err
	}

	if err := s.store.DeleteHighlightSegments(ctx, []string{id}); err != nil {
		return nil, err
	}
	links := make([]models.HighlightSegment, len(segmentIDs))
	for i, sid := range segmentIDs {
		links[i] = models.HighlightSegment{HighlightID: id, SegmentID: sid, SequenceOrder: i}
	}
	if err := s.store.AddHighlightSegments(ctx, links); err != nil {
		return nil, err
	}
	return s.recompose(ctx, h)
}

func (s *Service) RemoveSegment(ctx context.Context, id, segmentID string) error {
	h, err := s.store.GetHighlight(ctx, id)
	if err != nil {
		return err
	}
	removed, err := s.store.DeleteHighlightSegment(ctx, id, segmentID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("highlight segment", segmentID)
	}
	_, err = s.recompose(ctx, h)
	return err
}

// episodeSegments loads ids and checks they all belong to the highlight's episode.
func (s *Service) episodeSegments(ctx context.Context, h models.Highlight, ids []string) ([]models.Segment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	segs, err := s.store.SegmentsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Segment, len(segs))
	for _, seg := range segs {
		byID[seg.ID] = seg
	}
	for _, sid := range ids {
		seg, ok := byID[sid]
		if !ok {
			return nil, apperr.Invalid("segment_id", fmt.Sprintf("segment %s does not exist", sid))
		}
		if seg.EpisodeID != h.EpisodeID {
			return nil, apperr.Invalid("segment_id", fmt.Sprintf("segment %s belongs to another episode", sid))
		}
	}
	return segs, nil
}

// recompose persists the bounds and transcript derived from the current
// composition and returns it.
func (s *Service) recompose(ctx context.Context, h models.Highlight) ([]models.HighlightSegmentDetail, error) {
	segs, err := s.agg.ExplicitSegments(ctx, h)
	if err != nil {
		return nil, err
	}
	if len(segs) == 0 {
		return segs, nil
	}
	texts := make([]string, len(segs))
	for i, seg := range segs {
		texts[i] = seg.Text
	}
	start, end := bounds(segs)
	patch := store.Row{"start_s": start, "end_s": end, "transcript": strings.Join(texts, " ")}
	if _, err := s.store.UpdateHighlight(ctx, h.ID, patch); err != nil {
		return nil, err
	}
	return segs, nil
}

// Package highlights assembles enriched highlight views and implements the
// highlight operations exposed over HTTP.
package highlights

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"podcast-highlighter/internal/models"
	"podcast-highlighter/internal/speakers"
)

// Store is the read surface used for enrichment.
type Store interface {
	speakers.Store
	SegmentsInRange(ctx context.Context, episodeID string, from, to float64) ([]models.Segment, error)
	SegmentsByIDs(ctx context.Context, ids []string) ([]models.Segment, error)
	HighlightSegmentsByHighlightIDs(ctx context.Context, highlightIDs []string) ([]models.HighlightSegment, error)
	CommentsByHighlightIDs(ctx context.Context, highlightIDs []string) ([]models.HighlightComment, error)
	PromptsByIDs(ctx context.Context, ids []string) ([]models.Prompt, error)
	HighlightProfilesByHighlightIDs(ctx context.Context, highlightIDs []string) ([]models.HighlightProfile, error)
	SocialProfilesByIDs(ctx context.Context, ids []string) ([]models.SocialProfile, error)
}

// Aggregator enriches highlights with a fixed number of batched store calls
// per batch, independent of the number of highlights.
type Aggregator struct {
	store    Store
	speakers *speakers.Resolver
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store, speakers: speakers.NewResolver(store)}
}

// Enrich enriches a single highlight through the batch path.
func (a *Aggregator) Enrich(ctx context.Context, h models.Highlight) models.EnrichedHighlight {
	return a.EnrichAll(ctx, []models.Highlight{h})[0]
}

// EnrichAll returns one enriched record per input, in input order. Enrichment
// is best effort: on any store failure every record carries the base
// highlight fields with empty related data.
func (a *Aggregator) EnrichAll(ctx context.Context, hs []models.Highlight) []models.EnrichedHighlight {
	if len(hs) == 0 {
		return []models.EnrichedHighlight{}
	}
	out, err := a.enrich(ctx, hs)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int("highlights", len(hs)).Msg("highlight enrichment failed, returning base records")
		out = make([]models.EnrichedHighlight, len(hs))
		for i, h := range hs {
			out[i] = baseRecord(h)
		}
	}
	return out
}

func baseRecord(h models.Highlight) models.EnrichedHighlight {
	return models.EnrichedHighlight{
		Highlight:      h,
		Speakers:       []string{},
		Comments:       []models.CommentSummary{},
		Segments:       []models.HighlightSegmentDetail{},
		SegmentIDs:     []string{},
		SocialProfiles: []string{},
	}
}

type span struct {
	start, end float64
}

// batch holds every related row loaded for one EnrichAll call.
type batch struct {
	inRange  map[string][]models.Segment
	links    map[string][]models.HighlightSegment
	segments map[string]models.Segment
	comments map[string][]models.CommentSummary
	prompts  map[string]models.PromptSummary
	profiles map[string][]string
}

func (a *Aggregator) enrich(ctx context.Context, hs []models.Highlight) ([]models.EnrichedHighlight, error) {
	ids := make([]string, 0, len(hs))
	spans := make(map[string]span)
	var episodeIDs, promptIDs []string
	seenPrompt := make(map[string]struct{})
	for _, h := range hs {
		ids = append(ids, h.ID)
		if sp, ok := spans[h.EpisodeID]; ok {
			spans[h.EpisodeID] = span{start: min(sp.start, h.StartS), end: max(sp.end, h.EndS)}
		} else {
			spans[h.EpisodeID] = span{start: h.StartS, end: h.EndS}
			episodeIDs = append(episodeIDs, h.EpisodeID)
		}
		if h.PromptID != nil && *h.PromptID != "" {
			if _, ok := seenPrompt[*h.PromptID]; !ok {
				seenPrompt[*h.PromptID] = struct{}{}
				promptIDs = append(promptIDs, *h.PromptID)
			}
		}
	}

	var b batch
	perEpisode := make([][]models.Segment, len(episodeIDs))

	g, gctx := errgroup.WithContext(ctx)
	for i, episodeID := range episodeIDs {
		i, episodeID := i, episodeID
		g.Go(func() error {
			sp := spans[episodeID]
			segs, err := a.store.SegmentsInRange(gctx, episodeID, sp.start, sp.end)
			if err != nil {
				return fmt.Errorf("segments for episode %s: %w", episodeID, err)
			}
			perEpisode[i] = segs
			return nil
		})
	}
	g.Go(func() error {
		var err error
		b.links, b.segments, err = a.composition(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		b.comments, err = a.comments(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		b.prompts, err = a.prompts(gctx, promptIDs)
		return err
	})
	g.Go(func() error {
		var err error
		b.profiles, err = a.profiles(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.inRange = make(map[string][]models.Segment, len(episodeIDs))
	for i, episodeID := range episodeIDs {
		b.inRange[episodeID] = perEpisode[i]
	}

	overlap := make(map[string][]string, len(hs))
	var segmentIDs []string
	for _, h := range hs {
		for _, seg := range Overlapping(b.inRange[h.EpisodeID], h.StartS, h.EndS) {
			overlap[h.ID] = append(overlap[h.ID], seg.ID)
			segmentIDs = append(segmentIDs, seg.ID)
		}
	}
	speakerEpisodes := append([]string(nil), episodeIDs...)
	for _, seg := range b.segments {
		segmentIDs = append(segmentIDs, seg.ID)
		if _, ok := spans[seg.EpisodeID]; !ok {
			speakerEpisodes = append(speakerEpisodes, seg.EpisodeID)
		}
	}

	idx, err := a.speakers.Index(ctx, segmentIDs, speakerEpisodes)
	if err != nil {
		return nil, fmt.Errorf("speakers: %w", err)
	}

	out := make([]models.EnrichedHighlight, len(hs))
	for i, h := range hs {
		out[i] = b.merge(h, overlap[h.ID], idx)
	}
	return out, nil
}

func (b *batch) merge(h models.Highlight, overlap []string, idx *speakers.Index) models.EnrichedHighlight {
	e := baseRecord(h)
	e.Speakers = idx.Names(overlap)

	texts := make([]string, 0, len(b.links[h.ID]))
	for _, l := range b.links[h.ID] {
		seg, ok := b.segments[l.SegmentID]
		if !ok {
			continue
		}
		e.Segments = append(e.Segments, models.HighlightSegmentDetail{
			ID:            seg.ID,
			StartS:        seg.StartS,
			EndS:          seg.EndS,
			Text:          seg.Text,
			Speakers:      idx.SegmentNames(seg.ID),
			SequenceOrder: l.SequenceOrder,
		})
		e.SegmentIDs = append(e.SegmentIDs, seg.ID)
		texts = append(texts, seg.Text)
	}
	if len(e.Segments) > 0 {
		e.Transcript = strings.Join(texts, " ")
		e.StartS, e.EndS = bounds(e.Segments)
	}

	if c, ok := b.comments[h.ID]; ok {
		e.Comments = c
	}
	if h.PromptID != nil {
		if p, ok := b.prompts[*h.PromptID]; ok {
			e.Prompt = &p
		}
	}
	if names, ok := b.profiles[h.ID]; ok {
		e.SocialProfiles = names
	}
	return e
}

func bounds(segs []models.HighlightSegmentDetail) (float64, float64) {
	start, end := segs[0].StartS, segs[0].EndS
	for _, s := range segs[1:] {
		start = min(start, s.StartS)
		end = max(end, s.EndS)
	}
	return start, end
}

// composition loads the ordered segment links of ids and the segments they reference.
func (a *Aggregator) composition(ctx context.Context, ids []string) (map[string][]models.HighlightSegment, map[string]models.Segment, error) {
	links, err := a.store.HighlightSegmentsByHighlightIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("highlight segments: %w", err)
	}
	byHighlight := make(map[string][]models.HighlightSegment)
	segmentIDs := make([]string, 0, len(links))
	for _, l := range links {
		byHighlight[l.HighlightID] = append(byHighlight[l.HighlightID], l)
		segmentIDs = append(segmentIDs, l.SegmentID)
	}
	for _, group := range byHighlight {
		sort.SliceStable(group, func(i, j int) bool { return group[i].SequenceOrder < group[j].SequenceOrder })
	}

	segments := make(map[string]models.Segment, len(segmentIDs))
	if len(segmentIDs) == 0 {
		return byHighlight, segments, nil
	}
	rows, err := a.store.SegmentsByIDs(ctx, segmentIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("composed segments: %w", err)
	}
	for _, s := range rows {
		segments[s.ID] = s
	}
	return byHighlight, segments, nil
}

func (a *Aggregator) comments(ctx context.Context, ids []string) (map[string][]models.CommentSummary, error) {
	rows, err := a.store.CommentsByHighlightIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("comments: %w", err)
	}
	out := make(map[string][]models.CommentSummary)
	for _, c := range rows {
		out[c.HighlightID] = append(out[c.HighlightID], models.CommentSummary{ID: c.ID, Content: c.Content, CreatedAt: c.CreatedAt})
	}
	return out, nil
}

func (a *Aggregator) prompts(ctx context.Context, ids []string) (map[string]models.PromptSummary, error) {
	out := make(map[string]models.PromptSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := a.store.PromptsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("prompts: %w", err)
	}
	for _, p := range rows {
		out[p.ID] = models.PromptSummary{ID: p.ID, Name: p.Name, Version: p.Version}
	}
	return out, nil
}

func (a *Aggregator) profiles(ctx context.Context, ids []string) (map[string][]string, error) {
	links, err := a.store.HighlightProfilesByHighlightIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("highlight profiles: %w", err)
	}
	out := make(map[string][]string)
	if len(links) == 0 {
		return out, nil
	}
	profileIDs := make([]string, len(links))
	for i, l := range links {
		profileIDs[i] = l.ProfileID
	}
	profiles, err := a.store.SocialProfilesByIDs(ctx, profileIDs)
	if err != nil {
		return nil, fmt.Errorf("social profiles: %w", err)
	}
	names := make(map[string]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.ProfileName
	}
	for _, l := range links {
		if name, ok := names[l.ProfileID]; ok {
			out[l.HighlightID] = append(out[l.HighlightID], name)
		}
	}
	for _, group := range out {
		sort.Strings(group)
	}
	return out, nil
}

// ExplicitSegments returns the ordered composition of h with per-segment speakers.
// Unlike enrichment, store failures are returned to the caller.
func (a *Aggregator) ExplicitSegments(ctx context.Context, h models.Highlight) ([]models.HighlightSegmentDetail, error) {
	links, segments, err := a.composition(ctx, []string{h.ID})
	if err != nil {
		return nil, err
	}
	segmentIDs := make([]string, 0, len(segments))
	episodeIDs := []string{h.EpisodeID}
	for _, s := range segments {
		segmentIDs = append(segmentIDs, s.ID)
		if s.EpisodeID != h.EpisodeID {
			episodeIDs = append(episodeIDs, s.EpisodeID)
		}
	}
	idx, err := a.speakers.Index(ctx, segmentIDs, episodeIDs)
	if err != nil {
		return nil, fmt.Errorf("speakers: %w", err)
	}
	b := batch{links: links, segments: segments}
	return b.merge(h, nil, idx).Segments, nil
}

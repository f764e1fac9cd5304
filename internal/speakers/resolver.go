// Package speakers resolves diarized speaker attributions to display names.
package speakers

import (
	"context"
	"sort"

	"podcast-highlighter/internal/models"
)

// Store is the lookup surface the resolver needs. Implementations batch "in" lookups.
type Store interface {
	SegmentSpeakersBySegmentIDs(ctx context.Context, segmentIDs []string) ([]models.SegmentSpeaker, error)
	SpeakersByEpisodeIDs(ctx context.Context, episodeIDs []string) ([]models.Speaker, error)
}

type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// ResolveNames returns the distinct display names of the speakers attributed to segmentIDs.
func (r *Resolver) ResolveNames(ctx context.Context, segmentIDs []string, episodeID string) ([]string, error) {
	idx, err := r.Index(ctx, segmentIDs, []string{episodeID})
	if err != nil {
		return nil, err
	}
	return idx.Names(segmentIDs), nil
}

// Index loads the speaker links of segmentIDs and the speakers of episodeIDs
// once, so names can be resolved for many segment subsets without more queries.
func (r *Resolver) Index(ctx context.Context, segmentIDs, episodeIDs []string) (*Index, error) {
	idx := &Index{
		bySegment: make(map[string][]string),
		names:     make(map[string]string),
	}
	if len(segmentIDs) == 0 {
		return idx, nil
	}

	links, err := r.store.SegmentSpeakersBySegmentIDs(ctx, segmentIDs)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return idx, nil
	}
	for _, l := range links {
		idx.bySegment[l.SegmentID] = append(idx.bySegment[l.SegmentID], l.SpeakerID)
	}

	speakers, err := r.store.SpeakersByEpisodeIDs(ctx, episodeIDs)
	if err != nil {
		return nil, err
	}
	for _, s := range speakers {
		idx.names[s.ID] = s.DisplayName()
	}
	return idx, nil
}

// Index maps segments to speaker ids and speaker ids to display names.
type Index struct {
	bySegment map[string][]string
	names     map[string]string
}

// Names returns the sorted display names of every distinct speaker attributed
// to segmentIDs. Speakers without a row are skipped.
func (idx *Index) Names(segmentIDs []string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, segID := range segmentIDs {
		for _, speakerID := range idx.bySegment[segID] {
			if _, ok := seen[speakerID]; ok {
				continue
			}
			seen[speakerID] = struct{}{}
			if name, ok := idx.names[speakerID]; ok {
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

// SegmentNames returns the display names attributed to a single segment.
func (idx *Index) SegmentNames(segmentID string) []string {
	return idx.Names([]string{segmentID})
}

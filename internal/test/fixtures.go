package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"podcast-highlighter/internal/db"
	"podcast-highlighter/internal/models"
	"podcast-highlighter/internal/store/memory"
)

// Env is an in-memory store wired the way the services expect it.
type Env struct {
	Memory  *memory.Gateway
	Gateway *FaultyGateway
	Store   *db.Store
}

func NewEnv(t *testing.T, batchSize int) *Env {
	t.Helper()
	mem := memory.New()
	gw := NewFaultyGateway(mem)
	return &Env{Memory: mem, Gateway: gw, Store: db.New(gw, batchSize)}
}

// Scenario is one episode with four back-to-back segments, two speakers and
// a highlight composed of the middle two segments.
//
//	s0 [0, 28.7)      SPEAKER_01
//	s1 [28.7, 36.0)   Alice
//	s2 [36.0, 45.2)   Alice, SPEAKER_01
//	s3 [45.2, 60.0)   SPEAKER_01
//	h1 [28.7, 45.2)   composed of s1, s2
type Scenario struct {
	Episode   models.Episode
	Segments  []models.Segment
	Alice     models.Speaker
	Unmapped  models.Speaker
	Highlight models.Highlight
}

func StrPtr(s string) *string { return &s }

func (e *Env) SeedScenario(t *testing.T) Scenario {
	t.Helper()
	ctx := context.Background()
	s := e.Store

	ep, err := s.CreateEpisode(ctx, models.Episode{
		YoutubeURL:      "https://www.youtube.com/watch?v=abc123",
		Title:           "Episode One",
		DurationSeconds: 60,
		Status:          models.EpisodeStatusCompleted,
	})
	require.NoError(t, err)

	segs, err := s.CreateSegments(ctx, []models.Segment{
		{ID: "s0", EpisodeID: ep.ID, StartS: 0, EndS: 28.7, Text: "intro", Confidence: 0.9},
		{ID: "s1", EpisodeID: ep.ID, StartS: 28.7, EndS: 36.0, Text: "A", Confidence: 0.95},
		{ID: "s2", EpisodeID: ep.ID, StartS: 36.0, EndS: 45.2, Text: "B", Confidence: 0.8},
		{ID: "s3", EpisodeID: ep.ID, StartS: 45.2, EndS: 60.0, Text: "outro", Confidence: 0.7},
	})
	require.NoError(t, err)

	speakers, err := s.CreateSpeakers(ctx, []models.Speaker{
		{ID: "sp1", EpisodeID: ep.ID, SpeakerLabel: "SPEAKER_00", MappedName: StrPtr("Alice")},
		{ID: "sp2", EpisodeID: ep.ID, SpeakerLabel: "SPEAKER_01"},
	})
	require.NoError(t, err)

	require.NoError(t, s.LinkSegmentSpeakers(ctx, []models.SegmentSpeaker{
		{SegmentID: "s0", SpeakerID: "sp2"},
		{SegmentID: "s1", SpeakerID: "sp1"},
		{SegmentID: "s2", SpeakerID: "sp1"},
		{SegmentID: "s2", SpeakerID: "sp2"},
		{SegmentID: "s3", SpeakerID: "sp2"},
	}))

	h, err := s.CreateHighlight(ctx, models.Highlight{
		ID:         "h1",
		EpisodeID:  ep.ID,
		StartS:     28.7,
		EndS:       45.2,
		Transcript: "stale transcript",
		CreatedAt:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, s.AddHighlightSegments(ctx, []models.HighlightSegment{
		{HighlightID: h.ID, SegmentID: "s2", SequenceOrder: 1},
		{HighlightID: h.ID, SegmentID: "s1", SequenceOrder: 0},
	}))

	return Scenario{Episode: ep, Segments: segs, Alice: speakers[0], Unmapped: speakers[1], Highlight: h}
}

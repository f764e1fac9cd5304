package highlights_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-highlighter/internal/apperr"
	"podcast-highlighter/internal/highlights"
	"podcast-highlighter/internal/models"
	"podcast-highlighter/internal/store"
	"podcast-highlighter/internal/test"
)

func newService(t *testing.T) (*highlights.Service, *test.Env, test.Scenario) {
	t.Helper()
	env := test.NewEnv(t, 100)
	sc := env.SeedScenario(t)
	return highlights.NewService(env.Store), env, sc
}

func TestServiceGet(t *testing.T) {
	svc, _, sc := newService(t)
	ctx := context.Background()

	e, err := svc.Get(ctx, sc.Highlight.ID)
	require.NoError(t, err)
	assert.Equal(t, "A B", e.Transcript)
	assert.Equal(t, []string{"s1", "s2"}, e.SegmentIDs)

	_, err = svc.Get(ctx, "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestServiceListValidatesFilters(t *testing.T) {
	svc, _, sc := newService(t)
	ctx := context.Background()

	got, err := svc.List(ctx, models.HighlightFilters{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sc.Highlight.ID, got[0].ID)
	assert.Equal(t, "A B", got[0].Transcript)

	_, err = svc.List(ctx, models.HighlightFilters{Limit: 201})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.List(ctx, models.HighlightFilters{Offset: -1})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	from := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.List(ctx, models.HighlightFilters{DateFrom: &from, DateTo: &to})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestServiceListByDateAndProfile(t *testing.T) {
	svc, env, sc := newService(t)
	ctx := context.Background()

	p, err := env.Store.CreateSocialProfile(ctx, models.SocialProfile{Platform: "x", ProfileName: "Main", IsActive: true})
	require.NoError(t, err)
	_, err = svc.Update(ctx, sc.Highlight.ID, models.HighlightPatch{ProfileIDs: &[]string{p.ID}})
	require.NoError(t, err)
	_, err = env.Store.CreateHighlight(ctx, models.Highlight{EpisodeID: sc.Episode.ID, StartS: 0, EndS: 5})
	require.NoError(t, err)

	got, err := svc.List(ctx, models.HighlightFilters{ProfileID: p.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Main"}, got[0].SocialProfiles)

	from := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	got, err = svc.List(ctx, models.HighlightFilters{DateFrom: &from, DateTo: &to})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sc.Highlight.ID, got[0].ID)
}

func TestServiceListAllPages(t *testing.T) {
	svc, env, sc := newService(t)
	ctx := context.Background()
	for i := 0; i < highlights.MaxLimit; i++ {
		_, err := env.Store.CreateHighlight(ctx, models.Highlight{EpisodeID: sc.Episode.ID, StartS: 1, EndS: 2})
		require.NoError(t, err)
	}

	got, err := svc.ListAll(ctx, models.HighlightFilters{EpisodeID: sc.Episode.ID, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, got, highlights.MaxLimit+1)
}

func TestServiceCreate(t *testing.T) {
	svc, _, sc := newService(t)
	ctx := context.Background()

	e, err := svc.Create(ctx, models.HighlightCreate{EpisodeID: sc.Episode.ID, StartS: 46, EndS: 50, Transcript: "late"})
	require.NoError(t, err)
	assert.Equal(t, models.HighlightStatusPending, e.Status)
	assert.Equal(t, []string{"SPEAKER_01"}, e.Speakers)

	_, err = svc.Create(ctx, models.HighlightCreate{EpisodeID: "nope", StartS: 1, EndS: 2})
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "episode_id", verr.Field)

	_, err = svc.Create(ctx, models.HighlightCreate{EpisodeID: sc.Episode.ID, StartS: 5, EndS: 5})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Create(ctx, models.HighlightCreate{EpisodeID: sc.Episode.ID, PromptID: test.StrPtr("nope"), StartS: 1, EndS: 2})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestServiceUpdate(t *testing.T) {
	svc, env, sc := newService(t)
	ctx := context.Background()

	zed, err := env.Store.CreateSocialProfile(ctx, models.SocialProfile{Platform: "x", ProfileName: "Zed", IsActive: true})
	require.NoError(t, err)
	ann, err := env.Store.CreateSocialProfile(ctx, models.SocialProfile{Platform: "x", ProfileName: "Ann", IsActive: true})
	require.NoError(t, err)

	status := models.HighlightStatusApproved
	e, err := svc.Update(ctx, sc.Highlight.ID, models.HighlightPatch{Status: &status, ProfileIDs: &[]string{zed.ID, ann.ID}})
	require.NoError(t, err)
	assert.Equal(t, models.HighlightStatusApproved, e.Status)
	assert.Equal(t, []string{"Ann", "Zed"}, e.SocialProfiles)

	e, err = svc.Update(ctx, sc.Highlight.ID, models.HighlightPatch{ProfileIDs: &[]string{ann.ID}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann"}, e.SocialProfiles)
	assert.Equal(t, models.HighlightStatusApproved, e.Status)

	e, err = svc.Update(ctx, sc.Highlight.ID, models.HighlightPatch{ProfileIDs: &[]string{}})
	require.NoError(t, err)
	assert.Equal(t, []string{}, e.SocialProfiles)
	assert.Equal(t, 0, env.Memory.Count(store.TableHighlightProfiles))

	rejected := models.HighlightStatusRejected
	_, err = svc.Update(ctx, sc.Highlight.ID, models.HighlightPatch{Status: &rejected, ProfileIDs: &[]string{ann.ID, "ghost"}})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	stored, err := env.Store.GetHighlight(ctx, sc.Highlight.ID)
	require.NoError(t, err)
	assert.Equal(t, models.HighlightStatusApproved, stored.Status)
	assert.Equal(t, 0, env.Memory.Count(store.TableHighlightProfiles))

	_, err = svc.Update(ctx, sc.Highlight.ID, models.HighlightPatch{RawVideoLink: test.StrPtr("not a url")})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Update(ctx, "missing", models.HighlightPatch{Status: &status})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestServiceDeleteCascades(t *testing.T) {
	svc, env, sc := newService(t)
	ctx := context.Background()

	_, err := svc.AddComment(ctx, sc.Highlight.ID, models.CommentRequest{Content: "great"})
	require.NoError(t, err)
	p, err := env.Store.CreateSocialProfile(ctx, models.SocialProfile{Platform: "x", ProfileName: "Main", IsActive: true})
	require.NoError(t, err)
	require.NoError(t, env.Store.ReplaceHighlightProfiles(ctx, sc.Highlight.ID, []string{p.ID}))

	deleted, err := svc.Delete(ctx, sc.Highlight.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 0, env.Memory.Count(store.TableHighlights))
	assert.Equal(t, 0, env.Memory.Count(store.TableHighlightSegments))
	assert.Equal(t, 0, env.Memory.Count(store.TableHighlightComments))
	assert.Equal(t, 0, env.Memory.Count(store.TableHighlightProfiles))
	assert.Equal(t, 4, env.Memory.Count(store.TableSegments))

	deleted, err = svc.Delete(ctx, sc.Highlight.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestServiceDeleteForEpisode(t *testing.T) {
	svc, env, sc := newService(t)
	ctx := context.Background()
	_, err := env.Store.CreateHighlight(ctx, models.Highlight{EpisodeID: sc.Episode.ID, StartS: 1, EndS: 2})
	require.NoError(t, err)
	_, err = env.Store.CreateHighlight(ctx, models.Highlight{EpisodeID: "other", StartS: 1, EndS: 2})
	require.NoError(t, err)

	n, err := svc.DeleteForEpisode(ctx, sc.Episode.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, env.Memory.Count(store.TableHighlights))
}

func TestServiceComposition(t *testing.T) {
	svc, env, sc := newService(t)
	ctx := context.Background()

	segs, err := svc.Segments(ctx, sc.Highlight.ID)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, "s1", segs[0].ID)

	segs, err = svc.ReplaceSegments(ctx, sc.Highlight.ID, []string{"s3", "s0"})
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, "s3", segs[0].ID)
	assert.Equal(t, 1, segs[1].SequenceOrder)

	h, err := env.Store.GetHighlight(ctx, sc.Highlight.ID)
	require.NoError(t, err)
	assert.Equal(t, "outro intro", h.Transcript)
	assert.Equal(t, 0.0, h.StartS)
	assert.Equal(t, 60.0, h.EndS)

	segs, err = svc.AddSegment(ctx, sc.Highlight.ID, models.SegmentLinkRequest{SegmentID: "s1"})
	require.NoError(t, err)
	require.Len(t, segs, 3)
	assert.Equal(t, "s1", segs[2].ID)
	assert.Equal(t, 2, segs[2].SequenceOrder)

	_, err = svc.AddSegment(ctx, sc.Highlight.ID, models.SegmentLinkRequest{SegmentID: "s1"})
	assert.True(t, errors.Is(err, apperr.ErrAlreadyExists))

	clash := 1
	_, err = svc.AddSegment(ctx, sc.Highlight.ID, models.SegmentLinkRequest{SegmentID: "s2", SequenceOrder: &clash})
	assert.True(t, errors.Is(err, apperr.ErrAlreadyExists))
	segs, err = svc.Segments(ctx, sc.Highlight.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"s3", "s0", "s1"}, []string{segs[0].ID, segs[1].ID, segs[2].ID})

	require.NoError(t, svc.RemoveSegment(ctx, sc.Highlight.ID, "s0"))
	h, err = env.Store.GetHighlight(ctx, sc.Highlight.ID)
	require.NoError(t, err)
	assert.Equal(t, "outro A", h.Transcript)
	assert.Equal(t, 28.7, h.StartS)
	assert.Equal(t, 60.0, h.EndS)

	err = svc.RemoveSegment(ctx, sc.Highlight.ID, "s0")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = svc.ReplaceSegments(ctx, sc.Highlight.ID, []string{"s1", "s1"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	_, err = svc.ReplaceSegments(ctx, sc.Highlight.ID, []string{"nope"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestServiceCompositionRejectsForeignSegments(t *testing.T) {
	svc, env, sc := newService(t)
	ctx := context.Background()
	_, err := env.Store.CreateSegments(ctx, []models.Segment{{ID: "x1", EpisodeID: "other", StartS: 0, EndS: 1, Text: "x"}})
	require.NoError(t, err)

	_, err = svc.AddSegment(ctx, sc.Highlight.ID, models.SegmentLinkRequest{SegmentID: "x1"})
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "segment_id", verr.Field)
}

func TestServiceComments(t *testing.T) {
	svc, env, sc := newService(t)
	ctx := context.Background()

	c, err := svc.AddComment(ctx, sc.Highlight.ID, models.CommentRequest{Content: "first"})
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, sc.Highlight.ID, models.CommentRequest{})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	_, err = svc.AddComment(ctx, "missing", models.CommentRequest{Content: "x"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	updated, err := svc.UpdateComment(ctx, c.ID, models.CommentRequest{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	list, err := svc.Comments(ctx, sc.Highlight.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	e, err := svc.Get(ctx, sc.Highlight.ID)
	require.NoError(t, err)
	require.Len(t, e.Comments, 1)
	assert.Equal(t, "edited", e.Comments[0].Content)

	require.NoError(t, svc.DeleteComment(ctx, c.ID))
	assert.True(t, errors.Is(svc.DeleteComment(ctx, c.ID), apperr.ErrNotFound))
	assert.Equal(t, 0, env.Memory.Count(store.TableHighlightComments))
}

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-highlighter/internal/store"
)

type segment struct {
	ID        string    `json:"id"`
	EpisodeID string    `json:"episode_id"`
	StartS    float64   `json:"start_s"`
	EndS      float64   `json:"end_s"`
	Text      string    `json:"text"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

func seed(t *testing.T, g *Gateway) {
	t.Helper()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := []store.Row{
		{"id": "s1", "episode_id": "e1", "start_s": 0.0, "end_s": 10.0, "text": "a", "created_at": base},
		{"id": "s2", "episode_id": "e1", "start_s": 10.0, "end_s": 20.5, "text": "b", "created_at": base.Add(time.Hour)},
		{"id": "s3", "episode_id": "e1", "start_s": 20.5, "end_s": 30.0, "text": "c", "created_at": base.Add(2 * time.Hour)},
		{"id": "s4", "episode_id": "e2", "start_s": 5.0, "end_s": 6.0, "text": "d", "created_at": base.Add(3 * time.Hour)},
	}
	require.NoError(t, g.Insert(context.Background(), "segments", rows, nil))
}

func TestSelectFiltersAndOrder(t *testing.T) {
	g := New()
	seed(t, g)

	var got []segment
	q := store.From().
		Where(store.Eq("episode_id", "e1"), store.Gte("end_s", 15.0), store.Lte("start_s", 25)).
		OrderBy("start_s", true)
	require.NoError(t, g.Select(context.Background(), "segments", q, &got))

	require.Len(t, got, 2)
	assert.Equal(t, "s3", got[0].ID)
	assert.Equal(t, "s2", got[1].ID)
	assert.Nil(t, got[0].Note)
}

func TestSelectInAndRange(t *testing.T) {
	g := New()
	seed(t, g)

	var got []segment
	q := store.From().Where(store.In("id", []string{"s1", "s3", "s4", "missing"})).OrderBy("start_s", false).Range(1, 1)
	require.NoError(t, g.Select(context.Background(), "segments", q, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "s4", got[0].ID)

	got = nil
	require.NoError(t, g.Select(context.Background(), "segments", store.From().Range(10, 5), &got))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSelectTimeRange(t *testing.T) {
	g := New()
	seed(t, g)

	from := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	to := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var got []segment
	q := store.From().Where(store.Gte("created_at", from), store.Lte("created_at", to)).OrderBy("created_at", true)
	require.NoError(t, g.Select(context.Background(), "segments", q, &got))
	require.Len(t, got, 2)
	assert.Equal(t, []string{"s3", "s2"}, []string{got[0].ID, got[1].ID})
}

func TestUpdateAndDelete(t *testing.T) {
	g := New()
	seed(t, g)
	ctx := context.Background()

	var updated []segment
	require.NoError(t, g.Update(ctx, "segments", store.Row{"text": "edited"}, []store.Filter{store.Eq("id", "s2")}, &updated))
	require.Len(t, updated, 1)
	assert.Equal(t, "edited", updated[0].Text)
	assert.Equal(t, 10.0, updated[0].StartS)

	var deleted []segment
	require.NoError(t, g.Delete(ctx, "segments", []store.Filter{store.Eq("episode_id", "e1")}, &deleted))
	assert.Len(t, deleted, 3)
	assert.Equal(t, 1, g.Count("segments"))

	assert.Error(t, g.Delete(ctx, "segments", nil, nil))
	assert.Error(t, g.Update(ctx, "segments", store.Row{}, nil, nil))
}

func TestSelectRejectsBadIdentifiers(t *testing.T) {
	g := New()
	assert.Error(t, g.Select(context.Background(), "segments; drop", store.From(), nil))
	assert.Error(t, g.Insert(context.Background(), "segments", []store.Row{{"bad col": 1}}, nil))
}

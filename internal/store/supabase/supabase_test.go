package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-highlighter/internal/store"
)

type highlight struct {
	ID        string  `json:"id"`
	EpisodeID string  `json:"episode_id"`
	StartS    float64 `json:"start_s"`
}

type captured struct {
	method string
	path   string
	query  url.Values
	prefer string
	body   []byte
}

func newServer(t *testing.T, status int, response string) (*Gateway, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.method = r.Method
		c.path = r.URL.Path
		c.query = r.URL.Query()
		c.prefer = r.Header.Get("Prefer")
		c.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	g, err := Open(srv.URL, "service-key", 100)
	require.NoError(t, err)
	return g, c
}

func TestSelectEncodesFilters(t *testing.T) {
	g, c := newServer(t, http.StatusOK, `[{"id":"h1","episode_id":"e1","start_s":28.7}]`)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
	q := store.From().
		Where(
			store.Eq("episode_id", "e1"),
			store.Gte("created_at", from),
			store.Lte("created_at", to),
			store.In("status", []string{"approved", "used"}),
		).
		OrderBy("created_at", true).
		Range(50, 25)

	var out []highlight
	require.NoError(t, g.Select(context.Background(), "highlights", q, &out))

	assert.Equal(t, http.MethodGet, c.method)
	assert.Equal(t, "/rest/v1/highlights", c.path)
	assert.Equal(t, "*", c.query.Get("select"))
	assert.Equal(t, "eq.e1", c.query.Get("episode_id"))
	assert.Equal(t, "in.(approved,used)", c.query.Get("status"))
	assert.Equal(t, "(created_at.gte.2024-03-01T00:00:00Z,created_at.lte.2024-03-31T23:59:59Z)", c.query.Get("and"))
	assert.Empty(t, c.query.Get("created_at"))
	assert.Equal(t, "created_at.desc.nullslast", c.query.Get("order"))
	assert.Equal(t, "50", c.query.Get("offset"))
	assert.Equal(t, "25", c.query.Get("limit"))

	require.Len(t, out, 1)
	assert.Equal(t, highlight{ID: "h1", EpisodeID: "e1", StartS: 28.7}, out[0])
}

func TestSelectFormatsNumbers(t *testing.T) {
	g, c := newServer(t, http.StatusOK, `[]`)

	q := store.From().Where(store.Eq("episode_id", "e1"), store.Gte("end_s", 28.7), store.Lte("start_s", 45.0))
	var out []highlight
	require.NoError(t, g.Select(context.Background(), "segments", q, &out))

	assert.Equal(t, "gte.28.7", c.query.Get("end_s"))
	assert.Equal(t, "lte.45", c.query.Get("start_s"))
	assert.Empty(t, out)
}

func TestInsertSendsRows(t *testing.T) {
	g, c := newServer(t, http.StatusCreated, `[{"id":"h1","episode_id":"e1","start_s":1}]`)

	var out []highlight
	rows := []store.Row{{"id": "h1", "episode_id": "e1", "start_s": 1.0}}
	require.NoError(t, g.Insert(context.Background(), "highlights", rows, &out))

	assert.Equal(t, http.MethodPost, c.method)
	assert.Equal(t, "return=representation", c.prefer)
	var sent []map[string]any
	require.NoError(t, json.Unmarshal(c.body, &sent))
	assert.Equal(t, "e1", sent[0]["episode_id"])
	assert.Len(t, out, 1)
}

func TestDeleteWithoutDestIsMinimal(t *testing.T) {
	g, c := newServer(t, http.StatusNoContent, ``)

	err := g.Delete(context.Background(), "highlight_profiles", []store.Filter{store.Eq("highlight_id", "h1")}, nil)
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, c.method)
	assert.Equal(t, "return=minimal", c.prefer)
	assert.Equal(t, "eq.h1", c.query.Get("highlight_id"))
}

func TestUpdateSurfacesErrors(t *testing.T) {
	g, c := newServer(t, http.StatusBadRequest, `{"code":"22P02","message":"invalid input syntax"}`)

	var out []highlight
	err := g.Update(context.Background(), "highlights", store.Row{"status": "approved"}, []store.Filter{store.Eq("id", "h1")}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input syntax")
	assert.Equal(t, http.MethodPatch, c.method)
}

func TestCancelledContext(t *testing.T) {
	g, _ := newServer(t, http.StatusOK, `[]`)
	g.limiter.SetBurst(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := g.Select(ctx, "highlights", store.From(), nil)
	assert.Error(t, err)
}

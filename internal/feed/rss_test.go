package feed

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-highlighter/internal/models"
)

func TestBaseURL(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/episodes/e1/highlights.rss", nil)
	r.Host = "clips.example.com"
	assert.Equal(t, "https://clips.example.com", BaseURL(r, ""))

	r.Header.Set("X-Forwarded-Proto", "http")
	assert.Equal(t, "http://clips.example.com", BaseURL(r, ""))

	assert.Equal(t, "https://public.example.com", BaseURL(r, "https://public.example.com/"))
}

func TestItemLink(t *testing.T) {
	ep := models.Episode{YoutubeURL: "https://www.youtube.com/watch?v=abc123"}
	h := models.EnrichedHighlight{Highlight: models.Highlight{StartS: 28.7}}
	assert.Equal(t, "https://www.youtube.com/watch?t=28s&v=abc123", ItemLink(ep, h))

	raw := "https://cdn.example.com/raw.mp4"
	h.RawVideoLink = &raw
	assert.Equal(t, raw, ItemLink(ep, h))

	edited := "https://cdn.example.com/edited.mp4"
	h.EditedVideoLink = &edited
	assert.Equal(t, edited, ItemLink(ep, h))
}

func TestGenerateHighlightsRSS(t *testing.T) {
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ep := models.Episode{ID: "e1", Title: "Episode One", YoutubeURL: "https://youtu.be/abc123", CreatedAt: created, UpdatedAt: created}
	hs := []models.EnrichedHighlight{
		{
			Highlight: models.Highlight{ID: "h1", StartS: 28.7, EndS: 45.2, Transcript: "A B", CreatedAt: created},
			Speakers:  []string{"Alice", "SPEAKER_01"},
		},
		{
			Highlight: models.Highlight{ID: "h2", StartS: 50, EndS: 55, CreatedAt: created},
		},
	}

	rss, err := GenerateHighlightsRSS(ep, hs, "https://clips.example.com")
	require.NoError(t, err)
	assert.Contains(t, rss, "Episode One: highlights")
	assert.Contains(t, rss, "https://clips.example.com/api/episodes/e1/highlights.rss")
	assert.Contains(t, rss, "00:28 - 00:45 (Alice, SPEAKER_01)")
	assert.Contains(t, rss, "A B")
	assert.Contains(t, rss, "Highlight at 00:50")
	assert.Contains(t, rss, "https://youtu.be/abc123?t=50s")
}

package export

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-highlighter/internal/apperr"
	"podcast-highlighter/internal/models"
)

func sample() []models.EnrichedHighlight {
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return []models.EnrichedHighlight{
		{
			Highlight: models.Highlight{ID: "1", EpisodeID: "ep1", StartS: 60, EndS: 120, Transcript: "This is the first highlight", Status: "pending", CreatedAt: created},
			Comments:  []models.CommentSummary{{ID: "c1", Content: "keep"}, {ID: "c2", Content: "trim the end"}},
		},
		{
			Highlight: models.Highlight{ID: "2", EpisodeID: "ep1", StartS: 300, EndS: 360.5, Transcript: "This is the second highlight", Status: "used", CreatedAt: created},
		},
	}
}

func TestToSRTSingle(t *testing.T) {
	hs := []models.EnrichedHighlight{{Highlight: models.Highlight{StartS: 60, EndS: 120, Transcript: "hello"}}}
	assert.Equal(t, "1\n00:01:00,000 --> 00:02:00,000\nhello\n", ToSRT(hs))
}

func TestToSRTMultiple(t *testing.T) {
	want := "1\n00:01:00,000 --> 00:02:00,000\nThis is the first highlight\n" +
		"\n" +
		"2\n00:05:00,000 --> 00:06:00,500\nThis is the second highlight\n"
	assert.Equal(t, want, ToSRT(sample()))
	assert.Equal(t, "", ToSRT(nil))
}

func TestSRTTimeTruncates(t *testing.T) {
	assert.Equal(t, "00:00:28,700", srtTime(28.7))
	assert.Equal(t, "00:00:01,999", srtTime(1.9999))
	assert.Equal(t, "01:01:05,250", srtTime(3665.25))
}

func TestTimestamp(t *testing.T) {
	assert.Equal(t, "00:45", Timestamp(45))
	assert.Equal(t, "01:00", Timestamp(60))
	assert.Equal(t, "01:01:05", Timestamp(3665))
	assert.Equal(t, "00:59", Timestamp(59.99))
}

func TestToCSV(t *testing.T) {
	out, err := ToCSV(sample())
	require.NoError(t, err)
	want := "id,episode_id,start_s,end_s,start_time,end_time,transcript,status,comments,created_at\n" +
		"1,ep1,60.0,120.0,01:00,02:00,This is the first highlight,pending,keep; trim the end,2024-06-01T12:00:00Z\n" +
		"2,ep1,300.0,360.5,05:00,06:00,This is the second highlight,used,,2024-06-01T12:00:00Z\n"
	assert.Equal(t, want, string(out))
}

func TestToCSVQuotesTranscripts(t *testing.T) {
	hs := []models.EnrichedHighlight{{Highlight: models.Highlight{ID: "1", StartS: 1, EndS: 2, Transcript: `she said "hi", then left`}}}
	out, err := ToCSV(hs)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"she said ""hi"", then left"`)
}

func TestToJSON(t *testing.T) {
	out, err := ToJSON(sample())
	require.NoError(t, err)
	assert.Contains(t, string(out), "\n  {\n")

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "1", decoded[0]["id"])
	assert.Equal(t, "01:00", decoded[0]["start_time"])
	assert.Equal(t, "02:00", decoded[0]["end_time"])
	assert.Equal(t, 60.0, decoded[0]["duration"])
	assert.Equal(t, 60.5, decoded[1]["duration"])

	empty, err := ToJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestToJSONDurationMilliseconds(t *testing.T) {
	hs := []models.EnrichedHighlight{{Highlight: models.Highlight{StartS: 28.7, EndS: 45.2}}}
	out, err := ToJSON(hs)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"duration": 16.5`)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, CSV, f)
	assert.Equal(t, "text/csv; charset=utf-8", f.ContentType())
	assert.Equal(t, "highlights.csv", f.Filename())

	_, err = ParseFormat("xml")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestRender(t *testing.T) {
	for _, f := range []Format{SRT, CSV, JSON} {
		out, err := f.Render(sample())
		require.NoError(t, err)
		assert.NotEmpty(t, out)
	}
}

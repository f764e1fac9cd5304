// Package export renders enriched highlights as subtitles, CSV or JSON.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"podcast-highlighter/internal/apperr"
	"podcast-highlighter/internal/models"
)

type Format string

const (
	SRT  Format = "srt"
	CSV  Format = "csv"
	JSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case SRT, CSV, JSON:
		return f, nil
	}
	return "", apperr.Invalid("format", "must be one of [srt csv json]")
}

func (f Format) ContentType() string {
	switch f {
	case SRT:
		return "application/x-subrip; charset=utf-8"
	case CSV:
		return "text/csv; charset=utf-8"
	default:
		return "application/json"
	}
}

func (f Format) Filename() string {
	return "highlights." + string(f)
}

// Render dispatches to the formatter for f.
func (f Format) Render(hs []models.EnrichedHighlight) ([]byte, error) {
	switch f {
	case SRT:
		return []byte(ToSRT(hs)), nil
	case CSV:
		return ToCSV(hs)
	case JSON:
		return ToJSON(hs)
	}
	return nil, fmt.Errorf("unknown export format %q", f)
}

// ToSRT numbers entries from 1 in input order and separates them with a blank line.
func ToSRT(hs []models.EnrichedHighlight) string {
	var b strings.Builder
	for i, h := range hs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n", i+1, srtTime(h.StartS), srtTime(h.EndS), h.Transcript)
	}
	return b.String()
}

var csvHeader = []string{"id", "episode_id", "start_s", "end_s", "start_time", "end_time", "transcript", "status", "comments", "created_at"}

func ToCSV(hs []models.EnrichedHighlight) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, h := range hs {
		comments := make([]string, len(h.Comments))
		for i, c := range h.Comments {
			comments[i] = c.Content
		}
		record := []string{
			h.ID,
			h.EpisodeID,
			seconds(h.StartS),
			seconds(h.EndS),
			Timestamp(h.StartS),
			Timestamp(h.EndS),
			h.Transcript,
			h.Status,
			strings.Join(comments, "; "),
			h.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

type jsonRecord struct {
	models.EnrichedHighlight
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Duration  float64 `json:"duration"`
}

// ToJSON pretty-prints the highlights with start_time, end_time and duration
// added. duration is end_s - start_s rounded to the millisecond.
func ToJSON(hs []models.EnrichedHighlight) ([]byte, error) {
	records := make([]jsonRecord, len(hs))
	for i, h := range hs {
		records[i] = jsonRecord{
			EnrichedHighlight: h,
			StartTime:         Timestamp(h.StartS),
			EndTime:           Timestamp(h.EndS),
			Duration:          math.Round((h.EndS-h.StartS)*1000) / 1000,
		}
	}
	return json.MarshalIndent(records, "", "  ")
}

// Timestamp renders s as MM:SS, or HH:MM:SS from one hour on.
func Timestamp(s float64) string {
	total := int64(math.Floor(s))
	h, m, sec := total/3600, total%3600/60, total%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}

// srtTime renders HH:MM:SS,mmm with the milliseconds truncated. The epsilon
// keeps values such as 28.7 from truncating to 699ms.
func srtTime(s float64) string {
	ms := int64(math.Floor(s*1000 + 1e-6))
	return fmt.Sprintf("%02d:%02d:%02d,%03d", ms/3600000, ms%3600000/60000, ms%60000/1000, ms%1000)
}

// seconds prints whole values with a trailing ".0" so the column reads as decimal.
func seconds(s float64) string {
	out := strconv.FormatFloat(s, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}

// Package feed renders an episode's highlights as an RSS feed.
package feed

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/eduncan911/podcast"

	"podcast-highlighter/internal/export"
	"podcast-highlighter/internal/models"
)

// BaseURL prefers the configured public URL and otherwise derives one from the request.
func BaseURL(r *http.Request, configured string) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}

	scheme := r.URL.Scheme
	if scheme == "" {
		scheme = "https"
		if r.Header.Get("X-Forwarded-Proto") != "" {
			scheme = r.Header.Get("X-Forwarded-Proto")
		}
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

func GenerateHighlightsRSS(ep models.Episode, hs []models.EnrichedHighlight, baseURL string) (string, error) {
	p := podcast.New(
		fmt.Sprintf("%s: highlights", ep.Title),
		fmt.Sprintf("%s/api/episodes/%s/highlights.rss", baseURL, ep.ID),
		fmt.Sprintf("Curated highlights from %s", ep.YoutubeURL),
		&ep.CreatedAt, &ep.UpdatedAt,
	)

	for _, h := range hs {
		created := h.CreatedAt
		item := podcast.Item{
			GUID:        h.ID,
			Title:       itemTitle(h),
			Description: itemDescription(h),
			Link:        ItemLink(ep, h),
			PubDate:     &created,
		}
		if _, err := p.AddItem(item); err != nil {
			return "", fmt.Errorf("failed to add highlight %s to feed: %w", h.ID, err)
		}
	}

	return p.String(), nil
}

func itemTitle(h models.EnrichedHighlight) string {
	title := fmt.Sprintf("%s - %s", export.Timestamp(h.StartS), export.Timestamp(h.EndS))
	if len(h.Speakers) > 0 {
		title += " (" + strings.Join(h.Speakers, ", ") + ")"
	}
	return title
}

func itemDescription(h models.EnrichedHighlight) string {
	if strings.TrimSpace(h.Transcript) != "" {
		return h.Transcript
	}
	return fmt.Sprintf("Highlight at %s", export.Timestamp(h.StartS))
}

// ItemLink points at the edited clip, then the raw clip, then the source video
// at the highlight's start offset.
func ItemLink(ep models.Episode, h models.EnrichedHighlight) string {
	if h.EditedVideoLink != nil && *h.EditedVideoLink != "" {
		return *h.EditedVideoLink
	}
	if h.RawVideoLink != nil && *h.RawVideoLink != "" {
		return *h.RawVideoLink
	}
	u, err := url.Parse(ep.YoutubeURL)
	if err != nil {
		return ep.YoutubeURL
	}
	q := u.Query()
	q.Set("t", fmt.Sprintf("%ds", int(h.StartS)))
	u.RawQuery = q.Encode()
	return u.String()
}

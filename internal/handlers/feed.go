package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"podcast-highlighter/internal/feed"
	"podcast-highlighter/internal/models"
)

func (h *Handlers) GetHighlightsFeed(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	ep, err := h.episodes.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	hs, err := h.highlights.ListAll(r.Context(), models.HighlightFilters{EpisodeID: id})
	if err != nil {
		writeError(w, r, err)
		return
	}

	rss, err := feed.GenerateHighlightsRSS(ep, hs, feed.BaseURL(r, h.baseURL))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml")
	w.Write([]byte(rss))
}

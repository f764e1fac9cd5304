package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"podcast-highlighter/internal/models"
)

func (h *Handlers) IngestEpisode(w http.ResponseWriter, r *http.Request) {
	var req models.EpisodeIngest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ep, err := h.episodes.Ingest(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ep)
}

func (h *Handlers) ListEpisodes(w http.ResponseWriter, r *http.Request) {
	f := models.EpisodeFilters{Status: r.URL.Query().Get("status")}
	var err error
	if f.Limit, err = queryInt(r, "limit"); err != nil {
		writeError(w, r, err)
		return
	}
	if f.Offset, err = queryInt(r, "offset"); err != nil {
		writeError(w, r, err)
		return
	}
	eps, err := h.episodes.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, eps)
}

func (h *Handlers) GetEpisode(w http.ResponseWriter, r *http.Request) {
	ep, err := h.episodes.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ep)
}

func (h *Handlers) UpdateEpisode(w http.ResponseWriter, r *http.Request) {
	var patch models.EpisodePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	ep, err := h.episodes.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ep)
}

func (h *Handlers) DeleteEpisode(w http.ResponseWriter, r *http.Request) {
	if err := h.episodes.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, r, "episode deleted")
}

func (h *Handlers) GetEpisodeSegments(w http.ResponseWriter, r *http.Request) {
	segs, err := h.episodes.Segments(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, segs)
}

func (h *Handlers) GetEpisodeSpeakers(w http.ResponseWriter, r *http.Request) {
	sps, err := h.episodes.Speakers(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sps)
}

func (h *Handlers) RenameSpeaker(w http.ResponseWriter, r *http.Request) {
	var req models.SpeakerRename
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sp, err := h.episodes.RenameSpeaker(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sp)
}

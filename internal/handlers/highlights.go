package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"podcast-highlighter/internal/apperr"
	"podcast-highlighter/internal/export"
	"podcast-highlighter/internal/models"
)

func highlightFilters(r *http.Request) (models.HighlightFilters, error) {
	q := r.URL.Query()
	f := models.HighlightFilters{
		EpisodeID: q.Get("episode_id"),
		Status:    q.Get("status"),
		ProfileID: q.Get("profile_id"),
	}
	var err error
	if f.DateFrom, err = queryTime(r, "date_from", false); err != nil {
		return f, err
	}
	if f.DateTo, err = queryTime(r, "date_to", true); err != nil {
		return f, err
	}
	if f.Limit, err = queryInt(r, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = queryInt(r, "offset"); err != nil {
		return f, err
	}
	return f, nil
}

func (h *Handlers) ListHighlights(w http.ResponseWriter, r *http.Request) {
	f, err := highlightFilters(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	hs, err := h.highlights.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, hs)
}

func (h *Handlers) CreateHighlight(w http.ResponseWriter, r *http.Request) {
	var req models.HighlightCreate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := h.highlights.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, e)
}

func (h *Handlers) GetHighlight(w http.ResponseWriter, r *http.Request) {
	e, err := h.highlights.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, e)
}

func (h *Handlers) UpdateHighlight(w http.ResponseWriter, r *http.Request) {
	var patch models.HighlightPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := h.highlights.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, e)
}

func (h *Handlers) DeleteHighlight(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	deleted, err := h.highlights.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !deleted {
		writeError(w, r, apperr.NotFound("highlight", id))
		return
	}
	writeMessage(w, r, "highlight deleted")
}

// ExportHighlights renders every highlight matching the query filters; limit and offset are ignored.
func (h *Handlers) ExportHighlights(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	f, err := highlightFilters(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	hs, err := h.highlights.ListAll(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := format.Render(hs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
	w.Write(body)
}

func (h *Handlers) GetHighlightSegments(w http.ResponseWriter, r *http.Request) {
	segs, err := h.highlights.Segments(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, segs)
}

func (h *Handlers) AddHighlightSegment(w http.ResponseWriter, r *http.Request) {
	var req models.SegmentLinkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	segs, err := h.highlights.AddSegment(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, segs)
}

func (h *Handlers) ReplaceHighlightSegments(w http.ResponseWriter, r *http.Request) {
	var req models.SegmentReplaceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	segs, err := h.highlights.ReplaceSegments(r.Context(), mux.Vars(r)["id"], req.SegmentIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, segs)
}

func (h *Handlers) RemoveHighlightSegment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.highlights.RemoveSegment(r.Context(), vars["id"], vars["segment_id"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, r, "segment removed")
}

func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.highlights.Comments(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, comments)
}

func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req models.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.highlights.AddComment(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, c)
}

func (h *Handlers) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var req models.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.highlights.UpdateComment(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, c)
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.highlights.DeleteComment(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, r, "comment deleted")
}

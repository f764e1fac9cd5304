// Package handlers exposes the services over a gorilla/mux JSON API.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"podcast-highlighter/internal/apperr"
	"podcast-highlighter/internal/episodes"
	"podcast-highlighter/internal/highlights"
	"podcast-highlighter/internal/middleware"
	"podcast-highlighter/internal/prompts"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

type Handlers struct {
	episodes   *episodes.Service
	highlights *highlights.Service
	prompts    *prompts.Service
	baseURL    string
	commitSHA  string
}

func New(episodes *episodes.Service, highlights *highlights.Service, prompts *prompts.Service, baseURL, commitSHA string) *Handlers {
	return &Handlers{
		episodes:   episodes,
		highlights: highlights,
		prompts:    prompts,
		baseURL:    baseURL,
		commitSHA:  commitSHA,
	}
}

// Router registers every API route on a new router.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/episodes/ingest", h.IngestEpisode).Methods(http.MethodPost)
	api.HandleFunc("/episodes", h.ListEpisodes).Methods(http.MethodGet)
	api.HandleFunc("/episodes/{id}", h.GetEpisode).Methods(http.MethodGet)
	api.HandleFunc("/episodes/{id}", h.UpdateEpisode).Methods(http.MethodPut)
	api.HandleFunc("/episodes/{id}", h.DeleteEpisode).Methods(http.MethodDelete)
	api.HandleFunc("/episodes/{id}/segments", h.GetEpisodeSegments).Methods(http.MethodGet)
	api.HandleFunc("/episodes/{id}/speakers", h.GetEpisodeSpeakers).Methods(http.MethodGet)
	api.HandleFunc("/episodes/{id}/highlights.rss", h.GetHighlightsFeed).Methods(http.MethodGet)
	api.HandleFunc("/speakers/{id}", h.RenameSpeaker).Methods(http.MethodPut)

	api.HandleFunc("/prompts", h.ListPrompts).Methods(http.MethodGet)
	api.HandleFunc("/prompts", h.CreatePrompt).Methods(http.MethodPost)
	api.HandleFunc("/prompts/{id}", h.GetPrompt).Methods(http.MethodGet)
	api.HandleFunc("/prompts/{id}", h.UpdatePrompt).Methods(http.MethodPut)
	api.HandleFunc("/prompts/{id}", h.DeletePrompt).Methods(http.MethodDelete)
	api.HandleFunc("/social-profiles", h.ListSocialProfiles).Methods(http.MethodGet)
	api.HandleFunc("/social-profiles", h.CreateSocialProfile).Methods(http.MethodPost)

	api.HandleFunc("/highlights", h.ListHighlights).Methods(http.MethodGet)
	api.HandleFunc("/highlights", h.CreateHighlight).Methods(http.MethodPost)
	api.HandleFunc("/highlights/export/{format}", h.ExportHighlights).Methods(http.MethodGet)
	api.HandleFunc("/highlights/{id}", h.GetHighlight).Methods(http.MethodGet)
	api.HandleFunc("/highlights/{id}", h.UpdateHighlight).Methods(http.MethodPut)
	api.HandleFunc("/highlights/{id}", h.DeleteHighlight).Methods(http.MethodDelete)
	api.HandleFunc("/highlights/{id}/segments", h.GetHighlightSegments).Methods(http.MethodGet)
	api.HandleFunc("/highlights/{id}/segments", h.AddHighlightSegment).Methods(http.MethodPost)
	api.HandleFunc("/highlights/{id}/segments", h.ReplaceHighlightSegments).Methods(http.MethodPut)
	api.HandleFunc("/highlights/{id}/segments/{segment_id}", h.RemoveHighlightSegment).Methods(http.MethodDelete)
	api.HandleFunc("/highlights/{id}/comments", h.ListComments).Methods(http.MethodGet)
	api.HandleFunc("/highlights/{id}/comments", h.CreateComment).Methods(http.MethodPost)
	api.HandleFunc("/comments/{id}", h.UpdateComment).Methods(http.MethodPut)
	api.HandleFunc("/comments/{id}", h.DeleteComment).Methods(http.MethodDelete)

	return r
}

// Handler wraps the router with request logging and CORS.
func (h *Handlers) Handler(logger zerolog.Logger, origins []string) http.Handler {
	return middleware.Logging(logger)(middleware.CORS(origins)(h.Router()))
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "healthy", "commit": h.commitSHA})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to write response")
	}
}

func writeMessage(w http.ResponseWriter, r *http.Request, message string) {
	writeJSON(w, r, http.StatusOK, map[string]string{"message": message})
}

// writeError maps err to a status code. Server errors are logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		message = "internal server error"
	}
	writeJSON(w, r, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("body", "is required")
		}
		return apperr.Invalid("body", "malformed JSON: "+err.Error())
	}
	return nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Invalid(name, "must be an integer")
	}
	return n, nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperr.Invalid(name, "must be a boolean")
	}
	return b, nil
}

// queryTime accepts RFC3339 or a plain date. A plain date_to covers the whole day.
func queryTime(r *http.Request, name string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, apperr.Invalid(name, "must be an RFC3339 timestamp or YYYY-MM-DD date")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

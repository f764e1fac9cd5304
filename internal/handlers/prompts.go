package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"podcast-highlighter/internal/models"
)

func (h *Handlers) ListPrompts(w http.ResponseWriter, r *http.Request) {
	activeOnly, err := queryBool(r, "active_only")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ps, err := h.prompts.List(r.Context(), activeOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ps)
}

func (h *Handlers) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	var req models.PromptCreate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.prompts.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, p)
}

func (h *Handlers) GetPrompt(w http.ResponseWriter, r *http.Request) {
	p, err := h.prompts.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (h *Handlers) UpdatePrompt(w http.ResponseWriter, r *http.Request) {
	var patch models.PromptPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.prompts.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (h *Handlers) DeletePrompt(w http.ResponseWriter, r *http.Request) {
	if err := h.prompts.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, r, "prompt deleted")
}

func (h *Handlers) ListSocialProfiles(w http.ResponseWriter, r *http.Request) {
	ps, err := h.prompts.Profiles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ps)
}

func (h *Handlers) CreateSocialProfile(w http.ResponseWriter, r *http.Request) {
	var req models.SocialProfileCreate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.prompts.CreateProfile(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, p)
}

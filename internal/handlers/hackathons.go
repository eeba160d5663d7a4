package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirdesai22/hackollab/internal/services"
)

func (h *Handler) createHackathon(w http.ResponseWriter, r *http.Request) {
	var in services.HackathonInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	hk, err := h.hackathons.Create(r.Context(), principal(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, hk)
}

func (h *Handler) listHackathons(w http.ResponseWriter, r *http.Request) {
	list, err := h.hackathons.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) getHackathon(w http.ResponseWriter, r *http.Request) {
	hk, err := h.hackathons.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hk)
}

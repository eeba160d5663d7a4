package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) declareInterest(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID    string `json:"userId"`
		ProjectID string `json:"projectId"`
	}
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.interests.Declare(r.Context(), principal(r), in.UserID, in.ProjectID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) userInterests(w http.ResponseWriter, r *http.Request) {
	projects, err := h.interests.ListForUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProjectViews(projects))
}

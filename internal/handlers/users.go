package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirdesai22/hackollab/internal/services"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserViews(users))
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(*u))
}

func (h *Handler) upsertUser(w http.ResponseWriter, r *http.Request) {
	var in services.UpsertUserInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.users.Upsert(r.Context(), principal(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(*u))
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateProfileInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.users.UpdateMe(r.Context(), principal(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(*u))
}

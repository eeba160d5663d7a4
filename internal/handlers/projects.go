package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirdesai22/hackollab/internal/services"
)

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var in services.ProjectInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.projects.Create(r.Context(), principal(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, projectView{Project: *p, Creator: summary(p.Creator)})
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	projects, err := h.projects.List(r.Context(), services.ListFilter{
		Tech:       q.Get("tech"),
		Tags:       q.Get("tags"),
		Difficulty: q.Get("difficulty"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProjectViews(projects))
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProjectDetail(p))
}

func (h *Handler) myProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.Mine(r.Context(), chi.URLParam(r, "externalId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProjectDetails(projects))
}

func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request) {
	var in struct {
		InviteStatus string `json:"inviteStatus"`
	}
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.projects.UpdateInviteStatus(r.Context(), principal(r), chi.URLParam(r, "id"), in.InviteStatus)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProjectDetail(p))
}

func (h *Handler) projectInterest(w http.ResponseWriter, r *http.Request) {
	res, err := h.interests.DeclareForCaller(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirdesai22/hackollab/internal/models"
	"github.com/sirdesai22/hackollab/internal/services"
)

func (h *Handler) sendInvite(w http.ResponseWriter, r *http.Request) {
	var in services.SendInviteInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	inv, err := h.invites.Send(r.Context(), principal(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newInviteView(inv))
}

func (h *Handler) bulkInvite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProjectID string          `json:"projectId"`
		UserIDs   json.RawMessage `json:"userIds"`
		Role      string          `json:"role"`
	}
	if err := decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	// anything but a list of ids counts as no selection
	var ids []string
	if len(body.UserIDs) > 0 {
		if err := json.Unmarshal(body.UserIDs, &ids); err != nil {
			ids = nil
		}
	}
	created, err := h.invites.Bulk(r.Context(), principal(r), services.BulkInviteInput{
		ProjectID: body.ProjectID,
		UserIDs:   ids,
		Role:      body.Role,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	views := make([]inviteView, 0, len(created))
	for _, inv := range created {
		views = append(views, newInviteView(inv))
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Invites sent",
		"invites": views,
		"count":   len(views),
	})
}

func (h *Handler) respondInvite(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status string `json:"status"`
	}
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	inv, err := h.invites.Respond(r.Context(), principal(r), chi.URLParam(r, "id"), in.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newInviteView(inv))
}

func (h *Handler) writeInvites(w http.ResponseWriter, r *http.Request, invites []models.Invite, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newInviteViews(invites))
}

func (h *Handler) receivedInvites(w http.ResponseWriter, r *http.Request) {
	invites, err := h.invites.Received(r.Context(), r.URL.Query().Get("userId"))
	h.writeInvites(w, r, invites, err)
}

func (h *Handler) sentInvites(w http.ResponseWriter, r *http.Request) {
	invites, err := h.invites.Sent(r.Context(), chi.URLParam(r, "senderId"))
	h.writeInvites(w, r, invites, err)
}

func (h *Handler) projectInvites(w http.ResponseWriter, r *http.Request) {
	invites, err := h.invites.ForProject(r.Context(), chi.URLParam(r, "projectId"))
	h.writeInvites(w, r, invites, err)
}

func (h *Handler) externalInvites(w http.ResponseWriter, r *http.Request) {
	invites, err := h.invites.ReceivedByExternalID(r.Context(), chi.URLParam(r, "externalId"))
	h.writeInvites(w, r, invites, err)
}

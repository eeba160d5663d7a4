package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"
)

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := h.ping(ctx); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "error",
			"database": "unreachable",
			"error":    "database unreachable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "H@ckollab API",
		"endpoints": map[string]string{
			"users":      "/api/users",
			"projects":   "/api/projects",
			"hackathons": "/api/hackathons",
			"interests":  "/api/interests",
			"invites":    "/api/invites",
			"search":     "/api/search",
			"health":     "/health",
		},
	})
}

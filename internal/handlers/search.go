package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sirdesai22/hackollab/internal/apperr"
	"github.com/sirdesai22/hackollab/internal/elastic"
)

const (
	defaultSearchSize = 20
	maxSearchSize     = 100
)

func (h *Handler) searchIndex(w http.ResponseWriter, r *http.Request) {
	if h.search == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "Search is not enabled"})
		return
	}
	q := r.URL.Query()
	kind := q.Get("type")
	if kind == "" {
		kind = "projects"
	}
	size := defaultSearchSize
	if raw := q.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.writeError(w, r, apperr.Validation("size must be a positive integer"))
			return
		}
		size = min(n, maxSearchSize)
	}

	res, err := h.search.Search(r.Context(), kind, q.Get("q"), size)
	switch {
	case errors.Is(err, elastic.ErrUnknownType):
		h.writeError(w, r, apperr.Validation("type must be one of projects, users, hackathons"))
		return
	case err != nil:
		h.writeError(w, r, apperr.Wrap(apperr.KindUnavailable, "Search is unavailable", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

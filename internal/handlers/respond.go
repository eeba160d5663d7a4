package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/hlog"
	"github.com/sirdesai22/hackollab/internal/apperr"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as {"error": message}. Unexpected failures are
// logged; outside production their cause is returned to the client too.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	msg := apperr.Message(err)
	switch kind {
	case apperr.KindInternal, apperr.KindUnavailable:
		hlog.FromRequest(r).Error().Err(err).Str("kind", kind.String()).Msg("request failed")
		if kind == apperr.KindInternal && !h.production {
			msg = err.Error()
		}
	default:
		hlog.FromRequest(r).Debug().Err(err).Str("kind", kind.String()).Msg("request rejected")
	}
	writeJSON(w, kind.Status(), errorBody{Error: msg})
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperr.Wrap(apperr.KindValidation, "Invalid request body", err)
}

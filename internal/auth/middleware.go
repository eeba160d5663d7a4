package auth

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/hlog"
	"github.com/sirdesai22/hackollab/internal/metrics"
)

// Middleware rejects requests without a verifiable bearer token and stores
// the Principal in the request context. Failure reasons are logged but never
// returned to the client.
func Middleware(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				unauthorized(w)
				return
			}
			p, err := v.Verify(r.Context(), token)
			if err != nil {
				hlog.FromRequest(r).Debug().Err(err).Msg("token verification failed")
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	metrics.AuthFailures.Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}

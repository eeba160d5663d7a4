// Package services implements the H@ckollab workflows on top of a
// store.Store: user resolution, projects, hackathons, interests and invites.
// Every error returned is an *apperr.Error.
package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirdesai22/hackollab/internal/apperr"
	"github.com/sirdesai22/hackollab/internal/store"
)

// storeErr maps a store failure onto the API taxonomy.
func storeErr(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Conflict("Duplicate record")
	case errors.Is(err, store.ErrInviteNotPending):
		return apperr.Conflict("Invite has already been responded to")
	default:
		return apperr.Internal("Internal server error", err)
	}
}

// parseID parses a path or body id; malformed ids cannot exist, so they
// report notFound.
func parseID(raw, notFound string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperr.NotFound(notFound)
	}
	return id, nil
}

// normalizeSet trims values and drops empties and case-insensitive
// duplicates, keeping first-seen order.
func normalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	seen := map[string]bool{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

// SplitList splits a comma-separated query value.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return normalizeSet(strings.Split(raw, ","))
}

func teamSize(n int) (int, error) {
	switch {
	case n == 0:
		return 1, nil
	case n < 0:
		return 0, apperr.Validation("maxTeamSize must be at least 1")
	}
	return n, nil
}

package apperr

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Conflict("dup"), http.StatusBadRequest},
		{Unauthenticated("no"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Internal("boom", errors.New("x")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err).Status())
		})
	}
}

func TestWrappedErrorKeepsKind(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("Project not found"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "Project not found", Message(err))
}

func TestUnreachableDatabase(t *testing.T) {
	err := Internal("list projects", fmt.Errorf("query: %w", driver.ErrBadConn))
	assert.Equal(t, KindUnavailable, KindOf(err))
	assert.Equal(t, http.StatusServiceUnavailable, KindOf(err).Status())
	assert.Equal(t, "database unreachable", Message(err))

	assert.True(t, IsUnreachable(&pgconn.ConnectError{}))
	assert.False(t, IsUnreachable(errors.New("syntax error")))
	assert.False(t, IsUnreachable(nil))
}

func TestMessageHidesInternalCause(t *testing.T) {
	err := Internal("create invite", errors.New("pq: relation does not exist"))
	assert.Equal(t, "create invite", Message(err))
	assert.Equal(t, "Internal server error", Message(errors.New("raw")))
}

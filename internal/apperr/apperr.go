// Package apperr defines the error kinds surfaced by the HTTP API and their
// status codes.
package apperr

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Status maps a kind to its HTTP status. Conflict answers 400 because the
// frontend treats a duplicate interest as a bad request.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a client-safe message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) error      { return New(KindValidation, msg) }
func Unauthenticated(msg string) error { return New(KindUnauthenticated, msg) }
func Forbidden(msg string) error       { return New(KindForbidden, msg) }
func NotFound(msg string) error        { return New(KindNotFound, msg) }
func Conflict(msg string) error        { return New(KindConflict, msg) }

// Internal wraps an unexpected failure. Database connectivity failures are
// promoted to KindUnavailable.
func Internal(msg string, err error) error {
	if IsUnreachable(err) {
		return Wrap(KindUnavailable, "database unreachable", err)
	}
	return Wrap(KindInternal, msg, err)
}

// KindOf reports the kind of err; unknown errors are internal unless they
// look like a lost database connection.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if IsUnreachable(err) {
		return KindUnavailable
	}
	return KindInternal
}

// Message returns the client-facing text for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if IsUnreachable(err) {
		return "database unreachable"
	}
	return "Internal server error"
}

// IsUnreachable detects failures to reach the database server.
func IsUnreachable(err error) bool {
	if err == nil {
		return false
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

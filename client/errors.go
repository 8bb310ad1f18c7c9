package apiclient

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Kind classifies a failed call. Call sites branch on Kind, never on message
// text — the duplicate-email heuristic below is the single intentional exception.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not-found"
	KindServer         Kind = "server"
	KindNetwork        Kind = "network"
	KindUnknown        Kind = "unknown"
)

// Error is the single tagged error type every failure is normalized to.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int // 0 when no response was received
	cause      error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Cause() error { return e.cause }

// ErrKind exposes the kind as a string for packages that must not import this one.
func (e *Error) ErrKind() string { return string(e.Kind) }

// KindOf returns the classified kind of err, or KindUnknown.
func KindOf(err error) Kind {
	if apiErr, ok := errors.Cause(err).(*Error); ok {
		return apiErr.Kind
	}
	return KindUnknown
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusUnauthorized:
		return KindAuthentication
	case status == http.StatusForbidden:
		return KindAuthorization
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout:
		return KindNetwork
	case status >= http.StatusInternalServerError:
		return KindServer
	}
	return KindUnknown
}

// classifyResponse converts a non-2xx response body into an *Error.
func classifyResponse(status int, body []byte) *Error {
	msg := extractMessage(body)
	if msg == "" {
		msg = http.StatusText(status)
	}

	kind := kindForStatus(status)

	// backends report unique-violation duplicates with varying statuses;
	// an email duplicate is always a validation problem for the caller
	if isDuplicateEmail(msg) {
		return &Error{Kind: KindValidation, Message: "email already exists", StatusCode: status}
	}
	return &Error{Kind: kind, Message: msg, StatusCode: status}
}

// extractMessage pulls a human-readable message from string bodies, structured
// detail/message/error fields, or falls back for HTML error pages.
func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	if isHTML(trimmed) {
		return "the server returned an error page"
	}

	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return s
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err == nil {
		for _, key := range []string{"detail", "message", "error"} {
			if raw, ok := obj[key]; ok {
				if err := json.Unmarshal(raw, &s); err == nil && s != "" {
					return s
				}
			}
		}
		return trimmed
	}
	return trimmed
}

func isHTML(body string) bool {
	lower := strings.ToLower(body)
	return strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html")
}

func isDuplicateEmail(msg string) bool {
	lower := strings.ToLower(msg)
	if !strings.Contains(lower, "email") {
		return false
	}
	return strings.Contains(lower, "duplicate key") ||
		strings.Contains(lower, "unique constraint") ||
		strings.Contains(lower, "unique violation") ||
		strings.Contains(lower, "already exists")
}

// networkError wraps a transport-level failure (timeout, connection failure,
// cancellation) as a network-kind Error.
func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: err.Error(), cause: err}
}

// isTransient reports whether err warrants a retry for an idempotent read.
func isTransient(err error) bool {
	apiErr, ok := errors.Cause(err).(*Error)
	if !ok {
		return false
	}
	if apiErr.Kind != KindNetwork {
		return false
	}
	// a caller-side cancellation is not a backend hiccup
	if stderrors.Is(apiErr.cause, context.Canceled) {
		return false
	}
	return true
}

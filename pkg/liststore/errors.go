package liststore

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies remote store failures so callers can pick the
// documented recovery path (fallback scan, narrowed retry) or propagate.
type ErrorKind string

const (
	// KindNotFound covers missing lists and items. Reads normalize it to
	// an empty result; writes surface it.
	KindNotFound ErrorKind = "not_found"
	// KindUnauthorized means the session or token is invalid. Never retried.
	KindUnauthorized ErrorKind = "unauthorized"
	// KindUnsupportedQuery means the server rejected a filter or orderby
	// function it cannot evaluate on this list.
	KindUnsupportedQuery ErrorKind = "unsupported_query"
	// KindSchemaMismatch means a field in the payload is not recognized by
	// the list schema, or a literal had the wrong type.
	KindSchemaMismatch ErrorKind = "schema_mismatch"
	// KindThrottled is a transient server-side rejection.
	KindThrottled ErrorKind = "throttled"
	// KindGeneric is everything else.
	KindGeneric ErrorKind = "generic"
)

// Error is a classified remote store failure.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Code       string
	Message    string
	Operation  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("liststore: %s failed (%s/%d %s): %s",
		e.Operation, e.Kind, e.StatusCode, e.Code, e.Message)
}

func IsNotFound(err error) bool         { return hasKind(err, KindNotFound) }
func IsUnauthorized(err error) bool     { return hasKind(err, KindUnauthorized) }
func IsUnsupportedQuery(err error) bool { return hasKind(err, KindUnsupportedQuery) }
func IsSchemaMismatch(err error) bool   { return hasKind(err, KindSchemaMismatch) }

func hasKind(err error, kind ErrorKind) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// classify maps a non-2xx response onto an ErrorKind. The remote store is
// not consistent about codes, so the message text is consulted too.
func classify(op string, status int, body errorBody) *Error {
	e := &Error{
		Kind:       KindGeneric,
		StatusCode: status,
		Code:       body.Error.Code,
		Message:    body.Error.Message,
		Operation:  op,
	}

	msg := strings.ToLower(body.Error.Message)
	code := strings.ToLower(body.Error.Code)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindUnauthorized
	case status == http.StatusNotFound || code == "itemnotfound" || code == "listnotfound":
		e.Kind = KindNotFound
	case status == http.StatusTooManyRequests:
		e.Kind = KindThrottled
	case isUnsupportedQueryMessage(code, msg):
		e.Kind = KindUnsupportedQuery
	case isSchemaMismatchMessage(msg):
		e.Kind = KindSchemaMismatch
	}
	return e
}

func isUnsupportedQueryMessage(code, msg string) bool {
	if code == "notsupported" {
		return true
	}
	return strings.Contains(msg, "not supported") ||
		strings.Contains(msg, "cannot be used in the query") ||
		strings.Contains(msg, "is not supported in the query") ||
		strings.Contains(msg, "field not indexed")
}

func isSchemaMismatchMessage(msg string) bool {
	return strings.Contains(msg, "is not recognized") ||
		strings.Contains(msg, "field not recognized") ||
		strings.Contains(msg, "cannot convert the literal") ||
		strings.Contains(msg, "expected type")
}

package wiktionary

import (
	"fmt"
	"net/http"
)

// Kind classifies a NetworkError
type Kind int

const (
	// KindUnavailable means the connectivity probe failed
	KindUnavailable Kind = iota
	KindNotFound
	KindAccessDenied
	KindInvalidOperation
	// KindStatus is any other non-2xx response
	KindStatus
	// KindTransport covers timeouts, refused connections, oversized bodies and an open breaker
	KindTransport
	// KindParse means the payload arrived but was rejected
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindNotFound:
		return "not found"
	case KindAccessDenied:
		return "access denied"
	case KindInvalidOperation:
		return "invalid operation"
	case KindStatus:
		return "status"
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// NoCode marks errors without an HTTP status or parser code
const NoCode = -1

// NetworkError is returned by every fetch operation
type NetworkError struct {
	Kind    Kind
	Message string
	Code    int
	Err     error
}

func (e *NetworkError) Error() string {
	return e.Message
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// reported is true for failures that say something about the request
// itself rather than the health of the remote side
func (e *NetworkError) reported() bool {
	switch e.Kind {
	case KindNotFound, KindAccessDenied, KindInvalidOperation, KindParse:
		return true
	}
	return false
}

func statusError(code int, target string) *NetworkError {
	kind := KindStatus
	switch code {
	case http.StatusNotFound, http.StatusGone:
		kind = KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindAccessDenied
	case http.StatusBadRequest, http.StatusMethodNotAllowed, http.StatusNotImplemented:
		kind = KindInvalidOperation
	}
	return &NetworkError{
		Kind:    kind,
		Message: fmt.Sprintf("%s: %s (%d)", target, kind, code),
		Code:    code,
	}
}

func transportError(target string, err error) *NetworkError {
	return &NetworkError{
		Kind:    KindTransport,
		Message: fmt.Sprintf("%s: %v", target, err),
		Code:    NoCode,
		Err:     err,
	}
}

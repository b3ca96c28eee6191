// Package errors classifies request failures for the gateway client.
// Every failure surfaces to the caller; nothing here decides to retry.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is the category of a failed request.
type Kind int

const (
	// KindTimeout: the request did not complete within the client timeout or
	// the caller's deadline.
	KindTimeout Kind = iota + 1

	// KindNetwork: the request never produced an HTTP response
	// (DNS, connection refused, reset, malformed response).
	KindNetwork

	// KindHTTP: the gateway answered with a non-2xx status.
	KindHTTP

	// KindCanceled: the caller canceled the request context.
	KindCanceled
)

// String returns a short lowercase name, also used as a metrics label.
func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Sentinels matched by errors.Is against a *RequestError of the same kind.
var (
	ErrTimeout  = stderrors.New("request timed out")
	ErrNetwork  = stderrors.New("network error")
	ErrHTTP     = stderrors.New("http error")
	ErrCanceled = stderrors.New("request canceled")
)

func (k Kind) sentinel() error {
	switch k {
	case KindTimeout:
		return ErrTimeout
	case KindNetwork:
		return ErrNetwork
	case KindHTTP:
		return ErrHTTP
	case KindCanceled:
		return ErrCanceled
	}
	return nil
}

// RequestError describes one failed request.
type RequestError struct {
	Kind       Kind
	Op         string // "GET /policies"
	StatusCode int    // non-zero only for KindHTTP
	Body       string // response body for KindHTTP
	Underlying error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Kind == KindHTTP {
		if e.Body != "" {
			return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	}
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *RequestError) Unwrap() error { return e.Underlying }

// Is matches the sentinel for e.Kind.
func (e *RequestError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the kind of the first *RequestError in err's chain, or 0.
func KindOf(err error) Kind {
	var re *RequestError
	if stderrors.As(err, &re) {
		return re.Kind
	}
	return 0
}

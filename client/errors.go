package client

import (
	"errors"

	"github.com/HandSonic/LLM-Security-Gateway/client/internal/api"
	apierrors "github.com/HandSonic/LLM-Security-Gateway/client/internal/errors"
	"github.com/HandSonic/LLM-Security-Gateway/client/internal/types"
)

// Error is the error type returned for failed requests.
type Error = apierrors.RequestError

// ErrorKind categorises an Error.
type ErrorKind = apierrors.Kind

const (
	KindTimeout  = apierrors.KindTimeout
	KindNetwork  = apierrors.KindNetwork
	KindHTTP     = apierrors.KindHTTP
	KindCanceled = apierrors.KindCanceled
)

// Re-export sentinels so callers compare against a single symbol.
var (
	ErrTimeout  = apierrors.ErrTimeout
	ErrNetwork  = apierrors.ErrNetwork
	ErrHTTP     = apierrors.ErrHTTP
	ErrCanceled = apierrors.ErrCanceled
	ErrUpstream = api.ErrUpstream
)

// ErrInvalidRequest is returned before sending when a request cannot be built
// or fails validation.
var ErrInvalidRequest = types.ErrInvalid

// IsTimeout reports whether err is a timed-out request.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// IsNetwork reports whether err is a network failure.
func IsNetwork(err error) bool { return errors.Is(err, ErrNetwork) }

// IsHTTP reports whether err is a non-2xx response.
func IsHTTP(err error) bool { return errors.Is(err, ErrHTTP) }

// IsCanceled reports whether err is a canceled request.
func IsCanceled(err error) bool { return errors.Is(err, ErrCanceled) }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind { return apierrors.KindOf(err) }

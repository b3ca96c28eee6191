package errors

import (
	"context"
	stderrors "errors"
	"net"
	"strings"
)

// maxBodyInError bounds the body text kept on an HTTP error.
const maxBodyInError = 4096

// FromTransport classifies an error returned before any response was read,
// or while reading the body.
//
// Order matters: a canceled context is reported as such even if the transport
// also flags a timeout; deadlines and net.Error timeouts map to KindTimeout.
func FromTransport(op string, err error) *RequestError {
	kind := KindNetwork
	var ne net.Error
	switch {
	case stderrors.Is(err, context.Canceled):
		kind = KindCanceled
	case stderrors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case stderrors.As(err, &ne) && ne.Timeout():
		kind = KindTimeout
	}
	return &RequestError{Kind: kind, Op: op, Underlying: err}
}

// FromStatus builds the error for a non-2xx response.
func FromStatus(op string, statusCode int, body []byte) *RequestError {
	text := strings.TrimSpace(string(body))
	if len(text) > maxBodyInError {
		text = text[:maxBodyInError]
	}
	return &RequestError{Kind: KindHTTP, Op: op, StatusCode: statusCode, Body: text}
}

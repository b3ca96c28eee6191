package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"testing"
)

type fakeNetErr struct{ timeout bool }

func (e fakeNetErr) Error() string   { return "fake net error" }
func (e fakeNetErr) Timeout() bool   { return e.timeout }
func (e fakeNetErr) Temporary() bool { return false }

var _ net.Error = fakeNetErr{}

func TestFromTransport(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"canceled", &url.Error{Op: "Get", URL: "http://x", Err: context.Canceled}, KindCanceled},
		{"deadline", &url.Error{Op: "Get", URL: "http://x", Err: context.DeadlineExceeded}, KindTimeout},
		{"net timeout", &url.Error{Op: "Get", URL: "http://x", Err: fakeNetErr{timeout: true}}, KindTimeout},
		{"net other", &url.Error{Op: "Get", URL: "http://x", Err: fakeNetErr{}}, KindNetwork},
		{"refused", fmt.Errorf("dial tcp: connection refused"), KindNetwork},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := FromTransport("GET /stats", tc.err)
			if e.Kind != tc.want {
				t.Fatalf("kind = %v, want %v", e.Kind, tc.want)
			}
			if !stderrors.Is(e, tc.want.sentinel()) {
				t.Fatalf("errors.Is failed for %v", tc.want)
			}
			if !stderrors.Is(e, tc.err) {
				t.Fatalf("underlying error not in chain")
			}
		})
	}
}

func TestFromStatus(t *testing.T) {
	e := FromStatus("PUT /policies/1", 422, []byte("  {\"detail\":\"bad\"}\n"))
	if e.Kind != KindHTTP || e.StatusCode != 422 || e.Body != `{"detail":"bad"}` {
		t.Fatalf("unexpected error: %+v", e)
	}
	if !stderrors.Is(e, ErrHTTP) || stderrors.Is(e, ErrTimeout) {
		t.Fatalf("sentinel matching wrong")
	}
	if !strings.Contains(e.Error(), "HTTP 422") {
		t.Fatalf("message = %q", e.Error())
	}
}

func TestFromStatus_TruncatesBody(t *testing.T) {
	e := FromStatus("GET /logs", 500, []byte(strings.Repeat("x", maxBodyInError*2)))
	if len(e.Body) != maxBodyInError {
		t.Fatalf("body length = %d", len(e.Body))
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("load dashboard: %w", FromStatus("GET /stats", 500, nil))
	if KindOf(wrapped) != KindHTTP {
		t.Fatalf("KindOf through wrapping failed")
	}
	if KindOf(stderrors.New("plain")) != 0 {
		t.Fatalf("plain error should have no kind")
	}
	if Kind(99).String() != "unknown(99)" {
		t.Fatalf("unexpected string for unknown kind")
	}
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestNew_Defaults(t *testing.T) {
	c, err := New("http://example.com/")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cfg := c.Config()
	if cfg.Origin != "http://example.com" {
		t.Fatalf("origin = %q", cfg.Origin)
	}
	if cfg.BaseURL != "/api" {
		t.Fatalf("base url = %q, want /api", cfg.BaseURL)
	}
	if cfg.Timeout != 60*time.Second {
		t.Fatalf("timeout = %v, want 60s", cfg.Timeout)
	}
	if c.http.Timeout != 60*time.Second {
		t.Fatalf("http client timeout = %v", c.http.Timeout)
	}
}

func TestNew_RejectsBadOrigin(t *testing.T) {
	for _, origin := range []string{"", "   ", "example.com", "ftp://example.com", "http://example.com/api", "http://example.com?x=1"} {
		if _, err := New(origin); err == nil {
			t.Errorf("New(%q): expected error", origin)
		}
	}
}

func TestOptions_Validation(t *testing.T) {
	if _, err := New("http://example.com", WithHTTPTimeout(0)); err == nil {
		t.Fatal("expected error for zero timeout")
	}
	if _, err := New("http://example.com", WithBaseURL("api")); err == nil {
		t.Fatal("expected error for base url without leading slash")
	}
	if _, err := New("http://example.com", WithHTTPClient(nil)); err == nil {
		t.Fatal("expected error for nil http client")
	}
}

func TestOptions_AppliedRegardlessOfOrder(t *testing.T) {
	hc := &http.Client{Timeout: time.Hour}
	c, err := New("http://example.com", WithHTTPTimeout(5*time.Second), WithHTTPClient(hc), WithBaseURL("/gateway/"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.http.Timeout != 5*time.Second {
		t.Fatalf("timeout not applied: %v", c.http.Timeout)
	}
	if hc.Timeout != time.Hour {
		t.Fatalf("caller's http.Client was mutated")
	}
	if got := c.URL("/stats"); got != "http://example.com/gateway/stats" {
		t.Fatalf("URL = %q", got)
	}
}

func TestConfig_IsACopy(t *testing.T) {
	c, _ := New("http://example.com")
	cfg := c.Config()
	cfg.BaseURL = "/elsewhere"
	if c.Config().BaseURL != "/api" {
		t.Fatal("mutating the returned config changed the client")
	}
}

func TestURL_PrefixedWithBase(t *testing.T) {
	c, _ := New("http://example.com")
	for path, want := range map[string]string{
		"/policies": "http://example.com/api/policies",
		"stats":     "http://example.com/api/stats",
		"":          "http://example.com/api",
	} {
		if got := c.URL(path); got != want {
			t.Errorf("URL(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestDo_EveryRequestIsPrefixedWithBase(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	paths := []string{"/policies", "/policies/7", "/logs", "/stats", "/v1/chat/completions", "/"}
	for _, p := range paths {
		if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: p}); err != nil {
			t.Fatalf("Do(%s): %v", p, err)
		}
	}
	if len(seen) != len(paths) {
		t.Fatalf("server saw %d requests, want %d", len(seen), len(paths))
	}
	for _, p := range seen {
		if !strings.HasPrefix(p, "/api/") {
			t.Errorf("request path %q is not under /api", p)
		}
	}
}

func TestDo_SendsHeadersQueryAndJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Query().Get("limit") != "5" {
			t.Errorf("limit query = %q", r.URL.Query().Get("limit"))
		}
		if r.Header.Get("X-Trace") != "abc" {
			t.Errorf("X-Trace header = %q", r.Header.Get("X-Trace"))
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("content type = %q", ct)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["hello"] != "world" {
			t.Errorf("body = %v", body)
		}
		_, _ = w.Write([]byte(`"ok"`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	got, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/echo",
		Query:  map[string][]string{"limit": {"5"}},
		Body:   map[string]string{"hello": "world"},
		Header: map[string]string{"X-Trace": "abc"},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if string(got) != `"ok"` {
		t.Fatalf("body = %q", got)
	}
}

func TestDo_HTTPErrorCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Policy not found"}`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	_, err := c.Do(context.Background(), Request{Method: http.MethodPut, Path: "/policies/99"})
	if !IsHTTP(err) {
		t.Fatalf("expected http error, got %v", err)
	}
	if IsTimeout(err) || IsNetwork(err) {
		t.Fatalf("http error matched another kind: %v", err)
	}
	if StatusCode(err) != http.StatusNotFound {
		t.Fatalf("status = %d", StatusCode(err))
	}
	var e *Error
	if !errors.As(err, &e) || !strings.Contains(e.Body, "Policy not found") {
		t.Fatalf("body not carried: %+v", e)
	}
	if e.Op != "PUT /policies/99" {
		t.Fatalf("op = %q", e.Op)
	}
}

func TestDo_TimeoutNoLaterSuccess(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
		_, _ = w.Write([]byte(`{"late":true}`))
	}))
	defer srv.Close()
	defer close(release)

	c, _ := New(srv.URL, WithHTTPTimeout(50*time.Millisecond))
	start := time.Now()
	body, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/stats"})
	if !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if KindOf(err) != KindTimeout {
		t.Fatalf("kind = %v", KindOf(err))
	}
	if body != nil {
		t.Fatalf("timed-out request returned a body: %q", body)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("timeout not enforced, took %v", elapsed)
	}
}

func TestDo_CallerDeadlineIsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Do(ctx, Request{Path: "/stats"}); !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestDo_Canceled(t *testing.T) {
	c, _ := New("http://example.com", WithHTTPClient(&http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, r.Context().Err()
	})}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Do(ctx, Request{Path: "/stats"}); !IsCanceled(err) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestDo_NetworkError(t *testing.T) {
	rt := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	c, _ := New("http://example.com", WithHTTPClient(&http.Client{Transport: rt}))
	_, err := c.Do(context.Background(), Request{Path: "/stats"})
	if !IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	if StatusCode(err) != 0 {
		t.Fatalf("network error carries status %d", StatusCode(err))
	}
}

func TestDo_ClosedServerIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, _ := New(url)
	if _, err := c.Do(context.Background(), Request{Path: "/stats"}); !IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestDo_RejectsPathsOutsideBase(t *testing.T) {
	called := false
	c, _ := New("http://example.com", WithHTTPClient(&http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		called = true
		return &http.Response{StatusCode: 200, Body: http.NoBody, Header: make(http.Header)}, nil
	})}))
	for _, p := range []string{"", "policies", "http://evil.example/x", "//evil.example/x", "/../admin", "/policies/../stats", "/./stats", "/%2e%2e/admin"} {
		if _, err := c.Do(context.Background(), Request{Path: p}); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("Do(%q): expected ErrInvalidRequest, got %v", p, err)
		}
	}
	if called {
		t.Fatal("transport invoked for an invalid path")
	}
}

func TestDo_ConcurrentUse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Query().Get("n")))
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			want := strings.Repeat("x", n+1)
			got, err := c.Do(context.Background(), Request{Path: "/echo", Query: map[string][]string{"n": {want}}})
			if err != nil {
				errs <- err
				return
			}
			if string(got) != want {
				errs <- errors.New("cross-talk between concurrent requests")
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestStream_ReturnsUnreadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: one\n\n"))
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	resp, err := c.Stream(context.Background(), Request{Method: http.MethodPost, Path: "/v1/chat/completions"})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if string(b) != "data: one\n\n" {
		t.Fatalf("body = %q", b)
	}
}

func TestStream_HTTPErrorReadsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	_, err := c.Stream(context.Background(), Request{Method: http.MethodPost, Path: "/v1/chat/completions"})
	var e *Error
	if !errors.As(err, &e) || e.StatusCode != http.StatusBadGateway || e.Body != "upstream down" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStream_HTTPErrorBodyIsBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(strings.Repeat("x", 3*maxBodyInError)))
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	_, err := c.Stream(context.Background(), Request{Method: http.MethodPost, Path: "/v1/chat/completions"})
	var e *Error
	if !errors.As(err, &e) || e.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(e.Body) != maxBodyInError {
		t.Fatalf("body length = %d, want %d", len(e.Body), maxBodyInError)
	}
}

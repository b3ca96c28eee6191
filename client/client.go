// Package client is the SDK for the LLM security gateway's HTTP API.
//
// A Client is built once per process and shared: every request it issues is
// resolved against origin + base URL ("/api" by default) and bounded by a
// single timeout (60s by default, sized for LLM latency). The client never
// retries and installs no interceptors; failures surface to the caller as
// *Error values classified as timeout, network, http or canceled.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/HandSonic/LLM-Security-Gateway/client/internal/api"
	apierrors "github.com/HandSonic/LLM-Security-Gateway/client/internal/errors"
)

const (
	// DefaultBaseURL is the path prefix every request is resolved under.
	DefaultBaseURL = "/api"

	// DefaultTimeout bounds a single request end to end.
	DefaultTimeout = 60 * time.Second

	// maxBodyInError bounds how much of a failed stream's body is read.
	maxBodyInError = 4096
)

// Config is the immutable configuration of a Client.
type Config struct {
	Origin  string        // scheme://host[:port]
	BaseURL string        // path prefix, e.g. "/api"
	Timeout time.Duration // per request
}

// Client issues requests to the gateway API. It is safe for concurrent use.
type Client struct {
	origin  string
	baseURL string
	timeout time.Duration
	debug   bool

	http *http.Client
	rest *resty.Client
}

// New constructs a Client for the gateway reachable at origin
// (for example "http://localhost:8000"). Options may override the base URL,
// timeout and underlying http.Client.
func New(origin string, opts ...Option) (*Client, error) {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" {
		return nil, fmt.Errorf("origin cannot be empty")
	}
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parse origin: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("origin must be an absolute http(s) URL, got %q", origin)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		return nil, fmt.Errorf("origin must not carry a path, query or fragment, got %q", origin)
	}

	c := &Client{
		origin:  origin,
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		http:    &http.Client{},
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.http.Timeout = c.timeout
	if c.debug {
		c.http.Transport = &debugTransport{base: c.http.Transport}
	}

	c.rest = resty.NewWithClient(c.http).
		SetBaseURL(c.origin + c.baseURL).
		SetTimeout(c.timeout).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{})

	return c, nil
}

// Config returns a copy of the client's configuration.
func (c *Client) Config() Config {
	return Config{Origin: c.origin, BaseURL: c.baseURL, Timeout: c.timeout}
}

// URL returns the absolute URL a request for path resolves to.
func (c *Client) URL(path string) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.origin + c.baseURL + path
}

// Do issues req and returns the body of a 2xx response.
//
// Errors are *Error values: KindTimeout when the request exceeds the client
// timeout or ctx's deadline, KindNetwork when no response was received,
// KindHTTP for any non-2xx status (with status and body), KindCanceled when
// ctx is canceled.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	resp, err := c.execute(ctx, req, false)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// Stream issues req and returns the unread 2xx response. The caller must close
// its Body. The client timeout still bounds reading the body.
func (c *Client) Stream(ctx context.Context, req Request) (*http.Response, error) {
	resp, err := c.execute(ctx, req, true)
	if err != nil {
		return nil, err
	}
	return resp.RawResponse, nil
}

func (c *Client) execute(ctx context.Context, req Request, stream bool) (*resty.Response, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	op := method + " " + req.Path
	if err := validatePath(req.Path); err != nil {
		return nil, err
	}

	r := c.rest.R().SetContext(ctx)
	if req.Body != nil {
		r.SetBody(req.Body)
	}
	if len(req.Header) > 0 {
		r.SetHeaders(req.Header)
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if stream {
		r.SetDoNotParseResponse(true)
	}

	start := time.Now()
	resp, err := r.Execute(method, req.Path)
	if err != nil {
		if resp != nil && resp.RawResponse != nil && stream {
			_ = resp.RawBody().Close()
		}
		rerr := apierrors.FromTransport(op, err)
		observeRequest(method, rerr.Kind.String(), time.Since(start))
		return nil, rerr
	}

	if !resp.IsSuccess() {
		body := resp.Body()
		if stream {
			body = readErrorBody(resp.RawBody())
		}
		rerr := apierrors.FromStatus(op, resp.StatusCode(), body)
		observeRequest(method, rerr.Kind.String(), time.Since(start))
		return nil, rerr
	}

	observeRequest(method, "ok", time.Since(start))
	return resp, nil
}

// validatePath rejects paths that would escape the base URL, including
// dot segments.
func validatePath(path string) error {
	if path == "" || !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%w: path must start with '/': %q", ErrInvalidRequest, path)
	}
	if strings.HasPrefix(path, "//") {
		return fmt.Errorf("%w: path must be relative to the base URL: %q", ErrInvalidRequest, path)
	}
	u, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if u.IsAbs() || u.Host != "" {
		return fmt.Errorf("%w: path must be relative to the base URL: %q", ErrInvalidRequest, path)
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if seg == "." || seg == ".." {
			return fmt.Errorf("%w: path must not contain dot segments: %q", ErrInvalidRequest, path)
		}
	}
	return nil
}

// readErrorBody drains at most maxBodyInError bytes of a failed stream.
func readErrorBody(body io.ReadCloser) []byte {
	if body == nil {
		return nil
	}
	defer func() { _ = body.Close() }()
	b, _ := io.ReadAll(io.LimitReader(body, maxBodyInError))
	return b
}

// --------------------------------------------------------------------
// Gateway operations - delegated to internal/api
// --------------------------------------------------------------------

// ListPolicies returns every security policy.
func (c *Client) ListPolicies(ctx context.Context) ([]SecurityPolicy, error) {
	return api.ListPolicies(ctx, c)
}

// UpdatePolicy stores p's threshold and enabled flag. The gateway expects the
// full policy as the body, so pass a policy previously read from ListPolicies.
func (c *Client) UpdatePolicy(ctx context.Context, p SecurityPolicy) (*SecurityPolicy, error) {
	return api.UpdatePolicy(ctx, c, p)
}

// ListLogs returns up to limit recent audit logs (50 when limit <= 0).
func (c *Client) ListLogs(ctx context.Context, limit int) ([]AuditLog, error) {
	return api.ListLogs(ctx, c, limit)
}

// GetStats returns the dashboard counters.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	return api.GetStats(ctx, c)
}

// ChatCompletion sends a chat turn through the gateway. A refused turn is
// still a successful response; use ParseVerdict on its content.
func (c *Client) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	return api.ChatCompletion(ctx, c, req)
}

// StreamChatCompletion streams a chat turn, calling fn per chunk, and returns
// the accumulated assistant content.
func (c *Client) StreamChatCompletion(ctx context.Context, req ChatCompletionRequest, fn func(ChatCompletionChunk) error) (string, error) {
	return api.StreamChatCompletion(ctx, c, req, fn)
}

package client

// This file defines functional options that configure the Client during
// construction. The configuration is frozen once New returns.

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithBaseURL overrides the path prefix ("/api" by default). It must start
// with '/'; a trailing slash is dropped.
func WithBaseURL(prefix string) Option {
	return func(c *Client) error {
		if !strings.HasPrefix(prefix, "/") {
			return fmt.Errorf("base url must start with '/', got %q", prefix)
		}
		c.baseURL = strings.TrimRight(prefix, "/")
		return nil
	}
}

// WithHTTPTimeout sets the per-request timeout (60s by default).
//
// The timeout bounds the total time spent on a single request, including
// connection, redirects and reading the response body. Per-call context
// deadlines still apply on top of it. The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.timeout = d
		return nil
	}
}

// WithHTTPClient uses a copy of hc as the underlying client, keeping its
// transport and jar. Its Timeout is replaced by the client timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		cp := *hc
		c.http = &cp
		return nil
	}
}

// WithDebugLogging wraps the client's transport so each request/response is
// logged at debug level when enabled is true.
//
// Do not enable this option in production: dumps include headers and bodies.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		c.debug = c.debug || enabled
		return nil
	}
}

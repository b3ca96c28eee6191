package client

import (
	"net/http"
	"net/http/httputil"
	"os"

	"github.com/rs/zerolog/log"
)

// debugTransport dumps each request and response at debug level.
//
// Enable with WithDebugLogging(true), GUARD_DEBUG=true or DEBUG=true.
// Dumps include bodies; keep it out of production.
type debugTransport struct{ base http.RoundTripper }

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := dt.base
	if base == nil {
		base = http.DefaultTransport
	}

	if reqDump, err := httputil.DumpRequestOut(req, true); err == nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", string(reqDump)).Msg("HTTP request")
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, err
	}

	// Event streams are not dumped: DumpResponse would buffer until the stream ends.
	body := resp.Header.Get("Content-Type") != "text/event-stream"
	if respDump, err := httputil.DumpResponse(resp, body); err == nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Str("response_dump", string(respDump)).Msg("HTTP response")
	}
	return resp, nil
}

// debugLoggingRequested reports whether GUARD_DEBUG or DEBUG is "true".
func debugLoggingRequested() bool {
	return os.Getenv("GUARD_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}

// restyLogger routes resty's internal warnings through zerolog.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) { log.Error().Msgf(format, v...) }
func (restyLogger) Warnf(format string, v ...interface{})  { log.Warn().Msgf(format, v...) }
func (restyLogger) Debugf(format string, v ...interface{}) { log.Debug().Msgf(format, v...) }

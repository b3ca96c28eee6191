// Package console serves the gateway console: the route table rendered over
// HTTP in history mode, with every view loading its data through one shared
// gateway client.
package console

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/HandSonic/LLM-Security-Gateway/client"
	"github.com/HandSonic/LLM-Security-Gateway/internal/api/recovery"
	"github.com/HandSonic/LLM-Security-Gateway/internal/api/requestid"
	"github.com/HandSonic/LLM-Security-Gateway/internal/api/respond"
	"github.com/HandSonic/LLM-Security-Gateway/router"
)

// Gateway is the slice of the gateway client the views use.
type Gateway interface {
	ListPolicies(ctx context.Context) ([]client.SecurityPolicy, error)
	UpdatePolicy(ctx context.Context, p client.SecurityPolicy) (*client.SecurityPolicy, error)
	ListLogs(ctx context.Context, limit int) ([]client.AuditLog, error)
	GetStats(ctx context.Context) (*client.Stats, error)
	ChatCompletion(ctx context.Context, req client.ChatCompletionRequest) (*client.ChatCompletionResponse, error)
}

// HealthReporter reports cached dependency health for /healthz.
type HealthReporter interface {
	IsHealthy() bool
	Components() map[string]bool
}

// Options configures a Console.
type Options struct {
	Gateway  Gateway
	BasePath string // history base, "/" by default
	Logger   zerolog.Logger
	Health   HealthReporter // optional
	LogLimit int            // audit rows on the dashboard, client default when 0
}

// Console is the view host.
type Console struct {
	gw       Gateway
	table    *router.Table[http.Handler]
	pages    *pages
	log      zerolog.Logger
	health   HealthReporter
	logLimit int
}

// New builds the route table and templates.
func New(opts Options) (*Console, error) {
	if opts.Gateway == nil {
		return nil, errors.New("console: gateway client is required")
	}
	c := &Console{
		gw:       opts.Gateway,
		log:      opts.Logger,
		health:   opts.Health,
		logLimit: opts.LogLimit,
	}
	table, err := router.Default[http.Handler](opts.BasePath,
		&dashboardView{c: c},
		&chatView{c: c},
		&policyView{c: c},
	)
	if err != nil {
		return nil, fmt.Errorf("console: build routes: %w", err)
	}
	c.table = table
	if c.pages, err = parsePages(); err != nil {
		return nil, fmt.Errorf("console: parse templates: %w", err)
	}
	return c, nil
}

// Routes exposes the route table.
func (c *Console) Routes() *router.Table[http.Handler] { return c.table }

// Handler wires the console's HTTP surface.
func (c *Console) Handler() http.Handler {
	root := mux.NewRouter()
	root.Use(c.withLogger, requestid.Middleware, recovery.Middleware, accessLog)

	root.HandleFunc("/healthz", c.healthz).Methods(http.MethodGet)
	root.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	root.PathPrefix("/").HandlerFunc(c.navigate)
	return root
}

// navigate resolves the location against the route table and hands the
// request to the matched view.
func (c *Console) navigate(w http.ResponseWriter, r *http.Request) {
	route, err := c.table.Resolve(r.URL.Path)
	if err != nil {
		pageViews.WithLabelValues("not_found", r.Method).Inc()
		c.pages.render(w, r, http.StatusNotFound, "notfound", c.frame(r, err.Error(), nil))
		return
	}
	pageViews.WithLabelValues(route.Path, r.Method).Inc()
	route.View.ServeHTTP(w, r)
}

func (c *Console) healthz(w http.ResponseWriter, _ *http.Request) {
	status := "healthy"
	var components map[string]bool
	if c.health != nil {
		components = c.health.Components()
		if !c.health.IsHealthy() {
			status = "unhealthy"
		}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}

func (c *Console) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(c.log.WithContext(r.Context())))
	})
}

// errorStatus maps a gateway call failure to the status the console answers with.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, client.ErrInvalidRequest):
		return http.StatusBadRequest
	case client.IsTimeout(err):
		return http.StatusGatewayTimeout
	case client.StatusCode(err) == http.StatusNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// fail renders a view with the error and the mapped status.
func (c *Console) fail(w http.ResponseWriter, r *http.Request, view string, err error, data any) {
	status := errorStatus(err)
	ev := zerolog.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		ev = zerolog.Ctx(r.Context()).Error().Stack()
	}
	ev.Err(err).Str("view", view).Int("status", status).Msg("gateway call failed")
	c.pages.render(w, r, status, view, c.frame(r, err.Error(), data))
}

// Package health tracks whether the gateway behind the console is reachable.
package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Checker is implemented by component-level checkers.
type Checker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// Pinger exposes a health probe. HealthPing must return nil when the
// component is healthy.
type Pinger interface {
	HealthPing(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) HealthPing(ctx context.Context) error { return f(ctx) }

// PingChecker probes a Pinger on an interval and caches the result.
type PingChecker struct {
	name    string
	pinger  Pinger
	timeout time.Duration
	log     zerolog.Logger

	healthy atomic.Int32
	lastErr atomic.Value // string
}

func NewPingChecker(name string, p Pinger, log zerolog.Logger, probeTimeout time.Duration) *PingChecker {
	c := &PingChecker{name: name, pinger: p, timeout: probeTimeout, log: log}
	c.lastErr.Store("")
	return c
}

func (c *PingChecker) Name() string      { return c.name }
func (c *PingChecker) IsHealthy() bool   { return c.healthy.Load() == 1 }
func (c *PingChecker) LastError() string { return c.lastErr.Load().(string) }

// Probe runs one check and updates the cached state.
func (c *PingChecker) Probe(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	err := c.pinger.HealthPing(pctx)
	if err != nil {
		c.lastErr.Store(err.Error())
		if c.healthy.Swap(0) == 1 {
			c.log.Warn().Err(err).Str("component", c.name).Msg("health probe failed")
		}
		return false
	}
	c.lastErr.Store("")
	if c.healthy.Swap(1) == 0 {
		c.log.Info().Str("component", c.name).Msg("health probe ok")
	}
	return true
}

// Start probes immediately and then every interval until ctx is done.
func (c *PingChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	c.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Probe(ctx)
		}
	}
}

// ServiceChecker aggregates component checkers into a single health flag.
type ServiceChecker struct {
	healthy atomic.Int32
	deps    []Checker
	log     zerolog.Logger
}

func NewServiceChecker(log zerolog.Logger, deps ...Checker) *ServiceChecker {
	return &ServiceChecker{deps: deps, log: log}
}

// IsHealthy returns cached service health.
func (h *ServiceChecker) IsHealthy() bool { return h.healthy.Load() == 1 }

// Components reports the cached health of each dependency by name.
func (h *ServiceChecker) Components() map[string]bool {
	out := make(map[string]bool, len(h.deps))
	for _, c := range h.deps {
		out[c.Name()] = c.IsHealthy()
	}
	return out
}

func (h *ServiceChecker) eval(prev int32) int32 {
	all := int32(1)
	for _, c := range h.deps {
		if !c.IsHealthy() {
			all = 0
		}
	}
	h.healthy.Store(all)
	if all != prev {
		if all == 1 {
			h.log.Info().Msg("service health: UP")
		} else {
			h.log.Error().Msg("service health: DOWN")
		}
	}
	return all
}

// Start periodically evaluates dependency health and updates the service flag.
func (h *ServiceChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := h.eval(-1)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prev = h.eval(prev)
		}
	}
}

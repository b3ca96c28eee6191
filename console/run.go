package console

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/HandSonic/LLM-Security-Gateway/client"
	"github.com/HandSonic/LLM-Security-Gateway/internal/config"
	"github.com/HandSonic/LLM-Security-Gateway/internal/health"
)

// Run starts the console HTTP server and blocks until ctx is done or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	gw, err := client.New(cfg.GatewayOrigin,
		client.WithBaseURL(cfg.APIBase),
		client.WithHTTPTimeout(cfg.APITimeout),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build gateway client")
		return err
	}

	log.Info().
		Str("gateway", gw.URL("/")).
		Dur("timeout", cfg.APITimeout).
		Int("http_port", cfg.HTTPPort).
		Str("base_path", cfg.BasePath).
		Msg("Console starting")

	svcHealth := startHealthCheckers(ctx, cfg, log, gw)

	con, err := New(Options{
		Gateway:  gw,
		BasePath: cfg.BasePath,
		Logger:   log,
		Health:   svcHealth,
	})
	if err != nil {
		return err
	}

	server := newHTTPServer(ctx, cfg, con.Handler())
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// startHealthCheckers probes the gateway's stats endpoint in the background.
// The console starts regardless; /healthz reports the gateway's state.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, gw *client.Client) *health.ServiceChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	gwChecker := health.NewPingChecker("gateway", health.PingFunc(func(ctx context.Context) error {
		_, err := gw.GetStats(ctx)
		return err
	}), log, probeTimeout)
	go gwChecker.Start(ctx, interval)

	svcHealth := health.NewServiceChecker(log, gwChecker)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

// newHTTPServer leaves room in WriteTimeout for a chat turn that takes the
// full gateway timeout.
func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.APITimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

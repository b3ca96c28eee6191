package mcp

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/HandSonic/LLM-Security-Gateway/client"
	"github.com/HandSonic/LLM-Security-Gateway/internal/config"
	"github.com/HandSonic/LLM-Security-Gateway/internal/logger"
	"github.com/HandSonic/LLM-Security-Gateway/mcp/internal/handlers"
	"github.com/HandSonic/LLM-Security-Gateway/router"
)

// Configuration holds all settings for the MCP server
type mcpConfig struct {
	Gateway         *config.Config
	LogLevel        zerolog.Level
	ServerName      string
	ServerVersion   string
	HTTPAddr        string
	ShutdownTimeout time.Duration
	HTTPReadTimeout time.Duration
	HTTPIdleTimeout time.Duration
}

// loadConfig reads GUARD_* gateway settings plus MCP_* transport settings;
// command line flags override both.
func loadConfig() (*mcpConfig, error) {
	gw, err := config.New()
	if err != nil {
		return nil, err
	}
	cfg := &mcpConfig{
		Gateway:         gw,
		ServerName:      getEnvOrDefault("MCP_SERVER_NAME", "guard-mcp"),
		ServerVersion:   getEnvOrDefault("MCP_SERVER_VERSION", "0.1.0"),
		HTTPAddr:        getEnvOrDefault("MCP_HTTP_ADDR", ":5174"),
		ShutdownTimeout: parseDurationOrDefault("SHUTDOWN_TIMEOUT", "10s"),
		HTTPReadTimeout: parseDurationOrDefault("HTTP_READ_TIMEOUT", "5s"),
		HTTPIdleTimeout: parseDurationOrDefault("HTTP_IDLE_TIMEOUT", "120s"),
	}

	rawLogLevel := gw.LogLevel
	flag.StringVar(&cfg.Gateway.GatewayOrigin, "gateway", gw.GatewayOrigin, "Gateway origin, e.g. http://localhost:8000")
	flag.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "Listen address for the Streamable HTTP transport")
	flag.StringVar(&rawLogLevel, "log-level", rawLogLevel, "Log level: debug|info|warn|error")
	flag.Parse()

	if cfg.LogLevel, err = logger.ParseLevel(rawLogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initLogger initializes the logger with the configured level. Logs go to
// stderr so they never mix with the stdio transport.
func (c *mcpConfig) initLogger() {
	zerolog.SetGlobalLevel(c.LogLevel)
	log.Logger = logger.NewWithWriter(os.Stderr, c.ServerName).With().Caller().Logger()
}

// Helper functions
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(envKey, defaultValue string) time.Duration {
	if value := os.Getenv(envKey); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	d, _ := time.ParseDuration(defaultValue)
	return d
}

type toolRegisterer interface {
	RegisterTools(s *server.MCPServer) error
}

// NewServer builds an MCP server exposing the gateway tools and the console
// route table.
func NewServer(name, version string, gw handlers.Gateway, routes *router.Table[string]) (*server.MCPServer, error) {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
	)
	for _, h := range []toolRegisterer{
		handlers.NewGatewayHandler(gw),
		handlers.NewRouteHandler(routes),
	} {
		if err := h.RegisterTools(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// RunMCPServer starts the MCP server and blocks until shutdown.
func RunMCPServer() error {
	cfg, err := loadConfig()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	cfg.initLogger()

	gw, err := client.New(cfg.Gateway.GatewayOrigin,
		client.WithBaseURL(cfg.Gateway.APIBase),
		client.WithHTTPTimeout(cfg.Gateway.APITimeout),
	)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Failed to create gateway client")
		return err
	}
	log.Info().Str("gateway", gw.URL("/")).Msg("Gateway client created")

	routes, err := router.Default(cfg.Gateway.BasePath, "Dashboard", "Chat", "Policy")
	if err != nil {
		return err
	}
	s, err := NewServer(cfg.ServerName, cfg.ServerVersion, gw, routes)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register tools")
		return err
	}

	if shouldUseStdio() {
		log.Info().Msg("Starting guard MCP server (stdio transport)")
		return server.ServeStdio(s)
	}

	log.Info().Str("addr", cfg.HTTPAddr).Msg("Starting guard MCP server (Streamable HTTP)")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	streamSrv := server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath("/mcp"),
		server.WithHeartbeatInterval(30*time.Second),
	)
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      streamSrv,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: 0, // streaming responses have no deadline
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server error")
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during HTTP server shutdown")
	}
	if err := streamSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during MCP server shutdown")
	}
	log.Info().Msg("MCP server shutdown complete")
	return nil
}

// shouldUseStdio determines whether to use stdio transport based on environment
func shouldUseStdio() bool {
	if os.Getenv("MCP_STDIO") == "true" {
		return true
	}
	if os.Getenv("MCP_HTTP") == "true" {
		return false
	}
	// stdin that is not a terminal means we were launched by a host process
	if fileInfo, err := os.Stdin.Stat(); err == nil {
		return (fileInfo.Mode() & os.ModeCharDevice) == 0
	}
	return false
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/HandSonic/LLM-Security-Gateway/console"
	"github.com/HandSonic/LLM-Security-Gateway/internal/config"
	"github.com/HandSonic/LLM-Security-Gateway/internal/logger"
)

func main() {
	log := logger.New("guard-console")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Error().Err(err).Msg("Invalid log level")
		os.Exit(1)
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := console.Run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("guard-console exited with error")
		stop()
		os.Exit(1)
	}
}

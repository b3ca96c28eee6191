package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/HandSonic/LLM-Security-Gateway/client"
	"github.com/HandSonic/LLM-Security-Gateway/internal/config"
	"github.com/HandSonic/LLM-Security-Gateway/internal/logger"
	"github.com/HandSonic/LLM-Security-Gateway/internal/output"
)

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// app holds what every sub-command shares.
type app struct {
	gateway string
	apiBase string
	timeout time.Duration
	format  string
	debug   bool

	cfg     *config.Config
	printer *output.Printer
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "guardctl",
		Short:         "Inspect and operate an LLM security gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.gateway, "gateway", "", "Gateway origin, e.g. http://localhost:8000 (env GUARD_GATEWAY_ORIGIN)")
	flags.StringVar(&a.apiBase, "api-base", "", "API base path on the gateway (env GUARD_API_BASE)")
	flags.DurationVar(&a.timeout, "timeout", 0, "Per-request timeout (env GUARD_API_TIMEOUT)")
	flags.StringVarP(&a.format, "output", "o", "table", "Output format: table, json or yaml")
	flags.BoolVarP(&a.debug, "debug", "d", false, "Log requests and responses")

	rootCmd.AddCommand(newPoliciesCmd(a))
	rootCmd.AddCommand(newLogsCmd(a))
	rootCmd.AddCommand(newStatsCmd(a))
	rootCmd.AddCommand(newChatCmd(a))
	rootCmd.AddCommand(newRoutesCmd(a))
	rootCmd.AddCommand(newWaitCmd(a))

	return rootCmd
}

// setup loads GUARD_* settings and lets explicitly set flags override them.
func (a *app) setup(cmd *cobra.Command) error {
	level := zerolog.InfoLevel
	if a.debug {
		level = zerolog.DebugLevel
	}
	log.Logger = logger.NewConsole("guardctl", level)
	zerolog.SetGlobalLevel(level)

	cfg, err := config.New()
	if err != nil {
		return err
	}
	a.cfg = cfg

	flags := cmd.Flags()
	if !flags.Changed("gateway") {
		a.gateway = cfg.GatewayOrigin
	}
	if !flags.Changed("api-base") {
		a.apiBase = cfg.APIBase
	}
	if !flags.Changed("timeout") {
		a.timeout = cfg.APITimeout
	}

	format, err := output.ParseFormat(a.format)
	if err != nil {
		return err
	}
	a.printer = output.NewPrinter(cmd.OutOrStdout(), format)

	log.Debug().
		Str("gateway", a.gateway).
		Str("api_base", a.apiBase).
		Dur("timeout", a.timeout).
		Msg("guardctl configured")
	return nil
}

func (a *app) client() (*client.Client, error) {
	c, err := client.New(a.gateway,
		client.WithBaseURL(a.apiBase),
		client.WithHTTPTimeout(a.timeout),
		client.WithDebugLogging(a.debug),
	)
	if err != nil {
		return nil, fmt.Errorf("gateway client: %w", err)
	}
	return c, nil
}

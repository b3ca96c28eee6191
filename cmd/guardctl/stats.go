package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/HandSonic/LLM-Security-Gateway/internal/output"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show request and block totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			stats, err := c.GetStats(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.Emit(stats, func() *output.Table {
				t := output.NewTable("METRIC", "VALUE")
				t.AddRow("total_requests", strconv.Itoa(stats.TotalRequests))
				t.AddRow("blocked_requests", strconv.Itoa(stats.BlockedRequests))
				t.AddRow("block_rate", fmt.Sprintf("%.1f%%", stats.BlockRate*100))
				return t
			})
		},
	}
}

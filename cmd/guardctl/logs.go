package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/HandSonic/LLM-Security-Gateway/client"
	"github.com/HandSonic/LLM-Security-Gateway/internal/output"
)

const maxInputWidth = 48

func newLogsCmd(a *app) *cobra.Command {
	var (
		limit       int
		blockedOnly bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the most recent audited chat turns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			logs, err := c.ListLogs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if blockedOnly {
				kept := logs[:0]
				for _, l := range logs {
					if l.Blocked() {
						kept = append(kept, l)
					}
				}
				logs = kept
			}
			return a.printer.Emit(logs, func() *output.Table { return logTable(logs) })
		},
	}
	cmd.Flags().IntVar(&limit, "limit", client.DefaultLogLimit, "Number of rows to fetch")
	cmd.Flags().BoolVar(&blockedOnly, "blocked", false, "Only show blocked turns")
	return cmd
}

func logTable(logs []client.AuditLog) *output.Table {
	t := output.NewTable("ID", "TIME", "ACTION", "INPUT", "SCORE", "LATENCY")
	for _, l := range logs {
		score := ""
		if l.RiskScore != nil {
			score = strconv.FormatFloat(*l.RiskScore, 'f', 4, 64)
		}
		cells := []string{
			strconv.Itoa(l.ID),
			l.Timestamp.Local().Format("2006-01-02 15:04:05"),
			l.Action,
			truncate(l.UserInput, maxInputWidth),
			score,
			fmt.Sprintf("%.0fms", l.LatencyMS),
		}
		if l.Blocked() {
			t.AddMarkedRow(cells...)
			continue
		}
		t.AddRow(cells...)
	}
	return t
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/HandSonic/LLM-Security-Gateway/client"
	"github.com/HandSonic/LLM-Security-Gateway/internal/output"
)

func newPoliciesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policies",
		Short: "List and update per-category security policies",
	}
	cmd.AddCommand(newPoliciesListCmd(a))
	cmd.AddCommand(newPoliciesUpdateCmd(a))
	return cmd
}

func policyTable(policies ...client.SecurityPolicy) *output.Table {
	t := output.NewTable("ID", "CODE", "CATEGORY", "THRESHOLD", "ENABLED")
	for _, p := range policies {
		cells := []string{
			strconv.Itoa(p.ID),
			p.RiskCategory,
			p.RiskName,
			strconv.FormatFloat(p.Threshold, 'f', 2, 64),
			strconv.FormatBool(p.Enabled),
		}
		if !p.Enabled {
			t.AddMarkedRow(cells...)
			continue
		}
		t.AddRow(cells...)
	}
	return t
}

func newPoliciesListCmd(a *app) *cobra.Command {
	var enabledOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List security policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			policies, err := c.ListPolicies(cmd.Context())
			if err != nil {
				return err
			}
			if enabledOnly {
				kept := policies[:0]
				for _, p := range policies {
					if p.Enabled {
						kept = append(kept, p)
					}
				}
				policies = kept
			}
			return a.printer.Emit(policies, func() *output.Table { return policyTable(policies...) })
		},
	}
	cmd.Flags().BoolVar(&enabledOnly, "enabled-only", false, "Only show enabled policies")
	return cmd
}

func newPoliciesUpdateCmd(a *app) *cobra.Command {
	var (
		threshold float64
		enabled   bool
	)

	cmd := &cobra.Command{
		Use:   "update <id|code>",
		Short: "Update a policy's threshold and/or enabled flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("threshold") && !flags.Changed("enabled") {
				return fmt.Errorf("nothing to update: pass --threshold and/or --enabled")
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			policies, err := c.ListPolicies(ctx)
			if err != nil {
				return err
			}
			p, ok := findPolicy(policies, args[0])
			if !ok {
				return fmt.Errorf("no policy matches %q", args[0])
			}
			if flags.Changed("threshold") {
				p.Threshold = threshold
			}
			if flags.Changed("enabled") {
				p.Enabled = enabled
			}
			updated, err := c.UpdatePolicy(ctx, p)
			if err != nil {
				return err
			}
			log.Debug().Int("policy_id", updated.ID).Msg("policy updated")
			return a.printer.Emit(updated, func() *output.Table { return policyTable(*updated) })
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Block when the category score reaches this value (0..1)")
	cmd.Flags().BoolVar(&enabled, "enabled", true, "Enable or disable the policy")
	return cmd
}

// findPolicy matches a numeric id or a risk code.
func findPolicy(policies []client.SecurityPolicy, key string) (client.SecurityPolicy, bool) {
	id, idErr := strconv.Atoi(key)
	for _, p := range policies {
		if (idErr == nil && p.ID == id) || strings.EqualFold(p.RiskCategory, key) {
			return p, true
		}
	}
	return client.SecurityPolicy{}, false
}

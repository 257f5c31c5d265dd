package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"shortforge/internal/api"
	"shortforge/internal/apiclient"
	"shortforge/internal/preflight"
)

var errUnhealthy = errors.New("one or more health checks failed")

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var probeLLM bool
	var local bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check readiness of directories, credentials, binaries, and pipelines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, source, err := collectHealth(cmd, ctx, local, probeLLM)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				colorize := shouldColorize(cmd.OutOrStdout())
				lines := renderSectionHeader("Health ("+source+")", colorize)
				for _, check := range report.Checks {
					lines = append(lines, renderStatusLine(check.Name, readyKind(check.Ready), check.Detail, colorize))
				}
				for _, line := range lines {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
			}
			if !report.Healthy {
				return errUnhealthy
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&probeLLM, "probe-llm", false, "Send a live request to the LLM endpoint (local checks only)")
	cmd.Flags().BoolVar(&local, "local", false, "Run the checks in this process instead of asking the daemon")
	return cmd
}

// collectHealth asks the daemon when it answers and runs the preflight checks
// locally otherwise.
func collectHealth(cmd *cobra.Command, ctx *commandContext, local, probeLLM bool) (api.HealthReport, string, error) {
	if !local && !probeLLM {
		client, err := ctx.client()
		if err == nil {
			report, err := client.Health(cmd.Context())
			if err == nil {
				return report, "daemon", nil
			}
			if !apiclient.IsUnavailable(err) {
				return api.HealthReport{}, "", fmt.Errorf("health: %w", err)
			}
		}
	}

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return api.HealthReport{}, "", err
	}
	results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{ProbeLLM: probeLLM})
	report := api.HealthReport{Healthy: preflight.Passed(results)}
	for _, result := range results {
		report.Checks = append(report.Checks, api.HealthCheck{Name: result.Name, Ready: result.Passed, Detail: result.Detail})
	}
	return report, "local", nil
}

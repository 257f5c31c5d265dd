package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"shortforge/internal/api"
	"shortforge/internal/apiclient"
	"shortforge/internal/queue"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job with its options, result, and log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, closeReader, err := ctx.jobReader(cmd.Context())
			if err != nil {
				return err
			}
			defer closeReader()
			noteOffline(cmd, reader)

			job, err := reader.Job(cmd.Context(), args[0])
			if apiclient.IsNotFound(err) {
				return fmt.Errorf("job %s not found", args[0])
			}
			if err != nil {
				return fmt.Errorf("show job: %w", err)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, api.JobResponse{Job: job})
			}
			for _, line := range renderJobDetails(job, shouldColorize(cmd.OutOrStdout())) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var offset int
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var want queue.Status
			if statusFilter != "" {
				status, ok := queue.ParseStatus(statusFilter)
				if !ok {
					return fmt.Errorf("unknown status %q", statusFilter)
				}
				want = status
			}
			reader, closeReader, err := ctx.jobReader(cmd.Context())
			if err != nil {
				return err
			}
			defer closeReader()
			noteOffline(cmd, reader)

			page, err := reader.Jobs(cmd.Context(), limit, offset)
			if err != nil {
				return fmt.Errorf("list jobs: %w", err)
			}
			if want != "" {
				page.Jobs = slices.DeleteFunc(page.Jobs, func(job api.Job) bool { return job.Status != string(want) })
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, page)
			}
			out := cmd.OutOrStdout()
			if len(page.Jobs) == 0 {
				fmt.Fprintln(out, "No jobs found")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Kind", "Status", "Progress", "Score", "Created", "Input"},
				jobRows(page.Jobs),
				3, 4,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", api.DefaultListLimit, "Maximum jobs to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Jobs to skip")
	cmd.Flags().StringVar(&statusFilter, "status", "", "Only show jobs in this status (applied to the fetched page)")
	return cmd
}

func noteOffline(cmd *cobra.Command, reader jobReader) {
	if reader.Offline() {
		fmt.Fprintln(cmd.ErrOrStderr(), "daemon not reachable; reading the local job database")
	}
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"shortforge/internal/api"
	"shortforge/internal/apiclient"
)

const defaultPollInterval = time.Second

func newClipCommand(ctx *commandContext) *cobra.Command {
	var opts api.ClipOptions
	var noCaptions bool
	var wait bool

	cmd := &cobra.Command{
		Use:   "clip <url>",
		Short: "Queue a clip job for a source video URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("no-captions") {
				burn := !noCaptions
				opts.BurnCaptions = &burn
			}
			resp, err := client.SubmitClip(cmd.Context(), api.ClipRequest{URL: args[0], Options: &opts})
			if err != nil {
				return submitError(err, ctx)
			}
			return reportSubmitted(cmd, ctx, client, resp, wait)
		},
	}

	cmd.Flags().Float64Var(&opts.MinDuration, "min-duration", 0, "Shortest clip in seconds (default from config)")
	cmd.Flags().Float64Var(&opts.MaxDuration, "max-duration", 0, "Longest clip in seconds (default from config)")
	cmd.Flags().IntVar(&opts.MaxClips, "max-clips", 0, "Candidates to consider (default from config)")
	cmd.Flags().BoolVar(&noCaptions, "no-captions", false, "Do not burn captions into the clip")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait for the job to finish")
	return cmd
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var opts api.GenerateOptions
	var wait bool

	cmd := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Queue a generate job that scripts, narrates, and assembles a video about a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			resp, err := client.SubmitGenerate(cmd.Context(), api.GenerateRequest{Topic: args[0], Options: &opts})
			if err != nil {
				return submitError(err, ctx)
			}
			return reportSubmitted(cmd, ctx, client, resp, wait)
		},
	}

	cmd.Flags().StringVar(&opts.Voice, "voice", "", "Narration voice (default from config)")
	cmd.Flags().IntVar(&opts.MaxFootage, "max-footage", 0, "Stock clips to download (default from config)")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait for the job to finish")
	return cmd
}

func submitError(err error, ctx *commandContext) error {
	if apiclient.IsUnavailable(err) {
		cfg, _ := ctx.ensureConfig()
		return wrapDialError(err, ctx.apiAddress(cfg))
	}
	return fmt.Errorf("submit job: %w", err)
}

func reportSubmitted(cmd *cobra.Command, ctx *commandContext, client *apiclient.Client, resp api.EnqueueResponse, wait bool) error {
	if !wait {
		if ctx.jsonOutput() {
			return writeJSON(cmd, resp)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Queued job %s (%s)\n", resp.ID, resp.Status)
		return nil
	}

	job, err := waitForJob(cmd.Context(), client, resp.ID, defaultPollInterval, func(job api.Job) {
		if !ctx.jsonOutput() {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s %s\n", shortID(job.ID), job.Status, formatProgress(job.Progress))
		}
	})
	if err != nil {
		return err
	}
	if ctx.jsonOutput() {
		if err := writeJSON(cmd, api.JobResponse{Job: job}); err != nil {
			return err
		}
	} else {
		for _, line := range renderJobDetails(job, shouldColorize(cmd.OutOrStdout())) {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	}
	if job.Status == "failed" {
		return fmt.Errorf("job %s failed", job.ID)
	}
	return nil
}

// waitForJob polls until the job is terminal, calling onChange whenever the
// status or progress moves.
func waitForJob(ctx context.Context, client *apiclient.Client, id string, interval time.Duration, onChange func(api.Job)) (api.Job, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastStatus, lastProgress := "", -1
	for {
		job, err := client.Job(ctx, id)
		if err != nil {
			return api.Job{}, fmt.Errorf("poll job %s: %w", id, err)
		}
		if job.Status != lastStatus || job.Progress != lastProgress {
			lastStatus, lastProgress = job.Status, job.Progress
			if onChange != nil {
				onChange(job)
			}
		}
		if job.Status == "completed" || job.Status == "failed" {
			return job, nil
		}
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shortforge/internal/api"
	"shortforge/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, worker, and dependency status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				cfg, _ := ctx.ensureConfig()
				return wrapDialError(err, ctx.apiAddress(cfg))
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, status)
			}
			for _, line := range renderStatus(status, shouldColorize(cmd.OutOrStdout())) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func renderStatus(status api.DaemonStatus, colorize bool) []string {
	lines := renderSectionHeader("Daemon", colorize)
	daemonKind, daemonText := statusError, "Stopped"
	if status.Running {
		daemonKind, daemonText = statusOK, fmt.Sprintf("Running (pid %d)", status.PID)
	}
	lines = append(lines,
		renderStatusLine("Daemon", daemonKind, daemonText, colorize),
		renderStatusLine("Job database", statusInfo, status.QueueDBPath, colorize),
		renderStatusLine("Lock file", statusInfo, status.LockFilePath, colorize),
	)

	wf := status.Workflow
	workerKind, workerText := statusWarn, "Idle"
	if !wf.Running {
		workerKind, workerText = statusError, "Stopped"
	} else if wf.CurrentJob != "" {
		workerKind, workerText = statusOK, "Processing "+shortID(wf.CurrentJob)
	}
	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Worker", colorize)...)
	lines = append(lines,
		renderStatusLine("Worker", workerKind, workerText, colorize),
		renderStatusLine("Queue depth", statusInfo, strconv.Itoa(wf.QueueDepth), colorize),
	)
	if wf.LastJob != nil {
		lines = append(lines, renderStatusLine("Last job", jobStatusKind(wf.LastJob.Status),
			fmt.Sprintf("%s %s %s", shortID(wf.LastJob.ID), wf.LastJob.Kind, wf.LastJob.Status), colorize))
	}
	if wf.LastError != "" {
		lines = append(lines, renderStatusLine("Last error", statusError, wf.LastError, colorize))
	}
	for _, h := range wf.StageHealth {
		detail := h.Detail
		if detail == "" {
			detail = "ready"
		}
		lines = append(lines, renderStatusLine("Pipeline "+h.Name, readyKind(h.Ready), detail, colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Jobs", colorize)...)
	rows := make([][]string, 0, len(wf.QueueStats))
	for _, s := range queue.AllStatuses() {
		rows = append(rows, []string{string(s), strconv.Itoa(wf.QueueStats[string(s)])})
	}
	lines = append(lines, renderTable([]string{"Status", "Count"}, rows, 1))

	if len(status.Dependencies) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
		for _, dep := range status.Dependencies {
			kind, detail := statusOK, dep.Command
			if !dep.Available {
				kind, detail = statusError, dep.Detail
				if dep.Optional {
					kind = statusWarn
				}
			}
			lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		}
	}
	return lines
}

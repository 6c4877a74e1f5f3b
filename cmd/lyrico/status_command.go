package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"lyrico/internal/api"
	"lyrico/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			client := ctx.client()
			if client == nil {
				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, "not running", colorize))
				return renderQueueSection(cmd, ctx, colorize)
			}

			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			renderDaemonStatus(out, status, colorize)
			return nil
		},
	}
}

func renderDaemonStatus(out io.Writer, status api.DaemonStatus, colorize bool) {
	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(out, line)
	}
	runningKind := statusError
	if status.Running {
		runningKind = statusOK
	}
	fmt.Fprintln(out, renderStatusLine("Daemon", runningKind, "", colorize))
	fmt.Fprintln(out, renderStatusLine("Queue DB", statusInfo, status.QueueDBPath, colorize))
	if status.Workflow.LastError != "" {
		fmt.Fprintln(out, renderStatusLine("Last error", statusError, status.Workflow.LastError, colorize))
	}

	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Stages", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, health := range status.Workflow.StageHealth {
		kind := statusOK
		if !health.Ready {
			kind = statusError
		}
		fmt.Fprintln(out, renderStatusLine(health.Name, kind, health.Detail, colorize))
	}

	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Queue", colorize) {
		fmt.Fprintln(out, line)
	}
	rows := buildQueueStatusRows(status.Workflow.QueueStats)
	if len(rows) == 0 {
		fmt.Fprintln(out, statusIndent+"Queue is empty")
		return
	}
	fmt.Fprintln(out, renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
}

func renderQueueSection(cmd *cobra.Command, ctx *commandContext, colorize bool) error {
	return ctx.withQueue(func(client *daemonClient, store *queue.Store) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out)
		for _, line := range renderSectionHeader("Queue", colorize) {
			fmt.Fprintln(out, line)
		}

		var stats map[string]int
		if client != nil {
			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			stats = status.Workflow.QueueStats
		} else {
			raw, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			stats = api.MergeQueueStats(raw)
		}

		rows := buildQueueStatusRows(stats)
		if len(rows) == 0 {
			fmt.Fprintln(out, statusIndent+"Queue is empty")
			return nil
		}
		fmt.Fprintln(out, renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
		return nil
	})
}

func buildQueueStatusRows(stats map[string]int) [][]string {
	known := queue.AllStatuses()
	rows := make([][]string, 0, len(stats))
	seen := make(map[string]struct{}, len(stats))
	for _, status := range known {
		if count, ok := stats[string(status)]; ok && count > 0 {
			rows = append(rows, []string{string(status), fmt.Sprintf("%d", count)})
			seen[string(status)] = struct{}{}
		}
	}
	extras := make([]string, 0)
	for status, count := range stats {
		if _, ok := seen[status]; ok || count == 0 {
			continue
		}
		extras = append(extras, status)
	}
	sort.Strings(extras)
	for _, status := range extras {
		rows = append(rows, []string{status, fmt.Sprintf("%d", stats[status])})
	}
	return rows
}

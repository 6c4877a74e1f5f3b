package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lyrico/internal/api"
	"lyrico/internal/queue"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage the render queue",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsRetryCommand(ctx))
	jobsCmd.AddCommand(newJobsClearCommand(ctx))

	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List render jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(func(client *daemonClient, store *queue.Store) error {
				var views []api.JobView
				if client != nil {
					fetched, err := client.ListJobs(cmd.Context(), listStatuses)
					if err != nil {
						return err
					}
					views = fetched
				} else {
					statuses, err := parseStatuses(listStatuses)
					if err != nil {
						return err
					}
					jobs, err := store.List(cmd.Context(), statuses...)
					if err != nil {
						return err
					}
					views = api.FromJobs(jobs)
				}

				if len(views) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Reference", "Title", "Status", "Progress", "Updated"},
					buildJobRows(views),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by job status (repeatable)")
	return cmd
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|reference>",
		Short: "Show a single render job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			return ctx.withQueue(func(client *daemonClient, store *queue.Store) error {
				var view *api.JobView
				if client != nil {
					fetched, err := client.GetJob(cmd.Context(), key)
					if err != nil {
						return err
					}
					view = fetched
				} else {
					var job *queue.Job
					var err error
					if id, parseErr := strconv.ParseInt(key, 10, 64); parseErr == nil {
						job, err = store.GetByID(cmd.Context(), id)
					} else {
						job, err = store.GetByReference(cmd.Context(), key)
					}
					if err != nil {
						return err
					}
					if job != nil {
						converted := api.FromJob(job)
						view = &converted
					}
				}
				if view == nil {
					return fmt.Errorf("job %q not found", key)
				}
				printJob(cmd, view)
				return nil
			})
		},
	}
}

func newJobsRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id ...]",
		Short: "Reset failed jobs back to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
				if err != nil {
					return fmt.Errorf("invalid job id %q", arg)
				}
				ids = append(ids, id)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.RetryFailed(cmd.Context(), ids...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %d job(s) to pending\n", count)
			return nil
		},
	}
}

func newJobsClearCommand(ctx *commandContext) *cobra.Command {
	var clearCompleted bool
	var clearFailed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove jobs from the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			var count int64
			switch {
			case clearCompleted:
				count, err = store.ClearCompleted(cmd.Context())
			case clearFailed:
				count, err = store.ClearFailed(cmd.Context())
			default:
				count, err = store.Clear(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d job(s)\n", count)
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearCompleted, "completed", false, "Remove only completed jobs")
	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove only failed jobs")
	cmd.MarkFlagsMutuallyExclusive("completed", "failed")
	return cmd
}

func printJob(cmd *cobra.Command, view *api.JobView) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Job #%d\n", view.ID)
	fmt.Fprintf(out, "  Reference: %s\n", view.Reference)
	if view.Title != "" {
		fmt.Fprintf(out, "  Title:     %s\n", view.Title)
	}
	if view.Language != "" {
		fmt.Fprintf(out, "  Language:  %s\n", view.Language)
	}
	fmt.Fprintf(out, "  Status:    %s\n", view.Status)
	fmt.Fprintf(out, "  Progress:  %s\n", formatProgress(view.Progress))
	if view.DurationSeconds > 0 {
		fmt.Fprintf(out, "  Duration:  %.1fs\n", view.DurationSeconds)
	}
	if view.ResultURL != "" {
		fmt.Fprintf(out, "  Result:    %s\n", view.ResultURL)
	}
	if view.ErrorMessage != "" {
		fmt.Fprintf(out, "  Error:     %s\n", view.ErrorMessage)
	}
	if view.UpdatedAt != "" {
		fmt.Fprintf(out, "  Updated:   %s\n", view.UpdatedAt)
	}
}

func parseStatuses(values []string) ([]queue.Status, error) {
	statuses := make([]queue.Status, 0, len(values))
	for _, value := range values {
		parsed, ok := queue.ParseStatus(value)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", value)
		}
		statuses = append(statuses, parsed)
	}
	return statuses, nil
}

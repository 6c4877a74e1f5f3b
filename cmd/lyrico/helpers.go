package main

import (
	"fmt"
	"strings"

	"lyrico/internal/api"
)

const titleColumnWidth = 40

func buildJobRows(views []api.JobView) [][]string {
	rows := make([][]string, 0, len(views))
	for _, view := range views {
		rows = append(rows, []string{
			fmt.Sprintf("%d", view.ID),
			view.Reference,
			truncate(view.Title, titleColumnWidth),
			view.Status,
			formatPercent(view.Progress.Percent),
			view.UpdatedAt,
		})
	}
	return rows
}

func formatProgress(progress api.JobProgress) string {
	label := strings.TrimSpace(progress.Stage)
	if message := strings.TrimSpace(progress.Message); message != "" {
		if label != "" {
			label += " - " + message
		} else {
			label = message
		}
	}
	percent := formatPercent(progress.Percent)
	if label == "" {
		return percent
	}
	return fmt.Sprintf("%s (%s)", label, percent)
}

func formatPercent(value float64) string {
	if value <= 0 {
		return "0%"
	}
	if value >= 100 {
		return "100%"
	}
	return fmt.Sprintf("%.0f%%", value)
}

func truncate(value string, limit int) string {
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}

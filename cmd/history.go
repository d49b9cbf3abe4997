package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oseda-dev/oseda/internal/models"
	"github.com/oseda-dev/oseda/internal/output"
	"github.com/oseda-dev/oseda/internal/store"
)

var (
	historyLimit   int
	historyProject string
	historyKind    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded checks and deploys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyRun(cmd.Context())
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "Maximum number of entries")
	historyCmd.Flags().StringVar(&historyProject, "project", "", "Only show this project")
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "Only show check or deploy entries")
	rootCmd.AddCommand(historyCmd)
}

func historyRun(ctx context.Context) error {
	kind := models.EventKind(historyKind)
	if kind != "" && kind != models.EventCheck && kind != models.EventDeploy {
		return fmt.Errorf("unknown kind %q (want check or deploy)", historyKind)
	}

	s, err := getStore()
	if err != nil {
		return err
	}

	events, err := s.ListEvents(ctx, store.EventFilter{
		Project: historyProject,
		Kind:    kind,
		Limit:   historyLimit,
	})
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	if len(events) == 0 {
		ui.Info("No history recorded yet")
		return nil
	}

	table := ui.Table([]string{"When", "Kind", "Project", "Status", "Phase", "Remote"})
	for _, e := range events {
		table.Append([]string{
			timeAgo(e.CreatedAt),
			string(e.Kind),
			output.Cyan(e.Project),
			output.StatusColor(string(e.Status)),
			e.Phase,
			e.Remote,
		})
	}
	table.Render()

	if ui.Verbose {
		for _, e := range events {
			if e.Message != "" {
				ui.VerboseLog("%s %s: %s", e.ID, e.Project, e.Message)
			}
		}
	}
	return nil
}

// timeAgo returns a human-readable relative time string.
func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	}
}

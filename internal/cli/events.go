package cli

import (
	"strings"

	"tasktree-cli/internal/store"

	"github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
	var (
		limit  int
		entity string
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the event log",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List events (oldest-first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			f := store.EventFilter{EntityID: strings.TrimSpace(entity), Limit: limit}
			if !all {
				pid, err := currentProject(ctx, app, st)
				if err != nil {
					return writeErr(cmd, err)
				}
				f.ProjectID = pid
			}
			evs, err := st.ListEvents(ctx, f)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": evs})
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 200, "Max events to return (0 = all)")
	listCmd.Flags().StringVar(&entity, "entity", "", "Only events for this task or project id")
	listCmd.Flags().BoolVar(&all, "all-projects", false, "Do not filter by the current project")

	cmd.AddCommand(listCmd)
	return cmd
}

package cli

import (
	"tasktree-cli/internal/store"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize storage (creates .tasktree/ for SQLite and applies migrations)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			out := map[string]any{
				"driver": st.Driver(),
				"dir":    st.Dir,
			}
			if project != "" {
				p, err := st.CreateProject(ctx, project)
				if err != nil {
					return writeErr(cmd, err)
				}
				cfg := app.config()
				cfg.CurrentProject = p.ID
				if err := store.SaveConfig(cfg); err != nil {
					return writeErr(cmd, err)
				}
				out["project"] = p
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().StringVar(&project, "project-name", "", "Also create a first project and make it current")
	return cmd
}

package cli

import (
	"strings"

	"tasktree-cli/internal/store"

	"github.com/spf13/cobra"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Project commands",
	}
	cmd.AddCommand(newProjectsCreateCmd(app))
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsUseCmd(app))
	cmd.AddCommand(newProjectsArchiveCmd(app))
	return cmd
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	var (
		name string
		use  bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			p, err := st.CreateProject(ctx, strings.TrimSpace(name))
			if err != nil {
				return writeErr(cmd, err)
			}
			if use {
				cfg := app.config()
				cfg.CurrentProject = p.ID
				if err := store.SaveConfig(cfg); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().BoolVar(&use, "use", false, "Make the new project current")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			ps, err := st.ListProjects(ctx, all)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": ps,
				"meta": map[string]any{"current": app.Project},
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include archived projects")
	return cmd
}

func newProjectsUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <project-id>",
		Short: "Set the current project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			p, err := st.GetProject(ctx, strings.TrimSpace(args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg := app.config()
			cfg.CurrentProject = p.ID
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}
}

func newProjectsArchiveCmd(app *App) *cobra.Command {
	var unarchive bool

	cmd := &cobra.Command{
		Use:   "archive <project-id>",
		Short: "Archive (or unarchive) a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			id := strings.TrimSpace(args[0])
			if err := st.ArchiveProject(ctx, id, !unarchive); err != nil {
				return writeErr(cmd, err)
			}
			p, err := st.GetProject(ctx, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}
	cmd.Flags().BoolVar(&unarchive, "undo", false, "Unarchive instead")
	return cmd
}

package cli

import (
	"tasktree-cli/internal/store"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the user config file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective config (file plus env overrides)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *app.config()
			cfg.ApplyEnv(envLookup)
			tree, drag := engineOptions(cfg.Engine)
			return writeOut(cmd, app, map[string]any{
				"data": cfg,
				"meta": map[string]any{"tree": tree, "drag": drag},
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := store.ConfigPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	})
	return cmd
}

package cli

import (
	"path/filepath"
	"strings"

	"tasktree-cli/internal/gitrepo"
	"tasktree-cli/internal/publish"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var (
		toDir            string
		includeCompleted bool
		overwrite        bool
		commit           bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the current project's task tree as Markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if strings.TrimSpace(toDir) != "" {
				if toDir, err = filepath.Abs(toDir); err != nil {
					return writeErr(cmd, err)
				}
			}
			res, err := publish.WriteProject(ctx, s.st, s.projectID, toDir, publish.WriteOptions{
				IncludeCompleted: includeCompleted,
				Overwrite:        overwrite,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			app.logger().Debug("published project", "project", s.projectID, "files", len(res.Written))

			msg := "Publish: " + s.projectID
			meta := map[string]any{"project": s.projectID}
			if commit {
				committed, err := gitrepo.CommitPaths(ctx, toDir, res.Written, msg)
				if err != nil {
					return writeErr(cmd, err)
				}
				meta["committed"] = committed
				return writeOut(cmd, app, map[string]any{"data": res, "meta": meta})
			}
			return writeOut(cmd, app, map[string]any{
				"data": res,
				"meta": meta,
				"_hints": []string{
					"tasktree publish --to " + toDir + " --overwrite --commit",
					"git -C " + toDir + " add -A && git -C " + toDir + " commit -m \"" + msg + "\"",
				},
			})
		},
	}

	cmd.Flags().StringVar(&toDir, "to", "", "Output directory")
	cmd.Flags().BoolVar(&includeCompleted, "include-completed", false, "Include completed tasks and their subtasks")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace files that already exist")
	cmd.Flags().BoolVar(&commit, "commit", false, "Commit the written files if --to is inside a git repo")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

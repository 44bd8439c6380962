package cli

import (
	"errors"

	"tasktree-cli/internal/engine"

	"github.com/spf13/cobra"
)

var errDoctorProblemsFound = errors.New("doctor: problems found")

func newDoctorCmd(app *App) *cobra.Command {
	var fail, fix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the current project's tree (contiguity, depths, order keys)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			b, err := newBoard(ctx, app, s.st, s.projectID)
			if err != nil {
				return writeErr(cmd, err)
			}
			tree := b.Snapshot()
			problems := tree.Validate()

			repaired := 0
			if fix && len(problems) > 0 {
				patches := engine.Repair(tree)
				if err := engine.Commit(ctx, s.st, patches); err != nil {
					return writeErr(cmd, persistFailure(err))
				}
				repaired = len(patches)
				problems = tree.Validate()
			}

			meta := map[string]any{
				"project":  s.projectID,
				"tasks":    tree.Len(),
				"problems": len(problems),
				"repaired": repaired,
			}
			var hints []string
			if len(problems) > 0 && !fix {
				hints = append(hints, "tasktree doctor --fix")
			}
			if err := writeOut(cmd, app, map[string]any{
				"data":   problems,
				"meta":   meta,
				"_hints": hints,
			}); err != nil {
				return err
			}

			if fail && len(problems) > 0 {
				return errDoctorProblemsFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if problems remain")
	cmd.Flags().BoolVar(&fix, "fix", false, "Renumber order keys to be dense again")
	return cmd
}

package cli

import (
	"strings"

	"tasktree-cli/internal/dragintent"
	"tasktree-cli/internal/engine"

	"github.com/spf13/cobra"
)

// newDropCmd replays a pointer drop: it hit-tests (x, y) against the list geometry, classifies
// the intent the way the TUI does, and applies it.
func newDropCmd(app *App) *cobra.Command {
	var (
		layout dragintent.Layout
		p      dragintent.Pointer
		dryRun bool
	)
	engineFlags := engineFlagSet()

	cmd := &cobra.Command{
		Use:   "drop <task-id>",
		Short: "Drop a task at pointer coordinates over the list",
		Example: strings.TrimSpace(`
  # Row 2's nest band (rows are 40 high, name column from x=60)
  tasktree drop task-abcdefgh --x 200 --y 100

  # Preview without writing
  tasktree drop task-abcdefgh --x 10 --y 20 --dry-run
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := applyEngineFlags(engineFlags, &app.config().Engine); err != nil {
				return writeErr(cmd, err)
			}
			st, err := openStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			id := strings.TrimSpace(args[0])
			pid, err := projectForTask(cmd, st, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := newBoard(ctx, app, st, pid)
			if err != nil {
				return writeErr(cmd, err)
			}

			s, ok := b.Begin(id)
			if !ok {
				return writeErr(cmd, errRejected(id, engine.ReasonCompleted))
			}
			in := b.Classify(s, p, layout)
			s = s.WithIntent(in)

			if dryRun {
				res := engine.Apply(b.Snapshot(), s, in, b.DragOptions())
				return writeOut(cmd, app, map[string]any{
					"data": res,
					"meta": map[string]any{"dryRun": true, "pointer": p, "layout": layout},
				})
			}

			res, err := b.Drop(ctx, s, in)
			if err != nil {
				return writeErr(cmd, persistFailure(err))
			}
			if !res.Applied {
				return writeErr(cmd, errRejected(id, res.Reason))
			}
			return writeOut(cmd, app, moveOutput(b, res))
		},
	}

	cmd.Flags().Float64Var(&p.X, "x", 0, "Pointer x")
	cmd.Flags().Float64Var(&p.Y, "y", 0, "Pointer y")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify and compute patches without writing")
	cmd.Flags().AddFlagSet(layoutFlagSet(&layout))
	cmd.Flags().AddFlagSet(engineFlags)
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	return cmd
}

package cli

import (
	"errors"
	"fmt"
	"strings"

	"tasktree-cli/internal/dragintent"
	"tasktree-cli/internal/engine"
	"tasktree-cli/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newTasksNestCmd(app *App) *cobra.Command {
	var under string
	engineFlags := engineFlagSet()

	cmd := &cobra.Command{
		Use:   "nest <task-id>",
		Short: "Make a task the last child of --under",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMove(cmd, app, engineFlags, args[0], dragintent.Intent{Kind: dragintent.Nest, TargetID: strings.TrimSpace(under)})
		},
	}
	cmd.Flags().StringVar(&under, "under", "", "New parent task id")
	cmd.Flags().AddFlagSet(engineFlags)
	_ = cmd.MarkFlagRequired("under")
	return cmd
}

func newTasksUnnestCmd(app *App) *cobra.Command {
	engineFlags := engineFlagSet()
	cmd := &cobra.Command{
		Use:   "unnest <task-id>",
		Short: "Promote a task one level, placing it after its former parent's subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMove(cmd, app, engineFlags, args[0], dragintent.Intent{Kind: dragintent.Unnest})
		},
	}
	cmd.Flags().AddFlagSet(engineFlags)
	return cmd
}

func newTasksMoveCmd(app *App) *cobra.Command {
	var before, after string
	var toEnd bool
	engineFlags := engineFlagSet()

	cmd := &cobra.Command{
		Use:   "move <task-id>",
		Short: "Reorder a task (with its subtree) --before, --after, or to the --end",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in dragintent.Intent
			n := 0
			if strings.TrimSpace(before) != "" {
				in, n = dragintent.Intent{Kind: dragintent.ReorderBefore, TargetID: strings.TrimSpace(before)}, n+1
			}
			if strings.TrimSpace(after) != "" {
				in, n = dragintent.Intent{Kind: dragintent.ReorderAfter, TargetID: strings.TrimSpace(after)}, n+1
			}
			if toEnd {
				in, n = dragintent.Intent{Kind: dragintent.ReorderToEnd}, n+1
			}
			if n != 1 {
				return writeErr(cmd, errors.New("exactly one of --before, --after or --end is required"))
			}
			return runMove(cmd, app, engineFlags, args[0], in)
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "Place immediately before this task")
	cmd.Flags().StringVar(&after, "after", "", "Place immediately after this task and its subtree")
	cmd.Flags().BoolVar(&toEnd, "end", false, "Place at the very end of the list")
	cmd.Flags().AddFlagSet(engineFlags)
	return cmd
}

// runMove applies one explicit intent through the same board path a pointer drop uses.
func runMove(cmd *cobra.Command, app *App, engineFlags *pflag.FlagSet, rawID string, in dragintent.Intent) error {
	ctx := cmd.Context()
	if err := applyEngineFlags(engineFlags, &app.config().Engine); err != nil {
		return writeErr(cmd, err)
	}
	st, err := openStore(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer st.Close()

	id := strings.TrimSpace(rawID)
	t, err := st.GetTask(ctx, id)
	if err != nil {
		return writeErr(cmd, err)
	}
	b, err := newBoard(ctx, app, st, t.ProjectID)
	if err != nil {
		return writeErr(cmd, err)
	}

	s, ok := b.Begin(id)
	if !ok {
		reason := engine.ReasonNotFound
		if t.IsCompleted {
			reason = engine.ReasonCompleted
		}
		return writeErr(cmd, errRejected(id, reason))
	}
	res, err := b.Drop(ctx, s.WithIntent(in), in)
	if err != nil {
		return writeErr(cmd, persistFailure(err))
	}
	if !res.Applied {
		return writeErr(cmd, errRejected(id, res.Reason))
	}
	return writeOut(cmd, app, moveOutput(b, res))
}

func moveOutput(b *engine.Board, res engine.Result) map[string]any {
	return map[string]any{
		"data": res,
		"meta": map[string]any{
			"project": b.ProjectID(),
			"moved":   res.Move.MovedIDs,
			"order":   orderIDs(b),
		},
	}
}

func orderIDs(b *engine.Board) []string {
	tasks := b.Snapshot().Tasks()
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

// persistFailure prefixes the user-facing notice to a commit error.
func persistFailure(err error) error {
	var pe *engine.PersistError
	if errors.As(err, &pe) {
		return fmt.Errorf("%s (%w)", pe.UserMessage(), err)
	}
	return err
}

// projectForTask is used by commands that take a task id but operate on its whole project.
func projectForTask(cmd *cobra.Command, st *store.Store, id string) (string, error) {
	t, err := st.GetTask(cmd.Context(), id)
	if err != nil {
		return "", err
	}
	return t.ProjectID, nil
}

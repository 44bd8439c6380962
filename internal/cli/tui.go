package cli

import (
	"context"

	"tasktree-cli/internal/flattree"
	"tasktree-cli/internal/model"
	"tasktree-cli/internal/store"
	"tasktree-cli/internal/tui"

	"github.com/spf13/cobra"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive task list (mouse drag-and-drop)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.Close()

	p, err := s.st.GetProject(ctx, s.projectID)
	if err != nil {
		return writeErr(cmd, err)
	}
	treeOpts, dragOpts := tuiEngineOptions(app.config().Engine)
	b := newBoardWith(app, s.st, s.projectID, treeOpts, dragOpts)
	if err := b.Reload(ctx); err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(ctx, b, tui.Options{
		Title:   p.Name,
		Actions: tuiActions{app: app, st: s.st, projectID: s.projectID},
	})
}

// tuiActions backs the list's add and complete keys with the same code paths as
// `tasks add` and `tasks complete`.
type tuiActions struct {
	app       *App
	st        *store.Store
	projectID string
}

func (a tuiActions) Add(ctx context.Context, title, parentID string) (model.Task, error) {
	roots, err := a.st.LoadTree(ctx, a.projectID)
	if err != nil {
		return model.Task{}, err
	}
	treeOpts, _ := engineOptions(a.app.config().Engine)
	t, _, err := addTask(ctx, a.app, a.st, flattree.Flatten(roots, treeOpts), model.Task{ProjectID: a.projectID, Title: title}, parentID)
	return t, err
}

func (a tuiActions) SetCompleted(ctx context.Context, id string, done bool) error {
	if err := a.st.SetCompleted(ctx, id, done); err != nil {
		return err
	}
	evType := "task.complete"
	if !done {
		evType = "task.reopen"
	}
	recordEvent(ctx, a.app, a.st, model.Event{ProjectID: a.projectID, Type: evType, EntityID: id})
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tasktree-cli/internal/engine"
	"tasktree-cli/internal/flattree"
	"tasktree-cli/internal/model"
	"tasktree-cli/internal/store"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksCompleteCmd(app, true))
	cmd.AddCommand(newTasksCompleteCmd(app, false))
	cmd.AddCommand(newTasksDatesCmd(app))
	cmd.AddCommand(newTasksRenameCmd(app))
	cmd.AddCommand(newTasksRmCmd(app))
	cmd.AddCommand(newTasksNestCmd(app))
	cmd.AddCommand(newTasksUnnestCmd(app))
	cmd.AddCommand(newTasksMoveCmd(app))
	return cmd
}

// session bundles what most task commands need: an open store and the resolved project.
type session struct {
	st        *store.Store
	projectID string
}

func openSession(ctx context.Context, app *App) (*session, error) {
	st, err := openStore(ctx, app)
	if err != nil {
		return nil, err
	}
	pid, err := currentProject(ctx, app, st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return &session{st: st, projectID: pid}, nil
}

func (s *session) Close() error { return s.st.Close() }

// outline renders a flattened tree as an indented list.
type outline []model.Task

func (o outline) Text() string {
	if len(o) == 0 {
		return "(no tasks)"
	}
	var b strings.Builder
	for _, t := range o {
		mark := "[ ]"
		if t.IsCompleted {
			mark = "[x]"
		}
		fmt.Fprintf(&b, "%s%s %s  %s", strings.Repeat("  ", t.Depth), mark, t.Title, t.ID)
		if r := dateRange(t.StartDate, t.EndDate); r != "" {
			fmt.Fprintf(&b, "  (%s)", r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func dateRange(start, end *model.Date) string {
	switch {
	case start == nil && end == nil:
		return ""
	case start == nil:
		return "until " + end.String()
	case end == nil || *start == *end:
		return start.String()
	default:
		return start.String() + " → " + end.String()
	}
}

func newTasksAddCmd(app *App) *cobra.Command {
	var title, parent, start, end string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task as the last root, or as the last child of --parent",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			sd, err := model.ParseOptionalDate(start)
			if err != nil {
				return writeErr(cmd, err)
			}
			ed, err := model.ParseOptionalDate(end)
			if err != nil {
				return writeErr(cmd, err)
			}
			if sd != nil && ed != nil && ed.Before(*sd) {
				return writeErr(cmd, fmt.Errorf("--end %s is before --start %s", ed, sd))
			}

			b, err := newBoard(ctx, app, s.st, s.projectID)
			if err != nil {
				return writeErr(cmd, err)
			}
			task := model.Task{ProjectID: s.projectID, Title: strings.TrimSpace(title), StartDate: sd, EndDate: ed}
			created, shifted, err := addTask(ctx, app, s.st, b.Snapshot(), task, strings.TrimSpace(parent))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": created,
				"meta": map[string]any{"shifted": shifted},
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent task id")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

// addTask places task at the end of parent's children (or the roots), shifts the order keys of
// the tasks after it and inserts the row. It returns the stored task and how many others moved.
func addTask(ctx context.Context, app *App, st *store.Store, tree *flattree.Tree, task model.Task, parent string) (model.Task, int, error) {
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" {
		return model.Task{}, 0, errors.New("task title is empty")
	}
	if parent != "" {
		p, ok := tree.Find(parent)
		if !ok {
			return model.Task{}, 0, fmt.Errorf("parent %s is not in project %s", parent, task.ProjectID)
		}
		flattree.ClampToParent(&task, p.StartDate, p.EndDate)
	}
	placed, shifted, err := engine.Insert(tree, task, parent)
	if err != nil {
		return model.Task{}, 0, err
	}
	if err := engine.Commit(ctx, st, shifted); err != nil {
		return model.Task{}, 0, persistFailure(err)
	}
	created, err := st.CreateTask(ctx, store.NewTask{
		ProjectID: task.ProjectID,
		ParentID:  placed.ParentID,
		Title:     placed.Title,
		StartDate: placed.StartDate,
		EndDate:   placed.EndDate,
		OrderKey:  placed.OrderKey,
	})
	if err != nil {
		return model.Task{}, 0, err
	}
	created.Depth = placed.Depth
	recordEvent(ctx, app, st, model.Event{ProjectID: created.ProjectID, Type: "task.create", EntityID: created.ID, Payload: created})
	return created, len(shifted), nil
}

func newTasksListCmd(app *App) *cobra.Command {
	var nested bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the current project's tasks in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if nested {
				roots, err := s.st.LoadTree(ctx, s.projectID)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": roots, "meta": map[string]any{"project": s.projectID}})
			}

			b, err := newBoard(ctx, app, s.st, s.projectID)
			if err != nil {
				return writeErr(cmd, err)
			}
			tasks := b.Snapshot().Tasks()
			if app.Format == "text" {
				return writeOut(cmd, app, outline(tasks))
			}
			return writeOut(cmd, app, map[string]any{
				"data": tasks,
				"meta": map[string]any{"project": s.projectID, "count": len(tasks)},
			})
		},
	}
	cmd.Flags().BoolVar(&nested, "nested", false, "Return the nested shape instead of the flat list")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			t, err := st.GetTask(ctx, strings.TrimSpace(args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := newBoard(ctx, app, st, t.ProjectID)
			if err != nil {
				return writeErr(cmd, err)
			}
			tree := b.Snapshot()
			var children []string
			if i := tree.IndexOf(t.ID); i >= 0 {
				t.Depth = tree.At(i).Depth
				for _, id := range tree.SpanIDs(t.ID)[1:] {
					if c, ok := tree.Find(id); ok && c.ParentID != nil && *c.ParentID == t.ID {
						children = append(children, id)
					}
				}
			}
			return writeOut(cmd, app, map[string]any{
				"data": t,
				"meta": map[string]any{"children": children},
			})
		},
	}
}

func newTasksCompleteCmd(app *App, completed bool) *cobra.Command {
	use, short, evType := "complete <task-id>", "Mark a task completed", "task.complete"
	if !completed {
		use, short, evType = "reopen <task-id>", "Mark a task not completed", "task.reopen"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateTask(cmd, app, args[0], evType, func(ctx context.Context, st *store.Store, id string) error {
				return st.SetCompleted(ctx, id, completed)
			})
		},
	}
}

func newTasksDatesCmd(app *App) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "dates <task-id>",
		Short: "Set (or clear with empty values) a task's start and end dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sd, err := model.ParseOptionalDate(start)
			if err != nil {
				return writeErr(cmd, err)
			}
			ed, err := model.ParseOptionalDate(end)
			if err != nil {
				return writeErr(cmd, err)
			}
			if sd != nil && ed != nil && ed.Before(*sd) {
				return writeErr(cmd, fmt.Errorf("--end %s is before --start %s", ed, sd))
			}
			return updateTask(cmd, app, args[0], "task.dates", func(ctx context.Context, st *store.Store, id string) error {
				return st.SetDates(ctx, id, sd, ed)
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD, empty clears)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD, empty clears)")
	return cmd
}

func newTasksRenameCmd(app *App) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "rename <task-id>",
		Short: "Change a task's title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateTask(cmd, app, args[0], "task.rename", func(ctx context.Context, st *store.Store, id string) error {
				return st.SetTitle(ctx, id, title)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

// updateTask runs a single-row field update and prints the task afterwards.
func updateTask(cmd *cobra.Command, app *App, rawID, evType string, fn func(context.Context, *store.Store, string) error) error {
	ctx := cmd.Context()
	st, err := openStore(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer st.Close()

	id := strings.TrimSpace(rawID)
	if err := fn(ctx, st, id); err != nil {
		return writeErr(cmd, err)
	}
	t, err := st.GetTask(ctx, id)
	if err != nil {
		return writeErr(cmd, err)
	}
	recordEvent(ctx, app, st, model.Event{ProjectID: t.ProjectID, Type: evType, EntityID: t.ID, Payload: t})
	return writeOut(cmd, app, map[string]any{"data": t})
}

func newTasksRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task and everything nested under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			id := strings.TrimSpace(args[0])
			t, err := st.GetTask(ctx, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := newBoard(ctx, app, st, t.ProjectID)
			if err != nil {
				return writeErr(cmd, err)
			}
			removed, shifted, err := engine.Remove(b.Snapshot(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := st.DeleteTask(ctx, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := engine.Commit(ctx, st, shifted); err != nil {
				return writeErr(cmd, err)
			}
			recordEvent(ctx, app, st, model.Event{ProjectID: t.ProjectID, Type: "task.delete", EntityID: id, Payload: map[string]any{"removed": removed}})
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"deleted": n, "ids": removed},
				"meta": map[string]any{"shifted": len(shifted)},
			})
		},
	}
}

func recordEvent(ctx context.Context, app *App, st *store.Store, ev model.Event) {
	if err := st.AppendEvent(ctx, ev); err != nil {
		app.logger().Warn("recording event", "type", ev.Type, "entity", ev.EntityID, "err", err)
	}
}

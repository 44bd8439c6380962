package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tasktree-cli/internal/model"
)

const taskColumns = `id, project_id, parent_id, order_key, title, start_date, end_date, completed, created_at_unixms, updated_at_unixms`

// NewTask is the input to CreateTask. OrderKey is the task's position in the project's
// flattened sequence; callers renumber the rest of the project around it.
type NewTask struct {
	ProjectID string
	ParentID  *string
	Title     string
	StartDate *model.Date
	EndDate   *model.Date
	OrderKey  int
}

func scanTask(sc interface{ Scan(...any) error }) (model.Task, error) {
	var (
		t                    model.Task
		parent, start, end   sql.NullString
		completed            int
		createdMs, updatedMs int64
	)
	if err := sc.Scan(&t.ID, &t.ProjectID, &parent, &t.OrderKey, &t.Title, &start, &end, &completed, &createdMs, &updatedMs); err != nil {
		return model.Task{}, err
	}
	if parent.Valid && strings.TrimSpace(parent.String) != "" {
		t.ParentID = model.StrPtr(parent.String)
	}
	if start.Valid && start.String != "" {
		t.StartDate = model.DatePtr(model.Date(start.String))
	}
	if end.Valid && end.String != "" {
		t.EndDate = model.DatePtr(model.Date(end.String))
	}
	t.IsCompleted = completed != 0
	t.CreatedAt = fromUnixMs(createdMs)
	t.UpdatedAt = fromUnixMs(updatedMs)
	return t, nil
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullDate(d *model.Date) any {
	if d == nil {
		return nil
	}
	return string(*d)
}

// ListTasks returns a project's tasks ordered by order key.
func (s *Store) ListTasks(ctx context.Context, projectID string) ([]model.Task, error) {
	rows, err := s.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE project_id = ? ORDER BY order_key, created_at_unixms, id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTask(ctx context.Context, id string) (model.Task, error) {
	t, err := scanTask(s.queryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, notFound("task", id)
	}
	return t, err
}

// LoadTree returns a project's tasks nested under their parents, siblings in order-key order.
// A task whose parent is missing (or lives in another project) is treated as a root. Tasks
// caught in a parent cycle are unreachable from any root; the first of them in order-key
// order is promoted to a root and the cycle is cut where it closes.
func (s *Store) LoadTree(ctx context.Context, projectID string) ([]*model.TaskNode, error) {
	tasks, err := s.ListTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return nestTasks(tasks), nil
}

func nestTasks(tasks []model.Task) []*model.TaskNode {
	byID := make(map[string]model.Task, len(tasks))
	children := map[string][]string{}
	for _, t := range tasks {
		byID[t.ID] = t
	}
	var rootIDs []string
	for _, t := range tasks {
		if t.ParentID != nil {
			if _, ok := byID[*t.ParentID]; ok && *t.ParentID != t.ID {
				children[*t.ParentID] = append(children[*t.ParentID], t.ID)
				continue
			}
		}
		rootIDs = append(rootIDs, t.ID)
	}

	visited := map[string]bool{}
	var build func(id string, parent *string, depth int) *model.TaskNode
	build = func(id string, parent *string, depth int) *model.TaskNode {
		visited[id] = true
		t := byID[id]
		t.ParentID = nil
		if parent != nil {
			t.ParentID = model.StrPtr(*parent)
		}
		t.Depth = depth
		n := &model.TaskNode{Task: t}
		for _, c := range children[id] {
			if visited[c] {
				continue
			}
			n.Children = append(n.Children, build(c, &id, depth+1))
		}
		return n
	}

	var roots []*model.TaskNode
	for _, id := range rootIDs {
		roots = append(roots, build(id, nil, 0))
	}
	for _, t := range tasks {
		if !visited[t.ID] {
			roots = append(roots, build(t.ID, nil, 0))
		}
	}
	return roots
}

func (s *Store) CreateTask(ctx context.Context, in NewTask) (model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Task{}, errors.New("task title is empty")
	}
	if strings.TrimSpace(in.ProjectID) == "" {
		return model.Task{}, errors.New("task project is empty")
	}
	id, err := newRandomID("task")
	if err != nil {
		return model.Task{}, err
	}
	now := time.Now().UTC()
	t := model.Task{
		ID:        id,
		ProjectID: in.ProjectID,
		ParentID:  in.ParentID,
		OrderKey:  in.OrderKey,
		Title:     title,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.exec(ctx, `INSERT INTO tasks(`+taskColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, nullString(t.ParentID), t.OrderKey, t.Title,
		nullDate(t.StartDate), nullDate(t.EndDate), 0,
		toUnixMs(now), toUnixMs(now),
	)
	if err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// UpdateTask writes only the fields present in p. An empty patch is a no-op.
func (s *Store) UpdateTask(ctx context.Context, p model.TaskPatch) error {
	if p.Empty() {
		return nil
	}
	var (
		sets []string
		args []any
	)
	if p.ParentSet {
		sets = append(sets, "parent_id = ?")
		args = append(args, nullString(p.ParentID))
	}
	if p.DatesSet {
		sets = append(sets, "start_date = ?", "end_date = ?")
		args = append(args, nullDate(p.StartDate), nullDate(p.EndDate))
	}
	if p.OrderKey != nil {
		sets = append(sets, "order_key = ?")
		args = append(args, *p.OrderKey)
	}
	sets = append(sets, "updated_at_unixms = ?")
	args = append(args, toUnixMs(time.Now()), p.ID)

	res, err := s.exec(ctx, `UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update task %s: %w", p.ID, err)
	}
	return expectOneRow(res, "task", p.ID)
}

// SetDates replaces both dates of a task. Either may be nil.
func (s *Store) SetDates(ctx context.Context, id string, start, end *model.Date) error {
	return s.UpdateTask(ctx, model.TaskPatch{ID: id, DatesSet: true, StartDate: start, EndDate: end})
}

func (s *Store) SetCompleted(ctx context.Context, id string, completed bool) error {
	res, err := s.exec(ctx, `UPDATE tasks SET completed = ?, updated_at_unixms = ? WHERE id = ?`,
		boolToInt(completed), toUnixMs(time.Now()), id)
	if err != nil {
		return err
	}
	return expectOneRow(res, "task", id)
}

func (s *Store) SetTitle(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("task title is empty")
	}
	res, err := s.exec(ctx, `UPDATE tasks SET title = ?, updated_at_unixms = ? WHERE id = ?`,
		title, toUnixMs(time.Now()), id)
	if err != nil {
		return err
	}
	return expectOneRow(res, "task", id)
}

// DeleteTask removes id and every task below it. It returns the number of rows deleted.
func (s *Store) DeleteTask(ctx context.Context, id string) (int, error) {
	res, err := s.exec(ctx, `WITH RECURSIVE sub(id) AS (
			SELECT id FROM tasks WHERE id = ?
			UNION
			SELECT t.id FROM tasks t JOIN sub ON t.parent_id = sub.id
		)
		DELETE FROM tasks WHERE id IN (SELECT id FROM sub)`, id)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, notFound("task", id)
	}
	return int(n), nil
}

func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}

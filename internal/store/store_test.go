package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktree-cli/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Options{Driver: DriverSQLite, Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustProject(t *testing.T, s *Store) model.Project {
	t.Helper()
	p, err := s.CreateProject(context.Background(), "Launch")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func mustTask(t *testing.T, s *Store, projectID string, parent *string, title string, key int) model.Task {
	t.Helper()
	x, err := s.CreateTask(context.Background(), NewTask{ProjectID: projectID, ParentID: parent, Title: title, OrderKey: key})
	if err != nil {
		t.Fatalf("create task %q: %v", title, err)
	}
	return x
}

// shape renders a nested load as "title@depth" in depth-first order.
func shape(nodes []*model.TaskNode) []string {
	var out []string
	var walk func(ns []*model.TaskNode)
	walk = func(ns []*model.TaskNode) {
		for _, n := range ns {
			out = append(out, n.Task.Title+"@"+string(rune('0'+n.Task.Depth)))
			walk(n.Children)
		}
	}
	walk(nodes)
	return out
}

func TestLoadTree_NestsByParentAndOrdersSiblings(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	p := mustProject(t, s)

	a := mustTask(t, s, p.ID, nil, "A", 1)
	_ = mustTask(t, s, p.ID, &a.ID, "A2", 3)
	_ = mustTask(t, s, p.ID, &a.ID, "A1", 2)
	b := mustTask(t, s, p.ID, nil, "B", 4)
	_ = mustTask(t, s, p.ID, &b.ID, "B1", 5)

	roots, err := s.LoadTree(ctx, p.ID)
	require.NoError(t, err)
	want := []string{"A@0", "A1@1", "A2@1", "B@0", "B1@1"}
	if diff := cmp.Diff(want, shape(roots)); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTree_MissingParentBecomesRoot(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	p := mustProject(t, s)

	_ = mustTask(t, s, p.ID, model.StrPtr("task-gone"), "Orphan", 1)
	roots, err := s.LoadTree(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Nil(t, roots[0].Task.ParentID)
	assert.Equal(t, 0, roots[0].Task.Depth)
}

func TestLoadTree_ParentCycleIsCut(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	p := mustProject(t, s)

	a := mustTask(t, s, p.ID, nil, "A", 1)
	b := mustTask(t, s, p.ID, nil, "B", 2)
	require.NoError(t, s.UpdateTask(ctx, model.TaskPatch{ID: a.ID, ParentSet: true, ParentID: &b.ID}))
	require.NoError(t, s.UpdateTask(ctx, model.TaskPatch{ID: b.ID, ParentSet: true, ParentID: &a.ID}))

	roots, err := s.LoadTree(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A@0", "B@1"}, shape(roots))
}

func TestUpdateTask_WritesOnlyPresentFields(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	p := mustProject(t, s)

	start := model.Date("2024-01-05")
	x, err := s.CreateTask(ctx, NewTask{ProjectID: p.ID, Title: "T", OrderKey: 1, StartDate: &start})
	require.NoError(t, err)

	key := 9
	require.NoError(t, s.UpdateTask(ctx, model.TaskPatch{ID: x.ID, OrderKey: &key}))
	got, err := s.GetTask(ctx, x.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.OrderKey)
	require.NotNil(t, got.StartDate)
	assert.Equal(t, start, *got.StartDate)

	// Clearing dates is distinct from leaving them alone.
	require.NoError(t, s.UpdateTask(ctx, model.TaskPatch{ID: x.ID, DatesSet: true}))
	got, err = s.GetTask(ctx, x.ID)
	require.NoError(t, err)
	assert.Nil(t, got.StartDate)
	assert.Nil(t, got.EndDate)

	err = s.UpdateTask(ctx, model.TaskPatch{ID: "task-missing", OrderKey: &key})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.UpdateTask(ctx, model.TaskPatch{ID: "task-missing"}), "empty patch is a no-op")
}

func TestSetCompletedAndTitle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	p := mustProject(t, s)
	x := mustTask(t, s, p.ID, nil, "T", 1)

	require.NoError(t, s.SetCompleted(ctx, x.ID, true))
	require.NoError(t, s.SetTitle(ctx, x.ID, "  Renamed "))
	got, err := s.GetTask(ctx, x.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, "Renamed", got.Title)

	assert.ErrorIs(t, s.SetCompleted(ctx, "task-nope", true), ErrNotFound)
	assert.Error(t, s.SetTitle(ctx, x.ID, " "))
}

func TestDeleteTask_RemovesSubtree(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	p := mustProject(t, s)

	a := mustTask(t, s, p.ID, nil, "A", 1)
	a1 := mustTask(t, s, p.ID, &a.ID, "A1", 2)
	_ = mustTask(t, s, p.ID, &a1.ID, "A1a", 3)
	_ = mustTask(t, s, p.ID, nil, "B", 4)

	n, err := s.DeleteTask(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	tasks, err := s.ListTasks(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "B", tasks[0].Title)

	_, err = s.DeleteTask(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjects(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	p1, err := s.CreateProject(ctx, "One")
	require.NoError(t, err)
	_, err = s.CreateProject(ctx, "Two")
	require.NoError(t, err)
	_, err = s.CreateProject(ctx, "  ")
	require.Error(t, err)

	require.NoError(t, s.ArchiveProject(ctx, p1.ID, true))
	ps, err := s.ListProjects(ctx, false)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "Two", ps[0].Name)

	all, err := s.ListProjects(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := s.GetProject(ctx, p1.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)

	_, err = s.GetProject(ctx, "proj-nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEvents_AppendAndTail(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for i, id := range []string{"t1", "t2", "t1"} {
		ev := model.Event{ProjectID: "p", Type: "task.moved", EntityID: id, Payload: map[string]any{"n": i}}
		ev.TS = fromUnixMs(int64(1000 + i))
		require.NoError(t, s.AppendEvent(ctx, ev))
	}

	all, err := s.ListEvents(ctx, EventFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, float64(0), all[0].Payload.(map[string]any)["n"])
	assert.NotEmpty(t, all[0].ID)

	tail, err := s.ListEvents(ctx, EventFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, "t2", tail[0].EntityID)
	assert.Equal(t, "t1", tail[1].EntityID)

	forT1, err := s.ListEvents(ctx, EventFilter{EntityID: "t1"})
	require.NoError(t, err)
	assert.Len(t, forT1, 2)

	assert.Error(t, s.AppendEvent(ctx, model.Event{EntityID: "x"}))
}

func TestOpen_SQLiteFileLivesInWorkspaceDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".tasktree")
	s, err := Open(context.Background(), Options{Dir: dir})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, DriverSQLite, s.Driver())
	_, err = os.Stat(filepath.Join(dir, sqliteFileName))
	assert.NoError(t, err)
}

func TestOpen_PostgresRequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: DriverPostgres})
	assert.ErrorIs(t, err, ErrNoDSN)
}

func TestOpen_PostgresUsesPgxDriver(t *testing.T) {
	var gotDriver, gotDSN string
	boom := errors.New("no server")
	restore := OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driverName, dsn
		return nil, boom
	})
	defer restore()

	_, err := Open(context.Background(), Options{Driver: DriverPostgres, DSN: "postgres://localhost/tasktree"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "pgx", gotDriver)
	assert.Equal(t, "postgres://localhost/tasktree", gotDSN)
}

func TestRebind(t *testing.T) {
	pg := dialectFor(DriverPostgres)
	assert.Equal(t, `SELECT * FROM t WHERE a = $1 AND b = '?' AND c = $2`, pg.rebind(`SELECT * FROM t WHERE a = ? AND b = '?' AND c = ?`))

	lite := dialectFor(DriverSQLite)
	assert.Equal(t, `a = ?`, lite.rebind(`a = ?`))
}

func TestParseDriver(t *testing.T) {
	for in, want := range map[string]Driver{"": DriverSQLite, "SQLite": DriverSQLite, "pg": DriverPostgres, "postgresql": DriverPostgres} {
		got, err := ParseDriver(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDriver("mysql")
	assert.Error(t, err)
}

func TestDiscoverDir_WalksUp(t *testing.T) {
	root := t.TempDir()
	ws := filepath.Join(root, workspaceDirName)
	deep := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(ws, 0o755))
	require.NoError(t, os.MkdirAll(deep, 0o755))

	got, ok := DiscoverDir(deep)
	require.True(t, ok)
	assert.Equal(t, ws, got)
}

func TestLooksLikeTaskID(t *testing.T) {
	id, err := newRandomID("task")
	require.NoError(t, err)
	assert.True(t, LooksLikeTaskID(id))
	assert.Len(t, id, len("task-")+8)
	assert.False(t, LooksLikeTaskID("tasks"))
	assert.False(t, LooksLikeTaskID("task-AB"))
}

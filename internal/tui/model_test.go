package tui

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktree-cli/internal/dragintent"
	"tasktree-cli/internal/engine"
	"tasktree-cli/internal/model"
)

type fakeStore struct {
	mu    sync.Mutex
	tasks map[string]model.Task
	fail  bool
}

func newFakeStore(tasks ...model.Task) *fakeStore {
	s := &fakeStore{tasks: map[string]model.Task{}}
	for i, t := range tasks {
		t.ProjectID = "p1"
		t.OrderKey = i + 1
		s.tasks[t.ID] = t
	}
	return s
}

func (s *fakeStore) LoadTree(_ context.Context, _ string) ([]*model.TaskNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nodes := map[string]*model.TaskNode{}
	var all []*model.TaskNode
	for _, t := range s.tasks {
		n := &model.TaskNode{Task: t}
		nodes[t.ID] = n
		all = append(all, n)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Task.OrderKey < all[j].Task.OrderKey })
	var roots []*model.TaskNode
	for _, n := range all {
		if n.Task.ParentID != nil {
			if p, ok := nodes[*n.Task.ParentID]; ok {
				p.Children = append(p.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots, nil
}

func (s *fakeStore) UpdateTask(_ context.Context, p model.TaskPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("database is locked")
	}
	t := s.tasks[p.ID]
	if p.ParentSet {
		t.ParentID = p.ParentID
	}
	if p.DatesSet {
		t.StartDate, t.EndDate = p.StartDate, p.EndDate
	}
	if p.OrderKey != nil {
		t.OrderKey = *p.OrderKey
	}
	s.tasks[p.ID] = t
	return nil
}

type fakeActions struct {
	st    *fakeStore
	added []string
}

func (a *fakeActions) Add(_ context.Context, title, parentID string) (model.Task, error) {
	a.st.mu.Lock()
	defer a.st.mu.Unlock()
	t := model.Task{ID: "new", ProjectID: "p1", Title: title, OrderKey: len(a.st.tasks) + 1}
	if parentID != "" {
		t.ParentID = model.StrPtr(parentID)
	}
	a.st.tasks[t.ID] = t
	a.added = append(a.added, title)
	return t, nil
}

func (a *fakeActions) SetCompleted(_ context.Context, id string, done bool) error {
	a.st.mu.Lock()
	defer a.st.mu.Unlock()
	t := a.st.tasks[id]
	t.IsCompleted = done
	a.st.tasks[id] = t
	return nil
}

func newTestModel(t *testing.T, st *fakeStore, acts Actions) listModel {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
	b := engine.NewBoard(st, "p1", engine.WithDragOptions(DragOptions(dragintent.DefaultOptions())))
	require.NoError(t, b.Reload(context.Background()))
	m := newListModel(context.Background(), b, Options{Title: "Demo", Actions: acts})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	return next.(listModel)
}

// send feeds msg to m and runs any command it returns, feeding the result back once.
func send(t *testing.T, m listModel, msg tea.Msg) listModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(listModel)
	if cmd != nil {
		if out := cmd(); out != nil {
			next, _ = m.Update(out)
			m = next.(listModel)
		}
	}
	return m
}

func update(m listModel, msg tea.Msg) listModel {
	next, _ := m.Update(msg)
	return next.(listModel)
}

func mouse(action tea.MouseAction, x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft}
}

// rowY is the screen line of part (0 top, 1 middle, 2 bottom) of row i.
func rowY(i, part int) int { return headerLines + i*rowHeight + part }

func ids(m listModel) []string {
	var out []string
	for _, t := range m.tree.Tasks() {
		out = append(out, t.ID)
	}
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func abc() *fakeStore {
	return newFakeStore(
		model.Task{ID: "A", Title: "Alpha"},
		model.Task{ID: "B", Title: "Beta"},
		model.Task{ID: "C", Title: "Gamma"},
	)
}

func TestDrag_MiddleOfRowNests(t *testing.T) {
	st := abc()
	m := newTestModel(t, st, nil)

	m = send(t, m, mouse(tea.MouseActionPress, 20, rowY(0, 1)))
	require.True(t, m.dragging)
	m = send(t, m, mouse(tea.MouseActionMotion, 20, rowY(2, 1)))
	assert.Equal(t, dragintent.Intent{Kind: dragintent.Nest, TargetID: "C"}, m.drag.Intent)

	m = send(t, m, mouse(tea.MouseActionRelease, 20, rowY(2, 1)))
	assert.False(t, m.dragging)
	assert.False(t, m.busy)
	assert.Equal(t, []string{"B", "C", "A"}, ids(m))
	require.NotNil(t, st.tasks["A"].ParentID)
	assert.Equal(t, "C", *st.tasks["A"].ParentID)
	assert.False(t, m.statusErr)
}

func TestDrag_TopOfRowReordersBefore(t *testing.T) {
	m := newTestModel(t, abc(), nil)

	m = send(t, m, mouse(tea.MouseActionPress, 20, rowY(2, 1)))
	m = send(t, m, mouse(tea.MouseActionRelease, 20, rowY(0, 0)))
	assert.Equal(t, []string{"C", "A", "B"}, ids(m))
	assert.Equal(t, 0, m.cursor)
}

func TestDrag_GutterUnnests(t *testing.T) {
	st := newFakeStore(
		model.Task{ID: "A", Title: "Alpha"},
		model.Task{ID: "A1", Title: "Child", ParentID: model.StrPtr("A")},
		model.Task{ID: "B", Title: "Beta"},
	)
	m := newTestModel(t, st, nil)

	m = send(t, m, mouse(tea.MouseActionPress, 20, rowY(1, 1)))
	m = send(t, m, mouse(tea.MouseActionMotion, 1, rowY(1, 1)))
	assert.Equal(t, dragintent.Unnest, m.drag.Intent.Kind)
	m = send(t, m, mouse(tea.MouseActionRelease, 1, rowY(1, 1)))

	assert.Equal(t, []string{"A", "A1", "B"}, ids(m))
	assert.Nil(t, st.tasks["A1"].ParentID)
}

func TestDrag_ReleaseOnSelfDoesNothing(t *testing.T) {
	st := abc()
	m := newTestModel(t, st, nil)

	m = send(t, m, mouse(tea.MouseActionPress, 20, rowY(1, 1)))
	next, cmd := m.Update(mouse(tea.MouseActionRelease, 20, rowY(1, 1)))
	m = next.(listModel)
	assert.Nil(t, cmd)
	assert.False(t, m.dragging)
	assert.Equal(t, []string{"A", "B", "C"}, ids(m))
}

func TestDrag_CompletedTaskCannotStart(t *testing.T) {
	st := newFakeStore(model.Task{ID: "A", Title: "Alpha", IsCompleted: true}, model.Task{ID: "B", Title: "Beta"})
	m := newTestModel(t, st, nil)

	m = send(t, m, mouse(tea.MouseActionPress, 20, rowY(0, 1)))
	assert.False(t, m.dragging)
	assert.True(t, m.statusErr)
}

func TestDrop_FailedSaveShowsNoticeAndReloads(t *testing.T) {
	st := abc()
	m := newTestModel(t, st, nil)
	st.fail = true

	m = send(t, m, mouse(tea.MouseActionPress, 20, rowY(1, 1)))
	m = send(t, m, mouse(tea.MouseActionRelease, 20, rowY(0, 0)))
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "Could not save the move")
	assert.Equal(t, []string{"A", "B", "C"}, ids(m))
}

func TestKeys_AddAndToggle(t *testing.T) {
	st := abc()
	acts := &fakeActions{st: st}
	m := newTestModel(t, st, acts)

	// Text input commands only drive cursor blinking; skip them.
	m = update(m, runes("a"))
	require.True(t, m.adding)
	for _, r := range "Delta" {
		m = update(m, runes(string(r)))
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.adding)
	assert.Equal(t, []string{"Delta"}, acts.added)
	assert.Equal(t, 4, m.tree.Len())
	assert.Equal(t, 3, m.cursor)

	m = send(t, m, runes("x"))
	assert.True(t, m.tree.At(3).IsCompleted)
}

func TestView_TruncatesToWidth(t *testing.T) {
	st := newFakeStore(model.Task{ID: "A", Title: strings.Repeat("long ", 40)})
	m := newTestModel(t, st, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 30, Height: 20})
	m = next.(listModel)

	for _, line := range strings.Split(m.View(), "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 30, "line %q", line)
	}
}

func TestKeys_CursorAndHelp(t *testing.T) {
	m := newTestModel(t, abc(), nil)

	m = send(t, m, runes("j"))
	m = send(t, m, runes("j"))
	m = send(t, m, runes("j"))
	assert.Equal(t, 2, m.cursor)
	m = send(t, m, runes("k"))
	assert.Equal(t, 1, m.cursor)

	// Shifted letters carry no moves.
	m = send(t, m, runes("K"))
	assert.Equal(t, []string{"A", "B", "C"}, ids(m))

	m = send(t, m, runes("?"))
	assert.True(t, m.help.ShowAll)
	assert.Contains(t, m.View(), "add child")
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tasktree-cli/internal/dragintent"
	"tasktree-cli/internal/engine"
	"tasktree-cli/internal/flattree"
	"tasktree-cli/internal/model"
)

// Screen geometry, in cells. Each task row is three lines tall so the pointer can land in the
// top, middle (nest band) or bottom third of a row.
const (
	headerLines = 2
	footerLines = 2
	rowHeight   = 3
	gutterCells = 4
	handleCells = 2
)

// Actions are the non-structural edits the list offers. A nil Actions disables them.
type Actions interface {
	Add(ctx context.Context, title, parentID string) (model.Task, error)
	SetCompleted(ctx context.Context, id string, done bool) error
}

type dropDoneMsg struct {
	res engine.Result
	err error
}

type actionDoneMsg struct {
	status  string
	focusID string
	err     error
}

type reloadedMsg struct{ err error }

type listModel struct {
	ctx     context.Context
	board   *engine.Board
	actions Actions
	title   string

	tree   *flattree.Tree
	width  int
	height int
	cursor int
	offset int

	drag     dragintent.Session
	dragging bool
	busy     bool

	adding    bool
	addParent string
	input     textinput.Model

	keys      keyMap
	help      help.Model
	status    string
	statusErr bool
}

func newListModel(ctx context.Context, b *engine.Board, opts Options) listModel {
	in := textinput.New()
	in.Placeholder = "Task title"
	in.Prompt = "add: "
	in.CharLimit = 200

	m := listModel{
		ctx:     ctx,
		board:   b,
		actions: opts.Actions,
		title:   opts.Title,
		tree:    b.Snapshot(),
		width:   80,
		height:  24,
		input:   in,
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
	if m.title == "" {
		m.title = b.ProjectID()
	}
	return m
}

func (m listModel) Init() tea.Cmd { return nil }

func (m listModel) layout() dragintent.Layout {
	right := m.width
	if right < gutterCells+handleCells+1 {
		right = gutterCells + handleCells + 1
	}
	return dragintent.Layout{
		Left:      0,
		Top:       float64(headerLines - m.offset*rowHeight),
		RowHeight: rowHeight,
		NameLeft:  gutterCells,
		NameRight: float64(right),
	}
}

func (m listModel) visibleRows() int {
	n := (m.height - headerLines - footerLines) / rowHeight
	if n < 1 {
		return 1
	}
	return n
}

// pointer maps a terminal cell to list coordinates, using the cell's center.
func pointer(x, y int) dragintent.Pointer {
	return dragintent.Pointer{X: float64(x) + 0.5, Y: float64(y) + 0.5}
}

func (m listModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.input.Width = msg.Width - len(m.input.Prompt) - 1
		m.scrollToCursor()
		return m, nil

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		if m.adding {
			return m.updateAdding(msg)
		}
		return m.updateKeys(msg)

	case dropDoneMsg:
		m.busy = false
		m.refresh(msg.res.Move.AnchorID)
		var pe *engine.PersistError
		switch {
		case errors.As(msg.err, &pe):
			m.setError(pe.UserMessage())
		case msg.err != nil:
			m.setError(msg.err.Error())
		case !msg.res.Applied:
			m.setStatus("not moved: " + msg.res.Reason)
		default:
			m.setStatus(fmt.Sprintf("%s (%d saved)", msg.res.Intent, len(msg.res.Patches)))
		}
		return m, nil

	case actionDoneMsg:
		m.busy = false
		m.refresh(msg.focusID)
		if msg.err != nil {
			m.setError(msg.err.Error())
		} else {
			m.setStatus(msg.status)
		}
		return m, nil

	case reloadedMsg:
		m.busy = false
		m.refresh("")
		if msg.err != nil {
			m.setError(msg.err.Error())
		} else {
			m.setStatus("reloaded")
		}
		return m, nil
	}
	return m, nil
}

func (m listModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		if m.offset > 0 {
			m.offset--
		}
		return m, nil
	case msg.Button == tea.MouseButtonWheelDown:
		if m.offset+m.visibleRows() < m.tree.Len() {
			m.offset++
		}
		return m, nil
	}
	if m.busy || m.adding {
		return m, nil
	}

	l := m.layout()
	p := pointer(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		row := l.RowAt(p.Y, m.tree.Len())
		if row < 0 {
			return m, nil
		}
		m.cursor = row
		id := m.tree.At(row).ID
		s, ok := m.board.Begin(id)
		if !ok {
			m.setError("completed tasks cannot be moved")
			return m, nil
		}
		m.drag, m.dragging = s, true
		m.status = ""

	case tea.MouseActionMotion:
		if !m.dragging {
			return m, nil
		}
		m.drag = m.drag.WithIntent(m.board.Classify(m.drag, p, l))

	case tea.MouseActionRelease:
		if !m.dragging {
			return m, nil
		}
		m.drag = m.drag.WithIntent(m.board.Classify(m.drag, p, l))
		s := m.drag
		m.drag, m.dragging = dragintent.Session{}, false
		if s.Intent.IsNone() {
			return m, nil
		}
		return m.drop(s)
	}
	return m, nil
}

func (m listModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		m.drag, m.dragging = dragintent.Session{}, false
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.scrollToCursor()
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.tree.Len()-1 {
			m.cursor++
			m.scrollToCursor()
		}
		return m, nil
	}
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Reload):
		m.busy = true
		return m, m.reloadCmd()
	case key.Matches(msg, m.keys.Add), key.Matches(msg, m.keys.AddChild):
		if m.actions == nil {
			return m, nil
		}
		m.addParent = ""
		if key.Matches(msg, m.keys.AddChild) {
			if id, ok := m.cursorID(); ok {
				m.addParent = id
			}
		}
		m.adding = true
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Toggle):
		id, ok := m.cursorID()
		if !ok || m.actions == nil {
			return m, nil
		}
		done := !m.tree.At(m.cursor).IsCompleted
		m.busy = true
		return m, m.actionCmd(id, func(ctx context.Context) (string, error) {
			if err := m.actions.SetCompleted(ctx, id, done); err != nil {
				return "", err
			}
			if done {
				return "completed", nil
			}
			return "reopened", nil
		})
	}

	return m, nil
}

func (m listModel) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.adding = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		title := strings.TrimSpace(m.input.Value())
		m.adding = false
		m.input.Blur()
		if title == "" {
			return m, nil
		}
		parent := m.addParent
		m.busy = true
		return m, func() tea.Msg {
			ctx := context.WithoutCancel(m.ctx)
			t, err := m.actions.Add(ctx, title, parent)
			if rerr := m.board.Reload(ctx); err == nil {
				err = rerr
			}
			return actionDoneMsg{status: "added " + t.ID, focusID: t.ID, err: err}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// drop hands s to the board off the UI goroutine. The board's own lock serializes it with
// classification of any later drag.
func (m listModel) drop(s dragintent.Session) (tea.Model, tea.Cmd) {
	m.busy = true
	b, ctx := m.board, m.ctx
	return m, func() tea.Msg {
		res, err := b.Drop(ctx, s, s.Intent)
		return dropDoneMsg{res: res, err: err}
	}
}

func (m listModel) actionCmd(focusID string, fn func(context.Context) (string, error)) tea.Cmd {
	b, ctx := m.board, context.WithoutCancel(m.ctx)
	return func() tea.Msg {
		status, err := fn(ctx)
		if rerr := b.Reload(ctx); err == nil {
			err = rerr
		}
		return actionDoneMsg{status: status, focusID: focusID, err: err}
	}
}

func (m listModel) reloadCmd() tea.Cmd {
	b, ctx := m.board, m.ctx
	return func() tea.Msg {
		return reloadedMsg{err: b.Reload(ctx)}
	}
}

// refresh takes a new snapshot and keeps the cursor on focusID when it is still present.
func (m *listModel) refresh(focusID string) {
	var keep string
	if focusID == "" {
		keep, _ = m.cursorID()
	} else {
		keep = focusID
	}
	m.tree = m.board.Snapshot()
	if i := m.tree.IndexOf(keep); i >= 0 {
		m.cursor = i
	}
	if m.cursor >= m.tree.Len() {
		m.cursor = m.tree.Len() - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scrollToCursor()
}

func (m *listModel) scrollToCursor() {
	vis := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+vis {
		m.offset = m.cursor - vis + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m listModel) cursorID() (string, bool) {
	if m.cursor < 0 || m.cursor >= m.tree.Len() {
		return "", false
	}
	return m.tree.At(m.cursor).ID, true
}

func (m *listModel) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *listModel) setError(s string) {
	m.status, m.statusErr = s, true
}

package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"

	"tasktree-cli/internal/model"
)

func (m listModel) View() string {
	var b strings.Builder

	b.WriteString(m.fit(styleHeader.Render(m.title) + "  " + styleMuted.Render("drag rows with the mouse")))
	b.WriteByte('\n')
	b.WriteString(styleMuted.Render(strings.Repeat(glyphHRule(), max(m.width, 1))))
	b.WriteByte('\n')

	lines := 0
	if m.tree.Len() == 0 {
		b.WriteString(styleMuted.Render("  no tasks yet, press a to add one"))
		b.WriteByte('\n')
		lines++
	}
	end := min(m.offset+m.visibleRows(), m.tree.Len())
	for i := m.offset; i < end; i++ {
		// Content sits on the middle line; the blank lines above and below are the reorder zones.
		b.WriteByte('\n')
		b.WriteString(m.rowLine(i))
		b.WriteString("\n\n")
		lines += rowHeight
	}
	for ; lines < m.visibleRows()*rowHeight; lines++ {
		b.WriteByte('\n')
	}

	b.WriteString(m.footer())
	return b.String()
}

func (m listModel) rowLine(i int) string {
	t := m.tree.At(i)
	gutter := strings.Repeat(" ", gutterCells)
	handle := styleMuted.Render(glyphHandle()) + " "

	var body strings.Builder
	body.WriteString(strings.Repeat("  ", t.Depth))
	if t.IsCompleted {
		body.WriteString("[" + glyphDone() + "] ")
	} else {
		body.WriteString("[ ] ")
	}
	body.WriteString(t.Title)
	if r := dates(t); r != "" {
		body.WriteString("  " + r)
	}

	text := body.String()
	switch {
	case t.IsCompleted:
		text = styleComplete.Render(text)
	case i == m.cursor:
		text = styleCursor.Render(text)
	}
	return m.fit(gutter + handle + text)
}

func (m listModel) footer() string {
	var b strings.Builder
	switch {
	case m.adding:
		b.WriteString(m.input.View())
	case m.status != "" && m.statusErr:
		b.WriteString(styleError.Render(m.fit(m.status)))
	default:
		b.WriteString(styleMuted.Render(m.fit(m.status)))
	}
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// fit truncates s (which may carry ANSI styling) to the window width.
func (m listModel) fit(s string) string {
	if m.width <= 0 {
		return s
	}
	return xansi.Truncate(s, m.width, "…")
}

func dates(t model.Task) string {
	switch {
	case t.StartDate == nil && t.EndDate == nil:
		return ""
	case t.StartDate == nil:
		return styleMuted.Render("until " + t.EndDate.String())
	case t.EndDate == nil || *t.StartDate == *t.EndDate:
		return styleMuted.Render(t.StartDate.String())
	default:
		return styleMuted.Render(t.StartDate.String() + " " + glyphRange() + " " + t.EndDate.String())
	}
}

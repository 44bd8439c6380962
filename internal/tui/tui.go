// Package tui is the interactive, mouse-driven task list.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"tasktree-cli/internal/dragintent"
	"tasktree-cli/internal/engine"
)

type Options struct {
	// Title is shown in the header; the project id is used when empty.
	Title   string
	Actions Actions
}

// Run shows b's project until the user quits. b must already be loaded.
func Run(ctx context.Context, b *engine.Board, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()
	applyGlyphPreference()

	m := newListModel(ctx, b, opts)
	_, err := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	).Run()
	return err
}

// DragOptions converts pointer thresholds to terminal cells. The fractional bands are kept;
// the unnest strip becomes the gutter and the handle becomes the two handle cells.
func DragOptions(base dragintent.Options) dragintent.Options {
	base.UnnestMargin = gutterCells
	base.HandleWidth = handleCells
	return base
}

package cli

import (
	"github.com/spf13/pflag"

	"tasktree-cli/internal/dragintent"
	"tasktree-cli/internal/flattree"
	"tasktree-cli/internal/store"
	"tasktree-cli/internal/tui"
)

// engineOptions merges config overrides onto the engine defaults.
func engineOptions(c store.EngineConfig) (flattree.Options, dragintent.Options) {
	return engineOptionsOver(c, dragintent.DefaultOptions())
}

// tuiEngineOptions starts from the cell-scaled drag defaults; configured values still win.
func tuiEngineOptions(c store.EngineConfig) (flattree.Options, dragintent.Options) {
	return engineOptionsOver(c, tui.DragOptions(dragintent.DefaultOptions()))
}

func engineOptionsOver(c store.EngineConfig, d dragintent.Options) (flattree.Options, dragintent.Options) {
	t := flattree.DefaultOptions()
	if c.MaxDepth != nil {
		t.MaxDepth = *c.MaxDepth
	}
	t.AllowCrossParent = c.AllowCrossParent

	setF := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	setF(&d.UnnestMargin, c.UnnestMargin)
	setF(&d.HandleWidth, c.HandleWidth)
	setF(&d.NestBandLow, c.NestBandLow)
	setF(&d.NestBandHigh, c.NestBandHigh)
	setF(&d.UpwardThreshold, c.UpwardThreshold)
	setF(&d.DownwardThreshold, c.DownwardThreshold)
	d.AllowCompletedDrag = c.AllowCompletedDrag
	return t, d
}

// engineFlagSet exposes per-invocation engine overrides. Only flags the user actually set
// are copied onto the config (see applyEngineFlags).
func engineFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("engine", pflag.ContinueOnError)
	fs.Int("max-depth", flattree.DefaultMaxDepth, "Deepest allowed nesting level (0-based)")
	fs.Bool("allow-cross-parent", false, "Allow reorders that leave a task outside its parent's span")
	fs.Bool("allow-completed", false, "Allow dragging completed tasks")
	return fs
}

func applyEngineFlags(fs *pflag.FlagSet, c *store.EngineConfig) error {
	if fs.Changed("max-depth") {
		v, err := fs.GetInt("max-depth")
		if err != nil {
			return err
		}
		c.MaxDepth = &v
	}
	if fs.Changed("allow-cross-parent") {
		v, err := fs.GetBool("allow-cross-parent")
		if err != nil {
			return err
		}
		c.AllowCrossParent = v
	}
	if fs.Changed("allow-completed") {
		v, err := fs.GetBool("allow-completed")
		if err != nil {
			return err
		}
		c.AllowCompletedDrag = v
	}
	return nil
}

// layoutFlagSet binds the list geometry used to hit-test pointer coordinates.
func layoutFlagSet(l *dragintent.Layout) *pflag.FlagSet {
	fs := pflag.NewFlagSet("layout", pflag.ContinueOnError)
	fs.Float64Var(&l.Left, "list-left", 0, "X of the list's left edge")
	fs.Float64Var(&l.Top, "list-top", 0, "Y of the first row's top edge")
	fs.Float64Var(&l.RowHeight, "row-height", 40, "Row height")
	fs.Float64Var(&l.NameLeft, "name-left", 60, "X where the name column starts")
	fs.Float64Var(&l.NameRight, "name-right", 400, "X where the name column ends")
	return fs
}

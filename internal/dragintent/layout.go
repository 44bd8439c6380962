package dragintent

import (
	"math"

	"tasktree-cli/internal/flattree"
)

// Layout describes a list whose rows all have the same height, stacked from Top.
type Layout struct {
	Left      float64 `json:"left"`
	Top       float64 `json:"top"`
	RowHeight float64 `json:"rowHeight"`
	NameLeft  float64 `json:"nameLeft"`
	NameRight float64 `json:"nameRight"`
}

// RowAt returns the index of the row containing y, or -1 outside the rows.
func (l Layout) RowAt(y float64, rows int) int {
	if l.RowHeight <= 0 || y < l.Top {
		return -1
	}
	i := int(math.Floor((y - l.Top) / l.RowHeight))
	if i >= rows {
		return -1
	}
	return i
}

func (l Layout) RowRect(i int) Rect {
	return Rect{Top: l.Top + float64(i)*l.RowHeight, Height: l.RowHeight}
}

func (l Layout) Geometry(rows int) ListGeometry {
	return ListGeometry{
		Left:          l.Left,
		NameLeft:      l.NameLeft,
		NameRight:     l.NameRight,
		LastRowBottom: l.Top + float64(rows)*l.RowHeight,
	}
}

// HoverAt hit-tests p against the tree's rows.
func (l Layout) HoverAt(tree *flattree.Tree, p Pointer) Hover {
	i := l.RowAt(p.Y, tree.Len())
	if i < 0 {
		return Hover{}
	}
	return Hover{ID: tree.At(i).ID, Row: l.RowRect(i)}
}

// ClassifyAt hit-tests p and classifies it in one step.
func (l Layout) ClassifyAt(tree *flattree.Tree, s Session, p Pointer, opts Options) Intent {
	return Classify(tree, s, p, l.HoverAt(tree, p), l.Geometry(tree.Len()), opts)
}

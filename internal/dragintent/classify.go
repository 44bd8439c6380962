package dragintent

import "tasktree-cli/internal/flattree"

type Options struct {
	// UnnestMargin is the strip at the list's left edge that means "promote one level".
	UnnestMargin float64 `json:"unnestMargin"`
	// HandleWidth is skipped at the left of the name column when testing the nest zone.
	HandleWidth float64 `json:"handleWidth"`
	// NestBandLow/High bound the vertical middle band of a row (fractions of row height).
	NestBandLow  float64 `json:"nestBandLow"`
	NestBandHigh float64 `json:"nestBandHigh"`
	// Reorder split points; the asymmetry keeps the target from flickering.
	UpwardThreshold   float64 `json:"upwardThreshold"`
	DownwardThreshold float64 `json:"downwardThreshold"`

	AllowCompletedDrag bool `json:"allowCompletedDrag"`
}

func DefaultOptions() Options {
	return Options{
		UnnestMargin:      50,
		HandleWidth:       24,
		NestBandLow:       0.30,
		NestBandHigh:      0.70,
		UpwardThreshold:   0.70,
		DownwardThreshold: 0.30,
	}
}

type Pointer struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Rect struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Hover is the row under the pointer; an empty ID means no row.
type Hover struct {
	ID  string `json:"id,omitempty"`
	Row Rect   `json:"row"`
}

type ListGeometry struct {
	Left          float64 `json:"left"`
	NameLeft      float64 `json:"nameLeft"`
	NameRight     float64 `json:"nameRight"`
	LastRowBottom float64 `json:"lastRowBottom"`
}

// Classify decides what dropping the session's task at p would do. Zones, in priority order:
// unnest strip at the list's left edge, below the last row, the nest band of the hovered
// row, and finally reorder before/after the hovered row. Anything that would be rejected by
// the tree, or would leave the task where it is, yields None.
func Classify(tree *flattree.Tree, s Session, p Pointer, hover Hover, list ListGeometry, opts Options) Intent {
	if tree == nil || !s.Active() {
		return Intent{}
	}
	dragged, ok := tree.Find(s.DraggedID)
	if !ok {
		return Intent{}
	}

	if p.X-list.Left <= opts.UnnestMargin && dragged.Depth > 0 {
		if tree.CheckUnnest(dragged.ID) != nil {
			return Intent{}
		}
		return Intent{Kind: Unnest}
	}

	if p.Y > list.LastRowBottom {
		if tree.CheckReorderToEnd(dragged.ID) != nil {
			return Intent{}
		}
		return Intent{Kind: ReorderToEnd}
	}

	if hover.ID == "" || hover.ID == dragged.ID || hover.Row.Height <= 0 {
		return Intent{}
	}
	hi := tree.IndexOf(hover.ID)
	if hi < 0 {
		return Intent{}
	}
	hovered := tree.At(hi)
	rel := (p.Y - hover.Row.Top) / hover.Row.Height

	inBand := rel >= opts.NestBandLow && rel <= opts.NestBandHigh
	inName := p.X >= list.NameLeft+opts.HandleWidth && p.X <= list.NameRight
	if inBand && inName && hovered.Depth < tree.Options().MaxDepth && tree.CheckNest(dragged.ID, hovered.ID) == nil {
		return Intent{Kind: Nest, TargetID: hovered.ID}
	}

	threshold := opts.DownwardThreshold
	if hi < tree.IndexOf(dragged.ID) {
		threshold = opts.UpwardThreshold
	}
	if rel < threshold {
		if tree.CheckReorderBefore(dragged.ID, hovered.ID) != nil {
			return Intent{}
		}
		return Intent{Kind: ReorderBefore, TargetID: hovered.ID}
	}
	if tree.CheckReorderAfter(dragged.ID, hovered.ID) != nil {
		return Intent{}
	}
	return Intent{Kind: ReorderAfter, TargetID: hovered.ID}
}

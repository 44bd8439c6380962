package flattree

import "tasktree-cli/internal/model"

type MoveKind string

const (
	MoveNest          MoveKind = "nest"
	MoveUnnest        MoveKind = "unnest"
	MoveReorderBefore MoveKind = "reorder-before"
	MoveReorderAfter  MoveKind = "reorder-after"
	MoveReorderToEnd  MoveKind = "reorder-to-end"
)

// Move describes a structural edit that was applied.
type Move struct {
	Kind     MoveKind
	AnchorID string
	TargetID string

	OldParentID *string
	NewParentID *string

	// MovedIDs is the anchor followed by its descendants, in their (unchanged) relative order.
	MovedIDs []string
	// Clamped lists the moved tasks whose dates were tightened to the new parent's range.
	Clamped []DateChange
}

func (m Move) ParentChanged() bool {
	return !model.SameParent(m.OldParentID, m.NewParentID)
}

// CheckNest validates nest(draggedID, targetID) without mutating the tree.
func (t *Tree) CheckNest(draggedID, targetID string) error {
	_, _, err := t.planNest(draggedID, targetID)
	return err
}

func (t *Tree) planNest(draggedID, targetID string) (di, ti int, err error) {
	if draggedID == targetID {
		return 0, 0, ErrSelf
	}
	di = t.IndexOf(draggedID)
	if di < 0 {
		return 0, 0, notFound(draggedID)
	}
	ti = t.IndexOf(targetID)
	if ti < 0 {
		return 0, 0, notFound(targetID)
	}
	if ti > di && ti <= di+t.DescendantCount(di) {
		return 0, 0, ErrCycle
	}
	newDepth := t.tasks[ti].Depth + 1
	if newDepth > t.opts.maxDepth() {
		return 0, 0, ErrDepthCap
	}
	if newDepth+t.subtreeHeight(di) > t.opts.maxDepth() {
		return 0, 0, ErrDepthCap
	}
	return di, ti, nil
}

// Nest makes draggedID the last child of targetID, carrying its descendants along.
// Moved descendants keep their relative order and shift depth uniformly; moved dates are
// clamped to the target's range.
func (t *Tree) Nest(draggedID, targetID string) (Move, error) {
	di, ti, err := t.planNest(draggedID, targetID)
	if err != nil {
		return Move{}, err
	}
	target := cloneTask(t.tasks[ti])
	mv := Move{
		Kind:        MoveNest,
		AnchorID:    draggedID,
		TargetID:    targetID,
		OldParentID: copyID(t.tasks[di].ParentID),
		NewParentID: model.StrPtr(targetID),
	}

	span := t.extract(di, t.DescendantCount(di)+1)
	delta := target.Depth + 1 - span[0].Depth
	for i := range span {
		span[i].Depth += delta
	}
	span[0].ParentID = model.StrPtr(targetID)

	ti = t.IndexOf(targetID)
	at := ti + 1 + t.DescendantCount(ti)
	t.insert(at, span)

	for i := at; i < at+len(span); i++ {
		mv.MovedIDs = append(mv.MovedIDs, t.tasks[i].ID)
		if ch, ok := ClampToParent(&t.tasks[i], target.StartDate, target.EndDate); ok {
			mv.Clamped = append(mv.Clamped, ch)
		}
	}
	return mv, nil
}

// CheckUnnest validates unnest(draggedID) without mutating the tree.
func (t *Tree) CheckUnnest(draggedID string) error {
	_, _, err := t.planUnnest(draggedID)
	return err
}

func (t *Tree) planUnnest(draggedID string) (di, pi int, err error) {
	di = t.IndexOf(draggedID)
	if di < 0 {
		return 0, 0, notFound(draggedID)
	}
	p := t.tasks[di].ParentID
	if p == nil {
		return 0, 0, ErrNoParent
	}
	pi = t.IndexOf(*p)
	if pi < 0 || pi > di {
		return 0, 0, ErrCorruptTree
	}
	return di, pi, nil
}

// Unnest promotes draggedID one level: its grandparent becomes its parent and the subtree is
// placed directly after its former parent's remaining descendants.
func (t *Tree) Unnest(draggedID string) (Move, error) {
	di, pi, err := t.planUnnest(draggedID)
	if err != nil {
		return Move{}, err
	}
	formerParent := t.tasks[pi]
	newParent := copyID(formerParent.ParentID)
	mv := Move{
		Kind:        MoveUnnest,
		AnchorID:    draggedID,
		TargetID:    formerParent.ID,
		OldParentID: copyID(t.tasks[di].ParentID),
		NewParentID: copyID(newParent),
	}

	span := t.extract(di, t.DescendantCount(di)+1)
	for i := range span {
		if span[i].Depth > 0 {
			span[i].Depth--
		}
	}
	span[0].ParentID = newParent

	pi = t.IndexOf(formerParent.ID)
	at := pi + 1 + t.DescendantCount(pi)
	t.insert(at, span)

	for i := at; i < at+len(span); i++ {
		mv.MovedIDs = append(mv.MovedIDs, t.tasks[i].ID)
	}
	return mv, nil
}

func copyID(p *string) *string {
	if p == nil {
		return nil
	}
	return model.StrPtr(*p)
}

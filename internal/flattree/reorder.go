package flattree

// Reordering moves a subtree to a new position in the flattened sequence without touching
// any parent id.

// CheckReorderBefore validates ReorderBefore without mutating the tree.
func (t *Tree) CheckReorderBefore(draggedID, targetID string) error {
	_, _, err := t.planReorderBefore(draggedID, targetID)
	return err
}

// CheckReorderAfter validates ReorderAfter without mutating the tree.
func (t *Tree) CheckReorderAfter(draggedID, targetID string) error {
	next, err := t.resolveAfter(draggedID, targetID)
	if err != nil {
		return err
	}
	if next == "" {
		return t.CheckReorderToEnd(draggedID)
	}
	return t.CheckReorderBefore(draggedID, next)
}

// CheckReorderToEnd validates ReorderToEnd without mutating the tree.
func (t *Tree) CheckReorderToEnd(draggedID string) error {
	_, err := t.planReorderToEnd(draggedID)
	return err
}

func (t *Tree) planReorderBefore(draggedID, targetID string) (di, ti int, err error) {
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
	last := di + t.DescendantCount(di)
	if ti > di && ti <= last {
		return 0, 0, ErrCycle
	}
	if ti == last+1 {
		return 0, 0, ErrNoop
	}
	// prev is the record that will precede the span once it lands before the target.
	prev := ti - 1
	if prev >= di && prev <= last {
		prev = di - 1
	}
	if !t.fitsBetween(di, prev, ti) {
		return 0, 0, ErrContiguity
	}
	return di, ti, nil
}

func (t *Tree) planReorderToEnd(draggedID string) (int, error) {
	di := t.IndexOf(draggedID)
	if di < 0 {
		return 0, notFound(draggedID)
	}
	last := di + t.DescendantCount(di)
	if last == len(t.tasks)-1 {
		return 0, ErrNoop
	}
	if !t.fitsBetween(di, len(t.tasks)-1, -1) {
		return 0, ErrContiguity
	}
	return di, nil
}

// resolveAfter maps "after targetID" to "before the record that currently follows targetID".
// An empty id means the end of the sequence.
func (t *Tree) resolveAfter(draggedID, targetID string) (string, error) {
	if draggedID == targetID {
		return "", ErrSelf
	}
	di := t.IndexOf(draggedID)
	if di < 0 {
		return "", notFound(draggedID)
	}
	ti := t.IndexOf(targetID)
	if ti < 0 {
		return "", notFound(targetID)
	}
	if ti > di && ti <= di+t.DescendantCount(di) {
		return "", ErrCycle
	}
	next := ti + 1
	if next == di {
		return "", ErrNoop
	}
	if next >= len(t.tasks) {
		return "", nil
	}
	return t.tasks[next].ID, nil
}

// fitsBetween reports whether the span anchored at di may sit between positions prev and
// next (original indexes; -1 means none) without separating a task from its parent's span.
func (t *Tree) fitsBetween(di, prev, next int) bool {
	if t.opts.AllowCrossParent {
		return true
	}
	anchor := t.tasks[di]
	if next >= 0 && t.tasks[next].Depth > anchor.Depth {
		return false
	}
	if anchor.ParentID == nil {
		return true
	}
	if prev < 0 {
		return false
	}
	pi := t.IndexOf(*anchor.ParentID)
	if pi < 0 {
		return false
	}
	return prev >= pi && prev <= pi+t.DescendantCount(pi)
}

// ReorderBefore moves draggedID (with its descendants) to sit directly before targetID.
func (t *Tree) ReorderBefore(draggedID, targetID string) (Move, error) {
	di, _, err := t.planReorderBefore(draggedID, targetID)
	if err != nil {
		return Move{}, err
	}
	mv := t.reorderMove(MoveReorderBefore, di, targetID)
	span := t.extract(di, t.DescendantCount(di)+1)
	ti := t.IndexOf(targetID)
	t.insert(ti, span)
	return mv, nil
}

// ReorderAfter moves draggedID to sit directly before the record that currently follows
// targetID, or at the end when targetID is last.
func (t *Tree) ReorderAfter(draggedID, targetID string) (Move, error) {
	next, err := t.resolveAfter(draggedID, targetID)
	if err != nil {
		return Move{}, err
	}
	var mv Move
	if next == "" {
		mv, err = t.ReorderToEnd(draggedID)
	} else {
		mv, err = t.ReorderBefore(draggedID, next)
	}
	if err != nil {
		return Move{}, err
	}
	mv.Kind = MoveReorderAfter
	mv.TargetID = targetID
	return mv, nil
}

// ReorderToEnd moves draggedID to the very end of the sequence.
func (t *Tree) ReorderToEnd(draggedID string) (Move, error) {
	di, err := t.planReorderToEnd(draggedID)
	if err != nil {
		return Move{}, err
	}
	mv := t.reorderMove(MoveReorderToEnd, di, "")
	span := t.extract(di, t.DescendantCount(di)+1)
	t.tasks = append(t.tasks, span...)
	return mv, nil
}

func (t *Tree) reorderMove(kind MoveKind, di int, targetID string) Move {
	mv := Move{
		Kind:        kind,
		AnchorID:    t.tasks[di].ID,
		TargetID:    targetID,
		OldParentID: copyID(t.tasks[di].ParentID),
		NewParentID: copyID(t.tasks[di].ParentID),
	}
	for i := di; i <= di+t.DescendantCount(di); i++ {
		mv.MovedIDs = append(mv.MovedIDs, t.tasks[i].ID)
	}
	return mv
}

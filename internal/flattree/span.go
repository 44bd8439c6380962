package flattree

// DescendantCount returns how many records after position i are descendants of it:
// the run of following records whose depth is strictly greater than the anchor's.
func (t *Tree) DescendantCount(i int) int {
	if i < 0 || i >= len(t.tasks) {
		return 0
	}
	d := t.tasks[i].Depth
	n := 0
	for j := i + 1; j < len(t.tasks); j++ {
		if t.tasks[j].Depth <= d {
			break
		}
		n++
	}
	return n
}

// Span returns the inclusive index range of id and its descendants.
func (t *Tree) Span(id string) (start, end int, ok bool) {
	i := t.IndexOf(id)
	if i < 0 {
		return 0, 0, false
	}
	return i, i + t.DescendantCount(i), true
}

// SpanIDs lists id and its descendants in sequence order.
func (t *Tree) SpanIDs(id string) []string {
	start, end, ok := t.Span(id)
	if !ok {
		return nil
	}
	out := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, t.tasks[i].ID)
	}
	return out
}

// IsDescendant reports whether id lies strictly inside ancestorID's span.
func (t *Tree) IsDescendant(ancestorID, id string) bool {
	start, end, ok := t.Span(ancestorID)
	if !ok {
		return false
	}
	for i := start + 1; i <= end; i++ {
		if t.tasks[i].ID == id {
			return true
		}
	}
	return false
}

// subtreeHeight is the deepest level below position i, relative to i (0 for a leaf).
func (t *Tree) subtreeHeight(i int) int {
	base := t.tasks[i].Depth
	h := 0
	for j := i + 1; j <= i+t.DescendantCount(i); j++ {
		if d := t.tasks[j].Depth - base; d > h {
			h = d
		}
	}
	return h
}

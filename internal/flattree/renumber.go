package flattree

type KeyChange struct {
	ID  string
	Old int
	New int
}

// Renumber assigns orderKey = position+1 across the whole sequence and returns only the
// records whose key actually changed.
func (t *Tree) Renumber() []KeyChange {
	var out []KeyChange
	for i := range t.tasks {
		want := i + 1
		if t.tasks[i].OrderKey == want {
			continue
		}
		out = append(out, KeyChange{ID: t.tasks[i].ID, Old: t.tasks[i].OrderKey, New: want})
		t.tasks[i].OrderKey = want
	}
	return out
}

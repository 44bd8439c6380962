package flattree

import "fmt"

type Problem struct {
	ID      string `json:"id"`
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// Validate checks the contiguous-descendant invariant, cached depths, the depth cap and
// order-key density. It returns every problem found (nil when the tree is sound).
func (t *Tree) Validate() []Problem {
	var out []Problem
	add := func(i int, format string, args ...any) {
		out = append(out, Problem{ID: t.tasks[i].ID, Index: i, Message: fmt.Sprintf(format, args...)})
	}

	seen := map[string]bool{}
	// stack holds the indexes of the open ancestors of the current record.
	var stack []int
	for i := range t.tasks {
		task := t.tasks[i]
		if seen[task.ID] {
			add(i, "duplicate id")
		}
		seen[task.ID] = true

		for len(stack) > 0 && t.tasks[stack[len(stack)-1]].Depth >= task.Depth {
			stack = stack[:len(stack)-1]
		}
		var wantParent string
		if len(stack) > 0 {
			wantParent = t.tasks[stack[len(stack)-1]].ID
		}
		gotParent := ""
		if task.ParentID != nil {
			gotParent = *task.ParentID
		}
		if gotParent != wantParent {
			if wantParent == "" {
				add(i, "parent %s does not enclose this task", gotParent)
			} else {
				add(i, "sits inside %s's span but has parent %q", wantParent, gotParent)
			}
		}
		if task.Depth != len(stack) {
			add(i, "depth %d, want %d", task.Depth, len(stack))
		}
		if task.Depth > t.opts.maxDepth() {
			add(i, "depth %d exceeds max %d", task.Depth, t.opts.maxDepth())
		}
		if task.OrderKey != i+1 {
			add(i, "orderKey %d, want %d", task.OrderKey, i+1)
		}
		stack = append(stack, i)
	}
	return out
}

// DepthFromParents recomputes each task's depth by following parent ids to the root.
// It returns -1 for tasks whose chain is broken or cyclic.
func (t *Tree) DepthFromParents() map[string]int {
	parent := map[string]*string{}
	for i := range t.tasks {
		parent[t.tasks[i].ID] = t.tasks[i].ParentID
	}
	out := map[string]int{}
	for id := range parent {
		depth := 0
		cur := parent[id]
		for cur != nil {
			depth++
			p, ok := parent[*cur]
			if !ok || depth > len(parent) {
				depth = -1
				break
			}
			cur = p
		}
		out[id] = depth
	}
	return out
}

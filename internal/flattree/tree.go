// Package flattree holds a task hierarchy as one depth-first ordered slice.
//
// Every task's descendants occupy a contiguous run immediately after it, so a subtree is
// always a slice window and structural edits are splice operations on a single arena.
package flattree

import (
	"strings"

	"tasktree-cli/internal/model"
)

// DefaultMaxDepth allows three levels: 0, 1 and 2.
const DefaultMaxDepth = 2

type Options struct {
	MaxDepth int
	// AllowCrossParent permits reorder drops that leave a task outside its parent's span.
	AllowCrossParent bool
}

func DefaultOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth}
}

func (o Options) maxDepth() int {
	if o.MaxDepth < 0 {
		return 0
	}
	return o.MaxDepth
}

type Tree struct {
	tasks []model.Task
	opts  Options
}

// New wraps tasks that are already in flattened order. Depths are taken as given;
// use Flatten for data coming from a load.
func New(tasks []model.Task, opts Options) *Tree {
	cp := make([]model.Task, len(tasks))
	for i := range tasks {
		cp[i] = cloneTask(tasks[i])
	}
	return &Tree{tasks: cp, opts: opts}
}

// Flatten walks a nested load depth-first, assigning depth and parent id from the nesting.
// Stored depth values are ignored. A task id seen twice is only emitted the first time.
func Flatten(roots []*model.TaskNode, opts Options) *Tree {
	t := &Tree{opts: opts}
	seen := map[string]bool{}
	var walk func(n *model.TaskNode, parent *string, depth int)
	walk = func(n *model.TaskNode, parent *string, depth int) {
		if n == nil {
			return
		}
		id := strings.TrimSpace(n.Task.ID)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		task := cloneTask(n.Task)
		task.ParentID = nil
		if parent != nil {
			task.ParentID = model.StrPtr(*parent)
		}
		task.Depth = depth
		t.tasks = append(t.tasks, task)
		for _, ch := range n.Children {
			walk(ch, &id, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, nil, 0)
	}
	return t
}

func (t *Tree) Options() Options { return t.opts }

func (t *Tree) Len() int { return len(t.tasks) }

// At returns a copy of the task at position i.
func (t *Tree) At(i int) model.Task {
	return cloneTask(t.tasks[i])
}

// Tasks returns a copy of the whole sequence.
func (t *Tree) Tasks() []model.Task {
	out := make([]model.Task, len(t.tasks))
	for i := range t.tasks {
		out[i] = cloneTask(t.tasks[i])
	}
	return out
}

func (t *Tree) Clone() *Tree {
	return New(t.tasks, t.opts)
}

func (t *Tree) IndexOf(id string) int {
	for i := range t.tasks {
		if t.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Tree) Find(id string) (model.Task, bool) {
	i := t.IndexOf(id)
	if i < 0 {
		return model.Task{}, false
	}
	return cloneTask(t.tasks[i]), true
}

// AppendRoot adds task as the last root.
func (t *Tree) AppendRoot(task model.Task) {
	task = cloneTask(task)
	task.ParentID = nil
	task.Depth = 0
	t.tasks = append(t.tasks, task)
}

// AppendChild adds task as the last child of parentID.
func (t *Tree) AppendChild(parentID string, task model.Task) error {
	pi := t.IndexOf(parentID)
	if pi < 0 {
		return notFound(parentID)
	}
	depth := t.tasks[pi].Depth + 1
	if depth > t.opts.maxDepth() {
		return ErrDepthCap
	}
	task = cloneTask(task)
	task.ParentID = model.StrPtr(parentID)
	task.Depth = depth
	t.insert(pi+1+t.DescendantCount(pi), []model.Task{task})
	return nil
}

// Remove deletes id and its whole subtree, returning the removed tasks in order.
func (t *Tree) Remove(id string) ([]model.Task, error) {
	i := t.IndexOf(id)
	if i < 0 {
		return nil, notFound(id)
	}
	return t.extract(i, t.DescendantCount(i)+1), nil
}

// extract cuts n records starting at start and returns them.
func (t *Tree) extract(start, n int) []model.Task {
	span := make([]model.Task, n)
	copy(span, t.tasks[start:start+n])
	t.tasks = append(t.tasks[:start], t.tasks[start+n:]...)
	return span
}

// insert splices span in so that span[0] lands at position at.
func (t *Tree) insert(at int, span []model.Task) {
	if at < 0 {
		at = 0
	}
	if at > len(t.tasks) {
		at = len(t.tasks)
	}
	out := make([]model.Task, 0, len(t.tasks)+len(span))
	out = append(out, t.tasks[:at]...)
	out = append(out, span...)
	out = append(out, t.tasks[at:]...)
	t.tasks = out
}

func cloneTask(in model.Task) model.Task {
	out := in
	if in.ParentID != nil {
		out.ParentID = model.StrPtr(*in.ParentID)
	}
	if in.StartDate != nil {
		out.StartDate = model.DatePtr(*in.StartDate)
	}
	if in.EndDate != nil {
		out.EndDate = model.DatePtr(*in.EndDate)
	}
	return out
}

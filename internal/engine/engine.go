// Package engine applies classified drop intents to a flattened task tree and persists the
// resulting field changes.
//
// A drop happens in two phases. Apply mutates the in-memory tree synchronously and computes
// one patch per changed task. Commit then sends those patches to storage concurrently. When
// any write fails the caller reloads the whole tree from storage; there is no per-task rollback.
package engine

import (
	"errors"
	"sort"

	"tasktree-cli/internal/dragintent"
	"tasktree-cli/internal/flattree"
	"tasktree-cli/internal/model"
)

// Rejection reasons reported in Result.Reason.
const (
	ReasonNoSession  = "no-session"
	ReasonNoIntent   = "no-intent"
	ReasonCompleted  = "completed"
	ReasonNotFound   = "not-found"
	ReasonSelf       = "self"
	ReasonCycle      = "cycle"
	ReasonDepthCap   = "depth-cap"
	ReasonNoParent   = "no-parent"
	ReasonNoop       = "noop"
	ReasonContiguity = "contiguity"
	ReasonCorrupt    = "corrupt"
	ReasonUnknown    = "unknown"
)

type Result struct {
	Applied bool              `json:"applied"`
	Intent  dragintent.Intent `json:"intent"`
	// Reason is set when Applied is false.
	Reason string `json:"reason,omitempty"`

	Move       flattree.Move        `json:"-"`
	KeyChanges []flattree.KeyChange `json:"-"`
	Patches    []model.TaskPatch    `json:"patches,omitempty"`
}

func rejected(in dragintent.Intent, reason string) Result {
	return Result{Intent: in, Reason: reason}
}

// Apply performs phase one of a drop: it validates the intent against the current tree,
// mutates the tree, renumbers order keys, and returns the patches to persist.
// A rejected intent leaves the tree untouched.
func Apply(tree *flattree.Tree, s dragintent.Session, in dragintent.Intent, opts dragintent.Options) Result {
	if tree == nil || !s.Active() {
		return rejected(in, ReasonNoSession)
	}
	if in.IsNone() {
		return rejected(in, ReasonNoIntent)
	}
	dragged, ok := tree.Find(s.DraggedID)
	if !ok {
		return rejected(in, ReasonNotFound)
	}
	if dragged.IsCompleted && !opts.AllowCompletedDrag {
		return rejected(in, ReasonCompleted)
	}
	// The tree may have changed since the intent was classified.
	if in.TargetID != "" && tree.IsDescendant(dragged.ID, in.TargetID) {
		return rejected(in, ReasonCycle)
	}

	var (
		mv  flattree.Move
		err error
	)
	switch in.Kind {
	case dragintent.Nest:
		mv, err = tree.Nest(dragged.ID, in.TargetID)
	case dragintent.Unnest:
		mv, err = tree.Unnest(dragged.ID)
	case dragintent.ReorderBefore:
		mv, err = tree.ReorderBefore(dragged.ID, in.TargetID)
	case dragintent.ReorderAfter:
		mv, err = tree.ReorderAfter(dragged.ID, in.TargetID)
	case dragintent.ReorderToEnd:
		mv, err = tree.ReorderToEnd(dragged.ID)
	default:
		return rejected(in, ReasonUnknown)
	}
	if err != nil {
		return rejected(in, ReasonFor(err))
	}

	keys := tree.Renumber()
	return Result{
		Applied:    true,
		Intent:     in,
		Move:       mv,
		KeyChanges: keys,
		Patches:    buildPatches(tree, mv, keys),
	}
}

// ReasonFor maps a flattree rejection to its Result.Reason.
func ReasonFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, flattree.ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, flattree.ErrSelf):
		return ReasonSelf
	case errors.Is(err, flattree.ErrCycle):
		return ReasonCycle
	case errors.Is(err, flattree.ErrDepthCap):
		return ReasonDepthCap
	case errors.Is(err, flattree.ErrNoParent):
		return ReasonNoParent
	case errors.Is(err, flattree.ErrNoop):
		return ReasonNoop
	case errors.Is(err, flattree.ErrContiguity):
		return ReasonContiguity
	case errors.Is(err, flattree.ErrCorruptTree):
		return ReasonCorrupt
	default:
		return ReasonUnknown
	}
}

// buildPatches merges parent, date and order key changes into one patch per task, ordered by
// the task's new position.
func buildPatches(tree *flattree.Tree, mv flattree.Move, keys []flattree.KeyChange) []model.TaskPatch {
	byID := map[string]*model.TaskPatch{}
	get := func(id string) *model.TaskPatch {
		p, ok := byID[id]
		if !ok {
			p = &model.TaskPatch{ID: id}
			byID[id] = p
		}
		return p
	}

	if mv.ParentChanged() {
		p := get(mv.AnchorID)
		p.ParentSet = true
		if mv.NewParentID != nil {
			p.ParentID = model.StrPtr(*mv.NewParentID)
		}
	}
	for _, ch := range mv.Clamped {
		p := get(ch.ID)
		p.DatesSet = true
		p.StartDate = ch.NewStart
		p.EndDate = ch.NewEnd
	}
	for _, k := range keys {
		v := k.New
		get(k.ID).OrderKey = &v
	}

	out := make([]model.TaskPatch, 0, len(byID))
	for _, p := range byID {
		if !p.Empty() {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return tree.IndexOf(out[i].ID) < tree.IndexOf(out[j].ID)
	})
	return out
}

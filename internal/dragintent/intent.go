// Package dragintent turns raw pointer positions over a flattened task list into one of the
// engine's drop intents.
package dragintent

import (
	"fmt"

	"tasktree-cli/internal/flattree"
)

type Kind string

const (
	None          Kind = ""
	ReorderBefore Kind = "reorder-before"
	ReorderAfter  Kind = "reorder-after"
	ReorderToEnd  Kind = "reorder-to-end"
	Nest          Kind = "nest"
	Unnest        Kind = "unnest"
)

// Intent is what a drop at the current pointer position would do.
type Intent struct {
	Kind     Kind   `json:"kind"`
	TargetID string `json:"targetId,omitempty"`
}

func (i Intent) IsNone() bool { return i.Kind == None }

func (i Intent) String() string {
	switch i.Kind {
	case None:
		return "none"
	case ReorderToEnd, Unnest:
		return string(i.Kind)
	default:
		return fmt.Sprintf("%s %s", i.Kind, i.TargetID)
	}
}

// ParseKind accepts the kind names used on the command line.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case ReorderBefore, ReorderAfter, ReorderToEnd, Nest, Unnest:
		return Kind(s), nil
	case "before":
		return ReorderBefore, nil
	case "after":
		return ReorderAfter, nil
	case "end":
		return ReorderToEnd, nil
	}
	return None, fmt.Errorf("unknown intent %q", s)
}

// Session is the transient state of one drag, created on press and consumed on drop.
type Session struct {
	DraggedID string `json:"draggedId"`
	// Intent is the most recent classification; the drop applies it.
	Intent Intent `json:"intent"`
}

func (s Session) Active() bool { return s.DraggedID != "" }

// WithIntent returns a copy of s carrying in as the pending drop intent.
func (s Session) WithIntent(in Intent) Session {
	s.Intent = in
	return s
}

// Begin starts a drag of id. Completed tasks are not draggable unless opts allow it.
func Begin(tree *flattree.Tree, id string, opts Options) (Session, bool) {
	i := tree.IndexOf(id)
	if i < 0 {
		return Session{}, false
	}
	if tree.At(i).IsCompleted && !opts.AllowCompletedDrag {
		return Session{}, false
	}
	return Session{DraggedID: id}, true
}

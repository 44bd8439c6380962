package flattree

import (
	"errors"
	"fmt"
)

// Rejections. Callers treat all of these as "the move does not happen"; the tree is
// left untouched whenever one is returned.
var (
	ErrNotFound    = errors.New("task not found")
	ErrSelf        = errors.New("target is the dragged task")
	ErrCycle       = errors.New("target is inside the dragged subtree")
	ErrDepthCap    = errors.New("maximum nesting depth exceeded")
	ErrNoParent    = errors.New("task has no parent")
	ErrNoop        = errors.New("task is already at that position")
	ErrContiguity  = errors.New("drop would separate a task from its parent")
	ErrCorruptTree = errors.New("tree structure is inconsistent")
)

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

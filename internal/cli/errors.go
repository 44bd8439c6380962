package cli

import (
	"errors"
	"fmt"
)

var errNoProjectSelected = errors.New("no project selected")

type noProjectError struct {
	count int
}

func (e noProjectError) Error() string {
	if e.count == 0 {
		return "no projects yet; run `tasktree projects create --name ...`"
	}
	return fmt.Sprintf("%d projects exist; pick one with `tasktree projects use <id>` or --project", e.count)
}

func (e noProjectError) Is(target error) bool { return target == errNoProjectSelected }

func errNoProject(count int) error {
	return noProjectError{count: count}
}

// rejectedError reports a move that the tree refused.
type rejectedError struct {
	taskID string
	reason string
}

func (e rejectedError) Error() string {
	return fmt.Sprintf("move of %s rejected: %s", e.taskID, e.reason)
}

func errRejected(taskID, reason string) error {
	return rejectedError{taskID: taskID, reason: reason}
}

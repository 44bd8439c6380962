package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"tasktree-cli/internal/model"
)

type Loader interface {
	LoadTree(ctx context.Context, projectID string) ([]*model.TaskNode, error)
}

type Updater interface {
	UpdateTask(ctx context.Context, p model.TaskPatch) error
}

// Store is what a Board needs from storage.
type Store interface {
	Loader
	Updater
}

// EventRecorder is optionally implemented by stores that keep an event log.
type EventRecorder interface {
	AppendEvent(ctx context.Context, ev model.Event) error
}

// PersistError reports the tasks whose update failed during a commit.
type PersistError struct {
	Failed []string
	Err    error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("saving %d task(s) failed (%s): %v", len(e.Failed), strings.Join(e.Failed, ", "), e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// UserMessage is the text shown to a user after the board has been reloaded.
func (e *PersistError) UserMessage() string {
	return "Could not save the move. The list was reloaded from storage."
}

// Commit performs phase two of a drop: it issues every patch at once and waits for all of
// them. Issued writes are not cancelled with ctx and are never retried.
func Commit(ctx context.Context, u Updater, patches []model.TaskPatch) error {
	if len(patches) == 0 {
		return nil
	}
	ctx = context.WithoutCancel(ctx)

	var (
		mu     sync.Mutex
		failed []string
		errs   []error
		g      errgroup.Group
	)
	for _, p := range patches {
		g.Go(func() error {
			if err := u.UpdateTask(ctx, p); err != nil {
				mu.Lock()
				failed = append(failed, p.ID)
				errs = append(errs, fmt.Errorf("%s: %w", p.ID, err))
				mu.Unlock()
				return err
			}
			return nil
		})
	}
	if g.Wait() == nil {
		return nil
	}
	sort.Strings(failed)
	return &PersistError{Failed: failed, Err: errors.Join(errs...)}
}

package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"tasktree-cli/internal/dragintent"
	"tasktree-cli/internal/flattree"
	"tasktree-cli/internal/model"
)

// Board owns the flattened tree of one project and serializes drops against it.
type Board struct {
	mu   sync.Mutex
	tree *flattree.Tree

	store     Store
	projectID string
	treeOpts  flattree.Options
	dragOpts  dragintent.Options
	log       *slog.Logger
	metrics   *Metrics
	now       func() time.Time
}

type BoardOption func(*Board)

func WithLogger(l *slog.Logger) BoardOption {
	return func(b *Board) {
		if l != nil {
			b.log = l
		}
	}
}

func WithMetrics(m *Metrics) BoardOption {
	return func(b *Board) {
		if m != nil {
			b.metrics = m
		}
	}
}

func WithTreeOptions(o flattree.Options) BoardOption {
	return func(b *Board) { b.treeOpts = o }
}

func WithDragOptions(o dragintent.Options) BoardOption {
	return func(b *Board) { b.dragOpts = o }
}

// NewBoard returns an empty board; call Reload to populate it.
func NewBoard(store Store, projectID string, opts ...BoardOption) *Board {
	b := &Board{
		store:     store,
		projectID: projectID,
		treeOpts:  flattree.DefaultOptions(),
		dragOpts:  dragintent.DefaultOptions(),
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:   NewMetrics(nil),
		now:       time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	b.tree = flattree.New(nil, b.treeOpts)
	return b
}

func (b *Board) ProjectID() string { return b.projectID }

func (b *Board) DragOptions() dragintent.Options { return b.dragOpts }

// Reload replaces the in-memory tree with a fresh load from storage.
func (b *Board) Reload(ctx context.Context) error {
	roots, err := b.store.LoadTree(ctx, b.projectID)
	if err != nil {
		return err
	}
	t := flattree.Flatten(roots, b.treeOpts)
	b.metrics.Reloads.Inc()

	b.mu.Lock()
	b.tree = t
	b.mu.Unlock()
	b.log.Debug("board reloaded", "project", b.projectID, "tasks", t.Len())
	return nil
}

// Snapshot returns a copy of the current tree for rendering.
func (b *Board) Snapshot() *flattree.Tree {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tree.Clone()
}

func (b *Board) Begin(id string) (dragintent.Session, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return dragintent.Begin(b.tree, id, b.dragOpts)
}

// Classify hit-tests p against layout and returns the intent a drop there would have.
func (b *Board) Classify(s dragintent.Session, p dragintent.Pointer, layout dragintent.Layout) dragintent.Intent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return layout.ClassifyAt(b.tree, s, p, b.dragOpts)
}

// Drop applies in to the tree and persists the resulting patches. A rejected intent returns
// a Result with Applied=false and a nil error. When persisting fails the board is reloaded
// from storage and a *PersistError is returned.
func (b *Board) Drop(ctx context.Context, s dragintent.Session, in dragintent.Intent) (Result, error) {
	b.mu.Lock()
	res := Apply(b.tree, s, in, b.dragOpts)
	b.mu.Unlock()

	if !res.Applied {
		b.metrics.Rejections.WithLabelValues(res.Reason).Inc()
		b.log.Debug("drop rejected", "task", s.DraggedID, "intent", in.String(), "reason", res.Reason)
		return res, nil
	}
	b.metrics.Drops.WithLabelValues(string(in.Kind)).Inc()
	b.metrics.BatchSize.Observe(float64(len(res.Patches)))
	b.metrics.Writes.Add(float64(len(res.Patches)))

	err := Commit(ctx, b.store, res.Patches)
	if err != nil {
		var pe *PersistError
		if errors.As(err, &pe) {
			b.metrics.WriteFailures.Add(float64(len(pe.Failed)))
		}
		b.log.Warn("persisting drop failed, reloading", "task", s.DraggedID, "intent", in.String(), "err", err)
		if rerr := b.Reload(context.WithoutCancel(ctx)); rerr != nil {
			b.log.Error("reload after failed drop", "project", b.projectID, "err", rerr)
			return res, errors.Join(err, rerr)
		}
		return res, err
	}

	b.record(ctx, s, res)
	return res, nil
}

func (b *Board) record(ctx context.Context, s dragintent.Session, res Result) {
	rec, ok := b.store.(EventRecorder)
	if !ok {
		return
	}
	ev := model.Event{
		TS:        b.now().UTC(),
		ProjectID: b.projectID,
		Type:      "task.moved",
		EntityID:  s.DraggedID,
		Payload: map[string]any{
			"intent":   res.Intent,
			"movedIds": res.Move.MovedIDs,
			"patches":  res.Patches,
		},
	}
	if err := rec.AppendEvent(ctx, ev); err != nil {
		b.log.Warn("recording move event", "task", s.DraggedID, "err", err)
	}
}

package flattree

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tasktree-cli/internal/model"
)

// randomTree builds a valid tree of n tasks with depth <= DefaultMaxDepth.
func randomTree(rng *rand.Rand, n int, opts Options) *Tree {
	tr := New(nil, opts)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("t%02d", i)
		if tr.Len() == 0 || rng.Intn(3) == 0 {
			tr.AppendRoot(model.Task{ID: id})
			continue
		}
		parent := tr.At(rng.Intn(tr.Len()))
		if err := tr.AppendChild(parent.ID, model.Task{ID: id}); err != nil {
			tr.AppendRoot(model.Task{ID: id})
		}
	}
	tr.Renumber()
	return tr
}

func TestRandomOperations_PreserveInvariants(t *testing.T) {
	for _, allowCross := range []bool{false, true} {
		opts := Options{MaxDepth: DefaultMaxDepth, AllowCrossParent: allowCross}
		rng := rand.New(rand.NewSource(42))

		for round := 0; round < 40; round++ {
			tr := randomTree(rng, 4+rng.Intn(12), opts)
			for step := 0; step < 60; step++ {
				a := tr.At(rng.Intn(tr.Len())).ID
				b := tr.At(rng.Intn(tr.Len())).ID
				before := tr.Tasks()
				spanBefore := tr.SpanIDs(a)

				var (
					mv  Move
					err error
					op  string
				)
				switch rng.Intn(5) {
				case 0:
					op = "nest"
					mv, err = tr.Nest(a, b)
				case 1:
					op = "unnest"
					mv, err = tr.Unnest(a)
				case 2:
					op = "before"
					mv, err = tr.ReorderBefore(a, b)
				case 3:
					op = "after"
					mv, err = tr.ReorderAfter(a, b)
				default:
					op = "end"
					mv, err = tr.ReorderToEnd(a)
				}

				if err != nil {
					if diff := cmp.Diff(before, tr.Tasks()); diff != "" {
						t.Fatalf("%s(%s,%s) rejected with %v but changed the tree:\n%s", op, a, b, err, diff)
					}
					continue
				}

				if diff := cmp.Diff(spanBefore, mv.MovedIDs); diff != "" {
					t.Fatalf("%s(%s,%s) reordered the moved subtree (-before +after):\n%s", op, a, b, diff)
				}

				tr.Renumber()
				for i := 0; i < tr.Len(); i++ {
					if d := tr.At(i).Depth; d > DefaultMaxDepth {
						t.Fatalf("%s(%s,%s) produced depth %d", op, a, b, d)
					}
				}

				if allowCross {
					// Cross-parent reorders may split spans; only the depth cap is guaranteed.
					continue
				}

				if probs := tr.Validate(); len(probs) > 0 {
					t.Fatalf("%s(%s,%s) broke invariants: %+v\norder: %v", op, a, b, probs, ids(tr))
				}
				fromParents := tr.DepthFromParents()
				for i := 0; i < tr.Len(); i++ {
					x := tr.At(i)
					if fromParents[x.ID] != x.Depth {
						t.Fatalf("depth of %s is %d, parent chain says %d", x.ID, x.Depth, fromParents[x.ID])
					}
				}
			}
		}
	}
}

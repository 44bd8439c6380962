package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktree-cli/internal/flattree"
	"tasktree-cli/internal/model"
)

func TestInsert_ChildShiftsLaterTasks(t *testing.T) {
	tr := newTree(
		model.Task{ID: "A"},
		model.Task{ID: "A1", ParentID: model.StrPtr("A"), Depth: 1},
		model.Task{ID: "B"},
	)

	placed, patches, err := Insert(tr, model.Task{Title: "new"}, "A")
	require.NoError(t, err)
	assert.Equal(t, 3, placed.OrderKey)
	assert.Equal(t, 1, placed.Depth)
	require.NotNil(t, placed.ParentID)
	assert.Equal(t, "A", *placed.ParentID)
	assert.Empty(t, placed.ID)

	require.Len(t, patches, 1)
	assert.Equal(t, "B", patches[0].ID)
	assert.Equal(t, 4, *patches[0].OrderKey)
}

func TestInsert_RootAppendsWithoutPatches(t *testing.T) {
	tr := newTree(model.Task{ID: "A"})
	placed, patches, err := Insert(tr, model.Task{Title: "new"}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, placed.OrderKey)
	assert.Nil(t, placed.ParentID)
	assert.Empty(t, patches)
}

func TestInsert_DepthCap(t *testing.T) {
	tr := newTree(
		model.Task{ID: "A"},
		model.Task{ID: "A1", ParentID: model.StrPtr("A"), Depth: 1},
		model.Task{ID: "A2", ParentID: model.StrPtr("A1"), Depth: 2},
	)
	_, _, err := Insert(tr, model.Task{Title: "too deep"}, "A2")
	assert.ErrorIs(t, err, flattree.ErrDepthCap)
}

func TestRemove_RenumbersFollowingTasks(t *testing.T) {
	tr := newTree(
		model.Task{ID: "A"},
		model.Task{ID: "A1", ParentID: model.StrPtr("A"), Depth: 1},
		model.Task{ID: "B"},
	)
	ids, patches, err := Remove(tr, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "A1"}, ids)
	require.Len(t, patches, 1)
	assert.Equal(t, "B", patches[0].ID)
	assert.Equal(t, 1, *patches[0].OrderKey)

	_, _, err = Remove(tr, "A")
	assert.ErrorIs(t, err, flattree.ErrNotFound)
}

func TestRepair_FillsGaps(t *testing.T) {
	tr := flattree.New([]model.Task{{ID: "A", OrderKey: 3}, {ID: "B", OrderKey: 9}}, flattree.DefaultOptions())
	patches := Repair(tr)
	require.Len(t, patches, 2)
	assert.Equal(t, 1, *patches[0].OrderKey)
	assert.Equal(t, 2, *patches[1].OrderKey)
	assert.Empty(t, Repair(tr))
}

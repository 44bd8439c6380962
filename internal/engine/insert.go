package engine

import (
	"tasktree-cli/internal/flattree"
	"tasktree-cli/internal/model"
)

const pendingID = "\x00pending"

// Insert places a not-yet-stored task as the last root (parentID == "") or as the last child
// of parentID. It returns the task with its parent, depth and order key filled in, and the
// order key patches for existing tasks that shifted to make room.
func Insert(tree *flattree.Tree, task model.Task, parentID string) (model.Task, []model.TaskPatch, error) {
	task.ID = pendingID
	if parentID == "" {
		tree.AppendRoot(task)
	} else if err := tree.AppendChild(parentID, task); err != nil {
		return model.Task{}, nil, err
	}
	keys := tree.Renumber()

	placed, _ := tree.Find(pendingID)
	placed.ID = ""
	var patches []model.TaskPatch
	for _, k := range keys {
		if k.ID == pendingID {
			continue
		}
		v := k.New
		patches = append(patches, model.TaskPatch{ID: k.ID, OrderKey: &v})
	}
	return placed, patches, nil
}

// Remove takes id and its subtree out of tree and returns the removed ids along with the
// order key patches for the tasks that moved up.
func Remove(tree *flattree.Tree, id string) ([]string, []model.TaskPatch, error) {
	removed, err := tree.Remove(id)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]string, len(removed))
	for i, x := range removed {
		ids[i] = x.ID
	}
	var patches []model.TaskPatch
	for _, k := range tree.Renumber() {
		v := k.New
		patches = append(patches, model.TaskPatch{ID: k.ID, OrderKey: &v})
	}
	return ids, patches, nil
}

// Repair renumbers tree and returns the order key patches that make storage dense again.
func Repair(tree *flattree.Tree) []model.TaskPatch {
	var patches []model.TaskPatch
	for _, k := range tree.Renumber() {
		v := k.New
		patches = append(patches, model.TaskPatch{ID: k.ID, OrderKey: &v})
	}
	return patches
}

// Package publish writes a project's task tree out as static Markdown pages.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tasktree-cli/internal/flattree"
	"tasktree-cli/internal/model"

	"github.com/natefinch/atomic"
)

// Source is the slice of the store an export reads from.
type Source interface {
	GetProject(ctx context.Context, id string) (model.Project, error)
	LoadTree(ctx context.Context, projectID string) ([]*model.TaskNode, error)
}

type WriteOptions struct {
	IncludeCompleted bool
	Overwrite        bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteProject renders projects/<id>/index.md plus one page per task under projects/<id>/tasks/.
// Without Overwrite it refuses to replace any existing file and writes nothing.
func WriteProject(ctx context.Context, src Source, projectID string, toDir string, opt WriteOptions) (WriteResult, error) {
	if src == nil {
		return WriteResult{}, errors.New("missing store")
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return WriteResult{}, errors.New("missing project id")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	p, err := src.GetProject(ctx, projectID)
	if err != nil {
		return WriteResult{}, err
	}
	roots, err := src.LoadTree(ctx, projectID)
	if err != nil {
		return WriteResult{}, err
	}
	tasks := flattree.Flatten(roots, flattree.DefaultOptions()).Tasks()

	projectDir := filepath.Join(toDir, "projects", projectID)
	tasksDir := filepath.Join(projectDir, "tasks")

	type page struct {
		path string
		body string
	}
	pages := []page{{
		path: filepath.Join(projectDir, "index.md"),
		body: RenderProjectMarkdown(p, tasks, RenderOptions{IncludeCompleted: opt.IncludeCompleted}),
	}}

	byID := make(map[string]model.Task, len(tasks))
	children := map[string][]model.Task{}
	for _, t := range tasks {
		byID[t.ID] = t
		if t.ParentID != nil {
			children[*t.ParentID] = append(children[*t.ParentID], t)
		}
	}
	hidden := hiddenTasks(tasks, opt.IncludeCompleted)
	for _, t := range tasks {
		if hidden[t.ID] {
			continue
		}
		var parent *model.Task
		if t.ParentID != nil {
			if pt, ok := byID[*t.ParentID]; ok {
				parent = &pt
			}
		}
		pages = append(pages, page{
			path: filepath.Join(tasksDir, t.ID+".md"),
			body: RenderTaskMarkdown(p, t, parent, children[t.ID]),
		})
	}

	if !opt.Overwrite {
		for _, pg := range pages {
			if _, err := os.Stat(pg.path); err == nil {
				return WriteResult{}, fmt.Errorf("file exists (use --overwrite): %s", pg.path)
			}
		}
	}
	if err := os.MkdirAll(tasksDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	written := make([]string, 0, len(pages))
	for _, pg := range pages {
		if err := ctx.Err(); err != nil {
			return WriteResult{Written: written}, err
		}
		if err := atomic.WriteFile(pg.path, bytes.NewReader([]byte(pg.body))); err != nil {
			return WriteResult{Written: written}, err
		}
		written = append(written, pg.path)
	}
	return WriteResult{Written: written}, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"tasktree-cli/internal/model"
)

func (s *Store) CreateProject(ctx context.Context, name string) (model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Project{}, errors.New("project name is empty")
	}
	id, err := newRandomID("proj")
	if err != nil {
		return model.Project{}, err
	}
	p := model.Project{ID: id, Name: name, CreatedAt: time.Now().UTC()}
	if _, err := s.exec(ctx, `INSERT INTO projects(id, name, archived, created_at_unixms) VALUES(?, ?, ?, ?)`,
		p.ID, p.Name, 0, toUnixMs(p.CreatedAt)); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

// ListProjects returns projects oldest first. Archived projects are skipped unless
// includeArchived is set.
func (s *Store) ListProjects(ctx context.Context, includeArchived bool) ([]model.Project, error) {
	q := `SELECT id, name, archived, created_at_unixms FROM projects`
	if !includeArchived {
		q += ` WHERE archived = 0`
	}
	q += ` ORDER BY created_at_unixms, id`
	rows, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetProject(ctx context.Context, id string) (model.Project, error) {
	p, err := scanProject(s.queryRow(ctx, `SELECT id, name, archived, created_at_unixms FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, notFound("project", id)
	}
	return p, err
}

func (s *Store) ArchiveProject(ctx context.Context, id string, archived bool) error {
	res, err := s.exec(ctx, `UPDATE projects SET archived = ? WHERE id = ?`, boolToInt(archived), id)
	if err != nil {
		return err
	}
	return expectOneRow(res, "project", id)
}

func scanProject(sc interface{ Scan(...any) error }) (model.Project, error) {
	var (
		p        model.Project
		archived int
		ms       int64
	)
	if err := sc.Scan(&p.ID, &p.Name, &archived, &ms); err != nil {
		return model.Project{}, err
	}
	p.Archived = archived != 0
	p.CreatedAt = fromUnixMs(ms)
	return p, nil
}

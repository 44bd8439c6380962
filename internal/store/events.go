package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"tasktree-cli/internal/model"
)

type EventFilter struct {
	ProjectID string
	EntityID  string
	// Limit keeps only the newest N events; <= 0 means all.
	Limit int
}

// AppendEvent writes ev to the event log, filling in the id and timestamp when unset.
func (s *Store) AppendEvent(ctx context.Context, ev model.Event) error {
	ev.Type = strings.TrimSpace(ev.Type)
	if ev.Type == "" {
		return errors.New("event: missing type")
	}
	if strings.TrimSpace(ev.EntityID) == "" {
		return errors.New("event: missing entity id")
	}
	if ev.ID == "" {
		ev.ID = newEventID()
	}
	if ev.TS.IsZero() {
		ev.TS = time.Now().UTC()
	}
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, `INSERT INTO events(id, ts_unixms, project_id, type, entity_id, payload_json) VALUES(?, ?, ?, ?, ?, ?)`,
		ev.ID, toUnixMs(ev.TS), ev.ProjectID, ev.Type, ev.EntityID, string(payload))
	return err
}

// ListEvents returns matching events oldest first. With a limit, the newest N are kept.
func (s *Store) ListEvents(ctx context.Context, f EventFilter) ([]model.Event, error) {
	q := `SELECT id, ts_unixms, project_id, type, entity_id, payload_json FROM events`
	var (
		where []string
		args  []any
	)
	if f.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, f.ProjectID)
	}
	if f.EntityID != "" {
		where = append(where, "entity_id = ?")
		args = append(args, f.EntityID)
	}
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY ts_unixms DESC, id DESC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		var (
			ev      model.Event
			ms      int64
			payload string
		)
		if err := rows.Scan(&ev.ID, &ms, &ev.ProjectID, &ev.Type, &ev.EntityID, &payload); err != nil {
			return nil, err
		}
		ev.TS = fromUnixMs(ms)
		if payload != "" && payload != "null" {
			var v any
			if err := json.Unmarshal([]byte(payload), &v); err != nil {
				return nil, err
			}
			ev.Payload = v
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

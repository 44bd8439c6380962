package model

import (
	"encoding/json"
	"time"
)

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Archived  bool      `json:"archived"`
}

type Task struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`

	ParentID *string `json:"parentId,omitempty"`
	// Depth is derived from the parent chain on every load and mutation; it is never persisted.
	Depth    int `json:"depth"`
	OrderKey int `json:"orderKey"`

	Title       string `json:"title"`
	StartDate   *Date  `json:"startDate,omitempty"`
	EndDate     *Date  `json:"endDate,omitempty"`
	IsCompleted bool   `json:"isCompleted"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TaskNode is the nested shape returned by a full load.
type TaskNode struct {
	Task     Task        `json:"task"`
	Children []*TaskNode `json:"children,omitempty"`
}

// TaskPatch carries only the changed fields of one task.
// The *Set flags distinguish "clear to null" from "leave unchanged".
type TaskPatch struct {
	ID string `json:"id"`

	ParentSet bool    `json:"-"`
	ParentID  *string `json:"parentId,omitempty"`

	DatesSet  bool  `json:"-"`
	StartDate *Date `json:"startDate,omitempty"`
	EndDate   *Date `json:"endDate,omitempty"`

	OrderKey *int `json:"orderKey,omitempty"`
}

// taskPatchJSON is the wire form: a present key with a null value means "cleared".
type taskPatchJSON struct {
	ID        string          `json:"id"`
	ParentID  json.RawMessage `json:"parentId,omitempty"`
	StartDate json.RawMessage `json:"startDate,omitempty"`
	EndDate   json.RawMessage `json:"endDate,omitempty"`
	OrderKey  *int            `json:"orderKey,omitempty"`
}

func (p TaskPatch) MarshalJSON() ([]byte, error) {
	w := taskPatchJSON{ID: p.ID, OrderKey: p.OrderKey}
	var err error
	if p.ParentSet {
		if w.ParentID, err = json.Marshal(p.ParentID); err != nil {
			return nil, err
		}
	}
	if p.DatesSet {
		if w.StartDate, err = json.Marshal(p.StartDate); err != nil {
			return nil, err
		}
		if w.EndDate, err = json.Marshal(p.EndDate); err != nil {
			return nil, err
		}
	}
	return json.Marshal(w)
}

func (p *TaskPatch) UnmarshalJSON(b []byte) error {
	var w taskPatchJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = TaskPatch{ID: w.ID, OrderKey: w.OrderKey}
	if w.ParentID != nil {
		p.ParentSet = true
		if err := json.Unmarshal(w.ParentID, &p.ParentID); err != nil {
			return err
		}
	}
	if w.StartDate != nil || w.EndDate != nil {
		p.DatesSet = true
		if w.StartDate != nil {
			if err := json.Unmarshal(w.StartDate, &p.StartDate); err != nil {
				return err
			}
		}
		if w.EndDate != nil {
			if err := json.Unmarshal(w.EndDate, &p.EndDate); err != nil {
				return err
			}
		}
	}
	return nil
}

// Empty reports whether the patch would not change anything.
func (p TaskPatch) Empty() bool {
	return !p.ParentSet && !p.DatesSet && p.OrderKey == nil
}

// Fields lists the changed field names, in a stable order.
func (p TaskPatch) Fields() []string {
	var out []string
	if p.ParentSet {
		out = append(out, "parentId")
	}
	if p.DatesSet {
		out = append(out, "startDate", "endDate")
	}
	if p.OrderKey != nil {
		out = append(out, "orderKey")
	}
	return out
}

type Event struct {
	ID        string    `json:"id"`
	TS        time.Time `json:"ts"`
	ProjectID string    `json:"projectId"`
	Type      string    `json:"type"`
	EntityID  string    `json:"entityId"`
	Payload   any       `json:"payload"`
}

// StrPtr returns a pointer to a copy of s.
func StrPtr(s string) *string { return &s }

// SameParent compares two optional parent ids.
func SameParent(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

package entity

import "strings"

// Subtask is a checklist item owned by a task. Position is the 0-based index
// in the owning task's list.
type Subtask struct {
	ID        ID         `json:"id"`
	TaskID    ID         `json:"task_id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	Position  int        `json:"position"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
}

func (s Subtask) ItemID() ID { return s.ID }

// SubtaskDraft is one row of a bulk replace. Persisted rows carry their id.
type SubtaskDraft struct {
	ID        *ID    `json:"id,omitempty"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Position  int    `json:"position"`
}

// Draft returns the bulk-replace row for s.
func (s Subtask) Draft() SubtaskDraft {
	d := SubtaskDraft{
		Title:     strings.TrimSpace(s.Title),
		Completed: s.Completed,
		Position:  s.Position,
	}
	if !s.ID.Pending() && s.ID != 0 {
		id := s.ID
		d.ID = &id
	}
	return d
}

// SubtaskPatch is a partial subtask update.
type SubtaskPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Position  *int    `json:"position,omitempty"`
}

// Apply returns s with the patch applied. Timestamps are left for the server
// echo to settle.
func (p SubtaskPatch) Apply(s Subtask) Subtask {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Completed != nil {
		s.Completed = *p.Completed
	}
	if p.Position != nil {
		s.Position = *p.Position
	}
	return s
}

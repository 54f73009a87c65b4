package entity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/agenda/pkg/timeutil"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority accepts a priority name case-insensitively.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", &ValidationError{Field: "priority", Reason: fmt.Sprintf("%q is not low, medium or high", s)}
	}
	return p, nil
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a to-do item. A task with ParentTaskID set is an instance generated
// from a recurring template.
type Task struct {
	ID                 ID                `json:"id"`
	Title              string            `json:"title"`
	Description        *string           `json:"description"`
	Priority           Priority          `json:"priority"`
	Completed          bool              `json:"completed"`
	DueDate            *Timestamp        `json:"due_date"`
	IsRecurring        bool              `json:"is_recurring"`
	RecurrencePattern  *timeutil.Pattern `json:"recurrence_pattern"`
	RecurrenceInterval *int              `json:"recurrence_interval"`
	RecurrenceEndDate  *Timestamp        `json:"recurrence_end_date"`
	ParentTaskID       *ID               `json:"parent_task_id"`
	HasSubtasks        bool              `json:"has_subtasks"`
	CompletedSubtasks  int               `json:"completed_subtasks"`
	TotalSubtasks      int               `json:"total_subtasks"`
}

func (t Task) ItemID() ID { return t.ID }

// IsInstance reports whether t was generated from a recurring template.
func (t Task) IsInstance() bool { return t.ParentTaskID != nil }

func (t Task) Due() *time.Time { return TimeOf(t.DueDate) }

// Normalize clears recurrence details on tasks that do not recur.
func (t *Task) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if !t.IsRecurring {
		t.RecurrencePattern = nil
		t.RecurrenceInterval = nil
		t.RecurrenceEndDate = nil
		return
	}
	if t.RecurrenceInterval == nil {
		one := 1
		t.RecurrenceInterval = &one
	}
}

// Validate checks a task about to be sent to the server.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if !t.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("%q is not low, medium or high", t.Priority)}
	}
	if !t.IsRecurring {
		return nil
	}
	if t.RecurrencePattern == nil || !t.RecurrencePattern.Valid() {
		return &ValidationError{Field: "recurrence_pattern", Reason: "required for recurring tasks"}
	}
	if t.RecurrenceInterval != nil && *t.RecurrenceInterval < 1 {
		return &ValidationError{Field: "recurrence_interval", Reason: "must be at least 1"}
	}
	return nil
}

// Recurrence describes how a task repeats.
type Recurrence struct {
	Pattern  timeutil.Pattern
	Interval int
	Until    *time.Time
}

// Describe renders r for display, or "" when r does not repeat.
func (r Recurrence) Describe(loc *time.Location) string {
	return timeutil.DescribeRecurrence(r.Pattern, r.Interval, r.Until, loc)
}

// Recurrence returns t's series. Instances report their template's series
// for display when parent is given; they never recur on their own.
func (t Task) Recurrence(parent *Task) (Recurrence, bool) {
	src := t
	if t.IsInstance() {
		if parent == nil {
			return Recurrence{}, false
		}
		src = *parent
	}
	if !src.IsRecurring || src.RecurrencePattern == nil {
		return Recurrence{}, false
	}
	r := Recurrence{Pattern: *src.RecurrencePattern, Interval: 1, Until: TimeOf(src.RecurrenceEndDate)}
	if src.RecurrenceInterval != nil {
		r.Interval = *src.RecurrenceInterval
	}
	return r, true
}

// NextDue returns the due date the next occurrence of a recurring task will
// have, or false when t does not recur or its series has ended.
func (t Task) NextDue() (time.Time, bool) {
	due := t.Due()
	r, ok := t.Recurrence(nil)
	if !ok || due == nil {
		return time.Time{}, false
	}
	return timeutil.NextOccurrence(*due, r.Pattern, r.Interval, r.Until)
}

// TaskDraft is the body of a create request.
type TaskDraft struct {
	Title              string            `json:"title"`
	Description        *string           `json:"description"`
	Priority           Priority          `json:"priority"`
	DueDate            *Timestamp        `json:"due_date"`
	IsRecurring        bool              `json:"is_recurring"`
	RecurrencePattern  *timeutil.Pattern `json:"recurrence_pattern"`
	RecurrenceInterval *int              `json:"recurrence_interval"`
	RecurrenceEndDate  *Timestamp        `json:"recurrence_end_date"`
}

// Draft returns the fields of t the server accepts on creation.
func (t Task) Draft() TaskDraft {
	t.Normalize()
	return TaskDraft{
		Title:              t.Title,
		Description:        t.Description,
		Priority:           t.Priority,
		DueDate:            t.DueDate,
		IsRecurring:        t.IsRecurring,
		RecurrencePattern:  t.RecurrencePattern,
		RecurrenceInterval: t.RecurrenceInterval,
		RecurrenceEndDate:  t.RecurrenceEndDate,
	}
}

// TaskPatch is a partial update. Nil fields are left alone. An empty
// Description or a Clear flag sends an explicit null.
type TaskPatch struct {
	Title              *string
	Description        *string
	Priority           *Priority
	Completed          *bool
	DueDate            *Timestamp
	ClearDueDate       bool
	IsRecurring        *bool
	RecurrencePattern  *timeutil.Pattern
	RecurrenceInterval *int
	RecurrenceEndDate  *Timestamp
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Completed == nil && p.DueDate == nil && !p.ClearDueDate &&
		p.IsRecurring == nil && p.RecurrencePattern == nil &&
		p.RecurrenceInterval == nil && p.RecurrenceEndDate == nil
}

// Validate checks the patch against the task it will be applied to.
func (p TaskPatch) Validate(current Task) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("%q is not low, medium or high", *p.Priority)}
	}
	if current.IsInstance() && p.IsRecurring != nil && *p.IsRecurring {
		return &ValidationError{Field: "is_recurring", Reason: "an instance of a recurring task cannot recur itself"}
	}
	if current.IsInstance() {
		return nil
	}
	return p.Apply(current).Validate()
}

// Apply returns current with the patch applied and normalized.
func (p TaskPatch) Apply(current Task) Task {
	t := current
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		if *p.Description == "" {
			t.Description = nil
		} else {
			d := *p.Description
			t.Description = &d
		}
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	if p.IsRecurring != nil {
		t.IsRecurring = *p.IsRecurring
	}
	if p.RecurrencePattern != nil {
		t.RecurrencePattern = p.RecurrencePattern
	}
	if p.RecurrenceInterval != nil {
		t.RecurrenceInterval = p.RecurrenceInterval
	}
	if p.RecurrenceEndDate != nil {
		t.RecurrenceEndDate = p.RecurrenceEndDate
	}
	t.Normalize()
	return t
}

// MarshalJSON writes only the fields that change. Turning recurrence off
// clears the series fields with explicit nulls.
func (p TaskPatch) MarshalJSON() ([]byte, error) {
	body := map[string]any{}
	if p.Title != nil {
		body["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		if *p.Description == "" {
			body["description"] = nil
		} else {
			body["description"] = *p.Description
		}
	}
	if p.Priority != nil {
		body["priority"] = *p.Priority
	}
	if p.Completed != nil {
		body["completed"] = *p.Completed
	}
	if p.ClearDueDate {
		body["due_date"] = nil
	} else if p.DueDate != nil {
		body["due_date"] = p.DueDate
	}
	if p.IsRecurring != nil {
		body["is_recurring"] = *p.IsRecurring
		if !*p.IsRecurring {
			body["recurrence_pattern"] = nil
			body["recurrence_interval"] = nil
			body["recurrence_end_date"] = nil
			return json.Marshal(body)
		}
	}
	if p.RecurrencePattern != nil {
		body["recurrence_pattern"] = *p.RecurrencePattern
	}
	if p.RecurrenceInterval != nil {
		body["recurrence_interval"] = *p.RecurrenceInterval
	}
	if p.RecurrenceEndDate != nil {
		body["recurrence_end_date"] = p.RecurrenceEndDate
	}
	return json.Marshal(body)
}

package viewmodel

import (
	"sort"
	"strings"
	"time"

	"tableflip.dev/agenda/pkg/entity"
)

// SortOrder orders tasks by due date.
type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// TaskFilter narrows a task list. Zero values match everything.
type TaskFilter struct {
	Search   string
	Priority entity.Priority
	DueFrom  *time.Time
	DueTo    *time.Time
	Sort     SortOrder
}

// Active reports whether any filter is set.
func (f TaskFilter) Active() bool {
	return strings.TrimSpace(f.Search) != "" || f.Priority != "" || f.DueFrom != nil || f.DueTo != nil
}

// Match reports whether t passes the filter. A due range excludes undated
// tasks.
func (f TaskFilter) Match(t entity.Task) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		hay := strings.ToLower(t.Title)
		if t.Description != nil {
			hay += "\n" + strings.ToLower(*t.Description)
		}
		if !strings.Contains(hay, q) {
			return false
		}
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.DueFrom != nil || f.DueTo != nil {
		due := t.Due()
		if due == nil {
			return false
		}
		if f.DueFrom != nil && due.Before(*f.DueFrom) {
			return false
		}
		if f.DueTo != nil && due.After(*f.DueTo) {
			return false
		}
	}
	return true
}

// Apply returns the matching tasks in a new slice, sorted when requested.
func (f TaskFilter) Apply(tasks []entity.Task) []entity.Task {
	out := make([]entity.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	SortByDue(out, f.Sort)
	return out
}

// SortByDue orders tasks by due date in place. Undated tasks go last in
// either direction.
func SortByDue(tasks []entity.Task, order SortOrder) {
	if order == SortNone {
		return
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].Due(), tasks[j].Due()
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return false
		case b == nil:
			return true
		}
		if order == SortDesc {
			return a.After(*b)
		}
		return a.Before(*b)
	})
}

// ParseSortOrder accepts asc, desc or an empty string.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortNone, SortAsc, SortDesc:
		return o, nil
	}
	return "", &entity.ValidationError{Field: "sort", Reason: "must be asc or desc"}
}

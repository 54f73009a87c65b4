// Package viewmodel sorts cached tasks and appointments into the buckets the
// list views show, and applies search, filters and paging on top.
package viewmodel

import (
	"time"

	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/timeutil"
)

// TaskBucket names a task list view.
type TaskBucket string

const (
	BucketActive    TaskBucket = "active"
	BucketOverdue   TaskBucket = "overdue"
	BucketCompleted TaskBucket = "completed"
)

// TaskBuckets lists the three task views in display order.
var TaskBuckets = []TaskBucket{BucketActive, BucketOverdue, BucketCompleted}

// ClassifyTask places t in exactly one bucket. Completed instances of a
// recurring task are not shown; only their template counts as completed.
func ClassifyTask(t entity.Task, now time.Time) (TaskBucket, bool) {
	if t.Completed {
		if t.IsInstance() {
			return "", false
		}
		return BucketCompleted, true
	}
	if timeutil.IsOverdue(t.Due(), false, now) {
		return BucketOverdue, true
	}
	return BucketActive, true
}

// TaskViews holds the classified task lists.
type TaskViews struct {
	Active    []entity.Task `json:"active"`
	Overdue   []entity.Task `json:"overdue"`
	Completed []entity.Task `json:"completed"`
}

// Bucket returns the list for b.
func (v TaskViews) Bucket(b TaskBucket) []entity.Task {
	switch b {
	case BucketActive:
		return v.Active
	case BucketOverdue:
		return v.Overdue
	case BucketCompleted:
		return v.Completed
	}
	return nil
}

// ClassifyTasks splits tasks into their buckets, keeping input order.
func ClassifyTasks(tasks []entity.Task, now time.Time) TaskViews {
	var v TaskViews
	for _, t := range tasks {
		b, ok := ClassifyTask(t, now)
		if !ok {
			continue
		}
		switch b {
		case BucketActive:
			v.Active = append(v.Active, t)
		case BucketOverdue:
			v.Overdue = append(v.Overdue, t)
		case BucketCompleted:
			v.Completed = append(v.Completed, t)
		}
	}
	return v
}

// Apply filters and sorts every bucket.
func (v TaskViews) Apply(f TaskFilter) TaskViews {
	return TaskViews{
		Active:    f.Apply(v.Active),
		Overdue:   f.Apply(v.Overdue),
		Completed: f.Apply(v.Completed),
	}
}

// Summary counts tasks per bucket.
type Summary struct {
	Active    int `json:"active"`
	Overdue   int `json:"overdue"`
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

func Summarize(tasks []entity.Task, now time.Time) Summary {
	v := ClassifyTasks(tasks, now)
	s := Summary{Active: len(v.Active), Overdue: len(v.Overdue), Completed: len(v.Completed)}
	s.Total = s.Active + s.Overdue + s.Completed
	return s
}

// DueGroups groups undone tasks by due-date bucket for agenda style output.
func DueGroups(tasks []entity.Task, now time.Time, loc *time.Location) map[timeutil.Bucket][]entity.Task {
	out := make(map[timeutil.Bucket][]entity.Task)
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		b := timeutil.ToBucket(t.Due(), now, loc)
		out[b] = append(out[b], t)
	}
	return out
}

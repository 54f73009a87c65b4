package options

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/timeutil"
)

// TaskOptions
type TaskOptions struct {
	Description string
	Priority    string
	Due         string
	NoDue       bool
	Repeat      string
	Every       int
	Until       string
	NoRepeat    bool
}

func AddTaskArgs(cmd *cobra.Command, o *TaskOptions) {
	cmd.Flags().StringVar(&o.Description, "description", "",
		"Longer description of the task.")
	cmd.Flags().StringVarP(&o.Priority, "priority", "p", "medium",
		"Priority: low, medium or high.")
	cmd.Flags().StringVar(&o.Due, "due", "",
		`Due date, example: --due="2020-2-28 17:00", --due="2/28" or --due=tomorrow.`)
	cmd.Flags().StringVar(&o.Repeat, "repeat", "",
		"Repeat pattern: daily, weekly, monthly or yearly.")
	cmd.Flags().IntVar(&o.Every, "every", 1,
		"Repeat every N periods.")
	cmd.Flags().StringVar(&o.Until, "until", "",
		"Last date the task repeats on.")
}

// AddTaskClearArgs adds the flags that remove a due date or a repeat.
func AddTaskClearArgs(cmd *cobra.Command, o *TaskOptions) {
	cmd.Flags().BoolVar(&o.NoDue, "no-due", false,
		"Remove the due date.")
	cmd.Flags().BoolVar(&o.NoRepeat, "no-repeat", false,
		"Stop the task repeating.")
}

func (o *TaskOptions) recurrence(now time.Time, loc *time.Location) (*timeutil.Pattern, *entity.Timestamp, error) {
	return Recurrence(o.Repeat, o.Until, now, loc)
}

// Recurrence parses a --repeat pattern and an optional --until date.
func Recurrence(repeat, until string, now time.Time, loc *time.Location) (*timeutil.Pattern, *entity.Timestamp, error) {
	p, err := timeutil.ParsePattern(repeat)
	if err != nil {
		return nil, nil, &entity.ValidationError{Field: "recurrence_pattern", Reason: err.Error()}
	}
	last, err := ParseDate(until, now, loc)
	if err != nil {
		return nil, nil, err
	}
	var end *entity.Timestamp
	if last != nil {
		end = entity.At(*last)
	}
	return &p, end, nil
}

// Task builds a new task titled title from the flags.
func (o *TaskOptions) Task(title string, now time.Time, loc *time.Location) (entity.Task, error) {
	t := entity.Task{Title: title}
	p, err := entity.ParsePriority(o.Priority)
	if err != nil {
		return t, err
	}
	t.Priority = p
	if o.Description != "" {
		d := o.Description
		t.Description = &d
	}
	due, err := ParseDate(o.Due, now, loc)
	if err != nil {
		return t, err
	}
	if due != nil {
		t.DueDate = entity.At(*due)
	}
	if o.Repeat != "" {
		pattern, end, err := o.recurrence(now, loc)
		if err != nil {
			return t, err
		}
		every := o.Every
		t.IsRecurring = true
		t.RecurrencePattern = pattern
		t.RecurrenceInterval = &every
		t.RecurrenceEndDate = end
	}
	return t, nil
}

// Patch builds an update from the flags that were set on cmd. title is
// applied when not empty.
func (o *TaskOptions) Patch(cmd *cobra.Command, title string, now time.Time, loc *time.Location) (entity.TaskPatch, error) {
	var patch entity.TaskPatch
	changed := cmd.Flags().Changed

	if title != "" {
		patch.Title = &title
	}
	if changed("description") {
		d := o.Description
		patch.Description = &d
	}
	if changed("priority") {
		p, err := entity.ParsePriority(o.Priority)
		if err != nil {
			return patch, err
		}
		patch.Priority = &p
	}
	if o.NoDue {
		patch.ClearDueDate = true
	} else if changed("due") {
		due, err := ParseDate(o.Due, now, loc)
		if err != nil {
			return patch, err
		}
		if due == nil {
			patch.ClearDueDate = true
		} else {
			patch.DueDate = entity.At(*due)
		}
	}
	if o.NoRepeat {
		off := false
		patch.IsRecurring = &off
	} else if changed("repeat") {
		pattern, end, err := o.recurrence(now, loc)
		if err != nil {
			return patch, err
		}
		on := true
		every := o.Every
		patch.IsRecurring = &on
		patch.RecurrencePattern = pattern
		patch.RecurrenceInterval = &every
		patch.RecurrenceEndDate = end
	} else if changed("every") {
		every := o.Every
		patch.RecurrenceInterval = &every
	}
	return patch, nil
}

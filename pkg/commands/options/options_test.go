package options

import (
	"testing"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/viewmodel"
)

var now = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func TestParseDate(t *testing.T) {
	tests := map[string]struct {
		in   string
		want time.Time
	}{
		"iso":            {in: "2026-4-2", want: time.Date(2026, time.April, 2, 0, 0, 0, 0, time.UTC)},
		"iso with time":  {in: "2026-4-2 14:30", want: time.Date(2026, time.April, 2, 14, 30, 0, 0, time.UTC)},
		"short":          {in: "3/20", want: time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)},
		"short passed":   {in: "1/3", want: time.Date(2027, time.January, 3, 0, 0, 0, 0, time.UTC)},
		"today":          {in: "today", want: time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)},
		"tomorrow clock": {in: "tomorrow 17:00", want: time.Date(2026, time.March, 11, 17, 0, 0, 0, time.UTC)},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseDate(tc.in, now, time.UTC)
			if err != nil {
				t.Fatalf("ParseDate(%q) error: %v", tc.in, err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("ParseDate(%q) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}

	if got, err := ParseDate("", now, time.UTC); got != nil || err != nil {
		t.Errorf("ParseDate(\"\") = %v, %v", got, err)
	}
	if _, err := ParseDate("someday", now, time.UTC); err == nil {
		t.Error("ParseDate(someday) should fail")
	}
}

func TestTaskPatchOnlyChangedFlags(t *testing.T) {
	o := &TaskOptions{}
	cmd := &cobra.Command{Use: "edit"}
	AddTaskArgs(cmd, o)
	AddTaskClearArgs(cmd, o)
	if err := cmd.ParseFlags([]string{"--priority=high", "--no-due"}); err != nil {
		t.Fatal(err)
	}

	patch, err := o.Patch(cmd, "", now, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if patch.Priority == nil || *patch.Priority != entity.PriorityHigh {
		t.Errorf("priority = %v", patch.Priority)
	}
	if !patch.ClearDueDate || patch.Title != nil || patch.Description != nil || patch.IsRecurring != nil {
		t.Errorf("unexpected patch %+v", patch)
	}
}

func TestTaskRecurring(t *testing.T) {
	o := &TaskOptions{Priority: "low", Due: "tomorrow", Repeat: "weekly", Every: 2}
	task, err := o.Task("Water plants", now, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if !task.IsRecurring || *task.RecurrenceInterval != 2 || task.DueDate == nil {
		t.Errorf("unexpected task %+v", task)
	}
	if err := task.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestFilterWithin(t *testing.T) {
	o := &FilterOptions{Within: "2d", Sort: "asc", Priority: "High"}
	f, err := o.Filter(now, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if f.DueFrom == nil || f.DueTo == nil || f.Priority != entity.PriorityHigh {
		t.Fatalf("unexpected filter %+v", f)
	}
	if want := time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond); !f.DueTo.Equal(want) {
		t.Errorf("DueTo = %s, want %s", f.DueTo, want)
	}
	if _, err := (&FilterOptions{View: "someday"}).Buckets(); err == nil {
		t.Error("unknown view should fail")
	}
}

func TestWrap(t *testing.T) {
	if got := Wrap("one two three", 8); got != "one two\nthree" {
		t.Errorf("Wrap = %q", got)
	}
}

func TestFilterPager(t *testing.T) {
	all := viewmodel.TaskBuckets

	p, err := (&FilterOptions{}).Pager(5, all)
	if err != nil || p != nil {
		t.Fatalf("no --page should mean no pager, got %v, %v", p, err)
	}

	p, err = (&FilterOptions{Pages: []string{"2", "overdue=4"}}).Pager(5, all)
	if err != nil {
		t.Fatal(err)
	}
	if p.Size != 5 {
		t.Errorf("size = %d", p.Size)
	}
	for view, want := range map[string]int{"active": 2, "overdue": 4, "completed": 2} {
		if got := p.Current(view); got != want {
			t.Errorf("page of %s = %d, want %d", view, got, want)
		}
	}

	for _, bad := range []string{"0", "active=x", "someday=2"} {
		if _, err := (&FilterOptions{Pages: []string{bad}}).Pager(5, all); err == nil {
			t.Errorf("--page=%s should fail", bad)
		}
	}
}

package printers

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/agenda/pkg/app"
	"tableflip.dev/agenda/pkg/cascade"
	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/timeutil"
	"tableflip.dev/agenda/pkg/viewmodel"
)

var now = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func newPrinter() (*PrettyPrint, *bytes.Buffer) {
	color.NoColor = true
	buf := &bytes.Buffer{}
	return &PrettyPrint{Out: buf, Location: time.UTC, Now: now}, buf
}

func TestTaskViewsListsEveryBucket(t *testing.T) {
	pp, buf := newPrinter()
	pp.ShowID = true

	overdue := now.Add(-2 * time.Hour)
	v := viewmodel.TaskViews{
		Active:  []entity.Task{{ID: 1, Title: "Write report", Priority: entity.PriorityHigh, HasSubtasks: true, CompletedSubtasks: 1, TotalSubtasks: 3}},
		Overdue: []entity.Task{{ID: 2, Title: "Pay rent", Priority: entity.PriorityLow, DueDate: entity.At(overdue)}},
	}
	pp.TaskViews(v)

	out := buf.String()
	for _, want := range []string{"Active - 1 task", "Overdue - 1 task", "Completed - 0 tasks", "Write report", "1/3", "Pay rent", "today 07:00", "none"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDueIsRelative(t *testing.T) {
	pp, _ := newPrinter()
	tomorrow := now.Add(26 * time.Hour)
	if got := pp.Due(&tomorrow, false); got != "tomorrow 11:00" {
		t.Errorf("Due = %q", got)
	}
	if got := pp.Due(nil, false); got != "-" {
		t.Errorf("Due(nil) = %q", got)
	}
}

func TestCascadeReportsFailures(t *testing.T) {
	pp, buf := newPrinter()
	pp.Cascade(cascade.Result{
		Task: entity.Task{ID: 1, Title: "Move house"},
		Subtasks: []cascade.SubtaskResult{
			{SubtaskID: 10, Title: "Pack"},
			{SubtaskID: 11, Title: "Clean", Err: errors.New("server unavailable")},
		},
	})
	out := buf.String()
	if !strings.Contains(out, "server unavailable") || !strings.Contains(out, "1 of 2 subtasks") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestWhenAllDay(t *testing.T) {
	pp, _ := newPrinter()
	a := entity.Appointment{
		StartTime: entity.Timestamp{Time: time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC)},
		EndTime:   entity.Timestamp{Time: time.Date(2026, time.March, 12, 23, 59, 0, 0, time.UTC)},
		AllDay:    true,
	}
	if got := pp.When(a); got != "Thu 12 Mar all day" {
		t.Errorf("When = %q", got)
	}
}

func TestAgendaMonthMarksBusyDays(t *testing.T) {
	pp, buf := newPrinter()
	res := app.AgendaResult{
		From:  now,
		To:    now.AddDate(0, 0, 7),
		Total: 1,
		Days: []app.AgendaDay{{
			Date:  time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC),
			Tasks: []entity.Task{{ID: 1, Title: "Dentist"}},
		}},
	}
	pp.AgendaMonth(now, res)
	out := buf.String()
	if !strings.Contains(out, "March") || !strings.Contains(out, "31") {
		t.Errorf("unexpected calendar:\n%s", out)
	}

	buf.Reset()
	pp.Agenda(res)
	if !strings.Contains(buf.String(), "Thursday 12 March") || !strings.Contains(buf.String(), "Dentist") {
		t.Errorf("unexpected agenda:\n%s", buf.String())
	}
}

func TestDaysIn(t *testing.T) {
	if got := DaysIn(time.Date(2028, time.February, 10, 0, 0, 0, 0, time.UTC)); got != 29 {
		t.Errorf("DaysIn(Feb 2028) = %d", got)
	}
	if got := StartDay(time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)); got != time.Sunday {
		t.Errorf("StartDay(Mar 2026) = %s", got)
	}
}

func TestTaskShowsNextOccurrence(t *testing.T) {
	pp, buf := newPrinter()
	daily := timeutil.Daily
	due := now.Add(30 * time.Minute)
	pp.Task(entity.Task{ID: 4, Title: "Stretch", DueDate: entity.At(due), IsRecurring: true, RecurrencePattern: &daily}, nil)

	out := buf.String()
	for _, want := range []string{"repeats", "Daily", "next", "tomorrow 09:30"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

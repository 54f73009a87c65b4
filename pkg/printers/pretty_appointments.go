package printers

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/agenda/pkg/cascade"
	"tableflip.dev/agenda/pkg/conflict"
	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/journal"
	"tableflip.dev/agenda/pkg/timeutil"
	"tableflip.dev/agenda/pkg/viewmodel"
)

// When renders an appointment window in the printer's location.
func (pp *PrettyPrint) When(a entity.Appointment) string {
	loc := pp.loc()
	start := a.StartTime.In(loc)
	end := a.EndTime.In(loc)
	if a.AllDay {
		if timeutil.SameDay(start, end, loc) {
			return start.Format("Mon 2 Jan") + " all day"
		}
		return fmt.Sprintf("%s - %s all day", start.Format("Mon 2 Jan"), end.Format("Mon 2 Jan"))
	}
	if timeutil.SameDay(start, end, loc) {
		return fmt.Sprintf("%s %s-%s", start.Format("Mon 2 Jan"), start.Format("15:04"), end.Format("15:04"))
	}
	return fmt.Sprintf("%s - %s", start.Format("Mon 2 Jan 15:04"), end.Format("Mon 2 Jan 15:04"))
}

// Appointments prints one row per appointment.
func (pp *PrettyPrint) Appointments(list []entity.Appointment) {
	if len(list) == 0 {
		pp.none()
		return
	}
	tbl := pp.table()
	for _, a := range list {
		title := a.Title
		if a.Completed {
			title = color.New(color.Faint, color.CrossedOut).Sprint(title)
		}
		repeat := ""
		if a.IsRecurring && a.RecurrencePattern != nil {
			interval := 1
			if a.RecurrenceInterval != nil {
				interval = *a.RecurrenceInterval
			}
			repeat = color.New(color.FgCyan).Sprint(timeutil.DescribeRecurrence(*a.RecurrencePattern, interval, entity.TimeOf(a.RecurrenceEndDate), pp.loc()))
		}
		row := []interface{}{check(a.Completed), title, pp.When(a), repeat}
		if pp.ShowID {
			row = append([]interface{}{color.New(color.FgHiYellow, color.Faint).Sprint(a.ID)}, row...)
		}
		tbl.AddRow(row...)
	}
	pp.flush(tbl)
}

var appointmentTitles = []struct {
	bucket viewmodel.AppointmentBucket
	title  string
}{
	{viewmodel.BucketInProgress, "In progress"},
	{viewmodel.BucketUpcoming, "Upcoming"},
	{viewmodel.BucketPast, "Past"},
	{viewmodel.BucketDone, "Completed"},
}

// AppointmentViews prints every appointment bucket.
func (pp *PrettyPrint) AppointmentViews(v viewmodel.AppointmentViews) {
	for _, b := range appointmentTitles {
		list := v.Bucket(b.bucket)
		pp.TitleWithCount(b.title, len(list), "appointment")
		pp.Appointments(list)
	}
}

// Conflict warns about an overlapping item.
func (pp *PrettyPrint) Conflict(m *conflict.Match) {
	if m == nil {
		return
	}
	w := color.New(color.FgYellow, color.Bold)
	_, _ = w.Fprintf(pp.out(), "Overlaps %s %q", m.Kind, m.Title)
	if !m.Window.Start.IsZero() {
		a := entity.Appointment{
			StartTime: entity.Timestamp{Time: m.Window.Start},
			EndTime:   entity.Timestamp{Time: m.Window.End},
			AllDay:    m.Window.AllDay,
		}
		_, _ = w.Fprintf(pp.out(), " (%s)", pp.When(a))
	}
	_, _ = fmt.Fprintln(pp.out())
}

// Cascade prints the outcome of completing a task with its subtasks.
func (pp *PrettyPrint) Cascade(r cascade.Result) {
	pp.Title(fmt.Sprintf("Completed %q", r.Task.Title))
	if len(r.Subtasks) == 0 {
		pp.none()
		return
	}
	tbl := pp.table()
	for _, s := range r.Subtasks {
		status := color.New(color.FgGreen).Sprint("done")
		if !s.OK() {
			status = color.New(color.FgRed).Sprint(s.Err.Error())
		}
		tbl.AddRow(check(s.OK()), s.Title, status)
	}
	pp.flush(tbl)
	if failed := r.Failed(); len(failed) > 0 {
		pp.Errorf("%d of %d subtasks could not be completed", len(failed), len(r.Subtasks))
	}
}

// Failures prints journalled rollbacks, newest first.
func (pp *PrettyPrint) Failures(entries []journal.Entry) {
	pp.TitleWithCount("Failures", len(entries), "failure")
	if len(entries) == 0 {
		pp.none()
		return
	}
	f := color.New(color.Faint)
	tbl := pp.table()
	tbl.AddRow(f.Sprint("ID"), f.Sprint("WHEN"), f.Sprint("MUTATION"), f.Sprint("ERROR"), f.Sprint("STATUS"))
	for _, e := range entries {
		status := color.New(color.FgRed).Sprint("open")
		if e.Resolved() {
			status = f.Sprint("resolved")
		} else if e.Retryable {
			status = color.New(color.FgYellow).Sprint("retryable")
		}
		tbl.AddRow(e.ID, e.FailedAt.In(pp.loc()).Format(time.DateTime), e.Name, e.Error, status)
	}
	pp.flush(tbl)
}

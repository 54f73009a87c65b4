// Package printers renders tasks, subtasks, appointments and the agenda for a
// terminal.
package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/timeutil"
	"tableflip.dev/agenda/pkg/viewmodel"
)

type PrettyPrint struct {
	Out      io.Writer
	ShowID   bool
	Location *time.Location
	Now      time.Time
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) loc() *time.Location {
	if pp.Location == nil {
		return time.Local
	}
	return pp.Location
}

func (pp *PrettyPrint) now() time.Time {
	if pp.Now.IsZero() {
		return time.Now()
	}
	return pp.Now
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

// TitleWithCount prints a heading followed by a faint item count.
func (pp *PrettyPrint) TitleWithCount(title string, count int, noun string) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintf(pp.out(), " %s\n", noun)
	default:
		_, _ = c.Fprintf(pp.out(), " %ss\n", noun)
	}
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.out(), " none\n\n")
}

func (pp *PrettyPrint) table() *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.Wrap = true
	return tbl
}

func (pp *PrettyPrint) flush(tbl *uitable.Table) {
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

func check(done bool) string {
	if done {
		return color.New(color.FgGreen).Sprint("[x]")
	}
	return "[ ]"
}

func priority(p entity.Priority) string {
	switch p {
	case entity.PriorityHigh:
		return color.New(color.FgRed, color.Bold).Sprint("high")
	case entity.PriorityMedium:
		return color.New(color.FgYellow).Sprint("medium")
	case entity.PriorityLow:
		return color.New(color.Faint).Sprint("low")
	}
	return string(p)
}

// Due renders a due date relative to now.
func (pp *PrettyPrint) Due(due *time.Time, completed bool) string {
	if due == nil {
		return color.New(color.Faint).Sprint("-")
	}
	loc := pp.loc()
	local := due.In(loc)
	var s string
	switch timeutil.ToBucket(due, pp.now(), loc) {
	case timeutil.BucketToday:
		s = "today " + local.Format("15:04")
	case timeutil.BucketTomorrow:
		s = "tomorrow " + local.Format("15:04")
	case timeutil.BucketThisWeek:
		s = local.Format("Mon 15:04")
	default:
		s = local.Format("Mon 2 Jan 2006")
	}
	if timeutil.IsOverdue(due, completed, pp.now()) {
		return color.New(color.FgRed).Sprint(s)
	}
	return s
}

func subtaskCount(t entity.Task) string {
	if !t.HasSubtasks || t.TotalSubtasks == 0 {
		return ""
	}
	s := fmt.Sprintf("%d/%d", t.CompletedSubtasks, t.TotalSubtasks)
	if t.CompletedSubtasks >= t.TotalSubtasks {
		return color.New(color.FgGreen).Sprint(s)
	}
	return s
}

func (pp *PrettyPrint) repeat(t entity.Task) string {
	r, ok := t.Recurrence(nil)
	if !ok {
		if t.IsInstance() {
			return color.New(color.Faint).Sprint("instance")
		}
		return ""
	}
	return color.New(color.FgCyan).Sprint(r.Describe(pp.loc()))
}

// Tasks prints one row per task.
func (pp *PrettyPrint) Tasks(tasks []entity.Task) {
	if len(tasks) == 0 {
		pp.none()
		return
	}

	tbl := pp.table()
	for _, t := range tasks {
		title := t.Title
		if t.Completed {
			title = color.New(color.Faint, color.CrossedOut).Sprint(title)
		}
		row := []interface{}{check(t.Completed), title, priority(t.Priority), pp.Due(t.Due(), t.Completed), subtaskCount(t), pp.repeat(t)}
		if pp.ShowID {
			row = append([]interface{}{color.New(color.FgHiYellow, color.Faint).Sprint(t.ID)}, row...)
		}
		tbl.AddRow(row...)
	}
	pp.flush(tbl)
}

var bucketTitles = map[viewmodel.TaskBucket]string{
	viewmodel.BucketActive:    "Active",
	viewmodel.BucketOverdue:   "Overdue",
	viewmodel.BucketCompleted: "Completed",
}

// TaskViews prints the requested buckets, or all of them when none are given.
func (pp *PrettyPrint) TaskViews(v viewmodel.TaskViews, buckets ...viewmodel.TaskBucket) {
	if len(buckets) == 0 {
		buckets = viewmodel.TaskBuckets
	}
	for _, b := range buckets {
		list := v.Bucket(b)
		pp.TitleWithCount(bucketTitles[b], len(list), "task")
		pp.Tasks(list)
	}
}

// TaskPage prints one page of a bucket with its position.
func (pp *PrettyPrint) TaskPage(b viewmodel.TaskBucket, page viewmodel.Page[entity.Task]) {
	pp.TitleWithCount(bucketTitles[b], page.Total, "task")
	pp.Tasks(page.Items)
	if page.Pages > 1 {
		f := color.New(color.Faint)
		_, _ = f.Fprintf(pp.out(), "page %d of %d\n\n", page.Number, page.Pages)
	}
}

// Task prints the detail view of one task.
func (pp *PrettyPrint) Task(t entity.Task, subtasks []entity.Subtask) {
	pp.Title(t.Title)
	tbl := pp.table()
	tbl.AddRow("id", t.ID)
	tbl.AddRow("status", check(t.Completed))
	tbl.AddRow("priority", priority(t.Priority))
	tbl.AddRow("due", pp.Due(t.Due(), t.Completed))
	if t.Description != nil && *t.Description != "" {
		tbl.AddRow("description", *t.Description)
	}
	if r := pp.repeat(t); r != "" {
		tbl.AddRow("repeats", r)
	}
	if next, ok := t.NextDue(); ok {
		tbl.AddRow("next", pp.Due(&next, false))
	}
	if c := subtaskCount(t); c != "" {
		tbl.AddRow("subtasks", c)
	}
	pp.flush(tbl)
	if len(subtasks) > 0 {
		pp.Subtasks(subtasks)
	}
}

// Subtasks prints a checklist in position order.
func (pp *PrettyPrint) Subtasks(subs []entity.Subtask) {
	if len(subs) == 0 {
		pp.none()
		return
	}
	tbl := pp.table()
	for _, s := range subs {
		title := s.Title
		if s.Completed {
			title = color.New(color.Faint, color.CrossedOut).Sprint(title)
		}
		row := []interface{}{fmt.Sprintf("%d.", s.Position+1), check(s.Completed), title}
		if pp.ShowID {
			id := s.ID.String()
			if s.ID.Pending() {
				id = "new"
			}
			row = append([]interface{}{color.New(color.FgHiYellow, color.Faint).Sprint(id)}, row...)
		}
		tbl.AddRow(row...)
	}
	pp.flush(tbl)
}

// Summary prints the task counters.
func (pp *PrettyPrint) Summary(s viewmodel.Summary) {
	tbl := pp.table()
	tbl.AddRow("active", s.Active)
	tbl.AddRow("overdue", color.New(color.FgRed).Sprint(s.Overdue))
	tbl.AddRow("completed", s.Completed)
	tbl.AddRow(color.New(color.Bold).Sprint("total"), s.Total)
	pp.flush(tbl)
}

// Settings prints the user preferences.
func (pp *PrettyPrint) Settings(s entity.UserSettings) {
	start, end := s.WorkHours()
	tz := s.Timezone
	if tz == "" {
		tz = "local"
	}
	pp.Title("Settings")
	tbl := pp.table()
	tbl.AddRow("timezone", tz)
	tbl.AddRow("work hours", fmt.Sprintf("%s - %s", start, end))
	tbl.AddRow("theme", s.Theme)
	tbl.AddRow("calendar view", s.DefaultCalendarView)
	tbl.AddRow("email notifications", onOff(s.EmailNotifications))
	tbl.AddRow("push notifications", onOff(s.PushNotifications))
	pp.flush(tbl)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Errorf prints a red line.
func (pp *PrettyPrint) Errorf(format string, a ...interface{}) {
	_, _ = color.New(color.FgRed).Fprintf(pp.out(), strings.TrimSuffix(format, "\n")+"\n", a...)
}

// Noticef prints a faint line.
func (pp *PrettyPrint) Noticef(format string, a ...interface{}) {
	_, _ = color.New(color.Faint).Fprintf(pp.out(), strings.TrimSuffix(format, "\n")+"\n", a...)
}

// JSON prints v as indented JSON.
func (pp *PrettyPrint) JSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(pp.out(), string(b))
	return nil
}

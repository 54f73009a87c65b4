package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/agenda/pkg/app"
	"tableflip.dev/agenda/pkg/timeutil"
)

const width = len("11 12 13 14 15 16 17") // an example week

// Agenda prints each day of the window with what falls on it.
func (pp *PrettyPrint) Agenda(res app.AgendaResult) {
	loc := pp.loc()
	pp.TitleWithCount(fmt.Sprintf("%s - %s", res.From.In(loc).Format("Mon 2 Jan"), res.To.In(loc).Format("Mon 2 Jan")), res.Total, "item")
	if len(res.Days) == 0 {
		pp.none()
		return
	}

	b := color.New(color.Bold)
	bs := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint)
	cyan := color.New(color.FgCyan)

	for _, day := range res.Days {
		printer := b
		if timeutil.SameDay(day.Date, pp.now(), loc) {
			printer = bs
		}
		_, _ = printer.Fprintln(pp.out(), day.Date.In(loc).Format("Monday 2 January"))

		tbl := pp.table()
		for _, a := range day.Appointments {
			at := "all day"
			if !a.AllDay {
				at = fmt.Sprintf("%s-%s", a.StartTime.In(loc).Format("15:04"), a.EndTime.In(loc).Format("15:04"))
			}
			tbl.AddRow("  ", at, a.Title)
		}
		for _, t := range day.Tasks {
			tbl.AddRow("  ", check(t.Completed), t.Title+" "+priority(t.Priority))
		}
		for _, o := range day.Upcoming {
			tbl.AddRow("  ", cyan.Sprint("repeats"), faint.Sprint(o.Title))
		}
		pp.flush(tbl)
	}
}

// AgendaMonth prints a month calendar with the busy days of res in bold.
func (pp *PrettyPrint) AgendaMonth(then time.Time, res app.AgendaResult) {
	loc := pp.loc()
	count := make([]int, DaysIn(then))
	for _, day := range res.Days {
		d := day.Date.In(loc)
		if d.Year() != then.Year() || d.Month() != then.Month() {
			continue
		}
		count[d.Day()-1] += len(day.Tasks) + len(day.Appointments) + len(day.Upcoming)
	}
	pp.PrintMonthCount(then, count)
}

func (pp *PrettyPrint) PrintMonthCount(then time.Time, count []int) {
	d := StartDay(then)

	tf := color.New(color.FgWhite, color.Italic)

	m := then.Month().String()
	mid := (width - len(m)) / 2
	_, _ = tf.Fprintf(pp.out(), "%s%s%s\n", strings.Repeat(" ", mid), m, strings.Repeat(" ", width-mid-len(m)))

	days := DaysIn(then)

	// Pad out the start of the month.
	_, _ = fmt.Fprint(pp.out(), strings.Repeat("   ", int(d)))

	l1 := color.New(color.Faint, color.FgWhite)
	l2 := color.New(color.Bold, color.FgHiWhite)

	for i := 0; i < days; i++ {
		if i < len(count) && count[i] > 0 {
			_, _ = l2.Fprintf(pp.out(), "%2d ", i+1)
		} else {
			_, _ = l1.Fprintf(pp.out(), "%2d ", i+1)
		}

		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(pp.out(), "\n")
		}
	}
	_, _ = fmt.Fprint(pp.out(), "\n\n")
}

func NextMonth(then time.Time) time.Time {
	return time.Date(then.Year(), then.Month()+1, 1, 0, 0, 0, 0, then.Location())
}

func DaysIn(then time.Time) int {
	return time.Date(then.Year(), then.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func StartDay(then time.Time) time.Weekday {
	return time.Date(then.Year(), then.Month(), 1, 1, 0, 0, 0, time.UTC).Weekday()
}

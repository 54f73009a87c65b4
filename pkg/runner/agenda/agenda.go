// Package agenda provides the runner logic for the day-by-day agenda and its
// month calendar.
package agenda

import (
	"context"
	"errors"
	"io"
	"time"

	"tableflip.dev/agenda/pkg/app"
	"tableflip.dev/agenda/pkg/printers"
	"tableflip.dev/agenda/pkg/timeutil"
)

// Agenda shows what is due and booked from On for Days days. Month shows
// the calendar of On's month instead.
type Agenda struct {
	Service *app.Service
	On      time.Time
	Days    int
	Month   bool
	JSON    bool
	Out     io.Writer
}

func (n *Agenda) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not show agenda, no service")
	}
	loc := n.Service.Location()
	pp := printers.PrettyPrint{Out: n.Out, Location: loc}

	from := timeutil.StartOfDay(n.On, loc)
	to := from.AddDate(0, 0, n.Days).Add(-time.Nanosecond)
	if n.Month {
		from = time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, loc)
		to = printers.NextMonth(from).Add(-time.Nanosecond)
	}

	res, err := n.Service.Agenda(ctx, from, to)
	if err != nil {
		return err
	}
	if n.JSON {
		return pp.JSON(res)
	}
	if n.Month {
		pp.AgendaMonth(from, res)
	}
	pp.Agenda(res)
	return nil
}

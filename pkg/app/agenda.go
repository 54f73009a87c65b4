package app

import (
	"context"
	"sort"
	"time"

	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/timeutil"
)

// maxPreview bounds how many future occurrences of one series an agenda
// shows.
const maxPreview = 31

// Occurrence is a projected repeat of a recurring task that the server has
// not materialised yet.
type Occurrence struct {
	TaskID entity.ID `json:"task_id"`
	Title  string    `json:"title"`
	At     time.Time `json:"at"`
}

// AgendaDay groups what falls on one calendar date.
type AgendaDay struct {
	Date         time.Time            `json:"date"`
	Tasks        []entity.Task        `json:"tasks,omitempty"`
	Appointments []entity.Appointment `json:"appointments,omitempty"`
	Upcoming     []Occurrence         `json:"upcoming,omitempty"`
}

// AgendaResult is a day-by-day agenda for a window.
type AgendaResult struct {
	From  time.Time   `json:"from"`
	To    time.Time   `json:"to"`
	Days  []AgendaDay `json:"days"`
	Total int         `json:"total"`
}

// Agenda returns open tasks due and appointments starting between from and
// to, grouped by day in the service location. Recurring tasks also preview
// their next occurrences inside the window.
func (s *Service) Agenda(ctx context.Context, from, to time.Time) (AgendaResult, error) {
	if from.After(to) {
		from, to = to, from
	}
	tasks, err := s.Tasks(ctx)
	if err != nil {
		return AgendaResult{}, err
	}
	appts, err := s.Appointments(ctx)
	if err != nil {
		return AgendaResult{}, err
	}
	loc := s.Location()

	days := make(map[time.Time]*AgendaDay)
	day := func(t time.Time) *AgendaDay {
		d := timeutil.StartOfDay(t, loc)
		if days[d] == nil {
			days[d] = &AgendaDay{Date: d}
		}
		return days[d]
	}
	inside := func(t time.Time) bool {
		return !t.Before(from) && !t.After(to)
	}

	total := 0
	for _, t := range tasks {
		due := t.Due()
		if t.Completed || due == nil {
			continue
		}
		if inside(*due) {
			d := day(*due)
			d.Tasks = append(d.Tasks, t)
			total++
		}
		r, ok := t.Recurrence(nil)
		if !ok {
			continue
		}
		for i, at := range timeutil.Occurrences(*due, r.Pattern, r.Interval, r.Until, to, maxPreview+1) {
			if i == 0 || !inside(at) {
				continue
			}
			d := day(at)
			d.Upcoming = append(d.Upcoming, Occurrence{TaskID: t.ID, Title: t.Title, At: at})
		}
	}
	for _, a := range appts {
		if a.Completed {
			continue
		}
		start := a.StartTime.Time
		if a.AllDay {
			// All-day items count for their date even when the window starts
			// later that day.
			start = timeutil.StartOfDay(start, loc)
			if timeutil.SameDay(start, from, loc) {
				start = from
			}
		}
		if !inside(start) {
			continue
		}
		d := day(a.StartTime.Time)
		d.Appointments = append(d.Appointments, a)
		total++
	}

	out := AgendaResult{From: from, To: to, Total: total}
	for _, d := range days {
		sort.SliceStable(d.Tasks, func(i, j int) bool {
			return d.Tasks[i].Due().Before(*d.Tasks[j].Due())
		})
		sort.SliceStable(d.Appointments, func(i, j int) bool {
			return d.Appointments[i].StartTime.Before(d.Appointments[j].StartTime.Time)
		})
		out.Days = append(out.Days, *d)
	}
	sort.Slice(out.Days, func(i, j int) bool { return out.Days[i].Date.Before(out.Days[j].Date) })
	return out, nil
}

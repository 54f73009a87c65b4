package viewmodel

import (
	"sort"
	"strings"
	"time"

	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/timeutil"
)

// AppointmentBucket names an appointment list view.
type AppointmentBucket string

const (
	BucketInProgress AppointmentBucket = "in_progress"
	BucketUpcoming   AppointmentBucket = "upcoming"
	BucketPast       AppointmentBucket = "past"
	BucketDone       AppointmentBucket = "completed"
)

// Option customises appointment classification.
type Option func(*classifyOptions)

type classifyOptions struct {
	loc    *time.Location
	search string
}

// WithLocation compares all-day appointments by date in loc.
func WithLocation(loc *time.Location) Option {
	return func(o *classifyOptions) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithSearch keeps appointments whose title or description contains q.
func WithSearch(q string) Option {
	return func(o *classifyOptions) {
		o.search = strings.ToLower(strings.TrimSpace(q))
	}
}

// ClassifyAppointment places a in a bucket. Timed appointments compare
// instants; all-day appointments compare calendar dates in loc, counting the
// end date even when the end falls on midnight.
func ClassifyAppointment(a entity.Appointment, now time.Time, loc *time.Location) AppointmentBucket {
	if a.Completed {
		return BucketDone
	}
	if a.AllDay {
		first := timeutil.StartOfDay(a.StartTime.Time, loc)
		last := timeutil.StartOfDay(a.EndTime.Time, loc)
		today := timeutil.StartOfDay(now, loc)
		switch {
		case today.Before(first):
			return BucketUpcoming
		case today.After(last):
			return BucketPast
		}
		return BucketInProgress
	}
	switch {
	case now.Before(a.StartTime.Time):
		return BucketUpcoming
	case now.Before(a.EndTime.Time):
		return BucketInProgress
	}
	return BucketPast
}

// AppointmentViews holds the classified appointment lists. Upcoming and in
// progress run soonest first; past and completed run most recent first.
type AppointmentViews struct {
	InProgress []entity.Appointment `json:"in_progress"`
	Upcoming   []entity.Appointment `json:"upcoming"`
	Past       []entity.Appointment `json:"past"`
	Completed  []entity.Appointment `json:"completed"`
}

func (v AppointmentViews) Bucket(b AppointmentBucket) []entity.Appointment {
	switch b {
	case BucketInProgress:
		return v.InProgress
	case BucketUpcoming:
		return v.Upcoming
	case BucketPast:
		return v.Past
	case BucketDone:
		return v.Completed
	}
	return nil
}

func ClassifyAppointments(list []entity.Appointment, now time.Time, opts ...Option) AppointmentViews {
	o := &classifyOptions{loc: time.Local}
	for _, opt := range opts {
		opt(o)
	}

	var v AppointmentViews
	for _, a := range list {
		if o.search != "" && !matchAppointment(a, o.search) {
			continue
		}
		switch ClassifyAppointment(a, now, o.loc) {
		case BucketDone:
			v.Completed = append(v.Completed, a)
		case BucketInProgress:
			v.InProgress = append(v.InProgress, a)
		case BucketUpcoming:
			v.Upcoming = append(v.Upcoming, a)
		case BucketPast:
			v.Past = append(v.Past, a)
		}
	}
	byStart(v.InProgress, false)
	byStart(v.Upcoming, false)
	byStart(v.Past, true)
	byStart(v.Completed, true)
	return v
}

func matchAppointment(a entity.Appointment, q string) bool {
	if strings.Contains(strings.ToLower(a.Title), q) {
		return true
	}
	return a.Description != nil && strings.Contains(strings.ToLower(*a.Description), q)
}

func byStart(list []entity.Appointment, desc bool) {
	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return list[i].StartTime.After(list[j].StartTime.Time)
		}
		return list[i].StartTime.Before(list[j].StartTime.Time)
	})
}

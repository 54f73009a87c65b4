// Package conflict finds calendar items that overlap a proposed window.
package conflict

import (
	"time"

	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/timeutil"
)

// Kind tells appointments from synced meetings.
type Kind string

const (
	KindAppointment Kind = "appointment"
	KindMeeting     Kind = "meeting"
)

// Match is the first scheduled item found overlapping a candidate.
type Match struct {
	Kind   Kind          `json:"kind"`
	ID     entity.ID     `json:"id"`
	Title  string        `json:"title"`
	Window entity.Window `json:"-"`
}

// Detector compares windows by calendar date in Location whenever either side
// is an all-day item, and by instant otherwise.
type Detector struct {
	Location *time.Location
}

// Overlaps reports whether a and b share any time. Timed windows are
// half-open, so back-to-back items do not overlap.
func (d Detector) Overlaps(a, b entity.Window) bool {
	if a.AllDay || b.AllDay {
		aStart, aEnd := d.days(a)
		bStart, bEnd := d.days(b)
		return !aStart.After(bEnd) && !bStart.After(aEnd)
	}
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// days returns the first and last calendar day w touches. Both ends are
// inclusive, so an end at midnight still touches the day it opens.
func (d Detector) days(w entity.Window) (time.Time, time.Time) {
	start := timeutil.StartOfDay(w.Start, d.Location)
	end := timeutil.StartOfDay(w.End, d.Location)
	if end.Before(start) {
		end = start
	}
	return start, end
}

// FindConflict checks appointments first and then meetings, returning the
// first overlap in list order or nil. excludeID skips the appointment being
// edited; meetings are never excluded.
func (d Detector) FindConflict(candidate entity.Window, appointments []entity.Appointment, meetings []entity.Meeting, excludeID *entity.ID) *Match {
	for _, a := range appointments {
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if d.Overlaps(candidate, a.Window()) {
			return &Match{Kind: KindAppointment, ID: a.ID, Title: a.Title, Window: a.Window()}
		}
	}
	for _, m := range meetings {
		if d.Overlaps(candidate, m.Window()) {
			return &Match{Kind: KindMeeting, ID: m.ID, Title: m.Title, Window: m.Window()}
		}
	}
	return nil
}

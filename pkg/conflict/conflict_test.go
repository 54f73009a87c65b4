package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/agenda/pkg/entity"
)

func at(h, m int) time.Time {
	return time.Date(2025, 3, 12, h, m, 0, 0, time.UTC)
}

func appt(id entity.ID, start, end time.Time, allDay bool) entity.Appointment {
	return entity.Appointment{
		ID:        id,
		Title:     "appt " + id.String(),
		StartTime: entity.Timestamp{Time: start},
		EndTime:   entity.Timestamp{Time: end},
		AllDay:    allDay,
	}
}

func TestTimedOverlapIsHalfOpen(t *testing.T) {
	d := Detector{Location: time.UTC}
	a := entity.Window{Start: at(9, 0), End: at(10, 0)}

	assert.True(t, d.Overlaps(a, entity.Window{Start: at(9, 30), End: at(11, 0)}))
	assert.False(t, d.Overlaps(a, entity.Window{Start: at(10, 0), End: at(11, 0)}))
	assert.False(t, d.Overlaps(a, entity.Window{Start: at(8, 0), End: at(9, 0)}))
}

func TestAllDayComparesDates(t *testing.T) {
	d := Detector{Location: time.UTC}
	allDay := entity.Window{Start: at(0, 0), End: at(0, 0).AddDate(0, 0, 1), AllDay: true}

	assert.True(t, d.Overlaps(allDay, entity.Window{Start: at(23, 0), End: at(23, 30)}))
	assert.True(t, d.Overlaps(allDay, entity.Window{Start: at(0, 0), End: at(23, 59), AllDay: true}))

	dayAfter := entity.Window{Start: at(9, 0).AddDate(0, 0, 2), End: at(10, 0).AddDate(0, 0, 2)}
	assert.False(t, d.Overlaps(allDay, dayAfter))
}

func TestAllDayEndDateIsInclusive(t *testing.T) {
	d := Detector{Location: time.UTC}
	day := func(month time.Month, dd, h int) time.Time { return time.Date(2026, month, dd, h, 0, 0, 0, time.UTC) }
	allDay := entity.Window{Start: day(time.March, 10, 0), End: day(time.March, 11, 0), AllDay: true}

	cases := []struct {
		name  string
		other entity.Window
		want  bool
	}{
		{"timed on the end date", entity.Window{Start: day(time.March, 11, 10), End: day(time.March, 11, 11)}, true},
		{"timed on the start date", entity.Window{Start: day(time.March, 10, 22), End: day(time.March, 10, 23)}, true},
		{"timed the day before", entity.Window{Start: day(time.March, 9, 10), End: day(time.March, 9, 11)}, false},
		{"timed the day after the end", entity.Window{Start: day(time.March, 12, 0), End: day(time.March, 12, 1)}, false},
		{"all-day starting on the end date", entity.Window{Start: day(time.March, 11, 0), End: day(time.March, 12, 0), AllDay: true}, true},
		{"all-day ending on the start date", entity.Window{Start: day(time.March, 9, 0), End: day(time.March, 10, 0), AllDay: true}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, d.Overlaps(allDay, tc.other))
			assert.Equal(t, tc.want, d.Overlaps(tc.other, allDay))
		})
	}

	m := d.FindConflict(cases[0].other, []entity.Appointment{appt(1, allDay.Start, allDay.End, true)}, nil, nil)
	require.NotNil(t, m)
	assert.Equal(t, entity.ID(1), m.ID)
}

func TestFindConflictOrderAndExclude(t *testing.T) {
	d := Detector{Location: time.UTC}
	candidate := entity.Window{Start: at(9, 0), End: at(10, 0)}
	appointments := []entity.Appointment{
		appt(1, at(7, 0), at(8, 0), false),
		appt(2, at(9, 30), at(9, 45), false),
		appt(3, at(9, 0), at(10, 0), false),
	}
	meetings := []entity.Meeting{{ID: 2, Title: "standup", StartTime: entity.Timestamp{Time: at(9, 0)}, EndTime: entity.Timestamp{Time: at(9, 15)}}}

	m := d.FindConflict(candidate, appointments, meetings, nil)
	require.NotNil(t, m)
	assert.Equal(t, KindAppointment, m.Kind)
	assert.Equal(t, entity.ID(2), m.ID)

	exclude := entity.ID(2)
	m = d.FindConflict(candidate, appointments, meetings, &exclude)
	require.NotNil(t, m)
	assert.Equal(t, entity.ID(3), m.ID)

	m = d.FindConflict(candidate, appointments[:1], meetings, &exclude)
	require.NotNil(t, m)
	assert.Equal(t, KindMeeting, m.Kind)

	assert.Nil(t, d.FindConflict(candidate, appointments[:1], nil, nil))
}

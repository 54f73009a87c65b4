package entity

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/agenda/pkg/timeutil"
)

func TestTaskJSONUsesUnixSeconds(t *testing.T) {
	raw := `{"id":7,"title":"Pay rent","description":null,"priority":"high","completed":false,
		"due_date":1741771800,"is_recurring":false,"recurrence_pattern":null,
		"recurrence_interval":null,"recurrence_end_date":null,"parent_task_id":null,
		"has_subtasks":true,"completed_subtasks":1,"total_subtasks":3}`

	var task Task
	require.NoError(t, json.Unmarshal([]byte(raw), &task))
	assert.Equal(t, ID(7), task.ID)
	require.NotNil(t, task.Due())
	assert.Equal(t, time.Date(2025, 3, 12, 9, 30, 0, 0, time.UTC), task.Due().UTC())
	assert.False(t, task.IsInstance())

	out, err := json.Marshal(task)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"due_date":1741771800`)
	assert.Contains(t, string(out), `"recurrence_end_date":null`)
}

func TestNormalizeClearsRecurrence(t *testing.T) {
	p := timeutil.Weekly
	n := 2
	task := Task{Title: "  Stretch ", RecurrencePattern: &p, RecurrenceInterval: &n, RecurrenceEndDate: Unix(10)}
	task.Normalize()

	assert.Equal(t, "Stretch", task.Title)
	assert.Equal(t, PriorityMedium, task.Priority)
	assert.Nil(t, task.RecurrencePattern)
	assert.Nil(t, task.RecurrenceInterval)
	assert.Nil(t, task.RecurrenceEndDate)
}

func TestPatchTurningRecurrenceOffSendsNulls(t *testing.T) {
	off := false
	out, err := json.Marshal(TaskPatch{IsRecurring: &off})
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(out, &body))
	assert.Equal(t, false, body["is_recurring"])
	for _, k := range []string{"recurrence_pattern", "recurrence_interval", "recurrence_end_date"} {
		v, ok := body[k]
		assert.True(t, ok, "expected %s to be present", k)
		assert.Nil(t, v)
	}
}

func TestPatchOmitsUntouchedFields(t *testing.T) {
	title := "New"
	out, err := json.Marshal(TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"New"}`, string(out))
}

func TestPatchRejectsRecurringInstance(t *testing.T) {
	parent := ID(3)
	on := true
	err := TaskPatch{IsRecurring: &on}.Validate(Task{ID: 9, Title: "x", Priority: PriorityLow, ParentTaskID: &parent})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "is_recurring", verr.Field)
}

func TestInstanceShowsTemplateRecurrence(t *testing.T) {
	p := timeutil.Monthly
	template := Task{ID: 3, IsRecurring: true, RecurrencePattern: &p}
	parent := template.ID
	instance := Task{ID: 9, ParentTaskID: &parent}

	_, ok := instance.Recurrence(nil)
	assert.False(t, ok)

	r, ok := instance.Recurrence(&template)
	require.True(t, ok)
	assert.Equal(t, "Monthly", r.Describe(time.UTC))
}

func TestTempIDs(t *testing.T) {
	var ids TempIDs
	a, b := ids.Next(), ids.Next()
	assert.Equal(t, ID(-1), a)
	assert.Equal(t, ID(-2), b)
	assert.Equal(t, StatePending, a.State())
	assert.Equal(t, StatePersisted, ID(4).State())
}

func TestWorkHoursPatch(t *testing.T) {
	p, err := WorkHoursPatch(timeutil.TimeOfDay{Hour: 9}, timeutil.TimeOfDay{Hour: 24})
	require.NoError(t, err)
	assert.Equal(t, int64(9*3600), *p.WorkStartHour)
	assert.Equal(t, int64(24*3600), *p.WorkEndHour)

	s := p.Apply(UserSettings{})
	start, end := s.WorkHours()
	assert.Equal(t, "09:00", start.String())
	assert.Equal(t, "24:00", end.String())

	_, err = WorkHoursPatch(timeutil.TimeOfDay{Hour: 17}, timeutil.TimeOfDay{Hour: 9})
	assert.Error(t, err)
}

func TestAppointmentValidate(t *testing.T) {
	start := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	a := Appointment{Title: "Dentist", StartTime: Timestamp{Time: start}, EndTime: Timestamp{Time: start}}
	assert.Error(t, a.Validate(time.UTC))

	a.AllDay = true
	assert.NoError(t, a.Validate(time.UTC))

	a.AllDay = false
	a.EndTime = Timestamp{Time: start.Add(time.Hour)}
	assert.NoError(t, a.Validate(time.UTC))

	a.Title = " "
	assert.Error(t, a.Validate(time.UTC))
}

func TestAppointmentPatchClearsDescription(t *testing.T) {
	d := "bring forms"
	empty := ""
	a := Appointment{ID: 4, Title: "Dentist", Description: &d}

	got := AppointmentPatch{Description: &empty}.Apply(a)
	assert.Nil(t, got.Description)

	out, err := json.Marshal(AppointmentPatch{Description: &empty})
	require.NoError(t, err)
	assert.JSONEq(t, `{"description":null}`, string(out))
}

func TestAppointmentPatchRecurrence(t *testing.T) {
	weekly := timeutil.Weekly
	on := true
	a := AppointmentPatch{IsRecurring: &on, RecurrencePattern: &weekly}.Apply(Appointment{Title: " Standup "})
	assert.Equal(t, "Standup", a.Title)
	assert.True(t, a.IsRecurring)
	require.NotNil(t, a.RecurrenceInterval)
	assert.Equal(t, 1, *a.RecurrenceInterval)

	off := false
	stopped := AppointmentPatch{IsRecurring: &off}.Apply(a)
	assert.False(t, stopped.IsRecurring)
	assert.Nil(t, stopped.RecurrencePattern)
	assert.Nil(t, stopped.RecurrenceInterval)

	out, err := json.Marshal(AppointmentPatch{IsRecurring: &off, RecurrencePattern: &weekly})
	require.NoError(t, err)
	assert.JSONEq(t, `{"is_recurring":false,"recurrence_pattern":null,"recurrence_interval":null,"recurrence_end_date":null}`, string(out))

	every := 2
	out, err = json.Marshal(AppointmentPatch{RecurrenceInterval: &every, EndTime: Unix(1741771800)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"recurrence_interval":2,"end_time":1741771800}`, string(out))
}

func TestAppointmentPatchEmpty(t *testing.T) {
	assert.True(t, AppointmentPatch{}.Empty())
	every := 3
	assert.False(t, AppointmentPatch{RecurrenceInterval: &every}.Empty())
	assert.False(t, AppointmentPatch{RecurrenceInterval: &every}.TouchesSchedule())
}

func TestNextDue(t *testing.T) {
	p := timeutil.Monthly
	due := time.Date(2026, time.January, 31, 9, 0, 0, 0, time.UTC)
	task := Task{Title: "Rent", DueDate: At(due), IsRecurring: true, RecurrencePattern: &p}

	next, ok := task.NextDue()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, time.February, 28, 9, 0, 0, 0, time.UTC), next)

	task.RecurrenceEndDate = At(due.AddDate(0, 0, 7))
	_, ok = task.NextDue()
	assert.False(t, ok, "the series ends before the next occurrence")

	_, ok = Task{Title: "once", DueDate: At(due)}.NextDue()
	assert.False(t, ok)
}

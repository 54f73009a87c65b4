package entity

import (
	"encoding/json"
	"strings"
	"time"

	"tableflip.dev/agenda/pkg/timeutil"
)

// Window is the span a calendar item occupies.
type Window struct {
	Start  time.Time
	End    time.Time
	AllDay bool
}

// Appointment is a user-owned calendar item.
type Appointment struct {
	ID                  ID                `json:"id"`
	Title               string            `json:"title"`
	Description         *string           `json:"description"`
	StartTime           Timestamp         `json:"start_time"`
	EndTime             Timestamp         `json:"end_time"`
	AllDay              bool              `json:"all_day"`
	Completed           bool              `json:"completed"`
	IsRecurring         bool              `json:"is_recurring"`
	RecurrencePattern   *timeutil.Pattern `json:"recurrence_pattern"`
	RecurrenceInterval  *int              `json:"recurrence_interval"`
	RecurrenceEndDate   *Timestamp        `json:"recurrence_end_date"`
	ParentAppointmentID *ID               `json:"parent_appointment_id"`
}

func (a Appointment) ItemID() ID { return a.ID }

// Normalize trims the title and keeps the series fields consistent with
// IsRecurring.
func (a *Appointment) Normalize() {
	a.Title = strings.TrimSpace(a.Title)
	if !a.IsRecurring {
		a.RecurrencePattern = nil
		a.RecurrenceInterval = nil
		a.RecurrenceEndDate = nil
		return
	}
	if a.RecurrenceInterval == nil {
		one := 1
		a.RecurrenceInterval = &one
	}
}

func (a Appointment) Window() Window {
	return Window{Start: a.StartTime.Time, End: a.EndTime.Time, AllDay: a.AllDay}
}

// Validate checks an appointment about to be sent to the server. Timed
// appointments must end after they start; all-day ones compare dates in loc.
func (a Appointment) Validate(loc *time.Location) error {
	if strings.TrimSpace(a.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if a.StartTime.IsZero() || a.EndTime.IsZero() {
		return &ValidationError{Field: "start_time", Reason: "start and end are required"}
	}
	if a.AllDay {
		if timeutil.DaysBetween(a.StartTime.Time, a.EndTime.Time, loc) < 0 {
			return &ValidationError{Field: "end_time", Reason: "must not be before the start date"}
		}
	} else if !a.EndTime.After(a.StartTime.Time) {
		return &ValidationError{Field: "end_time", Reason: "must be after start_time"}
	}
	if a.IsRecurring && (a.RecurrencePattern == nil || !a.RecurrencePattern.Valid()) {
		return &ValidationError{Field: "recurrence_pattern", Reason: "required for recurring appointments"}
	}
	if a.IsRecurring && a.RecurrenceInterval != nil && *a.RecurrenceInterval < 1 {
		return &ValidationError{Field: "recurrence_interval", Reason: "must be at least 1"}
	}
	return nil
}

// AppointmentDraft is the body of a create request.
type AppointmentDraft struct {
	Title              string            `json:"title"`
	Description        *string           `json:"description"`
	StartTime          Timestamp         `json:"start_time"`
	EndTime            Timestamp         `json:"end_time"`
	AllDay             bool              `json:"all_day"`
	IsRecurring        bool              `json:"is_recurring"`
	RecurrencePattern  *timeutil.Pattern `json:"recurrence_pattern"`
	RecurrenceInterval *int              `json:"recurrence_interval"`
	RecurrenceEndDate  *Timestamp        `json:"recurrence_end_date"`
}

func (a Appointment) Draft() AppointmentDraft {
	d := AppointmentDraft{
		Title:       strings.TrimSpace(a.Title),
		Description: a.Description,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
		AllDay:      a.AllDay,
		IsRecurring: a.IsRecurring,
	}
	if a.IsRecurring {
		d.RecurrencePattern = a.RecurrencePattern
		d.RecurrenceInterval = a.RecurrenceInterval
		d.RecurrenceEndDate = a.RecurrenceEndDate
	}
	return d
}

// AppointmentPatch is a partial appointment update. Nil fields are left
// alone. An empty Description sends an explicit null.
type AppointmentPatch struct {
	Title              *string
	Description        *string
	StartTime          *Timestamp
	EndTime            *Timestamp
	AllDay             *bool
	Completed          *bool
	IsRecurring        *bool
	RecurrencePattern  *timeutil.Pattern
	RecurrenceInterval *int
	RecurrenceEndDate  *Timestamp
}

// Empty reports whether the patch changes nothing.
func (p AppointmentPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.StartTime == nil &&
		p.EndTime == nil && p.AllDay == nil && p.Completed == nil &&
		p.IsRecurring == nil && p.RecurrencePattern == nil &&
		p.RecurrenceInterval == nil && p.RecurrenceEndDate == nil
}

// TouchesSchedule reports whether the patch moves the appointment in time.
func (p AppointmentPatch) TouchesSchedule() bool {
	return p.StartTime != nil || p.EndTime != nil || p.AllDay != nil
}

// Apply returns a with the patch applied and normalized.
func (p AppointmentPatch) Apply(a Appointment) Appointment {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Description != nil {
		if *p.Description == "" {
			a.Description = nil
		} else {
			d := *p.Description
			a.Description = &d
		}
	}
	if p.StartTime != nil {
		a.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		a.EndTime = *p.EndTime
	}
	if p.AllDay != nil {
		a.AllDay = *p.AllDay
	}
	if p.Completed != nil {
		a.Completed = *p.Completed
	}
	if p.IsRecurring != nil {
		a.IsRecurring = *p.IsRecurring
	}
	if p.RecurrencePattern != nil {
		a.RecurrencePattern = p.RecurrencePattern
	}
	if p.RecurrenceInterval != nil {
		a.RecurrenceInterval = p.RecurrenceInterval
	}
	if p.RecurrenceEndDate != nil {
		a.RecurrenceEndDate = p.RecurrenceEndDate
	}
	a.Normalize()
	return a
}

// MarshalJSON writes only the fields that change. Turning recurrence off
// clears the series fields with explicit nulls.
func (p AppointmentPatch) MarshalJSON() ([]byte, error) {
	body := map[string]any{}
	if p.Title != nil {
		body["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		if *p.Description == "" {
			body["description"] = nil
		} else {
			body["description"] = *p.Description
		}
	}
	if p.StartTime != nil {
		body["start_time"] = p.StartTime
	}
	if p.EndTime != nil {
		body["end_time"] = p.EndTime
	}
	if p.AllDay != nil {
		body["all_day"] = *p.AllDay
	}
	if p.Completed != nil {
		body["completed"] = *p.Completed
	}
	if p.IsRecurring != nil {
		body["is_recurring"] = *p.IsRecurring
		if !*p.IsRecurring {
			body["recurrence_pattern"] = nil
			body["recurrence_interval"] = nil
			body["recurrence_end_date"] = nil
			return json.Marshal(body)
		}
	}
	if p.RecurrencePattern != nil {
		body["recurrence_pattern"] = *p.RecurrencePattern
	}
	if p.RecurrenceInterval != nil {
		body["recurrence_interval"] = *p.RecurrenceInterval
	}
	if p.RecurrenceEndDate != nil {
		body["recurrence_end_date"] = p.RecurrenceEndDate
	}
	return json.Marshal(body)
}

// Meeting is a calendar item synced from another source. Meetings are read
// only and take part in conflict checks.
type Meeting struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	StartTime Timestamp `json:"start_time"`
	EndTime   Timestamp `json:"end_time"`
	AllDay    bool      `json:"all_day"`
}

func (m Meeting) ItemID() ID { return m.ID }

func (m Meeting) Window() Window {
	return Window{Start: m.StartTime.Time, End: m.EndTime.Time, AllDay: m.AllDay}
}

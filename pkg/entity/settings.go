package entity

import (
	"time"

	"tableflip.dev/agenda/pkg/timeutil"
)

// UserSettings is the per-user preferences record. Work hours are stored as
// seconds on the epoch reference day.
type UserSettings struct {
	Timezone            string `json:"timezone"`
	WorkStartHour       int64  `json:"work_start_hour"`
	WorkEndHour         int64  `json:"work_end_hour"`
	Theme               string `json:"theme"`
	DefaultCalendarView string `json:"default_calendar_view"`
	EmailNotifications  bool   `json:"email_notifications"`
	PushNotifications   bool   `json:"push_notifications"`
}

// Location resolves the configured timezone, falling back to the local zone.
func (s UserSettings) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, &ValidationError{Field: "timezone", Reason: err.Error()}
	}
	return loc, nil
}

// WorkHours decodes and clamps the stored work day.
func (s UserSettings) WorkHours() (start, end timeutil.TimeOfDay) {
	start = timeutil.ClampStart(timeutil.ToTimeObject(s.WorkStartHour))
	end = timeutil.ClampEnd(timeutil.ToTimeObject(s.WorkEndHour))
	return start, end
}

// SettingsPatch is a partial settings update.
type SettingsPatch struct {
	Timezone            *string `json:"timezone,omitempty"`
	WorkStartHour       *int64  `json:"work_start_hour,omitempty"`
	WorkEndHour         *int64  `json:"work_end_hour,omitempty"`
	Theme               *string `json:"theme,omitempty"`
	DefaultCalendarView *string `json:"default_calendar_view,omitempty"`
	EmailNotifications  *bool   `json:"email_notifications,omitempty"`
	PushNotifications   *bool   `json:"push_notifications,omitempty"`
}

// WorkHoursPatch encodes a work day after validating it.
func WorkHoursPatch(start, end timeutil.TimeOfDay) (SettingsPatch, error) {
	if start != timeutil.ClampStart(start) {
		return SettingsPatch{}, &ValidationError{Field: "work_start_hour", Reason: "must be between 00:00 and 23:59"}
	}
	if end != timeutil.ClampEnd(end) {
		return SettingsPatch{}, &ValidationError{Field: "work_end_hour", Reason: "must be between 01:00 and 24:00"}
	}
	if end.Minutes() <= start.Minutes() {
		return SettingsPatch{}, &ValidationError{Field: "work_end_hour", Reason: "must be after the start of the work day"}
	}
	s, e := timeutil.ToTimestamp(start), timeutil.ToTimestamp(end)
	return SettingsPatch{WorkStartHour: &s, WorkEndHour: &e}, nil
}

func (p SettingsPatch) Validate() error {
	if p.Timezone != nil {
		if _, err := time.LoadLocation(*p.Timezone); err != nil {
			return &ValidationError{Field: "timezone", Reason: err.Error()}
		}
	}
	return nil
}

func (p SettingsPatch) Apply(s UserSettings) UserSettings {
	if p.Timezone != nil {
		s.Timezone = *p.Timezone
	}
	if p.WorkStartHour != nil {
		s.WorkStartHour = *p.WorkStartHour
	}
	if p.WorkEndHour != nil {
		s.WorkEndHour = *p.WorkEndHour
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.DefaultCalendarView != nil {
		s.DefaultCalendarView = *p.DefaultCalendarView
	}
	if p.EmailNotifications != nil {
		s.EmailNotifications = *p.EmailNotifications
	}
	if p.PushNotifications != nil {
		s.PushNotifications = *p.PushNotifications
	}
	return s
}

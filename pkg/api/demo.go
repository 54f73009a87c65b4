package api

import (
	"time"

	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/timeutil"
)

// Demo returns a Memory backend seeded with a small week of tasks,
// appointments and one synced meeting around now.
func Demo(now time.Time) *Memory {
	m := NewMemory()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	at := func(days, hour int) *entity.Timestamp {
		return entity.At(day.AddDate(0, 0, days).Add(time.Duration(hour) * time.Hour))
	}
	desc := func(s string) *string { return &s }
	weekly := timeutil.Weekly
	one := 1

	report := m.AddTask(entity.Task{Title: "Write quarterly report", Priority: entity.PriorityHigh, DueDate: at(1, 17), Description: desc("Numbers from finance first.")})
	m.AddSubtask(report.ID, "Collect numbers", true)
	m.AddSubtask(report.ID, "Draft summary", false)
	m.AddSubtask(report.ID, "Send for review", false)

	m.AddTask(entity.Task{Title: "Renew passport", Priority: entity.PriorityMedium, DueDate: at(-2, 12)})
	m.AddTask(entity.Task{Title: "Water plants", Priority: entity.PriorityLow, DueDate: at(0, 18), IsRecurring: true, RecurrencePattern: &weekly, RecurrenceInterval: &one})
	m.AddTask(entity.Task{Title: "Read design notes", Priority: entity.PriorityLow})
	m.AddTask(entity.Task{Title: "Book flights", Priority: entity.PriorityMedium, Completed: true, DueDate: at(-1, 9)})

	m.AddAppointment(entity.Appointment{Title: "Dentist", StartTime: *at(2, 10), EndTime: *at(2, 11)})
	m.AddAppointment(entity.Appointment{Title: "Team offsite", StartTime: *at(4, 0), EndTime: *at(4, 23), AllDay: true})
	m.AddAppointment(entity.Appointment{Title: "Gym", StartTime: *at(-1, 7), EndTime: *at(-1, 8)})

	m.AddMeeting(entity.Meeting{Title: "Standup", StartTime: *at(1, 9), EndTime: *at(1, 10)})

	m.SetGenerated("Outline the steps", "Do the first step", "Check the result")
	return m
}

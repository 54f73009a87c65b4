// Package api talks to the planner backend.
package api

import (
	"context"

	"tableflip.dev/agenda/pkg/entity"
)

// GenerateRequest asks the assistant for subtask titles.
type GenerateRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Count       int     `json:"count"`
}

// MaxGenerated bounds GenerateRequest.Count.
const MaxGenerated = 10

// Remote is the backend as seen by the client. Every write returns the
// authoritative entity.
type Remote interface {
	ListTasks(ctx context.Context) ([]entity.Task, error)
	CreateTask(ctx context.Context, draft entity.TaskDraft) (entity.Task, error)
	UpdateTask(ctx context.Context, id entity.ID, patch entity.TaskPatch) (entity.Task, error)
	DeleteTask(ctx context.Context, id entity.ID) error
	TasksWithSubtasks(ctx context.Context) ([]entity.ID, error)

	ListSubtasks(ctx context.Context, taskID entity.ID) ([]entity.Subtask, error)
	ReplaceSubtasks(ctx context.Context, taskID entity.ID, drafts []entity.SubtaskDraft) ([]entity.Subtask, error)
	UpdateSubtask(ctx context.Context, taskID, subtaskID entity.ID, patch entity.SubtaskPatch) (entity.Subtask, error)
	GenerateSubtasks(ctx context.Context, req GenerateRequest) ([]string, error)

	ListAppointments(ctx context.Context) ([]entity.Appointment, error)
	CreateAppointment(ctx context.Context, draft entity.AppointmentDraft) (entity.Appointment, error)
	UpdateAppointment(ctx context.Context, id entity.ID, patch entity.AppointmentPatch) (entity.Appointment, error)
	DeleteAppointment(ctx context.Context, id entity.ID) error
	ListMeetings(ctx context.Context) ([]entity.Meeting, error)

	GetSettings(ctx context.Context) (entity.UserSettings, error)
	UpdateSettings(ctx context.Context, patch entity.SettingsPatch) (entity.UserSettings, error)
}

package cache

import (
	"fmt"
	"strings"

	"tableflip.dev/agenda/pkg/entity"
)

// Key names a cached query.
type Key string

const (
	KeyTasks             Key = "tasks"
	KeyTasksWithSubtasks Key = "tasks/subtasks"
	KeyAppointments      Key = "appointments"
	KeyMeetings          Key = "meetings"
	KeySettings          Key = "settings"
)

// Fixed lists the keys that do not depend on an identifier.
var Fixed = []Key{KeyTasks, KeyTasksWithSubtasks, KeyAppointments, KeyMeetings, KeySettings}

// SubtasksKey names the subtask list of one task.
func SubtasksKey(taskID entity.ID) Key {
	return Key(fmt.Sprintf("tasks/%d/subtasks", taskID))
}

// ParseSubtasksKey extracts the task id from a SubtasksKey.
func ParseSubtasksKey(key Key) (entity.ID, bool) {
	rest, ok := strings.CutPrefix(string(key), "tasks/")
	if !ok {
		return 0, false
	}
	id, ok := strings.CutSuffix(rest, "/subtasks")
	if !ok {
		return 0, false
	}
	taskID, err := entity.ParseID(id)
	if err != nil {
		return 0, false
	}
	return taskID, true
}

package app

import (
	"encoding/json"
	"fmt"

	"tableflip.dev/agenda/pkg/cache"
	"tableflip.dev/agenda/pkg/entity"
)

// DecodeEntry turns a mirrored cache value back into its typed form.
func DecodeEntry(key cache.Key, data []byte) (any, error) {
	switch key {
	case cache.KeyTasks:
		return decode[[]entity.Task](data)
	case cache.KeyTasksWithSubtasks:
		return decode[[]entity.ID](data)
	case cache.KeyAppointments:
		return decode[[]entity.Appointment](data)
	case cache.KeyMeetings:
		return decode[[]entity.Meeting](data)
	case cache.KeySettings:
		return decode[entity.UserSettings](data)
	}
	if _, ok := cache.ParseSubtasksKey(key); ok {
		return decode[[]entity.Subtask](data)
	}
	return nil, fmt.Errorf("app: no decoder for cache key %q", key)
}

func decode[T any](data []byte) (any, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

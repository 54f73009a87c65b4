// Package reorder moves subtasks within a list and works out which position
// changes need to reach the server.
package reorder

import "tableflip.dev/agenda/pkg/entity"

// NoDestination marks a drag that ended outside the list.
const NoDestination = -1

// Move returns a new list with the item at from placed at to and every
// position renumbered to its index. Invalid or no-op moves return items
// unchanged. Timestamps are never touched.
func Move(items []entity.Subtask, from, to int) []entity.Subtask {
	if from == to || to < 0 || from < 0 || from >= len(items) || to >= len(items) {
		return items
	}
	moved := items[from]
	rest := make([]entity.Subtask, 0, len(items)-1)
	rest = append(rest, items[:from]...)
	rest = append(rest, items[from+1:]...)

	out := make([]entity.Subtask, 0, len(items))
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	Renumber(out)
	return out
}

// Renumber sets each position to its index.
func Renumber(items []entity.Subtask) {
	for i := range items {
		items[i].Position = i
	}
}

// PositionUpdate is a single position change for a persisted subtask.
type PositionUpdate struct {
	ID       entity.ID `json:"id"`
	Position int       `json:"position"`
}

// Updates lists persisted subtasks in after whose position differs from
// before. Local-only items are never sent.
func Updates(before, after []entity.Subtask) []PositionUpdate {
	return Diff(Positions(before), after)
}

// Positions maps each item's id to its position.
func Positions(items []entity.Subtask) map[entity.ID]int {
	out := make(map[entity.ID]int, len(items))
	for _, s := range items {
		out[s.ID] = s.Position
	}
	return out
}

// Diff lists persisted subtasks in after whose position is not the one
// recorded in known. Ids missing from known are always sent.
func Diff(known map[entity.ID]int, after []entity.Subtask) []PositionUpdate {
	var out []PositionUpdate
	for _, s := range after {
		if s.ID.Pending() {
			continue
		}
		if p, ok := known[s.ID]; ok && p == s.Position {
			continue
		}
		out = append(out, PositionUpdate{ID: s.ID, Position: s.Position})
	}
	return out
}

// MergeEchoed copies server timestamps from echoed into a copy of items.
// Order and positions stay as the local list has them.
func MergeEchoed(items, echoed []entity.Subtask) []entity.Subtask {
	byID := make(map[entity.ID]entity.Subtask, len(echoed))
	for _, e := range echoed {
		byID[e.ID] = e
	}
	out := append([]entity.Subtask(nil), items...)
	for i := range out {
		e, ok := byID[out[i].ID]
		if !ok {
			continue
		}
		if e.CreatedAt != nil {
			out[i].CreatedAt = e.CreatedAt
		}
		if e.UpdatedAt != nil {
			out[i].UpdatedAt = e.UpdatedAt
		}
	}
	return out
}

// Package entity defines the records exchanged with the planner backend and
// the drafts and patches used to change them.
package entity

import (
	"strconv"
	"sync/atomic"
)

// ID identifies a persisted record. Negative values are temporary
// identifiers for items that only exist locally.
type ID int64

// State distinguishes server-known records from local-only ones.
type State int

const (
	StatePersisted State = iota
	StatePending
)

func (s State) String() string {
	if s == StatePending {
		return "pending"
	}
	return "persisted"
}

// Pending reports whether id was handed out locally.
func (id ID) Pending() bool { return id < 0 }

func (id ID) State() State {
	if id.Pending() {
		return StatePending
	}
	return StatePersisted
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID reads a decimal identifier.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: "id", Reason: "must be an integer"}
	}
	return ID(v), nil
}

// TempIDs allocates -1, -2, ... for locally created items.
type TempIDs struct {
	last atomic.Int64
}

func (t *TempIDs) Next() ID {
	return ID(-t.last.Add(1))
}

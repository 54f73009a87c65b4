package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Timestamp is an instant carried on the wire as Unix seconds.
type Timestamp struct {
	time.Time
}

// At wraps t.
func At(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

// Unix wraps a Unix-seconds value.
func Unix(sec int64) *Timestamp {
	return &Timestamp{Time: time.Unix(sec, 0)}
}

// TimeOf unwraps a nullable timestamp.
func TimeOf(ts *Timestamp) *time.Time {
	if ts == nil || ts.IsZero() {
		return nil
	}
	t := ts.Time
	return &t
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(t.Unix(), 10)), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if parsed, err := time.Parse(time.RFC3339, s); err == nil {
			t.Time = parsed
			return nil
		}
		b = []byte(s)
	}
	sec, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("timestamp: %q is not unix seconds", b)
	}
	t.Time = time.Unix(int64(sec), 0)
	return nil
}

// SameDay reports whether t and then share a calendar date in loc.
func (t Timestamp) SameDay(then time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	ty, tm, td := t.In(loc).Date()
	y, m, d := then.In(loc).Date()
	return ty == y && tm == m && td == d
}

func (t Timestamp) String() string {
	return t.UTC().Format(time.RFC3339)
}

package timeutil

import (
	"fmt"
	"strconv"
	"strings"
)

const secondsPerDay = 24 * 60 * 60

// TimeOfDay is an hour and minute on a 0..24 clock. 24:00 is only meaningful
// as the end of a work day.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns the minutes elapsed since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// ParseTimeOfDay reads "HH:MM" or a bare hour.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	hh, mm, found := strings.Cut(s, ":")
	h, err := strconv.Atoi(hh)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	m := 0
	if found {
		if m, err = strconv.Atoi(mm); err != nil {
			return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
		}
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// ToTimestamp encodes t as seconds on the epoch reference day, the format the
// settings endpoint stores work hours in.
func ToTimestamp(t TimeOfDay) int64 {
	return int64(t.Hour)*3600 + int64(t.Minute)*60
}

// ToTimeObject decodes a stored work-hour value. Only the time of day is
// significant; exactly one day decodes to 24:00.
func ToTimeObject(ts int64) TimeOfDay {
	if ts == secondsPerDay {
		return TimeOfDay{Hour: 24}
	}
	secs := ts % secondsPerDay
	if secs < 0 {
		secs += secondsPerDay
	}
	return TimeOfDay{Hour: int(secs / 3600), Minute: int(secs % 3600 / 60)}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampStart bounds a work-day start to 00:00..23:59.
func ClampStart(t TimeOfDay) TimeOfDay {
	return TimeOfDay{Hour: clamp(t.Hour, 0, 23), Minute: clamp(t.Minute, 0, 59)}
}

// ClampEnd bounds a work-day end to 01:00..24:00.
func ClampEnd(t TimeOfDay) TimeOfDay {
	h := clamp(t.Hour, 1, 24)
	if h == 24 {
		return TimeOfDay{Hour: 24}
	}
	return TimeOfDay{Hour: h, Minute: clamp(t.Minute, 0, 59)}
}

package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// Pattern is the unit a recurring item repeats on.
type Pattern string

const (
	Daily   Pattern = "daily"
	Weekly  Pattern = "weekly"
	Monthly Pattern = "monthly"
	Yearly  Pattern = "yearly"
)

// ParsePattern accepts a pattern name case-insensitively.
func ParsePattern(s string) (Pattern, error) {
	p := Pattern(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown recurrence pattern %q", s)
	}
	return p, nil
}

func (p Pattern) Valid() bool {
	switch p {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (p Pattern) unit() string {
	switch p {
	case Daily:
		return "day"
	case Weekly:
		return "week"
	case Monthly:
		return "month"
	case Yearly:
		return "year"
	}
	return string(p)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// Advance moves t forward by n pattern units. Monthly and yearly steps clamp
// to the last day of a shorter target month.
func Advance(t time.Time, p Pattern, n int) time.Time {
	switch p {
	case Daily:
		return t.AddDate(0, 0, n)
	case Weekly:
		return t.AddDate(0, 0, 7*n)
	case Monthly, Yearly:
		months := n
		if p == Yearly {
			months = 12 * n
		}
		y, m, d := t.Date()
		total := int(m) - 1 + months
		ty := y + total/12
		tm := time.Month(total%12 + 1)
		if total < 0 && total%12 != 0 {
			ty--
			tm = time.Month(total%12 + 13)
		}
		if last := daysIn(ty, tm, t.Location()); d > last {
			d = last
		}
		return time.Date(ty, tm, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	}
	return t
}

// NextOccurrence returns the occurrence following from, or false when the
// series ends before it.
func NextOccurrence(from time.Time, p Pattern, interval int, until *time.Time) (time.Time, bool) {
	if !p.Valid() {
		return time.Time{}, false
	}
	if interval < 1 {
		interval = 1
	}
	next := Advance(from, p, interval)
	if until != nil && next.After(*until) {
		return time.Time{}, false
	}
	return next, true
}

// Occurrences lists up to limit occurrences of a series starting at start and
// ending no later than through. Each occurrence is computed from start so
// month-end clamping does not drift.
func Occurrences(start time.Time, p Pattern, interval int, until *time.Time, through time.Time, limit int) []time.Time {
	if !p.Valid() || limit <= 0 {
		return nil
	}
	if interval < 1 {
		interval = 1
	}
	var out []time.Time
	for k := 0; len(out) < limit; k++ {
		at := Advance(start, p, k*interval)
		if at.After(through) || (until != nil && at.After(*until)) {
			break
		}
		out = append(out, at)
	}
	return out
}

// DescribeRecurrence renders a series for display, for example
// "Weekly, every 2 weeks until Mar 1, 2026".
func DescribeRecurrence(p Pattern, interval int, until *time.Time, loc *time.Location) string {
	if !p.Valid() {
		return ""
	}
	desc := strings.ToUpper(string(p[:1])) + string(p[1:])
	if interval > 1 {
		desc += fmt.Sprintf(", every %d %ss", interval, p.unit())
	}
	if until != nil {
		desc += " until " + until.In(location(loc)).Format("Jan 2, 2006")
	}
	return desc
}

// Package timeutil holds the calendar arithmetic shared by the task and
// appointment views: due-date buckets, recurrence and work hours.
package timeutil

import "time"

// Bucket names the calendar-relative slot a due date falls into.
type Bucket string

const (
	BucketNone      Bucket = "none"
	BucketToday     Bucket = "today"
	BucketTomorrow  Bucket = "tomorrow"
	BucketThisWeek  Bucket = "thisWeek"
	BucketThisMonth Bucket = "thisMonth"
)

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	loc = location(loc)
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b share a calendar date in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DaysBetween(a, b, loc) == 0
}

// DaysBetween counts calendar days from a to b in loc. Daylight saving
// transitions do not skew the result.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	loc = location(loc)
	ya, ma, da := a.In(loc).Date()
	yb, mb, db := b.In(loc).Date()
	ua := time.Date(ya, ma, da, 0, 0, 0, 0, time.UTC)
	ub := time.Date(yb, mb, db, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua) / (24 * time.Hour))
}

// EndOfWeek returns the Saturday that closes t's Sunday-first week in loc.
func EndOfWeek(t time.Time, loc *time.Location) time.Time {
	start := StartOfDay(t, loc)
	return start.AddDate(0, 0, int(time.Saturday-start.Weekday()))
}

// ToBucket classifies a due date relative to now by calendar date in loc.
// Past dates and dates beyond the current month have no bucket.
func ToBucket(due *time.Time, now time.Time, loc *time.Location) Bucket {
	if due == nil {
		return BucketNone
	}
	days := DaysBetween(now, *due, loc)
	switch {
	case days < 0:
		return BucketNone
	case days == 0:
		return BucketToday
	case days == 1:
		return BucketTomorrow
	}

	dueDay := StartOfDay(*due, loc)
	if !dueDay.After(EndOfWeek(now, loc)) {
		return BucketThisWeek
	}
	today := StartOfDay(now, loc)
	if dueDay.Year() == today.Year() && dueDay.Month() == today.Month() {
		return BucketThisMonth
	}
	return BucketNone
}

// IsOverdue reports whether an incomplete item's due instant has passed.
func IsOverdue(due *time.Time, completed bool, now time.Time) bool {
	if due == nil || completed {
		return false
	}
	return due.Before(now)
}

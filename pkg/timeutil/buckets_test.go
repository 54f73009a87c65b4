package timeutil

import (
	"testing"
	"time"
)

func ptr(t time.Time) *time.Time { return &t }

func TestToBucket(t *testing.T) {
	loc := time.UTC
	// Wednesday.
	now := time.Date(2025, 3, 12, 18, 0, 0, 0, loc)

	cases := []struct {
		name string
		due  *time.Time
		want Bucket
	}{
		{"nil", nil, BucketNone},
		{"yesterday", ptr(time.Date(2025, 3, 11, 23, 0, 0, 0, loc)), BucketNone},
		{"earlier today", ptr(time.Date(2025, 3, 12, 1, 0, 0, 0, loc)), BucketToday},
		{"tomorrow", ptr(time.Date(2025, 3, 13, 0, 0, 0, 0, loc)), BucketTomorrow},
		{"saturday", ptr(time.Date(2025, 3, 15, 12, 0, 0, 0, loc)), BucketThisWeek},
		{"next sunday", ptr(time.Date(2025, 3, 16, 9, 0, 0, 0, loc)), BucketThisMonth},
		{"month end", ptr(time.Date(2025, 3, 31, 9, 0, 0, 0, loc)), BucketThisMonth},
		{"next month", ptr(time.Date(2025, 4, 1, 9, 0, 0, 0, loc)), BucketNone},
	}
	for _, tc := range cases {
		if got := ToBucket(tc.due, now, loc); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestToBucketUsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("zoneinfo unavailable")
	}
	now := time.Date(2025, 3, 12, 22, 0, 0, 0, ny)
	// 03:00 UTC on the 13th is still the 12th in New York.
	due := time.Date(2025, 3, 13, 3, 0, 0, 0, time.UTC)
	if got := ToBucket(&due, now, ny); got != BucketToday {
		t.Fatalf("expected today, got %s", got)
	}
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	if !IsOverdue(&past, false, now) {
		t.Fatalf("expected past incomplete item to be overdue")
	}
	if IsOverdue(&past, true, now) {
		t.Fatalf("completed items are never overdue")
	}
	if IsOverdue(&future, false, now) {
		t.Fatalf("future item should not be overdue")
	}
	if IsOverdue(nil, false, now) {
		t.Fatalf("undated item should not be overdue")
	}
}

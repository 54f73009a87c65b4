package timeutil

import (
	"testing"
	"time"
)

func TestAdvanceClampsMonthEnd(t *testing.T) {
	jan31 := time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)
	got := Advance(jan31, Monthly, 1)
	if got.Month() != time.February || got.Day() != 28 {
		t.Fatalf("expected Feb 28, got %v", got)
	}
	leap := time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC)
	if got := Advance(leap, Yearly, 1); got.Month() != time.February || got.Day() != 28 {
		t.Fatalf("expected Feb 28 2025, got %v", got)
	}
	if got := Advance(jan31, Monthly, -2); got.Year() != 2024 || got.Month() != time.November || got.Day() != 30 {
		t.Fatalf("expected Nov 30 2024, got %v", got)
	}
}

func TestNextOccurrenceRespectsEnd(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	until := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	next, ok := NextOccurrence(start, Weekly, 1, &until)
	if !ok || next.Day() != 8 {
		t.Fatalf("expected Mar 8, got %v %v", next, ok)
	}
	if _, ok := NextOccurrence(next, Weekly, 1, &until); ok {
		t.Fatalf("expected the series to end")
	}
}

func TestOccurrencesDoNotDrift(t *testing.T) {
	start := time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)
	through := time.Date(2025, 4, 30, 23, 0, 0, 0, time.UTC)
	got := Occurrences(start, Monthly, 1, nil, through, 10)
	want := []int{31, 28, 31, 30}
	if len(got) != len(want) {
		t.Fatalf("expected %d occurrences, got %d", len(want), len(got))
	}
	for i, d := range want {
		if got[i].Day() != d {
			t.Fatalf("occurrence %d: expected day %d, got %v", i, d, got[i])
		}
	}
}

func TestDescribeRecurrence(t *testing.T) {
	until := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if got := DescribeRecurrence(Weekly, 2, &until, time.UTC); got != "Weekly, every 2 weeks until Mar 1, 2026" {
		t.Fatalf("unexpected description %q", got)
	}
	if got := DescribeRecurrence(Daily, 1, nil, time.UTC); got != "Daily" {
		t.Fatalf("unexpected description %q", got)
	}
	if got := DescribeRecurrence("hourly", 1, nil, time.UTC); got != "" {
		t.Fatalf("expected empty description for unknown pattern, got %q", got)
	}
}

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern(" Monthly ")
	if err != nil || p != Monthly {
		t.Fatalf("expected monthly, got %q %v", p, err)
	}
	if _, err := ParsePattern("fortnightly"); err == nil {
		t.Fatalf("expected error")
	}
}

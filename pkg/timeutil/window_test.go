package timeutil

import (
	"testing"
	"time"
)

func TestParseWindowDefault(t *testing.T) {
	d, label, err := ParseWindow("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 7*24*time.Hour {
		t.Fatalf("expected one week, got %v", d)
	}
	if label != "1w" {
		t.Fatalf("expected label 1w, got %s", label)
	}
}

func TestParseWindowComposite(t *testing.T) {
	d, label, err := ParseWindow("1w2d6h30m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := (7*24+2*24+6)*time.Hour + 30*time.Minute
	if d != want {
		t.Fatalf("expected %v, got %v", want, d)
	}
	if label != "1w2d6h30m" {
		t.Fatalf("unexpected label: %s", label)
	}
}

func TestParseWindowInvalid(t *testing.T) {
	for _, in := range []string{"noop", "3y", "0d"} {
		if _, _, err := ParseWindow(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestDueRangeWholeDays(t *testing.T) {
	loc := time.UTC
	now := time.Date(2025, 3, 12, 15, 0, 0, 0, loc)
	from, to, err := DueRange(now, "3d", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !from.Equal(time.Date(2025, 3, 12, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected from %v", from)
	}
	if to.Day() != 14 || to.Hour() != 23 {
		t.Fatalf("expected range through end of the 14th, got %v", to)
	}
}

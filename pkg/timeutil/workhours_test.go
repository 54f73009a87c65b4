package timeutil

import "testing"

func TestWorkHoursRoundTrip(t *testing.T) {
	for _, tod := range []TimeOfDay{{0, 0}, {9, 30}, {17, 45}, {23, 59}, {24, 0}} {
		if got := ToTimeObject(ToTimestamp(tod)); got != tod {
			t.Fatalf("round trip of %s gave %s", tod, got)
		}
	}
}

func TestToTimeObjectIgnoresDate(t *testing.T) {
	// 2025-03-12T09:30:00Z
	if got := ToTimeObject(1741771800); got != (TimeOfDay{Hour: 9, Minute: 30}) {
		t.Fatalf("expected 09:30, got %s", got)
	}
}

func TestClamp(t *testing.T) {
	if got := ClampStart(TimeOfDay{Hour: 24, Minute: 10}); got != (TimeOfDay{Hour: 23, Minute: 10}) {
		t.Fatalf("unexpected start clamp %s", got)
	}
	if got := ClampEnd(TimeOfDay{Hour: 0, Minute: 30}); got != (TimeOfDay{Hour: 1, Minute: 30}) {
		t.Fatalf("unexpected end clamp %s", got)
	}
	if got := ClampEnd(TimeOfDay{Hour: 26, Minute: 30}); got != (TimeOfDay{Hour: 24}) {
		t.Fatalf("unexpected end clamp %s", got)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("08:15")
	if err != nil || got != (TimeOfDay{8, 15}) {
		t.Fatalf("unexpected %s %v", got, err)
	}
	if _, err := ParseTimeOfDay("24:30"); err == nil {
		t.Fatalf("expected error for 24:30")
	}
	if got, err := ParseTimeOfDay("17"); err != nil || got.Hour != 17 {
		t.Fatalf("unexpected %s %v", got, err)
	}
}

package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultWindow is the look-ahead used by due-date filters when none is given.
	DefaultWindow = "1w"

	day  = 24 * time.Hour
	week = 7 * day
)

var (
	segmentPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	unitAliases    = map[string]time.Duration{
		"m":       time.Minute,
		"min":     time.Minute,
		"mins":    time.Minute,
		"minute":  time.Minute,
		"minutes": time.Minute,
		"h":       time.Hour,
		"hr":      time.Hour,
		"hrs":     time.Hour,
		"hour":    time.Hour,
		"hours":   time.Hour,
		"d":       day,
		"day":     day,
		"days":    day,
		"w":       week,
		"wk":      week,
		"wks":     week,
		"week":    week,
		"weeks":   week,
	}
)

// ParseWindow reads a compact duration such as "3d", "2w" or "1w2d6h" and
// returns it together with its canonical label. An empty input yields
// DefaultWindow.
func ParseWindow(input string) (time.Duration, string, error) {
	remaining := strings.ToLower(strings.TrimSpace(input))
	if remaining == "" {
		remaining = DefaultWindow
	}

	var total time.Duration
	for remaining != "" {
		m := segmentPattern.FindStringSubmatch(remaining)
		if len(m) != 3 {
			return 0, "", fmt.Errorf("invalid window segment %q", strings.TrimSpace(remaining))
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, "", fmt.Errorf("invalid window value %q: %w", m[1], err)
		}
		unit, ok := unitAliases[m[2]]
		if !ok {
			return 0, "", fmt.Errorf("unsupported window unit %q", m[2])
		}
		total += time.Duration(n) * unit
		remaining = remaining[len(m[0]):]
	}
	if total <= 0 {
		return 0, "", fmt.Errorf("window must be greater than zero")
	}
	return total, FormatWindow(total), nil
}

// FormatWindow renders d with week, day, hour and minute tokens.
func FormatWindow(d time.Duration) string {
	if d < time.Minute {
		return "0m"
	}
	units := []struct {
		label string
		size  time.Duration
	}{
		{"w", week},
		{"d", day},
		{"h", time.Hour},
		{"m", time.Minute},
	}
	var b strings.Builder
	for _, u := range units {
		if d < u.size {
			continue
		}
		n := d / u.size
		d -= n * u.size
		fmt.Fprintf(&b, "%d%s", n, u.label)
	}
	return b.String()
}

// DueRange turns a window into an inclusive [from, to] due-date range that
// starts at the beginning of today in loc. Whole-day windows run through the
// end of their last day.
func DueRange(now time.Time, window string, loc *time.Location) (time.Time, time.Time, error) {
	d, _, err := ParseWindow(window)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	from := StartOfDay(now, loc)
	if d%day == 0 {
		days := int(d / day)
		to := from.AddDate(0, 0, days).Add(-time.Nanosecond)
		return from, to, nil
	}
	return from, now.In(from.Location()).Add(d), nil
}

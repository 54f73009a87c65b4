package options

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var dateLayouts = []string{
	"2006-1-2 15:04",
	"2006-1-2",
	"1/2 15:04",
	"1/2",
}

// OnOptions
type OnOptions struct {
	OnString string
}

func AddOnArgs(cmd *cobra.Command, o *OnOptions) {
	cmd.Flags().StringVar(&o.OnString, "on", "",
		`Specify a date, example: --on="2020-2-28" or --on="2/28".`)
}

func (o *OnOptions) GetOn(now time.Time, loc *time.Location) (*time.Time, error) {
	return ParseDate(o.OnString, now, loc)
}

// ParseDate reads a date with an optional 24h time in loc. Besides the
// numeric forms it takes "today" and "tomorrow". A date without a year is
// this year, or next year when it has already passed. An empty string is no
// date.
func ParseDate(s string, now time.Time, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	word, clock, _ := strings.Cut(s, " ")
	var base time.Time
	switch strings.ToLower(word) {
	case "today":
		base = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	case "tomorrow":
		base = time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, loc)
	}
	if !base.IsZero() {
		if clock == "" {
			return &base, nil
		}
		c, err := time.Parse("15:04", clock)
		if err != nil {
			return nil, fmt.Errorf("invalid time %q, want HH:MM", clock)
		}
		t := base.Add(time.Duration(c.Hour())*time.Hour + time.Duration(c.Minute())*time.Minute)
		return &t, nil
	}

	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		if !strings.HasPrefix(layout, "2006") {
			// Let the year be the same.
			t = t.AddDate(now.Year(), 0, 0)
			// I am gonna assume if you said 1/3 on 12/5, you meant next year, not 11 months ago.
			if t.Before(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)) {
				t = t.AddDate(1, 0, 0)
			}
		}
		return &t, nil
	}
	return nil, fmt.Errorf("invalid date %q, example: 2020-2-28, 2/28 14:30 or tomorrow", s)
}

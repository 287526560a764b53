package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDuration is returned for values that are neither Go durations
// nor a sequence of <n><unit> terms.
var ErrInvalidDuration = errors.New("invalid duration")

const day = 24 * time.Hour

// durationTerm is one <n><unit> term of an extended duration.
var durationTerm = regexp.MustCompile(`(\d+)(w|d|h|m|s)`)

var durationUnits = map[string]time.Duration{
	"w": 7 * day,
	"d": day,
	"h": time.Hour,
	"m": time.Minute,
	"s": time.Second,
}

// ParseDuration accepts Go durations ("90m", "1h30m") and adds day and week
// units ("7d", "2w", "1d12h"), as used by expiry and sweep settings.
func ParseDuration(s string) (time.Duration, error) {
	input := strings.TrimSpace(s)
	if input == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidDuration)
	}
	if d, err := time.ParseDuration(input); err == nil {
		return d, nil
	}

	var total time.Duration
	consumed := 0
	for _, m := range durationTerm.FindAllStringSubmatchIndex(input, -1) {
		if m[0] != consumed {
			break
		}
		n, err := strconv.ParseInt(input[m[2]:m[3]], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		total += time.Duration(n) * durationUnits[input[m[4]:m[5]]]
		consumed = m[1]
	}
	if consumed == 0 || consumed != len(input) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	return total, nil
}

// absoluteLayouts are tried in order; the ones without a zone are UTC.
var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimeRef resolves a list filter such as --since. It accepts an
// absolute timestamp, "today" or "yesterday" (local midnight), or a positive
// duration meaning that long before now ("24h", "7d").
func ParseTimeRef(s string) (time.Time, error) {
	return parseTimeRef(s, time.Now())
}

func parseTimeRef(s string, now time.Time) (time.Time, error) {
	input := strings.TrimSpace(s)
	if input == "" {
		return time.Time{}, fmt.Errorf("time reference is empty")
	}

	switch strings.ToLower(input) {
	case "today":
		return midnight(now), nil
	case "yesterday":
		return midnight(now).AddDate(0, 0, -1), nil
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t, nil
		}
	}

	d, err := ParseDuration(input)
	if err != nil {
		return time.Time{}, fmt.Errorf("time reference %q is neither a timestamp nor a duration", s)
	}
	if d <= 0 {
		return time.Time{}, fmt.Errorf("time reference %q must be a positive duration", s)
	}
	return now.Add(-d), nil
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

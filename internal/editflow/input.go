package editflow

import (
	"fmt"
	"strings"
	"time"
)

// DateTimeLocalLayout is the value format of an HTML datetime-local input.
const DateTimeLocalLayout = "2006-01-02T15:04"

// ParseTime accepts a datetime-local value in device time or an RFC 3339
// timestamp. The empty string yields the zero time.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{DateTimeLocalLayout, "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date-time %q", s)
	}
	return t.In(time.Local), nil
}

// FormatLocal formats t for a datetime-local input.
func FormatLocal(t time.Time) string {
	return t.In(time.Local).Format(DateTimeLocalLayout)
}

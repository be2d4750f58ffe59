package parse

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted for client-authored timestamps, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

const dateLayout = "2006-01-02"

// Timestamp parses a client timestamp. Values without a zone are read as UTC.
// The result is always UTC and truncated to whole seconds, since that is the
// precision every supported database keeps.
func Timestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Second), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// Date parses a calendar date (YYYY-MM-DD). A full timestamp is accepted and
// reduced to its UTC date.
func Date(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := Timestamp(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ABOUTME: Explicit timezone policy for user-entered booking times
// ABOUTME: Wall-clock input is read in a configured location and sent as UTC

package booking

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted for wall-clock input, tried in order after RFC 3339
var wallClockLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// DisplayLayout is used when rendering booking times
const DisplayLayout = "2006-01-02 15:04"

// ParseWallClock parses user input into an instant.
// Input with an explicit offset (RFC 3339) keeps that offset; anything else
// is read as wall-clock time in loc. A nil loc means time.Local.
func ParseWallClock(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if loc == nil {
		loc = time.Local
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range wallClockLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use YYYY-MM-DD HH:MM", s)
}

// FormatWire renders t the way the backend expects it
func FormatWire(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatDisplay renders t in loc for humans
func FormatDisplay(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DisplayLayout)
}

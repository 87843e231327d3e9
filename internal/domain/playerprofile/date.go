package playerprofile

import (
	"fmt"
	"strings"
	"time"
)

const (
	DisplayDateLayout = "02-01-2006"
	isoDateLayout     = "2006-01-02"
)

// UnknownDateOfBirth is shown in read projections when no date is known.
var UnknownDateOfBirth = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// ParseDate accepts DD-MM-YYYY or YYYY-MM-DD and returns a UTC calendar date.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	for _, layout := range []string{DisplayDateLayout, isoDateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected DD-MM-YYYY", raw)
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(DisplayDateLayout)
}

// DisplayDate formats t, falling back to the 01-01-1900 sentinel.
func DisplayDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return FormatDate(UnknownDateOfBirth)
	}
	return FormatDate(*t)
}

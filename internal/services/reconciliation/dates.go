package reconciliation

import (
	"strings"
	"time"

	"reconciliation-portal/internal/models"
)

const (
	// DateInputLayout is how users type a date range bound.
	DateInputLayout = "2006-01-02"
	// TimestampLayout is ISO-8601 with milliseconds and the zone offset.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// StartOfDay parses a calendar date and returns 00:00:00.000 of it in loc.
func StartOfDay(input string, loc *time.Location) (time.Time, error) {
	d, err := parseDate(input, loc)
	if err != nil {
		return time.Time{}, err
	}
	return d, nil
}

// EndOfDay parses a calendar date and returns 23:59:59.999 of it in loc.
func EndOfDay(input string, loc *time.Location) (time.Time, error) {
	d, err := parseDate(input, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(999*time.Millisecond), loc), nil
}

func parseDate(input string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateInputLayout, strings.TrimSpace(input), loc)
	if err != nil {
		return time.Time{}, models.ValidationError("dates must look like YYYY-MM-DD, got " + input)
	}
	return d, nil
}

// FormatTimestamp serialises t as an absolute ISO-8601 timestamp.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

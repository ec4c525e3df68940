package utils

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"pilott-date-editor/internal/domain/entity"
)

// ParseDate parses a YYYY-MM-DD date, tolerating surrounding whitespace
func ParseDate(s string) (civil.Date, error) {
	return civil.ParseDate(strings.TrimSpace(s))
}

// ParseOptionalDate parses s, returning nil for blank input
func ParseOptionalDate(s string) (*civil.Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FormatDate formats a date as YYYY-MM-DD
func FormatDate(d civil.Date) string {
	return d.In(time.UTC).Format(entity.DateLayout)
}

// FormatOptionalDate formats d, or returns fallback when d is nil
func FormatOptionalDate(d *civil.Date, fallback string) string {
	if d == nil {
		return fallback
	}
	return FormatDate(*d)
}

// FormatTimestampUTC formats t in UTC as YYYY-MM-DDTHH:MM:SSZ
func FormatTimestampUTC(t time.Time) string {
	return t.UTC().Format(entity.TimestampLayout)
}

// ParseTimestampUTC parses an envelope timestamp. Both the Z form and
// explicit offsets are accepted; the result is always in UTC.
func ParseTimestampUTC(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(entity.TimestampLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// LoadDisplayLocation returns the named location, falling back to UTC
func LoadDisplayLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

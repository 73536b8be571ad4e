package core

import (
	"fmt"
	"regexp"
	"time"
)

// Layouts used for trade dates throughout the service.
const (
	// DateLayout is the wire format for dates in the API.
	DateLayout = "2006-01-02"
	// CompactDateLayout is the date token embedded in uploaded filenames.
	CompactDateLayout = "20060102"
)

var compactDatePattern = regexp.MustCompile(`(\d{8})`)

// ParseDate parses an API date string (YYYY-MM-DD).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// ExtractCompactDate finds the first 8-digit date token in a filename
// and parses it as YYYYMMDD. Uploaded workbooks are named this way.
func ExtractCompactDate(name string) (time.Time, error) {
	match := compactDatePattern.FindString(name)
	if match == "" {
		return time.Time{}, fmt.Errorf("no date token in %q", name)
	}
	t, err := time.Parse(CompactDateLayout, match)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date token %q in %q: %w", match, name, err)
	}
	return t, nil
}

// Day truncates a timestamp to midnight UTC. Trade dates carry no time part.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// YearStart returns January 1st of the given moment's year, the default
// start of every reporting window.
func YearStart(t time.Time) time.Time {
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
}

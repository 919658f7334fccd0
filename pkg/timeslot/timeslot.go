// Package timeslot implements time-of-day arithmetic for half-open booking
// intervals. Times are zero-padded "HH:MM" strings and dates are
// "YYYY-MM-DD"; both compare correctly as plain strings, which is what the
// MongoDB overlap filters rely on.
package timeslot

import (
	"fmt"
	"time"
)

const (
	TimeLayout = "15:04"
	DateLayout = "2006-01-02"

	// DefaultGranularityMin is the step used when rendering busy marks for
	// availability views.
	DefaultGranularityMin = 30
)

// Minutes converts an "HH:MM" time of day to minutes since midnight.
func Minutes(hhmm string) (int, error) {
	t, err := time.Parse(TimeLayout, hhmm)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", hhmm, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Format renders minutes since midnight as a zero-padded "HH:MM" string.
func Format(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ValidTime reports whether hhmm is a zero-padded "HH:MM" time of day.
func ValidTime(hhmm string) bool {
	if len(hhmm) != len(TimeLayout) {
		return false
	}
	_, err := time.Parse(TimeLayout, hhmm)
	return err == nil
}

// ValidDate reports whether date is a "YYYY-MM-DD" calendar day.
func ValidDate(date string) bool {
	if len(date) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, date)
	return err == nil
}

// Overlaps applies the half-open interval test: [s1,e1) and [s2,e2) overlap
// iff s1 < e2 && s2 < e1. An interval ending exactly where another starts
// does not overlap it, so back-to-back bookings are allowed.
func Overlaps(s1, e1, s2, e2 string) bool {
	return s1 < e2 && s2 < e1
}

// Points expands [start, end] into every aligned time point from start up to
// and including end, stepping by stepMin minutes. It is a presentation-layer
// derivation for busy marks; conflict decisions always use Overlaps on the
// precise interval.
func Points(start, end string, stepMin int) ([]string, error) {
	if stepMin <= 0 {
		stepMin = DefaultGranularityMin
	}

	from, err := Minutes(start)
	if err != nil {
		return nil, err
	}
	to, err := Minutes(end)
	if err != nil {
		return nil, err
	}

	var points []string
	for m := from; m <= to; m += stepMin {
		points = append(points, Format(m))
	}
	return points, nil
}

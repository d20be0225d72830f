// Package timeutil converts wall-clock timestamps into the day-of-week and
// minutes-since-midnight values used by the scheduling engine.
package timeutil

import (
	"fmt"
	"time"
)

// MinuteOfDay returns the number of whole minutes elapsed since midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// DateOf truncates a timestamp to midnight UTC, the canonical form used for
// date-keyed lookups.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a midnight-UTC date.
func ParseDate(raw string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return d, nil
}

// FormatMinute renders a minute-of-day offset as HH:MM.
func FormatMinute(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

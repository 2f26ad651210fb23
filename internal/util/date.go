package util

import (
	"fmt"
	"time"
)

// startOfDay returns the start of the day (00:00:00) in local timezone for the given time.
// This normalizes any time to the same day in local timezone for date-only comparison.
func startOfDay(t time.Time) time.Time {
	localTime := t.Local()
	return time.Date(localTime.Year(), localTime.Month(), localTime.Day(), 0, 0, 0, 0, time.Local)
}

// FormatDateTime renders a timestamp for the activity timeline in the
// day-first form used across the UI, e.g. "23/01/2026 14:05".
func FormatDateTime(t time.Time) string {
	return t.Local().Format("02/01/2006 15:04")
}

// FormatDate renders only the calendar date, e.g. "23/01/2026".
func FormatDate(t time.Time) string {
	return t.Local().Format("02/01/2006")
}

// DaysAgo returns a short Spanish label describing how long ago an event
// happened, comparing dates (not times of day): "hoy", "ayer", or
// "hace N dias".
func DaysAgo(t time.Time) string {
	days := int(startOfDay(time.Now()).Sub(startOfDay(t)).Hours() / 24)
	switch {
	case days <= 0:
		return "hoy"
	case days == 1:
		return "ayer"
	default:
		return fmt.Sprintf("hace %d dias", days)
	}
}

package utils

import (
	"time"
)

// DisplayDateFormat is the fixed human-readable pattern used by the detail view.
const DisplayDateFormat = "01/02/2006 03:04 PM"

// Layouts accepted for the adddate column of the transaction export. The
// upstream system is not consistent about including a time component.
var transactionDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006",
	"01/02/2006",
}

// ParseTransactionDate tries every known adddate layout in order.
// Returns zero time when no layout matches; callers treat zero time as
// "date unknown" and keep the row out of date-filtered views.
func ParseTransactionDate(dateStr string) time.Time {
	for _, layout := range transactionDateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t
		}
	}
	return time.Time{}
}

// FormatDisplayDate renders a transaction date for the detail view.
func FormatDisplayDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format(DisplayDateFormat)
}

// DateOnly truncates a timestamp to its calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MonthBounds returns the first and last calendar day of the month containing now.
func MonthBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, -1)
	return start, end
}

// MonthLabel renders the month of now the way the leaderboard heading shows it, e.g. "Sep-26".
func MonthLabel(now time.Time) string {
	return now.Format("Jan-06")
}

// WithinRange reports whether t falls inside [start, end] at date granularity,
// inclusive on both ends. Zero (unknown) dates are never within any range.
func WithinRange(t, start, end time.Time) bool {
	if t.IsZero() {
		return false
	}
	d := DateOnly(t)
	return !d.Before(DateOnly(start)) && !d.After(DateOnly(end))
}

// LaterDate and EarlierDate pick range endpoints when clipping a requested
// period to the dates actually present in the data.
func LaterDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func EarlierDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

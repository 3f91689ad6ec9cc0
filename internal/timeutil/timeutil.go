package timeutil

import (
	"fmt"
	"time"
)

// JST is the canonical zone for the ledger. Every calendar date in the system
// is a JST calendar date; instants are stored in UTC.
var JST = time.FixedZone("JST", 9*60*60)

// Clock supplies the current instant. Production code uses SystemClock; tests
// substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Date is a JST calendar date in "2006-01-02" form. The string form keeps
// equality and range comparisons trivial both in Go and in SQL.
type Date string

const dateLayout = "2006-01-02"

// DateOf returns the JST calendar date an instant falls on.
func DateOf(ts time.Time) Date {
	return Date(ts.In(JST).Format(dateLayout))
}

// Today returns the current JST calendar date.
func Today(c Clock) Date {
	return DateOf(c.Now())
}

// ParseDate parses a "2006-01-02" string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, JST)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// Time returns midnight JST of the date.
func (d Date) Time() time.Time {
	t, err := time.ParseInLocation(dateLayout, string(d), JST)
	if err != nil {
		// Dates are produced by DateOf/ParseDate; a malformed one is a
		// programming error.
		panic(fmt.Sprintf("malformed date %q: %v", string(d), err))
	}
	return t
}

// AddDays returns the date n days later (negative n for earlier).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Weekday returns the day of week of the date.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Before reports whether d is earlier than other. ISO date strings order
// lexicographically.
func (d Date) Before(other Date) bool { return d < other }

// WeekStart returns the Monday on or before the date.
func (d Date) WeekStart() Date {
	days := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-days)
}

// MonthStart returns the first day of the date's month.
func (d Date) MonthStart() Date {
	t := d.Time()
	return DateOf(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, JST))
}

// DayBounds returns the UTC instants [start, end) covering the JST date.
func DayBounds(d Date) (time.Time, time.Time) {
	start := d.Time()
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// TimeOfDay is a wall-clock time within a day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Combine anchors a time of day onto a JST date and returns the UTC instant.
func Combine(d Date, tod TimeOfDay) time.Time {
	day := d.Time()
	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour, tod.Minute, 0, 0, JST).UTC()
}

// FormatClock renders an instant as JST "15:04".
func FormatClock(ts time.Time) string {
	return ts.In(JST).Format("15:04")
}

// FormatDateTime renders an instant as JST "2006-01-02 15:04".
func FormatDateTime(ts time.Time) string {
	return ts.In(JST).Format("2006-01-02 15:04")
}

// FormatMinutes renders a whole-minute duration like "7h 30m" or "45m".
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

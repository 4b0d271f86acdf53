// Package planner holds the calendar arithmetic and derived-value calculators shared by the
// storage service and the planner front end. Nothing in here performs IO.
package planner

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the storage form of a calendar day.
const DateLayout = "2006-01-02"

// FormatDateForStorage renders the calendar day of t as YYYY-MM-DD (zero padded) in t's location.
func FormatDateForStorage(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseStorageDate parses a YYYY-MM-DD string into local midnight of that day.
func ParseStorageDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", s)}
	}
	return t, nil
}

// ValidDate reports whether s is a well formed storage date.
func ValidDate(s string) bool {
	_, err := ParseStorageDate(s)
	return err == nil
}

// Midnight truncates t to the start of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays moves t by n calendar days, keeping the wall clock stable across DST changes.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// WeekStart is the first day of a displayed week.
type WeekStart string

const (
	WeekStartsSunday WeekStart = "sunday"
	WeekStartsMonday WeekStart = "monday"
)

// ParseWeekStart accepts "monday" or "sunday" (case insensitive); empty means sunday.
func ParseWeekStart(s string) (WeekStart, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sunday":
		return WeekStartsSunday, nil
	case "monday":
		return WeekStartsMonday, nil
	default:
		return "", &ValidationError{Field: "week_start", Reason: fmt.Sprintf("unknown week start %q", s)}
	}
}

func (w WeekStart) offset() int {
	if w == WeekStartsMonday {
		return 1
	}
	return 0
}

// StartOfWeek returns midnight of the first day of the week containing t.
func StartOfWeek(t time.Time, ws WeekStart) time.Time {
	day := Midnight(t)
	back := (int(day.Weekday()) - ws.offset() + 7) % 7
	return AddDays(day, -back)
}

// WeekDays lists the seven days of the week containing t, starting at the configured day.
func WeekDays(t time.Time, ws WeekStart) [7]time.Time {
	var days [7]time.Time
	start := StartOfWeek(t, ws)
	for i := range days {
		days[i] = AddDays(start, i)
	}
	return days
}

// WeekRange returns the storage dates of the first and last day of t's week.
func WeekRange(t time.Time, ws WeekStart) (string, string) {
	days := WeekDays(t, ws)
	return FormatDateForStorage(days[0]), FormatDateForStorage(days[6])
}

// ShiftWeek moves the cursor by n weeks.
func ShiftWeek(t time.Time, n int) time.Time {
	return AddDays(t, 7*n)
}

// MonthCursor is the monthly view pointer. Month is zero based (0 = January).
type MonthCursor struct {
	Month int
	Year  int
}

// CursorFor returns the month cursor of t.
func CursorFor(t time.Time) MonthCursor {
	return MonthCursor{Month: int(t.Month()) - 1, Year: t.Year()}
}

// Normalize folds an out-of-range month into [0,11] carrying into the year.
func (c MonthCursor) Normalize() MonthCursor {
	c.Year += c.Month / 12
	c.Month %= 12
	if c.Month < 0 {
		c.Month += 12
		c.Year--
	}
	return c
}

// Navigate moves the cursor by delta months.
func (c MonthCursor) Navigate(delta int) MonthCursor {
	c.Month += delta
	return c.Normalize()
}

// First returns local midnight of the first day of the month.
func (c MonthCursor) First() time.Time {
	return time.Date(c.Year, time.Month(c.Month+1), 1, 0, 0, 0, 0, time.Local)
}

// DaysIn returns the number of days in the month.
func (c MonthCursor) DaysIn() int {
	return time.Date(c.Year, time.Month(c.Month+2), 0, 0, 0, 0, 0, time.Local).Day()
}

// FirstWeekday is the weekday of the first of the month.
func (c MonthCursor) FirstWeekday() time.Weekday {
	return c.First().Weekday()
}

// Contains reports whether the storage date s falls inside the month.
func (c MonthCursor) Contains(s string) bool {
	return strings.HasPrefix(s, fmt.Sprintf("%04d-%02d-", c.Year, c.Month+1))
}

// Label renders "October 2026".
func (c MonthCursor) Label() string {
	return fmt.Sprintf("%s %d", time.Month(c.Month+1), c.Year)
}

// Grid lays the month out Sunday-first: leading zeros for blank cells, then day numbers.
func (c MonthCursor) Grid() []int {
	cells := make([]int, int(c.FirstWeekday()), int(c.FirstWeekday())+c.DaysIn())
	for d := 1; d <= c.DaysIn(); d++ {
		cells = append(cells, d)
	}
	return cells
}

// Today is the storage date of now.
func Today(now time.Time) string {
	return FormatDateForStorage(now)
}

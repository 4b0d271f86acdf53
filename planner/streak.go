package planner

import "time"

// Streak counts the trailing checked days of a Monday..Sunday row, scanning back from Sunday
// and stopping at the first unchecked day.
//
// The row only covers the displayed week, so the value starts over every Monday.
func Streak(days [7]bool) int {
	streak := 0
	for i := len(days) - 1; i >= 0; i-- {
		if !days[i] {
			break
		}
		streak++
	}
	return streak
}

// HabitWeekStart returns the Monday of the week containing t. Habit rows are always
// Monday-first regardless of the planner week-start setting.
func HabitWeekStart(t time.Time) time.Time {
	return StartOfWeek(t, WeekStartsMonday)
}

// WeekRow marks which days of the Monday-first week containing now have a check.
// Dates that fail to parse or fall outside that week are ignored.
func WeekRow(checkDates []string, now time.Time) [7]bool {
	var row [7]bool
	start := HabitWeekStart(now)
	for _, s := range checkDates {
		d, err := ParseStorageDate(s)
		if err != nil {
			continue
		}
		if idx := DayIndex(start, d); idx >= 0 && idx < 7 {
			row[idx] = true
		}
	}
	return row
}

// DayIndex is the number of calendar days from start to d.
func DayIndex(start, d time.Time) int {
	a := time.Date(start.Year(), start.Month(), start.Day(), 12, 0, 0, 0, time.UTC)
	b := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

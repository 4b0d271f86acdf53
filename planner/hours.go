package planner

import (
	"fmt"
	"strings"
)

// The daily view shows time blocks from 6 AM to 10 PM inclusive.
const (
	DayStartHour = 6
	DayEndHour   = 22
)

// TimeFormat selects 12 or 24 hour labels.
type TimeFormat string

const (
	TwelveHour     TimeFormat = "12"
	TwentyFourHour TimeFormat = "24"
)

// ParseTimeFormat accepts "12", "24", "12h", "24h"; empty means 12.
func ParseTimeFormat(s string) (TimeFormat, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "h") {
	case "", "12":
		return TwelveHour, nil
	case "24":
		return TwentyFourHour, nil
	default:
		return "", &ValidationError{Field: "time_format", Reason: fmt.Sprintf("unknown time format %q", s)}
	}
}

// ValidateHour rejects hours outside 0..23.
func ValidateHour(hour int) error {
	if hour < 0 || hour > 23 {
		return &ValidationError{Field: "hour", Reason: "hour must be between 0 and 23"}
	}
	return nil
}

// FormatHour renders an hour label: "12 AM", "1 PM" or "13:00".
func FormatHour(hour int, tf TimeFormat) string {
	if tf == TwentyFourHour {
		return fmt.Sprintf("%d:00", hour)
	}
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d %s", display, period)
}

// DayHours lists the hours of the daily time blocks.
func DayHours() []int {
	hours := make([]int, 0, DayEndHour-DayStartHour+1)
	for h := DayStartHour; h <= DayEndHour; h++ {
		hours = append(hours, h)
	}
	return hours
}

package planner

import (
	"testing"
	"time"
)

func TestStreakIsTrailingRun(t *testing.T) {
	for mask := 0; mask < 1<<7; mask++ {
		var row [7]bool
		for i := 0; i < 7; i++ {
			row[i] = mask&(1<<i) != 0
		}
		want := 0
		for i := 6; i >= 0 && row[i]; i-- {
			want++
		}
		if got := Streak(row); got != want {
			t.Fatalf("Streak(%v) = %d, want %d", row, got, want)
		}
	}
}

func TestStreakScenarios(t *testing.T) {
	cases := []struct {
		name string
		row  [7]bool
		want int
	}{
		{"gap in the middle", [7]bool{true, true, true, false, true, true, true}, 3},
		{"all checked", [7]bool{true, true, true, true, true, true, true}, 7},
		{"none checked", [7]bool{}, 0},
		{"sunday unchecked", [7]bool{true, true, true, true, true, true, false}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Streak(tc.row); got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestWeekRowKeepsCurrentWeekOnly(t *testing.T) {
	// Wednesday 2026-10-14; its Monday is 2026-10-12
	now := time.Date(2026, 10, 14, 15, 0, 0, 0, time.Local)
	row := WeekRow([]string{"2026-10-12", "2026-10-18", "2026-10-11", "2026-10-19", "bogus"}, now)
	want := [7]bool{true, false, false, false, false, false, true}
	if row != want {
		t.Fatalf("WeekRow = %v, want %v", row, want)
	}
	if Streak(row) != 1 {
		t.Fatalf("streak = %d, want 1", Streak(row))
	}
}

func TestProgress(t *testing.T) {
	cases := []struct {
		done, total, want int
	}{
		{0, 0, 0},
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 2, 50},
		{5, 3, 100},
	}
	for _, tc := range cases {
		if got := Progress(tc.done, tc.total); got != tc.want {
			t.Errorf("Progress(%d,%d) = %d, want %d", tc.done, tc.total, got, tc.want)
		}
	}
	for total := 0; total <= 20; total++ {
		for done := 0; done <= total; done++ {
			if p := Progress(done, total); p < 0 || p > 100 {
				t.Fatalf("Progress(%d,%d) = %d out of range", done, total, p)
			}
		}
	}
	if got := ProgressOf(nil); got != 0 {
		t.Fatalf("ProgressOf(nil) = %d", got)
	}
	if got := ProgressOf([]bool{true, false, true, true}); got != 75 {
		t.Fatalf("ProgressOf = %d, want 75", got)
	}
}

func TestStorageDateRoundTrip(t *testing.T) {
	start := time.Date(2023, 12, 25, 0, 0, 0, 0, time.Local)
	for i := 0; i < 800; i++ {
		d := AddDays(start, i).Add(13*time.Hour + 7*time.Minute)
		s := FormatDateForStorage(d)
		if len(s) != 10 {
			t.Fatalf("%q is not zero padded", s)
		}
		back, err := ParseStorageDate(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if back.Year() != d.Year() || back.Month() != d.Month() || back.Day() != d.Day() {
			t.Fatalf("round trip %v -> %q -> %v", d, s, back)
		}
	}
	if FormatDateForStorage(time.Date(2026, 3, 4, 0, 0, 0, 0, time.Local)) != "2026-03-04" {
		t.Fatal("expected zero padded month and day")
	}
	if _, err := ParseStorageDate("2026-13-01"); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMonthCursorNavigate(t *testing.T) {
	cases := []struct {
		in    MonthCursor
		delta int
		want  MonthCursor
	}{
		{MonthCursor{0, 2026}, -1, MonthCursor{11, 2025}},
		{MonthCursor{11, 2026}, 1, MonthCursor{0, 2027}},
		{MonthCursor{5, 2026}, 1, MonthCursor{6, 2026}},
		{MonthCursor{5, 2026}, -18, MonthCursor{11, 2024}},
		{MonthCursor{5, 2026}, 30, MonthCursor{11, 2028}},
	}
	for _, tc := range cases {
		if got := tc.in.Navigate(tc.delta); got != tc.want {
			t.Errorf("%+v.Navigate(%d) = %+v, want %+v", tc.in, tc.delta, got, tc.want)
		}
	}
	if got := (MonthCursor{-1, 2026}).Normalize(); got != (MonthCursor{11, 2025}) {
		t.Errorf("normalize -1 = %+v", got)
	}
	if got := (MonthCursor{12, 2026}).Normalize(); got != (MonthCursor{0, 2027}) {
		t.Errorf("normalize 12 = %+v", got)
	}
}

func TestMonthCursorGrid(t *testing.T) {
	// February 2026 starts on a Sunday and has 28 days
	feb := MonthCursor{Month: 1, Year: 2026}
	if feb.DaysIn() != 28 {
		t.Fatalf("DaysIn = %d", feb.DaysIn())
	}
	grid := feb.Grid()
	if len(grid) != 28 || grid[0] != 1 {
		t.Fatalf("unexpected grid %v", grid)
	}
	// October 2026 starts on a Thursday
	oct := MonthCursor{Month: 9, Year: 2026}
	grid = oct.Grid()
	if grid[0] != 0 || grid[3] != 0 || grid[4] != 1 || grid[len(grid)-1] != 31 {
		t.Fatalf("unexpected grid %v", grid)
	}
	if !oct.Contains("2026-10-31") || oct.Contains("2026-11-01") {
		t.Fatal("Contains disagrees with month bounds")
	}
	if oct.Label() != "October 2026" {
		t.Fatalf("label %q", oct.Label())
	}
}

func TestStartOfWeek(t *testing.T) {
	sunday := time.Date(2026, 10, 18, 20, 0, 0, 0, time.Local)
	if got := FormatDateForStorage(StartOfWeek(sunday, WeekStartsSunday)); got != "2026-10-18" {
		t.Errorf("sunday start = %s", got)
	}
	if got := FormatDateForStorage(StartOfWeek(sunday, WeekStartsMonday)); got != "2026-10-12" {
		t.Errorf("monday start = %s", got)
	}
	wed := time.Date(2026, 10, 14, 8, 0, 0, 0, time.Local)
	from, to := WeekRange(wed, WeekStartsMonday)
	if from != "2026-10-12" || to != "2026-10-18" {
		t.Errorf("range = %s..%s", from, to)
	}
	if got := FormatDateForStorage(ShiftWeek(wed, -1)); got != "2026-10-07" {
		t.Errorf("shift = %s", got)
	}
}

func TestFormatHour(t *testing.T) {
	cases := []struct {
		hour int
		tf   TimeFormat
		want string
	}{
		{0, TwelveHour, "12 AM"},
		{6, TwelveHour, "6 AM"},
		{12, TwelveHour, "12 PM"},
		{22, TwelveHour, "10 PM"},
		{22, TwentyFourHour, "22:00"},
	}
	for _, tc := range cases {
		if got := FormatHour(tc.hour, tc.tf); got != tc.want {
			t.Errorf("FormatHour(%d,%s) = %q, want %q", tc.hour, tc.tf, got, tc.want)
		}
	}
	if err := ValidateHour(24); !IsValidation(err) {
		t.Fatal("24 must be rejected")
	}
	if err := ValidateHour(-1); err == nil {
		t.Fatal("-1 must be rejected")
	}
	if len(DayHours()) != 17 {
		t.Fatalf("expected 17 time blocks, got %d", len(DayHours()))
	}
}

func TestParsers(t *testing.T) {
	if th, err := ParseTheme("Dark"); err != nil || th != ThemeDark {
		t.Fatalf("ParseTheme = %v, %v", th, err)
	}
	if _, err := ParseTheme("neon"); err == nil {
		t.Fatal("unknown theme accepted")
	}
	if PaletteFor(ThemeDark).Background != "#121212" {
		t.Fatal("dark palette background")
	}
	if ws, _ := ParseWeekStart(""); ws != WeekStartsSunday {
		t.Fatal("default week start must be sunday")
	}
	if tf, _ := ParseTimeFormat("24h"); tf != TwentyFourHour {
		t.Fatal("24h not parsed")
	}
	if c, err := NormalizeCategory(" Health "); err != nil || c != CategoryHealth {
		t.Fatalf("NormalizeCategory = %q, %v", c, err)
	}
	if _, err := NormalizeCategory("hobby"); err == nil {
		t.Fatal("unknown category accepted")
	}
}

func TestGoalTabs(t *testing.T) {
	if !TabActive.Shows(CategoryHealth, false) || TabActive.Shows(CategoryHealth, true) {
		t.Fatal("active tab")
	}
	if !TabCompleted.Shows(CategoryHealth, true) {
		t.Fatal("completed tab")
	}
	if !TabProjects.Shows(CategoryProfessional, true) || TabProjects.Shows(CategoryPersonal, false) {
		t.Fatal("projects tab")
	}
}

func TestQuoteForIsStablePerDay(t *testing.T) {
	morning := time.Date(2026, 10, 18, 7, 0, 0, 0, time.Local)
	evening := time.Date(2026, 10, 18, 23, 0, 0, 0, time.Local)
	if QuoteFor(morning) != QuoteFor(evening) {
		t.Fatal("quote changed within a day")
	}
}

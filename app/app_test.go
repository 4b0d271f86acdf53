package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cppla/planner/localstore"
	"github.com/cppla/planner/models"
	"github.com/cppla/planner/planner"
)

// Sunday 10 March 2024; the habit week is Monday 4 to Sunday 10.
var sunday = time.Date(2024, time.March, 10, 9, 30, 0, 0, time.Local)

func openStore(t *testing.T) *localstore.Store {
	t.Helper()
	st, err := localstore.Open(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func openSession(t *testing.T) (*Session, *fakeBackend, *localstore.Store) {
	t.Helper()
	fb := newFakeBackend(&models.User{ID: "user-1", Email: "ann@example.com"})
	st := openStore(t)
	s, err := Open(context.Background(), fb, st, nil, WithClock(func() time.Time { return sunday }))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s, fb, st
}

func TestOpenWithoutUser(t *testing.T) {
	fb := newFakeBackend(nil)
	if _, err := Open(context.Background(), fb, openStore(t), nil); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("err = %v", err)
	}
}

func TestViewsBuildOnce(t *testing.T) {
	s, fb, _ := openSession(t)
	ctx := context.Background()
	if s.Active() != ViewDaily {
		t.Fatalf("default view = %s", s.Active())
	}

	readies := map[View]int{}
	s.OnReady(func(ctx context.Context, v View) error {
		readies[v]++
		return nil
	})
	before := fb.count("query " + models.TableGoals)
	for i := 0; i < 3; i++ {
		if _, err := s.Goals(ctx); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Daily(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if readies[ViewGoals] != 1 || readies[ViewDaily] != 0 {
		t.Fatalf("ready signals = %v", readies)
	}
	if got := fb.count("query "+models.TableGoals) - before; got != 1 {
		t.Fatalf("goals loaded %d times", got)
	}
	if s.Active() != ViewDaily {
		t.Fatalf("active = %s", s.Active())
	}
	if err := s.Show(ctx, ViewNone); err == nil {
		t.Fatal("showing the uninitialized state succeeded")
	}
}

func TestParseView(t *testing.T) {
	for _, name := range []string{"daily", "Weekly", " monthly ", "habits", "goals"} {
		if _, err := ParseView(name); err != nil {
			t.Errorf("ParseView(%q): %v", name, err)
		}
	}
	if _, err := ParseView("uninitialized"); err == nil {
		t.Error("uninitialized accepted")
	}
}

func TestTasksResaveWholeList(t *testing.T) {
	s, fb, _ := openSession(t)
	ctx := context.Background()
	d, _ := s.Daily(ctx)

	for _, text := range []string{"write report", "call mom", "gym"} {
		if err := d.AddTask(ctx, text); err != nil {
			t.Fatal(err)
		}
	}
	if err := d.ToggleTask(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if err := d.DeleteTask(ctx, 0); err != nil {
		t.Fatal(err)
	}

	rows := fb.table(models.TableTasks)
	if len(rows) != 1 {
		t.Fatalf("tasks stored in %d records", len(rows))
	}
	if rows[0]["date"] != "2024-03-10" {
		t.Fatalf("list date = %v", rows[0]["date"])
	}
	stored := rows[0]["tasks"].([]interface{})
	if len(stored) != 2 {
		t.Fatalf("stored tasks = %v", stored)
	}
	first := stored[0].(map[string]interface{})
	if first["text"] != "call mom" || first["completed"] != true {
		t.Fatalf("first task = %v", first)
	}

	if err := d.AddTask(ctx, "   "); err == nil {
		t.Fatal("blank task accepted")
	}
	if err := d.ToggleTask(ctx, 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("toggle out of range: %v", err)
	}

	// a fresh session sees the same list
	s2, err := Open(ctx, fb, openStore(t), nil, WithClock(func() time.Time { return sunday }))
	if err != nil {
		t.Fatal(err)
	}
	d2, _ := s2.Daily(ctx)
	if got := d2.Tasks(); len(got) != 2 || got[1].Text != "gym" {
		t.Fatalf("reloaded tasks = %+v", got)
	}
}

func TestFailedMirrorKeepsLocalState(t *testing.T) {
	s, fb, _ := openSession(t)
	ctx := context.Background()
	d, _ := s.Daily(ctx)
	fb.fail["upsert "+models.TableTasks] = true

	err := d.AddTask(ctx, "offline task")
	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v", err)
	}
	if got := d.Tasks(); len(got) != 1 || got[0].Text != "offline task" {
		t.Fatalf("local tasks = %+v", got)
	}
}

func TestEventValidationSkipsBackend(t *testing.T) {
	s, fb, _ := openSession(t)
	ctx := context.Background()
	d, _ := s.Daily(ctx)

	if _, err := d.AddEvent(ctx, "Late call", 24); !planner.IsValidation(err) {
		t.Fatalf("hour 24: %v", err)
	}
	if _, err := d.AddEvent(ctx, "", 9); !planner.IsValidation(err) {
		t.Fatalf("empty title: %v", err)
	}
	if n := fb.count("upsert " + models.TableEvents); n != 0 {
		t.Fatalf("backend called %d times", n)
	}

	ev, err := d.AddEvent(ctx, "Standup", 9)
	if err != nil {
		t.Fatal(err)
	}
	var nine HourSlot
	for _, slot := range d.Hours() {
		if slot.Hour == 9 {
			nine = slot
		}
	}
	if len(nine.Events) != 1 || nine.Label != "9 AM" {
		t.Fatalf("9 o'clock slot = %+v", nine)
	}
	if err := d.DeleteEvent(ctx, ev.ID); err != nil {
		t.Fatal(err)
	}
	if err := d.DeleteEvent(ctx, ev.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestDailyNoteUpdatesInPlace(t *testing.T) {
	s, fb, _ := openSession(t)
	ctx := context.Background()
	d, _ := s.Daily(ctx)
	if err := d.SaveNote(ctx, "first"); err != nil {
		t.Fatal(err)
	}
	if err := d.SaveNote(ctx, "second"); err != nil {
		t.Fatal(err)
	}
	rows := fb.table(models.TableNotes)
	if len(rows) != 1 || rows[0]["content"] != "second" || rows[0]["type"] != "daily" {
		t.Fatalf("notes = %v", rows)
	}
}

func TestSelectDateReloads(t *testing.T) {
	s, _, _ := openSession(t)
	ctx := context.Background()
	d, _ := s.Daily(ctx)
	if err := d.AddTask(ctx, "sunday chores"); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectDate(ctx, "2024-03-11"); err != nil {
		t.Fatal(err)
	}
	if d.Date() != "2024-03-11" || len(d.Tasks()) != 0 {
		t.Fatalf("after select: %s %+v", d.Date(), d.Tasks())
	}
	if err := s.SelectDate(ctx, "11/03/2024"); err == nil {
		t.Fatal("bad date accepted")
	}
}

func TestWeeklyFollowsSettingAndNavigates(t *testing.T) {
	s, _, _ := openSession(t)
	ctx := context.Background()
	w, err := s.Weekly(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if start, end := w.Range(); start != "2024-03-10" || end != "2024-03-16" {
		t.Fatalf("sunday week = %s..%s", start, end)
	}
	if _, err := w.AddEvent(ctx, "2024-03-12", "Dentist", 15); err != nil {
		t.Fatal(err)
	}
	if err := w.SaveNote(ctx, "ship it"); err != nil {
		t.Fatal(err)
	}

	if err := s.SaveSettings(ctx, "", "monday", ""); err != nil {
		t.Fatal(err)
	}
	if start, end := w.Range(); start != "2024-03-04" || end != "2024-03-10" {
		t.Fatalf("monday week = %s..%s", start, end)
	}
	if len(w.EventsOn("2024-03-12")) != 0 || w.Note().Content != "" {
		t.Fatal("next week's entries shown in this week")
	}

	if err := w.Navigate(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if start, _ := w.Range(); start != "2024-03-11" {
		t.Fatalf("navigated start = %s", start)
	}
	if got := w.EventsOn("2024-03-12"); len(got) != 1 || got[0].Title != "Dentist" {
		t.Fatalf("events = %+v", got)
	}
	if got := planner.FormatDateForStorage(s.Date()); got != "2024-03-17" {
		t.Fatalf("cursor = %s", got)
	}
}

func TestMonthlyNavigateCarriesYear(t *testing.T) {
	fb := newFakeBackend(&models.User{ID: "user-1"})
	jan := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.Local)
	s, err := Open(context.Background(), fb, openStore(t), nil, WithClock(func() time.Time { return jan }))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	d, _ := s.Daily(ctx)
	d.AddEvent(ctx, "a", 9)
	d.AddEvent(ctx, "b", 10)

	m, err := s.Monthly(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if m.Count("2024-01-15") != 2 {
		t.Fatalf("count = %d", m.Count("2024-01-15"))
	}
	cells := m.Cells()
	// 1 January 2024 is a Monday: one leading blank
	if cells[0].Day != 0 || cells[1].Day != 1 || len(cells) != 32 {
		t.Fatalf("grid starts %+v, %d cells", cells[:2], len(cells))
	}
	if c := cells[15]; !c.Today || c.Events != 2 {
		t.Fatalf("15th = %+v", c)
	}

	if err := m.Navigate(ctx, -1); err != nil {
		t.Fatal(err)
	}
	if c := m.Cursor(); c.Month != 11 || c.Year != 2023 {
		t.Fatalf("cursor = %+v", c)
	}
	if err := m.Navigate(ctx, 13); err != nil {
		t.Fatal(err)
	}
	if c := m.Cursor(); c.Month != 0 || c.Year != 2025 {
		t.Fatalf("cursor = %+v", c)
	}
	if m.Count("2024-01-15") != 0 {
		t.Fatal("events of another month counted")
	}
}

func TestHabitToggleStreak(t *testing.T) {
	s, fb, _ := openSession(t)
	ctx := context.Background()
	h, err := s.Habits(ctx)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := h.Add(ctx, "Read")
	if err != nil {
		t.Fatal(err)
	}

	// Mon Tue Wed . Fri Sat Sun
	for _, day := range []int{0, 1, 2, 4, 5, 6} {
		if _, err := h.Toggle(ctx, hb.ID, day); err != nil {
			t.Fatal(err)
		}
	}
	if got := h.Rows()[0].Habit.Streak; got != 3 {
		t.Fatalf("streak = %d", got)
	}
	if n := len(fb.table(models.TableHabitChecks)); n != 6 {
		t.Fatalf("checks stored = %d", n)
	}
	stored := fb.table(models.TableHabits)[0]
	if stored["streak"] != float64(3) || stored["name"] != "Read" {
		t.Fatalf("stored habit = %v", stored)
	}

	streak, err := h.Toggle(ctx, hb.ID, 6)
	if err != nil || streak != 0 {
		t.Fatalf("unchecking sunday: %d, %v", streak, err)
	}
	if n := len(fb.table(models.TableHabitChecks)); n != 5 {
		t.Fatalf("checks after uncheck = %d", n)
	}
	for _, c := range fb.table(models.TableHabitChecks) {
		if c["date"] == "2024-03-10" {
			t.Fatal("sunday check kept")
		}
	}

	if _, err := h.Toggle(ctx, hb.ID, 7); !planner.IsValidation(err) {
		t.Fatalf("day 7: %v", err)
	}

	// checks survive a reload, and only the current week counts
	h2 := &HabitsView{s: s}
	if err := h2.Load(ctx); err != nil {
		t.Fatal(err)
	}
	want := [7]bool{true, true, true, false, true, true, false}
	if got := h2.Rows()[0].Checks; got != want {
		t.Fatalf("reloaded row = %v", got)
	}

	if err := h.Rename(ctx, hb.ID, "Read 20 pages"); err != nil {
		t.Fatal(err)
	}
	if err := h.Delete(ctx, hb.ID); err != nil {
		t.Fatal(err)
	}
	if len(fb.table(models.TableHabits)) != 0 || len(fb.table(models.TableHabitChecks)) != 0 {
		t.Fatal("habit or checks left behind")
	}
}

func TestGoalProgressAndCascade(t *testing.T) {
	s, fb, _ := openSession(t)
	ctx := context.Background()
	g, err := s.Goals(ctx)
	if err != nil {
		t.Fatal(err)
	}

	run, err := g.Add(ctx, NewGoal{Title: "Run a marathon", Category: "Health", Milestones: []string{"5k", "", "10k", "half"}})
	if err != nil {
		t.Fatal(err)
	}
	save, err := g.Add(ctx, NewGoal{Title: "Save", Category: "financial", Milestones: []string{"budget"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(run.Milestones) != 3 || run.Goal.Category != "health" || run.Goal.Progress != 0 {
		t.Fatalf("added goal = %+v", run)
	}

	progress, err := g.ToggleMilestone(ctx, run.Goal.ID, run.Milestones[0].ID)
	if err != nil || progress != 33 {
		t.Fatalf("progress = %d, %v", progress, err)
	}
	for _, row := range fb.table(models.TableGoals) {
		if row["id"] == run.Goal.ID && row["progress"] != float64(33) {
			t.Fatalf("stored progress = %v", row["progress"])
		}
	}
	progress, _ = g.ToggleMilestone(ctx, run.Goal.ID, run.Milestones[0].ID)
	if progress != 0 {
		t.Fatalf("progress after untoggle = %d", progress)
	}

	if err := g.SetCompleted(ctx, save.Goal.ID, true); err != nil {
		t.Fatal(err)
	}
	active, _ := g.List(planner.TabActive, "")
	done, _ := g.List(planner.TabCompleted, "")
	if len(active) != 1 || len(done) != 1 || done[0].Goal.ID != save.Goal.ID {
		t.Fatalf("active %d completed %d", len(active), len(done))
	}
	if _, err := g.List(planner.TabAll, "hobby"); err == nil {
		t.Fatal("unknown category accepted")
	}

	if err := g.Delete(ctx, run.Goal.ID); err != nil {
		t.Fatal(err)
	}
	ms := fb.table(models.TableMilestones)
	if len(ms) != 1 || ms[0]["goal_id"] != save.Goal.ID {
		t.Fatalf("milestones left = %v", ms)
	}
	if _, err := g.Get(run.Goal.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted goal still indexed: %v", err)
	}
}

func TestGoalCascadeIsNotAtomic(t *testing.T) {
	s, fb, _ := openSession(t)
	ctx := context.Background()
	g, _ := s.Goals(ctx)
	item, err := g.Add(ctx, NewGoal{Title: "Learn Go", Category: "professional", Milestones: []string{"tour", "book"}})
	if err != nil {
		t.Fatal(err)
	}
	fb.fail["delete "+models.TableMilestones] = true
	if err := g.Delete(ctx, item.Goal.ID); err == nil {
		t.Fatal("milestone failures not reported")
	}
	if len(fb.table(models.TableGoals)) != 0 || len(fb.table(models.TableMilestones)) != 2 {
		t.Fatal("expected the goal gone and its milestones orphaned")
	}
}

func TestGoalValidation(t *testing.T) {
	s, fb, _ := openSession(t)
	ctx := context.Background()
	g, _ := s.Goals(ctx)
	for _, in := range []NewGoal{
		{Title: "", Category: "personal"},
		{Title: "x", Category: "hobby"},
		{Title: "x", Category: "personal", Deadline: "next week"},
	} {
		if _, err := g.Add(ctx, in); !planner.IsValidation(err) {
			t.Errorf("%+v: %v", in, err)
		}
	}
	if fb.count("upsert "+models.TableGoals) != 0 {
		t.Fatal("invalid goal reached the backend")
	}
}

func TestSaveSettingsAppliesDarkTheme(t *testing.T) {
	s, _, st := openSession(t)
	ctx := context.Background()
	if s.Palette().Theme != planner.ThemeLight {
		t.Fatalf("initial theme = %s", s.Palette().Theme)
	}
	if err := s.SaveSettings(ctx, "dark", "", "24"); err != nil {
		t.Fatal(err)
	}
	if s.Palette() != planner.PaletteFor(planner.ThemeDark) {
		t.Fatalf("palette = %+v", s.Palette())
	}
	if s.FormatHour(15) != "15:00" {
		t.Fatalf("hour label = %s", s.FormatHour(15))
	}
	if p := st.LoadPreferences(); p.Theme != planner.ThemeDark || p.TimeFormat != planner.TwentyFourHour {
		t.Fatalf("stored = %+v", p)
	}

	if err := s.SaveSettings(ctx, "neon", "", ""); !planner.IsValidation(err) {
		t.Fatalf("neon: %v", err)
	}
	if s.Preferences().Theme != planner.ThemeDark {
		t.Fatal("rejected settings were applied")
	}
}

func TestHabitStreakResetsOnNewWeek(t *testing.T) {
	fb := newFakeBackend(&models.User{ID: "user-1", Email: "ann@example.com"})
	now := sunday
	s, err := Open(context.Background(), fb, openStore(t), nil, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	h, _ := s.Habits(ctx)
	hb, _ := h.Add(ctx, "Stretch")
	for _, day := range []int{4, 5, 6} {
		if _, err := h.Toggle(ctx, hb.ID, day); err != nil {
			t.Fatal(err)
		}
	}
	if got := h.Rows()[0].Habit.Streak; got != 3 {
		t.Fatalf("streak = %d", got)
	}

	// Monday 11 March starts an empty week
	now = sunday.AddDate(0, 0, 1)
	h2 := &HabitsView{s: s}
	if err := h2.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if got := h2.Rows()[0]; got.Habit.Streak != 0 || got.Checks != [7]bool{} {
		t.Fatalf("next week row = %+v", got)
	}
	if stored := fb.table(models.TableHabits)[0]; stored["streak"] != float64(0) {
		t.Fatalf("stored streak = %v", stored["streak"])
	}

	// an unchanged streak is not written again
	writes := fb.count("upsert habits")
	h3 := &HabitsView{s: s}
	if err := h3.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if fb.count("upsert habits") != writes {
		t.Fatal("unchanged streak rewritten")
	}
}

func TestHabitDeleteRemovesPastChecks(t *testing.T) {
	s, fb, _ := openSession(t)
	ctx := context.Background()
	h, _ := s.Habits(ctx)
	keep, _ := h.Add(ctx, "Walk")
	drop, _ := h.Add(ctx, "Read")
	if _, err := h.Toggle(ctx, drop.ID, 6); err != nil {
		t.Fatal(err)
	}
	for _, c := range []models.HabitCheck{
		{Owned: models.Owned{UserID: "user-1"}, HabitID: drop.ID, Date: "2024-02-12"},
		{Owned: models.Owned{UserID: "user-1"}, HabitID: keep.ID, Date: "2024-02-12"},
	} {
		if res := fb.Upsert(ctx, models.TableHabitChecks, c); !res.Success {
			t.Fatal(res.Error)
		}
	}

	if err := h.Delete(ctx, drop.ID); err != nil {
		t.Fatal(err)
	}
	left := fb.table(models.TableHabitChecks)
	if len(left) != 1 || left[0]["habit_id"] != keep.ID {
		t.Fatalf("checks left = %v", left)
	}
}

func TestSignUpValidatesFirst(t *testing.T) {
	fb := newFakeBackend(nil)
	st := openStore(t)
	ctx := context.Background()

	cases := [][4]string{
		{"", "secret123", "secret123", "no email"},
		{"ann@", "secret123", "secret123", "bad email"},
		{"ann@example.com", "short", "short", "short password"},
		{"ann@example.com", "secret123", "secret124", "mismatch"},
		{"ann@example.com", strings.Repeat("a", 73), strings.Repeat("a", 73), "password over 72 bytes"},
	}
	for _, c := range cases {
		if _, err := SignUp(ctx, fb, st, c[0], c[1], c[2], "Ann"); !planner.IsValidation(err) {
			t.Errorf("%s: %v", c[3], err)
		}
	}
	if len(fb.calls) != 0 {
		t.Fatalf("backend called: %v", fb.calls)
	}

	u, err := SignUp(ctx, fb, st, " Ann@Example.com ", "secret123", "secret123", "Ann")
	if err != nil || u.Email != "ann@example.com" {
		t.Fatalf("sign up: %+v, %v", u, err)
	}
	if st.SessionToken() != "token-ann@example.com" {
		t.Fatalf("token = %q", st.SessionToken())
	}
}

func TestSignInAndOut(t *testing.T) {
	fb := newFakeBackend(&models.User{ID: "user-1", Email: "ann@example.com"})
	st := openStore(t)
	ctx := context.Background()

	fb.fail["login"] = true
	if _, err := SignIn(ctx, fb, st, "ann@example.com", "wrong"); err == nil {
		t.Fatal("failed login returned no error")
	}
	fb.fail["login"] = false
	if _, err := SignIn(ctx, fb, st, "ann@example.com", "secret123"); err != nil {
		t.Fatal(err)
	}
	s, err := Open(ctx, fb, st, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SignOut(ctx); err != nil {
		t.Fatal(err)
	}
	if st.SessionToken() != "" || fb.token != "" {
		t.Fatal("token survived sign out")
	}
}

func TestStatsAndExportPassThrough(t *testing.T) {
	s, fb, _ := openSession(t)
	ctx := context.Background()
	if err := s.SaveSettings(ctx, "nature", "", "24"); err != nil {
		t.Fatal(err)
	}
	page, err := s.Export(ctx)
	if err != nil || string(page) != "<html>2024-03-10 24 nature</html>" {
		t.Fatalf("export = %q, %v", page, err)
	}
	stats, err := s.Stats(ctx)
	if err != nil || stats["date"] != "2024-03-10" {
		t.Fatalf("stats = %v, %v", stats, err)
	}
	fb.fail["export"] = true
	if _, err := s.Export(ctx); err == nil {
		t.Fatal("failed export returned no error")
	}
}

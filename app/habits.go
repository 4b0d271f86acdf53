package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cppla/planner/models"
	"github.com/cppla/planner/planner"
)

// HabitRow is a habit with its Monday-first checks of the current week.
type HabitRow struct {
	Habit  models.Habit
	Checks [7]bool

	checkIDs [7]string
}

// HabitsView tracks habits against the current calendar week.
type HabitsView struct {
	s     *Session
	week  time.Time
	order []string
	rows  map[string]*HabitRow
}

// Load fetches habits and the checks of the current week. A stored streak that no longer
// matches the week's checks is recomputed and written back.
func (h *HabitsView) Load(ctx context.Context) error {
	h.week = planner.HabitWeekStart(h.s.now())
	h.order = nil
	h.rows = make(map[string]*HabitRow)

	habits, err := queryAll[models.Habit](ctx, h.s, models.TableHabits)
	if err != nil {
		return err
	}
	for _, hb := range habits {
		h.rows[hb.ID] = &HabitRow{Habit: hb}
		h.order = append(h.order, hb.ID)
	}

	checks, err := queryAll[models.HabitCheck](ctx, h.s, models.TableHabitChecks)
	if err != nil {
		return err
	}
	for _, c := range checks {
		row, ok := h.rows[c.HabitID]
		if !ok {
			continue
		}
		d, err := planner.ParseStorageDate(c.Date)
		if err != nil {
			continue
		}
		if i := planner.DayIndex(h.week, d); i >= 0 && i < 7 {
			row.Checks[i] = true
			row.checkIDs[i] = c.ID
		}
	}

	for _, id := range h.order {
		row := h.rows[id]
		streak := planner.Streak(row.Checks)
		if streak == row.Habit.Streak {
			continue
		}
		row.Habit.Streak = streak
		// a failed write is logged by mirrorErr; the view keeps the recomputed value
		_, _ = upsertOne[models.Habit](ctx, h.s, models.TableHabits, h.s.patch(id, map[string]interface{}{"streak": streak}))
	}
	return nil
}

// Week returns the Monday of the displayed week.
func (h *HabitsView) Week() time.Time { return h.week }

// Rows returns the habits in creation order.
func (h *HabitsView) Rows() []HabitRow {
	out := make([]HabitRow, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, *h.rows[id])
	}
	return out
}

func (h *HabitsView) row(id string) (*HabitRow, error) {
	row, ok := h.rows[id]
	if !ok {
		return nil, fmt.Errorf("habit %s: %w", id, ErrNotFound)
	}
	return row, nil
}

// Add creates a habit with a zero streak.
func (h *HabitsView) Add(ctx context.Context, name string) (models.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Habit{}, planner.Invalid("name", "is required")
	}
	hb, err := upsertOne[models.Habit](ctx, h.s, models.TableHabits, models.Habit{Owned: h.s.owned(""), Name: name})
	if err != nil {
		return hb, err
	}
	h.rows[hb.ID] = &HabitRow{Habit: hb}
	h.order = append(h.order, hb.ID)
	return hb, nil
}

// Rename changes the habit name.
func (h *HabitsView) Rename(ctx context.Context, id, name string) error {
	row, err := h.row(id)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return planner.Invalid("name", "is required")
	}
	hb, err := upsertOne[models.Habit](ctx, h.s, models.TableHabits, h.s.patch(id, map[string]interface{}{"name": name}))
	if err != nil {
		return err
	}
	row.Habit = hb
	return nil
}

// Delete removes the habit, then every stored check of it, past weeks included.
func (h *HabitsView) Delete(ctx context.Context, id string) error {
	if _, err := h.row(id); err != nil {
		return err
	}
	if err := h.s.deleteByID(ctx, models.TableHabits, id); err != nil {
		return err
	}
	delete(h.rows, id)
	for i, hid := range h.order {
		if hid == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	checks, err := queryAll[models.HabitCheck](ctx, h.s, models.TableHabitChecks)
	if err != nil {
		return err
	}
	for _, c := range checks {
		if c.HabitID != id {
			continue
		}
		if err := h.s.deleteByID(ctx, models.TableHabitChecks, c.ID); err != nil {
			return err
		}
	}
	return nil
}

// Toggle flips the check of day (0 = Monday), mirrors it as a HabitCheck, then recomputes
// and stores the streak. The local row keeps the new state when a mirror fails.
func (h *HabitsView) Toggle(ctx context.Context, id string, day int) (int, error) {
	row, err := h.row(id)
	if err != nil {
		return 0, err
	}
	if day < 0 || day > 6 {
		return 0, planner.Invalid("day", "must be between 0 (Monday) and 6 (Sunday)")
	}

	row.Checks[day] = !row.Checks[day]
	row.Habit.Streak = planner.Streak(row.Checks)

	if row.Checks[day] {
		c, err := upsertOne[models.HabitCheck](ctx, h.s, models.TableHabitChecks, models.HabitCheck{
			Owned:   h.s.owned(""),
			HabitID: id,
			Date:    planner.FormatDateForStorage(planner.AddDays(h.week, day)),
		})
		if err != nil {
			return row.Habit.Streak, err
		}
		row.checkIDs[day] = c.ID
	} else if cid := row.checkIDs[day]; cid != "" {
		if err := h.s.deleteByID(ctx, models.TableHabitChecks, cid); err != nil {
			return row.Habit.Streak, err
		}
		row.checkIDs[day] = ""
	}

	_, err = upsertOne[models.Habit](ctx, h.s, models.TableHabits, h.s.patch(id, map[string]interface{}{"streak": row.Habit.Streak}))
	return row.Habit.Streak, err
}

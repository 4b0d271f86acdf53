package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cppla/planner/models"
	"github.com/cppla/planner/planner"
)

// WeeklyView shows the week around the date cursor, starting on the configured day.
type WeeklyView struct {
	s     *Session
	days  [7]time.Time
	start string
	end   string

	events map[string]models.Event
	note   models.Note
}

// Load derives the week from the cursor and fetches its events and weekly note.
func (w *WeeklyView) Load(ctx context.Context) error {
	w.days = planner.WeekDays(w.s.date, w.s.prefs.WeekStart)
	w.start, w.end = planner.WeekRange(w.s.date, w.s.prefs.WeekStart)
	w.events = make(map[string]models.Event)
	w.note = models.Note{Date: w.start, Type: planner.NoteWeekly}

	events, err := queryAll[models.Event](ctx, w.s, models.TableEvents)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if w.contains(ev.Date) {
			w.events[ev.ID] = ev
		}
	}

	notes, err := queryAll[models.Note](ctx, w.s, models.TableNotes)
	if err != nil {
		return err
	}
	for _, n := range notes {
		if n.Date == w.start && n.Type == planner.NoteWeekly {
			w.note = n
		}
	}
	return nil
}

// YYYY-MM-DD strings compare in calendar order.
func (w *WeeklyView) contains(date string) bool {
	return date >= w.start && date <= w.end
}

// Range returns the first and last day of the week.
func (w *WeeklyView) Range() (string, string) { return w.start, w.end }

// Days returns the seven days in display order.
func (w *WeeklyView) Days() [7]time.Time { return w.days }

// EventsOn returns the events of date ordered by hour.
func (w *WeeklyView) EventsOn(date string) []models.Event {
	var out []models.Event
	for _, ev := range w.events {
		if ev.Date == date {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hour != out[j].Hour {
			return out[i].Hour < out[j].Hour
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Note returns the weekly note keyed by the week start.
func (w *WeeklyView) Note() models.Note { return w.note }

// Navigate shifts the date cursor by n weeks and reloads.
func (w *WeeklyView) Navigate(ctx context.Context, n int) error {
	w.s.date = planner.ShiftWeek(w.s.date, n)
	return w.Load(ctx)
}

// AddEvent schedules an event on any day; it is shown when it falls in this week.
func (w *WeeklyView) AddEvent(ctx context.Context, date, title string, hour int) (models.Event, error) {
	ev, err := addEvent(ctx, w.s, date, title, hour)
	if err != nil {
		return ev, err
	}
	if w.contains(ev.Date) {
		w.events[ev.ID] = ev
	}
	return ev, nil
}

// DeleteEvent removes an event of this week.
func (w *WeeklyView) DeleteEvent(ctx context.Context, id string) error {
	if _, ok := w.events[id]; !ok {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	if err := w.s.deleteByID(ctx, models.TableEvents, id); err != nil {
		return err
	}
	delete(w.events, id)
	return nil
}

// SaveNote stores the weekly note.
func (w *WeeklyView) SaveNote(ctx context.Context, content string) error {
	n, err := saveNote(ctx, w.s, w.note.ID, w.start, planner.NoteWeekly, content)
	if err != nil {
		return err
	}
	w.note = n
	return nil
}

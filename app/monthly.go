package app

import (
	"context"
	"fmt"

	"github.com/cppla/planner/models"
	"github.com/cppla/planner/planner"
)

// MonthCell is one square of the month grid. Day is 0 for leading blanks.
type MonthCell struct {
	Day    int
	Date   string
	Events int
	Today  bool
}

// MonthlyView counts events per day of the month cursor, which moves independently of the
// date cursor.
type MonthlyView struct {
	s      *Session
	counts map[string]int
}

// Load counts the events of the cursor month.
func (m *MonthlyView) Load(ctx context.Context) error {
	events, err := queryAll[models.Event](ctx, m.s, models.TableEvents)
	if err != nil {
		return err
	}
	m.counts = make(map[string]int)
	for _, ev := range events {
		if m.s.month.Contains(ev.Date) {
			m.counts[ev.Date]++
		}
	}
	return nil
}

// Cursor returns the displayed month.
func (m *MonthlyView) Cursor() planner.MonthCursor { return m.s.month }

// Navigate moves the month cursor by delta months, carrying into the year, and reloads.
func (m *MonthlyView) Navigate(ctx context.Context, delta int) error {
	m.s.month = m.s.month.Navigate(delta)
	return m.Load(ctx)
}

// Cells lays out the month Sunday-first.
func (m *MonthlyView) Cells() []MonthCell {
	c := m.s.month
	today := planner.Today(m.s.now())
	var cells []MonthCell
	for _, day := range c.Grid() {
		if day == 0 {
			cells = append(cells, MonthCell{})
			continue
		}
		date := fmt.Sprintf("%04d-%02d-%02d", c.Year, c.Month+1, day)
		cells = append(cells, MonthCell{Day: day, Date: date, Events: m.counts[date], Today: date == today})
	}
	return cells
}

// Count returns the number of events on date.
func (m *MonthlyView) Count(date string) int { return m.counts[date] }

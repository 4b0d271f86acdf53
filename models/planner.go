package models

import (
	"strings"

	"github.com/cppla/planner/planner"
)

// Task is one entry of a day's to-do list.
type Task struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Date      string `json:"date"`
}

// TaskList holds the whole to-do list of one day; it is re-saved on every change.
type TaskList struct {
	Owned
	Date  string `gorm:"size:10;index" json:"date"`
	Tasks []Task `gorm:"type:text;serializer:json" json:"tasks"`
}

func (TaskList) TableName() string { return TableTasks }

func (t *TaskList) Validate() error {
	if !planner.ValidDate(t.Date) {
		return planner.Invalid("date", "must be YYYY-MM-DD")
	}
	for i := range t.Tasks {
		if strings.TrimSpace(t.Tasks[i].Text) == "" {
			return planner.Invalid("tasks", "task text is required")
		}
		if t.Tasks[i].Date == "" {
			t.Tasks[i].Date = t.Date
		}
	}
	if t.Tasks == nil {
		t.Tasks = []Task{}
	}
	return nil
}

func (t *TaskList) Normalize() {
	for i := range t.Tasks {
		t.Tasks[i].Text = cleanText(t.Tasks[i].Text)
	}
}

// Event is a titled entry at a whole hour of a day.
type Event struct {
	Owned
	Title string `gorm:"size:255;not null" json:"title"`
	Hour  int    `json:"hour"`
	Date  string `gorm:"size:10;index" json:"date"`
}

func (Event) TableName() string { return TableEvents }

func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return planner.Invalid("title", "is required")
	}
	if err := planner.ValidateHour(e.Hour); err != nil {
		return err
	}
	if !planner.ValidDate(e.Date) {
		return planner.Invalid("date", "must be YYYY-MM-DD")
	}
	return nil
}

func (e *Event) Normalize() { e.Title = cleanText(e.Title) }

// Note is free text attached to a day (daily) or a week start (weekly).
type Note struct {
	Owned
	Content string `gorm:"type:text" json:"content"`
	Date    string `gorm:"size:10;index" json:"date"`
	Type    string `gorm:"size:16" json:"type"`
}

func (Note) TableName() string { return TableNotes }

func (n *Note) Validate() error {
	if n.Type == "" {
		n.Type = planner.NoteDaily
	}
	if !planner.ValidNoteType(n.Type) {
		return planner.Invalid("type", "must be daily or weekly")
	}
	if !planner.ValidDate(n.Date) {
		return planner.Invalid("date", "must be YYYY-MM-DD")
	}
	return nil
}

func (n *Note) Normalize() { n.Content = cleanText(n.Content) }

// Habit is a tracked recurring activity; Streak caches the current-week run.
type Habit struct {
	Owned
	Name   string `gorm:"size:255;not null" json:"name"`
	Streak int    `json:"streak"`
}

func (Habit) TableName() string { return TableHabits }

func (h *Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return planner.Invalid("name", "is required")
	}
	if h.Streak < 0 {
		return planner.Invalid("streak", "must not be negative")
	}
	return nil
}

func (h *Habit) Normalize() { h.Name = cleanText(h.Name) }

// HabitCheck marks a habit done on a date.
type HabitCheck struct {
	Owned
	HabitID string `gorm:"size:36;index" json:"habit_id"`
	Date    string `gorm:"size:10" json:"date"`
}

func (HabitCheck) TableName() string { return TableHabitChecks }

func (c *HabitCheck) Validate() error {
	if c.HabitID == "" {
		return planner.Invalid("habit_id", "is required")
	}
	if !planner.ValidDate(c.Date) {
		return planner.Invalid("date", "must be YYYY-MM-DD")
	}
	return nil
}

func (c *HabitCheck) Normalize() {}

// Goal is a categorized objective whose progress follows its milestones.
type Goal struct {
	Owned
	Title       string `gorm:"size:255;not null" json:"title"`
	Category    string `gorm:"size:32" json:"category"`
	Description string `gorm:"type:text" json:"description"`
	Deadline    string `gorm:"size:10" json:"deadline"`
	Progress    int    `json:"progress"`
	Completed   bool   `json:"completed"`
}

func (Goal) TableName() string { return TableGoals }

func (g *Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return planner.Invalid("title", "is required")
	}
	c, err := planner.NormalizeCategory(g.Category)
	if err != nil {
		return err
	}
	g.Category = c
	if g.Deadline != "" && !planner.ValidDate(g.Deadline) {
		return planner.Invalid("deadline", "must be YYYY-MM-DD")
	}
	if g.Progress < 0 || g.Progress > 100 {
		return planner.Invalid("progress", "must be between 0 and 100")
	}
	return nil
}

func (g *Goal) Normalize() {
	g.Title = cleanText(g.Title)
	g.Description = cleanText(g.Description)
}

// Milestone is a checkable step of a goal.
type Milestone struct {
	Owned
	GoalID    string `gorm:"size:36;index" json:"goal_id"`
	Text      string `gorm:"size:255;not null" json:"text"`
	Completed bool   `json:"completed"`
}

func (Milestone) TableName() string { return TableMilestones }

func (m *Milestone) Validate() error {
	if m.GoalID == "" {
		return planner.Invalid("goal_id", "is required")
	}
	if strings.TrimSpace(m.Text) == "" {
		return planner.Invalid("text", "is required")
	}
	return nil
}

func (m *Milestone) Normalize() { m.Text = cleanText(m.Text) }

package planner

import (
	"fmt"
	"strings"
)

// Goal categories.
const (
	CategoryPersonal     = "personal"
	CategoryProfessional = "professional"
	CategoryHealth       = "health"
	CategoryFinancial    = "financial"
)

// Categories lists goal categories in menu order.
var Categories = []string{CategoryPersonal, CategoryProfessional, CategoryHealth, CategoryFinancial}

// NormalizeCategory lower-cases and validates a goal category.
func NormalizeCategory(s string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(s))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", s)}
}

// GoalTab filters the goals list.
type GoalTab string

const (
	TabActive    GoalTab = "active"
	TabCompleted GoalTab = "completed"
	// TabProjects shows professional goals.
	TabProjects GoalTab = "projects"
	TabAll      GoalTab = "all"
)

// ParseGoalTab accepts active, completed, projects or all; empty means active.
func ParseGoalTab(s string) (GoalTab, error) {
	switch t := GoalTab(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TabActive, nil
	case TabActive, TabCompleted, TabProjects, TabAll:
		return t, nil
	default:
		return "", &ValidationError{Field: "tab", Reason: fmt.Sprintf("unknown tab %q", s)}
	}
}

// Shows reports whether a goal with the given category and completion belongs in the tab.
func (t GoalTab) Shows(category string, completed bool) bool {
	switch t {
	case TabActive:
		return !completed
	case TabCompleted:
		return completed
	case TabProjects:
		return category == CategoryProfessional
	default:
		return true
	}
}

// Note types.
const (
	NoteDaily  = "daily"
	NoteWeekly = "weekly"
)

// ValidNoteType reports whether s is daily or weekly.
func ValidNoteType(s string) bool {
	return s == NoteDaily || s == NoteWeekly
}

// ValidateCategory rejects categories outside Categories.
func ValidateCategory(s string) error {
	_, err := NormalizeCategory(s)
	return err
}

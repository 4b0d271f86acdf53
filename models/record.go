package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrUnknownTable is returned by Lookup for names outside the seven planner tables.
var ErrUnknownTable = errors.New("unknown table")

// Record is a row of one of the per-user planner tables.
type Record interface {
	GetID() string
	SetID(id string)
	GetUserID() string
	SetUserID(id string)
	// Validate rejects malformed fields before anything is written.
	Validate() error
	// Normalize trims free text. Markup is stored as typed and escaped where it is rendered.
	Normalize()
}

// Owned is embedded by every planner record.
type Owned struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;index;not null" json:"user_id"`
	// Set once on insert; an overlay update never rewrites it.
	CreatedAt time.Time `gorm:"<-:create" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *Owned) GetID() string       { return o.ID }
func (o *Owned) SetID(id string)     { o.ID = id }
func (o *Owned) GetUserID() string   { return o.UserID }
func (o *Owned) SetUserID(id string) { o.UserID = id }

// BeforeCreate assigns a server id when the client sent none.
func (o *Owned) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

func cleanText(s string) string {
	return strings.TrimSpace(s)
}

// Table describes one storage table.
type Table struct {
	Name string
	New  func() Record
	// NewList returns a pointer to an empty slice for Find.
	NewList func() interface{}
}

// Table names.
const (
	TableTasks       = "tasks"
	TableEvents      = "events"
	TableNotes       = "notes"
	TableHabits      = "habits"
	TableHabitChecks = "habit_checks"
	TableGoals       = "goals"
	TableMilestones  = "milestones"
)

// Tables lists every per-user table.
var Tables = map[string]Table{
	TableTasks:       {Name: TableTasks, New: func() Record { return &TaskList{} }, NewList: func() interface{} { return &[]TaskList{} }},
	TableEvents:      {Name: TableEvents, New: func() Record { return &Event{} }, NewList: func() interface{} { return &[]Event{} }},
	TableNotes:       {Name: TableNotes, New: func() Record { return &Note{} }, NewList: func() interface{} { return &[]Note{} }},
	TableHabits:      {Name: TableHabits, New: func() Record { return &Habit{} }, NewList: func() interface{} { return &[]Habit{} }},
	TableHabitChecks: {Name: TableHabitChecks, New: func() Record { return &HabitCheck{} }, NewList: func() interface{} { return &[]HabitCheck{} }},
	TableGoals:       {Name: TableGoals, New: func() Record { return &Goal{} }, NewList: func() interface{} { return &[]Goal{} }},
	TableMilestones:  {Name: TableMilestones, New: func() Record { return &Milestone{} }, NewList: func() interface{} { return &[]Milestone{} }},
}

// Lookup returns the table registered under name.
func Lookup(name string) (Table, error) {
	t, ok := Tables[name]
	if !ok {
		return Table{}, ErrUnknownTable
	}
	return t, nil
}

// All returns every model for auto-migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&TaskList{},
		&Event{},
		&Note{},
		&Habit{},
		&HabitCheck{},
		&Goal{},
		&Milestone{},
	}
}

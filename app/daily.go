package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cppla/planner/models"
	"github.com/cppla/planner/planner"
)

// DailyView holds the tasks, events and note of the cursor date.
type DailyView struct {
	s    *Session
	date string

	listID string
	tasks  []models.Task
	events map[string]models.Event
	note   models.Note
}

// HourSlot is one time block of the day.
type HourSlot struct {
	Hour   int
	Label  string
	Events []models.Event
}

// Load fetches the cursor date's entities. Date filtering happens here, after the full scan.
func (d *DailyView) Load(ctx context.Context) error {
	d.date = planner.FormatDateForStorage(d.s.date)
	d.listID, d.tasks = "", nil
	d.events = make(map[string]models.Event)
	d.note = models.Note{Date: d.date, Type: planner.NoteDaily}

	lists, err := queryAll[models.TaskList](ctx, d.s, models.TableTasks)
	if err != nil {
		return err
	}
	for _, l := range lists {
		if l.Date == d.date {
			d.listID, d.tasks = l.ID, l.Tasks
			break
		}
	}

	events, err := queryAll[models.Event](ctx, d.s, models.TableEvents)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if ev.Date == d.date {
			d.events[ev.ID] = ev
		}
	}

	notes, err := queryAll[models.Note](ctx, d.s, models.TableNotes)
	if err != nil {
		return err
	}
	for _, n := range notes {
		if n.Date == d.date && n.Type == planner.NoteDaily {
			d.note = n
		}
	}
	return nil
}

// Date is the loaded day, YYYY-MM-DD.
func (d *DailyView) Date() string { return d.date }

// Tasks returns a copy of the task list.
func (d *DailyView) Tasks() []models.Task {
	return append([]models.Task(nil), d.tasks...)
}

// Note returns the daily note, empty when none is stored.
func (d *DailyView) Note() models.Note { return d.note }

// AddTask appends a task and re-saves the list.
func (d *DailyView) AddTask(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return planner.Invalid("text", "task text is required")
	}
	d.tasks = append(d.tasks, models.Task{Text: text, Date: d.date})
	return d.saveTasks(ctx)
}

// ToggleTask flips the completion of task i.
func (d *DailyView) ToggleTask(ctx context.Context, i int) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.tasks[i].Completed = !d.tasks[i].Completed
	return d.saveTasks(ctx)
}

// SetTaskDone marks task i done or not done.
func (d *DailyView) SetTaskDone(ctx context.Context, i int, done bool) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	if d.tasks[i].Completed == done {
		return nil
	}
	return d.ToggleTask(ctx, i)
}

// DeleteTask removes task i.
func (d *DailyView) DeleteTask(ctx context.Context, i int) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.tasks = append(d.tasks[:i], d.tasks[i+1:]...)
	return d.saveTasks(ctx)
}

func (d *DailyView) checkIndex(i int) error {
	if i < 0 || i >= len(d.tasks) {
		return fmt.Errorf("task %d: %w", i+1, ErrNotFound)
	}
	return nil
}

// saveTasks writes the whole list for the date. The record id is remembered after the
// first insert so later saves overwrite it.
func (d *DailyView) saveTasks(ctx context.Context) error {
	tasks := d.tasks
	if tasks == nil {
		tasks = []models.Task{}
	}
	saved, err := upsertOne[models.TaskList](ctx, d.s, models.TableTasks, models.TaskList{
		Owned: d.s.owned(d.listID),
		Date:  d.date,
		Tasks: tasks,
	})
	if err != nil {
		return err
	}
	d.listID = saved.ID
	return nil
}

// Events returns the day's events ordered by hour.
func (d *DailyView) Events() []models.Event {
	out := make([]models.Event, 0, len(d.events))
	for _, ev := range d.events {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hour != out[j].Hour {
			return out[i].Hour < out[j].Hour
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Hours lays the events out on the 6 AM to 10 PM blocks. Events outside that range are only
// listed by Events.
func (d *DailyView) Hours() []HourSlot {
	byHour := make(map[int][]models.Event)
	for _, ev := range d.Events() {
		byHour[ev.Hour] = append(byHour[ev.Hour], ev)
	}
	var slots []HourSlot
	for _, h := range planner.DayHours() {
		slots = append(slots, HourSlot{Hour: h, Label: d.s.FormatHour(h), Events: byHour[h]})
	}
	return slots
}

// AddEvent schedules title at hour of the loaded day.
func (d *DailyView) AddEvent(ctx context.Context, title string, hour int) (models.Event, error) {
	ev, err := addEvent(ctx, d.s, d.date, title, hour)
	if err != nil {
		return ev, err
	}
	d.events[ev.ID] = ev
	return ev, nil
}

// DeleteEvent removes the event with id.
func (d *DailyView) DeleteEvent(ctx context.Context, id string) error {
	if _, ok := d.events[id]; !ok {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	if err := d.s.deleteByID(ctx, models.TableEvents, id); err != nil {
		return err
	}
	delete(d.events, id)
	return nil
}

// SaveNote stores the daily note, updating the existing record when there is one.
func (d *DailyView) SaveNote(ctx context.Context, content string) error {
	n, err := saveNote(ctx, d.s, d.note.ID, d.date, planner.NoteDaily, content)
	if err != nil {
		return err
	}
	d.note = n
	return nil
}

func addEvent(ctx context.Context, s *Session, date, title string, hour int) (models.Event, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Event{}, planner.Invalid("title", "is required")
	}
	if err := planner.ValidateHour(hour); err != nil {
		return models.Event{}, err
	}
	if !planner.ValidDate(date) {
		return models.Event{}, planner.Invalid("date", "must be YYYY-MM-DD")
	}
	return upsertOne[models.Event](ctx, s, models.TableEvents, models.Event{
		Owned: s.owned(""),
		Title: title,
		Hour:  hour,
		Date:  date,
	})
}

func saveNote(ctx context.Context, s *Session, id, date, kind, content string) (models.Note, error) {
	return upsertOne[models.Note](ctx, s, models.TableNotes, models.Note{
		Owned:   s.owned(id),
		Content: content,
		Date:    date,
		Type:    kind,
	})
}

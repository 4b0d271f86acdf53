package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cppla/planner/app"
)

// daily opens the daily view, moved to date when one is given.
func daily(ctx context.Context, s *app.Session, date string) (*app.DailyView, error) {
	d, err := s.Daily(ctx)
	if err != nil {
		return nil, err
	}
	if date != "" && date != d.Date() {
		if err := s.SelectDate(ctx, date); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func printDay(s *app.Session, d *app.DailyView) {
	fmt.Printf("%s\n\n", d.Date())

	fmt.Println("Tasks")
	tasks := d.Tasks()
	if len(tasks) == 0 {
		fmt.Println("  (none)")
	}
	for i, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Printf("  %2d. [%s] %s\n", i+1, mark, t.Text)
	}

	fmt.Println("\nSchedule")
	for _, slot := range d.Hours() {
		if len(slot.Events) == 0 {
			continue
		}
		for _, ev := range slot.Events {
			fmt.Printf("  %-6s %s  (%s)\n", slot.Label, ev.Title, short(ev.ID))
		}
	}
	for _, ev := range d.Events() {
		if ev.Hour < 6 || ev.Hour > 22 {
			fmt.Printf("  %-6s %s  (%s)\n", s.FormatHour(ev.Hour), ev.Title, short(ev.ID))
		}
	}

	if note := d.Note(); note.Content != "" {
		fmt.Printf("\nNotes\n  %s\n", strings.ReplaceAll(note.Content, "\n", "\n  "))
	}
}

func todayCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show the tasks, schedule and note of a day",
		RunE: withSession(func(ctx context.Context, e *env, s *app.Session) error {
			d, err := daily(ctx, s, date)
			if err != nil {
				return err
			}
			printDay(s, d)
			return nil
		}),
	}
	cmd.Flags().StringVar(&date, "date", "", "day to show (YYYY-MM-DD, default today)")
	return cmd
}

func taskIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("task number must be a positive integer, got %q", arg)
	}
	return n - 1, nil
}

func taskCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage the to-do list of a day",
	}
	cmd.PersistentFlags().StringVar(&date, "date", "", "day of the list (default today)")

	cmd.AddCommand(&cobra.Command{
		Use:   "add [text]",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, e *env, s *app.Session) error {
				d, err := daily(ctx, s, date)
				if err != nil {
					return err
				}
				if err := d.AddTask(ctx, strings.Join(args, " ")); err != nil {
					return err
				}
				fmt.Printf("Added task %d\n", len(d.Tasks()))
				return nil
			})(cmd, args)
		},
	})

	setDone := func(use, short string, done bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " [number]",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				i, err := taskIndex(args[0])
				if err != nil {
					return err
				}
				return withSession(func(ctx context.Context, e *env, s *app.Session) error {
					d, err := daily(ctx, s, date)
					if err != nil {
						return err
					}
					return d.SetTaskDone(ctx, i, done)
				})(cmd, args)
			},
		}
	}
	cmd.AddCommand(setDone("done", "Mark a task completed", true))
	cmd.AddCommand(setDone("undo", "Mark a task not completed", false))

	cmd.AddCommand(&cobra.Command{
		Use:   "rm [number]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := taskIndex(args[0])
			if err != nil {
				return err
			}
			return withSession(func(ctx context.Context, e *env, s *app.Session) error {
				d, err := daily(ctx, s, date)
				if err != nil {
					return err
				}
				tasks := d.Tasks()
				if i >= len(tasks) {
					return fmt.Errorf("no task %d", i+1)
				}
				if !confirm(fmt.Sprintf("Delete %q?", tasks[i].Text)) {
					return nil
				}
				return d.DeleteTask(ctx, i)
			})(cmd, args)
		},
	})
	return cmd
}

func eventCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "event",
		Short: "Manage the schedule of a day",
	}
	cmd.PersistentFlags().StringVar(&date, "date", "", "day of the event (default today)")

	var hour int
	add := &cobra.Command{
		Use:   "add [title]",
		Short: "Schedule an event at a whole hour",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, e *env, s *app.Session) error {
				d, err := daily(ctx, s, date)
				if err != nil {
					return err
				}
				ev, err := d.AddEvent(ctx, strings.Join(args, " "), hour)
				if err != nil {
					return err
				}
				fmt.Printf("Scheduled %s at %s (%s)\n", ev.Title, s.FormatHour(ev.Hour), short(ev.ID))
				return nil
			})(cmd, args)
		},
	}
	add.Flags().IntVar(&hour, "hour", -1, "hour 0-23")
	_ = add.MarkFlagRequired("hour")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "rm [id]",
		Short: "Delete an event of the day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, e *env, s *app.Session) error {
				d, err := daily(ctx, s, date)
				if err != nil {
					return err
				}
				events := d.Events()
				ids := make([]string, len(events))
				for i, ev := range events {
					ids[i] = ev.ID
				}
				id, err := matchID(ids, args[0])
				if err != nil {
					return err
				}
				if !confirm("Delete event " + short(id) + "?") {
					return nil
				}
				return d.DeleteEvent(ctx, id)
			})(cmd, args)
		},
	})
	return cmd
}

func noteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Write the daily or weekly note",
	}

	var date string
	var weekly bool
	set := &cobra.Command{
		Use:   "set [text]",
		Short: "Replace the note",
		Args:  cobra.MinimumNArgs(1),
	}
	set.RunE = func(cmd *cobra.Command, args []string) error {
		content := strings.Join(args, " ")
		return withSession(func(ctx context.Context, e *env, s *app.Session) error {
			if date != "" {
				if err := s.SelectDate(ctx, date); err != nil {
					return err
				}
			}
			if weekly {
				w, err := s.Weekly(ctx)
				if err != nil {
					return err
				}
				start, _ := w.Range()
				if err := w.SaveNote(ctx, content); err != nil {
					return err
				}
				fmt.Printf("Saved note for the week of %s\n", start)
				return nil
			}
			d, err := s.Daily(ctx)
			if err != nil {
				return err
			}
			if err := d.SaveNote(ctx, content); err != nil {
				return err
			}
			fmt.Printf("Saved note for %s\n", d.Date())
			return nil
		})(cmd, args)
	}
	set.Flags().StringVar(&date, "date", "", "day, or any day of the week with --weekly")
	set.Flags().BoolVar(&weekly, "weekly", false, "write the weekly note")
	cmd.AddCommand(set)
	return cmd
}

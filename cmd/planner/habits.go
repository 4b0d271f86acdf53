package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cppla/planner/app"
	"github.com/cppla/planner/planner"
)

var dayNames = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// parseDay accepts a weekday name, a number 1-7 (Monday first) or "today".
func parseDay(arg string, now time.Time) (int, error) {
	a := strings.ToLower(strings.TrimSpace(arg))
	if a == "today" {
		return planner.DayIndex(planner.HabitWeekStart(now), now), nil
	}
	for i, name := range dayNames {
		if strings.HasPrefix(a, name) {
			return i, nil
		}
	}
	if n, err := strconv.Atoi(a); err == nil && n >= 1 && n <= 7 {
		return n - 1, nil
	}
	return 0, fmt.Errorf("unknown day %q (use mon..sun, 1-7 or today)", arg)
}

func habitIDs(h *app.HabitsView) []string {
	rows := h.Rows()
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.Habit.ID
	}
	return ids
}

// habitAction resolves the habit id argument and runs fn against it.
func habitAction(fn func(ctx context.Context, h *app.HabitsView, id string, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, e *env, s *app.Session) error {
			h, err := s.Habits(ctx)
			if err != nil {
				return err
			}
			id, err := matchID(habitIDs(h), args[0])
			if err != nil {
				return err
			}
			return fn(ctx, h, id, args[1:])
		})(cmd, args)
	}
}

func habitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "Track habits over the current week",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List habits with this week's checks",
		RunE: withSession(func(ctx context.Context, e *env, s *app.Session) error {
			h, err := s.Habits(ctx)
			if err != nil {
				return err
			}
			rows := h.Rows()
			if len(rows) == 0 {
				fmt.Println("No habits yet. Use 'planner habit add' to create one.")
				return nil
			}
			fmt.Printf("Week of %s\n", planner.FormatDateForStorage(h.Week()))
			fmt.Printf("%-8s  M T W T F S S  streak  name\n", "id")
			for _, r := range rows {
				var marks []string
				for _, c := range r.Checks {
					if c {
						marks = append(marks, "x")
					} else {
						marks = append(marks, ".")
					}
				}
				fmt.Printf("%-8s  %s  %6d  %s\n", short(r.Habit.ID), strings.Join(marks, " "), r.Habit.Streak, r.Habit.Name)
			}
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add [name]",
		Short: "Add a habit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, e *env, s *app.Session) error {
				h, err := s.Habits(ctx)
				if err != nil {
					return err
				}
				hb, err := h.Add(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Printf("Added habit %s (%s)\n", hb.Name, short(hb.ID))
				return nil
			})(cmd, args)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename [id] [name]",
		Short: "Rename a habit",
		Args:  cobra.MinimumNArgs(2),
		RunE: habitAction(func(ctx context.Context, h *app.HabitsView, id string, rest []string) error {
			return h.Rename(ctx, id, strings.Join(rest, " "))
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a habit and its checks",
		Args:  cobra.ExactArgs(1),
		RunE: habitAction(func(ctx context.Context, h *app.HabitsView, id string, _ []string) error {
			if !confirm("Delete habit " + short(id) + "?") {
				return nil
			}
			return h.Delete(ctx, id)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check [id] [day]",
		Short: "Toggle a day of this week (mon..sun, 1-7 or today)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: habitAction(func(ctx context.Context, h *app.HabitsView, id string, rest []string) error {
			arg := "today"
			if len(rest) > 0 {
				arg = rest[0]
			}
			day, err := parseDay(arg, time.Now())
			if err != nil {
				return err
			}
			streak, err := h.Toggle(ctx, id, day)
			if err != nil {
				return err
			}
			fmt.Printf("Streak: %d\n", streak)
			return nil
		}),
	})
	return cmd
}

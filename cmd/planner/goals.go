package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cppla/planner/app"
	"github.com/cppla/planner/planner"
)

func goalIDs(g *app.GoalsView) []string {
	items, _ := g.List(planner.TabAll, "")
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.Goal.ID
	}
	return ids
}

func goalAction(fn func(ctx context.Context, g *app.GoalsView, id string, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, e *env, s *app.Session) error {
			g, err := s.Goals(ctx)
			if err != nil {
				return err
			}
			id, err := matchID(goalIDs(g), args[0])
			if err != nil {
				return err
			}
			return fn(ctx, g, id, args[1:])
		})(cmd, args)
	}
}

func printGoal(it app.GoalItem) {
	status := fmt.Sprintf("%3d%%", it.Goal.Progress)
	if it.Goal.Completed {
		status = "done"
	}
	fmt.Printf("%-8s  %s  [%s] %s", short(it.Goal.ID), status, it.Goal.Category, it.Goal.Title)
	if it.Goal.Deadline != "" {
		fmt.Printf("  (due %s)", it.Goal.Deadline)
	}
	fmt.Println()
	if it.Goal.Description != "" {
		fmt.Printf("          %s\n", it.Goal.Description)
	}
	for i, m := range it.Milestones {
		mark := " "
		if m.Completed {
			mark = "x"
		}
		fmt.Printf("          %d. [%s] %s\n", i+1, mark, m.Text)
	}
}

func goalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Track goals and their milestones",
	}

	var tab, category string
	ls := &cobra.Command{
		Use:   "ls",
		Short: "List goals",
		RunE: withSession(func(ctx context.Context, e *env, s *app.Session) error {
			t, err := planner.ParseGoalTab(tab)
			if err != nil {
				return err
			}
			g, err := s.Goals(ctx)
			if err != nil {
				return err
			}
			items, err := g.List(t, category)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("No goals here.")
			}
			for _, it := range items {
				printGoal(it)
			}
			return nil
		}),
	}
	ls.Flags().StringVar(&tab, "tab", "active", "active, completed, projects or all")
	ls.Flags().StringVar(&category, "category", "", "personal, professional, health or financial")
	cmd.AddCommand(ls)

	var in app.NewGoal
	add := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a goal with optional milestones",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = strings.Join(args, " ")
			return withSession(func(ctx context.Context, e *env, s *app.Session) error {
				g, err := s.Goals(ctx)
				if err != nil {
					return err
				}
				it, err := g.Add(ctx, in)
				if err != nil {
					return err
				}
				printGoal(it)
				return nil
			})(cmd, args)
		},
	}
	add.Flags().StringVar(&in.Category, "category", planner.CategoryPersonal, "personal, professional, health or financial")
	add.Flags().StringVar(&in.Description, "description", "", "longer description")
	add.Flags().StringVar(&in.Deadline, "deadline", "", "due date YYYY-MM-DD")
	add.Flags().StringArrayVarP(&in.Milestones, "milestone", "m", nil, "milestone text (repeatable)")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "check [goal-id] [milestone-number]",
		Short: "Toggle a milestone and update the progress",
		Args:  cobra.ExactArgs(2),
		RunE: goalAction(func(ctx context.Context, g *app.GoalsView, id string, rest []string) error {
			it, err := g.Get(id)
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(rest[0])
			if err != nil || n < 1 || n > len(it.Milestones) {
				return fmt.Errorf("goal has no milestone %s", rest[0])
			}
			progress, err := g.ToggleMilestone(ctx, id, it.Milestones[n-1].ID)
			if err != nil {
				return err
			}
			fmt.Printf("Progress: %d%%\n", progress)
			return nil
		}),
	})

	var undo bool
	done := &cobra.Command{
		Use:   "done [goal-id]",
		Short: "Mark a goal completed",
		Args:  cobra.ExactArgs(1),
		RunE: goalAction(func(ctx context.Context, g *app.GoalsView, id string, _ []string) error {
			return g.SetCompleted(ctx, id, !undo)
		}),
	}
	done.Flags().BoolVar(&undo, "undo", false, "mark the goal active again")
	cmd.AddCommand(done)

	cmd.AddCommand(&cobra.Command{
		Use:   "rm [goal-id]",
		Short: "Delete a goal and its milestones",
		Args:  cobra.ExactArgs(1),
		RunE: goalAction(func(ctx context.Context, g *app.GoalsView, id string, _ []string) error {
			it, err := g.Get(id)
			if err != nil {
				return err
			}
			if !confirm(fmt.Sprintf("Delete goal %q and %d milestones?", it.Goal.Title, len(it.Milestones))) {
				return nil
			}
			return g.Delete(ctx, id)
		}),
	})
	return cmd
}

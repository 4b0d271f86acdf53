package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cppla/planner/app"
	"github.com/cppla/planner/planner"
)

func weekCmd() *cobra.Command {
	var date string
	var offset int

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the events and note of a week",
		RunE: withSession(func(ctx context.Context, e *env, s *app.Session) error {
			if date != "" {
				if err := s.SelectDate(ctx, date); err != nil {
					return err
				}
			}
			w, err := s.Weekly(ctx)
			if err != nil {
				return err
			}
			if offset != 0 {
				if err := w.Navigate(ctx, offset); err != nil {
					return err
				}
			}
			start, end := w.Range()
			fmt.Printf("Week %s to %s\n\n", start, end)
			for _, day := range w.Days() {
				key := planner.FormatDateForStorage(day)
				fmt.Printf("%s %s\n", day.Format("Mon Jan 2"), todayMark(s, key))
				for _, ev := range w.EventsOn(key) {
					fmt.Printf("  %-6s %s  (%s)\n", s.FormatHour(ev.Hour), ev.Title, short(ev.ID))
				}
			}
			if note := w.Note(); note.Content != "" {
				fmt.Printf("\nNotes\n  %s\n", strings.ReplaceAll(note.Content, "\n", "\n  "))
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&date, "date", "", "any day of the week (default today)")
	cmd.Flags().IntVar(&offset, "offset", 0, "weeks to move forward (negative for back)")
	return cmd
}

func todayMark(s *app.Session, date string) string {
	if date == planner.FormatDateForStorage(s.Date()) {
		return "*"
	}
	return ""
}

func monthCmd() *cobra.Command {
	var offset int

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Show a month with the number of events per day",
		RunE: withSession(func(ctx context.Context, e *env, s *app.Session) error {
			m, err := s.Monthly(ctx)
			if err != nil {
				return err
			}
			if offset != 0 {
				if err := m.Navigate(ctx, offset); err != nil {
					return err
				}
			}
			fmt.Printf("%s\n", m.Cursor().Label())
			fmt.Println(" Su   Mo   Tu   We   Th   Fr   Sa")
			for i, c := range m.Cells() {
				switch {
				case c.Day == 0:
					fmt.Print("     ")
				case c.Events > 0:
					fmt.Printf("%3d%-2s", c.Day, fmt.Sprintf("+%d", min(c.Events, 9)))
				case c.Today:
					fmt.Printf("%3d* ", c.Day)
				default:
					fmt.Printf("%3d  ", c.Day)
				}
				if i%7 == 6 {
					fmt.Println()
				}
			}
			fmt.Println()
			return nil
		}),
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "months to move forward (negative for back)")
	return cmd
}

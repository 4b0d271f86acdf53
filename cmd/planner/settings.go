package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cppla/planner/app"
	"github.com/cppla/planner/planner"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change theme, week start and time format",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the applied settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()
			p := e.store.LoadPreferences()
			pal := planner.PaletteFor(p.Theme)
			fmt.Printf("theme        %s (primary %s, background %s)\n", p.Theme, pal.Primary, pal.Background)
			fmt.Printf("week start   %s\n", p.WeekStart)
			fmt.Printf("time format  %sh\n", p.TimeFormat)
			fmt.Printf("server       %s\n", e.server)
			return nil
		},
	})

	var theme, weekStart, timeFormat string
	set := &cobra.Command{
		Use:   "set",
		Short: "Change settings; they apply immediately",
		RunE: withSession(func(ctx context.Context, e *env, s *app.Session) error {
			if theme == "" && weekStart == "" && timeFormat == "" {
				return fmt.Errorf("nothing to change; pass --theme, --week-start or --time-format")
			}
			if err := s.SaveSettings(ctx, theme, weekStart, timeFormat); err != nil {
				return err
			}
			p := s.Preferences()
			fmt.Printf("Saved: theme %s, week starts %s, %sh clock\n", p.Theme, p.WeekStart, p.TimeFormat)
			return nil
		}),
	}
	set.Flags().StringVar(&theme, "theme", "", "light, dark, nature or minimal")
	set.Flags().StringVar(&weekStart, "week-start", "", "monday or sunday")
	set.Flags().StringVar(&timeFormat, "time-format", "", "12 or 24")
	cmd.AddCommand(set)
	return cmd
}

func exportCmd() *cobra.Command {
	var date, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a day as a standalone HTML page",
		RunE: withSession(func(ctx context.Context, e *env, s *app.Session) error {
			if date != "" {
				if err := s.SelectDate(ctx, date); err != nil {
					return err
				}
			}
			page, err := s.Export(ctx)
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = "planner-" + planner.FormatDateForStorage(s.Date()) + ".html"
			}
			if path == "-" {
				_, err = os.Stdout.Write(page)
				return err
			}
			if err := os.WriteFile(path, page, 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		}),
	}
	cmd.Flags().StringVar(&date, "date", "", "day to export (default today)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout")
	return cmd
}

func quoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote",
		Short: "Print the quote of the day",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()
			var q planner.Quote
			res := e.client.Quote(contextOf(cmd))
			if err := res.Decode(&q); err != nil {
				e.log.Debug("quote from service failed, using local list", zap.Error(err))
				q = planner.QuoteFor(time.Now())
			}
			fmt.Printf("\"%s\"\n  - %s\n", q.Text, q.Author)
			return nil
		},
	}
}

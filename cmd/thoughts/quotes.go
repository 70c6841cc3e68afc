package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"lifethoughts/internal/catalog"
)

// todayCmd prints the daily pick. It is a read-only view: the recent window
// only grows when quotes are browsed.
func todayCmd() *cobra.Command {
	var day string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Print today's thought",
		Long: `Print the thought of the day for your selected themes. The same date
and themes always give the same thought.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := resolveDate(day)
			if err != nil {
				return err
			}

			env, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			prefs := env.store.Preferences()
			q, err := env.catalog.SelectDaily(date, prefs.SelectedThemes, env.store.RecentlyShown())
			if errors.Is(err, catalog.ErrEmptySelection) {
				return fmt.Errorf("no thoughts match your themes (%s)", themeList(prefs.SelectedThemes))
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, struct {
					Date  string `json:"date"`
					Saved bool   `json:"saved"`
					catalog.Quote
				}{date, env.store.IsThoughtSaved(q.ID), q})
			}

			t, _ := time.Parse(time.DateOnly, date)
			fmt.Fprintf(out, "Thought of the day · %s\n\n", t.Format("Mon Jan 2"))
			printQuote(out, q, env.store.IsThoughtSaved(q.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&day, "date", "", "date to pick for (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

// bundleCmd prints quotes to browse after the daily pick.
func bundleCmd() *cobra.Command {
	var count int
	var noRecord bool

	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Print more thoughts to browse",
		Long: `Print a random bundle of thoughts from your themes, skipping today's pick
and anything shown recently. Printed thoughts are remembered so they are not
repeated soon, unless --no-record is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				count = cfg.UX.BundleSize
			}

			env, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			prefs := env.store.Preferences()
			recent := env.store.RecentlyShown()
			date := now().Format(time.DateOnly)

			daily, err := env.catalog.SelectDaily(date, prefs.SelectedThemes, recent)
			if err != nil {
				return fmt.Errorf("no thoughts match your themes (%s)", themeList(prefs.SelectedThemes))
			}

			quotes := env.catalog.SelectBundle(daily.ID, prefs.SelectedThemes, recent, count, nil)
			if len(quotes) == 0 {
				quotes = env.catalog.SelectBundle(daily.ID, prefs.SelectedThemes, nil, count, nil)
			}
			if len(quotes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "That's all for today.")
				return nil
			}

			out := cmd.OutOrStdout()
			for i, q := range quotes {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printQuote(out, q, env.store.IsThoughtSaved(q.ID))
				if !noRecord {
					env.store.AddShownThought(q.ID)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of thoughts (default from config)")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "do not remember these as shown")
	return cmd
}

func saveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save ID",
		Short: "Save a thought to your library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			q, ok := env.catalog.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown thought %q", args[0])
			}
			if env.store.IsThoughtSaved(q.ID) {
				fmt.Fprintf(cmd.OutOrStdout(), "Already saved: %s\n", q.ID)
				return nil
			}
			env.store.SaveThought(q.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s\n", q.ID)
			return nil
		},
	}
}

func unsaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unsave ID",
		Short: "Remove a thought from your library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			// IDs retired from the catalog can still be removed.
			id := args[0]
			if !env.store.IsThoughtSaved(id) {
				fmt.Fprintf(cmd.OutOrStdout(), "Not saved: %s\n", id)
				return nil
			}
			env.store.UnsaveThought(id)
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s\n", id)
			return nil
		},
	}
}

// libraryCmd lists saved thoughts
func libraryCmd() *cobra.Command {
	var theme string
	var search string

	cmd := &cobra.Command{
		Use:   "library",
		Short: "List saved thoughts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter catalog.ThemeTag
			if theme != "" {
				t, err := catalog.ParseThemeTag(theme)
				if err != nil {
					return err
				}
				filter = t
			}

			env, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			saved := env.catalog.Saved(env.store.SavedIDs())
			quotes := catalog.Search(catalog.FilterTheme(saved, filter), search)

			out := cmd.OutOrStdout()
			if len(saved) == 0 {
				fmt.Fprintln(out, "No saved thoughts yet.")
				fmt.Fprintln(out, "Run 'thoughts save ID' or press 's' in the app.")
				return nil
			}
			if len(quotes) == 0 {
				fmt.Fprintln(out, "No matches.")
				return nil
			}

			fmt.Fprintf(out, "Saved thoughts (%d of %d):\n", len(quotes), len(saved))
			for _, q := range quotes {
				line := q.Text
				if q.Author != "" {
					line += " — " + q.Author
				}
				fmt.Fprintf(out, "  %-16s %s\n", q.ID, runewidth.Truncate(line, 64, ".."))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&theme, "theme", "t", "", "only this theme")
	cmd.Flags().StringVarP(&search, "search", "s", "", "text or author contains")
	return cmd
}

// resolveDate validates a YYYY-MM-DD flag value, defaulting to today.
func resolveDate(s string) (string, error) {
	if s == "" {
		return now().Format(time.DateOnly), nil
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return "", fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return s, nil
}

func printQuote(out io.Writer, q catalog.Quote, saved bool) {
	for _, line := range wrap("“"+q.Text+"”", 60) {
		fmt.Fprintf(out, "  %s\n", line)
	}
	if a := q.Attribution(); a != "" {
		fmt.Fprintf(out, "      %s\n", a)
	}
	mark := "♡"
	if saved {
		mark = "♥"
	}
	fmt.Fprintf(out, "  %s %s · %s\n", mark, themeList(q.Tags), q.ID)
}

// wrap word-wraps text to width cells, the same way the quote card does.
func wrap(text string, width int) []string {
	rendered := lipgloss.NewStyle().Width(width).Render(text)
	lines := strings.Split(rendered, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return lines
}

func themeList(themes []catalog.ThemeTag) string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Title()
	}
	return strings.Join(names, ", ")
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

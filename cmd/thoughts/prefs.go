package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lifethoughts/internal/catalog"
	"lifethoughts/internal/notify"
	"lifethoughts/internal/store"
)

// prefsCmd shows the preferences; its set subcommand changes them.
func prefsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			prefs := env.store.Preferences()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), prefs)
			}
			printPreferences(cmd, prefs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	cmd.AddCommand(prefsSetCmd())
	return cmd
}

func prefsSetCmd() *cobra.Command {
	var (
		themes       string
		reminder     string
		mode         string
		fontScale    float64
		reduceMotion bool
		onboarded    bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change preferences",
		Long: `Change one or more preferences. Only the flags you pass are changed, and
nothing is written unless the result is valid.`,
		Example: `  thoughts prefs set --themes stoicism,joy --time 07:30
  thoughts prefs set --mode dark --font-scale 1.1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch store.PreferencesPatch
			flags := cmd.Flags()

			if flags.Changed("themes") {
				list, err := catalog.ParseThemeList(themes)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					return fmt.Errorf("--themes needs at least one theme")
				}
				patch.SelectedThemes = list
			}
			if flags.Changed("time") {
				clock, err := notify.ParseClock(reminder)
				if err != nil {
					return err
				}
				patch.NotificationTime = store.Ptr(clock.String())
			}
			if flags.Changed("mode") {
				m := store.ThemeMode(mode)
				patch.ThemeMode = &m
			}
			if flags.Changed("font-scale") {
				patch.FontScale = &fontScale
			}
			if flags.Changed("reduce-motion") {
				patch.ReduceMotion = &reduceMotion
			}
			if flags.Changed("onboarded") {
				patch.HasCompletedOnboarding = &onboarded
			}
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to change - see 'thoughts prefs set --help'")
			}

			env, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.store.SetPreferences(patch); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Preferences updated")
			printPreferences(cmd, env.store.Preferences())
			return nil
		},
	}

	cmd.Flags().StringVar(&themes, "themes", "", "comma-separated themes (stoicism, mindfulness, gratitude, growth, joy)")
	cmd.Flags().StringVar(&reminder, "time", "", "daily reminder time (HH:MM)")
	cmd.Flags().StringVar(&mode, "mode", "", "appearance: system, light or dark")
	cmd.Flags().Float64Var(&fontScale, "font-scale", 1.0, "text size: 0.9, 1.0, 1.1 or 1.2")
	cmd.Flags().BoolVar(&reduceMotion, "reduce-motion", false, "turn off card transitions")
	cmd.Flags().BoolVar(&onboarded, "onboarded", true, "mark the first-run flow as done")
	return cmd
}

func printPreferences(cmd *cobra.Command, p store.Preferences) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  Themes:        %s\n", themeList(p.SelectedThemes))
	fmt.Fprintf(out, "  Reminder:      %s\n", p.NotificationTime)
	fmt.Fprintf(out, "  Appearance:    %s\n", p.ThemeMode)
	fmt.Fprintf(out, "  Text size:     %s\n", strconv.FormatFloat(p.FontScale, 'f', 1, 64))
	fmt.Fprintf(out, "  Reduce motion: %t\n", p.ReduceMotion)
	fmt.Fprintf(out, "  Onboarded:     %t\n", p.HasCompletedOnboarding)
}

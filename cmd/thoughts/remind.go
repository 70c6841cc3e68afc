package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"lifethoughts/internal/config"
	"lifethoughts/internal/logging"
	"lifethoughts/internal/notify"
	"lifethoughts/internal/store"
)

// remindCmd runs the daily reminder in the foreground.
func remindCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send the daily reminder at your chosen time",
		Long: `Wait for the reminder time from your preferences and send a desktop
notification, every day until interrupted. Changing the time in the app takes
effect within a minute. Nothing is sent while notifications.enabled is false
in the config file. Run it from your session startup or a user service.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.Notifications.Enabled {
				fmt.Fprintf(cmd.OutOrStdout(),
					"Reminders are turned off. Set notifications.enabled: true in %s to turn them on.\n",
					config.Path())
				return nil
			}

			logger, closer, err := logging.New(logging.Config{
				Level:      cfg.Log.Level,
				File:       cfg.LogFile(),
				MaxSizeMB:  cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
			})
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}
			defer closer.Close()

			notifier := notify.New()
			if !notifier.IsSupported() {
				return fmt.Errorf("desktop notifications are not supported on this system")
			}

			statePath := filepath.Join(cfg.GetDataDir(), store.StateFile)
			current := func() string { return persistedReminderTime(statePath) }

			clock, err := notify.ParseClock(current())
			if err != nil {
				return err
			}
			reminder := &notify.Reminder{
				Notifier:   notifier,
				Schedule:   notify.NewSchedule(clock),
				TimeSource: current,
				Sound:      cfg.Notifications.Sound,
				Logger:     logger,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			next := reminder.Schedule.Next(now())
			fmt.Fprintf(cmd.OutOrStdout(), "Next reminder at %s\n", next.Format("Mon Jan 2 15:04"))
			logger.Info("reminder started", "at", clock.String(), "once", once)

			if once {
				err := reminder.RunOnce(ctx)
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			return reminder.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "send a single reminder and exit")
	return cmd
}

// persistedReminderTime reads the reminder time straight from the state
// file, so changes saved by another process are picked up. It never repairs
// the file; unreadable state yields the default time.
func persistedReminderTime(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.DefaultPreferences().NotificationTime
	}
	snap, err := store.DecodeSnapshot(data)
	if err != nil {
		return store.DefaultPreferences().NotificationTime
	}
	return snap.Preferences.NotificationTime
}

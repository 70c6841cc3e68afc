// Package main is the entry point for the thoughts application.
// It loads configuration, opens the store and starts the TUI or runs a
// subcommand.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lifethoughts/internal/catalog"
	"lifethoughts/internal/config"
	"lifethoughts/internal/logging"
	"lifethoughts/internal/store"
	"lifethoughts/internal/sync"
	"lifethoughts/internal/ui"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cfg is loaded once before any command runs.
var cfg *config.Config

// now is the clock used for the current date. Tests replace it.
var now = time.Now

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "thoughts",
		Short: "A daily thought for your terminal",
		Long: `thoughts shows one short reflective quote a day, picked from the themes
you choose, and lets you browse more, save favourites and get a daily
reminder. Data is kept in ~/.thoughts/ as plain JSON.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context())
		},
	}

	rootCmd.AddCommand(
		todayCmd(),
		bundleCmd(),
		saveCmd(),
		unsaveCmd(),
		libraryCmd(),
		prefsCmd(),
		remindCmd(),
		backupCmd(),
		restoreCmd(),
		exportCmd(),
		importCmd(),
		syncCmd(),
		versionCmd(),
	)
	return rootCmd
}

// appEnv is everything a command needs to work with the user's data.
type appEnv struct {
	logger    *slog.Logger
	logCloser io.Closer
	store     *store.Store
	catalog   *catalog.Catalog
	git       *sync.GitSync
}

// openEnv sets up logging, the catalog and the store, and wires git sync
// when it is enabled.
func openEnv(ctx context.Context) (*appEnv, error) {
	logger, closer, err := logging.New(logging.Config{
		Level:      cfg.Log.Level,
		File:       cfg.LogFile(),
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	env := &appEnv{
		logger:    logger,
		logCloser: closer,
		catalog:   catalog.Default(),
	}

	if cfg.Sync.Enabled && sync.IsGitInstalled() {
		env.git = sync.New(cfg.GetDataDir(), syncConfig(), logger)
		env.git.SetDescriber(env.describe)

		// Local data stays usable when the pull fails.
		if cfg.Sync.PullOnStartup && env.git.IsRepo() {
			if err := env.git.Pull(ctx); err != nil {
				logger.Warn("sync pull failed", "err", err)
				fmt.Fprintf(os.Stderr, "Warning: sync pull failed: %v\n", err)
			}
		}
	}

	s, err := store.New(cfg.GetDataDir(), store.WithLogger(logger))
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to open data directory: %w", err)
	}
	env.store = s
	if env.git != nil {
		s.SetOnSave(env.git.OnSave)
	}
	return env, nil
}

// describe renders a quote ID for commit messages.
func (e *appEnv) describe(id string) string {
	if q, ok := e.catalog.Get(id); ok {
		return q.Text
	}
	return id
}

// Close writes pending changes, commits them if sync is on and closes the log.
func (e *appEnv) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := e.store.Flush(ctx)
	err = errors.Join(err, e.store.Close())
	if e.git != nil {
		e.git.Flush()
	}
	return errors.Join(err, e.logCloser.Close())
}

func syncConfig() sync.Config {
	return sync.Config{
		Enabled:       cfg.Sync.Enabled,
		AutoCommit:    cfg.Sync.AutoCommit,
		AutoPush:      cfg.Sync.AutoPush,
		PullOnStartup: cfg.Sync.PullOnStartup,
		CommitMessage: cfg.Sync.CommitMessage,
	}
}

// runTUI starts the interactive app.
func runTUI(ctx context.Context) error {
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}

	env.logger.Info("starting", "version", version, "data_dir", cfg.GetDataDir())
	runErr := ui.Run(env.store, env.catalog, &ui.AppConfig{
		Keys:                  &cfg.Keys,
		Theme:                 &cfg.Theme,
		ShowOnboarding:        cfg.UX.ShowOnboarding,
		NarrowLayoutThreshold: cfg.UX.NarrowLayoutThreshold,
		BundleSize:            cfg.UX.BundleSize,
		RefillBelow:           cfg.UX.RefillBelow,
		Now:                   now,
	})
	if runErr != nil {
		env.logger.Error("app exited with error", "err", runErr)
	}
	return errors.Join(runErr, env.Close())
}

// versionCmd shows version information
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "thoughts version %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}

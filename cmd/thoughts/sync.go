package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lifethoughts/internal/config"
	"lifethoughts/internal/sync"
)

func syncCmd() *cobra.Command {
	var (
		initRepo bool
		status   bool
		remote   string
		pull     bool
		push     bool
		enable   bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync your data with git",
		Long: `Keep the data directory in a git repository. Without flags, commits any
changes and pushes them when a remote is configured.

Setup:
  thoughts sync --init --enable
  thoughts sync --remote git@github.com:me/thoughts-data.git

With sync enabled the app commits each change with a readable message
(for example "Save: Let delight be a compass, not a prize.").`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !sync.IsGitInstalled() {
				return errors.New("git is not installed - please install git to use sync")
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			dataDir := cfg.GetDataDir()
			gs := sync.New(dataDir, syncConfig(), nil)

			switch {
			case initRepo:
				if gs.IsRepo() {
					fmt.Fprintf(out, "Git repository already initialized in %s\n", dataDir)
				} else {
					fmt.Fprintf(out, "Initializing git repository in %s...\n", dataDir)
					if err := gs.Init(ctx); err != nil {
						return err
					}
					fmt.Fprintln(out, "✓ Repository initialized")
				}
				if enable {
					return enableSync(out)
				}
				if !cfg.Sync.Enabled {
					fmt.Fprintln(out, "\nRun 'thoughts sync --enable' to commit changes automatically.")
				}
				return nil

			case enable:
				return enableSync(out)

			case remote != "":
				if err := gs.AddRemote(ctx, "origin", remote); err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ Remote origin set to %s\n", remote)
				return nil

			case status:
				st, err := gs.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get status: %w", err)
				}
				printSyncStatus(out, st, dataDir)
				return nil

			case pull:
				fmt.Fprintln(out, "Pulling latest changes...")
				if err := gs.Pull(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "✓ Pull complete")
				return nil

			case push:
				fmt.Fprintln(out, "Pushing local changes...")
				if err := gs.Push(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "✓ Push complete")
				return nil
			}

			fmt.Fprintln(out, "Committing changes...")
			if err := gs.CommitAll(ctx, ""); err != nil {
				return err
			}
			st, err := gs.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}
			if !st.HasRemote {
				fmt.Fprintln(out, "Changes committed locally.")
				fmt.Fprintln(out, "(No remote configured - add one with 'thoughts sync --remote <url>')")
				return nil
			}
			fmt.Fprintln(out, "Pushing to remote...")
			if err := gs.Push(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: push failed: %v\n", err)
				fmt.Fprintln(out, "Changes committed locally.")
				return nil
			}
			fmt.Fprintln(out, "✓ Sync complete")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&initRepo, "init", false, "initialize a git repository in the data directory")
	flags.BoolVar(&status, "status", false, "show sync status")
	flags.StringVar(&remote, "remote", "", "add or update the origin remote")
	flags.BoolVar(&pull, "pull", false, "pull latest changes from the remote")
	flags.BoolVar(&push, "push", false, "push local commits to the remote")
	flags.BoolVar(&enable, "enable", false, "turn on automatic commits in the config file")
	cmd.MarkFlagsMutuallyExclusive("status", "remote", "pull", "push")
	return cmd
}

// enableSync turns on auto-commit in the user's config file.
func enableSync(out io.Writer) error {
	if cfg.Sync.Enabled && cfg.Sync.AutoCommit {
		fmt.Fprintln(out, "Sync is already enabled.")
		return nil
	}
	cfg.Sync.Enabled = true
	cfg.Sync.AutoCommit = true
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintf(out, "✓ Sync enabled in %s\n", config.Path())
	return nil
}

func printSyncStatus(out io.Writer, st *sync.Status, dataDir string) {
	fmt.Fprintln(out, "Git Sync Status")
	fmt.Fprintln(out, "───────────────")
	if cfg.Sync.Enabled {
		fmt.Fprintln(out, "Sync:       enabled")
	} else {
		fmt.Fprintln(out, "Sync:       disabled")
	}
	fmt.Fprintf(out, "Data dir:   %s\n", dataDir)

	if !st.IsRepo {
		fmt.Fprintln(out, "Repository: not initialized")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Run 'thoughts sync --init' to initialize.")
		return
	}

	fmt.Fprintln(out, "Repository: initialized")
	fmt.Fprintf(out, "Branch:     %s\n", st.Branch)
	if st.HasRemote {
		fmt.Fprintf(out, "Remote:     %s (%s)\n", st.RemoteName, st.RemoteURL)
		if st.Ahead > 0 || st.Behind > 0 {
			fmt.Fprintf(out, "Status:     %d ahead, %d behind\n", st.Ahead, st.Behind)
		} else {
			fmt.Fprintln(out, "Status:     up to date")
		}
	} else {
		fmt.Fprintln(out, "Remote:     not configured")
	}
	if st.HasChanges {
		fmt.Fprintln(out, "Changes:    uncommitted changes present")
	} else {
		fmt.Fprintln(out, "Changes:    clean")
	}
	if st.LastCommitAt != nil {
		fmt.Fprintf(out, "Last commit: %s\n", formatAge(now().Sub(*st.LastCommitAt)))
	}
}

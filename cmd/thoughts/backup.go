package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lifethoughts/internal/backup"
)

func backupCmd() *cobra.Command {
	var list bool
	var prune int

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create a backup of your data",
		Long: `Copy state.json into a timestamped folder under <data_dir>/backups.
Use --list to see existing backups and --prune N to keep only the newest N.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := backup.NewManager(cfg.GetDataDir(), version)
			out := cmd.OutOrStdout()

			switch {
			case list:
				return listBackups(out, manager)
			case cmd.Flags().Changed("prune"):
				deleted, err := manager.Prune(prune)
				if err != nil {
					return fmt.Errorf("failed to prune backups: %w", err)
				}
				fmt.Fprintf(out, "✓ Removed %d old backup(s), kept up to %d\n", deleted, prune)
				return nil
			}

			name, err := manager.Create()
			if err != nil {
				return fmt.Errorf("failed to create backup: %w", err)
			}
			info, err := manager.Get(name)
			if err != nil {
				return fmt.Errorf("failed to read backup info: %w", err)
			}
			fmt.Fprintf(out, "✓ Backup created: %s\n", name)
			fmt.Fprintf(out, "  Saved: %d, Recent: %d\n", info.Stats["saved"], info.Stats["recent"])
			fmt.Fprintf(out, "  Location: %s\n", info.Path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "list available backups")
	cmd.Flags().IntVar(&prune, "prune", 0, "delete all but the newest N backups")
	return cmd
}

func listBackups(out io.Writer, manager *backup.Manager) error {
	backups, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		fmt.Fprintln(out, "No backups available.")
		fmt.Fprintln(out, "Run 'thoughts backup' to create one.")
		return nil
	}

	fmt.Fprintln(out, "Available backups:")
	for _, b := range backups {
		fmt.Fprintf(out, "  %s  (%s)   Saved: %d\n", b.Name, formatAge(now().Sub(b.CreatedAt)), b.Stats["saved"])
	}
	return nil
}

func restoreCmd() *cobra.Command {
	var latest bool
	var force bool

	cmd := &cobra.Command{
		Use:   "restore [NAME]",
		Short: "Restore your data from a backup",
		Long: `Replace the current data with a backup. A safety backup of the current
data is taken first. Quit the app before restoring.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := backup.NewManager(cfg.GetDataDir(), version)
			out := cmd.OutOrStdout()

			var name string
			switch {
			case latest:
				backups, err := manager.List()
				if err != nil {
					return fmt.Errorf("failed to list backups: %w", err)
				}
				if len(backups) == 0 {
					return fmt.Errorf("no backups available")
				}
				name = backups[0].Name
			case len(args) == 1:
				name = args[0]
			default:
				return fmt.Errorf("no backup specified - use 'thoughts restore NAME' or 'thoughts restore --latest'")
			}

			info, err := manager.Get(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Restoring from backup: %s\n", info.Name)
			fmt.Fprintf(out, "  Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "  Saved: %d, Recent: %d\n\n", info.Stats["saved"], info.Stats["recent"])

			if !force {
				ok, err := confirm(cmd.InOrStdin(), out, "⚠ This will overwrite your current data. Continue? [y/N] ")
				if err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				if !ok {
					fmt.Fprintln(out, "Restore cancelled.")
					return nil
				}
			}

			safety, err := manager.Restore(name)
			if err != nil {
				return fmt.Errorf("failed to restore backup: %w", err)
			}
			fmt.Fprintf(out, "✓ Safety backup: %s\n", safety)
			fmt.Fprintf(out, "✓ Restored successfully from %s\n", name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&latest, "latest", false, "restore the most recent backup")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

// confirm asks a yes/no question; anything but y or yes is no.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// formatAge returns a human-readable age string.
func formatAge(d time.Duration) string {
	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit + " ago"
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	default:
		return plural(int(d.Hours()/24/7), "week")
	}
}

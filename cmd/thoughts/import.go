package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lifethoughts/internal/importer"
)

// importCmd merges saved thoughts from another source into the library.
func importCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import FORMAT FILE",
		Short: "Import saved thoughts",
		Long: `Import saved thoughts from another source. Formats:

  mobile   the mobile app's persisted state (JSON); also brings over
           preferences and the recently shown window
  ids      a text file with one thought ID per line (# starts a comment)

FILE may be - to read standard input. Thoughts already saved are kept, and
IDs this version does not know are reported and skipped.`,
		Example: `  thoughts import mobile life-thoughts-storage.json --dry-run
  thoughts import ids favourites.txt`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: importer.SupportedFormats(),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, path := args[0], args[1]

			env, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			imp := importer.GetImporter(format, env.catalog)
			if imp == nil {
				return fmt.Errorf("unknown import format %q (supported: %s)",
					format, strings.Join(importer.SupportedFormats(), ", "))
			}

			r, closeFn, err := openInput(cmd, path)
			if err != nil {
				return err
			}
			defer closeFn()

			out := cmd.OutOrStdout()
			if dryRun {
				p, err := imp.Preview(r)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				printPreview(out, p)
				return nil
			}

			result, err := imp.Import(r, env.store)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			printImportResult(out, imp.Name(), result)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would be imported without changing anything")
	return cmd
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

func printPreview(out io.Writer, p *importer.Preview) {
	fmt.Fprintln(out, "Dry run - nothing was changed.")
	fmt.Fprintf(out, "  Would save:    %d thought(s)\n", len(p.SavedIDs))
	if p.Preferences != nil {
		fmt.Fprintf(out, "  Preferences:   themes %s, reminder %s\n", themeList(p.Preferences.SelectedThemes), p.Preferences.NotificationTime)
	}
	if p.Recent != nil {
		fmt.Fprintf(out, "  Recent window: %d\n", len(p.Recent))
	}
	printSkipped(out, p.Unknown, p.Warnings)
}

func printImportResult(out io.Writer, name string, r *importer.ImportResult) {
	fmt.Fprintf(out, "✓ Imported from %s\n", name)
	fmt.Fprintf(out, "  New:           %d\n", r.Imported)
	fmt.Fprintf(out, "  Already saved: %d\n", r.AlreadySaved)
	if r.PreferencesApplied {
		fmt.Fprintln(out, "  Preferences:   applied")
	}
	if r.RecentApplied > 0 {
		fmt.Fprintf(out, "  Recent window: %d\n", r.RecentApplied)
	}
	printSkipped(out, r.Unknown, r.Warnings)
}

func printSkipped(out io.Writer, unknown, warnings []string) {
	if len(unknown) > 0 {
		fmt.Fprintf(out, "  Skipped unknown IDs: %s\n", strings.Join(unknown, ", "))
	}
	for _, w := range warnings {
		fmt.Fprintf(out, "  Warning: %s\n", w)
	}
}

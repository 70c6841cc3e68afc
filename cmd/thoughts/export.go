package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lifethoughts/internal/export"
	"lifethoughts/internal/fsutil"
)

// exportCmd writes the saved library as Markdown, JSON or TOML.
func exportCmd() *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export your saved thoughts",
		Long: `Export the saved library grouped by theme. Markdown is meant for reading
or printing; JSON and TOML carry the same data for other tools.`,
		Example: `  thoughts export > library.md
  thoughts export --format json --output library.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			env, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			lib := export.Build(env.catalog, env.store.SavedIDs(), now())
			data, err := export.Render(lib, f)
			if err != nil {
				return fmt.Errorf("failed to render export: %w", err)
			}

			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := fsutil.WriteFileAtomic(fsutil.ExpandHome(output), data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %d thought(s) to %s\n", lib.Total, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "markdown",
		"output format ("+strings.Join(export.SupportedFormats(), ", ")+")")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to FILE instead of stdout")
	return cmd
}

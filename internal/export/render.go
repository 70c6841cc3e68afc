package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"lifethoughts/internal/catalog"
)

// Render encodes lib in the given format.
func Render(lib *Library, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return []byte(Markdown(lib)), nil
	case FormatJSON:
		data, err := json.MarshalIndent(lib, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatTOML:
		data, err := toml.Marshal(lib)
		if err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// Markdown renders the library grouped by primary theme. Empty themes are
// left out of the body but kept in the summary table.
func Markdown(lib *Library) string {
	var sb strings.Builder

	sb.WriteString("# Saved Thoughts\n\n")
	fmt.Fprintf(&sb, "_Exported %s_\n\n", lib.GeneratedAt.Format("January 2, 2006 15:04"))

	if lib.Total == 0 {
		sb.WriteString("No saved thoughts yet.\n")
		writeUnknown(&sb, lib.Unknown)
		return sb.String()
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Theme | Saved |\n|---|---|\n")
	for _, tc := range lib.Themes {
		fmt.Fprintf(&sb, "| %s | %d |\n", tc.Title, tc.Count)
	}
	fmt.Fprintf(&sb, "| **Total** | **%d** |\n", lib.Total)

	for _, tc := range lib.Themes {
		if tc.Count == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n## %s\n", tc.Title)
		for _, t := range lib.Thoughts {
			if t.Theme != tc.Theme {
				continue
			}
			sb.WriteString("\n> ")
			sb.WriteString(strings.ReplaceAll(t.Text, "\n", "\n> "))
			sb.WriteString("\n")
			if t.Author != "" {
				fmt.Fprintf(&sb, ">\n> %s\n", catalog.Quote{Author: t.Author}.Attribution())
			}
		}
	}

	writeUnknown(&sb, lib.Unknown)
	return sb.String()
}

func writeUnknown(sb *strings.Builder, ids []string) {
	if len(ids) == 0 {
		return
	}
	sb.WriteString("\n## Not in this catalog\n\n")
	for _, id := range ids {
		fmt.Fprintf(sb, "- `%s`\n", id)
	}
}

// Package export renders the saved library as Markdown, JSON or TOML.
package export

import (
	"fmt"
	"strings"
	"time"

	"lifethoughts/internal/catalog"
)

// Format is an output format name.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatTOML     Format = "toml"
)

// SupportedFormats returns the format names in help order.
func SupportedFormats() []string {
	return []string{string(FormatMarkdown), string(FormatJSON), string(FormatTOML)}
}

// ParseFormat accepts a format name or a common alias ("md").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unknown format %q (want one of %s)", s, strings.Join(SupportedFormats(), ", "))
}

// Library is the exported view of the saved quotes.
type Library struct {
	GeneratedAt time.Time    `json:"generated_at" toml:"generated_at"`
	Total       int          `json:"total" toml:"total"`
	Unknown     []string     `json:"unknown_ids,omitempty" toml:"unknown_ids,omitempty"`
	Themes      []ThemeCount `json:"themes" toml:"themes"`
	Thoughts    []Thought    `json:"thoughts" toml:"thoughts"`
}

// ThemeCount counts saved quotes by primary theme.
type ThemeCount struct {
	Theme string `json:"theme" toml:"theme"`
	Title string `json:"title" toml:"title"`
	Count int    `json:"count" toml:"count"`
}

// Thought is one exported quote.
type Thought struct {
	ID     string   `json:"id" toml:"id"`
	Text   string   `json:"text" toml:"text"`
	Author string   `json:"author,omitempty" toml:"author,omitempty"`
	Theme  string   `json:"theme" toml:"theme"`
	Tags   []string `json:"tags" toml:"tags"`
}

// Build resolves savedIDs against the catalog. Quotes keep catalog order;
// IDs the catalog does not know are listed in Unknown.
func Build(c *catalog.Catalog, savedIDs []string, now time.Time) *Library {
	quotes := c.Saved(savedIDs)

	lib := &Library{
		GeneratedAt: now,
		Total:       len(quotes),
		Themes:      make([]ThemeCount, 0, len(catalog.AllThemes())),
		Thoughts:    make([]Thought, 0, len(quotes)),
	}

	counts := make(map[catalog.ThemeTag]int)
	for _, q := range quotes {
		counts[q.PrimaryTheme()]++
		tags := make([]string, len(q.Tags))
		for i, t := range q.Tags {
			tags[i] = string(t)
		}
		lib.Thoughts = append(lib.Thoughts, Thought{
			ID:     q.ID,
			Text:   q.Text,
			Author: q.Author,
			Theme:  string(q.PrimaryTheme()),
			Tags:   tags,
		})
	}
	for _, t := range catalog.AllThemes() {
		lib.Themes = append(lib.Themes, ThemeCount{Theme: string(t), Title: t.Title(), Count: counts[t]})
	}

	seen := make(map[string]struct{})
	for _, id := range savedIDs {
		if _, dup := seen[id]; dup || id == "" || c.Has(id) {
			continue
		}
		seen[id] = struct{}{}
		lib.Unknown = append(lib.Unknown, id)
	}
	return lib
}

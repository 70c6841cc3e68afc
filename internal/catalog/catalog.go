// Package catalog holds the static, read-only list of quotes and the
// selection queries the rest of the app runs against it: the date-seeded
// daily pick, the shuffled browsing bundle and the theme and library filters.
//
// A Catalog is validated once at construction and never mutated, so it is
// safe to share between goroutines.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed quotes.yaml
var seedYAML []byte

// Catalog is an immutable, ordered collection of quotes.
type Catalog struct {
	quotes []Quote
	byID   map[string]int
}

type catalogFile struct {
	Quotes []Quote `yaml:"quotes"`
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Parse(seedYAML)
})

// Default returns the seeded catalog shipped with the binary.
// The embedded data is validated by tests, so a failure here is a build defect.
func Default() *Catalog {
	c, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded quotes are invalid: %v", err))
	}
	return c
}

// Parse decodes a YAML document with a top-level "quotes" list.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse quotes: %w", err)
	}
	return New(f.Quotes)
}

// New builds a catalog from quotes, keeping their order. Every quote must have
// a unique non-empty ID, non-empty text and at least one known theme tag.
func New(quotes []Quote) (*Catalog, error) {
	c := &Catalog{
		quotes: make([]Quote, 0, len(quotes)),
		byID:   make(map[string]int, len(quotes)),
	}
	for i, q := range quotes {
		q.ID = strings.TrimSpace(q.ID)
		if q.ID == "" {
			return nil, fmt.Errorf("quote %d: id is required", i)
		}
		if _, dup := c.byID[q.ID]; dup {
			return nil, fmt.Errorf("quote %s: duplicate id", q.ID)
		}
		if strings.TrimSpace(q.Text) == "" {
			return nil, fmt.Errorf("quote %s: text is required", q.ID)
		}
		if len(q.Tags) == 0 {
			return nil, fmt.Errorf("quote %s: at least one tag is required", q.ID)
		}
		for _, tag := range q.Tags {
			if !tag.Valid() {
				return nil, fmt.Errorf("quote %s: unknown tag %q", q.ID, tag)
			}
		}
		switch q.Source {
		case SourceCurated, SourcePublicDomain:
		case "":
			q.Source = SourceCurated
		default:
			return nil, fmt.Errorf("quote %s: unknown source %q", q.ID, q.Source)
		}

		q.Tags = append([]ThemeTag(nil), q.Tags...)
		c.byID[q.ID] = len(c.quotes)
		c.quotes = append(c.quotes, q)
	}
	return c, nil
}

// Len returns the number of quotes.
func (c *Catalog) Len() int {
	return len(c.quotes)
}

// All returns every quote in catalog order.
func (c *Catalog) All() []Quote {
	return c.filter(func(Quote) bool { return true })
}

// Get looks up a quote by ID.
func (c *Catalog) Get(id string) (Quote, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Quote{}, false
	}
	return c.quotes[i], true
}

// Has reports whether id names a quote in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// ByTheme returns the quotes tagged with theme, in catalog order.
func (c *Catalog) ByTheme(theme ThemeTag) []Quote {
	return c.filter(func(q Quote) bool { return q.HasTheme(theme) })
}

// Saved returns the quotes whose IDs appear in ids, in catalog order.
// IDs that match nothing are skipped.
func (c *Catalog) Saved(ids []string) []Quote {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	return c.filter(func(q Quote) bool {
		_, ok := want[q.ID]
		return ok
	})
}

// Search returns the quotes among in whose text or author contains query,
// ignoring case. An empty query returns in unchanged.
func Search(in []Quote, query string) []Quote {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return in
	}
	var out []Quote
	for _, q := range in {
		if strings.Contains(strings.ToLower(q.Text), query) ||
			strings.Contains(strings.ToLower(q.Author), query) {
			out = append(out, q)
		}
	}
	return out
}

// FilterTheme returns the quotes among in tagged with theme. An empty theme
// means "all" and returns in unchanged.
func FilterTheme(in []Quote, theme ThemeTag) []Quote {
	if theme == "" {
		return in
	}
	var out []Quote
	for _, q := range in {
		if q.HasTheme(theme) {
			out = append(out, q)
		}
	}
	return out
}

func (c *Catalog) filter(keep func(Quote) bool) []Quote {
	out := make([]Quote, 0)
	for _, q := range c.quotes {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}

// Package importer brings saved quotes and settings in from other sources:
// the mobile app's persisted state and plain ID lists.
package importer

import (
	"fmt"
	"io"
	"slices"

	"lifethoughts/internal/catalog"
	"lifethoughts/internal/store"
)

// ImportResult contains statistics about an import operation.
type ImportResult struct {
	Imported           int      // newly saved quotes
	AlreadySaved       int      // known quotes that were saved before
	Unknown            []string // IDs the catalog does not contain
	PreferencesApplied bool
	RecentApplied      int
	Warnings           []string
}

// Preview is what an import would change, resolved against the catalog.
type Preview struct {
	SavedIDs    []string           // known IDs, input order, deduplicated
	Unknown     []string           // IDs skipped because the catalog lacks them
	Preferences *store.Preferences // nil when the source carries none or they are invalid
	Recent      []string           // nil when the source carries no recent window
	Warnings    []string
}

// Importer defines the interface for import implementations.
type Importer interface {
	// Import reads the source and merges it into the store.
	Import(reader io.Reader, s *store.Store) (*ImportResult, error)

	// Preview reads the source without touching any store.
	Preview(reader io.Reader) (*Preview, error)

	// Name returns the importer name (e.g., "mobile", "ids").
	Name() string
}

// GetImporter returns the importer for format, or nil if there is none.
func GetImporter(format string, c *catalog.Catalog) Importer {
	switch format {
	case "mobile":
		return &MobileImporter{catalog: c}
	case "ids":
		return &IDListImporter{catalog: c}
	default:
		return nil
	}
}

// SupportedFormats returns the list of supported import formats.
func SupportedFormats() []string {
	return []string{"mobile", "ids"}
}

// resolve splits ids into known and unknown, dropping blanks and repeats.
func resolve(c *catalog.Catalog, ids []string) (known, unknown []string) {
	seen := make(map[string]struct{}, len(ids))
	known = []string{}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if c.Has(id) {
			known = append(known, id)
		} else {
			unknown = append(unknown, id)
		}
	}
	return known, unknown
}

// apply writes a preview into the store as one change.
func apply(p *Preview, s *store.Store) (*ImportResult, error) {
	before := 0
	for _, id := range p.SavedIDs {
		if s.IsThoughtSaved(id) {
			before++
		}
	}

	added, err := s.Import(p.SavedIDs, p.Preferences, p.Recent)
	if err != nil {
		return nil, fmt.Errorf("failed to import: %w", err)
	}

	return &ImportResult{
		Imported:           added,
		AlreadySaved:       before,
		Unknown:            slices.Clone(p.Unknown),
		PreferencesApplied: p.Preferences != nil,
		RecentApplied:      len(p.Recent),
		Warnings:           slices.Clone(p.Warnings),
	}, nil
}

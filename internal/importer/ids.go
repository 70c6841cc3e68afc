package importer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"lifethoughts/internal/catalog"
	"lifethoughts/internal/store"
)

// IDListImporter reads one quote ID per line. Blank lines and anything after
// a '#' are ignored.
type IDListImporter struct {
	catalog *catalog.Catalog
}

// Name returns the importer name.
func (l *IDListImporter) Name() string {
	return "ids"
}

// Import saves every known ID in the list.
func (l *IDListImporter) Import(reader io.Reader, s *store.Store) (*ImportResult, error) {
	p, err := l.Preview(reader)
	if err != nil {
		return nil, err
	}
	return apply(p, s)
}

// Preview returns the IDs that would be saved.
func (l *IDListImporter) Preview(reader io.Reader) (*Preview, error) {
	ids, err := parseIDList(reader)
	if err != nil {
		return nil, err
	}
	p := &Preview{}
	p.SavedIDs, p.Unknown = resolve(l.catalog, ids)
	return p, nil
}

func parseIDList(reader io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if line = strings.TrimSpace(line); line != "" {
			ids = append(ids, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return ids, nil
}

package catalog

import (
	"errors"
	"math/rand/v2"
	"unicode/utf16"
)

// ErrEmptySelection is returned by SelectDaily when the selected themes match
// no quotes. Returning an arbitrary quote instead would break the promise that
// the daily pick matches the user's themes.
var ErrEmptySelection = errors.New("no quotes match the selected themes")

// SelectDaily returns the daily pick for date.
//
// The pool is every quote sharing a tag with themes, minus the recently shown
// IDs. If excluding recent IDs empties the pool, recency is dropped and the
// full theme pool is used. The pick is pool[hash(date) mod len(pool)], so the
// same date and pool always yield the same quote.
func (c *Catalog) SelectDaily(date string, themes []ThemeTag, recentlyShown []string) (Quote, error) {
	candidates := c.candidates(themes)
	if len(candidates) == 0 {
		return Quote{}, ErrEmptySelection
	}

	pool := withoutIDs(candidates, idSet(recentlyShown))
	if len(pool) == 0 {
		pool = candidates
	}

	idx := DateSeed(date) % uint32(len(pool))
	return pool[idx], nil
}

// SelectBundle returns up to count theme-matching quotes for browsing,
// excluding excludeID and every recently shown ID, in random order.
// It returns an empty slice rather than an error when nothing is left.
//
// r supplies the randomness; nil uses the process-wide source. Tests pass a
// seeded generator.
func (c *Catalog) SelectBundle(excludeID string, themes []ThemeTag, recentlyShown []string, count int, r *rand.Rand) []Quote {
	if count <= 0 {
		return []Quote{}
	}

	skip := idSet(recentlyShown)
	skip[excludeID] = struct{}{}
	pool := withoutIDs(c.candidates(themes), skip)

	shuffle := rand.Shuffle
	if r != nil {
		shuffle = r.Shuffle
	}
	shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	if len(pool) > count {
		pool = pool[:count]
	}
	return pool
}

// DateSeed hashes s with the 32-bit rolling hash h = h*31 + c over its UTF-16
// code units, wrapping like a signed 32-bit integer, and returns the absolute
// value. It is stable across runs and platforms.
func DateSeed(s string) uint32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(unit)
	}
	if h < 0 {
		return uint32(-int64(h))
	}
	return uint32(h)
}

// candidates returns a fresh slice of the quotes that share a tag with themes.
func (c *Catalog) candidates(themes []ThemeTag) []Quote {
	if len(themes) == 0 {
		return nil
	}
	return c.filter(func(q Quote) bool { return q.HasAnyTheme(themes) })
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids)+1)
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func withoutIDs(in []Quote, skip map[string]struct{}) []Quote {
	out := make([]Quote, 0, len(in))
	for _, q := range in {
		if _, ok := skip[q.ID]; !ok {
			out = append(out, q)
		}
	}
	return out
}

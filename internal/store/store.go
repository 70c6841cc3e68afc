// Package store owns the user's preferences, saved quotes and the window of
// recently shown quotes.
//
// Every mutation is applied in memory under one lock and is immediately
// visible to readers. The full aggregate is then handed to a background
// writer which persists it through a Backend; write failures are logged and
// reported but never undo the in-memory change.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Store is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	prefs  Preferences
	saved  map[string]struct{}
	recent []string
	closed bool

	backend Backend
	writer  *writer
	logger  *slog.Logger

	hookMu  sync.RWMutex
	onSave  func(SaveContext)
	onError func(error)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithErrorHook registers fn to receive background write failures.
func WithErrorHook(fn func(error)) Option {
	return func(s *Store) { s.onError = fn }
}

// New opens a Store persisted to dataDir/state.json.
func New(dataDir string, opts ...Option) (*Store, error) {
	b, err := NewFileBackend(dataDir)
	if err != nil {
		return nil, err
	}
	return Open(b, opts...), nil
}

// Open loads the snapshot from b once and starts the writer. Unusable
// persisted state is logged and replaced by defaults; it is never fatal.
func Open(b Backend, opts ...Option) *Store {
	s := &Store{
		backend: b,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := b.Load()
	if err != nil {
		s.logger.Warn("persisted state unusable", "backend", b.Name(), "err", err)
	}
	if snap == nil {
		snap = DefaultSnapshot()
	}
	s.prefs = snap.Preferences.clone()
	s.saved = idSliceToSet(snap.SavedThoughtIDs)
	s.recent = normalizeRecent(snap.RecentlyShownIDs)

	s.writer = newWriter(b.Save, s.afterWrite)
	return s
}

// SetOnSave registers a callback run after each successful write with the
// context of every mutation the write covered. It is used for git sync.
func (s *Store) SetOnSave(fn func(SaveContext)) {
	s.hookMu.Lock()
	s.onSave = fn
	s.hookMu.Unlock()
}

// SetErrorHook replaces the write failure callback.
func (s *Store) SetErrorHook(fn func(error)) {
	s.hookMu.Lock()
	s.onError = fn
	s.hookMu.Unlock()
}

// Backend returns the backend the store persists to.
func (s *Store) Backend() Backend {
	return s.backend
}

// =============================================================================
// Reads
// =============================================================================

// Preferences returns a copy of the current preferences.
func (s *Store) Preferences() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.clone()
}

// IsThoughtSaved reports whether id is in the saved set.
func (s *Store) IsThoughtSaved(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.saved[id]
	return ok
}

// SavedIDs returns the saved IDs, sorted.
func (s *Store) SavedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return idSetToSlice(s.saved)
}

// SavedCount returns the number of saved quotes.
func (s *Store) SavedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.saved)
}

// RecentlyShown returns the recent window, most recent first.
func (s *Store) RecentlyShown() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.recent)
}

// HasRecentlyShown reports whether id is in the recent window.
func (s *Store) HasRecentlyShown(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.recent, id)
}

// Snapshot returns a copy of the whole aggregate.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() *Snapshot {
	return &Snapshot{
		Preferences:      s.prefs.clone(),
		SavedThoughtIDs:  idSetToSlice(s.saved),
		RecentlyShownIDs: slices.Clone(s.recent),
	}
}

// =============================================================================
// Mutations
// =============================================================================

// SetPreferences merges the non-nil fields of patch into the preferences.
// The merged result must validate; otherwise nothing changes and the error
// wraps ErrInvalidPreferences.
func (s *Store) SetPreferences(patch PreferencesPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := patch.apply(s.prefs)
	if err := ValidatePreferences(next); err != nil {
		return err
	}
	s.prefs = next
	s.persistLocked(SaveContext{Operation: "update", ItemType: "preferences"})
	return nil
}

// SaveThought adds id to the saved set. Saving twice is a no-op.
func (s *Store) SaveThought(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.saved[id]; ok {
		return
	}
	s.saved[id] = struct{}{}
	s.persistLocked(SaveContext{Operation: "save", ItemType: "thought", ItemName: id})
}

// UnsaveThought removes id from the saved set. Removing an absent ID is a
// no-op.
func (s *Store) UnsaveThought(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.saved[id]; !ok {
		return
	}
	delete(s.saved, id)
	s.persistLocked(SaveContext{Operation: "unsave", ItemType: "thought", ItemName: id})
}

// ToggleSaved flips id's membership and reports whether it is now saved.
func (s *Store) ToggleSaved(id string) bool {
	if s.IsThoughtSaved(id) {
		s.UnsaveThought(id)
		return false
	}
	s.SaveThought(id)
	return true
}

// AddShownThought records id as the most recently shown quote. The window
// keeps the newest RecentWindow entries; repeats are kept as-is.
func (s *Store) AddShownThought(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	keep := min(len(s.recent), RecentWindow-1)
	next := make([]string, 0, keep+1)
	next = append(next, id)
	next = append(next, s.recent[:keep]...)
	s.recent = next
	s.persistLocked(SaveContext{Operation: "show", ItemType: "thought", ItemName: id})
}

// Import merges a batch of saved IDs and optionally replaces the preferences
// and the recent window, as one persisted change. It returns how many IDs
// were newly saved.
func (s *Store) Import(savedIDs []string, prefs *Preferences, recent []string) (int, error) {
	if prefs != nil {
		if err := ValidatePreferences(*prefs); err != nil {
			return 0, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for id := range idSliceToSet(savedIDs) {
		if _, ok := s.saved[id]; !ok {
			s.saved[id] = struct{}{}
			added++
		}
	}
	if prefs != nil {
		s.prefs = prefs.clone()
	}
	if recent != nil {
		s.recent = normalizeRecent(recent)
	}
	s.persistLocked(SaveContext{
		Operation: "import",
		ItemType:  "library",
		ItemName:  fmt.Sprintf("%d saved", added),
	})
	return added, nil
}

func (s *Store) persistLocked(sc SaveContext) {
	if s.closed {
		s.logger.Debug("store closed; change not persisted", "op", sc.Operation)
		return
	}
	sc.Filename = s.backend.Name()
	s.writer.submit(s.snapshotLocked(), sc)
}

func (s *Store) afterWrite(j job, err error) {
	s.hookMu.RLock()
	onSave, onError := s.onSave, s.onError
	s.hookMu.RUnlock()

	if err != nil {
		s.logger.Error("persist state failed", "backend", s.backend.Name(), "err", err)
		if onError != nil {
			onError(err)
		}
		return
	}
	s.logger.Debug("state persisted", "backend", s.backend.Name(), "changes", len(j.saves))
	if onSave != nil {
		for _, sc := range j.saves {
			onSave(sc)
		}
	}
}

// =============================================================================
// Lifecycle
// =============================================================================

// Flush blocks until every change made before the call is written, or ctx
// is done.
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.flush(ctx)
}

// Close writes pending changes and stops the writer. Changes made after
// Close stay in memory only.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.writer.close()
	return nil
}

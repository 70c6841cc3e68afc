package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"lifethoughts/internal/fsutil"
)

const (
	dataDirPerm  os.FileMode = 0700
	dataFilePerm os.FileMode = 0600

	// StateFile is the file name FileBackend persists to.
	StateFile = "state.json"
)

// Backend persists whole snapshots.
//
// Load never returns a nil snapshot. A non-nil error alongside a snapshot is
// a *RecoveryError: the stored data was unusable and the returned snapshot is
// a recovered or default one.
type Backend interface {
	Name() string
	Load() (*Snapshot, error)
	Save(*Snapshot) error
}

// RecoveryError reports that persisted state could not be used as-is.
type RecoveryError struct {
	Cause     error
	Recovered bool   // true when the .bak copy was used
	MovedTo   string // where the broken file was moved, if anywhere
}

func (e *RecoveryError) Error() string {
	if e.Recovered {
		return fmt.Sprintf("%v (recovered from backup)", e.Cause)
	}
	if e.MovedTo != "" {
		return fmt.Sprintf("%v (reset to defaults; original moved to %s)", e.Cause, e.MovedTo)
	}
	return fmt.Sprintf("%v (reset to defaults)", e.Cause)
}

func (e *RecoveryError) Unwrap() error { return e.Cause }

// =============================================================================
// File backend
// =============================================================================

// FileBackend stores the snapshot as JSON in dir/state.json.
type FileBackend struct {
	dir string
	now func() time.Time
}

// NewFileBackend creates dir if needed and returns a backend rooted there.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, dataDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileBackend{dir: dir, now: time.Now}, nil
}

// Name returns the state file name.
func (b *FileBackend) Name() string { return StateFile }

// Path returns the full path of the state file.
func (b *FileBackend) Path() string { return filepath.Join(b.dir, StateFile) }

// Dir returns the data directory.
func (b *FileBackend) Dir() string { return b.dir }

// Save writes snap atomically, keeping the previous file as state.json.bak.
func (b *FileBackend) Save(snap *Snapshot) error {
	data, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	path := b.Path()
	fsutil.BestEffortBackup(path, dataFilePerm)
	if err := fsutil.WriteFileAtomic(path, data, dataFilePerm); err != nil {
		return fmt.Errorf("write %s: %w", StateFile, err)
	}
	return nil
}

// Load reads the state file. A missing file yields defaults with no error.
func (b *FileBackend) Load() (*Snapshot, error) {
	path := b.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSnapshot(), nil
		}
		return DefaultSnapshot(), &RecoveryError{Cause: fmt.Errorf("read %s: %w", StateFile, err)}
	}

	snap, err := DecodeSnapshot(data)
	if err == nil {
		return snap, nil
	}
	return b.recover(fmt.Errorf("parse %s: %w", StateFile, err))
}

func (b *FileBackend) recover(cause error) (*Snapshot, error) {
	path := b.Path()

	if bak, err := os.ReadFile(path + ".bak"); err == nil {
		if snap, err := DecodeSnapshot(bak); err == nil {
			moved, _ := fsutil.MoveAside(path, b.now())
			return snap, &RecoveryError{Cause: cause, Recovered: true, MovedTo: moved}
		}
	}

	moved, _ := fsutil.MoveAside(path, b.now())
	return DefaultSnapshot(), &RecoveryError{Cause: cause, MovedTo: moved}
}

// EncodeSnapshot renders snap as indented JSON with the saved set sorted.
func EncodeSnapshot(snap *Snapshot) ([]byte, error) {
	out := *snap
	out.SavedThoughtIDs = idSetToSlice(idSliceToSet(snap.SavedThoughtIDs))
	if out.RecentlyShownIDs == nil {
		out.RecentlyShownIDs = []string{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize state: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeSnapshot parses and normalises persisted state.
//
// Missing preference fields keep their defaults. Preferences that fail
// validation are replaced by defaults while the saved and recent lists are
// kept, so one bad value does not cost the user their library.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("state is empty")
	}

	snap := DefaultSnapshot()
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, err
	}
	if err := ValidatePreferences(snap.Preferences); err != nil {
		snap.Preferences = DefaultPreferences()
	}
	snap.SavedThoughtIDs = idSetToSlice(idSliceToSet(snap.SavedThoughtIDs))
	snap.RecentlyShownIDs = normalizeRecent(snap.RecentlyShownIDs)
	return snap, nil
}

func normalizeRecent(ids []string) []string {
	out := make([]string, 0, min(len(ids), RecentWindow))
	for _, id := range ids {
		if id == "" {
			continue
		}
		out = append(out, id)
		if len(out) == RecentWindow {
			break
		}
	}
	return out
}

// =============================================================================
// Memory backend
// =============================================================================

// MemoryBackend keeps the last saved snapshot in memory. FailWith makes
// subsequent saves return an error.
type MemoryBackend struct {
	mu    sync.Mutex
	snap  *Snapshot
	saves int
	fail  error
}

// NewMemoryBackend returns a backend seeded with snap; nil means defaults.
func NewMemoryBackend(snap *Snapshot) *MemoryBackend {
	return &MemoryBackend{snap: cloneSnapshot(snap)}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Load() (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return DefaultSnapshot(), nil
	}
	return cloneSnapshot(m.snap), nil
}

func (m *MemoryBackend) Save(snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.snap = cloneSnapshot(snap)
	m.saves++
	return nil
}

// FailWith sets the error returned by Save. nil restores normal behaviour.
func (m *MemoryBackend) FailWith(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}

// Saves returns the number of successful saves.
func (m *MemoryBackend) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Stored returns a copy of the last saved snapshot, or nil.
func (m *MemoryBackend) Stored() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneSnapshot(m.snap)
}

func cloneSnapshot(s *Snapshot) *Snapshot {
	if s == nil {
		return nil
	}
	return &Snapshot{
		Preferences:      s.Preferences.clone(),
		SavedThoughtIDs:  slices.Clone(s.SavedThoughtIDs),
		RecentlyShownIDs: slices.Clone(s.RecentlyShownIDs),
	}
}

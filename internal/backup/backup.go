// Package backup keeps timestamped copies of the app state under
// <data_dir>/backups and restores them.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"lifethoughts/internal/fsutil"
	"lifethoughts/internal/store"
)

const (
	ManifestVersion = "1.0"
	ManifestFile    = "manifest.json"
	BackupsDir      = "backups"

	nameLayout = "2006-01-02_150405"
)

// ErrNotFound is returned when a named backup does not exist.
var ErrNotFound = errors.New("backup not found")

// dataFiles are copied into each backup.
var dataFiles = []string{store.StateFile}

// Manager handles backup and restore operations.
type Manager struct {
	dataDir    string
	backupDir  string
	appVersion string
	now        func() time.Time
}

// Manifest describes one backup.
type Manifest struct {
	Version    string         `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	AppVersion string         `json:"app_version"`
	Files      []string       `json:"files"`
	Stats      map[string]int `json:"stats"`
}

// Info summarises a backup for listing.
type Info struct {
	Name      string // 2025-12-15_143022_123
	Path      string
	CreatedAt time.Time
	Stats     map[string]int // saved, recent
}

// NewManager creates a backup manager rooted at dataDir.
func NewManager(dataDir, appVersion string) *Manager {
	return &Manager{
		dataDir:    dataDir,
		backupDir:  filepath.Join(dataDir, BackupsDir),
		appVersion: appVersion,
		now:        time.Now,
	}
}

// SetNowFunc overrides the clock used for backup names. nil resets it.
func (m *Manager) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	m.now = now
}

// Create copies the data files into a new timestamped directory and returns
// its name.
func (m *Manager) Create() (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	now := m.now()
	name := fmt.Sprintf("%s_%03d", now.Format(nameLayout), now.Nanosecond()/1e6)
	dir := filepath.Join(m.backupDir, name)
	if fsutil.Exists(dir) {
		return "", fmt.Errorf("backup %s already exists", name)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}

	manifest := Manifest{
		Version:    ManifestVersion,
		CreatedAt:  now,
		AppVersion: m.appVersion,
		Files:      []string{},
		Stats:      map[string]int{},
	}

	for _, filename := range dataFiles {
		src := filepath.Join(m.dataDir, filename)
		if !fsutil.Exists(src) {
			continue
		}
		if err := fsutil.CopyFileAtomic(src, filepath.Join(dir, filename), 0600); err != nil {
			_ = os.RemoveAll(dir)
			return "", fmt.Errorf("failed to copy %s: %w", filename, err)
		}
		manifest.Files = append(manifest.Files, filename)

		if filename == store.StateFile {
			if snap, err := readSnapshot(src); err == nil {
				manifest.Stats["saved"] = len(snap.SavedThoughtIDs)
				manifest.Stats["recent"] = len(snap.RecentlyShownIDs)
			}
		}
	}

	if err := writeJSON(filepath.Join(dir, ManifestFile), manifest); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return name, nil
}

// List returns the backups, newest first. Directories that are neither
// described by a manifest nor named like a backup are skipped.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := m.info(entry.Name())
		if err != nil {
			continue
		}
		backups = append(backups, *info)
	}

	slices.SortFunc(backups, func(a, b Info) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return backups, nil
}

// Get returns information about one backup.
func (m *Manager) Get(name string) (*Info, error) {
	if err := validateBackupName(name); err != nil {
		return nil, err
	}
	if !fsutil.Exists(filepath.Join(m.backupDir, name)) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return m.info(name)
}

func (m *Manager) info(name string) (*Info, error) {
	dir := filepath.Join(m.backupDir, name)

	var manifest Manifest
	if err := readJSON(filepath.Join(dir, ManifestFile), &manifest); err != nil {
		createdAt, parseErr := parseBackupName(name)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid backup: %s", name)
		}
		manifest.CreatedAt = createdAt
	}
	if manifest.Stats == nil {
		manifest.Stats = map[string]int{}
	}
	return &Info{Name: name, Path: dir, CreatedAt: manifest.CreatedAt, Stats: manifest.Stats}, nil
}

// Restore replaces the live data files with the named backup. The backup is
// validated before anything is touched and a safety backup of the current
// state is taken first; its name is returned.
func (m *Manager) Restore(name string) (string, error) {
	if err := validateBackupName(name); err != nil {
		return "", err
	}
	dir := filepath.Join(m.backupDir, name)
	if !fsutil.Exists(dir) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	var manifest Manifest
	if err := readJSON(filepath.Join(dir, ManifestFile), &manifest); err != nil {
		manifest.Files = dataFiles
	}

	for _, filename := range manifest.Files {
		if filename != filepath.Base(filename) {
			return "", fmt.Errorf("backup %s lists invalid file %q", name, filename)
		}
		src := filepath.Join(dir, filename)
		if filename == store.StateFile && fsutil.Exists(src) {
			if _, err := readSnapshot(src); err != nil {
				return "", fmt.Errorf("backup %s has an unreadable %s: %w", name, filename, err)
			}
		}
	}

	safety, err := m.Create()
	if err != nil {
		return "", fmt.Errorf("failed to create safety backup: %w", err)
	}

	for _, filename := range manifest.Files {
		src := filepath.Join(dir, filename)
		if !fsutil.Exists(src) {
			continue
		}
		if err := fsutil.CopyFileAtomic(src, filepath.Join(m.dataDir, filename), 0600); err != nil {
			return safety, fmt.Errorf("failed to restore %s (safety backup: %s): %w", filename, safety, err)
		}
	}
	return safety, nil
}

// RestoreLatest restores the most recent backup.
func (m *Manager) RestoreLatest() (string, error) {
	backups, err := m.List()
	if err != nil {
		return "", err
	}
	if len(backups) == 0 {
		return "", errors.New("no backups available")
	}
	return m.Restore(backups[0].Name)
}

// Delete removes a backup.
func (m *Manager) Delete(name string) error {
	if err := validateBackupName(name); err != nil {
		return err
	}
	dir := filepath.Join(m.backupDir, name)
	if !fsutil.Exists(dir) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return os.RemoveAll(dir)
}

// Prune keeps the keep newest backups and deletes the rest.
func (m *Manager) Prune(keep int) (int, error) {
	if keep < 0 {
		return 0, errors.New("keep must be non-negative")
	}
	backups, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}

	deleted := 0
	for _, b := range backups[keep:] {
		if err := m.Delete(b.Name); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func readSnapshot(path string) (*store.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return store.DecodeSnapshot(data)
}

func validateBackupName(name string) error {
	if name == "" {
		return errors.New("backup name is required")
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	if _, err := parseBackupName(name); err != nil {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, 0600)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// parseBackupName accepts 2006-01-02_150405 and 2006-01-02_150405_000.
func parseBackupName(name string) (time.Time, error) {
	if len(name) < len(nameLayout) {
		return time.Time{}, errors.New("invalid backup name")
	}
	t, err := time.Parse(nameLayout, name[:len(nameLayout)])
	if err != nil {
		return time.Time{}, err
	}

	rest := name[len(nameLayout):]
	if rest == "" {
		return t, nil
	}
	if len(rest) != 4 || rest[0] != '_' {
		return time.Time{}, errors.New("invalid backup name")
	}
	ms, err := strconv.Atoi(rest[1:])
	if err != nil || ms < 0 {
		return time.Time{}, errors.New("invalid milliseconds")
	}
	return t.Add(time.Duration(ms) * time.Millisecond), nil
}

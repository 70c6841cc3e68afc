package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifethoughts/internal/config"
	"lifethoughts/internal/notify"
	"lifethoughts/internal/store"
)

var testNow = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// setupCLI points the config at a temp data directory and fixes the clock.
// extra is appended to the config file.
func setupCLI(t *testing.T, extra ...string) string {
	t.Helper()
	configHome := t.TempDir()
	dataDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	dir := filepath.Join(configHome, config.AppName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("data_dir: "+dataDir+"\n"+strings.Join(extra, "\n")), 0644))

	prev := now
	now = func() time.Time { return testNow }
	t.Cleanup(func() { now = prev })
	return dataDir
}

// run executes the CLI with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, "", args...)
	require.NoError(t, err, "thoughts %s: %s", strings.Join(args, " "), out)
	return out
}

func readState(t *testing.T, dataDir string) *store.Snapshot {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dataDir, store.StateFile))
	require.NoError(t, err)
	snap, err := store.DecodeSnapshot(data)
	require.NoError(t, err)
	return snap
}

func TestToday_DeterministicAndNotRecorded(t *testing.T) {
	dataDir := setupCLI(t)
	mustRun(t, "prefs", "set", "--themes", "mindfulness")

	out := mustRun(t, "today", "--date", "2024-01-01", "--json")
	var got struct {
		Date string `json:"date"`
		ID   string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "2024-01-01", got.Date)
	assert.Equal(t, "mindfulness-3", got.ID)

	again := mustRun(t, "today", "--date", "2024-01-01", "--json")
	assert.Equal(t, out, again)
	assert.Empty(t, readState(t, dataDir).RecentlyShownIDs)
}

func TestToday_InvalidDate(t *testing.T) {
	setupCLI(t)
	_, err := run(t, "", "today", "--date", "01/02/2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestBundle_RecordsShown(t *testing.T) {
	dataDir := setupCLI(t)

	mustRun(t, "bundle", "--count", "3", "--no-record")
	_, err := os.Stat(filepath.Join(dataDir, store.StateFile))
	assert.True(t, os.IsNotExist(err), "--no-record must not write state")

	mustRun(t, "bundle", "--count", "3")
	assert.Len(t, readState(t, dataDir).RecentlyShownIDs, 3)
}

func TestSaveUnsaveLibrary(t *testing.T) {
	dataDir := setupCLI(t)

	out := mustRun(t, "save", "stoicism-7")
	assert.Contains(t, out, "Saved stoicism-7")
	mustRun(t, "save", "joy-1")
	assert.Contains(t, mustRun(t, "save", "joy-1"), "Already saved")

	out = mustRun(t, "library")
	assert.Contains(t, out, "Saved thoughts (2 of 2)")
	assert.Less(t, strings.Index(out, "stoicism-7"), strings.Index(out, "joy-1"), "catalog order")

	out = mustRun(t, "library", "--theme", "joy")
	assert.Contains(t, out, "joy-1")
	assert.NotContains(t, out, "stoicism-7")

	out = mustRun(t, "library", "--search", "epictetus")
	assert.Contains(t, out, "stoicism-7")

	mustRun(t, "unsave", "stoicism-7")
	assert.Equal(t, []string{"joy-1"}, readState(t, dataDir).SavedThoughtIDs)
}

func TestSave_UnknownID(t *testing.T) {
	setupCLI(t)
	_, err := run(t, "", "save", "no-such-thought")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown thought")
}

func TestPrefsSet(t *testing.T) {
	dataDir := setupCLI(t)

	out := mustRun(t, "prefs", "set", "--themes", "joy,stoicism", "--time", "7:30", "--mode", "dark", "--font-scale", "1.1")
	assert.Contains(t, out, "Preferences updated")

	prefs := readState(t, dataDir).Preferences
	assert.Equal(t, "07:30", prefs.NotificationTime)
	assert.Equal(t, store.ThemeModeDark, prefs.ThemeMode)
	assert.InDelta(t, 1.1, prefs.FontScale, 1e-9)
	assert.Len(t, prefs.SelectedThemes, 2)

	_, err := run(t, "", "prefs", "set", "--time", "25:00")
	require.ErrorIs(t, err, notify.ErrInvalidTime)
	assert.Equal(t, "07:30", readState(t, dataDir).Preferences.NotificationTime)

	_, err = run(t, "", "prefs", "set", "--font-scale", "1.5")
	require.ErrorIs(t, err, store.ErrInvalidPreferences)
	assert.InDelta(t, 1.1, readState(t, dataDir).Preferences.FontScale, 1e-9)

	_, err = run(t, "", "prefs", "set")
	require.Error(t, err, "no flags is an error")

	_, err = run(t, "", "prefs", "set", "--themes", "cheese")
	require.Error(t, err)
}

func TestExport(t *testing.T) {
	dataDir := setupCLI(t)
	mustRun(t, "save", "growth-1")

	out := mustRun(t, "export")
	assert.Contains(t, out, "# Saved Thoughts")
	assert.Contains(t, out, "## Growth")

	path := filepath.Join(dataDir, "library.json")
	mustRun(t, "export", "--format", "json", "--output", path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var lib struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(data, &lib))
	assert.Equal(t, 1, lib.Total)

	_, err = run(t, "", "export", "--format", "pdf")
	require.Error(t, err)
}

func TestImportIDs(t *testing.T) {
	dataDir := setupCLI(t)

	out, err := run(t, "joy-1\n# favourites\nretired-9\n", "import", "ids", "-", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Would save:    1")
	assert.Contains(t, out, "retired-9")

	out, err = run(t, "joy-1\ngrowth-2\n", "import", "ids", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "New:           2")
	assert.ElementsMatch(t, []string{"growth-2", "joy-1"}, readState(t, dataDir).SavedThoughtIDs)

	_, err = run(t, "", "import", "csv", "-")
	require.Error(t, err)
}

func TestBackupAndRestore(t *testing.T) {
	dataDir := setupCLI(t)

	mustRun(t, "save", "joy-1")
	out := mustRun(t, "backup")
	assert.Contains(t, out, "Backup created")
	assert.Contains(t, out, "Saved: 1")

	mustRun(t, "save", "joy-2")
	assert.Contains(t, mustRun(t, "backup", "--list"), "Available backups:")

	// Declining the prompt changes nothing.
	out, err := run(t, "n\n", "restore", "--latest")
	require.NoError(t, err)
	assert.Contains(t, out, "Restore cancelled.")
	assert.Len(t, readState(t, dataDir).SavedThoughtIDs, 2)

	out = mustRun(t, "restore", "--latest", "--force")
	assert.Contains(t, out, "Restored successfully")
	assert.Equal(t, []string{"joy-1"}, readState(t, dataDir).SavedThoughtIDs)

	_, err = run(t, "", "restore")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	setupCLI(t)
	assert.Contains(t, mustRun(t, "version"), "thoughts version dev")
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{2 * time.Hour, "2 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{15 * 24 * time.Hour, "2 weeks ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAge(tt.d), tt.d.String())
	}
}

func TestWrap(t *testing.T) {
	lines := wrap("the quick brown fox jumps over the lazy dog", 10)
	for _, l := range lines {
		assert.LessOrEqual(t, len(l), 10, l)
	}
	assert.Equal(t, "the quick brown fox jumps over the lazy dog", strings.Join(lines, " "))

	for _, l := range wrap("short", 60) {
		assert.Equal(t, "short", l, "lines are not padded to the width")
	}
}

func TestRemind_DisabledInConfig(t *testing.T) {
	dataDir := setupCLI(t, "notifications:\n  enabled: false\n")

	out := mustRun(t, "remind", "--once")
	assert.Contains(t, out, "Reminders are turned off")
	assert.Contains(t, out, "notifications.enabled")
	assert.NotContains(t, out, "Next reminder")
	assert.NoDirExists(t, filepath.Join(dataDir, "logs"))
}

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"lifethoughts/internal/catalog"
)

func createTestStore(t *testing.T) (*Store, *MemoryBackend) {
	t.Helper()
	b := NewMemoryBackend(nil)
	s := Open(b)
	t.Cleanup(func() { _ = s.Close() })
	return s, b
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
}

// =============================================================================
// Defaults
// =============================================================================

func TestOpen_Defaults(t *testing.T) {
	s, _ := createTestStore(t)

	got := s.Preferences()
	want := DefaultPreferences()
	if !slices.Equal(got.SelectedThemes, want.SelectedThemes) {
		t.Errorf("SelectedThemes = %v, want %v", got.SelectedThemes, want.SelectedThemes)
	}
	if got.NotificationTime != "08:00" {
		t.Errorf("NotificationTime = %q, want 08:00", got.NotificationTime)
	}
	if got.ThemeMode != ThemeModeSystem {
		t.Errorf("ThemeMode = %q, want system", got.ThemeMode)
	}
	if got.FontScale != 1.0 {
		t.Errorf("FontScale = %v, want 1.0", got.FontScale)
	}
	if got.ReduceMotion || got.HasCompletedOnboarding {
		t.Error("boolean preferences should default to false")
	}
	if len(s.SavedIDs()) != 0 || len(s.RecentlyShown()) != 0 {
		t.Error("fresh store should have no saved or recent IDs")
	}
}

func TestDefaultPreferencesValidate(t *testing.T) {
	if err := ValidatePreferences(DefaultPreferences()); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

// =============================================================================
// Preferences
// =============================================================================

func TestSetPreferences_PartialMerge(t *testing.T) {
	s, _ := createTestStore(t)

	err := s.SetPreferences(PreferencesPatch{FontScale: Ptr(1.2)})
	if err != nil {
		t.Fatalf("SetPreferences() error = %v", err)
	}

	got := s.Preferences()
	if got.FontScale != 1.2 {
		t.Errorf("FontScale = %v, want 1.2", got.FontScale)
	}
	want := DefaultPreferences()
	if !slices.Equal(got.SelectedThemes, want.SelectedThemes) ||
		got.NotificationTime != want.NotificationTime ||
		got.ThemeMode != want.ThemeMode {
		t.Errorf("unpatched fields changed: %+v", got)
	}
}

func TestSetPreferences_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		patch PreferencesPatch
	}{
		{"empty themes", PreferencesPatch{SelectedThemes: []catalog.ThemeTag{}}},
		{"unknown theme", PreferencesPatch{SelectedThemes: []catalog.ThemeTag{"sadness"}}},
		{"duplicate theme", PreferencesPatch{SelectedThemes: []catalog.ThemeTag{catalog.ThemeJoy, catalog.ThemeJoy}}},
		{"bad hour", PreferencesPatch{NotificationTime: Ptr("24:00")}},
		{"bad minute", PreferencesPatch{NotificationTime: Ptr("07:60")}},
		{"not a time", PreferencesPatch{NotificationTime: Ptr("soon")}},
		{"bad mode", PreferencesPatch{ThemeMode: Ptr(ThemeMode("sepia"))}},
		{"bad scale", PreferencesPatch{FontScale: Ptr(1.5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, b := createTestStore(t)
			before := s.Preferences()

			err := s.SetPreferences(tt.patch)
			if !errors.Is(err, ErrInvalidPreferences) {
				t.Fatalf("SetPreferences() error = %v, want ErrInvalidPreferences", err)
			}

			after := s.Preferences()
			if !slices.Equal(before.SelectedThemes, after.SelectedThemes) ||
				before.NotificationTime != after.NotificationTime ||
				before.ThemeMode != after.ThemeMode ||
				before.FontScale != after.FontScale {
				t.Errorf("preferences changed on rejected patch: %+v", after)
			}

			flush(t, s)
			if b.Saves() != 0 {
				t.Errorf("rejected patch was persisted")
			}
		})
	}
}

func TestSetPreferences_EmptyPatchIsNoop(t *testing.T) {
	s, b := createTestStore(t)
	if err := s.SetPreferences(PreferencesPatch{}); err != nil {
		t.Fatalf("SetPreferences() error = %v", err)
	}
	flush(t, s)
	if b.Saves() != 0 {
		t.Errorf("Saves() = %d, want 0", b.Saves())
	}
}

func TestPreferences_ReturnsCopy(t *testing.T) {
	s, _ := createTestStore(t)
	p := s.Preferences()
	p.SelectedThemes[0] = catalog.ThemeJoy

	if s.Preferences().SelectedThemes[0] == catalog.ThemeJoy {
		t.Error("mutating the returned preferences changed the store")
	}
}

// =============================================================================
// Saved set
// =============================================================================

func TestSaveThought_Idempotent(t *testing.T) {
	s, b := createTestStore(t)

	s.SaveThought("joy-1")
	s.SaveThought("joy-1")
	if !s.IsThoughtSaved("joy-1") {
		t.Fatal("joy-1 should be saved")
	}
	if got := s.SavedIDs(); !slices.Equal(got, []string{"joy-1"}) {
		t.Errorf("SavedIDs() = %v", got)
	}

	s.UnsaveThought("joy-1")
	s.UnsaveThought("joy-1")
	if s.IsThoughtSaved("joy-1") {
		t.Error("joy-1 should not be saved")
	}

	flush(t, s)
	stored := b.Stored()
	if stored == nil || len(stored.SavedThoughtIDs) != 0 {
		t.Errorf("stored saved IDs = %v, want empty", stored)
	}
}

func TestToggleSaved(t *testing.T) {
	s, _ := createTestStore(t)
	if !s.ToggleSaved("growth-3") {
		t.Error("first toggle should save")
	}
	if s.ToggleSaved("growth-3") {
		t.Error("second toggle should unsave")
	}
}

func TestSavedIDs_Sorted(t *testing.T) {
	s, _ := createTestStore(t)
	for _, id := range []string{"stoicism-2", "joy-1", "growth-9"} {
		s.SaveThought(id)
	}
	want := []string{"growth-9", "joy-1", "stoicism-2"}
	if got := s.SavedIDs(); !slices.Equal(got, want) {
		t.Errorf("SavedIDs() = %v, want %v", got, want)
	}
}

// =============================================================================
// Recent window
// =============================================================================

func TestAddShownThought_Window(t *testing.T) {
	s, _ := createTestStore(t)

	for i := 1; i <= 35; i++ {
		s.AddShownThought(fmt.Sprintf("q%d", i))
	}

	recent := s.RecentlyShown()
	if len(recent) != RecentWindow {
		t.Fatalf("len(recent) = %d, want %d", len(recent), RecentWindow)
	}
	if recent[0] != "q35" {
		t.Errorf("recent[0] = %q, want q35", recent[0])
	}
	if recent[RecentWindow-1] != "q6" {
		t.Errorf("oldest = %q, want q6", recent[RecentWindow-1])
	}
	if s.HasRecentlyShown("q5") {
		t.Error("q5 should have left the window")
	}
	if !s.HasRecentlyShown("q6") {
		t.Error("q6 should still be in the window")
	}
}

func TestAddShownThought_KeepsDuplicates(t *testing.T) {
	s, _ := createTestStore(t)
	s.AddShownThought("a")
	s.AddShownThought("b")
	s.AddShownThought("a")

	want := []string{"a", "b", "a"}
	if got := s.RecentlyShown(); !slices.Equal(got, want) {
		t.Errorf("RecentlyShown() = %v, want %v", got, want)
	}
}

// =============================================================================
// Persistence
// =============================================================================

func TestRoundTrip_FileBackend(t *testing.T) {
	dir := t.TempDir()

	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.SetPreferences(PreferencesPatch{
		SelectedThemes:         []catalog.ThemeTag{catalog.ThemeStoicism, catalog.ThemeJoy},
		NotificationTime:       Ptr("21:30"),
		ThemeMode:              Ptr(ThemeModeDark),
		FontScale:              Ptr(0.9),
		ReduceMotion:           Ptr(true),
		HasCompletedOnboarding: Ptr(true),
	}); err != nil {
		t.Fatalf("SetPreferences() error = %v", err)
	}
	s.SaveThought("stoicism-4")
	s.SaveThought("joy-2")
	s.AddShownThought("joy-5")
	s.AddShownThought("stoicism-1")
	want := s.Snapshot()
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := New(dir)
	if err != nil {
		t.Fatalf("New() reopen error = %v", err)
	}
	defer reopened.Close()

	got := reopened.Snapshot()
	if !slices.Equal(got.Preferences.SelectedThemes, want.Preferences.SelectedThemes) ||
		got.Preferences.NotificationTime != "21:30" ||
		got.Preferences.ThemeMode != ThemeModeDark ||
		got.Preferences.FontScale != 0.9 ||
		!got.Preferences.ReduceMotion ||
		!got.Preferences.HasCompletedOnboarding {
		t.Errorf("preferences = %+v, want %+v", got.Preferences, want.Preferences)
	}
	if !slices.Equal(got.SavedThoughtIDs, []string{"joy-2", "stoicism-4"}) {
		t.Errorf("saved = %v", got.SavedThoughtIDs)
	}
	if !slices.Equal(got.RecentlyShownIDs, []string{"stoicism-1", "joy-5"}) {
		t.Errorf("recent = %v", got.RecentlyShownIDs)
	}
}

func TestFileBackend_MissingFileGivesDefaults(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}
	snap, err := b.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if snap.Preferences.NotificationTime != "08:00" {
		t.Errorf("expected default preferences, got %+v", snap.Preferences)
	}
}

func TestFileBackend_MalformedResetsToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, StateFile)
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	b, err := NewFileBackend(dir)
	if err != nil {
		t.Fatal(err)
	}
	snap, err := b.Load()

	var rerr *RecoveryError
	if !errors.As(err, &rerr) {
		t.Fatalf("Load() error = %v, want *RecoveryError", err)
	}
	if rerr.Recovered {
		t.Error("no backup existed, Recovered should be false")
	}
	if snap == nil || len(snap.SavedThoughtIDs) != 0 {
		t.Errorf("snapshot = %+v, want defaults", snap)
	}
	if !strings.Contains(rerr.MovedTo, ".corrupt.") {
		t.Errorf("MovedTo = %q", rerr.MovedTo)
	}
	if _, statErr := os.Stat(rerr.MovedTo); statErr != nil {
		t.Errorf("corrupt file not preserved: %v", statErr)
	}

	// Opening a store over it is never fatal.
	s := Open(b)
	defer s.Close()
	if s.Preferences().NotificationTime != "08:00" {
		t.Error("store should fall back to defaults")
	}
}

func TestFileBackend_RecoversFromBackup(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	if err != nil {
		t.Fatal(err)
	}

	good := DefaultSnapshot()
	good.SavedThoughtIDs = []string{"joy-1"}
	if err := b.Save(good); err != nil {
		t.Fatal(err)
	}
	// Second save moves the first into state.json.bak.
	if err := b.Save(good); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b.Path(), []byte(""), 0600); err != nil {
		t.Fatal(err)
	}

	snap, err := b.Load()
	var rerr *RecoveryError
	if !errors.As(err, &rerr) || !rerr.Recovered {
		t.Fatalf("Load() error = %v, want recovered RecoveryError", err)
	}
	if !slices.Equal(snap.SavedThoughtIDs, []string{"joy-1"}) {
		t.Errorf("saved = %v, want [joy-1]", snap.SavedThoughtIDs)
	}
}

func TestDecodeSnapshot_Normalises(t *testing.T) {
	var ids []string
	for i := 0; i < 40; i++ {
		ids = append(ids, fmt.Sprintf("%q", fmt.Sprintf("r%d", i)))
	}
	data := `{
  "preferences": {"font_scale": 3, "selected_themes": ["joy"]},
  "saved_thought_ids": ["joy-2", "joy-1", "joy-2", ""],
  "recently_shown_ids": [` + strings.Join(ids, ",") + `]
}`

	snap, err := DecodeSnapshot([]byte(data))
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if snap.Preferences.FontScale != 1.0 {
		t.Errorf("invalid preferences should reset to defaults, got %+v", snap.Preferences)
	}
	if !slices.Equal(snap.SavedThoughtIDs, []string{"joy-1", "joy-2"}) {
		t.Errorf("saved = %v", snap.SavedThoughtIDs)
	}
	if len(snap.RecentlyShownIDs) != RecentWindow || snap.RecentlyShownIDs[0] != "r0" {
		t.Errorf("recent = %v", snap.RecentlyShownIDs)
	}
}

func TestDecodeSnapshot_MissingFieldsKeepDefaults(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(`{"preferences": {"theme_mode": "dark"}}`))
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if snap.Preferences.ThemeMode != ThemeModeDark {
		t.Errorf("ThemeMode = %q, want dark", snap.Preferences.ThemeMode)
	}
	if snap.Preferences.NotificationTime != "08:00" || snap.Preferences.FontScale != 1.0 {
		t.Errorf("missing fields should keep defaults: %+v", snap.Preferences)
	}
}

func TestEncodeSnapshot_SortsSavedSet(t *testing.T) {
	snap := DefaultSnapshot()
	snap.SavedThoughtIDs = []string{"z", "a", "z"}
	data, err := EncodeSnapshot(snap)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got.SavedThoughtIDs, []string{"a", "z"}) {
		t.Errorf("saved = %v", got.SavedThoughtIDs)
	}
}

func TestWriteFailure_NoRollback(t *testing.T) {
	b := NewMemoryBackend(nil)
	b.FailWith(errors.New("disk full"))

	var mu sync.Mutex
	var reported []error
	s := Open(b, WithErrorHook(func(err error) {
		mu.Lock()
		reported = append(reported, err)
		mu.Unlock()
	}))
	defer s.Close()

	s.SaveThought("joy-1")
	flush(t, s)

	if !s.IsThoughtSaved("joy-1") {
		t.Error("in-memory state must survive a failed write")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(reported) == 0 {
		t.Error("error hook was not called")
	}
}

func TestSaveHook_ReceivesEveryChange(t *testing.T) {
	s, _ := createTestStore(t)

	var mu sync.Mutex
	var ops []string
	s.SetOnSave(func(sc SaveContext) {
		mu.Lock()
		ops = append(ops, sc.Operation+":"+sc.ItemName)
		mu.Unlock()
	})

	s.SaveThought("joy-1")
	s.AddShownThought("joy-2")
	s.UnsaveThought("joy-1")
	flush(t, s)

	mu.Lock()
	defer mu.Unlock()
	want := []string{"save:joy-1", "show:joy-2", "unsave:joy-1"}
	if !slices.Equal(ops, want) {
		t.Errorf("ops = %v, want %v", ops, want)
	}
}

func TestFlush_PersistsLatest(t *testing.T) {
	s, b := createTestStore(t)
	for i := 0; i < 100; i++ {
		s.AddShownThought(fmt.Sprintf("q%d", i))
	}
	flush(t, s)

	stored := b.Stored()
	if stored == nil || stored.RecentlyShownIDs[0] != "q99" {
		t.Fatalf("stored = %+v, want latest snapshot", stored)
	}
	if b.Saves() > 100 {
		t.Errorf("Saves() = %d, want at most 100", b.Saves())
	}
}

func TestImport(t *testing.T) {
	s, _ := createTestStore(t)
	s.SaveThought("joy-1")

	prefs := DefaultPreferences()
	prefs.ThemeMode = ThemeModeLight
	added, err := s.Import([]string{"joy-1", "joy-2", "growth-1"}, &prefs, []string{"joy-3"})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}
	if s.Preferences().ThemeMode != ThemeModeLight {
		t.Error("preferences not replaced")
	}
	if !slices.Equal(s.RecentlyShown(), []string{"joy-3"}) {
		t.Errorf("recent = %v", s.RecentlyShown())
	}

	bad := DefaultPreferences()
	bad.SelectedThemes = nil
	if _, err := s.Import(nil, &bad, nil); !errors.Is(err, ErrInvalidPreferences) {
		t.Errorf("Import() error = %v, want ErrInvalidPreferences", err)
	}
}

func TestConcurrentMutations(t *testing.T) {
	s, _ := createTestStore(t)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := fmt.Sprintf("g%d-%d", g, i)
				s.SaveThought(id)
				s.AddShownThought(id)
				_ = s.IsThoughtSaved(id)
				_ = s.RecentlyShown()
			}
		}(g)
	}
	wg.Wait()
	flush(t, s)

	if s.SavedCount() != 400 {
		t.Errorf("SavedCount() = %d, want 400", s.SavedCount())
	}
	if len(s.RecentlyShown()) != RecentWindow {
		t.Errorf("len(recent) = %d, want %d", len(s.RecentlyShown()), RecentWindow)
	}
}

func TestClose_StopsPersisting(t *testing.T) {
	b := NewMemoryBackend(nil)
	s := Open(b)
	s.SaveThought("joy-1")
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	saves := b.Saves()

	s.SaveThought("joy-2")
	if !s.IsThoughtSaved("joy-2") {
		t.Error("mutations after Close should still apply in memory")
	}
	if b.Saves() != saves {
		t.Error("writes after Close should not reach the backend")
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

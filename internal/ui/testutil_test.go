package ui

import (
	"math/rand/v2"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"lifethoughts/internal/catalog"
	"lifethoughts/internal/config"
	"lifethoughts/internal/store"
)

// testNow is the fixed clock used by UI tests.
var testNow = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// setupTest prepares the test environment for deterministic rendering.
func setupTest(t *testing.T) {
	t.Helper()
	// Use ASCII profile to disable all color codes in output
	lipgloss.SetColorProfile(termenv.Ascii)

	prev := systemDark
	systemDark = func() bool { return true }
	t.Cleanup(func() { systemDark = prev })
}

// createTestStore opens an in-memory store seeded with snap (nil for defaults).
func createTestStore(t *testing.T, snap *store.Snapshot) *store.Store {
	t.Helper()
	s := store.Open(store.NewMemoryBackend(snap))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// onboardedSnapshot is a first-run-complete state with the given themes.
func onboardedSnapshot(themes ...catalog.ThemeTag) *store.Snapshot {
	snap := store.DefaultSnapshot()
	snap.Preferences.HasCompletedOnboarding = true
	if len(themes) > 0 {
		snap.Preferences.SelectedThemes = themes
	}
	return snap
}

// createTestStyles creates a default Styles instance for testing.
func createTestStyles() *Styles {
	prefs := store.DefaultPreferences()
	prefs.ThemeMode = store.ThemeModeDark
	return NewStyles(&config.ThemeConfig{}, prefs)
}

// createTestApp builds an App with a fixed clock and seeded randomness.
func createTestApp(t *testing.T, s *store.Store) *App {
	t.Helper()
	setupTest(t)
	app := NewApp(s, catalog.Default(), &AppConfig{
		Keys:                  &config.KeysConfig{},
		ShowOnboarding:        true,
		NarrowLayoutThreshold: 80,
		BundleSize:            10,
		RefillBelow:           5,
		Now:                   func() time.Time { return testNow },
		Rand:                  rand.New(rand.NewPCG(1, 2)),
	})
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app
}

// keyRunes builds a key message for printable keys.
func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msg to the app and runs any returned command once, feeding
// its message back. Batch and tick commands are not followed.
func send(app *App, msg tea.Msg) {
	_, cmd := app.Update(msg)
	if cmd == nil {
		return
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case out := <-done:
		switch out.(type) {
		case nil, tickMsg, transitionDoneMsg, tea.QuitMsg, tea.BatchMsg:
			return
		}
		app.Update(out)
	case <-time.After(50 * time.Millisecond):
		// Timers (ticks, fades, cursor blink) are not awaited.
	}
}

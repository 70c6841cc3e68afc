package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lifethoughts/internal/catalog"
	"lifethoughts/internal/store"
)

func TestApp_OnboardingFirstRun(t *testing.T) {
	s := createTestStore(t, nil)
	app := createTestApp(t, s)

	if app.onboarding == nil {
		t.Fatal("a fresh store should start with onboarding")
	}
	if !strings.Contains(app.View(), "Welcome to Life Thoughts") {
		t.Error("view should show onboarding")
	}

	// Global keys are not active during onboarding.
	send(app, keyRunes("q"))
	if app.quitting {
		t.Fatal("q must not quit during onboarding")
	}

	send(app, tea.KeyMsg{Type: tea.KeyEnter})
	send(app, tea.KeyMsg{Type: tea.KeyEnter})

	if app.onboarding != nil {
		t.Fatal("onboarding should be done")
	}
	if !s.Preferences().HasCompletedOnboarding {
		t.Error("HasCompletedOnboarding should be persisted in the store")
	}
	if app.status != "Here is your first thought" {
		t.Errorf("status = %q", app.status)
	}
}

func TestApp_OnboardingDisabled(t *testing.T) {
	setupTest(t)
	s := createTestStore(t, nil)
	app := NewApp(s, catalog.Default(), nil)
	if app.onboarding == nil {
		t.Fatal("default config shows onboarding")
	}

	app = NewApp(s, catalog.Default(), &AppConfig{ShowOnboarding: false, Now: func() time.Time { return testNow }})
	if app.onboarding != nil {
		t.Error("onboarding should be skipped when disabled")
	}
}

func TestApp_OnboardingCtrlCQuits(t *testing.T) {
	app := createTestApp(t, createTestStore(t, nil))

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || !app.quitting {
		t.Error("ctrl+c should quit from onboarding")
	}
}

func TestApp_Layout(t *testing.T) {
	app := createTestApp(t, createTestStore(t, onboardedSnapshot()))

	if app.layoutMode != LayoutWide {
		t.Fatalf("layout at 120 columns = %v, want wide", app.layoutMode)
	}
	view := app.View()
	for _, want := range []string{"thoughts", "Today", "Library (0)", "Settings"} {
		if !strings.Contains(view, want) {
			t.Errorf("wide view should contain %q", want)
		}
	}

	app.Update(tea.WindowSizeMsg{Width: 60, Height: 30})
	if app.layoutMode != LayoutNarrow {
		t.Fatalf("layout at 60 columns = %v, want narrow", app.layoutMode)
	}
	if !strings.Contains(app.View(), "[Today]") {
		t.Error("narrow view should mark the active tab")
	}
}

func TestApp_SwitchPanes(t *testing.T) {
	app := createTestApp(t, createTestStore(t, onboardedSnapshot()))

	send(app, tea.KeyMsg{Type: tea.KeyTab})
	if app.activePane != PaneLibrary {
		t.Errorf("tab: active = %v, want library", app.activePane)
	}
	send(app, keyRunes("3"))
	if app.activePane != PaneSettings {
		t.Errorf("3: active = %v, want settings", app.activePane)
	}
	send(app, tea.KeyMsg{Type: tea.KeyTab})
	if app.activePane != PaneToday {
		t.Errorf("tab wraps: active = %v, want today", app.activePane)
	}
	send(app, keyRunes("2"))
	if !app.libraryPane.focused || app.todayPane.focused {
		t.Error("focus should follow the active pane")
	}
}

func TestApp_MouseSelectsPane(t *testing.T) {
	app := createTestApp(t, createTestStore(t, onboardedSnapshot()))

	x := (app.libraryPaneStart + app.libraryPaneEnd) / 2
	send(app, tea.MouseMsg{X: x, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if app.activePane != PaneLibrary {
		t.Errorf("click at x=%d: active = %v, want library", x, app.activePane)
	}

	app.Update(tea.WindowSizeMsg{Width: 60, Height: 30})
	send(app, tea.MouseMsg{X: 59, Y: app.contentTop - 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if app.activePane != PaneSettings {
		t.Errorf("tab click: active = %v, want settings", app.activePane)
	}
}

func TestApp_SaveUndoRedo(t *testing.T) {
	s := createTestStore(t, onboardedSnapshot())
	app := createTestApp(t, s)
	daily, _ := app.todayPane.Daily()

	send(app, keyRunes("s"))
	if !s.IsThoughtSaved(daily.ID) {
		t.Fatal("s should save the daily pick")
	}
	if app.status != "Saved to library" {
		t.Errorf("status = %q", app.status)
	}
	if len(app.libraryPane.Quotes()) != 1 {
		t.Error("library should see the new save")
	}

	send(app, tea.KeyMsg{Type: tea.KeyCtrlZ})
	if s.IsThoughtSaved(daily.ID) {
		t.Error("undo should remove the save")
	}
	if !strings.HasPrefix(app.status, "Undid: Saved:") {
		t.Errorf("status = %q", app.status)
	}
	if len(app.libraryPane.Quotes()) != 0 {
		t.Error("library should refresh after undo")
	}

	send(app, tea.KeyMsg{Type: tea.KeyCtrlY})
	if !s.IsThoughtSaved(daily.ID) {
		t.Error("redo should save again")
	}

	send(app, tea.KeyMsg{Type: tea.KeyCtrlY})
	if app.status != "Nothing to redo" {
		t.Errorf("status = %q, want Nothing to redo", app.status)
	}
}

func TestApp_UnsaveFromLibraryIsUndoable(t *testing.T) {
	snap := onboardedSnapshot()
	snap.SavedThoughtIDs = []string{"growth-1"}
	s := createTestStore(t, snap)
	app := createTestApp(t, s)

	send(app, keyRunes("2"))
	send(app, keyRunes("x"))
	if s.IsThoughtSaved("growth-1") {
		t.Fatal("x should unsave")
	}
	send(app, keyRunes("u"))
	if !s.IsThoughtSaved("growth-1") {
		t.Error("undo should restore the saved quote")
	}
}

func TestApp_Share(t *testing.T) {
	prev := writeClipboard
	t.Cleanup(func() { writeClipboard = prev })

	var copied string
	writeClipboard = func(s string) error { copied = s; return nil }

	app := createTestApp(t, createTestStore(t, onboardedSnapshot()))
	daily, _ := app.todayPane.Daily()

	send(app, keyRunes("y"))
	if copied != ShareText(daily) {
		t.Errorf("copied %q, want %q", copied, ShareText(daily))
	}
	if app.status != "Copied to clipboard" {
		t.Errorf("status = %q", app.status)
	}

	writeClipboard = func(string) error { return errors.New("no clipboard") }
	send(app, keyRunes("y"))
	if app.status != "Copy failed: no clipboard" || !app.statusErr {
		t.Errorf("status = %q (err=%v)", app.status, app.statusErr)
	}
}

func TestApp_StatusExpires(t *testing.T) {
	app := createTestApp(t, createTestStore(t, onboardedSnapshot()))
	now := testNow
	app.config.Now = func() time.Time { return now }

	app.SetStatus("hello", false)
	app.Update(tickMsg(now))
	if app.status != "hello" {
		t.Fatal("status should survive a tick before its deadline")
	}

	now = now.Add(6 * time.Second)
	app.Update(tickMsg(now))
	if app.status != "" {
		t.Errorf("status = %q, want expired", app.status)
	}

	app.SetStatus("bad", true)
	now = now.Add(6 * time.Second)
	app.Update(tickMsg(now))
	if app.status != "bad" {
		t.Error("errors stay longer than plain status")
	}
}

func TestApp_TickReloadsOnNewDay(t *testing.T) {
	app := createTestApp(t, createTestStore(t, onboardedSnapshot()))
	now := testNow
	app.config.Now = func() time.Time { return now }
	app.todayPane.now = app.config.Now

	before := app.todayPane.date
	now = now.Add(24 * time.Hour)
	app.Update(tickMsg(now))
	if app.todayPane.date == before {
		t.Error("a tick after midnight should reload the daily pick")
	}
}

func TestApp_HelpOverlay(t *testing.T) {
	app := createTestApp(t, createTestStore(t, onboardedSnapshot()))

	send(app, keyRunes("?"))
	if !app.showHelp {
		t.Fatal("? should open help")
	}
	if !strings.Contains(app.View(), "Keyboard Shortcuts") {
		t.Error("view should show help")
	}

	// Keys do not reach panes while help is open.
	send(app, keyRunes("s"))
	if app.store.SavedCount() != 0 {
		t.Error("s must not save while help is open")
	}

	send(app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.showHelp {
		t.Error("esc should close help")
	}
}

func TestApp_Quit(t *testing.T) {
	app := createTestApp(t, createTestStore(t, onboardedSnapshot()))

	_, cmd := app.Update(keyRunes("q"))
	if cmd == nil || !app.quitting {
		t.Fatal("q should quit")
	}
	if !strings.Contains(app.View(), "See you tomorrow.") {
		t.Error("goodbye view expected")
	}
}

func TestApp_InputModeBypassesGlobalKeys(t *testing.T) {
	app := createTestApp(t, createTestStore(t, onboardedSnapshot()))

	send(app, keyRunes("2"))
	send(app, keyRunes("/"))
	send(app, keyRunes("q"))
	if app.quitting {
		t.Fatal("q should be typed into the search field")
	}
	if app.activePane != PaneLibrary {
		t.Error("pane keys should be typed too")
	}
	if !strings.Contains(app.View(), "[esc] clear") {
		t.Error("help bar should show search hints")
	}
}

func TestApp_PreferencesRestyle(t *testing.T) {
	s := createTestStore(t, onboardedSnapshot())
	app := createTestApp(t, s)
	if !app.styles.Dark {
		t.Fatal("system mode on a dark terminal should start dark")
	}

	send(app, keyRunes("3"))
	app.settingsPane.cursor = rowMode
	send(app, tea.KeyMsg{Type: tea.KeyEnter})

	if got := s.Preferences().ThemeMode; got != store.ThemeModeLight {
		t.Fatalf("ThemeMode = %s, want light", got)
	}
	if app.styles.Dark || app.todayPane.styles.Dark {
		t.Error("styles should be rebuilt in place for every pane")
	}
	if app.status != "Appearance: Light" {
		t.Errorf("status = %q", app.status)
	}
}

func TestApp_ThemeChangeReloadsToday(t *testing.T) {
	s := createTestStore(t, onboardedSnapshot(catalog.ThemeStoicism))
	app := createTestApp(t, s)

	send(app, keyRunes("3"))
	app.settingsPane.cursor = rowJoy
	send(app, tea.KeyMsg{Type: tea.KeyEnter})
	app.settingsPane.cursor = rowStoicism
	send(app, tea.KeyMsg{Type: tea.KeyEnter})

	daily, ok := app.todayPane.Daily()
	if !ok || !daily.HasTheme(catalog.ThemeJoy) {
		t.Errorf("daily = %v, want a joy quote after switching themes", daily.ID)
	}
}

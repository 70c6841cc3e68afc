package ui

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lifethoughts/internal/catalog"
	"lifethoughts/internal/config"
	"lifethoughts/internal/store"
)

func newTestTodayPane(t *testing.T, s *store.Store, opts TodayOptions) *TodayPane {
	t.Helper()
	setupTest(t)
	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(7, 7))
	}
	p := NewTodayPane(s, catalog.Default(), createTestStyles(), &config.KeysConfig{}, opts)
	p.SetSize(60, 20)
	p.Reload()
	return p
}

func TestTodayPane_DailyPickIsNotRecorded(t *testing.T) {
	s := createTestStore(t, onboardedSnapshot(catalog.ThemeMindfulness))
	p := newTestTodayPane(t, s, TodayOptions{})

	daily, ok := p.Daily()
	if !ok {
		t.Fatal("expected a daily pick")
	}
	if daily.ID != "mindfulness-3" {
		t.Errorf("daily = %s, want mindfulness-3 for 2024-01-01", daily.ID)
	}
	if got := s.RecentlyShown(); len(got) != 0 {
		t.Errorf("RecentlyShown() = %v, want empty", got)
	}

	// A second load on the same day shows the same pick.
	p.Reload()
	if again, _ := p.Daily(); again.ID != daily.ID {
		t.Errorf("reload changed the daily pick: %s -> %s", daily.ID, again.ID)
	}
}

func TestTodayPane_PagingRecordsShown(t *testing.T) {
	s := createTestStore(t, onboardedSnapshot(catalog.ThemeMindfulness))
	p := newTestTodayPane(t, s, TodayOptions{})
	p.SetFocused(true)

	p.Update(keyRunes("l"))
	second, _ := p.Current()
	p.Update(keyRunes("l"))
	third, _ := p.Current()

	recent := s.RecentlyShown()
	if len(recent) != 2 || recent[0] != third.ID || recent[1] != second.ID {
		t.Errorf("RecentlyShown() = %v, want [%s %s]", recent, third.ID, second.ID)
	}

	// Going back to the daily pick does not record it.
	p.Update(keyRunes("h"))
	p.Update(keyRunes("h"))
	if pos, _ := p.Position(); pos != 1 {
		t.Fatalf("position = %d, want 1", pos)
	}
	if got := len(s.RecentlyShown()); got != 3 {
		t.Errorf("len(RecentlyShown()) = %d, want 3 (second recorded again, daily not)", got)
	}
}

func TestTodayPane_BundleExcludesDailyAndRepeats(t *testing.T) {
	s := createTestStore(t, onboardedSnapshot(catalog.ThemeJoy))
	p := newTestTodayPane(t, s, TodayOptions{BundleSize: 3, RefillBelow: 2})
	p.SetFocused(true)

	if _, total := p.Position(); total != 4 {
		t.Fatalf("initial load = %d quotes, want daily + 3", total)
	}

	for range 20 {
		p.Update(keyRunes("l"))
	}

	pos, total := p.Position()
	if total != 10 {
		t.Errorf("loaded %d quotes, want all 10 joy quotes", total)
	}
	if pos != 10 {
		t.Errorf("position = %d, want 10", pos)
	}

	seen := map[string]bool{}
	for _, q := range p.thoughts {
		if seen[q.ID] {
			t.Errorf("quote %s loaded twice", q.ID)
		}
		seen[q.ID] = true
		if !q.HasTheme(catalog.ThemeJoy) {
			t.Errorf("quote %s is not tagged joy", q.ID)
		}
	}
}

func TestTodayPane_EndOfBundleReportsStatus(t *testing.T) {
	s := createTestStore(t, onboardedSnapshot(catalog.ThemeJoy))
	p := newTestTodayPane(t, s, TodayOptions{BundleSize: 50})
	p.SetFocused(true)

	for range 9 {
		p.Update(keyRunes("l"))
	}
	cmd := p.Update(keyRunes("l"))
	if cmd == nil {
		t.Fatal("expected a status command at the end of the bundle")
	}
	msg, ok := cmd().(statusMsg)
	if !ok || msg.isErr {
		t.Errorf("got %#v, want informational statusMsg", msg)
	}
}

func TestTodayPane_ReloadWhenStale(t *testing.T) {
	now := testNow
	s := createTestStore(t, onboardedSnapshot(catalog.ThemeGrowth))
	p := newTestTodayPane(t, s, TodayOptions{Now: func() time.Time { return now }})

	if p.Stale() {
		t.Fatal("fresh pane should not be stale")
	}

	now = now.Add(24 * time.Hour)
	if !p.Stale() {
		t.Error("pane should be stale after midnight")
	}
	p.Reload()

	if err := s.SetPreferences(store.PreferencesPatch{SelectedThemes: []catalog.ThemeTag{catalog.ThemeJoy}}); err != nil {
		t.Fatalf("SetPreferences() error: %v", err)
	}
	if !p.Stale() {
		t.Error("pane should be stale after the themes change")
	}
	p.Reload()
	if daily, _ := p.Daily(); !daily.HasTheme(catalog.ThemeJoy) {
		t.Errorf("daily %s should follow the new themes", daily.ID)
	}
}

func TestTodayPane_SaveToggle(t *testing.T) {
	s := createTestStore(t, onboardedSnapshot())
	p := newTestTodayPane(t, s, TodayOptions{})
	p.SetFocused(true)
	daily, _ := p.Daily()

	cmd := p.Update(keyRunes("s"))
	if !s.IsThoughtSaved(daily.ID) {
		t.Fatal("s should save the current quote")
	}
	msg, ok := cmd().(savedToggledMsg)
	if !ok || !msg.saved || msg.id != daily.ID {
		t.Errorf("got %#v, want savedToggledMsg for %s", msg, daily.ID)
	}
	if !strings.Contains(p.View(), "♥") {
		t.Error("view should show the saved marker")
	}

	p.Update(keyRunes("s"))
	if s.IsThoughtSaved(daily.ID) {
		t.Error("second s should unsave")
	}
}

func TestTodayPane_ReduceMotion(t *testing.T) {
	s := createTestStore(t, onboardedSnapshot())
	p := newTestTodayPane(t, s, TodayOptions{})
	p.SetFocused(true)

	if cmd := p.Update(keyRunes("l")); cmd == nil || !p.fading {
		t.Fatal("paging should start a transition")
	}
	p.Update(transitionDoneMsg{seq: p.fadeSeq - 1})
	if !p.fading {
		t.Error("a stale transition tick must not end the current fade")
	}
	p.Update(transitionDoneMsg{seq: p.fadeSeq})
	if p.fading {
		t.Error("transition should end")
	}

	if err := s.SetPreferences(store.PreferencesPatch{ReduceMotion: store.Ptr(true)}); err != nil {
		t.Fatalf("SetPreferences() error: %v", err)
	}
	if cmd := p.Update(keyRunes("l")); cmd != nil || p.fading {
		t.Error("reduce motion should skip the transition")
	}
}

func TestTodayPane_EmptySelection(t *testing.T) {
	setupTest(t)
	c, err := catalog.New([]catalog.Quote{{ID: "j", Text: "Smile.", Tags: []catalog.ThemeTag{catalog.ThemeJoy}}})
	if err != nil {
		t.Fatalf("catalog.New() error: %v", err)
	}
	s := createTestStore(t, onboardedSnapshot(catalog.ThemeStoicism))
	p := NewTodayPane(s, c, createTestStyles(), nil, TodayOptions{Now: func() time.Time { return testNow }})
	p.SetSize(60, 20)
	p.Reload()

	if !errors.Is(p.Err(), catalog.ErrEmptySelection) {
		t.Errorf("Err() = %v, want ErrEmptySelection", p.Err())
	}
	if cmd := p.Update(keyRunes("l")); cmd != nil {
		t.Error("paging with nothing loaded should do nothing")
	}
	if !strings.Contains(p.View(), "No thoughts match your themes") {
		t.Error("view should explain the empty selection")
	}
}

func TestShareText(t *testing.T) {
	q := catalog.Quote{Text: "Be here now.", Author: "Ram Dass"}
	if got, want := ShareText(q), "“Be here now.” — Ram Dass"; got != want {
		t.Errorf("ShareText() = %q, want %q", got, want)
	}
	if got, want := ShareText(catalog.Quote{Text: "Breathe."}), "“Breathe.”"; got != want {
		t.Errorf("ShareText() = %q, want %q", got, want)
	}
}

func TestTodayPane_ShareCopies(t *testing.T) {
	var copied string
	prev := writeClipboard
	writeClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { writeClipboard = prev })

	s := createTestStore(t, onboardedSnapshot())
	p := newTestTodayPane(t, s, TodayOptions{})
	p.SetFocused(true)

	cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if cmd == nil {
		t.Fatal("y should return a copy command")
	}
	if msg, ok := cmd().(copiedMsg); !ok || msg.err != nil {
		t.Fatalf("got %#v, want successful copiedMsg", msg)
	}
	daily, _ := p.Daily()
	if copied != ShareText(daily) {
		t.Errorf("copied %q, want %q", copied, ShareText(daily))
	}
}

package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"lifethoughts/internal/catalog"
	"lifethoughts/internal/config"
	"lifethoughts/internal/store"
)

func TestNewStyles_ConfiguredColors(t *testing.T) {
	setupTest(t)
	theme := &config.ThemeConfig{Primary: "#123456"}
	s := NewStyles(theme, store.DefaultPreferences())

	if s.ColorPrimary != lipgloss.Color("#123456") {
		t.Errorf("ColorPrimary = %v, want #123456", s.ColorPrimary)
	}
	if s.ColorAccent != lipgloss.Color("#F59E0B") {
		t.Errorf("ColorAccent = %v, want default #F59E0B", s.ColorAccent)
	}
}

func TestNewStyles_Palette(t *testing.T) {
	setupTest(t)

	tests := []struct {
		mode     store.ThemeMode
		wantDark bool
		palette  Palette
	}{
		{store.ThemeModeLight, false, LightPalette},
		{store.ThemeModeDark, true, DarkPalette},
		{store.ThemeModeSystem, true, DarkPalette}, // setupTest reports a dark terminal
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			prefs := store.DefaultPreferences()
			prefs.ThemeMode = tt.mode
			s := NewStyles(nil, prefs)

			if s.Dark != tt.wantDark {
				t.Errorf("Dark = %v, want %v", s.Dark, tt.wantDark)
			}
			if s.ColorBg != tt.palette.Background {
				t.Errorf("ColorBg = %v, want %v", s.ColorBg, tt.palette.Background)
			}
			if s.ColorText != tt.palette.Text {
				t.Errorf("ColorText = %v, want %v", s.ColorText, tt.palette.Text)
			}
		})
	}
}

func TestCardPadding(t *testing.T) {
	setupTest(t)

	tests := []struct {
		scale float64
		wantV int
		wantH int
	}{
		{0.9, 0, 2},
		{1.0, 1, 3},
		{1.1, 1, 4},
		{1.2, 2, 5},
		{3.0, 1, 3}, // unsupported scales fall back to the default
	}
	for _, tt := range tests {
		prefs := store.DefaultPreferences()
		prefs.FontScale = tt.scale
		v, h := NewStyles(nil, prefs).CardPadding()
		if v != tt.wantV || h != tt.wantH {
			t.Errorf("CardPadding() at %v = (%d, %d), want (%d, %d)", tt.scale, v, h, tt.wantV, tt.wantH)
		}
	}
}

func TestThemeGradient(t *testing.T) {
	for _, theme := range catalog.AllThemes() {
		g := ThemeGradient(theme)
		if g.From == "" || g.To == "" {
			t.Errorf("ThemeGradient(%s) is incomplete: %+v", theme, g)
		}
	}
	if got := ThemeGradient(catalog.ThemeJoy); got.From != "#6d28d9" || got.To != "#ec4899" {
		t.Errorf("joy gradient = %+v", got)
	}
	if got, want := ThemeGradient(""), ThemeGradient(catalog.ThemeMindfulness); got != want {
		t.Errorf("untagged gradient = %+v, want mindfulness %+v", got, want)
	}
}

func TestRenderHelp(t *testing.T) {
	setupTest(t)
	s := createTestStyles()

	got := s.RenderHelp("enter", "start", "esc", "back")
	if got != "[enter] start  [esc] back" {
		t.Errorf("RenderHelp() = %q", got)
	}
	if s.RenderHelp("dangling") != "" {
		t.Error("an odd key without description renders nothing")
	}
}

func TestThemeBadge(t *testing.T) {
	setupTest(t)
	s := createTestStyles()

	if got := s.ThemeBadge(catalog.ThemeGratitude); !strings.Contains(got, "Gratitude") {
		t.Errorf("ThemeBadge() = %q, want theme title", got)
	}
}

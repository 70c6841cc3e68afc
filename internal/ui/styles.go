package ui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"lifethoughts/internal/catalog"
	"lifethoughts/internal/config"
	"lifethoughts/internal/store"
)

// Palette holds the base colours of a light or dark scheme.
type Palette struct {
	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
}

var (
	LightPalette = Palette{Background: "#ffffff", Text: "#1a1a1a", Muted: "#6b7280"}
	DarkPalette  = Palette{Background: "#0a0a0a", Text: "#f9fafb", Muted: "#9ca3af"}
)

// Gradient is a theme's accent pair. Terminals cannot paint a gradient, so
// From colours headings and To colours the card border.
type Gradient struct {
	From lipgloss.Color
	To   lipgloss.Color
}

var themeGradients = map[catalog.ThemeTag]Gradient{
	catalog.ThemeStoicism:    {From: "#0f172a", To: "#1e293b"},
	catalog.ThemeMindfulness: {From: "#0e7490", To: "#14b8a6"},
	catalog.ThemeGratitude:   {From: "#b45309", To: "#f59e0b"},
	catalog.ThemeGrowth:      {From: "#065f46", To: "#10b981"},
	catalog.ThemeJoy:         {From: "#6d28d9", To: "#ec4899"},
}

// ThemeGradient returns the accent pair for theme, falling back to
// mindfulness for untagged quotes.
func ThemeGradient(theme catalog.ThemeTag) Gradient {
	if g, ok := themeGradients[theme]; ok {
		return g
	}
	return themeGradients[catalog.ThemeMindfulness]
}

// systemDark reports the terminal background once per process. Querying it
// while Bubble Tea owns the terminal would race with input.
var systemDark = sync.OnceValue(termenv.HasDarkBackground)

// IsDark resolves a theme mode to a scheme.
func IsDark(mode store.ThemeMode) bool {
	switch mode {
	case store.ThemeModeLight:
		return false
	case store.ThemeModeDark:
		return true
	default:
		return systemDark()
	}
}

// Styles holds all application styles for one theme mode and font scale.
type Styles struct {
	Dark      bool
	FontScale float64

	// Colors
	ColorPrimary   lipgloss.Color
	ColorAccent    lipgloss.Color
	ColorMuted     lipgloss.Color
	ColorDanger    lipgloss.Color
	ColorWarning   lipgloss.Color
	ColorSuccess   lipgloss.Color
	ColorBg        lipgloss.Color
	ColorBgLight   lipgloss.Color
	ColorText      lipgloss.Color
	ColorTextMuted lipgloss.Color

	// Component styles
	TitleStyle       lipgloss.Style
	DateStyle        lipgloss.Style
	PaneStyle        lipgloss.Style
	PaneFocusedStyle lipgloss.Style
	PaneTitleStyle   lipgloss.Style

	ItemStyle         lipgloss.Style
	ItemSelectedStyle lipgloss.Style
	CheckOn           string
	CheckOff          string
	SavedIcon         string
	UnsavedIcon       string

	QuoteStyle  lipgloss.Style
	AuthorStyle lipgloss.Style

	HelpStyle    lipgloss.Style
	HelpKeyStyle lipgloss.Style

	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style

	InputPromptStyle lipgloss.Style
	StatLabelStyle   lipgloss.Style
}

// NewStyles builds styles from the configured colours and the user's
// appearance preferences.
func NewStyles(theme *config.ThemeConfig, prefs store.Preferences) *Styles {
	if theme == nil {
		theme = &config.ThemeConfig{}
	}
	s := &Styles{
		Dark:      IsDark(prefs.ThemeMode),
		FontScale: prefs.FontScale,
	}
	if !store.IsFontScale(s.FontScale) {
		s.FontScale = 1.0
	}

	palette := LightPalette
	s.ColorBgLight = lipgloss.Color("#e5e7eb")
	if s.Dark {
		palette = DarkPalette
		s.ColorBgLight = lipgloss.Color("#1f2937")
	}

	s.ColorPrimary = colorOrDefault(theme.Primary, "#0E7490")
	s.ColorAccent = colorOrDefault(theme.Accent, "#F59E0B")
	s.ColorMuted = colorOrDefault(theme.Muted, string(palette.Muted))
	s.ColorBg = colorOrDefault(theme.Background, string(palette.Background))
	s.ColorText = colorOrDefault(theme.Text, string(palette.Text))
	s.ColorTextMuted = palette.Muted

	s.ColorDanger = lipgloss.Color("#EF4444")
	s.ColorWarning = lipgloss.Color("#F59E0B")
	s.ColorSuccess = lipgloss.Color("#10B981")

	s.initComponentStyles()
	return s
}

// colorOrDefault returns the lipgloss.Color from hex string, or default if empty.
func colorOrDefault(hex, defaultHex string) lipgloss.Color {
	if hex != "" {
		return lipgloss.Color(hex)
	}
	return lipgloss.Color(defaultHex)
}

func (s *Styles) initComponentStyles() {
	s.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#f9fafb")).
		Background(s.ColorPrimary).
		Padding(0, 1)

	s.DateStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.PaneStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorMuted).
		Padding(0, 1)

	s.PaneFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorPrimary).
		Padding(0, 1)

	s.PaneTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorPrimary).
		MarginBottom(1)

	s.ItemStyle = lipgloss.NewStyle().
		Foreground(s.ColorText)

	s.ItemSelectedStyle = lipgloss.NewStyle().
		Background(s.ColorBgLight).
		Foreground(s.ColorText).
		Bold(true)

	s.CheckOn = lipgloss.NewStyle().Foreground(s.ColorSuccess).Render("[✓]")
	s.CheckOff = lipgloss.NewStyle().Foreground(s.ColorMuted).Render("[ ]")
	s.SavedIcon = lipgloss.NewStyle().Foreground(s.ColorAccent).Render("♥")
	s.UnsavedIcon = lipgloss.NewStyle().Foreground(s.ColorMuted).Render("♡")

	s.QuoteStyle = lipgloss.NewStyle().
		Foreground(s.ColorText).
		Italic(true)

	s.AuthorStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.HelpStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.HelpKeyStyle = lipgloss.NewStyle().
		Foreground(s.ColorAccent).
		Bold(true)

	s.StatusStyle = lipgloss.NewStyle().
		Foreground(s.ColorSuccess).
		Italic(true)

	s.ErrorStyle = lipgloss.NewStyle().
		Foreground(s.ColorDanger).
		Bold(true)

	s.InputPromptStyle = lipgloss.NewStyle().
		Foreground(s.ColorPrimary).
		Bold(true)

	s.StatLabelStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)
}

// CardPadding maps the font scale to card padding (vertical, horizontal).
// Larger text gets more air around it.
func (s *Styles) CardPadding() (int, int) {
	switch {
	case s.FontScale < 1.0:
		return 0, 2
	case s.FontScale < 1.1:
		return 1, 3
	case s.FontScale < 1.2:
		return 1, 4
	default:
		return 2, 5
	}
}

// CardStyle is the bordered box a quote is shown in, accented by theme.
func (s *Styles) CardStyle(theme catalog.ThemeTag, width int) lipgloss.Style {
	v, h := s.CardPadding()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ThemeGradient(theme).To).
		Padding(v, h).
		Width(max(10, width))
}

// ThemeBadge renders a theme name in its accent colour.
func (s *Styles) ThemeBadge(theme catalog.ThemeTag) string {
	color := ThemeGradient(theme).From
	if s.Dark && theme == catalog.ThemeStoicism {
		// The stoicism pair is near-black and unreadable on a dark terminal.
		color = lipgloss.Color("#94a3b8")
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(theme.Title())
}

// RenderHelp renders help text with key bindings using the given styles.
func (s *Styles) RenderHelp(keys ...string) string {
	var result string
	for i := 0; i+1 < len(keys); i += 2 {
		if i > 0 {
			result += "  "
		}
		result += s.HelpKeyStyle.Render("["+keys[i]+"]") + " " + s.HelpStyle.Render(keys[i+1])
	}
	return result
}

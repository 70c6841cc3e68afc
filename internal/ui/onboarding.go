package ui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lifethoughts/internal/catalog"
	"lifethoughts/internal/config"
	"lifethoughts/internal/notify"
	"lifethoughts/internal/store"
)

type onboardingStep int

const (
	stepThemes onboardingStep = iota
	stepTime
)

// Onboarding is the first-run flow: pick themes, then a reminder time.
type Onboarding struct {
	store    *store.Store
	styles   *Styles
	step     onboardingStep
	cursor   int
	selected []catalog.ThemeTag
	input    textinput.Model
	problem  string

	nav       NavigationKeyMap
	inputKeys InputKeyMap
	toggle    key.Binding

	width  int
	height int
}

// NewOnboarding starts the flow from the current preferences.
func NewOnboarding(s *store.Store, styles *Styles, keyCfg *config.KeysConfig) *Onboarding {
	prefs := s.Preferences()

	ti := textinput.New()
	ti.Placeholder = "HH:MM"
	ti.CharLimit = 5
	ti.Width = 6
	ti.SetValue(prefs.NotificationTime)

	return &Onboarding{
		store:     s,
		styles:    styles,
		selected:  slices.Clone(prefs.SelectedThemes),
		input:     ti,
		nav:       NewNavigationKeyMap(keyCfg),
		inputKeys: NewInputKeyMap(keyCfg),
		toggle:    key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "select")),
	}
}

// SetSize sets the overlay bounds.
func (o *Onboarding) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// Selected returns the themes picked so far.
func (o *Onboarding) Selected() []catalog.ThemeTag {
	return slices.Clone(o.selected)
}

// Update handles messages for the onboarding flow.
func (o *Onboarding) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)

	if o.step == stepTime {
		if ok {
			switch {
			case key.Matches(keyMsg, o.inputKeys.Confirm):
				return o.finish()
			case key.Matches(keyMsg, o.inputKeys.Cancel):
				o.step = stepThemes
				o.problem = ""
				o.input.Blur()
				return nil
			}
		}
		var cmd tea.Cmd
		o.input, cmd = o.input.Update(msg)
		return cmd
	}

	if !ok {
		return nil
	}
	themes := catalog.AllThemes()
	switch {
	case key.Matches(keyMsg, o.nav.Up):
		if o.cursor > 0 {
			o.cursor--
		}
	case key.Matches(keyMsg, o.nav.Down):
		if o.cursor < len(themes)-1 {
			o.cursor++
		}
	case key.Matches(keyMsg, o.toggle):
		o.selected = toggleTheme(o.selected, themes[o.cursor])
		o.problem = ""
	case key.Matches(keyMsg, o.inputKeys.Confirm):
		if len(o.selected) == 0 {
			o.problem = "Pick at least one theme"
			return nil
		}
		o.step = stepTime
		o.problem = ""
		o.input.CursorEnd()
		return o.input.Focus()
	}
	return nil
}

func (o *Onboarding) finish() tea.Cmd {
	clock, err := notify.ParseClock(strings.TrimSpace(o.input.Value()))
	if err != nil {
		o.problem = "Use HH:MM, for example 08:00"
		return nil
	}
	err = o.store.SetPreferences(store.PreferencesPatch{
		SelectedThemes:         o.selected,
		NotificationTime:       store.Ptr(clock.String()),
		HasCompletedOnboarding: store.Ptr(true),
	})
	return func() tea.Msg {
		return onboardingDoneMsg{err: err}
	}
}

// View renders the onboarding overlay.
func (o *Onboarding) View() string {
	overlayWidth := 60
	if o.width > 0 {
		overlayWidth = min(60, max(20, o.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(o.styles.ColorPrimary).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(o.styles.ColorPrimary).
		MarginBottom(1)

	bodyStyle := lipgloss.NewStyle().
		Foreground(o.styles.ColorText)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Welcome to Life Thoughts"))
	b.WriteString("\n\n")

	switch o.step {
	case stepThemes:
		b.WriteString(bodyStyle.Render("Pick a few themes so your daily thought matches your mood."))
		b.WriteString("\n\n")
		for i, t := range catalog.AllThemes() {
			box := o.styles.CheckOff
			if slices.Contains(o.selected, t) {
				box = o.styles.CheckOn
			}
			cursor := "  "
			if i == o.cursor {
				cursor = o.styles.InputPromptStyle.Render("> ")
			}
			b.WriteString(cursor + box + " " + o.styles.ThemeBadge(t) + "\n")
		}
		b.WriteString("\n")
		b.WriteString(o.styles.RenderHelp("space", "select", "enter", "continue"))

	case stepTime:
		b.WriteString(bodyStyle.Render("Daily reminder: one gentle notification each day."))
		b.WriteString("\n\n")
		b.WriteString(o.styles.InputPromptStyle.Render("Time ") + o.input.View())
		b.WriteString("\n\n")
		b.WriteString(o.styles.RenderHelp("enter", "start", "esc", "back"))
	}

	if o.problem != "" {
		b.WriteString("\n\n")
		b.WriteString(o.styles.ErrorStyle.Render(o.problem))
	}

	content := overlayStyle.Render(b.String())
	return lipgloss.Place(o.width, o.height, lipgloss.Center, lipgloss.Center, content)
}

package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"lifethoughts/internal/catalog"
	"lifethoughts/internal/config"
	"lifethoughts/internal/notify"
	"lifethoughts/internal/store"
)

type settingKind int

const (
	settingTheme settingKind = iota
	settingTime
	settingMode
	settingFontScale
	settingReduceMotion
)

type settingRow struct {
	kind  settingKind
	theme catalog.ThemeTag
}

var themeModeLabels = map[store.ThemeMode]string{
	store.ThemeModeSystem: "System",
	store.ThemeModeLight:  "Light",
	store.ThemeModeDark:   "Dark",
}

// FontScaleLabel names a font scale step.
func FontScaleLabel(scale float64) string {
	switch {
	case scale < 0.95:
		return "Small"
	case scale < 1.05:
		return "Default"
	case scale < 1.15:
		return "Large"
	default:
		return "Extra large"
	}
}

// SettingsPane edits the preferences. Every change goes through
// store.SetPreferences, which rejects invalid combinations.
type SettingsPane struct {
	store  *store.Store
	styles *Styles
	rows   []settingRow
	cursor int

	editing bool
	input   textinput.Model

	focused bool
	width   int
	height  int

	keys      SettingsKeyMap
	inputKeys InputKeyMap
}

// NewSettingsPane creates the settings pane.
func NewSettingsPane(s *store.Store, styles *Styles, keyCfg *config.KeysConfig) *SettingsPane {
	ti := textinput.New()
	ti.Placeholder = "HH:MM"
	ti.CharLimit = 5
	ti.Width = 6

	rows := make([]settingRow, 0, 9)
	for _, t := range catalog.AllThemes() {
		rows = append(rows, settingRow{kind: settingTheme, theme: t})
	}
	rows = append(rows,
		settingRow{kind: settingTime},
		settingRow{kind: settingMode},
		settingRow{kind: settingFontScale},
		settingRow{kind: settingReduceMotion},
	)

	return &SettingsPane{
		store:     s,
		styles:    styles,
		rows:      rows,
		input:     ti,
		keys:      NewSettingsKeyMap(keyCfg),
		inputKeys: NewInputKeyMap(keyCfg),
	}
}

// SetSize sets the pane dimensions.
func (p *SettingsPane) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetFocused sets whether this pane is focused.
func (p *SettingsPane) SetFocused(focused bool) {
	p.focused = focused
}

// IsEditing returns whether the reminder time field has the keyboard.
func (p *SettingsPane) IsEditing() bool {
	return p.editing
}

// Update handles messages for the settings pane.
func (p *SettingsPane) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if p.editing {
		if ok {
			switch {
			case key.Matches(keyMsg, p.inputKeys.Confirm):
				return p.commitTime()
			case key.Matches(keyMsg, p.inputKeys.Cancel):
				p.editing = false
				p.input.Blur()
				return nil
			}
		}
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return cmd
	}
	if !ok || !p.focused {
		return nil
	}

	switch {
	case key.Matches(keyMsg, p.keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(keyMsg, p.keys.Down):
		if p.cursor < len(p.rows)-1 {
			p.cursor++
		}
	case key.Matches(keyMsg, p.keys.Top):
		p.cursor = 0
	case key.Matches(keyMsg, p.keys.Bottom):
		p.cursor = len(p.rows) - 1
	case key.Matches(keyMsg, p.keys.Toggle):
		return p.activate(p.rows[p.cursor])
	}
	return nil
}

func (p *SettingsPane) activate(row settingRow) tea.Cmd {
	prefs := p.store.Preferences()

	switch row.kind {
	case settingTheme:
		next := toggleTheme(prefs.SelectedThemes, row.theme)
		if len(next) == 0 {
			return statusCmd("Keep at least one theme", true)
		}
		verb := "Added"
		if len(next) < len(prefs.SelectedThemes) {
			verb = "Removed"
		}
		return p.apply(store.PreferencesPatch{SelectedThemes: next}, fmt.Sprintf("%s %s", verb, row.theme.Title()))

	case settingTime:
		p.editing = true
		p.input.SetValue(prefs.NotificationTime)
		p.input.CursorEnd()
		return p.input.Focus()

	case settingMode:
		i := slices.Index(store.ThemeModes, prefs.ThemeMode)
		mode := store.ThemeModes[(i+1)%len(store.ThemeModes)]
		return p.apply(store.PreferencesPatch{ThemeMode: &mode}, "Appearance: "+themeModeLabels[mode])

	case settingFontScale:
		scale := nextFontScale(prefs.FontScale)
		return p.apply(store.PreferencesPatch{FontScale: &scale}, "Text size: "+FontScaleLabel(scale))

	case settingReduceMotion:
		on := !prefs.ReduceMotion
		desc := "Reduce motion off"
		if on {
			desc = "Reduce motion on"
		}
		return p.apply(store.PreferencesPatch{ReduceMotion: &on}, desc)
	}
	return nil
}

func (p *SettingsPane) commitTime() tea.Cmd {
	clock, err := notify.ParseClock(strings.TrimSpace(p.input.Value()))
	if err != nil {
		return statusCmd("Reminder time must be HH:MM", true)
	}
	p.editing = false
	p.input.Blur()
	return p.apply(store.PreferencesPatch{NotificationTime: store.Ptr(clock.String())}, "Reminder at "+clock.String())
}

func (p *SettingsPane) apply(patch store.PreferencesPatch, desc string) tea.Cmd {
	err := p.store.SetPreferences(patch)
	return func() tea.Msg {
		return prefsChangedMsg{desc: desc, err: err}
	}
}

// toggleTheme flips theme in selected, keeping display order.
func toggleTheme(selected []catalog.ThemeTag, theme catalog.ThemeTag) []catalog.ThemeTag {
	on := slices.Contains(selected, theme)
	next := make([]catalog.ThemeTag, 0, len(selected)+1)
	for _, t := range catalog.AllThemes() {
		has := slices.Contains(selected, t)
		if t == theme {
			has = !on
		}
		if has {
			next = append(next, t)
		}
	}
	return next
}

// nextFontScale steps 0.9 → 1.0 → 1.1 → 1.2 → 0.9. Unknown values restart
// at the first step.
func nextFontScale(current float64) float64 {
	for i, s := range store.FontScales {
		if s == current {
			return store.FontScales[(i+1)%len(store.FontScales)]
		}
	}
	return store.FontScales[0]
}

// View renders the settings pane.
func (p *SettingsPane) View() string {
	prefs := p.store.Preferences()

	var b strings.Builder
	b.WriteString(p.styles.PaneTitleStyle.Render("Settings"))
	b.WriteString("\n")

	for i, row := range p.rows {
		if row.kind == settingTime {
			b.WriteString("\n")
		}
		if row.kind == settingTheme && i == 0 {
			b.WriteString(p.styles.StatLabelStyle.Render("Themes"))
			b.WriteString("\n")
		}

		label, value := p.rowText(row, prefs)
		line := label
		if value != "" {
			line = fmt.Sprintf("%-14s %s", label, value)
		}

		if i == p.cursor && p.focused && !p.editing {
			b.WriteString(p.styles.ItemSelectedStyle.Render(" " + line + " "))
		} else if row.kind == settingTime && p.editing {
			b.WriteString(" " + fmt.Sprintf("%-14s ", label) + p.styles.InputPromptStyle.Render("> ") + p.input.View())
		} else {
			b.WriteString(" " + p.styles.ItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	return style.Width(p.width).Height(p.height).Render(b.String())
}

func (p *SettingsPane) rowText(row settingRow, prefs store.Preferences) (string, string) {
	switch row.kind {
	case settingTheme:
		box := "[ ]"
		if slices.Contains(prefs.SelectedThemes, row.theme) {
			box = "[✓]"
		}
		return box + " " + row.theme.Title(), ""
	case settingTime:
		return "Reminder", prefs.NotificationTime
	case settingMode:
		return "Appearance", themeModeLabels[prefs.ThemeMode]
	case settingFontScale:
		return "Text size", FontScaleLabel(prefs.FontScale)
	case settingReduceMotion:
		if prefs.ReduceMotion {
			return "Reduce motion", "on"
		}
		return "Reduce motion", "off"
	}
	return "", ""
}

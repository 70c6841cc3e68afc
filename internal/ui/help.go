package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"lifethoughts/internal/config"
)

// HelpOverlay renders the key reference. It lists the configured bindings,
// so custom keys show up as the user set them.
type HelpOverlay struct {
	width  int
	height int
	styles *Styles

	global   GlobalKeyMap
	today    TodayKeyMap
	library  LibraryKeyMap
	settings SettingsKeyMap
}

// NewHelpOverlay creates a new help overlay
func NewHelpOverlay(styles *Styles, keyCfg *config.KeysConfig) *HelpOverlay {
	return &HelpOverlay{
		styles:   styles,
		global:   NewGlobalKeyMap(keyCfg),
		today:    NewTodayKeyMap(keyCfg),
		library:  NewLibraryKeyMap(keyCfg),
		settings: NewSettingsKeyMap(keyCfg),
	}
}

// SetSize sets the overlay dimensions
func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// View renders the help overlay
func (h *HelpOverlay) View() string {
	overlayWidth := 60
	if h.width > 0 {
		overlayWidth = min(60, max(20, h.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(h.styles.ColorPrimary).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorPrimary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorAccent).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorWarning).
		Width(14)

	descStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorText)

	mutedStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorTextMuted).
		Italic(true)

	line := func(b *strings.Builder, keys, desc string) {
		b.WriteString(keyStyle.Render(keys) + descStyle.Render(desc) + "\n")
	}
	section := func(b *strings.Builder, name string) {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(name))
		b.WriteString("\n")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("thoughts - Keyboard Shortcuts"))
	b.WriteString("\n")

	g := h.global
	section(&b, "Global")
	line(&b, keyLabel(g.NextPane), "Switch pane")
	line(&b, keyLabel(g.Pane1)+" / "+keyLabel(g.Pane2)+" / "+keyLabel(g.Pane3), "Jump to pane")
	line(&b, keyLabel(g.Undo)+" / "+keyLabel(g.Redo), "Undo / redo save changes")
	line(&b, keyLabel(g.Help), "Toggle help")
	line(&b, keyLabel(g.Quit), "Quit")

	t := h.today
	section(&b, "Today")
	line(&b, keyLabel(t.Prev)+" / "+keyLabel(t.Next), "Previous / next thought")
	line(&b, keyLabel(t.Save), "Save or unsave")
	line(&b, keyLabel(t.Share), "Copy to clipboard")

	l := h.library
	section(&b, "Library")
	line(&b, keyLabel(l.Search), "Search text or author")
	line(&b, keyLabel(l.Filter), "Cycle theme filter")
	line(&b, keyLabel(l.Unsave), "Remove from library")
	line(&b, keyLabel(l.Up)+" / "+keyLabel(l.Down), "Navigate up/down")

	s := h.settings
	section(&b, "Settings")
	line(&b, keyLabel(s.Toggle), "Toggle, cycle or edit")

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Press ? or Esc to close"))

	content := overlayStyle.Render(b.String())
	return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, content)
}

func keyLabel(b key.Binding) string {
	return b.Help().Key
}

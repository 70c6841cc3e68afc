package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"lifethoughts/internal/catalog"
	"lifethoughts/internal/config"
	"lifethoughts/internal/store"
)

// LibraryPane lists saved quotes with a theme filter and a text search.
type LibraryPane struct {
	store   *store.Store
	catalog *catalog.Catalog
	styles  *Styles

	quotes    []catalog.Quote // after filter and search
	total     int             // saved quotes before filtering
	filter    catalog.ThemeTag
	query     string
	searching bool
	input     textinput.Model
	cursor    int

	focused bool
	width   int
	height  int

	keys      LibraryKeyMap
	inputKeys InputKeyMap
}

// NewLibraryPane creates the library pane.
func NewLibraryPane(s *store.Store, c *catalog.Catalog, styles *Styles, keyCfg *config.KeysConfig) *LibraryPane {
	ti := textinput.New()
	ti.Placeholder = "Search text or author"
	ti.CharLimit = 60
	ti.Width = 30

	p := &LibraryPane{
		store:     s,
		catalog:   c,
		styles:    styles,
		input:     ti,
		keys:      NewLibraryKeyMap(keyCfg),
		inputKeys: NewInputKeyMap(keyCfg),
	}
	p.Refresh()
	return p
}

// Refresh re-reads the saved set and reapplies the filter and search.
func (p *LibraryPane) Refresh() {
	saved := p.catalog.Saved(p.store.SavedIDs())
	p.total = len(saved)
	p.quotes = catalog.Search(catalog.FilterTheme(saved, p.filter), p.query)
	if p.cursor >= len(p.quotes) {
		p.cursor = max(0, len(p.quotes)-1)
	}
}

// Quotes returns the visible quotes.
func (p *LibraryPane) Quotes() []catalog.Quote {
	return p.quotes
}

// Filter returns the active theme filter; empty means all themes.
func (p *LibraryPane) Filter() catalog.ThemeTag {
	return p.filter
}

// Selected returns the quote under the cursor.
func (p *LibraryPane) Selected() (catalog.Quote, bool) {
	if p.cursor < 0 || p.cursor >= len(p.quotes) {
		return catalog.Quote{}, false
	}
	return p.quotes[p.cursor], true
}

// SetSize sets the pane dimensions.
func (p *LibraryPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = max(10, width-12)
}

// SetFocused sets whether this pane is focused.
func (p *LibraryPane) SetFocused(focused bool) {
	p.focused = focused
}

// IsSearching returns whether the search field has the keyboard.
func (p *LibraryPane) IsSearching() bool {
	return p.searching
}

// nextFilter cycles all → stoicism → … → joy → all.
func nextFilter(current catalog.ThemeTag) catalog.ThemeTag {
	themes := catalog.AllThemes()
	if current == "" {
		return themes[0]
	}
	for i, t := range themes {
		if t == current && i+1 < len(themes) {
			return themes[i+1]
		}
	}
	return ""
}

// Update handles messages for the library pane.
func (p *LibraryPane) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if p.searching {
			var cmd tea.Cmd
			p.input, cmd = p.input.Update(msg)
			return cmd
		}
		return nil
	}

	if p.searching {
		switch {
		case key.Matches(keyMsg, p.inputKeys.Confirm):
			p.searching = false
			p.input.Blur()
			return nil
		case key.Matches(keyMsg, p.inputKeys.Cancel):
			p.searching = false
			p.input.Blur()
			p.input.Reset()
			p.query = ""
			p.Refresh()
			return nil
		}
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(keyMsg)
		p.query = p.input.Value()
		p.Refresh()
		return cmd
	}

	if !p.focused {
		return nil
	}

	switch {
	case key.Matches(keyMsg, p.keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(keyMsg, p.keys.Down):
		if p.cursor < len(p.quotes)-1 {
			p.cursor++
		}
	case key.Matches(keyMsg, p.keys.Top):
		p.cursor = 0
	case key.Matches(keyMsg, p.keys.Bottom):
		p.cursor = max(0, len(p.quotes)-1)
	case key.Matches(keyMsg, p.keys.Filter):
		p.filter = nextFilter(p.filter)
		p.cursor = 0
		p.Refresh()
	case key.Matches(keyMsg, p.keys.Search):
		p.searching = true
		p.input.SetValue(p.query)
		p.input.CursorEnd()
		return p.input.Focus()
	case key.Matches(keyMsg, p.keys.Unsave):
		q, ok := p.Selected()
		if !ok {
			return statusCmd("Nothing selected", true)
		}
		p.store.UnsaveThought(q.ID)
		p.Refresh()
		return func() tea.Msg {
			return savedToggledMsg{id: q.ID, text: q.Text, saved: false}
		}
	case key.Matches(keyMsg, p.keys.Share):
		if q, ok := p.Selected(); ok {
			return copyQuoteCmd(q)
		}
	}
	return nil
}

// View renders the library pane.
func (p *LibraryPane) View() string {
	var b strings.Builder

	b.WriteString(p.styles.PaneTitleStyle.Render(fmt.Sprintf("Library (%d)", p.total)))
	b.WriteString("\n")

	filter := "All"
	if p.filter != "" {
		filter = p.styles.ThemeBadge(p.filter)
	}
	b.WriteString(p.styles.StatLabelStyle.Render("Theme: ") + filter)
	if p.searching {
		b.WriteString("\n" + p.styles.InputPromptStyle.Render("/ ") + p.input.View())
	} else if p.query != "" {
		b.WriteString(p.styles.StatLabelStyle.Render("  Search: ") + p.query)
	}
	b.WriteString("\n")

	sepWidth := max(10, p.width-4)
	b.WriteString(lipgloss.NewStyle().Foreground(p.styles.ColorMuted).Render(strings.Repeat("─", sepWidth)))
	b.WriteString("\n")

	empty := lipgloss.NewStyle().Foreground(p.styles.ColorTextMuted).Italic(true)
	switch {
	case p.total == 0:
		b.WriteString(empty.Render("  No saved thoughts yet. Press 's' on Today to save one."))
		b.WriteString("\n")
	case len(p.quotes) == 0:
		b.WriteString(empty.Render("  No matches."))
		b.WriteString("\n")
	default:
		p.renderList(&b)
	}

	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	return style.Width(p.width).Height(p.height).Render(b.String())
}

func (p *LibraryPane) renderList(b *strings.Builder) {
	maxRows := p.height - 7
	if p.searching {
		maxRows--
	}
	if maxRows < 3 {
		maxRows = 3
	}

	start := 0
	if p.cursor >= maxRows {
		start = p.cursor - maxRows + 1
	}

	// Layout: [space][icon][space][text][space][author]
	textWidth := max(5, p.width-8)
	for i := start; i < len(p.quotes) && i < start+maxRows; i++ {
		q := p.quotes[i]
		line := q.Text
		if q.Author != "" {
			line += " — " + q.Author
		}
		line = runewidth.Truncate(line, textWidth, "..")

		if i == p.cursor && p.focused && !p.searching {
			pad := max(0, textWidth-runewidth.StringWidth(line))
			b.WriteString(p.styles.ItemSelectedStyle.Render(" ♥ " + line + strings.Repeat(" ", pad)))
		} else {
			b.WriteString(" " + p.styles.SavedIcon + " " + p.styles.ItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if len(p.quotes) > maxRows {
		b.WriteString(p.styles.StatLabelStyle.Render(fmt.Sprintf("  %d/%d", p.cursor+1, len(p.quotes))))
		b.WriteString("\n")
	}
}

package ui

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lifethoughts/internal/catalog"
	"lifethoughts/internal/config"
	"lifethoughts/internal/store"
)

// TodayPane shows the daily pick followed by a bundle of related quotes the
// user can page through. Every quote reached by paging is recorded in the
// store's recent window; the daily pick itself is not, so it stays the same
// for the whole day.
type TodayPane struct {
	store   *store.Store
	catalog *catalog.Catalog
	styles  *Styles
	keys    TodayKeyMap

	now         func() time.Time
	rng         *rand.Rand
	bundleSize  int
	refillBelow int

	date     string
	themes   []catalog.ThemeTag
	thoughts []catalog.Quote // thoughts[0] is the daily pick
	index    int
	drained  bool
	err      error

	fading  bool
	fadeSeq int

	focused bool
	width   int
	height  int
}

// TodayOptions tunes bundle loading. Zero values take the defaults.
type TodayOptions struct {
	BundleSize  int
	RefillBelow int
	Now         func() time.Time
	Rand        *rand.Rand
}

// NewTodayPane creates the today pane. Call Reload to pick the quotes.
func NewTodayPane(s *store.Store, c *catalog.Catalog, styles *Styles, keyCfg *config.KeysConfig, opts TodayOptions) *TodayPane {
	if opts.BundleSize <= 0 {
		opts.BundleSize = 10
	}
	if opts.RefillBelow < 0 {
		opts.RefillBelow = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &TodayPane{
		store:       s,
		catalog:     c,
		styles:      styles,
		keys:        NewTodayKeyMap(keyCfg),
		now:         opts.Now,
		rng:         opts.Rand,
		bundleSize:  opts.BundleSize,
		refillBelow: opts.RefillBelow,
		focused:     true,
	}
}

// Reload recomputes the daily pick for the current date and themes and
// starts a fresh bundle.
func (p *TodayPane) Reload() {
	prefs := p.store.Preferences()
	p.date = p.now().Format(time.DateOnly)
	p.themes = slices.Clone(prefs.SelectedThemes)
	p.thoughts = nil
	p.index = 0
	p.drained = false
	p.fading = false

	daily, err := p.catalog.SelectDaily(p.date, p.themes, p.store.RecentlyShown())
	if err != nil {
		p.err = err
		return
	}
	p.err = nil
	p.thoughts = []catalog.Quote{daily}
	p.refill()
}

// Stale reports whether the date or the selected themes changed since the
// last Reload.
func (p *TodayPane) Stale() bool {
	if p.now().Format(time.DateOnly) != p.date {
		return true
	}
	return !slices.Equal(p.themes, p.store.Preferences().SelectedThemes)
}

// refill appends another bundle once fewer than refillBelow quotes are left
// ahead of the cursor. Quotes already loaded are never repeated. When the
// recent window leaves nothing to show, recency is ignored for the bundle.
func (p *TodayPane) refill() {
	if p.err != nil || p.drained || len(p.thoughts) == 0 {
		return
	}
	ahead := len(p.thoughts) - 1 - p.index
	if ahead > 0 && ahead >= p.refillBelow {
		return
	}

	loaded := make([]string, 0, len(p.thoughts))
	for _, q := range p.thoughts {
		loaded = append(loaded, q.ID)
	}
	daily := p.thoughts[0].ID

	more := p.catalog.SelectBundle(daily, p.themes, append(p.store.RecentlyShown(), loaded...), p.bundleSize, p.rng)
	if len(more) == 0 {
		more = p.catalog.SelectBundle(daily, p.themes, loaded, p.bundleSize, p.rng)
	}
	if len(more) == 0 {
		p.drained = true
		return
	}
	p.thoughts = append(p.thoughts, more...)
}

// Current returns the quote under the cursor.
func (p *TodayPane) Current() (catalog.Quote, bool) {
	if p.index < 0 || p.index >= len(p.thoughts) {
		return catalog.Quote{}, false
	}
	return p.thoughts[p.index], true
}

// Daily returns today's pick.
func (p *TodayPane) Daily() (catalog.Quote, bool) {
	if len(p.thoughts) == 0 {
		return catalog.Quote{}, false
	}
	return p.thoughts[0], true
}

// Position returns the 1-based cursor position and the number of loaded quotes.
func (p *TodayPane) Position() (int, int) {
	return p.index + 1, len(p.thoughts)
}

// Err returns the selection error, if the themes match nothing.
func (p *TodayPane) Err() error {
	return p.err
}

// SetSize sets the pane dimensions.
func (p *TodayPane) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetFocused sets whether this pane is focused.
func (p *TodayPane) SetFocused(focused bool) {
	p.focused = focused
}

// Update handles messages for the today pane.
func (p *TodayPane) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case transitionDoneMsg:
		if msg.seq == p.fadeSeq {
			p.fading = false
		}
		return nil

	case tea.KeyMsg:
		if !p.focused {
			return nil
		}
		switch {
		case key.Matches(msg, p.keys.Next):
			return p.move(1)
		case key.Matches(msg, p.keys.Prev):
			return p.move(-1)
		case key.Matches(msg, p.keys.Save):
			return p.toggleSave()
		case key.Matches(msg, p.keys.Share):
			if q, ok := p.Current(); ok {
				return copyQuoteCmd(q)
			}
		}
	}
	return nil
}

func (p *TodayPane) move(delta int) tea.Cmd {
	next := p.index + delta
	if next < 0 || next >= len(p.thoughts) {
		if delta > 0 && len(p.thoughts) > 0 {
			return statusCmd("That's all for today", false)
		}
		return nil
	}

	p.index = next
	if next > 0 {
		p.store.AddShownThought(p.thoughts[next].ID)
	}
	p.refill()

	p.fadeSeq++
	if p.store.Preferences().ReduceMotion {
		p.fading = false
		return nil
	}
	p.fading = true
	return transitionCmd(p.fadeSeq)
}

func (p *TodayPane) toggleSave() tea.Cmd {
	q, ok := p.Current()
	if !ok {
		return nil
	}
	saved := p.store.ToggleSaved(q.ID)
	return func() tea.Msg {
		return savedToggledMsg{id: q.ID, text: q.Text, saved: saved}
	}
}

// View renders the today pane.
func (p *TodayPane) View() string {
	var b strings.Builder

	title := "Today"
	if t, err := time.Parse(time.DateOnly, p.date); err == nil {
		title += " · " + t.Format("Mon Jan 2")
	}
	b.WriteString(p.styles.PaneTitleStyle.Render(title))
	b.WriteString("\n")

	innerWidth := max(20, p.width-4)

	q, ok := p.Current()
	switch {
	case errors.Is(p.err, catalog.ErrEmptySelection):
		b.WriteString(p.styles.ErrorStyle.Render("No thoughts match your themes."))
		b.WriteString("\n")
		b.WriteString(p.styles.HelpStyle.Render("Pick other themes in Settings."))
	case p.err != nil:
		b.WriteString(p.styles.ErrorStyle.Render(p.err.Error()))
	case !ok:
		b.WriteString(p.styles.HelpStyle.Render("Loading…"))
	default:
		b.WriteString(p.renderCard(q, innerWidth-2))
		b.WriteString("\n")
		b.WriteString(p.renderFooter(q))
	}

	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	return style.Width(p.width).Height(p.height).Render(b.String())
}

func (p *TodayPane) renderCard(q catalog.Quote, width int) string {
	quoteStyle := p.styles.QuoteStyle
	if p.fading {
		quoteStyle = quoteStyle.Foreground(p.styles.ColorTextMuted)
	}

	_, h := p.styles.CardPadding()
	textWidth := max(8, width-2*h-2)

	var body strings.Builder
	if p.index == 0 {
		body.WriteString(p.styles.StatLabelStyle.Render("Thought of the day"))
		body.WriteString("\n\n")
	}
	body.WriteString(quoteStyle.Width(textWidth).Render("“" + q.Text + "”"))
	if a := q.Attribution(); a != "" {
		body.WriteString("\n\n")
		body.WriteString(p.styles.AuthorStyle.Width(textWidth).Align(lipgloss.Right).Render(a))
	}
	return p.styles.CardStyle(q.PrimaryTheme(), width).Render(body.String())
}

func (p *TodayPane) renderFooter(q catalog.Quote) string {
	badges := make([]string, 0, len(q.Tags))
	for _, t := range q.Tags {
		badges = append(badges, p.styles.ThemeBadge(t))
	}

	icon := p.styles.UnsavedIcon
	if p.store.IsThoughtSaved(q.ID) {
		icon = p.styles.SavedIcon
	}

	pos, total := p.Position()
	counter := p.styles.StatLabelStyle.Render(fmt.Sprintf("%d/%d", pos, total))
	return icon + "  " + strings.Join(badges, " · ") + "  " + counter
}

// Package ui provides terminal user interface components for the thoughts app.
// This file contains the main App model which coordinates all panes and
// routes messages using the Bubble Tea architecture.
package ui

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lifethoughts/internal/catalog"
	"lifethoughts/internal/config"
	"lifethoughts/internal/store"
)

// PaneID identifies each pane in the application.
type PaneID int

const (
	PaneToday PaneID = iota
	PaneLibrary
	PaneSettings
)

// LayoutMode determines how panes are arranged based on terminal width.
type LayoutMode int

const (
	// LayoutWide shows all three panes side-by-side.
	LayoutWide LayoutMode = iota
	// LayoutNarrow shows only the focused pane with a tab bar.
	LayoutNarrow
)

// AppConfig holds user configuration for the app behavior.
type AppConfig struct {
	Keys                  *config.KeysConfig
	Theme                 *config.ThemeConfig
	ShowOnboarding        bool
	NarrowLayoutThreshold int
	BundleSize            int
	RefillBelow           int

	// Now and Rand are replaced in tests.
	Now  func() time.Time
	Rand *rand.Rand
}

// App is the main application model that coordinates all panes.
type App struct {
	store        *store.Store
	catalog      *catalog.Catalog
	styles       *Styles
	config       *AppConfig
	todayPane    *TodayPane
	libraryPane  *LibraryPane
	settingsPane *SettingsPane
	onboarding   *Onboarding
	helpOverlay  *HelpOverlay
	history      *History
	undoBusy     bool
	activePane   PaneID
	layoutMode   LayoutMode
	showHelp     bool
	width        int
	height       int
	status       string
	statusErr    bool
	statusUntil  time.Time
	quitting     bool

	// Key bindings
	keys     GlobalKeyMap
	helpKeys HelpKeyMap

	// Pane positions for mouse click detection (x coordinates)
	todayPaneStart    int
	todayPaneEnd      int
	libraryPaneStart  int
	libraryPaneEnd    int
	settingsPaneStart int
	settingsPaneEnd   int
	contentTop        int // Y coordinate where content starts
}

// NewApp creates a new application over an open store and catalog.
func NewApp(s *store.Store, c *catalog.Catalog, cfg *AppConfig) *App {
	if cfg == nil {
		cfg = &AppConfig{ShowOnboarding: true, NarrowLayoutThreshold: 80}
	}
	if cfg.Keys == nil {
		cfg.Keys = &config.KeysConfig{}
	}
	if cfg.Theme == nil {
		cfg.Theme = &config.ThemeConfig{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	styles := NewStyles(cfg.Theme, s.Preferences())

	app := &App{
		store:   s,
		catalog: c,
		styles:  styles,
		config:  cfg,
		todayPane: NewTodayPane(s, c, styles, cfg.Keys, TodayOptions{
			BundleSize:  cfg.BundleSize,
			RefillBelow: cfg.RefillBelow,
			Now:         cfg.Now,
			Rand:        cfg.Rand,
		}),
		libraryPane:  NewLibraryPane(s, c, styles, cfg.Keys),
		settingsPane: NewSettingsPane(s, styles, cfg.Keys),
		helpOverlay:  NewHelpOverlay(styles, cfg.Keys),
		history:      NewHistory(s),
		activePane:   PaneToday,
		keys:         NewGlobalKeyMap(cfg.Keys),
		helpKeys:     DefaultHelpKeyMap(),
	}

	if cfg.ShowOnboarding && !s.Preferences().HasCompletedOnboarding {
		app.onboarding = NewOnboarding(s, styles, cfg.Keys)
	}
	app.todayPane.Reload()
	app.setActivePane(PaneToday)
	return app
}

// Init starts the status ticker.
func (a *App) Init() tea.Cmd {
	return tickCmd()
}

// Update handles all messages and routes them appropriately.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Results of pane actions are handled regardless of which pane is active.
	switch msg := msg.(type) {
	case statusMsg:
		a.SetStatus(msg.text, msg.isErr)
		return a, nil

	case copiedMsg:
		if msg.err != nil {
			a.SetStatus("Copy failed: "+msg.err.Error(), true)
		} else {
			a.SetStatus("Copied to clipboard", false)
		}
		return a, nil

	case savedToggledMsg:
		a.history.Record(msg.id, msg.text, msg.saved)
		if msg.saved {
			a.SetStatus("Saved to library", false)
		} else {
			a.SetStatus("Removed from library", false)
		}
		a.libraryPane.Refresh()
		return a, nil

	case prefsChangedMsg:
		if msg.err != nil {
			a.SetStatus(msg.err.Error(), true)
			return a, nil
		}
		a.applyPreferences()
		a.SetStatus(msg.desc, false)
		return a, nil

	case onboardingDoneMsg:
		if msg.err != nil {
			a.SetStatus(msg.err.Error(), true)
			return a, nil
		}
		a.onboarding = nil
		a.applyPreferences()
		a.SetStatus("Here is your first thought", false)
		return a, nil

	case undoResultMsg:
		a.undoBusy = false
		if msg.desc != "" {
			a.SetStatus("Undid: "+msg.desc, false)
		} else {
			a.SetStatus("Nothing to undo", false)
		}
		a.libraryPane.Refresh()
		return a, nil

	case redoResultMsg:
		a.undoBusy = false
		if msg.desc != "" {
			a.SetStatus("Redid: "+msg.desc, false)
		} else {
			a.SetStatus("Nothing to redo", false)
		}
		a.libraryPane.Refresh()
		return a, nil

	case transitionDoneMsg:
		return a, a.todayPane.Update(msg)

	case tickMsg:
		if a.status != "" && !a.statusUntil.IsZero() && a.config.Now().After(a.statusUntil) {
			a.status = ""
			a.statusErr = false
			a.statusUntil = time.Time{}
		}
		if a.onboarding == nil && a.todayPane.Stale() {
			a.todayPane.Reload()
		}
		return a, tickCmd()

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil
	}

	if a.onboarding != nil {
		if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyCtrlC {
			a.quitting = true
			return a, tea.Quit
		}
		return a, a.onboarding.Update(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Help overlay takes priority
		if a.showHelp {
			if key.Matches(msg, a.helpKeys.Close) {
				a.showHelp = false
			}
			return a, nil
		}

		inInputMode := a.libraryPane.IsSearching() || a.settingsPane.IsEditing()
		if !inInputMode {
			switch {
			case key.Matches(msg, a.keys.Quit):
				a.quitting = true
				return a, tea.Quit

			case key.Matches(msg, a.keys.Help):
				a.showHelp = true
				return a, nil

			case key.Matches(msg, a.keys.NextPane):
				a.switchPane()
				return a, nil

			case key.Matches(msg, a.keys.Pane1):
				a.setActivePane(PaneToday)
				return a, nil

			case key.Matches(msg, a.keys.Pane2):
				a.setActivePane(PaneLibrary)
				return a, nil

			case key.Matches(msg, a.keys.Pane3):
				a.setActivePane(PaneSettings)
				return a, nil

			case key.Matches(msg, a.keys.Undo):
				if a.undoBusy {
					a.SetStatus("Undo: busy", true)
					return a, nil
				}
				a.undoBusy = true
				return a, undoCmd(a.history)

			case key.Matches(msg, a.keys.Redo):
				if a.undoBusy {
					a.SetStatus("Redo: busy", true)
					return a, nil
				}
				a.undoBusy = true
				return a, redoCmd(a.history)
			}
		}

	case tea.MouseMsg:
		if a.showHelp {
			if msg.Action == tea.MouseActionPress {
				a.showHelp = false
			}
			return a, nil
		}
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return a, nil
		}
		if a.layoutMode == LayoutNarrow && msg.Y == a.contentTop-1 {
			tabWidth := max(1, a.width/3)
			a.setActivePane(PaneID(min(2, msg.X/tabWidth)))
			return a, nil
		}
		if pane := a.paneAtPosition(msg.X); pane >= 0 && pane != a.activePane {
			a.setActivePane(pane)
		}
		return a, nil
	}

	if a.showHelp {
		return a, nil
	}

	switch a.activePane {
	case PaneToday:
		return a, a.todayPane.Update(msg)
	case PaneLibrary:
		return a, a.libraryPane.Update(msg)
	case PaneSettings:
		return a, a.settingsPane.Update(msg)
	}
	return a, nil
}

// applyPreferences rebuilds the styles in place, so every pane sees the new
// scheme, and reloads today's quotes if the themes changed.
func (a *App) applyPreferences() {
	*a.styles = *NewStyles(a.config.Theme, a.store.Preferences())
	if a.todayPane.Stale() {
		a.todayPane.Reload()
	}
	a.libraryPane.Refresh()
}

// switchPane cycles through panes.
func (a *App) switchPane() {
	a.setActivePane((a.activePane + 1) % 3)
}

// setActivePane sets the active pane and updates focus states.
func (a *App) setActivePane(pane PaneID) {
	a.activePane = pane

	a.todayPane.SetFocused(pane == PaneToday)
	a.libraryPane.SetFocused(pane == PaneLibrary)
	a.settingsPane.SetFocused(pane == PaneSettings)
	if pane == PaneLibrary {
		a.libraryPane.Refresh()
	}
}

// paneAtPosition returns which pane is at the given X coordinate.
// Returns -1 if no pane is at that position.
func (a *App) paneAtPosition(x int) PaneID {
	if a.layoutMode == LayoutNarrow {
		return a.activePane
	}

	switch {
	case x >= a.todayPaneStart && x < a.todayPaneEnd:
		return PaneToday
	case x >= a.libraryPaneStart && x < a.libraryPaneEnd:
		return PaneLibrary
	case x >= a.settingsPaneStart && x < a.settingsPaneEnd:
		return PaneSettings
	}
	return -1
}

// updateLayout recalculates pane sizes based on terminal dimensions.
func (a *App) updateLayout() {
	// Leave room for title bar and help bar
	contentHeight := max(10, a.height-4)
	a.contentTop = 1

	a.helpOverlay.SetSize(a.width, a.height)
	if a.onboarding != nil {
		a.onboarding.SetSize(a.width, a.height)
	}

	totalWidth := a.width - 4

	threshold := a.config.NarrowLayoutThreshold
	if threshold <= 0 {
		threshold = 80
	}

	if a.width < threshold {
		a.layoutMode = LayoutNarrow

		narrowHeight := max(8, contentHeight-1)
		paneWidth := max(20, totalWidth)

		a.todayPane.SetSize(paneWidth, narrowHeight)
		a.libraryPane.SetSize(paneWidth, narrowHeight)
		a.settingsPane.SetSize(paneWidth, narrowHeight)

		a.todayPaneStart, a.todayPaneEnd = 0, a.width
		a.libraryPaneStart, a.libraryPaneEnd = 0, a.width
		a.settingsPaneStart, a.settingsPaneEnd = 0, a.width
		// Content starts after tab bar in narrow mode
		a.contentTop = 2
		return
	}

	a.layoutMode = LayoutWide

	// The card gets the most room; settings needs roughly a fixed width.
	settingsWidth := min(34, (totalWidth*25)/100)
	todayWidth := (totalWidth - settingsWidth) * 55 / 100
	libraryWidth := totalWidth - settingsWidth - todayWidth - 2

	a.todayPane.SetSize(todayWidth, contentHeight)
	a.libraryPane.SetSize(libraryWidth, contentHeight)
	a.settingsPane.SetSize(settingsWidth, contentHeight)

	a.todayPaneStart = 0
	a.todayPaneEnd = todayWidth
	a.libraryPaneStart = todayWidth + 1
	a.libraryPaneEnd = a.libraryPaneStart + libraryWidth
	a.settingsPaneStart = a.libraryPaneEnd + 1
	a.settingsPaneEnd = a.settingsPaneStart + settingsWidth
}

// View renders the entire app.
func (a *App) View() string {
	if a.quitting {
		return a.renderGoodbye()
	}
	if a.onboarding != nil {
		return a.onboarding.View()
	}
	if a.showHelp {
		return a.helpOverlay.View()
	}

	var b strings.Builder
	b.WriteString(a.renderTitleBar())
	b.WriteString("\n")

	switch a.layoutMode {
	case LayoutNarrow:
		b.WriteString(a.renderNarrowContent())
	default:
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			a.todayPane.View(), " ", a.libraryPane.View(), " ", a.settingsPane.View()))
	}
	b.WriteString("\n")

	b.WriteString(a.renderHelpBar())
	return b.String()
}

// renderNarrowContent renders the focused pane with a tab bar.
func (a *App) renderNarrowContent() string {
	var b strings.Builder

	b.WriteString(a.renderPaneTabs())
	b.WriteString("\n")

	switch a.activePane {
	case PaneToday:
		b.WriteString(a.todayPane.View())
	case PaneLibrary:
		b.WriteString(a.libraryPane.View())
	case PaneSettings:
		b.WriteString(a.settingsPane.View())
	}
	return b.String()
}

// renderPaneTabs renders a tab bar showing available panes.
func (a *App) renderPaneTabs() string {
	tabs := []struct {
		id    PaneID
		label string
	}{
		{PaneToday, "Today"},
		{PaneLibrary, "Library"},
		{PaneSettings, "Settings"},
	}

	activeTabStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorPrimary).
		Bold(true)
	inactiveTabStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorTextMuted)

	var parts []string
	for _, tab := range tabs {
		if tab.id == a.activePane {
			parts = append(parts, activeTabStyle.Render("["+tab.label+"]"))
		} else {
			parts = append(parts, inactiveTabStyle.Render(" "+tab.label+" "))
		}
	}

	tabBar := strings.Join(parts, "  ")
	if padding := (a.width - lipgloss.Width(tabBar)) / 2; padding > 0 {
		tabBar = strings.Repeat(" ", padding) + tabBar
	}
	return tabBar
}

// renderGoodbye shows the exit message.
func (a *App) renderGoodbye() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  See you tomorrow.\n")
	b.WriteString("\n")
	if q, ok := a.todayPane.Daily(); ok {
		b.WriteString("  " + truncateText(ShareText(q), max(20, a.width-4)) + "\n")
		b.WriteString("\n")
	}
	return b.String()
}

// renderTitleBar creates the top title bar with counts and the date.
func (a *App) renderTitleBar() string {
	title := a.styles.TitleStyle.Render(" thoughts ")

	prefs := a.store.Preferences()
	themes := make([]string, len(prefs.SelectedThemes))
	for i, t := range prefs.SelectedThemes {
		themes[i] = t.Title()
	}
	stats := a.styles.StatLabelStyle.Render(fmt.Sprintf("Saved: %d  Themes: %s",
		a.store.SavedCount(), strings.Join(themes, ", ")))

	date := a.styles.DateStyle.Render(a.config.Now().Format("Mon Jan 2 · 15:04"))

	used := lipgloss.Width(title) + lipgloss.Width(stats) + lipgloss.Width(date) + 2
	spacer := max(2, a.width-used)

	return title + "  " + stats + strings.Repeat(" ", spacer) + date
}

// renderHelpBar creates the bottom help bar with context-sensitive hints.
func (a *App) renderHelpBar() string {
	if a.status != "" {
		if a.statusErr {
			return a.styles.ErrorStyle.Render(a.status)
		}
		return a.styles.StatusStyle.Render(a.status)
	}

	if a.libraryPane.IsSearching() {
		return a.styles.RenderHelp("enter", "keep", "esc", "clear")
	}
	if a.settingsPane.IsEditing() {
		return a.styles.RenderHelp("enter", "save", "esc", "cancel")
	}

	switch a.activePane {
	case PaneToday:
		k := a.todayPane.keys
		return a.styles.RenderHelp(
			keyLabel(k.Prev)+"/"+keyLabel(k.Next), "browse",
			keyLabel(k.Save), "save",
			keyLabel(k.Share), "copy",
			keyLabel(a.keys.NextPane), "pane",
			keyLabel(a.keys.Help), "help",
		)
	case PaneLibrary:
		k := a.libraryPane.keys
		return a.styles.RenderHelp(
			keyLabel(k.Search), "search",
			keyLabel(k.Filter), "theme",
			keyLabel(k.Unsave), "remove",
			keyLabel(a.keys.Undo), "undo",
			keyLabel(a.keys.NextPane), "pane",
			keyLabel(a.keys.Help), "help",
		)
	case PaneSettings:
		k := a.settingsPane.keys
		return a.styles.RenderHelp(
			keyLabel(k.Toggle), "change",
			keyLabel(k.Up)+"/"+keyLabel(k.Down), "nav",
			keyLabel(a.keys.NextPane), "pane",
			keyLabel(a.keys.Help), "help",
		)
	}
	return ""
}

// SetStatus sets a status message to display to the user.
func (a *App) SetStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
	ttl := 5 * time.Second
	if isErr {
		ttl = 8 * time.Second
	}
	a.statusUntil = a.config.Now().Add(ttl)
}

// Run starts the Bubble Tea program.
func Run(s *store.Store, c *catalog.Catalog, cfg *AppConfig) error {
	app := NewApp(s, c, cfg)
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Background write failures surface in the status line.
	s.SetErrorHook(func(err error) {
		p.Send(statusMsg{text: "Could not save: " + err.Error(), isErr: true})
	})
	defer s.SetErrorHook(nil)

	_, err := p.Run()
	return err
}

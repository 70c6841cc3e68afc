// Package ui provides terminal user interface components for the thoughts app.
// This file defines key bindings using the Bubble Tea key package so they
// can be matched, listed in help and overridden from the config file.
package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"lifethoughts/internal/config"
)

// =============================================================================
// Helpers
// =============================================================================

// parseKeys splits a comma-separated string into individual keys.
// If the input is empty, returns the default keys.
func parseKeys(customKeys string, defaultKeys ...string) []string {
	if customKeys == "" {
		return defaultKeys
	}
	keys := strings.Split(customKeys, ",")
	result := make([]string, 0, len(keys))
	for _, k := range keys {
		trimmed := strings.TrimSpace(k)
		if trimmed == "space" {
			trimmed = " "
		}
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultKeys
	}
	return result
}

// helpLabel is the first key of a binding as shown in hints.
func helpLabel(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	if keys[0] == " " {
		return "space"
	}
	return keys[0]
}

func binding(custom, desc string, defaults ...string) key.Binding {
	keys := parseKeys(custom, defaults...)
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(helpLabel(keys), desc),
	)
}

// =============================================================================
// Global Keys (available in all contexts)
// =============================================================================

// GlobalKeyMap defines keys available throughout the application.
type GlobalKeyMap struct {
	Quit     key.Binding
	Help     key.Binding
	NextPane key.Binding
	Pane1    key.Binding
	Pane2    key.Binding
	Pane3    key.Binding
	Undo     key.Binding
	Redo     key.Binding
}

// NewGlobalKeyMap creates global key bindings from config.
func NewGlobalKeyMap(cfg *config.KeysConfig) GlobalKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return GlobalKeyMap{
		Quit:     binding(cfg.Quit, "quit", "q", "ctrl+c"),
		Help:     binding(cfg.Help, "help", "?"),
		NextPane: binding(cfg.NextPane, "next pane", "tab"),
		Pane1:    binding(cfg.Pane1, "today", "1"),
		Pane2:    binding(cfg.Pane2, "library", "2"),
		Pane3:    binding(cfg.Pane3, "settings", "3"),
		Undo:     binding(cfg.Undo, "undo", "ctrl+z", "u"),
		Redo:     binding(cfg.Redo, "redo", "ctrl+y"),
	}
}

// =============================================================================
// Navigation Keys (shared by list-based panes)
// =============================================================================

// NavigationKeyMap defines keys for list navigation.
type NavigationKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// NewNavigationKeyMap creates navigation key bindings from config.
func NewNavigationKeyMap(cfg *config.KeysConfig) NavigationKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return NavigationKeyMap{
		Up:     binding(cfg.Up, "up", "k", "up"),
		Down:   binding(cfg.Down, "down", "j", "down"),
		Top:    binding(cfg.Top, "top", "g", "home"),
		Bottom: binding(cfg.Bottom, "bottom", "G", "end"),
	}
}

// =============================================================================
// Input Keys (shared by text input fields)
// =============================================================================

// InputKeyMap defines keys for text input mode.
type InputKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// NewInputKeyMap creates input key bindings from config.
func NewInputKeyMap(cfg *config.KeysConfig) InputKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return InputKeyMap{
		Confirm: binding(cfg.Confirm, "confirm", "enter"),
		Cancel:  binding(cfg.Cancel, "cancel", "esc"),
	}
}

// =============================================================================
// Today Pane Keys
// =============================================================================

// TodayKeyMap defines keys for browsing the daily pick and its bundle.
type TodayKeyMap struct {
	Next  key.Binding
	Prev  key.Binding
	Save  key.Binding
	Share key.Binding
}

// NewTodayKeyMap creates today pane key bindings from config.
func NewTodayKeyMap(cfg *config.KeysConfig) TodayKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return TodayKeyMap{
		Next:  binding(cfg.NextThought, "next", "l", "right"),
		Prev:  binding(cfg.PrevThought, "previous", "h", "left"),
		Save:  binding(cfg.SaveThought, "save", "s"),
		Share: binding(cfg.Share, "copy", "y"),
	}
}

// ShortHelp implements help.KeyMap.
func (k TodayKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Save, k.Share}
}

// FullHelp implements help.KeyMap.
func (k TodayKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Prev, k.Next}, {k.Save, k.Share}}
}

// =============================================================================
// Library Pane Keys
// =============================================================================

// LibraryKeyMap defines keys for the saved quotes list.
type LibraryKeyMap struct {
	Search key.Binding
	Filter key.Binding
	Unsave key.Binding
	Share  key.Binding
	NavigationKeyMap
}

// NewLibraryKeyMap creates library key bindings from config.
func NewLibraryKeyMap(cfg *config.KeysConfig) LibraryKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return LibraryKeyMap{
		Search:           binding(cfg.Search, "search", "/"),
		Filter:           binding(cfg.FilterTheme, "filter theme", "t"),
		Unsave:           binding(cfg.Unsave, "remove", "x"),
		Share:            binding(cfg.Share, "copy", "y"),
		NavigationKeyMap: NewNavigationKeyMap(cfg),
	}
}

// ShortHelp implements help.KeyMap.
func (k LibraryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Filter, k.Unsave, k.Down}
}

// FullHelp implements help.KeyMap.
func (k LibraryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Filter, k.Unsave, k.Share},
		{k.Up, k.Down, k.Top, k.Bottom},
	}
}

// =============================================================================
// Settings Pane Keys
// =============================================================================

// SettingsKeyMap defines keys for the settings list. Toggle flips, cycles or
// edits the selected row depending on its kind.
type SettingsKeyMap struct {
	Toggle key.Binding
	NavigationKeyMap
}

// NewSettingsKeyMap creates settings key bindings from config.
func NewSettingsKeyMap(cfg *config.KeysConfig) SettingsKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return SettingsKeyMap{
		Toggle:           binding(cfg.Toggle, "change", "enter", " "),
		NavigationKeyMap: NewNavigationKeyMap(cfg),
	}
}

// ShortHelp implements help.KeyMap.
func (k SettingsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Up, k.Down}
}

// FullHelp implements help.KeyMap.
func (k SettingsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Toggle}, {k.Up, k.Down, k.Top, k.Bottom}}
}

// =============================================================================
// Help Overlay Keys
// =============================================================================

// HelpKeyMap defines keys for the help overlay.
type HelpKeyMap struct {
	Close key.Binding
}

// DefaultHelpKeyMap returns the default help overlay key bindings.
func DefaultHelpKeyMap() HelpKeyMap {
	return HelpKeyMap{
		Close: key.NewBinding(
			key.WithKeys("?", "esc", "q", "enter", " "),
			key.WithHelp("any key", "close"),
		),
	}
}

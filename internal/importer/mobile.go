package importer

import (
	"encoding/json"
	"fmt"
	"io"

	"lifethoughts/internal/catalog"
	"lifethoughts/internal/store"
)

// MobileImporter reads the mobile app's persisted state, either wrapped as
// {"state": {...}, "version": 0} or as the bare state object.
type MobileImporter struct {
	catalog *catalog.Catalog
}

type mobileEnvelope struct {
	State   *mobileState `json:"state"`
	Version *int         `json:"version"`
}

type mobileState struct {
	Preferences         *mobilePreferences `json:"preferences"`
	SavedThoughtIDs     []string           `json:"savedThoughtIds"`
	LastShownThoughtIDs []string           `json:"lastShownThoughtIds"`
}

type mobilePreferences struct {
	SelectedThemes         []string `json:"selectedThemes"`
	NotificationTime       *string  `json:"notificationTime"`
	ThemeMode              *string  `json:"themeMode"`
	FontScale              *float64 `json:"fontScale"`
	ReduceMotion           *bool    `json:"reduceMotion"`
	HasCompletedOnboarding *bool    `json:"hasCompletedOnboarding"`
}

// Name returns the importer name.
func (m *MobileImporter) Name() string {
	return "mobile"
}

// Import merges the saved IDs, replaces the preferences when they are valid
// and replaces the recent window when one is present.
func (m *MobileImporter) Import(reader io.Reader, s *store.Store) (*ImportResult, error) {
	p, err := m.Preview(reader)
	if err != nil {
		return nil, err
	}
	return apply(p, s)
}

// Preview parses the blob without importing it.
func (m *MobileImporter) Preview(reader io.Reader) (*Preview, error) {
	state, err := parseMobile(reader)
	if err != nil {
		return nil, err
	}

	p := &Preview{}
	p.SavedIDs, p.Unknown = resolve(m.catalog, state.SavedThoughtIDs)

	if state.LastShownThoughtIDs != nil {
		p.Recent = make([]string, 0, len(state.LastShownThoughtIDs))
		for _, id := range state.LastShownThoughtIDs {
			if m.catalog.Has(id) {
				p.Recent = append(p.Recent, id)
			}
		}
	}

	if state.Preferences != nil {
		prefs := state.Preferences.toPreferences()
		if err := store.ValidatePreferences(prefs); err != nil {
			p.Warnings = append(p.Warnings, fmt.Sprintf("preferences skipped: %v", err))
		} else {
			p.Preferences = &prefs
		}
	}
	return p, nil
}

func parseMobile(reader io.Reader) (*mobileState, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	var env mobileEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse mobile state: %w", err)
	}
	if env.State != nil {
		if env.Version != nil && *env.Version != 0 {
			return nil, fmt.Errorf("unsupported mobile state version %d", *env.Version)
		}
		return env.State, nil
	}

	var bare mobileState
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("failed to parse mobile state: %w", err)
	}
	if bare.Preferences == nil && bare.SavedThoughtIDs == nil && bare.LastShownThoughtIDs == nil {
		return nil, fmt.Errorf("input does not look like mobile app state")
	}
	return &bare, nil
}

// toPreferences overlays the fields present in the blob on the defaults.
func (mp *mobilePreferences) toPreferences() store.Preferences {
	prefs := store.DefaultPreferences()
	if mp.SelectedThemes != nil {
		prefs.SelectedThemes = make([]catalog.ThemeTag, len(mp.SelectedThemes))
		for i, t := range mp.SelectedThemes {
			prefs.SelectedThemes[i] = catalog.ThemeTag(t)
		}
	}
	if mp.NotificationTime != nil {
		prefs.NotificationTime = *mp.NotificationTime
	}
	if mp.ThemeMode != nil {
		prefs.ThemeMode = store.ThemeMode(*mp.ThemeMode)
	}
	if mp.FontScale != nil {
		prefs.FontScale = *mp.FontScale
	}
	if mp.ReduceMotion != nil {
		prefs.ReduceMotion = *mp.ReduceMotion
	}
	if mp.HasCompletedOnboarding != nil {
		prefs.HasCompletedOnboarding = *mp.HasCompletedOnboarding
	}
	return prefs
}

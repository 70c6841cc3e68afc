package store

import (
	"slices"

	"lifethoughts/internal/catalog"
)

// ThemeMode selects the colour scheme.
type ThemeMode string

const (
	ThemeModeLight  ThemeMode = "light"
	ThemeModeDark   ThemeMode = "dark"
	ThemeModeSystem ThemeMode = "system"
)

// ThemeModes lists the modes in the order the settings screen cycles them.
var ThemeModes = []ThemeMode{ThemeModeSystem, ThemeModeLight, ThemeModeDark}

// FontScales are the supported text scale steps.
var FontScales = []float64{0.9, 1.0, 1.1, 1.2}

// RecentWindow is the number of shown quote IDs remembered to avoid repeats.
const RecentWindow = 30

// Preferences holds the user's settings.
type Preferences struct {
	SelectedThemes         []catalog.ThemeTag `json:"selected_themes" validate:"min=1,unique,dive,theme"`
	NotificationTime       string             `json:"notification_time" validate:"clock"`
	ThemeMode              ThemeMode          `json:"theme_mode" validate:"oneof=light dark system"`
	FontScale              float64            `json:"font_scale" validate:"fontscale"`
	ReduceMotion           bool               `json:"reduce_motion"`
	HasCompletedOnboarding bool               `json:"has_completed_onboarding"`
}

// DefaultPreferences returns the first-launch settings.
func DefaultPreferences() Preferences {
	return Preferences{
		SelectedThemes:         []catalog.ThemeTag{catalog.ThemeMindfulness, catalog.ThemeGratitude},
		NotificationTime:       "08:00",
		ThemeMode:              ThemeModeSystem,
		FontScale:              1.0,
		ReduceMotion:           false,
		HasCompletedOnboarding: false,
	}
}

func (p Preferences) clone() Preferences {
	p.SelectedThemes = slices.Clone(p.SelectedThemes)
	return p
}

// PreferencesPatch is a partial update. Nil fields are left unchanged.
type PreferencesPatch struct {
	SelectedThemes         []catalog.ThemeTag
	NotificationTime       *string
	ThemeMode              *ThemeMode
	FontScale              *float64
	ReduceMotion           *bool
	HasCompletedOnboarding *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p PreferencesPatch) IsEmpty() bool {
	return p.SelectedThemes == nil &&
		p.NotificationTime == nil &&
		p.ThemeMode == nil &&
		p.FontScale == nil &&
		p.ReduceMotion == nil &&
		p.HasCompletedOnboarding == nil
}

// apply returns p merged with the patch; base is not modified.
func (p PreferencesPatch) apply(base Preferences) Preferences {
	out := base.clone()
	if p.SelectedThemes != nil {
		out.SelectedThemes = slices.Clone(p.SelectedThemes)
	}
	if p.NotificationTime != nil {
		out.NotificationTime = *p.NotificationTime
	}
	if p.ThemeMode != nil {
		out.ThemeMode = *p.ThemeMode
	}
	if p.FontScale != nil {
		out.FontScale = *p.FontScale
	}
	if p.ReduceMotion != nil {
		out.ReduceMotion = *p.ReduceMotion
	}
	if p.HasCompletedOnboarding != nil {
		out.HasCompletedOnboarding = *p.HasCompletedOnboarding
	}
	return out
}

// Ptr returns a pointer to v. It keeps patch literals short.
func Ptr[T any](v T) *T {
	return &v
}

// Snapshot is the persisted aggregate. SavedThoughtIDs is a set serialised as
// a sorted list; RecentlyShownIDs is ordered most-recent-first.
type Snapshot struct {
	Preferences      Preferences `json:"preferences"`
	SavedThoughtIDs  []string    `json:"saved_thought_ids"`
	RecentlyShownIDs []string    `json:"recently_shown_ids"`
}

// DefaultSnapshot is the state of a fresh install.
func DefaultSnapshot() *Snapshot {
	return &Snapshot{
		Preferences:      DefaultPreferences(),
		SavedThoughtIDs:  []string{},
		RecentlyShownIDs: []string{},
	}
}

// SaveContext describes a persisted mutation so listeners (git sync) can
// produce readable messages such as "Save thought: stoicism-4".
type SaveContext struct {
	Filename  string // backend file name, e.g. "state.json"
	Operation string // save, unsave, show, update, import
	ItemType  string // thought, preferences, library
	ItemName  string
}

// idSetToSlice is the set -> sequence boundary used when persisting.
// The result is sorted so files diff cleanly.
func idSetToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// idSliceToSet is the sequence -> set boundary used when loading.
// Duplicates and blank IDs are dropped.
func idSliceToSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

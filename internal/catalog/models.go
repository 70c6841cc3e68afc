package catalog

import (
	"fmt"
	"strings"
)

// ThemeTag is one of the five fixed topical categories quotes are filed under.
type ThemeTag string

const (
	ThemeStoicism    ThemeTag = "stoicism"
	ThemeMindfulness ThemeTag = "mindfulness"
	ThemeGratitude   ThemeTag = "gratitude"
	ThemeGrowth      ThemeTag = "growth"
	ThemeJoy         ThemeTag = "joy"
)

var allThemes = []ThemeTag{
	ThemeStoicism,
	ThemeMindfulness,
	ThemeGratitude,
	ThemeGrowth,
	ThemeJoy,
}

// AllThemes returns every theme in display order.
func AllThemes() []ThemeTag {
	out := make([]ThemeTag, len(allThemes))
	copy(out, allThemes)
	return out
}

// Valid reports whether t belongs to the closed theme set.
func (t ThemeTag) Valid() bool {
	for _, known := range allThemes {
		if t == known {
			return true
		}
	}
	return false
}

// Title returns the theme name with an upper-case first letter.
func (t ThemeTag) Title() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// ParseThemeTag parses a theme name case-insensitively.
func ParseThemeTag(s string) (ThemeTag, error) {
	t := ThemeTag(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown theme %q (want one of %s)", s, joinThemes(allThemes))
	}
	return t, nil
}

// ParseThemeList parses a comma-separated list of themes, dropping duplicates.
func ParseThemeList(s string) ([]ThemeTag, error) {
	var out []ThemeTag
	seen := make(map[ThemeTag]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := ParseThemeTag(part)
		if err != nil {
			return nil, err
		}
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out, nil
}

func joinThemes(themes []ThemeTag) string {
	parts := make([]string, len(themes))
	for i, t := range themes {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

// Source classifies where a quote came from. It has no behavioural effect.
type Source string

const (
	SourceCurated      Source = "curated"
	SourcePublicDomain Source = "public_domain"
)

// Quote is a single seeded thought.
type Quote struct {
	ID     string     `yaml:"id" json:"id" toml:"id"`
	Text   string     `yaml:"text" json:"text" toml:"text"`
	Author string     `yaml:"author,omitempty" json:"author,omitempty" toml:"author,omitempty"`
	Tags   []ThemeTag `yaml:"tags" json:"tags" toml:"tags"`
	Source Source     `yaml:"source" json:"source" toml:"source"`
}

// PrimaryTheme is the first tag, used for display accents.
func (q Quote) PrimaryTheme() ThemeTag {
	if len(q.Tags) == 0 {
		return ""
	}
	return q.Tags[0]
}

// HasAnyTheme reports whether at least one of the quote's tags is in themes.
func (q Quote) HasAnyTheme(themes []ThemeTag) bool {
	for _, tag := range q.Tags {
		for _, t := range themes {
			if tag == t {
				return true
			}
		}
	}
	return false
}

// HasTheme reports whether the quote is tagged with theme.
func (q Quote) HasTheme(theme ThemeTag) bool {
	for _, tag := range q.Tags {
		if tag == theme {
			return true
		}
	}
	return false
}

// Attribution returns "— Author" or "" for anonymous quotes.
func (q Quote) Attribution() string {
	if q.Author == "" {
		return ""
	}
	return "— " + q.Author
}

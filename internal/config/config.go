// Package config handles configuration loading and defaults for the thoughts app.
// Configuration is loaded from XDG-compliant paths (typically ~/.config/thoughts/config.yaml).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"lifethoughts/internal/fsutil"
)

// AppName names the config directory, the default data directory and the log file.
const AppName = "thoughts"

// Config represents the application configuration.
type Config struct {
	// DataDir overrides the default data directory (~/.thoughts)
	DataDir string `yaml:"data_dir,omitempty"`

	Theme         ThemeConfig        `yaml:"theme,omitempty"`
	Keys          KeysConfig         `yaml:"keys,omitempty"`
	UX            UXConfig           `yaml:"ux"`
	Sync          SyncConfig         `yaml:"sync"`
	Notifications NotificationConfig `yaml:"notifications"`
	Log           LogConfig          `yaml:"log"`
}

// NotificationConfig defines desktop notification settings. The reminder
// time itself is a user preference kept in the store.
type NotificationConfig struct {
	Enabled bool `yaml:"enabled"` // default: true
	Sound   bool `yaml:"sound,omitempty"`
}

// SyncConfig defines git synchronization settings.
type SyncConfig struct {
	Enabled       bool   `yaml:"enabled,omitempty"`
	AutoCommit    bool   `yaml:"auto_commit"` // default: true
	AutoPush      bool   `yaml:"auto_push,omitempty"`
	PullOnStartup bool   `yaml:"pull_on_startup,omitempty"`
	CommitMessage string `yaml:"commit_message,omitempty"` // "auto" for generated messages
}

// ThemeConfig overrides the chrome colours (hex). Quote cards use the
// per-theme accents regardless.
type ThemeConfig struct {
	Primary    string `yaml:"primary,omitempty" validate:"omitempty,hexcolor"`
	Accent     string `yaml:"accent,omitempty" validate:"omitempty,hexcolor"`
	Muted      string `yaml:"muted,omitempty" validate:"omitempty,hexcolor"`
	Background string `yaml:"background,omitempty" validate:"omitempty,hexcolor"`
	Text       string `yaml:"text,omitempty" validate:"omitempty,hexcolor"`
}

// KeysConfig defines customizable keyboard shortcuts.
// Each field accepts a comma-separated list of key bindings.
// Examples: "q,ctrl+c", "tab", "l,right"
type KeysConfig struct {
	Quit     string `yaml:"quit,omitempty"`      // default: "q,ctrl+c"
	Help     string `yaml:"help,omitempty"`      // default: "?"
	NextPane string `yaml:"next_pane,omitempty"` // default: "tab"
	Pane1    string `yaml:"pane_1,omitempty"`    // default: "1"
	Pane2    string `yaml:"pane_2,omitempty"`    // default: "2"
	Pane3    string `yaml:"pane_3,omitempty"`    // default: "3"

	Up     string `yaml:"up,omitempty"`     // default: "k,up"
	Down   string `yaml:"down,omitempty"`   // default: "j,down"
	Top    string `yaml:"top,omitempty"`    // default: "g,home"
	Bottom string `yaml:"bottom,omitempty"` // default: "G,end"

	NextThought string `yaml:"next_thought,omitempty"` // default: "l,right"
	PrevThought string `yaml:"prev_thought,omitempty"` // default: "h,left"
	SaveThought string `yaml:"save_thought,omitempty"` // default: "s"
	Share       string `yaml:"share,omitempty"`        // default: "y"

	Search      string `yaml:"search,omitempty"`       // default: "/"
	FilterTheme string `yaml:"filter_theme,omitempty"` // default: "t"
	Unsave      string `yaml:"unsave,omitempty"`       // default: "x"
	Toggle      string `yaml:"toggle,omitempty"`       // default: "enter,space"

	Confirm string `yaml:"confirm,omitempty"` // default: "enter"
	Cancel  string `yaml:"cancel,omitempty"`  // default: "esc"

	Undo string `yaml:"undo,omitempty"` // default: "ctrl+z,u"
	Redo string `yaml:"redo,omitempty"` // default: "ctrl+y"
}

// UXConfig defines user experience settings.
type UXConfig struct {
	// ShowOnboarding shows the theme picker until it has been completed once
	ShowOnboarding bool `yaml:"show_onboarding"` // default: true

	// NarrowLayoutThreshold is the terminal width below which the layout stacks
	NarrowLayoutThreshold int `yaml:"narrow_layout_threshold,omitempty" validate:"gte=40"` // default: 80

	// BundleSize is how many quotes a browsing bundle fetches
	BundleSize int `yaml:"bundle_size,omitempty" validate:"gte=1,lte=50"` // default: 10

	// RefillBelow fetches a new bundle when fewer quotes than this remain ahead
	RefillBelow int `yaml:"refill_below" validate:"gte=0,ltefield=BundleSize"` // default: 5
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	Level      string `yaml:"level,omitempty" validate:"oneof=debug info warn error"` // default: info
	File       string `yaml:"file,omitempty"`                                         // default: <data_dir>/logs/thoughts.log
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty" validate:"gte=1"`                 // default: 5
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`                           // default: 3
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Theme: ThemeConfig{
			Primary: "#0E7490", // Teal
			Accent:  "#F59E0B", // Amber
			Muted:   "#6B7280", // Gray
		},
		UX: UXConfig{
			ShowOnboarding:        true,
			NarrowLayoutThreshold: 80,
			BundleSize:            10,
			RefillBelow:           5,
		},
		Sync: SyncConfig{
			AutoCommit:    true,
			CommitMessage: "auto",
		},
		Notifications: NotificationConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(home, "."+AppName)
}

// configDir returns the configuration directory path (XDG compliant).
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName)
}

// Path returns the config file location, or "" when no home directory can be found.
func Path() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads configuration from the default path, merging with defaults.
// If no config file exists, returns default configuration.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads configuration from path, merging with defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var userCfg Config
	if err := yaml.Unmarshal(data, &userCfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var doc yaml.Node
	_ = yaml.Unmarshal(data, &doc) // best-effort; fall back to conservative merge if this fails

	cfg.mergeFromYAML(&userCfg, &doc)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks ranges and formats after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %v)", yamlPath(fe), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// yamlPath turns "Config.UX.BundleSize" into "ux.BundleSize" for messages.
func yamlPath(fe validator.FieldError) string {
	ns := strings.TrimPrefix(fe.Namespace(), "Config.")
	if i := strings.IndexByte(ns, '.'); i > 0 {
		return strings.ToLower(ns[:i]) + ns[i:]
	}
	return ns
}

// mergeNonEmpty applies non-empty strings and positive ints from other to c.
// Booleans need presence-aware merging and are left alone.
func (c *Config) mergeNonEmpty(other *Config) {
	mergeStrings(
		[2]*string{&c.DataDir, &other.DataDir},

		[2]*string{&c.Theme.Primary, &other.Theme.Primary},
		[2]*string{&c.Theme.Accent, &other.Theme.Accent},
		[2]*string{&c.Theme.Muted, &other.Theme.Muted},
		[2]*string{&c.Theme.Background, &other.Theme.Background},
		[2]*string{&c.Theme.Text, &other.Theme.Text},

		[2]*string{&c.Keys.Quit, &other.Keys.Quit},
		[2]*string{&c.Keys.Help, &other.Keys.Help},
		[2]*string{&c.Keys.NextPane, &other.Keys.NextPane},
		[2]*string{&c.Keys.Pane1, &other.Keys.Pane1},
		[2]*string{&c.Keys.Pane2, &other.Keys.Pane2},
		[2]*string{&c.Keys.Pane3, &other.Keys.Pane3},
		[2]*string{&c.Keys.Up, &other.Keys.Up},
		[2]*string{&c.Keys.Down, &other.Keys.Down},
		[2]*string{&c.Keys.Top, &other.Keys.Top},
		[2]*string{&c.Keys.Bottom, &other.Keys.Bottom},
		[2]*string{&c.Keys.NextThought, &other.Keys.NextThought},
		[2]*string{&c.Keys.PrevThought, &other.Keys.PrevThought},
		[2]*string{&c.Keys.SaveThought, &other.Keys.SaveThought},
		[2]*string{&c.Keys.Share, &other.Keys.Share},
		[2]*string{&c.Keys.Search, &other.Keys.Search},
		[2]*string{&c.Keys.FilterTheme, &other.Keys.FilterTheme},
		[2]*string{&c.Keys.Unsave, &other.Keys.Unsave},
		[2]*string{&c.Keys.Toggle, &other.Keys.Toggle},
		[2]*string{&c.Keys.Confirm, &other.Keys.Confirm},
		[2]*string{&c.Keys.Cancel, &other.Keys.Cancel},
		[2]*string{&c.Keys.Undo, &other.Keys.Undo},
		[2]*string{&c.Keys.Redo, &other.Keys.Redo},

		[2]*string{&c.Sync.CommitMessage, &other.Sync.CommitMessage},

		[2]*string{&c.Log.Level, &other.Log.Level},
		[2]*string{&c.Log.File, &other.Log.File},
	)

	mergeInts(
		[2]*int{&c.UX.NarrowLayoutThreshold, &other.UX.NarrowLayoutThreshold},
		[2]*int{&c.UX.BundleSize, &other.UX.BundleSize},
		[2]*int{&c.UX.RefillBelow, &other.UX.RefillBelow},
		[2]*int{&c.Log.MaxSizeMB, &other.Log.MaxSizeMB},
		[2]*int{&c.Log.MaxBackups, &other.Log.MaxBackups},
	)
}

func mergeStrings(pairs ...[2]*string) {
	for _, p := range pairs {
		if *p[1] != "" {
			*p[0] = *p[1]
		}
	}
}

func mergeInts(pairs ...[2]*int) {
	for _, p := range pairs {
		if *p[1] > 0 {
			*p[0] = *p[1]
		}
	}
}

func (c *Config) mergeFromYAML(other *Config, doc *yaml.Node) {
	c.mergeNonEmpty(other)

	// Without a parsed document presence cannot be checked; keep the defaults.
	if doc == nil || len(doc.Content) == 0 {
		return
	}

	bools := []struct {
		path []string
		dst  *bool
		src  bool
	}{
		{[]string{"ux", "show_onboarding"}, &c.UX.ShowOnboarding, other.UX.ShowOnboarding},
		{[]string{"sync", "enabled"}, &c.Sync.Enabled, other.Sync.Enabled},
		{[]string{"sync", "auto_commit"}, &c.Sync.AutoCommit, other.Sync.AutoCommit},
		{[]string{"sync", "auto_push"}, &c.Sync.AutoPush, other.Sync.AutoPush},
		{[]string{"sync", "pull_on_startup"}, &c.Sync.PullOnStartup, other.Sync.PullOnStartup},
		{[]string{"notifications", "enabled"}, &c.Notifications.Enabled, other.Notifications.Enabled},
		{[]string{"notifications", "sound"}, &c.Notifications.Sound, other.Notifications.Sound},
	}
	for _, b := range bools {
		if yamlHasPath(doc, b.path...) {
			*b.dst = b.src
		}
	}

	// Zero is meaningful for these two, so presence decides. SaveTo always
	// writes them for the same reason.
	if yamlHasPath(doc, "ux", "refill_below") {
		c.UX.RefillBelow = other.UX.RefillBelow
	}
	if yamlHasPath(doc, "log", "max_backups") {
		c.Log.MaxBackups = other.Log.MaxBackups
	}
}

func yamlHasPath(doc *yaml.Node, path ...string) bool {
	if doc == nil || len(path) == 0 {
		return false
	}

	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for _, key := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if k := n.Content[i]; k.Kind == yaml.ScalarNode && k.Value == key {
				next = n.Content[i+1]
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the configuration to path atomically.
func (c *Config) SaveTo(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("serialize config: %w", err)
	}
	return fsutil.WriteFileAtomic(path, data, 0600)
}

// GetDataDir returns the resolved data directory path.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return fsutil.ExpandHome(c.DataDir)
}

// LogFile returns the resolved log file path.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return fsutil.ExpandHome(c.Log.File)
	}
	return filepath.Join(c.GetDataDir(), "logs", AppName+".log")
}

// Package config handles configuration file loading and parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration that can be unmarshaled from
// human-readable strings like "8s" or "1m30s", or from integer
// milliseconds. A value of "0" or 0 means never.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '8s', '1m30s' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the devping configuration.
// Loaded from ~/.config/devping/config.toml
type Config struct {
	Display  DisplayConfig  `toml:"display"`
	Timeouts TimeoutConfig  `toml:"timeouts"`
	Sounds   SoundConfig    `toml:"sounds"`
	Behavior BehaviorConfig `toml:"behavior"`
	Theme    ThemeConfig    `toml:"theme"`
}

// DisplayConfig contains panel placement settings.
type DisplayConfig struct {
	Position string `toml:"position"` // "top-right", "bottom-left", etc.
	OffsetX  int    `toml:"offset_x"` // Pixels from screen edge
	OffsetY  int    `toml:"offset_y"` // Pixels from screen edge
	Width    int    `toml:"width"`    // Panel width in pixels
	Height   int    `toml:"height"`   // Panel height (slot pitch basis)
	Gap      int    `toml:"gap"`      // Gap between stacked panels
}

// TimeoutConfig contains auto-dismiss timeouts per event kind.
// "0" means the panel stays until dismissed.
type TimeoutConfig struct {
	Completion Duration `toml:"completion"` // e.g., "8s" or 8000
	Permission Duration `toml:"permission"` // e.g., "0" for sticky
}

// SoundConfig contains sound cue settings.
type SoundConfig struct {
	Enabled    bool   `toml:"enabled"`
	Volume     int    `toml:"volume"` // 0-100
	Completion string `toml:"completion"`
	Permission string `toml:"permission"`
}

// BehaviorConfig contains behavior settings.
type BehaviorConfig struct {
	SkipWhenFocused bool   `toml:"skip_when_focused"` // Sound only while the editor is frontmost
	ClickAction     string `toml:"click_action"`      // "dismiss", "focus-editor", "none"
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	Name        string `toml:"name"`         // Theme name without .css extension
	ColorScheme string `toml:"color_scheme"` // "system", "light", or "dark"
}

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ClickAction represents a panel click action.
type ClickAction string

const (
	ClickActionDismiss     ClickAction = "dismiss"
	ClickActionFocusEditor ClickAction = "focus-editor"
	ClickActionNone        ClickAction = "none"
)

// Position represents a panel position on screen.
type Position string

const (
	PositionTopLeft     Position = "top-left"
	PositionTopRight    Position = "top-right"
	PositionBottomLeft  Position = "bottom-left"
	PositionBottomRight Position = "bottom-right"
)

// ValidPositions returns all valid position values.
func ValidPositions() []Position {
	return []Position{
		PositionTopLeft,
		PositionTopRight,
		PositionBottomLeft,
		PositionBottomRight,
	}
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			Position: string(PositionTopRight),
			OffsetX:  16,
			OffsetY:  16,
			Width:    360,
			Height:   96,
			Gap:      8,
		},
		Timeouts: TimeoutConfig{
			Completion: Duration(8 * time.Second),
			Permission: Duration(0), // Sticky until acted on
		},
		Sounds: SoundConfig{
			Enabled: true,
			Volume:  80,
		},
		Behavior: BehaviorConfig{
			SkipWhenFocused: true,
			ClickAction:     string(ClickActionFocusEditor),
		},
		Theme: ThemeConfig{
			Name:        "default",
			ColorScheme: string(ColorSchemeSystem),
		},
	}
}

// Path returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "devping", "config.toml"), nil
}

// Load loads configuration from the specified path. If path is empty,
// the default path is used. Returns defaults if the file does not
// exist.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path, creating
// parent directories as needed. The write goes through a temp file so
// a crash never leaves a half-written config behind.
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	validPos := false
	for _, p := range ValidPositions() {
		if c.Display.Position == string(p) {
			validPos = true
			break
		}
	}
	if !validPos {
		return fmt.Errorf("invalid position %q, must be one of: %v", c.Display.Position, ValidPositions())
	}

	if c.Display.Width < 100 || c.Display.Width > 1000 {
		return fmt.Errorf("width must be between 100 and 1000, got %d", c.Display.Width)
	}
	if c.Display.Height < 40 || c.Display.Height > 600 {
		return fmt.Errorf("height must be between 40 and 600, got %d", c.Display.Height)
	}
	if c.Display.Gap < 0 || c.Display.Gap > 200 {
		return fmt.Errorf("gap must be between 0 and 200, got %d", c.Display.Gap)
	}

	if c.Sounds.Volume < 0 || c.Sounds.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Sounds.Volume)
	}

	switch ClickAction(c.Behavior.ClickAction) {
	case ClickActionDismiss, ClickActionFocusEditor, ClickActionNone:
	default:
		return fmt.Errorf("invalid click action %q", c.Behavior.ClickAction)
	}

	return nil
}

// TimeoutForKind returns the auto-dismiss timeout for the given event
// kind. Zero means never.
func (c *Config) TimeoutForKind(kind string) time.Duration {
	switch kind {
	case "permission":
		return c.Timeouts.Permission.Duration()
	default:
		return c.Timeouts.Completion.Duration()
	}
}

// SoundForKind returns the sound file path for the given event kind.
// Expands ~ to home directory.
func (c *Config) SoundForKind(kind string) string {
	var path string
	switch kind {
	case "permission":
		path = c.Sounds.Permission
	default:
		path = c.Sounds.Completion
	}
	return expandPath(path)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

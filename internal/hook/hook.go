// Package hook installs and removes the assistant hook entries that
// make the runtime invoke devping on completion and permission events.
package hook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// Hook event names in the runtime's settings file that devping
// registers under.
const (
	eventNotification = "Notification"
	eventStop         = "Stop"
)

// lockTimeout bounds how long an install waits for a concurrent
// writer of the settings file.
const lockTimeout = 5 * time.Second

// Installer patches the runtime's settings file to register devping
// hooks. All edits preserve unrelated settings and other tools'
// hooks.
type Installer struct {
	path   string // settings file path
	binary string // devping binary invoked by the hooks
	logger *slog.Logger
}

// NewInstaller creates an Installer for the given settings file. An
// empty path means the default Claude Code location.
func NewInstaller(settingsPath, binary string, logger *slog.Logger) (*Installer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if settingsPath == "" {
		var err error
		settingsPath, err = DefaultSettingsPath()
		if err != nil {
			return nil, err
		}
	}
	if binary == "" {
		var err error
		binary, err = os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve devping binary path: %w", err)
		}
	}

	return &Installer{
		path:   settingsPath,
		binary: binary,
		logger: logger,
	}, nil
}

// DefaultSettingsPath returns the Claude Code user settings file.
func DefaultSettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".claude", "settings.json"), nil
}

// Install registers the devping hooks. Re-running replaces any
// previous devping entries, so upgrading the binary path is a plain
// re-install.
func (i *Installer) Install() error {
	return i.update(func(hooks map[string]any) {
		for event, command := range i.commands() {
			entries := removeOurEntries(asSlice(hooks[event]))
			entries = append([]any{newEntry(command)}, entries...)
			hooks[event] = entries
		}
	})
}

// Uninstall removes every devping hook entry while leaving other
// tools' hooks untouched.
func (i *Installer) Uninstall() error {
	return i.update(func(hooks map[string]any) {
		for event := range hooks {
			filtered := removeOurEntries(asSlice(hooks[event]))
			if len(filtered) == 0 {
				delete(hooks, event)
			} else {
				hooks[event] = filtered
			}
		}
	})
}

// Installed reports whether both devping hooks are registered.
func (i *Installer) Installed() (bool, error) {
	settings, err := i.read()
	if err != nil {
		return false, err
	}
	hooks, _ := settings["hooks"].(map[string]any)

	for _, event := range []string{eventNotification, eventStop} {
		if !containsOurEntry(asSlice(hooks[event])) {
			return false, nil
		}
	}
	return true, nil
}

// commands maps hook event names to the devping invocation each one
// runs.
func (i *Installer) commands() map[string]string {
	return map[string]string{
		eventNotification: i.binary + " notify --kind permission",
		eventStop:         i.binary + " notify --kind completion",
	}
}

// update applies fn to the hooks map under an exclusive file lock and
// writes the result back atomically. Concurrent installs (e.g. two
// sessions running setup at once) serialize on the lock instead of
// clobbering each other.
func (i *Installer) update(fn func(hooks map[string]any)) error {
	if err := os.MkdirAll(filepath.Dir(i.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	lock := flock.New(i.path + ".lock")
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to lock settings file: %w", err)
	}
	if !locked {
		return fmt.Errorf("settings file is locked by another process")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			i.logger.Warn("failed to unlock settings file", "error", err)
		}
	}()

	settings, err := i.read()
	if err != nil {
		return err
	}

	hooks, ok := settings["hooks"].(map[string]any)
	if !ok {
		hooks = make(map[string]any)
	}
	fn(hooks)
	if len(hooks) == 0 {
		delete(settings, "hooks")
	} else {
		settings["hooks"] = hooks
	}

	return i.write(settings)
}

// read loads the settings file. A missing file reads as empty
// settings so a fresh machine can install without manual setup.
func (i *Installer) read() (map[string]any, error) {
	data, err := os.ReadFile(i.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]any), nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	settings := make(map[string]any)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &settings); err != nil {
			return nil, fmt.Errorf("failed to parse settings file: %w", err)
		}
	}
	return settings, nil
}

// write stores the settings through a temp file and rename.
func (i *Installer) write(settings map[string]any) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	data = append(data, '\n')

	tmpPath := i.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return os.Rename(tmpPath, i.path)
}

// newEntry builds a hook entry in the runtime's settings schema.
func newEntry(command string) map[string]any {
	return map[string]any{
		"hooks": []any{
			map[string]any{
				"type":    "command",
				"command": command,
			},
		},
	}
}

// isOurEntry reports whether a hook entry invokes devping notify.
func isOurEntry(entry any) bool {
	m, ok := entry.(map[string]any)
	if !ok {
		return false
	}
	if cmd, ok := m["command"].(string); ok && strings.Contains(cmd, "devping notify") {
		return true
	}
	for _, h := range asSlice(m["hooks"]) {
		if hm, ok := h.(map[string]any); ok {
			if cmd, ok := hm["command"].(string); ok && strings.Contains(cmd, "devping notify") {
				return true
			}
		}
	}
	return false
}

func removeOurEntries(entries []any) []any {
	var result []any
	for _, entry := range entries {
		if !isOurEntry(entry) {
			result = append(result, entry)
		}
	}
	return result
}

func containsOurEntry(entries []any) bool {
	for _, entry := range entries {
		if isOurEntry(entry) {
			return true
		}
	}
	return false
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

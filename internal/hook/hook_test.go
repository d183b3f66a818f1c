package hook

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInstaller(t *testing.T, path string) *Installer {
	t.Helper()
	inst, err := NewInstaller(path, "/usr/local/bin/devping", nil)
	require.NoError(t, err)
	return inst
}

func readSettings(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var settings map[string]any
	require.NoError(t, json.Unmarshal(data, &settings))
	return settings
}

func TestInstall_FreshSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claude", "settings.json")
	inst := newTestInstaller(t, path)

	require.NoError(t, inst.Install())

	settings := readSettings(t, path)
	hooks := settings["hooks"].(map[string]any)

	for event, wantCmd := range map[string]string{
		"Notification": "/usr/local/bin/devping notify --kind permission",
		"Stop":         "/usr/local/bin/devping notify --kind completion",
	} {
		entries := hooks[event].([]any)
		require.Len(t, entries, 1, event)
		entry := entries[0].(map[string]any)
		inner := entry["hooks"].([]any)[0].(map[string]any)
		assert.Equal(t, "command", inner["type"])
		assert.Equal(t, wantCmd, inner["command"])
	}

	installed, err := inst.Installed()
	require.NoError(t, err)
	assert.True(t, installed)
}

func TestInstall_PreservesForeignHooksAndSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	existing := `{
		"model": "opus",
		"hooks": {
			"Stop": [
				{"hooks": [{"type": "command", "command": "other-tool done"}]}
			],
			"PreToolUse": [
				{"hooks": [{"type": "command", "command": "linter check"}]}
			]
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0600))

	inst := newTestInstaller(t, path)
	require.NoError(t, inst.Install())

	settings := readSettings(t, path)
	assert.Equal(t, "opus", settings["model"])

	hooks := settings["hooks"].(map[string]any)
	assert.Len(t, hooks["Stop"].([]any), 2, "foreign Stop hook kept alongside ours")
	assert.Len(t, hooks["PreToolUse"].([]any), 1, "unrelated event untouched")
}

func TestInstall_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	inst := newTestInstaller(t, path)

	require.NoError(t, inst.Install())
	require.NoError(t, inst.Install())
	require.NoError(t, inst.Install())

	settings := readSettings(t, path)
	hooks := settings["hooks"].(map[string]any)
	assert.Len(t, hooks["Notification"].([]any), 1)
	assert.Len(t, hooks["Stop"].([]any), 1)
}

func TestInstall_ReplacesStaleBinaryPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	old, err := NewInstaller(path, "/old/devping", nil)
	require.NoError(t, err)
	require.NoError(t, old.Install())

	inst := newTestInstaller(t, path)
	require.NoError(t, inst.Install())

	settings := readSettings(t, path)
	hooks := settings["hooks"].(map[string]any)
	entries := hooks["Stop"].([]any)
	require.Len(t, entries, 1)
	inner := entries[0].(map[string]any)["hooks"].([]any)[0].(map[string]any)
	assert.Equal(t, "/usr/local/bin/devping notify --kind completion", inner["command"])
}

func TestUninstall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	existing := `{
		"hooks": {
			"Stop": [
				{"hooks": [{"type": "command", "command": "other-tool done"}]}
			]
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0600))

	inst := newTestInstaller(t, path)
	require.NoError(t, inst.Install())
	require.NoError(t, inst.Uninstall())

	settings := readSettings(t, path)
	hooks := settings["hooks"].(map[string]any)

	_, hasNotification := hooks["Notification"]
	assert.False(t, hasNotification, "empty event removed entirely")
	assert.Len(t, hooks["Stop"].([]any), 1, "foreign hook survives uninstall")

	installed, err := inst.Installed()
	require.NoError(t, err)
	assert.False(t, installed)
}

func TestUninstall_NoSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	inst := newTestInstaller(t, path)

	require.NoError(t, inst.Uninstall())
}

func TestInstalled_PartialRegistration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	existing := `{
		"hooks": {
			"Stop": [
				{"hooks": [{"type": "command", "command": "/usr/local/bin/devping notify --kind completion"}]}
			]
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0600))

	inst := newTestInstaller(t, path)
	installed, err := inst.Installed()
	require.NoError(t, err)
	assert.False(t, installed, "missing Notification hook means not installed")
}

func TestInstall_InvalidSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	inst := newTestInstaller(t, path)
	err := inst.Install()
	assert.Error(t, err, "corrupt settings must not be overwritten")

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "not json", string(data))
}

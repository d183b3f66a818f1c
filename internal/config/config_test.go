package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "top-right", cfg.Display.Position)
	assert.Equal(t, 360, cfg.Display.Width)
	assert.Equal(t, 8*time.Second, cfg.Timeouts.Completion.Duration())
	assert.Equal(t, time.Duration(0), cfg.Timeouts.Permission.Duration())
	assert.True(t, cfg.Sounds.Enabled)
	assert.Equal(t, 80, cfg.Sounds.Volume)
	assert.Equal(t, "default", cfg.Theme.Name)

	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[display]
position = "bottom-left"
gap = 12

[timeouts]
completion = "15s"
permission = "30s"

[sounds]
volume = 50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bottom-left", cfg.Display.Position)
	assert.Equal(t, 12, cfg.Display.Gap)
	assert.Equal(t, 15*time.Second, cfg.Timeouts.Completion.Duration())
	assert.Equal(t, 30*time.Second, cfg.Timeouts.Permission.Duration())
	assert.Equal(t, 50, cfg.Sounds.Volume)

	// Untouched fields keep defaults.
	assert.Equal(t, 360, cfg.Display.Width)
	assert.True(t, cfg.Sounds.Enabled)
}

func TestLoad_MillisecondTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[timeouts]
completion = "2500"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeouts.Completion.Duration())
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad position", "[display]\nposition = \"middle\"\n"},
		{"width too small", "[display]\nwidth = 10\n"},
		{"negative gap", "[display]\ngap = -1\n"},
		{"volume over 100", "[sounds]\nvolume = 150\n"},
		{"bad click action", "[behavior]\nclick_action = \"explode\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := Default()
	cfg.Display.Position = "bottom-right"
	cfg.Timeouts.Completion = Duration(12 * time.Second)
	cfg.Sounds.Completion = "~/sounds/ding.wav"

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	// No temp file left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestTimeoutForKind(t *testing.T) {
	cfg := Default()
	cfg.Timeouts.Completion = Duration(5 * time.Second)
	cfg.Timeouts.Permission = Duration(0)

	assert.Equal(t, 5*time.Second, cfg.TimeoutForKind("completion"))
	assert.Equal(t, time.Duration(0), cfg.TimeoutForKind("permission"))
	assert.Equal(t, 5*time.Second, cfg.TimeoutForKind("unknown"))
}

func TestSoundForKind_ExpandsTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := Default()
	cfg.Sounds.Permission = "~/sounds/knock.wav"
	cfg.Sounds.Completion = "/abs/ding.wav"

	assert.Equal(t, filepath.Join(home, "sounds", "knock.wav"), cfg.SoundForKind("permission"))
	assert.Equal(t, "/abs/ding.wav", cfg.SoundForKind("completion"))
}

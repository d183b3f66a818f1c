package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Get(t *testing.T) {
	cfg := Default()

	tests := []struct {
		key      string
		expected string
	}{
		{"display.position", "top-right"},
		{"display.width", "360"},
		{"timeouts.completion", "8s"},
		{"sounds.enabled", "true"},
		{"sounds.volume", "80"},
		{"behavior.click_action", "focus-editor"},
		{"theme.name", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := cfg.Get(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestConfig_Get_UnknownKey(t *testing.T) {
	cfg := Default()
	_, err := cfg.Get("display.nope")
	assert.Error(t, err)
}

func TestConfig_Get_SectionIsNotAValue(t *testing.T) {
	cfg := Default()
	_, err := cfg.Get("display")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "section")
}

func TestConfig_Set(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("display.position", "bottom-left"))
	assert.Equal(t, "bottom-left", cfg.Display.Position)

	require.NoError(t, cfg.Set("display.width", "420"))
	assert.Equal(t, 420, cfg.Display.Width)

	require.NoError(t, cfg.Set("sounds.enabled", "false"))
	assert.False(t, cfg.Sounds.Enabled)

	require.NoError(t, cfg.Set("timeouts.completion", "30s"))
	assert.Equal(t, 30*time.Second, cfg.Timeouts.Completion.Duration())
}

func TestConfig_Set_RejectsInvalidValue(t *testing.T) {
	cfg := Default()

	// Fails validation, config must stay untouched.
	err := cfg.Set("display.position", "center")
	require.Error(t, err)
	assert.Equal(t, "top-right", cfg.Display.Position)

	// Wrong type for an integer key.
	err = cfg.Set("display.width", "wide")
	require.Error(t, err)
	assert.Equal(t, 360, cfg.Display.Width)
}

func TestConfig_Set_UnknownKey(t *testing.T) {
	cfg := Default()
	err := cfg.Set("nope.nope", "1")
	assert.Error(t, err)
}

func TestConfig_Keys(t *testing.T) {
	keys := Default().Keys()

	assert.Contains(t, keys, "display.position")
	assert.Contains(t, keys, "timeouts.permission")
	assert.Contains(t, keys, "behavior.skip_when_focused")
	assert.NotContains(t, keys, "display")
}

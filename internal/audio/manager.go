package audio

import (
	"log/slog"
	"os"

	"github.com/gopxl/beep/v2"

	"github.com/Vibe-Marketer/devping/internal/config"
	"github.com/Vibe-Marketer/devping/internal/event"
)

// Manager selects and plays the cue for a notification event.
type Manager struct {
	logger *slog.Logger
	player *Player
	config *config.Config
}

// NewManager creates an audio manager from the sound configuration.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	player := NewPlayer(logger)
	if cfg.Sounds.Volume > 0 {
		// Config uses 0-100, player uses 0.0-1.0
		player.SetVolume(float64(cfg.Sounds.Volume) / 100.0)
	} else {
		player.SetVolume(0)
	}

	return &Manager{
		logger: logger,
		player: player,
		config: cfg,
	}
}

// PlayForKind plays the cue configured for the event kind. A
// configured file that is missing or undecodable falls back to the
// synthesized tone rather than going silent.
func (m *Manager) PlayForKind(kind event.Kind) error {
	if !m.config.Sounds.Enabled {
		return nil
	}

	path := m.config.SoundForKind(string(kind))
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := m.player.PlayFile(path); err == nil {
				return nil
			}
		} else {
			m.logger.Warn("sound file not found", "kind", kind, "path", path)
		}
	}

	streamer, rate := toneForKind(kind)
	return m.player.PlayStreamer(streamer, rate)
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (m *Manager) SetVolume(volume float64) {
	m.player.SetVolume(volume)
}

// Close releases the speaker.
func (m *Manager) Close() {
	m.player.Close()
}

func toneForKind(kind event.Kind) (beep.Streamer, beep.SampleRate) {
	if kind == event.KindPermission {
		return PermissionTone()
	}
	return CompletionTone()
}

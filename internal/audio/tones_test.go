package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, s interface {
	Stream(out [][2]float64) (int, bool)
	Err() error
}) [][2]float64 {
	t.Helper()
	var all [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		all = append(all, buf[:n]...)
		if !ok {
			break
		}
	}
	require.NoError(t, s.Err())
	return all
}

func TestCompletionTone(t *testing.T) {
	s, rate := CompletionTone()
	samples := drain(t, s)

	// Two notes, 0.12s + 0.18s at 44100Hz.
	want := int(0.30 * float64(rate))
	assert.InDelta(t, want, len(samples), 2)

	// Samples stay inside a safe amplitude.
	for _, sm := range samples {
		assert.LessOrEqual(t, sm[0], 0.5)
		assert.GreaterOrEqual(t, sm[0], -0.5)
	}
}

func TestPermissionTone_HasRestBetweenKnocks(t *testing.T) {
	s, rate := PermissionTone()
	samples := drain(t, s)

	// The rest sits between the two knocks: every sample in the
	// middle gap is silent.
	restStart := int(0.09 * float64(rate))
	restEnd := restStart + int(0.07*float64(rate))
	for i := restStart + 10; i < restEnd-10; i++ {
		assert.Zero(t, samples[i][0], "sample %d should be silent", i)
	}
}

func TestToneStartsAndEndsQuiet(t *testing.T) {
	s, _ := CompletionTone()
	samples := drain(t, s)
	require.NotEmpty(t, samples)

	assert.InDelta(t, 0, samples[0][0], 0.01, "attack envelope starts at silence")
	assert.InDelta(t, 0, samples[len(samples)-1][0], 0.02, "release envelope ends at silence")
}

func TestVolumeToDecibels(t *testing.T) {
	assert.InDelta(t, 0, volumeToDecibels(1.0), 0.001)
	assert.InDelta(t, -6.02, volumeToDecibels(0.5), 0.01)
	assert.InDelta(t, -12.04, volumeToDecibels(0.25), 0.01)
	assert.Equal(t, float64(-100), volumeToDecibels(0))
	assert.Equal(t, float64(-100), volumeToDecibels(-1))
}

func TestPlayerVolumeClamped(t *testing.T) {
	p := NewPlayer(nil)

	p.SetVolume(1.5)
	assert.Equal(t, 1.0, p.Volume())

	p.SetVolume(-0.5)
	assert.Equal(t, 0.0, p.Volume())

	p.SetVolume(0.8)
	assert.Equal(t, 0.8, p.Volume())
}

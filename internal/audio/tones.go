package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep/v2"
)

// toneRate is the sample rate the synthesized cues are generated at.
const toneRate = beep.SampleRate(44100)

// note is one segment of a synthesized cue. A zero frequency is a
// rest.
type note struct {
	freq     float64
	duration float64 // seconds
}

// CompletionTone returns the fallback cue for completion events: a
// rising two-note chime.
func CompletionTone() (beep.Streamer, beep.SampleRate) {
	return sequenceTone([]note{
		{freq: 660, duration: 0.12},
		{freq: 880, duration: 0.18},
	}), toneRate
}

// PermissionTone returns the fallback cue for permission events: two
// short knocks on the same pitch.
func PermissionTone() (beep.Streamer, beep.SampleRate) {
	return sequenceTone([]note{
		{freq: 520, duration: 0.09},
		{freq: 0, duration: 0.07},
		{freq: 520, duration: 0.09},
	}), toneRate
}

// sequenceTone renders notes into a silence-padded streamer with a
// short attack/release envelope so the cue does not click.
func sequenceTone(notes []note) beep.Streamer {
	var samples [][2]float64

	for _, n := range notes {
		count := int(n.duration * float64(toneRate))
		fade := toneRate.N(5 * time.Millisecond) // envelope length in samples
		for i := 0; i < count; i++ {
			var v float64
			if n.freq > 0 {
				v = 0.4 * math.Sin(2*math.Pi*n.freq*float64(i)/float64(toneRate))
				switch {
				case i < fade:
					v *= float64(i) / float64(fade)
				case count-i < fade:
					v *= float64(count-i) / float64(fade)
				}
			}
			samples = append(samples, [2]float64{v, v})
		}
	}

	return &sliceStreamer{samples: samples}
}

// sliceStreamer streams a pre-rendered sample slice once.
type sliceStreamer struct {
	samples [][2]float64
	pos     int
}

func (s *sliceStreamer) Stream(out [][2]float64) (int, bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n := copy(out, s.samples[s.pos:])
	s.pos += n
	return n, true
}

func (s *sliceStreamer) Err() error { return nil }

// Len returns the total number of samples in the cue.
func (s *sliceStreamer) Len() int { return len(s.samples) }

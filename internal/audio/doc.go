// Package audio provides notification sound playback.
// It uses the beep library to play WAV, OGG, and MP3 audio files with
// volume control, and falls back to synthesized chimes when no sound
// file is configured.
package audio

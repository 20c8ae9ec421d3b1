// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_audio

import "time"

const (
	AudioBytesPerSample = 2  // LINEAR16 → 2 bytes per sample
	AudioBitsPerSample  = 16 // LINEAR16 → 16 bits per sample
	AudioPCMFormat      = 1  // WAV PCM format tag
)

// Config describes the PCM stream every component of the capture pipeline
// agrees on.
type Config struct {
	SampleRate    int
	Channels      int
	FrameDuration time.Duration
}

// DefaultConfig is mono LINEAR16 at 16kHz in 20ms frames.
var DefaultConfig = Config{
	SampleRate:    16000,
	Channels:      1,
	FrameDuration: 20 * time.Millisecond,
}

func (c Config) BytesPerSecond() int {
	return c.SampleRate * c.Channels * AudioBytesPerSample
}

// FrameBytes is the size of one fixed frame, aligned to whole samples.
func (c Config) FrameBytes() int {
	raw := int(float64(c.BytesPerSecond()) * c.FrameDuration.Seconds())
	sample := AudioBytesPerSample * c.Channels
	if raw < sample {
		return sample
	}
	return (raw / sample) * sample
}

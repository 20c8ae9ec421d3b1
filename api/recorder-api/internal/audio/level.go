// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_audio

import (
	"encoding/binary"
	"math"

	"github.com/rapidaai/voicenote/pkg/utils"
)

// Level computes the root-mean-square loudness of one PCM16LE frame, scaled
// and clamped to [0, 1] for waveform display.
func Level(frame []byte) float64 {
	samples := len(frame) / AudioBytesPerSample
	if samples == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < samples; i++ {
		s := int16(binary.LittleEndian.Uint16(frame[i*AudioBytesPerSample:]))
		v := float64(s) / 32768.0
		sum += v * v
	}
	return utils.Clamp01(math.Sqrt(sum / float64(samples)))
}

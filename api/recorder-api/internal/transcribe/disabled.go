// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_transcribe

import (
	"context"
	"errors"

	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
)

// disabledTranscriber stands in when no speech engine is configured. It
// reports authorization as denied, so sessions degrade to audio-only through
// the same path as a user denial and never reach Start or Stream.
type disabledTranscriber struct{}

// NewDisabledTranscriber returns the engine used when transcription is
// switched off.
func NewDisabledTranscriber() internal_type.Transcriber {
	return disabledTranscriber{}
}

func (disabledTranscriber) RequestAuthorization(ctx context.Context) (bool, error) {
	return false, nil
}

func (disabledTranscriber) IsAvailable(locale string) bool { return false }

func (disabledTranscriber) EnsureAssets(ctx context.Context, locale string) error { return nil }

func (disabledTranscriber) Start(ctx context.Context, locale string) (<-chan internal_type.TranscriptionResult, error) {
	return nil, errors.New("transcribe: engine disabled")
}

func (disabledTranscriber) Stream(frame internal_type.AudioFrame) error {
	return errors.New("transcribe: engine disabled")
}

func (disabledTranscriber) Finish(ctx context.Context) error { return nil }

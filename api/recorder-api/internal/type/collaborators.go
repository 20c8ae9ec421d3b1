// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_type

import "context"

// CaptureSource produces the live microphone frame stream for one session.
// Start returns a channel that yields frames in capture order and is closed
// when capture stops. Pause gates frame emission without tearing the source
// down; Resume lifts the gate.
type CaptureSource interface {
	RequestPermission(ctx context.Context) (bool, error)
	Start(ctx context.Context, destination string) (<-chan AudioFrame, error)
	Pause() error
	Resume() error
	Stop() error
}

// Transcriber consumes audio frames and produces an ordered stream of
// transcription results. Results arrive in non-decreasing time order; the
// merge path depends on that and does not re-sort. Finish flushes any
// trailing volatile text as a final result and closes the result stream.
type Transcriber interface {
	RequestAuthorization(ctx context.Context) (bool, error)
	IsAvailable(locale string) bool
	EnsureAssets(ctx context.Context, locale string) error
	Start(ctx context.Context, locale string) (<-chan TranscriptionResult, error)
	Stream(frame AudioFrame) error
	Finish(ctx context.Context) error
}

// MediaObserver reports photo/screenshot captures happening while a session
// is active. Events are independent of the recording lifecycle; correlation
// to the timeline happens in the session reducer.
type MediaObserver interface {
	RequestAuthorization(ctx context.Context) (bool, error)
	Observe(ctx context.Context) (<-chan CaptureEvent, error)
	Stop() error
	FetchThumbnail(ctx context.Context, assetIdentifier string, size int) ([]byte, error)
}

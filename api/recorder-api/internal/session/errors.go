// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_session

import (
	"errors"
	"fmt"
)

// Subsystem identifies which capability a permission error belongs to.
type Subsystem string

const (
	SubsystemMicrophone Subsystem = "microphone"
	SubsystemSpeech     Subsystem = "speech"
	SubsystemMedia      Subsystem = "media"
)

// Session error taxonomy. Microphone permission, capture availability and
// destination writes are fatal to a session; speech and media errors degrade
// the session without aborting it. Deliberate cancellation is not an error.
var (
	// ErrInvalidTransition is returned for commands issued in the wrong phase.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrCaptureEngineUnavailable aborts session start.
	ErrCaptureEngineUnavailable = errors.New("capture engine unavailable")

	// ErrRecordingFailed wraps fatal capture/destination failures mid-session.
	ErrRecordingFailed = errors.New("recording failed")

	// ErrTranscriptionFailed marks a non-fatal mid-session engine failure;
	// recording continues audio-only.
	ErrTranscriptionFailed = errors.New("transcription failed")

	// ErrAssetInstallationFailed is non-fatal; transcription simply does not
	// start.
	ErrAssetInstallationFailed = errors.New("speech asset installation failed")

	// ErrLocaleNotSupported is non-fatal, handled like a missing asset.
	ErrLocaleNotSupported = errors.New("locale not supported by transcription engine")
)

// PermissionDeniedError reports a denied permission for one subsystem.
// Microphone denial is fatal to the session; the others degrade gracefully.
type PermissionDeniedError struct {
	Subsystem Subsystem
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Subsystem)
}

// IsFatal reports whether err must abort the session.
func IsFatal(err error) bool {
	var denied *PermissionDeniedError
	if errors.As(err, &denied) {
		return denied.Subsystem == SubsystemMicrophone
	}
	return errors.Is(err, ErrCaptureEngineUnavailable) ||
		errors.Is(err, ErrRecordingFailed)
}

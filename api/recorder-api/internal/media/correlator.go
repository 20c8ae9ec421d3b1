// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_media

import (
	"time"

	"github.com/google/uuid"

	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
)

// Correlator maps an externally observed capture event's absolute creation
// time onto the recording timeline of one session.
type Correlator struct {
	startedAt time.Time
}

func NewCorrelator(startedAt time.Time) Correlator {
	return Correlator{startedAt: startedAt}
}

// Correlate returns the timestamped media for an event, or false when the
// event predates the session start (a race at the session boundary; such
// events are discarded).
func (c Correlator) Correlate(event internal_type.CaptureEvent) (internal_type.TimestampedMedia, bool) {
	offset := event.CreationDate.Sub(c.startedAt).Seconds()
	if offset < 0 {
		return internal_type.TimestampedMedia{}, false
	}
	return internal_type.TimestampedMedia{
		ID:              uuid.New().String(),
		Timestamp:       offset,
		AssetIdentifier: event.AssetIdentifier,
		MediaType:       event.MediaType,
		CreationDate:    event.CreationDate,
	}, true
}

// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_type

import "time"

// TimestampedWord is a single recognized word placed on the recording
// timeline. Start and end are seconds relative to recording start and
// EndTime > StartTime always holds for engine-produced words.
type TimestampedWord struct {
	Text       string   `json:"text"`
	StartTime  float64  `json:"startTime"`
	EndTime    float64  `json:"endTime"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// TranscriptionSegment is an immutable finalized fragment of the transcript.
// Text is whitespace-trimmed and non-empty; Words belong to this segment only.
type TranscriptionSegment struct {
	Text  string            `json:"text"`
	Words []TimestampedWord `json:"words"`
}

// TranscriptionResult is one update from the transcription engine. Volatile
// results (IsFinal == false) are revisable scratch text; final results are
// appended permanently.
type TranscriptionResult struct {
	Text    string            `json:"text"`
	Words   []TimestampedWord `json:"words"`
	IsFinal bool              `json:"isFinal"`
}

type MediaType string

const (
	MediaTypePhoto      MediaType = "photo"
	MediaTypeScreenshot MediaType = "screenshot"
)

// TimestampedMedia is a photo or screenshot correlated to the recording
// timeline. Timestamp is seconds relative to recording start and is never
// negative; CreationDate is the absolute capture time used to compute it.
// Thumbnail is display state, filled in asynchronously after the event is
// accepted.
type TimestampedMedia struct {
	ID              string    `json:"id"`
	Timestamp       float64   `json:"timestamp"`
	AssetIdentifier string    `json:"assetIdentifier"`
	MediaType       MediaType `json:"mediaType"`
	CreationDate    time.Time `json:"creationDate"`
	Thumbnail       []byte    `json:"-"`
}

// Recording is the immutable product of a successfully stopped session.
type Recording struct {
	ID            string                 `json:"id"`
	Title         string                 `json:"title"`
	Date          time.Time              `json:"date"`
	Duration      float64                `json:"duration"`
	AudioLocation string                 `json:"audioLocation"`
	Words         []TimestampedWord      `json:"words"`
	Segments      []TranscriptionSegment `json:"segments"`
	Media         []TimestampedMedia     `json:"media"`
}

// AudioFrame is one fixed-size chunk of raw PCM16LE audio in capture order.
type AudioFrame struct {
	Seq  int
	Data []byte
}

// CaptureEvent is an externally observed photo/screenshot capture.
type CaptureEvent struct {
	AssetIdentifier string
	MediaType       MediaType
	CreationDate    time.Time
}

// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_transcript

import (
	"strings"

	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
	"github.com/rapidaai/voicenote/pkg/utils"
)

// LiveTranscriptionState is the growing transcript of an active session.
//
//   - FinalizedSegments and AllWords only grow; appended entries are
//     immutable. AllWords stays sorted ascending by StartTime because engine
//     results arrive in non-decreasing time order.
//   - VolatileText is non-authoritative scratch space: replaced wholesale on
//     every volatile result, cleared whenever a segment finalizes.
//   - CurrentTime / CurrentWordIndex mirror recording progress into read-only
//     views (fullscreen transcript) without duplicating the word lists.
type LiveTranscriptionState struct {
	FinalizedSegments []internal_type.TranscriptionSegment `json:"finalizedSegments"`
	AllWords          []internal_type.TimestampedWord      `json:"allWords"`
	VolatileText      string                               `json:"volatileText"`
	CurrentTime       float64                              `json:"currentTime"`
	CurrentWordIndex  int                                  `json:"currentWordIndex"`
}

// NewLiveTranscriptionState returns an empty transcript with no word cursor.
func NewLiveTranscriptionState() LiveTranscriptionState {
	return LiveTranscriptionState{CurrentWordIndex: -1}
}

// ApplyResult merges one engine update into the transcript.
//
// Volatile results replace VolatileText verbatim, last write wins. Final
// results clear VolatileText and, when the trimmed text is non-empty, append
// a new immutable segment and extend AllWords in arrival order. A final
// result that collapses to whitespace produces no segment.
func (s *LiveTranscriptionState) ApplyResult(r internal_type.TranscriptionResult) {
	if !r.IsFinal {
		s.VolatileText = r.Text
		return
	}

	s.VolatileText = ""
	if utils.IsEmpty(r.Text) {
		return
	}

	seg := internal_type.TranscriptionSegment{
		Text:  strings.TrimSpace(r.Text),
		Words: append([]internal_type.TimestampedWord(nil), r.Words...),
	}
	s.FinalizedSegments = append(s.FinalizedSegments, seg)
	s.AllWords = append(s.AllWords, seg.Words...)
}

// FullText joins all finalized segment texts with spaces.
func (s *LiveTranscriptionState) FullText() string {
	out := ""
	for i, seg := range s.FinalizedSegments {
		if i > 0 {
			out += " "
		}
		out += seg.Text
	}
	return out
}

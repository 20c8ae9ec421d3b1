// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
)

func word(text string, start, end float64) internal_type.TimestampedWord {
	return internal_type.TimestampedWord{Text: text, StartTime: start, EndTime: end}
}

func volatileResult(text string) internal_type.TranscriptionResult {
	return internal_type.TranscriptionResult{Text: text, IsFinal: false}
}

func finalResult(text string, words ...internal_type.TimestampedWord) internal_type.TranscriptionResult {
	return internal_type.TranscriptionResult{Text: text, Words: words, IsFinal: true}
}

func TestApplyResult_VolatileLastWriteWins(t *testing.T) {
	s := NewLiveTranscriptionState()

	s.ApplyResult(volatileResult("hel"))
	s.ApplyResult(volatileResult("hello wor"))
	s.ApplyResult(volatileResult("hello world"))

	assert.Equal(t, "hello world", s.VolatileText)
	assert.Empty(t, s.FinalizedSegments)
	assert.Empty(t, s.AllWords)
}

func TestApplyResult_FinalAppendsSegmentAndClearsVolatile(t *testing.T) {
	s := NewLiveTranscriptionState()

	s.ApplyResult(volatileResult("hello wor"))
	s.ApplyResult(finalResult("hello world",
		word("hello", 0.0, 0.5),
		word("world", 0.5, 1.0),
	))

	require.Len(t, s.FinalizedSegments, 1)
	assert.Equal(t, "hello world", s.FinalizedSegments[0].Text)
	assert.Len(t, s.FinalizedSegments[0].Words, 2)
	assert.Len(t, s.AllWords, 2)
	assert.Empty(t, s.VolatileText)
}

func TestApplyResult_FinalTrimsText(t *testing.T) {
	s := NewLiveTranscriptionState()

	s.ApplyResult(finalResult("  hello  ", word("hello", 0.0, 0.5)))

	require.Len(t, s.FinalizedSegments, 1)
	assert.Equal(t, "hello", s.FinalizedSegments[0].Text)
}

func TestApplyResult_WhitespaceOnlyFinalProducesNoSegment(t *testing.T) {
	s := NewLiveTranscriptionState()

	s.ApplyResult(volatileResult("mumbling"))
	s.ApplyResult(finalResult("  "))

	assert.Empty(t, s.FinalizedSegments, "whitespace-only final must not create a segment")
	assert.Empty(t, s.AllWords)
	assert.Empty(t, s.VolatileText, "volatile text is cleared even when the final collapses")
}

func TestApplyResult_WordsStayMonotonicAndOnlyGrow(t *testing.T) {
	s := NewLiveTranscriptionState()

	updates := []internal_type.TranscriptionResult{
		volatileResult("he"),
		finalResult("hello", word("hello", 0.0, 0.5)),
		volatileResult("wor"),
		volatileResult("world te"),
		finalResult("world test", word("world", 0.5, 1.0), word("test", 1.0, 1.5)),
		finalResult(" "),
		finalResult("again", word("again", 2.0, 2.4)),
	}

	prevLen := 0
	for _, u := range updates {
		s.ApplyResult(u)
		require.GreaterOrEqual(t, len(s.AllWords), prevLen, "AllWords must never shrink")
		prevLen = len(s.AllWords)
		for i := 1; i < len(s.AllWords); i++ {
			require.LessOrEqual(t, s.AllWords[i-1].StartTime, s.AllWords[i].StartTime,
				"AllWords must be non-decreasing in StartTime")
		}
	}

	assert.Len(t, s.FinalizedSegments, 3)
	assert.Len(t, s.AllWords, 4)
	assert.Equal(t, "hello world test again", s.FullText())
}

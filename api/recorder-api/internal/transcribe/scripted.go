// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_transcribe

import (
	"context"
	"errors"
	"sync"

	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
)

// ScriptedTranscriber is the deterministic engine used in tests and
// simulators. Results are pushed explicitly; Finish flushes any configured
// trailing final and closes the stream, mirroring the production engine's
// flush contract.
type ScriptedTranscriber struct {
	Granted     bool
	Available   bool
	AssetsError error
	StartError  error

	mu        sync.Mutex
	results   chan internal_type.TranscriptionResult
	streamed  []internal_type.AudioFrame
	flush     []internal_type.TranscriptionResult
	finished  bool
	StreamErr error
}

func NewScriptedTranscriber() *ScriptedTranscriber {
	return &ScriptedTranscriber{Granted: true, Available: true}
}

func (s *ScriptedTranscriber) RequestAuthorization(ctx context.Context) (bool, error) {
	return s.Granted, nil
}

func (s *ScriptedTranscriber) IsAvailable(locale string) bool {
	return s.Available
}

func (s *ScriptedTranscriber) EnsureAssets(ctx context.Context, locale string) error {
	return s.AssetsError
}

func (s *ScriptedTranscriber) Start(ctx context.Context, locale string) (<-chan internal_type.TranscriptionResult, error) {
	if s.StartError != nil {
		return nil, s.StartError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.results != nil {
		return nil, errors.New("scripted transcriber: already started")
	}
	s.results = make(chan internal_type.TranscriptionResult, 256)
	s.finished = false
	return s.results, nil
}

// Push emits one result into the stream.
func (s *ScriptedTranscriber) Push(result internal_type.TranscriptionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.results == nil || s.finished {
		return
	}
	s.results <- result
}

// FlushOnFinish schedules results that Finish emits before closing, the way
// a real engine finalizes trailing volatile text.
func (s *ScriptedTranscriber) FlushOnFinish(results ...internal_type.TranscriptionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flush = append(s.flush, results...)
}

func (s *ScriptedTranscriber) Stream(frame internal_type.AudioFrame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.StreamErr != nil {
		return s.StreamErr
	}
	s.streamed = append(s.streamed, frame)
	return nil
}

// Streamed returns a copy of every frame handed to the engine.
func (s *ScriptedTranscriber) Streamed() []internal_type.AudioFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]internal_type.AudioFrame(nil), s.streamed...)
}

func (s *ScriptedTranscriber) Finish(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.results == nil || s.finished {
		return nil
	}
	for _, r := range s.flush {
		s.results <- r
	}
	close(s.results)
	s.results = nil
	s.finished = true
	return nil
}

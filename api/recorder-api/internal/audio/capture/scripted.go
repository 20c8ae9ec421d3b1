// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_capture

import (
	"context"
	"errors"
	"sync"

	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
)

// ScriptedSource is the deterministic CaptureSource used in tests and
// simulators. Frames are pushed explicitly with Emit; Pause discards emitted
// frames exactly like the production gate does.
type ScriptedSource struct {
	Granted bool

	mu          sync.Mutex
	frames      chan internal_type.AudioFrame
	paused      bool
	seq         int
	Destination string
	PauseCalls  int
	ResumeCalls int
	StopCalls   int
}

func NewScriptedSource(granted bool) *ScriptedSource {
	return &ScriptedSource{Granted: granted}
}

func (s *ScriptedSource) RequestPermission(ctx context.Context) (bool, error) {
	return s.Granted, nil
}

func (s *ScriptedSource) Start(ctx context.Context, destination string) (<-chan internal_type.AudioFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frames != nil {
		return nil, errors.New("scripted capture: already started")
	}
	s.Destination = destination
	s.frames = make(chan internal_type.AudioFrame, 256)
	return s.frames, nil
}

// Emit pushes one frame into the stream unless the source is paused or
// stopped.
func (s *ScriptedSource) Emit(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frames == nil || s.paused {
		return
	}
	s.frames <- internal_type.AudioFrame{Seq: s.seq, Data: data}
	s.seq++
}

func (s *ScriptedSource) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	s.PauseCalls++
	return nil
}

func (s *ScriptedSource) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	s.ResumeCalls++
	return nil
}

func (s *ScriptedSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frames != nil {
		close(s.frames)
		s.frames = nil
	}
	s.StopCalls++
	return nil
}

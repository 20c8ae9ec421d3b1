// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_media

import (
	"context"
	"errors"
	"sync"

	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
)

// ScriptedObserver is the deterministic MediaObserver used in tests and
// simulators.
type ScriptedObserver struct {
	Granted    bool
	Thumbnails map[string][]byte
	ThumbErr   error

	mu        sync.Mutex
	events    chan internal_type.CaptureEvent
	StopCalls int
}

func NewScriptedObserver(granted bool) *ScriptedObserver {
	return &ScriptedObserver{Granted: granted, Thumbnails: map[string][]byte{}}
}

func (s *ScriptedObserver) RequestAuthorization(ctx context.Context) (bool, error) {
	return s.Granted, nil
}

func (s *ScriptedObserver) Observe(ctx context.Context) (<-chan internal_type.CaptureEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events != nil {
		return nil, errors.New("scripted observer: already observing")
	}
	s.events = make(chan internal_type.CaptureEvent, 64)
	return s.events, nil
}

// Emit pushes one capture event into the stream.
func (s *ScriptedObserver) Emit(event internal_type.CaptureEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events == nil {
		return
	}
	s.events <- event
}

func (s *ScriptedObserver) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events != nil {
		close(s.events)
		s.events = nil
	}
	s.StopCalls++
	return nil
}

func (s *ScriptedObserver) FetchThumbnail(ctx context.Context, assetIdentifier string, size int) ([]byte, error) {
	if s.ThumbErr != nil {
		return nil, s.ThumbErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Thumbnails[assetIdentifier], nil
}

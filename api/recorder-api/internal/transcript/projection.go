// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_transcript

import (
	"sync"

	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
)

// Projection is the single shared cell holding the live transcript. The
// session orchestrator is the only holder of the writable handle; everything
// else receives a Reader. Writes are atomic with respect to readers and a
// snapshot is always torn-free.
type Projection struct {
	mu    sync.RWMutex
	state LiveTranscriptionState
}

func NewProjection() *Projection {
	return &Projection{state: NewLiveTranscriptionState()}
}

// Update runs fn against the live state under the write lock. Only the
// orchestrator's reducer path may call this.
func (p *Projection) Update(fn func(*LiveTranscriptionState)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.state)
}

// Replace swaps the whole state. Used on session reset so stale readers never
// observe a mix of old and new session data.
func (p *Projection) Replace(state LiveTranscriptionState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
}

// Snapshot returns a consistent copy of the current state. The outer slices
// are copied so a later append by the writer can never reach a reader; the
// elements themselves are immutable once appended.
func (p *Projection) Snapshot() LiveTranscriptionState {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := p.state
	out.FinalizedSegments = append([]internal_type.TranscriptionSegment(nil), p.state.FinalizedSegments...)
	out.AllWords = append([]internal_type.TimestampedWord(nil), p.state.AllWords...)
	return out
}

// Reader returns a read-only view of the projection.
func (p *Projection) Reader() *Reader {
	return &Reader{projection: p}
}

// Reader is the handle given to presentation consumers. It can observe but
// not mutate the authoritative state.
type Reader struct {
	projection *Projection
}

// Snapshot returns a torn-free copy of the current transcript.
func (r *Reader) Snapshot() LiveTranscriptionState {
	return r.projection.Snapshot()
}

// CurrentWordIndex returns the mirrored word cursor, -1 when no word is
// active at the current recording time.
func (r *Reader) CurrentWordIndex() int {
	r.projection.mu.RLock()
	defer r.projection.mu.RUnlock()
	return r.projection.state.CurrentWordIndex
}

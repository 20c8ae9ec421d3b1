// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_audio

import (
	"sync"

	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
)

// FrameQueue is an unbounded FIFO between the capture fan-out and the
// transcriber forwarder. Push never blocks and never drops, so transcriber
// back-pressure cannot stall the disk sink; Pop blocks until a frame arrives
// or the queue is closed and drained.
type FrameQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	frames []internal_type.AudioFrame
	closed bool
}

func NewFrameQueue() *FrameQueue {
	q := &FrameQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends a frame. Pushing to a closed queue is a no-op.
func (q *FrameQueue) Push(frame internal_type.AudioFrame) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.frames = append(q.frames, frame)
	q.cond.Signal()
}

// Pop removes the oldest frame, blocking while the queue is open and empty.
// Returns false once the queue is closed and fully drained.
func (q *FrameQueue) Pop() (internal_type.AudioFrame, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.frames) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.frames) == 0 {
		return internal_type.AudioFrame{}, false
	}
	frame := q.frames[0]
	q.frames = q.frames[1:]
	return frame, true
}

// Close marks the queue closed and wakes all waiters. Queued frames remain
// poppable so the forwarder can drain before exiting.
func (q *FrameQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

// Len returns the number of queued frames.
func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}

// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_audio

import (
	"context"
	"fmt"

	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
	"github.com/rapidaai/voicenote/pkg/commons"
)

const levelChannelSize = 32

// FrameSink receives frames forwarded off the capture path (the transcriber
// feed). It may block; the queue in front of it absorbs the back-pressure.
type FrameSink func(internal_type.AudioFrame) error

// Fanout taps one capture frame stream into three sinks, each observing every
// frame exactly once, in capture order:
//
//   - synchronous WAV append (write errors are logged and reported to
//     onWriteError, the stream itself keeps flowing),
//   - per-frame RMS loudness published on a lossy display channel,
//   - hand-off to the transcriber through an unbounded queue drained by a
//     dedicated forwarder goroutine, so slow transcription never stalls the
//     disk write.
type Fanout struct {
	logger commons.Logger
	writer *WAVWriter
	sink   FrameSink

	levels       chan float64
	queue        *FrameQueue
	onWriteError func(error)
}

// NewFanout wires the fan-out. sink may be nil (transcription not
// authorized); onWriteError may be nil.
func NewFanout(logger commons.Logger, writer *WAVWriter, sink FrameSink, onWriteError func(error)) *Fanout {
	return &Fanout{
		logger:       logger,
		writer:       writer,
		sink:         sink,
		levels:       make(chan float64, levelChannelSize),
		queue:        NewFrameQueue(),
		onWriteError: onWriteError,
	}
}

// Levels is the loudness stream for waveform display. Closed when Run exits.
func (f *Fanout) Levels() <-chan float64 {
	return f.levels
}

// Run pumps frames until the stream closes or ctx is cancelled. On every exit
// path it drains the forwarder, closes the level stream and finalizes the WAV
// file.
func (f *Fanout) Run(ctx context.Context, frames <-chan internal_type.AudioFrame) error {
	forwarderDone := make(chan struct{})
	go f.forward(forwarderDone)

	defer func() {
		f.queue.Close()
		<-forwarderDone
		close(f.levels)
		if err := f.writer.Close(); err != nil {
			f.logger.Errorf("fanout: closing wav destination failed: %v", err)
		}
	}()

	writeErrLogged := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-frames:
			if !ok {
				return nil
			}

			if err := f.writer.Write(frame.Data); err != nil {
				if !writeErrLogged {
					f.logger.Errorf("fanout: wav write failed at frame %d: %v", frame.Seq, err)
					writeErrLogged = true
				}
				if f.onWriteError != nil {
					f.onWriteError(fmt.Errorf("audio destination write: %w", err))
				}
			}

			// Lossy on purpose: waveform display only needs the latest levels.
			select {
			case f.levels <- Level(frame.Data):
			default:
			}

			if f.sink != nil {
				f.queue.Push(frame)
			}
		}
	}
}

// forward drains the queue into the transcriber sink. A sink failure is
// non-fatal to recording: it is logged once and remaining frames are
// discarded as they arrive.
func (f *Fanout) forward(done chan<- struct{}) {
	defer close(done)
	broken := false
	for {
		frame, ok := f.queue.Pop()
		if !ok {
			return
		}
		if broken || f.sink == nil {
			continue
		}
		if err := f.sink(frame); err != nil {
			f.logger.Warnf("fanout: transcriber sink failed, dropping remaining frames: %v", err)
			broken = true
		}
	}
}

// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"

	internal_audio "github.com/rapidaai/voicenote/api/recorder-api/internal/audio"
	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
	"github.com/rapidaai/voicenote/pkg/commons"
)

const frameChannelSize = 64

// execSource captures microphone audio by running a recorder subprocess
// (ffmpeg/arecord style) that emits raw PCM16LE on stdout, sliced into fixed
// frames. Pause gates frame emission; the subprocess keeps running and gated
// audio is discarded, so Resume continues on the same timeline without
// re-negotiating the device.
type execSource struct {
	logger  commons.Logger
	config  internal_audio.Config
	command string
	args    []string

	mu     sync.Mutex
	cancel context.CancelFunc
	cmd    *exec.Cmd
	paused atomic.Bool
}

// NewExecCaptureSource builds a capture source around the given subprocess
// command. The command must write raw PCM16LE matching config to stdout.
func NewExecCaptureSource(logger commons.Logger, config internal_audio.Config, command string, args ...string) internal_type.CaptureSource {
	return &execSource{
		logger:  logger,
		config:  config,
		command: command,
		args:    args,
	}
}

// RequestPermission reports whether the capture command is available. A
// missing recorder binary is the subprocess equivalent of a denied
// microphone.
func (s *execSource) RequestPermission(ctx context.Context) (bool, error) {
	if _, err := exec.LookPath(s.command); err != nil {
		s.logger.Warnf("capture: recorder command %q not available: %v", s.command, err)
		return false, nil
	}
	return true, nil
}

func (s *execSource) Start(ctx context.Context, destination string) (<-chan internal_type.AudioFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd != nil {
		return nil, errors.New("capture: already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, s.command, s.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("capture: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("capture: starting %s: %w", s.command, err)
	}

	// The destination file itself is written by the session fan-out; the
	// source only produces frames.
	s.logger.Infow("capture started",
		"command", s.command,
		"destination", destination,
		"frameBytes", s.config.FrameBytes(),
	)

	frames := make(chan internal_type.AudioFrame, frameChannelSize)
	s.cancel = cancel
	s.cmd = cmd
	s.paused.Store(false)
	go s.readLoop(runCtx, stdout, cmd, frames)
	return frames, nil
}

// readLoop owns its frame channel: Stop only cancels the context, so a new
// session may already be live when this loop's defer runs.
func (s *execSource) readLoop(ctx context.Context, stdout io.Reader, cmd *exec.Cmd, frames chan internal_type.AudioFrame) {
	defer func() {
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			s.logger.Warnf("capture: recorder process exited: %v", err)
		}
		close(frames)
	}()

	frameBytes := s.config.FrameBytes()
	seq := 0
	for {
		buf := make([]byte, frameBytes)
		if _, err := io.ReadFull(stdout, buf); err != nil {
			if ctx.Err() == nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				s.logger.Errorf("capture: reading recorder output: %v", err)
			}
			return
		}
		if s.paused.Load() {
			continue
		}
		frame := internal_type.AudioFrame{Seq: seq, Data: buf}
		seq++
		select {
		case frames <- frame:
		case <-ctx.Done():
			return
		}
	}
}

func (s *execSource) Pause() error {
	s.paused.Store(true)
	return nil
}

func (s *execSource) Resume() error {
	s.paused.Store(false)
	return nil
}

func (s *execSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.cmd = nil
	}
	return nil
}

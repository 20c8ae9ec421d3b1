// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	internal_audio "github.com/rapidaai/voicenote/api/recorder-api/internal/audio"
	internal_media "github.com/rapidaai/voicenote/api/recorder-api/internal/media"
	internal_playback "github.com/rapidaai/voicenote/api/recorder-api/internal/playback"
	internal_transcript "github.com/rapidaai/voicenote/api/recorder-api/internal/transcript"
	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
	"github.com/rapidaai/voicenote/pkg/commons"
	"github.com/rapidaai/voicenote/pkg/utils"
)

// Phase is the externally observable lifecycle state of the orchestrator.
type Phase string

const (
	PhaseIdle                  Phase = "idle"
	PhaseRequestingPermissions Phase = "requesting_permissions"
	PhaseRecording             Phase = "recording"
	PhasePaused                Phase = "paused"
	PhaseStopping              Phase = "stopping"
	PhaseFailed                Phase = "failed"
)

const (
	defaultTickInterval   = 100 * time.Millisecond
	defaultLocale         = "en-US"
	defaultThumbnailSize  = 256
	thumbnailFetchTimeout = 30 * time.Second
	levelWindow           = 8
)

// Orchestrator coordinates one live recording session at a time: microphone
// capture fanned out to disk, level metering and transcription, a wall-clock
// timer, and media capture correlation. It is the single writer of the shared
// transcript projection; everything else observes through a Reader.
//
// All exported methods are safe for concurrent use. A stopped or failed
// orchestrator is reusable: the next Start begins a fresh session.
type Orchestrator struct {
	logger      commons.Logger
	capture     internal_type.CaptureSource
	transcriber internal_type.Transcriber
	observer    internal_type.MediaObserver

	dataDir     string
	locale      string
	tick        time.Duration
	thumbSize   int
	audioConfig internal_audio.Config
	clock       func() time.Time

	projection *internal_transcript.Projection

	mu           sync.Mutex
	phase        Phase
	generation   int
	sessionID    string
	destination  string
	startedAt    time.Time
	accumulated  time.Duration
	segmentStart time.Time
	media        []internal_type.TimestampedMedia
	lastError    error
	speechError  error
	levels       []float64

	cancelRun      context.CancelFunc
	group          *errgroup.Group
	transcribing   bool
	observing      bool
	fanoutDone     chan struct{}
	transcriptDone chan struct{}
}

// OrchestratorOption customizes an orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithClock injects the time source, used by tests to script elapsed time.
func WithClock(clock func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) {
		o.clock = clock
	}
}

// WithTickInterval sets how often the session timer refreshes the projection.
func WithTickInterval(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.tick = d
	}
}

// WithLocale sets the transcription locale.
func WithLocale(locale string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.locale = locale
	}
}

// WithAudioConfig sets the PCM format written to disk.
func WithAudioConfig(config internal_audio.Config) OrchestratorOption {
	return func(o *Orchestrator) {
		o.audioConfig = config
	}
}

// WithThumbnailSize sets the square pixel size requested for media thumbnails.
func WithThumbnailSize(size int) OrchestratorOption {
	return func(o *Orchestrator) {
		o.thumbSize = size
	}
}

// NewOrchestrator wires a session orchestrator over its three collaborators.
// Audio destinations are created under dataDir, one WAV per session.
func NewOrchestrator(
	logger commons.Logger,
	capture internal_type.CaptureSource,
	transcriber internal_type.Transcriber,
	observer internal_type.MediaObserver,
	dataDir string,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		logger:      logger,
		capture:     capture,
		transcriber: transcriber,
		observer:    observer,
		dataDir:     dataDir,
		locale:      defaultLocale,
		tick:        defaultTickInterval,
		thumbSize:   defaultThumbnailSize,
		audioConfig: internal_audio.DefaultConfig,
		clock:       time.Now,
		projection:  internal_transcript.NewProjection(),
		phase:       PhaseIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start begins a new session. It requests all three permissions concurrently;
// a denied microphone aborts the start, while denied speech or media
// permissions only degrade the session. On success the session is live and
// Start returns once the phase is Recording.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.phase != PhaseIdle {
		phase := o.phase
		o.mu.Unlock()
		return fmt.Errorf("start: session is %s: %w", phase, ErrInvalidTransition)
	}
	o.generation++
	gen := o.generation
	o.phase = PhaseRequestingPermissions
	o.sessionID = uuid.New().String()
	o.destination = filepath.Join(o.dataDir, o.sessionID+".wav")
	o.startedAt = o.clock()
	o.accumulated = 0
	o.segmentStart = time.Time{}
	o.media = nil
	o.lastError = nil
	o.speechError = nil
	o.levels = nil
	sessionID, destination, startedAt := o.sessionID, o.destination, o.startedAt
	o.mu.Unlock()

	o.projection.Replace(internal_transcript.NewLiveTranscriptionState())

	micOK, speechOK, mediaOK, err := o.requestPermissions(ctx)
	if err != nil {
		return o.abortStart(gen, fmt.Errorf("requesting permissions: %w", err))
	}
	if !micOK {
		return o.abortStart(gen, &PermissionDeniedError{Subsystem: SubsystemMicrophone})
	}
	if !speechOK {
		o.setSpeechError(&PermissionDeniedError{Subsystem: SubsystemSpeech})
	}
	if !mediaOK {
		o.logger.Warnf("session %s: media permission denied, continuing without media capture", sessionID)
	}

	// The run context is rooted in Background, not the caller's ctx: once a
	// session is live its teardown is driven by Stop/Cancel/failure, never by
	// the request that happened to start it.
	runCtx, cancel := context.WithCancel(context.Background())

	frames, err := o.capture.Start(runCtx, destination)
	if err != nil {
		cancel()
		return o.abortStart(gen, fmt.Errorf("%w: %v", ErrCaptureEngineUnavailable, err))
	}

	writer, err := internal_audio.NewWAVWriter(destination, o.audioConfig)
	if err != nil {
		o.capture.Stop()
		cancel()
		return o.abortStart(gen, fmt.Errorf("%w: %v", ErrRecordingFailed, err))
	}

	results, transcribing := o.startTranscription(ctx, runCtx)
	events, observing := o.startObservation(runCtx)

	var sink internal_audio.FrameSink
	if transcribing {
		sink = func(frame internal_type.AudioFrame) error {
			if err := o.transcriber.Stream(frame); err != nil {
				o.setSpeechError(fmt.Errorf("%w: %v", ErrTranscriptionFailed, err))
				return err
			}
			return nil
		}
	}

	fanout := internal_audio.NewFanout(o.logger, writer, sink, func(err error) {
		o.failAsync(gen, fmt.Errorf("%w: %v", ErrRecordingFailed, err))
	})

	group, gctx := errgroup.WithContext(runCtx)

	fanoutDone := make(chan struct{})
	group.Go(func() error {
		defer close(fanoutDone)
		err := fanout.Run(gctx, frames)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRecordingFailed, err)
		}
		if phase := o.Phase(); phase == PhaseRecording || phase == PhasePaused {
			return fmt.Errorf("%w: capture stream ended unexpectedly", ErrRecordingFailed)
		}
		return nil
	})

	group.Go(func() error {
		for level := range fanout.Levels() {
			o.setLevel(level)
		}
		return nil
	})

	group.Go(func() error {
		return o.runTicker(gctx)
	})

	transcriptDone := make(chan struct{})
	if transcribing {
		group.Go(func() error {
			defer close(transcriptDone)
			return o.runTranscriptLoop(gctx, results)
		})
	} else {
		close(transcriptDone)
	}

	if observing {
		correlator := internal_media.NewCorrelator(startedAt)
		group.Go(func() error {
			return o.runMediaLoop(gctx, correlator, events)
		})
	}

	o.mu.Lock()
	if o.phase != PhaseRequestingPermissions || o.generation != gen {
		// Cancelled or failed while the pipeline was spinning up.
		reason := o.lastError
		o.mu.Unlock()
		o.capture.Stop()
		if observing {
			o.observer.Stop()
		}
		cancel()
		group.Wait()
		os.Remove(destination)
		if reason != nil {
			return reason
		}
		return context.Canceled
	}
	o.cancelRun = cancel
	o.group = group
	o.fanoutDone = fanoutDone
	o.transcriptDone = transcriptDone
	o.transcribing = transcribing
	o.observing = observing
	o.phase = PhaseRecording
	o.segmentStart = o.clock()
	o.mu.Unlock()

	go o.supervise(gen, group)

	o.logger.Infof("session %s recording: destination=%s transcription=%t media=%t",
		sessionID, destination, transcribing, observing)
	return nil
}

// requestPermissions fans the three permission prompts out concurrently. Only
// a microphone prompt failure is returned as an error; speech and media prompt
// failures are treated as denials.
func (o *Orchestrator) requestPermissions(ctx context.Context) (micOK, speechOK, mediaOK bool, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := o.capture.RequestPermission(gctx)
		micOK = ok
		return err
	})
	g.Go(func() error {
		ok, err := o.transcriber.RequestAuthorization(gctx)
		if err != nil {
			o.logger.Warnf("session: speech authorization prompt failed: %v", err)
			return nil
		}
		speechOK = ok
		return nil
	})
	g.Go(func() error {
		ok, err := o.observer.RequestAuthorization(gctx)
		if err != nil {
			o.logger.Warnf("session: media authorization prompt failed: %v", err)
			return nil
		}
		mediaOK = ok
		return nil
	})
	err = g.Wait()
	return micOK, speechOK, mediaOK, err
}

// startTranscription brings the speech engine up if locale and assets allow
// it. Every failure here is non-fatal: it is recorded for display and the
// session continues audio-only.
func (o *Orchestrator) startTranscription(ctx, runCtx context.Context) (<-chan internal_type.TranscriptionResult, bool) {
	o.mu.Lock()
	degraded := o.speechError != nil
	o.mu.Unlock()
	if degraded {
		return nil, false
	}
	if !o.transcriber.IsAvailable(o.locale) {
		o.setSpeechError(fmt.Errorf("%w: %s", ErrLocaleNotSupported, o.locale))
		return nil, false
	}
	if err := o.transcriber.EnsureAssets(ctx, o.locale); err != nil {
		o.setSpeechError(fmt.Errorf("%w: %v", ErrAssetInstallationFailed, err))
		return nil, false
	}
	results, err := o.transcriber.Start(runCtx, o.locale)
	if err != nil {
		o.setSpeechError(fmt.Errorf("%w: %v", ErrTranscriptionFailed, err))
		return nil, false
	}
	return results, true
}

func (o *Orchestrator) startObservation(runCtx context.Context) (<-chan internal_type.CaptureEvent, bool) {
	o.mu.Lock()
	sessionID := o.sessionID
	o.mu.Unlock()
	events, err := o.observer.Observe(runCtx)
	if err != nil {
		o.logger.Warnf("session %s: media observation unavailable: %v", sessionID, err)
		return nil, false
	}
	return events, true
}

// runTicker refreshes elapsed time and the live word cursor on the projection
// while the session records. Paused time never accumulates because elapsed is
// derived from accumulated run segments, not tick counts.
func (o *Orchestrator) runTicker(ctx context.Context) error {
	ticker := time.NewTicker(o.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			o.tickOnce()
		}
	}
}

func (o *Orchestrator) tickOnce() {
	o.mu.Lock()
	if o.phase != PhaseRecording {
		o.mu.Unlock()
		return
	}
	elapsed := o.accumulated + o.clock().Sub(o.segmentStart)
	o.mu.Unlock()

	t := elapsed.Seconds()
	o.projection.Update(func(s *internal_transcript.LiveTranscriptionState) {
		s.CurrentTime = t
		if idx, ok := internal_playback.WordIndexAt(s.AllWords, t); ok {
			s.CurrentWordIndex = idx
		} else {
			s.CurrentWordIndex = -1
		}
	})
}

func (o *Orchestrator) runTranscriptLoop(ctx context.Context, results <-chan internal_type.TranscriptionResult) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case r, ok := <-results:
			if !ok {
				return nil
			}
			o.projection.Update(func(s *internal_transcript.LiveTranscriptionState) {
				s.ApplyResult(r)
			})
		}
	}
}

// runMediaLoop correlates capture events against the session timeline and
// kicks off thumbnail fetches. Fetches run outside the session group so a
// slow asset service never delays stop.
func (o *Orchestrator) runMediaLoop(ctx context.Context, correlator internal_media.Correlator, events <-chan internal_type.CaptureEvent) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			m, ok := correlator.Correlate(ev)
			if !ok {
				o.logger.Debugf("session: dropping media captured before session start: %s", ev.AssetIdentifier)
				continue
			}
			o.mu.Lock()
			o.media = append(o.media, m)
			o.mu.Unlock()
			go o.fetchThumbnail(m)
		}
	}
}

func (o *Orchestrator) fetchThumbnail(m internal_type.TimestampedMedia) {
	ctx, cancel := context.WithTimeout(context.Background(), thumbnailFetchTimeout)
	defer cancel()
	data, err := o.observer.FetchThumbnail(ctx, m.AssetIdentifier, o.thumbSize)
	if err != nil {
		o.logger.Warnf("session: thumbnail fetch for %s failed: %v", m.AssetIdentifier, err)
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range o.media {
		if o.media[i].ID == m.ID {
			o.media[i].Thumbnail = data
			return
		}
	}
}

// Pause suspends capture and the session timer. Pausing a paused session is a
// no-op. Transcription naturally starves while paused because the capture gate
// stops emitting frames; media observation keeps running.
func (o *Orchestrator) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.phase {
	case PhasePaused:
		return nil
	case PhaseRecording:
	default:
		return fmt.Errorf("pause: session is %s: %w", o.phase, ErrInvalidTransition)
	}
	if err := o.capture.Pause(); err != nil {
		return err
	}
	o.accumulated += o.clock().Sub(o.segmentStart)
	o.segmentStart = time.Time{}
	o.phase = PhasePaused
	o.logger.Infof("session %s paused at %.1fs", o.sessionID, o.accumulated.Seconds())
	return nil
}

// Resume lifts the pause. Resuming a recording session is a no-op.
func (o *Orchestrator) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.phase {
	case PhaseRecording:
		return nil
	case PhasePaused:
	default:
		return fmt.Errorf("resume: session is %s: %w", o.phase, ErrInvalidTransition)
	}
	if err := o.capture.Resume(); err != nil {
		return err
	}
	o.segmentStart = o.clock()
	o.phase = PhaseRecording
	o.logger.Infof("session %s resumed at %.1fs", o.sessionID, o.accumulated.Seconds())
	return nil
}

// Stop finalizes the session: capture closes, the fan-out drains to disk, the
// transcriber flushes trailing volatile text as a final result, and the
// assembled immutable Recording is returned. The orchestrator lands back in
// Idle ready for the next session.
func (o *Orchestrator) Stop(ctx context.Context) (internal_type.Recording, error) {
	o.mu.Lock()
	switch o.phase {
	case PhaseRecording, PhasePaused:
	default:
		phase := o.phase
		o.mu.Unlock()
		return internal_type.Recording{}, fmt.Errorf("stop: session is %s: %w", phase, ErrInvalidTransition)
	}
	if o.phase == PhaseRecording {
		o.accumulated += o.clock().Sub(o.segmentStart)
	}
	o.phase = PhaseStopping
	duration := o.accumulated
	sessionID, destination, startedAt := o.sessionID, o.destination, o.startedAt
	transcribing, observing := o.transcribing, o.observing
	fanoutDone, transcriptDone := o.fanoutDone, o.transcriptDone
	cancel, group := o.cancelRun, o.group
	o.mu.Unlock()

	// Close the frame stream, then wait for the fan-out to drain every
	// remaining frame to disk and the transcriber before flushing finals.
	o.capture.Stop()
	select {
	case <-fanoutDone:
	case <-ctx.Done():
		return internal_type.Recording{}, o.abortStop(ctx, cancel, group)
	}

	if transcribing {
		if err := o.transcriber.Finish(ctx); err != nil {
			o.logger.Warnf("session %s: transcription flush failed: %v", sessionID, err)
		}
		select {
		case <-transcriptDone:
		case <-ctx.Done():
			return internal_type.Recording{}, o.abortStop(ctx, cancel, group)
		}
	}
	if observing {
		o.observer.Stop()
	}
	cancel()
	group.Wait()

	snapshot := o.projection.Snapshot()

	o.mu.Lock()
	media := append([]internal_type.TimestampedMedia(nil), o.media...)
	o.phase = PhaseIdle
	o.cancelRun = nil
	o.group = nil
	o.mu.Unlock()

	recording := internal_type.Recording{
		ID:            sessionID,
		Title:         startedAt.Format("Jan 2, 2006 3:04 PM"),
		Date:          startedAt,
		Duration:      duration.Seconds(),
		AudioLocation: destination,
		Words:         snapshot.AllWords,
		Segments:      snapshot.FinalizedSegments,
		Media:         media,
	}
	o.logger.Infof("session %s stopped: %.1fs, %d words, %d media",
		sessionID, recording.Duration, len(recording.Words), len(recording.Media))
	return recording, nil
}

func (o *Orchestrator) abortStop(ctx context.Context, cancel context.CancelFunc, group *errgroup.Group) error {
	cancel()
	group.Wait()
	o.mu.Lock()
	o.phase = PhaseIdle
	o.lastError = fmt.Errorf("%w: stop aborted: %v", ErrRecordingFailed, ctx.Err())
	o.cancelRun = nil
	o.group = nil
	o.mu.Unlock()
	return ctx.Err()
}

// Cancel discards the session: activities are torn down, the partial audio
// file is deleted and the projection resets. Cancelling an idle orchestrator
// is a no-op. Cancel never produces a Recording.
func (o *Orchestrator) Cancel() error {
	o.mu.Lock()
	if o.phase == PhaseIdle {
		o.mu.Unlock()
		return nil
	}
	o.generation++
	o.phase = PhaseIdle
	sessionID, destination := o.sessionID, o.destination
	observing := o.observing
	cancel, group := o.cancelRun, o.group
	o.cancelRun = nil
	o.group = nil
	o.transcribing = false
	o.observing = false
	o.media = nil
	o.lastError = nil
	o.sessionID = ""
	o.destination = ""
	o.accumulated = 0
	o.mu.Unlock()

	o.capture.Stop()
	if observing {
		o.observer.Stop()
	}
	if cancel != nil {
		cancel()
	}
	if group != nil {
		group.Wait()
	}
	if destination != "" {
		os.Remove(destination)
	}
	o.projection.Replace(internal_transcript.NewLiveTranscriptionState())
	o.logger.Infof("session %s cancelled, partial data discarded", sessionID)
	return nil
}

// supervise waits out the activity group and turns an unexpected exit into a
// failed-then-idle transition with the partial file removed. Normal stop and
// cancel paths are recognized by phase and left alone.
func (o *Orchestrator) supervise(gen int, group *errgroup.Group) {
	err := group.Wait()

	o.mu.Lock()
	if o.generation != gen || o.phase == PhaseStopping || o.phase == PhaseIdle {
		o.mu.Unlock()
		return
	}
	failure := o.lastError
	if failure == nil && err != nil && !errors.Is(err, context.Canceled) {
		failure = err
	}
	if failure == nil {
		o.mu.Unlock()
		return
	}
	o.phase = PhaseFailed
	o.lastError = failure
	destination := o.destination
	observing := o.observing
	cancel := o.cancelRun
	o.cancelRun = nil
	o.group = nil
	o.mu.Unlock()

	o.logger.Errorf("session: fatal failure, aborting: %v", failure)
	o.capture.Stop()
	if observing {
		o.observer.Stop()
	}
	if cancel != nil {
		cancel()
	}
	os.Remove(destination)

	// The failure stays visible through LastError; the orchestrator itself
	// returns to idle so a new session can start.
	o.mu.Lock()
	if o.generation == gen {
		o.phase = PhaseIdle
	}
	o.mu.Unlock()
}

// failAsync records a fatal mid-session failure from a pipeline goroutine and
// triggers group teardown. Final cleanup happens in supervise.
func (o *Orchestrator) failAsync(gen int, err error) {
	o.mu.Lock()
	if o.generation != gen || o.phase == PhaseStopping || o.phase == PhaseIdle || o.phase == PhaseFailed {
		o.mu.Unlock()
		return
	}
	o.phase = PhaseFailed
	o.lastError = err
	cancel := o.cancelRun
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (o *Orchestrator) abortStart(gen int, err error) error {
	o.mu.Lock()
	if o.generation == gen && o.phase == PhaseRequestingPermissions {
		o.phase = PhaseIdle
		o.lastError = err
	}
	o.mu.Unlock()
	o.logger.Errorf("session: start aborted: %v", err)
	return err
}

func (o *Orchestrator) setSpeechError(err error) {
	o.mu.Lock()
	if o.speechError == nil {
		o.speechError = err
	}
	o.mu.Unlock()
	o.logger.Warnf("session: transcription degraded: %v", err)
}

func (o *Orchestrator) setLevel(level float64) {
	o.mu.Lock()
	o.levels = append(o.levels, level)
	if len(o.levels) > levelWindow {
		o.levels = o.levels[len(o.levels)-levelWindow:]
	}
	o.mu.Unlock()
}

// Phase returns the current lifecycle phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// SessionID returns the identifier of the active session, empty when idle.
func (o *Orchestrator) SessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessionID
}

// Elapsed returns recorded time excluding paused intervals.
func (o *Orchestrator) Elapsed() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.phase == PhaseRecording {
		return o.accumulated + o.clock().Sub(o.segmentStart)
	}
	return o.accumulated
}

// LastError returns the fatal error of the most recent failed session, nil
// after a clean stop or cancel.
func (o *Orchestrator) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastError
}

// SpeechError returns the non-fatal transcription degradation of the current
// session, nil when transcription is healthy.
func (o *Orchestrator) SpeechError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.speechError
}

// Level returns the display loudness in [0,1], averaged over the most recent
// frames so the waveform meter does not flicker.
func (o *Orchestrator) Level() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return utils.AverageFloat64(o.levels)
}

// Media returns a copy of the media captured so far this session, in arrival
// order.
func (o *Orchestrator) Media() []internal_type.TimestampedMedia {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]internal_type.TimestampedMedia(nil), o.media...)
}

// Reader exposes the read-only view of the live transcript projection.
func (o *Orchestrator) Reader() *internal_transcript.Reader {
	return o.projection.Reader()
}

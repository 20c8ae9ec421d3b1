// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package recorder_session_api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rapidaai/voicenote/config"

	internal_recordings "github.com/rapidaai/voicenote/api/recorder-api/internal/recordings"
	internal_session "github.com/rapidaai/voicenote/api/recorder-api/internal/session"
	"github.com/rapidaai/voicenote/pkg/commons"
)

// SessionApi exposes the live recording session over HTTP. Exactly one
// session exists at a time; the orchestrator enforces the lifecycle and this
// layer only translates commands and snapshots.
type SessionApi struct {
	cfg          *config.AppConfig
	logger       commons.Logger
	orchestrator *internal_session.Orchestrator
	store        internal_recordings.Store
}

func NewSessionApi(
	cfg *config.AppConfig,
	logger commons.Logger,
	orchestrator *internal_session.Orchestrator,
	store internal_recordings.Store,
) *SessionApi {
	return &SessionApi{
		cfg:          cfg,
		logger:       logger,
		orchestrator: orchestrator,
		store:        store,
	}
}

// Start begins a new recording session.
//
// @Router /v1/session/start [post]
func (api *SessionApi) Start(c *gin.Context) {
	if err := api.orchestrator.Start(c.Request.Context()); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessionId": api.orchestrator.SessionID(),
		"phase":     api.orchestrator.Phase(),
	})
}

// Pause suspends capture; paused time is excluded from elapsed.
//
// @Router /v1/session/pause [post]
func (api *SessionApi) Pause(c *gin.Context) {
	if err := api.orchestrator.Pause(); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"phase": api.orchestrator.Phase()})
}

// Resume lifts a pause.
//
// @Router /v1/session/resume [post]
func (api *SessionApi) Resume(c *gin.Context) {
	if err := api.orchestrator.Resume(); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"phase": api.orchestrator.Phase()})
}

// Stop finalizes the session, persists the assembled recording and returns it.
//
// @Router /v1/session/stop [post]
func (api *SessionApi) Stop(c *gin.Context) {
	recording, err := api.orchestrator.Stop(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if err := api.store.Save(c.Request.Context(), &recording); err != nil {
		api.logger.Errorf("session api: persisting recording %s failed: %v", recording.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "recording": recording})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recording": recording})
}

// Cancel discards the session and its partial audio.
//
// @Router /v1/session/cancel [post]
func (api *SessionApi) Cancel(c *gin.Context) {
	if err := api.orchestrator.Cancel(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"phase": api.orchestrator.Phase()})
}

// Get returns the live session view: phase, elapsed time, transcript
// snapshot, captured media and any errors.
//
// @Router /v1/session [get]
func (api *SessionApi) Get(c *gin.Context) {
	snapshot := api.orchestrator.Reader().Snapshot()

	view := gin.H{
		"sessionId":  api.orchestrator.SessionID(),
		"phase":      api.orchestrator.Phase(),
		"elapsed":    api.orchestrator.Elapsed().Seconds(),
		"level":      api.orchestrator.Level(),
		"transcript": snapshot,
		"media":      api.orchestrator.Media(),
	}
	if err := api.orchestrator.LastError(); err != nil {
		view["lastError"] = err.Error()
	}
	if err := api.orchestrator.SpeechError(); err != nil {
		view["speechError"] = err.Error()
	}
	c.JSON(http.StatusOK, view)
}

func statusFor(err error) int {
	var denied *internal_session.PermissionDeniedError
	switch {
	case errors.Is(err, internal_session.ErrInvalidTransition):
		return http.StatusConflict
	case errors.As(err, &denied):
		return http.StatusForbidden
	case errors.Is(err, internal_session.ErrCaptureEngineUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

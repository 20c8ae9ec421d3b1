// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package recorder_playback_api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rapidaai/voicenote/config"

	internal_playback "github.com/rapidaai/voicenote/api/recorder-api/internal/playback"
	internal_recordings "github.com/rapidaai/voicenote/api/recorder-api/internal/recordings"
	"github.com/rapidaai/voicenote/pkg/commons"
	"github.com/rapidaai/voicenote/pkg/utils"
)

// PlaybackApi serves finalized recordings and the time-synchronized lookups a
// playback screen drives: which word and which media belong to a position.
type PlaybackApi struct {
	cfg    *config.AppConfig
	logger commons.Logger
	store  internal_recordings.Store
}

func NewPlaybackApi(cfg *config.AppConfig, logger commons.Logger, store internal_recordings.Store) *PlaybackApi {
	return &PlaybackApi{cfg: cfg, logger: logger, store: store}
}

// List returns all recordings, newest first.
//
// @Router /v1/recordings [get]
func (api *PlaybackApi) List(c *gin.Context) {
	recordings, err := api.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recordings": recordings})
}

// Get returns one recording with full transcript and media.
//
// @Router /v1/recordings/:id [get]
func (api *PlaybackApi) Get(c *gin.Context) {
	recording, err := api.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recording": recording})
}

type renameRequest struct {
	Title string `json:"title" binding:"required"`
}

// Rename updates the recording title, the only mutable field.
//
// @Router /v1/recordings/:id [patch]
func (api *PlaybackApi) Rename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil || utils.IsEmpty(req.Title) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	if err := api.store.Rename(c.Request.Context(), c.Param("id"), req.Title); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "title": req.Title})
}

// Delete removes a recording.
//
// @Router /v1/recordings/:id [delete]
func (api *PlaybackApi) Delete(c *gin.Context) {
	if err := api.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// At resolves a playback position against a recording: the highlighted word
// index plus the current and recently-visible media. The media window defaults
// to three seconds and can be overridden per request.
//
// @Router /v1/recordings/:id/at [get]
func (api *PlaybackApi) At(c *gin.Context) {
	recording, err := api.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	t, err := strconv.ParseFloat(c.Query("t"), 64)
	if err != nil || t < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter t must be a non-negative number"})
		return
	}
	window := internal_playback.DefaultMediaWindow
	if raw := c.Query("window"); raw != "" {
		if window, err = strconv.ParseFloat(raw, 64); err != nil || window < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter window must be a non-negative number"})
			return
		}
	}

	wordIndex := -1
	if idx, ok := internal_playback.WordIndexAt(recording.Words, t); ok {
		wordIndex = idx
	}

	view := gin.H{
		"t":            t,
		"wordIndex":    wordIndex,
		"visibleMedia": internal_playback.VisibleMedia(recording.Media, t, window),
	}
	if current, ok := internal_playback.CurrentMedia(recording.Media, t); ok {
		view["currentMedia"] = current
	}
	c.JSON(http.StatusOK, view)
}

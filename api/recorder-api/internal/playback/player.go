// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_playback

import (
	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
)

// Player holds the playback cursor over one finalized recording. Every query
// is a fresh lookup over the recording's word and media lists; there is no
// incremental state to invalidate on a seek.
type Player struct {
	recording internal_type.Recording
	window    float64

	position    float64
	highlighted int
}

func NewPlayer(recording internal_type.Recording) *Player {
	return &Player{
		recording:   recording,
		window:      DefaultMediaWindow,
		highlighted: -1,
	}
}

// SetMediaWindow overrides the visible-media window in seconds.
func (p *Player) SetMediaWindow(window float64) {
	if window > 0 {
		p.window = window
	}
}

// Advance moves the playback clock to t and recomputes the highlighted word.
// Called both by the periodic time observer and by Seek.
func (p *Player) Advance(t float64) {
	p.position = t
	if idx, ok := WordIndexAt(p.recording.Words, t); ok {
		p.highlighted = idx
	} else {
		p.highlighted = -1
	}
}

// Seek jumps the playback clock to t (user scrub). Lookups are recomputed
// from scratch for the new time.
func (p *Player) Seek(t float64) {
	if t < 0 {
		t = 0
	}
	p.Advance(t)
}

// WordTapped seeks to the tapped word's start and highlights it directly,
// without a round-trip through the time-update path. Returns the seek target.
func (p *Player) WordTapped(index int) (float64, bool) {
	if index < 0 || index >= len(p.recording.Words) {
		return 0, false
	}
	w := p.recording.Words[index]
	p.position = w.StartTime
	p.highlighted = index
	return w.StartTime, true
}

// MediaTapped seeks to the tapped media item's timestamp.
func (p *Player) MediaTapped(id string) (float64, bool) {
	for _, m := range p.recording.Media {
		if m.ID == id {
			p.Seek(m.Timestamp)
			return m.Timestamp, true
		}
	}
	return 0, false
}

// Position returns the current playback time in seconds.
func (p *Player) Position() float64 { return p.position }

// HighlightedWord returns the active word index, -1 when none.
func (p *Player) HighlightedWord() int { return p.highlighted }

// VisibleMedia returns the media inside the trailing window at the current
// position, ascending by timestamp.
func (p *Player) VisibleMedia() []internal_type.TimestampedMedia {
	return VisibleMedia(p.recording.Media, p.position, p.window)
}

// CurrentMedia returns the most recent media item at the current position.
func (p *Player) CurrentMedia() (internal_type.TimestampedMedia, bool) {
	return CurrentMedia(p.recording.Media, p.position)
}

// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_playback

import (
	"sort"

	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
)

// DefaultMediaWindow is how many seconds of recently captured media stay
// visible during playback. Presentation heuristic, tunable per query.
const DefaultMediaWindow = 3.0

// WordIndexAt returns the index of the first word whose half-open interval
// [StartTime, EndTime) contains t, or -1/false when t falls in a gap, before
// the first word, or at/after the last word's end. The word list must be
// sorted ascending by StartTime. Linear scan: both lists are bounded by a
// single recording.
func WordIndexAt(words []internal_type.TimestampedWord, t float64) (int, bool) {
	for i, w := range words {
		if t < w.StartTime {
			break
		}
		if t < w.EndTime {
			return i, true
		}
	}
	return -1, false
}

// VisibleMedia returns the media whose timestamps fall in [t-window, t],
// ordered ascending by timestamp. A window <= 0 uses DefaultMediaWindow.
func VisibleMedia(media []internal_type.TimestampedMedia, t, window float64) []internal_type.TimestampedMedia {
	if window <= 0 {
		window = DefaultMediaWindow
	}
	var out []internal_type.TimestampedMedia
	for _, m := range media {
		if m.Timestamp >= t-window && m.Timestamp <= t {
			out = append(out, m)
		}
	}
	// Arrival order is not timestamp order; displays want ascending time.
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// CurrentMedia returns the single item with the greatest timestamp <= t.
func CurrentMedia(media []internal_type.TimestampedMedia, t float64) (internal_type.TimestampedMedia, bool) {
	var (
		best  internal_type.TimestampedMedia
		found bool
	)
	for _, m := range media {
		if m.Timestamp > t {
			continue
		}
		if !found || m.Timestamp > best.Timestamp {
			best = m
			found = true
		}
	}
	return best, found
}

// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
	"github.com/rapidaai/voicenote/pkg/commons"
)

func newTestLogger(t *testing.T) commons.Logger {
	t.Helper()
	logger, err := commons.NewApplicationLogger(
		commons.Name("test-media"),
		commons.Level("debug"),
	)
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return logger
}

func TestCorrelator(t *testing.T) {
	startedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewCorrelator(startedAt)

	tests := []struct {
		name          string
		creation      time.Time
		wantAccepted  bool
		wantTimestamp float64
	}{
		{"two seconds before start is dropped", startedAt.Add(-2 * time.Second), false, 0},
		{"five seconds after start", startedAt.Add(5 * time.Second), true, 5.0},
		{"exactly at start", startedAt, true, 0},
		{"sub-second offset", startedAt.Add(1500 * time.Millisecond), true, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := c.Correlate(internal_type.CaptureEvent{
				AssetIdentifier: "asset-1",
				MediaType:       internal_type.MediaTypePhoto,
				CreationDate:    tt.creation,
			})
			require.Equal(t, tt.wantAccepted, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantTimestamp, m.Timestamp)
			assert.NotEmpty(t, m.ID, "accepted events are assigned a fresh identifier")
			assert.Equal(t, "asset-1", m.AssetIdentifier)
			assert.Equal(t, tt.creation, m.CreationDate)
		})
	}
}

func TestCorrelator_AssignsDistinctIDs(t *testing.T) {
	c := NewCorrelator(time.Now().Add(-time.Minute))
	ev := internal_type.CaptureEvent{AssetIdentifier: "a", CreationDate: time.Now()}

	m1, ok1 := c.Correlate(ev)
	m2, ok2 := c.Correlate(ev)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.NotEqual(t, m1.ID, m2.ID)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, internal_type.MediaTypeScreenshot, classify("/roll/Screenshot_2025-06-01.png"))
	assert.Equal(t, internal_type.MediaTypeScreenshot, classify("/roll/screen_001.png"))
	assert.Equal(t, internal_type.MediaTypePhoto, classify("/roll/IMG_0042.jpg"))
}

func TestDirectoryObserver_AuthorizationFollowsDirectoryAccess(t *testing.T) {
	logger := newTestLogger(t)

	ok, err := NewDirectoryObserver(logger, t.TempDir(), nil).RequestAuthorization(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NewDirectoryObserver(logger, "/does/not/exist", nil).RequestAuthorization(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "missing directory means media observation is denied")
}

func TestDirectoryObserver_EmitsEventsForNewMedia(t *testing.T) {
	dir := t.TempDir()
	observer := NewDirectoryObserver(newTestLogger(t), dir, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := observer.Observe(ctx)
	require.NoError(t, err)
	defer observer.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not media"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "IMG_0001.jpg"), []byte{0xff, 0xd8}, 0o644))

	select {
	case ev := <-events:
		assert.Equal(t, internal_type.MediaTypePhoto, ev.MediaType)
		assert.Equal(t, filepath.Join(dir, "IMG_0001.jpg"), ev.AssetIdentifier)
		assert.False(t, ev.CreationDate.IsZero())
	case <-time.After(3 * time.Second):
		t.Fatal("no capture event observed for new media file")
	}
}

func TestDirectoryObserver_FetchThumbnailReadsLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "IMG_0002.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpegbytes"), 0o644))

	observer := NewDirectoryObserver(newTestLogger(t), dir, nil)
	data, err := observer.FetchThumbnail(context.Background(), path, 256)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpegbytes"), data)
}

func TestThumbnailClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/thumbnails", r.URL.Path)
		assert.Equal(t, "asset-9", r.URL.Query().Get("asset"))
		assert.Equal(t, "128", r.URL.Query().Get("size"))
		w.Write([]byte("thumb"))
	}))
	defer server.Close()

	client := NewThumbnailClient(newTestLogger(t), server.URL)
	data, err := client.Fetch(context.Background(), "asset-9", 128)
	require.NoError(t, err)
	assert.Equal(t, []byte("thumb"), data)
}

func TestThumbnailClient_FetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewThumbnailClient(newTestLogger(t), server.URL)
	_, err := client.Fetch(context.Background(), "missing", 128)
	assert.Error(t, err)
}

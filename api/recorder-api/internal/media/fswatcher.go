// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
	"github.com/rapidaai/voicenote/pkg/commons"
)

const eventChannelSize = 32

var mediaExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".heic": true,
	".webp": true,
}

// directoryObserver watches a camera-roll/screenshot directory and reports
// newly created media files as capture events. Event creation time comes from
// an injectable clock so correlation is testable.
type directoryObserver struct {
	logger     commons.Logger
	dir        string
	thumbnails *ThumbnailClient
	clock      func() time.Time

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	events  chan internal_type.CaptureEvent
}

// NewDirectoryObserver builds a media observer over dir. thumbnails may be
// nil; thumbnail requests then read the observed file directly.
func NewDirectoryObserver(logger commons.Logger, dir string, thumbnails *ThumbnailClient) internal_type.MediaObserver {
	return &directoryObserver{
		logger:     logger,
		dir:        dir,
		thumbnails: thumbnails,
		clock:      time.Now,
	}
}

// RequestAuthorization reports whether the watched directory is accessible,
// the filesystem analogue of photo-library permission.
func (o *directoryObserver) RequestAuthorization(ctx context.Context) (bool, error) {
	info, err := os.Stat(o.dir)
	if err != nil || !info.IsDir() {
		o.logger.Warnf("media: watch directory %q not accessible: %v", o.dir, err)
		return false, nil
	}
	return true, nil
}

func (o *directoryObserver) Observe(ctx context.Context) (<-chan internal_type.CaptureEvent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.watcher != nil {
		return nil, errors.New("media: already observing")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(o.dir); err != nil {
		watcher.Close()
		return nil, err
	}

	o.watcher = watcher
	o.events = make(chan internal_type.CaptureEvent, eventChannelSize)
	go o.watchLoop(ctx, watcher, o.events)
	return o.events, nil
}

func (o *directoryObserver) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, events chan<- internal_type.CaptureEvent) {
	defer close(events)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}
			if !mediaExtensions[strings.ToLower(filepath.Ext(ev.Name))] {
				continue
			}
			capture := internal_type.CaptureEvent{
				AssetIdentifier: ev.Name,
				MediaType:       classify(ev.Name),
				CreationDate:    o.clock(),
			}
			select {
			case events <- capture:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			o.logger.Warnf("media: watcher error: %v", err)
		}
	}
}

// classify decides photo vs screenshot from the file name, matching platform
// screenshot naming conventions.
func classify(path string) internal_type.MediaType {
	name := strings.ToLower(filepath.Base(path))
	if strings.Contains(name, "screenshot") || strings.HasPrefix(name, "screen_") {
		return internal_type.MediaTypeScreenshot
	}
	return internal_type.MediaTypePhoto
}

func (o *directoryObserver) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.watcher == nil {
		return nil
	}
	err := o.watcher.Close()
	o.watcher = nil
	return err
}

// FetchThumbnail resolves display bytes for an asset: via the thumbnail
// service when configured, otherwise straight from the observed file.
func (o *directoryObserver) FetchThumbnail(ctx context.Context, assetIdentifier string, size int) ([]byte, error) {
	if o.thumbnails != nil {
		return o.thumbnails.Fetch(ctx, assetIdentifier, size)
	}
	return os.ReadFile(assetIdentifier)
}

// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	internal_audio "github.com/rapidaai/voicenote/api/recorder-api/internal/audio"
	internal_capture "github.com/rapidaai/voicenote/api/recorder-api/internal/audio/capture"
	internal_media "github.com/rapidaai/voicenote/api/recorder-api/internal/media"
	internal_recordings "github.com/rapidaai/voicenote/api/recorder-api/internal/recordings"
	internal_session "github.com/rapidaai/voicenote/api/recorder-api/internal/session"
	internal_transcribe "github.com/rapidaai/voicenote/api/recorder-api/internal/transcribe"
	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
	recorder_routers "github.com/rapidaai/voicenote/api/recorder-api/router"
	"github.com/rapidaai/voicenote/config"
	"github.com/rapidaai/voicenote/pkg/commons"
	"github.com/rapidaai/voicenote/pkg/utils"
)

func main() {
	vConfig, err := config.InitConfig()
	if err != nil {
		log.Fatalf("failed to initialize config: %v", err)
	}
	cfg, err := config.GetApplicationConfig(vConfig)
	if err != nil {
		log.Fatalf("failed to load application config: %v", err)
	}

	logger, err := commons.NewApplicationLogger(
		commons.Name(cfg.Name),
		commons.Level(cfg.LogLevel),
		commons.Path(cfg.LogPath),
	)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Errorf("failed to create data dir %s: %v", cfg.DataDir, err)
		os.Exit(1)
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		logger.Errorf("failed to open recordings database %s: %v", cfg.DatabasePath, err)
		os.Exit(1)
	}
	if err := internal_recordings.Migrate(db); err != nil {
		logger.Errorf("failed to migrate recordings schema: %v", err)
		os.Exit(1)
	}
	store := internal_recordings.NewStore(db, logger)

	audioConfig := internal_audio.Config{
		SampleRate:    cfg.Audio.SampleRate,
		Channels:      cfg.Audio.Channels,
		FrameDuration: time.Duration(cfg.Audio.FrameDurationMs) * time.Millisecond,
	}
	capture := internal_capture.NewExecCaptureSource(logger, audioConfig, cfg.Capture.Command, cfg.Capture.Args...)

	var transcriber internal_type.Transcriber
	if cfg.Transcribe.URL != "" {
		transcriber, err = internal_transcribe.GetTranscriber(context.Background(), logger, utils.Option{
			internal_transcribe.OptionsKeyEngine: cfg.Transcribe.Engine,
			internal_transcribe.OptionsKeyURL:    cfg.Transcribe.URL,
			internal_transcribe.OptionsKeyKey:    cfg.Transcribe.Key,
		})
		if err != nil {
			logger.Errorf("failed to configure transcription engine: %v", err)
			os.Exit(1)
		}
	} else {
		// No engine configured: sessions run audio-only, the orchestrator
		// treats this as a denied speech authorization.
		logger.Warnf("transcription disabled: no engine url configured")
		transcriber = internal_transcribe.NewDisabledTranscriber()
	}

	var thumbnails *internal_media.ThumbnailClient
	if cfg.Media.ThumbnailHost != "" {
		thumbnails = internal_media.NewThumbnailClient(logger, cfg.Media.ThumbnailHost)
	}
	observer := internal_media.NewDirectoryObserver(logger, cfg.Media.WatchDir, thumbnails)

	orchestrator := internal_session.NewOrchestrator(
		logger,
		capture,
		transcriber,
		observer,
		cfg.DataDir,
		internal_session.WithLocale(cfg.Transcribe.Locale),
		internal_session.WithAudioConfig(audioConfig),
		internal_session.WithThumbnailSize(cfg.Media.ThumbnailSize),
	)

	engine := recorder_routers.NewEngine(cfg, logger)
	recorder_routers.HealthCheckRoutes(cfg, engine, logger, db)
	recorder_routers.SessionApiRoute(cfg, engine, logger, orchestrator, store)
	recorder_routers.PlaybackApiRoute(cfg, engine, logger, store)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	logger.Infof("%s %s listening on %s", cfg.Name, cfg.Version, addr)
	if err := engine.Run(addr); err != nil {
		logger.Errorf("http server exited: %v", err)
		os.Exit(1)
	}
}

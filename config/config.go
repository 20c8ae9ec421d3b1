// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package config

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// AudioConfig is the PCM format captured and written to disk.
type AudioConfig struct {
	SampleRate      int `mapstructure:"sample_rate" validate:"required"`
	Channels        int `mapstructure:"channels" validate:"required"`
	FrameDurationMs int `mapstructure:"frame_duration_ms" validate:"required"`
}

// CaptureConfig describes the microphone capture subprocess.
type CaptureConfig struct {
	Command string   `mapstructure:"command" validate:"required"`
	Args    []string `mapstructure:"args"`
}

// TranscribeConfig points at the streaming transcription engine.
type TranscribeConfig struct {
	Engine string `mapstructure:"engine" validate:"required"`
	URL    string `mapstructure:"url"`
	Key    string `mapstructure:"key"`
	Locale string `mapstructure:"locale" validate:"required"`
}

// MediaConfig describes media observation and thumbnail resolution.
type MediaConfig struct {
	WatchDir      string `mapstructure:"watch_dir"`
	ThumbnailHost string `mapstructure:"thumbnail_host"`
	ThumbnailSize int    `mapstructure:"thumbnail_size" validate:"required"`
}

// Application config structure
type AppConfig struct {
	Name     string `mapstructure:"service_name" validate:"required"`
	Version  string `mapstructure:"version" validate:"required"`
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required"`
	LogLevel string `mapstructure:"log_level" validate:"required"`
	LogPath  string `mapstructure:"log_path"`

	// DataDir holds per-session WAV files; DatabasePath the recordings store.
	DataDir      string `mapstructure:"data_dir" validate:"required"`
	DatabasePath string `mapstructure:"database_path" validate:"required"`

	Audio      AudioConfig      `mapstructure:"audio" validate:"required"`
	Capture    CaptureConfig    `mapstructure:"capture" validate:"required"`
	Transcribe TranscribeConfig `mapstructure:"transcribe" validate:"required"`
	Media      MediaConfig      `mapstructure:"media" validate:"required"`
}

// reading config and intializing configs for application
func InitConfig() (*viper.Viper, error) {
	vConfig := viper.NewWithOptions(viper.KeyDelimiter("__"))

	vConfig.AddConfigPath(".")
	vConfig.SetConfigName(".env")
	path := os.Getenv("ENV_PATH")
	if path != "" {
		log.Printf("env path %v", path)
		vConfig.SetConfigFile(path)
	}
	vConfig.SetConfigType("env")
	vConfig.AutomaticEnv()

	setDefault(vConfig)
	if err := vConfig.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		log.Printf("Reading from env variables.")
	}

	return vConfig, nil
}

func setDefault(v *viper.Viper) {
	// setting all default values
	// keeping watch on https://github.com/spf13/viper/issues/188

	v.SetDefault("SERVICE_NAME", "voicenote-recorder")
	v.SetDefault("VERSION", "0.0.1")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 9090)
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("LOG_PATH", "")

	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("DATABASE_PATH", "./data/voicenote.db")

	v.SetDefault("AUDIO__SAMPLE_RATE", 16000)
	v.SetDefault("AUDIO__CHANNELS", 1)
	v.SetDefault("AUDIO__FRAME_DURATION_MS", 20)

	v.SetDefault("CAPTURE__COMMAND", "arecord")
	v.SetDefault("CAPTURE__ARGS", []string{"-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-t", "raw"})

	v.SetDefault("TRANSCRIBE__ENGINE", "websocket")
	v.SetDefault("TRANSCRIBE__URL", "")
	v.SetDefault("TRANSCRIBE__KEY", "")
	v.SetDefault("TRANSCRIBE__LOCALE", "en-US")

	v.SetDefault("MEDIA__WATCH_DIR", "")
	v.SetDefault("MEDIA__THUMBNAIL_HOST", "")
	v.SetDefault("MEDIA__THUMBNAIL_SIZE", 256)
}

// Getting application config from viper
func GetApplicationConfig(v *viper.Viper) (*AppConfig, error) {
	var config AppConfig
	err := v.Unmarshal(&config)
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}

	// valdating the app config
	validate := validator.New()
	err = validate.Struct(&config)
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}
	return &config, nil
}

// SPDX-License-Identifier: EPL-2.0

// Package config loads player settings from defaults, an optional YAML file
// and AUDTRIG_* environment variables.
package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ik5/audtrig/engine"
)

// EnvPrefix prefixes every environment override, e.g. AUDTRIG_AUDIO_MAX_STREAMS.
const EnvPrefix = "AUDTRIG"

// Config holds all configuration for the player
type Config struct {
	Audio   AudioConfig   `mapstructure:"audio"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// AudioConfig sizes the mixing engine and the output device
type AudioConfig struct {
	SampleRate     int           `mapstructure:"sample_rate"`
	MaxStreams     int           `mapstructure:"max_streams"`
	BufferKB       int           `mapstructure:"buffer_kb"`
	MP3Decoders    int           `mapstructure:"mp3_decoders"`
	AACDecoders    int           `mapstructure:"aac_decoders"`
	VorbisDecoders int           `mapstructure:"vorbis_decoders"`
	FillInterval   time.Duration `mapstructure:"fill_interval"`
	OutputBuffer   time.Duration `mapstructure:"output_buffer"`
	Muted          bool          `mapstructure:"muted"`
}

// StorageConfig points the two storage devices at host directories
type StorageConfig struct {
	RemovableRoot string `mapstructure:"removable_root"`
	FlashRoot     string `mapstructure:"flash_root"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// New returns a viper instance carrying the defaults and environment
// binding. Callers may bind command-line flags to it before Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("audio.sample_rate", engine.DefaultSampleRate)
	v.SetDefault("audio.max_streams", engine.DefaultSlots)
	v.SetDefault("audio.buffer_kb", 512)
	v.SetDefault("audio.mp3_decoders", engine.DefaultMP3Decoders)
	v.SetDefault("audio.aac_decoders", engine.DefaultAACDecoders)
	v.SetDefault("audio.vorbis_decoders", engine.DefaultVorbisDecoders)
	v.SetDefault("audio.fill_interval", engine.DefaultFillInterval)
	v.SetDefault("audio.output_buffer", "50ms")
	v.SetDefault("audio.muted", false)
	v.SetDefault("storage.removable_root", ".")
	v.SetDefault("storage.flash_root", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads path, or searches ./audtrig.yaml, $HOME/.audtrig and
// /etc/audtrig when path is empty, and decodes the merged settings. A
// missing file is only an error when path was given explicitly.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("audtrig")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.audtrig")
		v.AddConfigPath("/etc/audtrig")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
		slog.Debug("No config file found, using defaults and environment variables")
	} else {
		slog.Debug("Using config file", slog.String("file", v.ConfigFileUsed()))
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// BufferSamples converts the per-stream buffer size to int16 samples.
func (a AudioConfig) BufferSamples() int {
	return a.BufferKB * 1024 / 2
}

// Engine returns the engine sizing described by a.
func (a AudioConfig) Engine() engine.Config {
	return engine.Config{
		Slots:          a.MaxStreams,
		BufferSamples:  a.BufferSamples(),
		SampleRate:     a.SampleRate,
		MP3Decoders:    a.MP3Decoders,
		AACDecoders:    a.AACDecoders,
		VorbisDecoders: a.VorbisDecoders,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	a := c.Audio
	switch {
	case a.SampleRate < 8000 || a.SampleRate > 192000:
		return &ConfigError{Field: "audio.sample_rate", Message: "must be between 8000 and 192000"}
	case a.MaxStreams < 1 || a.MaxStreams > 16:
		return &ConfigError{Field: "audio.max_streams", Message: "must be between 1 and 16"}
	case a.BufferKB < 1:
		return &ConfigError{Field: "audio.buffer_kb", Message: "must be at least 1"}
	case a.MP3Decoders < 1:
		return &ConfigError{Field: "audio.mp3_decoders", Message: "must be at least 1"}
	case a.AACDecoders < 1:
		return &ConfigError{Field: "audio.aac_decoders", Message: "must be at least 1"}
	case a.VorbisDecoders < 1:
		return &ConfigError{Field: "audio.vorbis_decoders", Message: "must be at least 1"}
	case a.FillInterval <= 0:
		return &ConfigError{Field: "audio.fill_interval", Message: "must be positive"}
	case a.OutputBuffer < 0:
		return &ConfigError{Field: "audio.output_buffer", Message: "must not be negative"}
	}

	if c.Storage.RemovableRoot == "" && c.Storage.FlashRoot == "" {
		return &ConfigError{Field: "storage", Message: "at least one of removable_root and flash_root is required"}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be text or json"}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: "must be debug, info, warn or error"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

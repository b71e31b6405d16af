// Package config provides configuration loading for the toolbox.
//
// Values come from an optional YAML file and TOOLBOX_-prefixed environment
// variables, with environment taking precedence.
package config

import (
	"reflect"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/Fr0z3nRebel/video-toolbox/internal/errors"
)

// Config holds all configuration for the toolbox.
type Config struct {
	// Transcode engine
	FFmpegBin  string `mapstructure:"FFMPEG_BIN"`
	FFprobeBin string `mapstructure:"FFPROBE_BIN"`
	ScratchDir string `mapstructure:"SCRATCH_DIR"` // empty = system temp dir
	// MinScratchSpace is the free space required on the scratch volume
	// before an engine session will initialize.
	MinScratchSpace int64 `mapstructure:"MIN_SCRATCH_SPACE"`

	// Capture tunables. The seek timeout and the two epsilons mirror
	// decoder quirks observed in practice; they are defaults, not invariants.
	SeekTimeout  time.Duration `mapstructure:"SEEK_TIMEOUT"`
	EndEpsilon   float64       `mapstructure:"END_EPSILON"`   // backed off from exact end-of-stream
	StartEpsilon float64       `mapstructure:"START_EPSILON"` // avoids black first frames at t=0

	// CommandTimeout bounds a single engine command. Zero means no caller
	// imposed timeout: a hung command blocks its pipeline indefinitely.
	CommandTimeout time.Duration `mapstructure:"COMMAND_TIMEOUT"`

	// Server
	Port                string        `mapstructure:"PORT"`
	BaseURL             string        `mapstructure:"BASE"`
	AuthEnable          bool          `mapstructure:"AUTH_ENABLE"`
	AuthKey             string        `mapstructure:"AUTH_KEY"`
	MaxInputSize        int64         `mapstructure:"MAX_INPUT_SIZE"`
	MaxConcurrency      int           `mapstructure:"MAX_CONCURRENCY"`
	OutputLocalLifetime time.Duration `mapstructure:"OUTPUT_LOCAL_LIFETIME"`

	// Resource guard thresholds
	ThrottleCPU      float64 `mapstructure:"THROTTLE_CPU"`
	ThrottleFreeMem  int64   `mapstructure:"THROTTLE_FREEMEM"`
	ThrottleFreeDisk int64   `mapstructure:"THROTTLE_FREEDISK"`

	// Logging
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

// stringToDurationHookFunc parses Go duration strings from config values.
func stringToDurationHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		return time.ParseDuration(data.(string))
	}
}

// stringToByteSizeHookFunc parses human-readable size strings ("200MB") into int64 bytes.
func stringToByteSizeHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Int64 {
			return data, nil
		}

		var size datasize.ByteSize
		if err := size.UnmarshalText([]byte(data.(string))); err != nil {
			// Not a size string, let other parsers handle it.
			return data, nil
		}
		return int64(size.Bytes()), nil
	}
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	vp := viper.New()

	// Defaults are strings where hooks do the parsing.
	vp.SetDefault("FFMPEG_BIN", "ffmpeg")
	vp.SetDefault("FFPROBE_BIN", "ffprobe")
	vp.SetDefault("SCRATCH_DIR", "")
	vp.SetDefault("MIN_SCRATCH_SPACE", "100MB")
	vp.SetDefault("SEEK_TIMEOUT", "5s")
	vp.SetDefault("END_EPSILON", 0.1)
	vp.SetDefault("START_EPSILON", 0.01)
	vp.SetDefault("COMMAND_TIMEOUT", "0s")
	vp.SetDefault("PORT", "8080")
	vp.SetDefault("BASE", "")
	vp.SetDefault("AUTH_ENABLE", false)
	vp.SetDefault("AUTH_KEY", "")
	vp.SetDefault("MAX_INPUT_SIZE", "500MB")
	vp.SetDefault("MAX_CONCURRENCY", 1)
	vp.SetDefault("OUTPUT_LOCAL_LIFETIME", "1h")
	vp.SetDefault("THROTTLE_CPU", 50.0)
	vp.SetDefault("THROTTLE_FREEMEM", "200MB")
	vp.SetDefault("THROTTLE_FREEDISK", "200MB")
	vp.SetDefault("LOG_LEVEL", "info")
	vp.SetDefault("LOG_FORMAT", "text")

	vp.SetConfigName("toolbox")
	vp.SetConfigType("yaml")
	vp.AddConfigPath(".")
	vp.AddConfigPath("/etc/video-toolbox/")

	if err := vp.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	vp.SetEnvPrefix("TOOLBOX")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	var cfg Config
	err := vp.Unmarshal(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			stringToDurationHookFunc(),
			stringToByteSizeHookFunc(),
		),
	))
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a Config with built-in defaults and no file/env lookup.
func Default() *Config {
	return &Config{
		FFmpegBin:           "ffmpeg",
		FFprobeBin:          "ffprobe",
		MinScratchSpace:     100 * 1024 * 1024,
		SeekTimeout:         5 * time.Second,
		EndEpsilon:          0.1,
		StartEpsilon:        0.01,
		Port:                "8080",
		MaxInputSize:        500 * 1024 * 1024,
		MaxConcurrency:      1,
		OutputLocalLifetime: time.Hour,
		ThrottleCPU:         50.0,
		ThrottleFreeMem:     200 * 1024 * 1024,
		ThrottleFreeDisk:    200 * 1024 * 1024,
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.FFmpegBin == "" {
		return errors.NewConfigError("ffmpeg binary name must not be empty")
	}
	if c.FFprobeBin == "" {
		return errors.NewConfigError("ffprobe binary name must not be empty")
	}
	if c.SeekTimeout <= 0 {
		return errors.NewConfigError("seek timeout must be positive")
	}
	if c.EndEpsilon < 0 || c.StartEpsilon < 0 {
		return errors.NewConfigError("epsilons must not be negative")
	}
	if c.MaxConcurrency < 1 {
		return errors.NewConfigError("max concurrency must be at least 1")
	}
	if c.AuthEnable && c.AuthKey == "" {
		return errors.NewConfigError("auth enabled but no auth key configured")
	}
	return nil
}

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from a temp dir so a developer's local
// toolbox.yaml is not picked up.
func chdirTemp(t *testing.T) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ffmpeg", cfg.FFmpegBin)
	assert.Equal(t, "ffprobe", cfg.FFprobeBin)
	assert.Equal(t, 5*time.Second, cfg.SeekTimeout)
	assert.Equal(t, 0.1, cfg.EndEpsilon)
	assert.Equal(t, 0.01, cfg.StartEpsilon)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int64(500*1024*1024), cfg.MaxInputSize)
	assert.Equal(t, 1, cfg.MaxConcurrency)
	assert.Equal(t, time.Hour, cfg.OutputLocalLifetime)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("TOOLBOX_SEEK_TIMEOUT", "10s")
	t.Setenv("TOOLBOX_MAX_INPUT_SIZE", "1GB")
	t.Setenv("TOOLBOX_FFMPEG_BIN", "/opt/ffmpeg/bin/ffmpeg")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.SeekTimeout)
	assert.Equal(t, int64(1024*1024*1024), cfg.MaxInputSize)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpegBin)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"empty ffmpeg bin", func(c *Config) { c.FFmpegBin = "" }, true},
		{"empty ffprobe bin", func(c *Config) { c.FFprobeBin = "" }, true},
		{"zero seek timeout", func(c *Config) { c.SeekTimeout = 0 }, true},
		{"negative end epsilon", func(c *Config) { c.EndEpsilon = -0.1 }, true},
		{"zero concurrency", func(c *Config) { c.MaxConcurrency = 0 }, true},
		{"auth without key", func(c *Config) { c.AuthEnable = true }, true},
		{"auth with key", func(c *Config) { c.AuthEnable = true; c.AuthKey = "secret" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olafgeibig/foto2pdf/config"
	"github.com/olafgeibig/foto2pdf/core"
)

var envNames = []string{
	"WORKERS", "PREFIX", "FORMAT", "MARGIN", "PORTRAIT", "AUTO_ORIENT",
	"SKEW_METHOD", "CODEC_BACKEND", "COLLISION", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, n := range envNames {
		t.Setenv(config.EnvPrefix+n, "")
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foto2pdf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, config.Validate(cfg))

	p := core.DefaultProcessParams()
	assert.Equal(t, "processed_", cfg.Prefix)
	assert.Equal(t, "png", cfg.OutputFormat)
	assert.Equal(t, p.MarginPercent, cfg.MarginPercent)
	assert.Equal(t, p.ForcePortrait, cfg.ForcePortrait)
	assert.Equal(t, p.Skew, cfg.Skew.SkewParams)
	assert.Equal(t, "hough", cfg.Skew.Method)
	assert.Equal(t, config.BackendStdlib, cfg.Codec.Backend)
	assert.Equal(t, uint32(0o644), cfg.Output.Permissions)
}

func TestLoad_NoFile(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, `
workers: 3
prefix: page_
format: jpeg
margin: 2.5
portrait: false
skew:
  method: whitelines
  num_peaks: 10
  min_angle: -20
  max_angle: 20
codec:
  jpeg_quality: 75
output:
  collision: rename
log_level: debug
`)
	t.Setenv("FOTO2PDF_WORKERS", "6")
	t.Setenv("FOTO2PDF_FORMAT", "PNG")
	t.Setenv("FOTO2PDF_AUTO_ORIENT", "true")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.WorkerCount, "env wins over file")
	assert.Equal(t, "png", cfg.OutputFormat)
	assert.True(t, cfg.AutoOrient)
	assert.Equal(t, "page_", cfg.Prefix)
	assert.Equal(t, 2.5, cfg.MarginPercent)
	assert.False(t, cfg.ForcePortrait)
	assert.Equal(t, "whitelines", cfg.Skew.Method)
	assert.Equal(t, 10, cfg.Skew.NumPeaks)
	assert.Equal(t, -20.0, cfg.Skew.MinAngle)
	assert.Equal(t, 20.0, cfg.Skew.MaxAngle)
	assert.Equal(t, core.DefaultSkewParams().MinDeviation, cfg.Skew.MinDeviation, "unset keys keep defaults")
	assert.Equal(t, 75, cfg.Codec.JPEGQuality)
	assert.Equal(t, "rename", cfg.Output.Collision)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config file")

	_, err = config.Load(writeYAML(t, "workers: [1, 2"))
	assert.ErrorContains(t, err, "parse config file")

	_, err = config.Load(writeYAML(t, "format: tiff\n"))
	assert.ErrorContains(t, err, "validate config")
}

func TestLoad_BadEnvValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOTO2PDF_MARGIN", "five")
	_, err := config.Load("")
	assert.ErrorContains(t, err, "FOTO2PDF_MARGIN")

	clearEnv(t)
	t.Setenv("FOTO2PDF_PORTRAIT", "maybe")
	_, err = config.Load("")
	assert.ErrorContains(t, err, "FOTO2PDF_PORTRAIT")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*config.Config){
		"negative workers": func(c *config.Config) { c.WorkerCount = -1 },
		"unknown format":   func(c *config.Config) { c.OutputFormat = "gif" },
		"unknown backend":  func(c *config.Config) { c.Codec.Backend = "imagemagick" },
		"quality zero":     func(c *config.Config) { c.Codec.JPEGQuality = 0 },
		"quality too high": func(c *config.Config) { c.Codec.JPEGQuality = 101 },
		"zero chunk":       func(c *config.Config) { c.Limits.ChunkSize = 0 },
		"negative limit":   func(c *config.Config) { c.Limits.MaxPixels = -1 },
		"collision":        func(c *config.Config) { c.Output.Collision = "append" },
		"skew method":      func(c *config.Config) { c.Skew.Method = "fft" },
		"inverted angles":  func(c *config.Config) { c.Skew.MinAngle, c.Skew.MaxAngle = 5, -5 },
		"no peaks":         func(c *config.Config) { c.Skew.NumPeaks = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			assert.Error(t, config.Validate(cfg))
		})
	}

	t.Run("margin is not checked here", func(t *testing.T) {
		cfg := config.Default()
		cfg.MarginPercent = 150
		assert.NoError(t, config.Validate(cfg))
	})
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/olafgeibig/foto2pdf/core"
)

// CodecBackend selects the codec implementation.
type CodecBackend string

const (
	BackendStdlib CodecBackend = "stdlib"
	BackendVips   CodecBackend = "vips"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "FOTO2PDF_"

// Config is the top-level configuration struct.  All fields have safe defaults
// so callers can start with Default() and override only what they need.
type Config struct {
	// Worker pool controls.
	WorkerCount int `yaml:"workers"` // 0 = runtime.NumCPU()

	// Output naming.
	Prefix       string `yaml:"prefix"`
	OutputFormat string `yaml:"format"` // png, jpeg or webp

	// Processing defaults.
	MarginPercent float64    `yaml:"margin"`
	ForcePortrait bool       `yaml:"portrait"`
	AutoOrient    bool       `yaml:"auto_orient"`
	Skew          SkewConfig `yaml:"skew"`

	Codec  CodecConfig  `yaml:"codec"`
	Limits LimitsConfig `yaml:"limits"`
	Output OutputConfig `yaml:"output"`

	// Logging.
	LogLevel  string `yaml:"log_level"`  // "debug", "info", "warn", "error"
	LogFormat string `yaml:"log_format"` // "console" or "json"
}

// SkewConfig picks the detector and its parameters.
type SkewConfig struct {
	Method          string `yaml:"method"` // hough or whitelines
	core.SkewParams `yaml:",inline"`
}

// CodecConfig configures encoders.
type CodecConfig struct {
	Backend     CodecBackend `yaml:"backend"`
	JPEGQuality int          `yaml:"jpeg_quality"` // 1-100
	Lossless    bool         `yaml:"lossless"`
}

// LimitsConfig bounds memory use per input.
type LimitsConfig struct {
	MaxImageBytes int64 `yaml:"max_image_bytes"` // 0 = no limit
	MaxPixels     int64 `yaml:"max_pixels"`      // 0 = no limit
	ChunkSize     int   `yaml:"chunk_size"`      // streaming chunk size in bytes
}

// OutputConfig configures the local output store.
type OutputConfig struct {
	Collision   string `yaml:"collision"`   // overwrite, error or rename
	Permissions uint32 `yaml:"permissions"` // default 0644
}

// Default returns a Config populated with sensible production defaults.
func Default() Config {
	return Config{
		WorkerCount:   0, // resolved at runtime to NumCPU
		Prefix:        "processed_",
		OutputFormat:  string(core.FormatPNG),
		MarginPercent: 5,
		ForcePortrait: true,
		Skew: SkewConfig{
			Method:     "hough",
			SkewParams: core.DefaultSkewParams(),
		},
		Codec: CodecConfig{
			Backend:     BackendStdlib,
			JPEGQuality: 90,
		},
		Limits: LimitsConfig{
			MaxImageBytes: 256 << 20,
			MaxPixels:     178956970,
			ChunkSize:     32 * 1024,
		},
		Output: OutputConfig{
			Collision:   "overwrite",
			Permissions: 0o644,
		},
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// Validate returns an error if the configuration is inconsistent. The margin
// is checked per batch, where it is reported as an invalid parameter.
func Validate(c Config) error {
	if c.WorkerCount < 0 {
		return errors.New("config: workers must not be negative")
	}
	if _, ok := core.ParseFormat(c.OutputFormat); !ok {
		return fmt.Errorf("config: unsupported output format %q", c.OutputFormat)
	}
	switch c.Codec.Backend {
	case BackendStdlib, BackendVips:
	default:
		return fmt.Errorf("config: unknown codec backend %q", c.Codec.Backend)
	}
	if c.Codec.JPEGQuality < 1 || c.Codec.JPEGQuality > 100 {
		return errors.New("config: jpeg_quality must be between 1 and 100")
	}
	if c.Limits.ChunkSize <= 0 {
		return errors.New("config: chunk_size must be positive")
	}
	if c.Limits.MaxImageBytes < 0 || c.Limits.MaxPixels < 0 {
		return errors.New("config: limits must not be negative")
	}
	switch c.Output.Collision {
	case "", "overwrite", "error", "rename":
	default:
		return fmt.Errorf("config: unknown collision policy %q", c.Output.Collision)
	}
	switch c.Skew.Method {
	case "hough", "whitelines":
	default:
		return fmt.Errorf("config: unknown skew method %q", c.Skew.Method)
	}
	if err := c.Skew.SkewParams.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Load builds a Config from defaults, the optional YAML file at path and
// FOTO2PDF_* environment variables, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v, ok := lookup("WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("WORKERS", err)
		}
		cfg.WorkerCount = n
	}
	if v, ok := lookup("PREFIX"); ok {
		cfg.Prefix = v
	}
	if v, ok := lookup("FORMAT"); ok {
		cfg.OutputFormat = strings.ToLower(v)
	}
	if v, ok := lookup("MARGIN"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError("MARGIN", err)
		}
		cfg.MarginPercent = f
	}
	if v, ok := lookup("PORTRAIT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("PORTRAIT", err)
		}
		cfg.ForcePortrait = b
	}
	if v, ok := lookup("AUTO_ORIENT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("AUTO_ORIENT", err)
		}
		cfg.AutoOrient = b
	}
	if v, ok := lookup("SKEW_METHOD"); ok {
		cfg.Skew.Method = strings.ToLower(v)
	}
	if v, ok := lookup("CODEC_BACKEND"); ok {
		cfg.Codec.Backend = CodecBackend(strings.ToLower(v))
	}
	if v, ok := lookup("COLLISION"); ok {
		cfg.Output.Collision = strings.ToLower(v)
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		cfg.LogFormat = v
	}
	return nil
}

func lookup(name string) (string, bool) {
	v := os.Getenv(EnvPrefix + name)
	return v, v != ""
}

func envError(name string, err error) error {
	return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
}

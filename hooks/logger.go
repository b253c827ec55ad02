package hooks

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/olafgeibig/foto2pdf/core"
)

// ── zerolog adapter ───────────────────────────────────────────────────────────

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string    // debug, info, warn, error
	Format string    // console or json
	Output io.Writer // default os.Stderr
}

// ZerologLogger adapts zerolog.Logger to core.Logger. Fields are read as
// alternating key/value pairs.
type ZerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger builds a leveled zerolog logger writing to cfg.Output.
func NewZerologLogger(cfg LogConfig) *ZerologLogger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	var zl zerolog.Logger
	if cfg.Format == "json" {
		zl = zerolog.New(out)
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}
	zl = zl.Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
	return &ZerologLogger{zl: zl}
}

// WrapZerolog adapts an existing zerolog logger.
func WrapZerolog(zl zerolog.Logger) *ZerologLogger { return &ZerologLogger{zl: zl} }

func (z *ZerologLogger) Debug(msg string, fields ...interface{}) {
	emit(z.zl.Debug(), msg, fields)
}
func (z *ZerologLogger) Info(msg string, fields ...interface{}) {
	emit(z.zl.Info(), msg, fields)
}
func (z *ZerologLogger) Warn(msg string, fields ...interface{}) {
	emit(z.zl.Warn(), msg, fields)
}
func (z *ZerologLogger) Error(msg string, fields ...interface{}) {
	emit(z.zl.Error(), msg, fields)
}

func emit(evt *zerolog.Event, msg string, fields []interface{}) {
	if evt == nil {
		return
	}
	for i := 0; i < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		if i+1 >= len(fields) {
			evt = evt.Str(key, "(missing)")
			break
		}
		switch v := fields[i+1].(type) {
		case string:
			evt = evt.Str(key, v)
		case int:
			evt = evt.Int(key, v)
		case int64:
			evt = evt.Int64(key, v)
		case float64:
			evt = evt.Float64(key, v)
		case bool:
			evt = evt.Bool(key, v)
		case time.Duration:
			evt = evt.Dur(key, v)
		case error:
			evt = evt.AnErr(key, v)
		case fmt.Stringer:
			evt = evt.Stringer(key, v)
		default:
			evt = evt.Interface(key, v)
		}
	}
	evt.Msg(msg)
}

// ParseLevel converts a level name to a zerolog.Level; unknown names map to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

// ValidLevel reports whether level is one the command line accepts.
func ValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// ── slog adapter ──────────────────────────────────────────────────────────────

// SlogLogger wraps the standard library slog.Logger to satisfy core.Logger,
// for applications that already route their logs through slog.
type SlogLogger struct {
	log *slog.Logger
}

// NewSlogLogger creates a logger backed by slog.
func NewSlogLogger(l *slog.Logger) *SlogLogger { return &SlogLogger{log: l} }

func (s *SlogLogger) Debug(msg string, fields ...interface{}) { s.log.Debug(msg, fields...) }
func (s *SlogLogger) Info(msg string, fields ...interface{})  { s.log.Info(msg, fields...) }
func (s *SlogLogger) Warn(msg string, fields ...interface{})  { s.log.Warn(msg, fields...) }
func (s *SlogLogger) Error(msg string, fields ...interface{}) { s.log.Error(msg, fields...) }

var (
	_ core.Logger = (*ZerologLogger)(nil)
	_ core.Logger = (*SlogLogger)(nil)
)

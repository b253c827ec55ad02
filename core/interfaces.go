package core

import (
	"context"
	"image"
	"io"
)

// Decoder converts an encoded stream into an ImageBuffer.
// Implementations live in adapters/decoder/ and adapters/vips/.
type Decoder interface {
	// Decode reads from r and returns the decoded pixels.
	Decode(ctx context.Context, r io.Reader) (*ImageBuffer, error)
	// DecodeConfig reads only the header and reports dimensions.
	DecodeConfig(r io.Reader) (image.Config, error)
	// CanDecode reports whether this decoder handles the given format.
	CanDecode(format Format) bool
}

// Encoder serialises an ImageBuffer to bytes in a target format.
// Implementations live in adapters/encoder/ and adapters/vips/.
type Encoder interface {
	Encode(ctx context.Context, buf *ImageBuffer, opts EncodeOptions) ([]byte, error)
	CanEncode(format Format) bool
}

// EncodeOptions carries format-specific encoding parameters.
type EncodeOptions struct {
	Quality  int  // 1-100; 0 = use encoder default
	Lossless bool // WebP / PNG lossless mode
}

// OutputStore persists encoded output files.
// Implementations live in adapters/storage/.
type OutputStore interface {
	// Prepare makes sure dir exists and is writable.
	Prepare(dir string) error
	// Put writes data as dir/name and returns the path actually written.
	Put(ctx context.Context, dir, name string, data []byte) (string, error)
}

// SkewDetector estimates the dominant line angle of a grayscale image.
// Detect returns ok=false when no angle stands out; that is not an error.
type SkewDetector interface {
	Name() string
	Detect(gray *image.Gray, params SkewParams) (angle float64, ok bool)
}

// ImageProcessor runs the single-image pipeline. pipeline.Orchestrator is the
// production implementation; core only depends on this interface so that it
// does not import the pipeline package.
type ImageProcessor interface {
	Process(ctx context.Context, path string, params ProcessParams) (*ImageBuffer, *ProcessingInfo, error)
}

// MetricsCollector receives performance observations from the pipeline.
type MetricsCollector interface {
	RecordProcessingTime(stepName string, d interface{ Seconds() float64 })
	RecordThroughput(bytes int64)
	RecordError(stepName string, category string)
	RecordResult(status string)
}

// Logger is a minimal structured logging interface.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}

// Registry maps Format values to Decoder/Encoder implementations.
type Registry interface {
	DecoderFor(format Format) (Decoder, bool)
	EncoderFor(format Format) (Encoder, bool)
	RegisterDecoder(format Format, d Decoder)
	RegisterEncoder(format Format, e Encoder)
	EncoderFormats() []Format
}

// Package vips provides a libvips-backed codec. It decodes every format
// libvips understands and is the only backend that can write WebP.
package vips

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"runtime"
	"sync"

	govips "github.com/davidbyttow/govips/v2/vips"

	"github.com/olafgeibig/foto2pdf/core"
	apperrors "github.com/olafgeibig/foto2pdf/errors"
	"github.com/olafgeibig/foto2pdf/utils"
)

// BackendConfig configures the libvips backend.
type BackendConfig struct {
	DefaultQuality int
	MaxCacheSize   int
	MaxWorkers     int
	ReportLeaks    bool
}

// Backend is a unified libvips-powered Decoder and Encoder.
// Safe for concurrent use across goroutines.
type Backend struct {
	cfg      BackendConfig
	shutdown sync.Once
}

// NewBackend initialises libvips and returns a ready Backend.
// Call Shutdown() when the process exits.
func NewBackend(cfg BackendConfig) *Backend {
	if cfg.DefaultQuality <= 0 {
		cfg.DefaultQuality = 90
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}
	govips.Startup(&govips.Config{
		ConcurrencyLevel: cfg.MaxWorkers,
		MaxCacheSize:     cfg.MaxCacheSize,
		ReportLeaks:      cfg.ReportLeaks,
	})
	return &Backend{cfg: cfg}
}

// Shutdown releases all libvips resources. Safe to call more than once.
func (b *Backend) Shutdown() {
	b.shutdown.Do(govips.Shutdown)
}

// ─── Decoder ──────────────────────────────────────────────────────────────────

func (b *Backend) CanDecode(f core.Format) bool {
	switch f {
	case core.FormatJPEG, core.FormatPNG, core.FormatWebP:
		return true
	}
	return false
}

// Decode loads the image with libvips, applies nothing to it, and hands the
// pixels over as a Go image through a lossless PNG round trip.
func (b *Backend) Decode(ctx context.Context, r io.Reader) (*core.ImageBuffer, error) {
	ref, err := b.load(ctx, "vips.decode", r)
	if err != nil {
		return nil, err
	}
	defer ref.Close()

	raw, _, err := ref.ExportPng(govips.NewPngExportParams())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryUnreadableImage, "vips.decode.export", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryUnreadableImage, "vips.decode.png", err)
	}
	buf := core.NewImageBuffer(img)
	buf.Mode = interpretationToMode(ref.Interpretation(), ref.HasAlpha())
	return buf, nil
}

func (b *Backend) DecodeConfig(r io.Reader) (image.Config, error) {
	ref, err := b.load(context.Background(), "vips.config", r)
	if err != nil {
		return image.Config{}, err
	}
	defer ref.Close()
	return image.Config{Width: ref.Width(), Height: ref.Height()}, nil
}

func (b *Backend) load(ctx context.Context, op string, r io.Reader) (*govips.ImageRef, error) {
	raw, err := utils.DrainReader(ctx, r, 0)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIOFailure, op, err)
	}
	ref, err := govips.NewImageFromBuffer(raw)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryUnreadableImage, op, err)
	}
	if ref.Width() <= 0 || ref.Height() <= 0 {
		ref.Close()
		return nil, apperrors.New(apperrors.CategoryUnreadableImage, op, apperrors.ErrInvalidDimensions)
	}
	return ref, nil
}

// ─── Encoder ──────────────────────────────────────────────────────────────────

// FormatEncoder binds the backend to one output format so that it can be
// registered as a core.Encoder.
type FormatEncoder struct {
	b      *Backend
	format core.Format
}

// Encoder returns an encoder writing f.
func (b *Backend) Encoder(f core.Format) *FormatEncoder {
	return &FormatEncoder{b: b, format: f}
}

func (e *FormatEncoder) CanEncode(f core.Format) bool {
	if f != e.format {
		return false
	}
	switch f {
	case core.FormatJPEG, core.FormatPNG, core.FormatWebP:
		return true
	}
	return false
}

func (e *FormatEncoder) Encode(ctx context.Context, buf *core.ImageBuffer, opts core.EncodeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryCanceled, "vips.encode", err)
	}
	if buf == nil || buf.Image == nil {
		return nil, apperrors.New(apperrors.CategoryEncodeFailure, "vips.encode", apperrors.ErrEmptyInput)
	}

	// Hand the pixels to libvips as an uncompressed PNG.
	var staging bytes.Buffer
	if err := (&png.Encoder{CompressionLevel: png.NoCompression}).Encode(&staging, buf.Image); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncodeFailure, "vips.encode.stage", err)
	}
	ref, err := govips.NewImageFromBuffer(staging.Bytes())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncodeFailure, "vips.encode.load", err)
	}
	defer ref.Close()

	quality := opts.Quality
	if quality <= 0 {
		quality = e.b.cfg.DefaultQuality
	}

	switch e.format {
	case core.FormatJPEG:
		if ref.HasAlpha() {
			if err := ref.Flatten(&govips.Color{R: 255, G: 255, B: 255}); err != nil {
				return nil, apperrors.Wrap(apperrors.CategoryEncodeFailure, "vips.encode.flatten", err)
			}
		}
		ep := govips.NewJpegExportParams()
		ep.Quality = quality
		out, _, err := ref.ExportJpeg(ep)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryEncodeFailure, "vips.encode.jpeg", err)
		}
		return out, nil

	case core.FormatPNG:
		out, _, err := ref.ExportPng(govips.NewPngExportParams())
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryEncodeFailure, "vips.encode.png", err)
		}
		return out, nil

	case core.FormatWebP:
		ep := govips.NewWebpExportParams()
		ep.Quality = quality
		ep.Lossless = opts.Lossless
		out, _, err := ref.ExportWebp(ep)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryEncodeFailure, "vips.encode.webp", err)
		}
		return out, nil
	}
	return nil, apperrors.New(apperrors.CategoryEncodeFailure, "vips.encode",
		fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, e.format))
}

// ─── Registration ─────────────────────────────────────────────────────────────

// RegisterBackend replaces the stdlib codecs with libvips for all formats.
func RegisterBackend(reg core.Registry, b *Backend) {
	for _, f := range []core.Format{core.FormatJPEG, core.FormatPNG, core.FormatWebP} {
		reg.RegisterDecoder(f, b)
		reg.RegisterEncoder(f, b.Encoder(f))
	}
}

// RegisterWebPEncoder adds libvips only as the WebP writer, keeping the
// stdlib codecs for everything else.
func RegisterWebPEncoder(reg core.Registry, b *Backend) {
	reg.RegisterEncoder(core.FormatWebP, b.Encoder(core.FormatWebP))
}

// ─── helpers ──────────────────────────────────────────────────────────────────

func interpretationToMode(i govips.Interpretation, alpha bool) core.ColorMode {
	switch i {
	case govips.InterpretationBW, govips.InterpretationGrey16:
		return core.ColorModeGray
	case govips.InterpretationCMYK:
		return core.ColorModeCMYK
	}
	if alpha {
		return core.ColorModeRGBA
	}
	return core.ColorModeRGB
}

// compile-time interface checks
var _ core.Decoder = (*Backend)(nil)
var _ core.Encoder = (*FormatEncoder)(nil)

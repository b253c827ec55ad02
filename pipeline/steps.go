package pipeline

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"

	"github.com/olafgeibig/foto2pdf/core"
	apperrors "github.com/olafgeibig/foto2pdf/errors"
	"github.com/olafgeibig/foto2pdf/transform"
	"github.com/olafgeibig/foto2pdf/utils"
)

// ── Decode ────────────────────────────────────────────────────────────────────

// DecodeStep reads img.Path, sniffs its format and decodes it through the
// registry. Header dimensions are checked against MaxPixels before any pixel
// memory is allocated.
type DecodeStep struct {
	Registry   core.Registry
	MaxBytes   int64 // 0 = no limit
	MaxPixels  int64 // 0 = no limit
	ChunkSize  int
	AutoOrient bool
}

func (s *DecodeStep) Name() string { return "decode" }

func (s *DecodeStep) Execute(ctx context.Context, img *core.ImageData) (*core.ImageData, error) {
	raw, err := utils.ReadFile(ctx, img.Path, s.MaxBytes, s.ChunkSize)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrImageTooLarge):
		return nil, apperrors.WithPath(apperrors.CategoryImageTooLarge, s.Name(), img.Path, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, apperrors.WithPath(apperrors.CategoryCanceled, s.Name(), img.Path, err)
	default:
		return nil, apperrors.WithPath(apperrors.CategoryIOFailure, s.Name(), img.Path, err)
	}

	format := utils.DetectFormat(raw)
	if format == core.FormatUnknown {
		// Unsniffable content still goes to the decoder its extension names,
		// which reports why it cannot be read.
		format = utils.FormatFromExtension(img.Path)
	}
	dec, ok := s.Registry.DecoderFor(format)
	if format == core.FormatUnknown || !ok {
		return nil, apperrors.WithPath(apperrors.CategoryUnreadableImage, s.Name(), img.Path, apperrors.ErrUnsupportedFormat)
	}

	cfg, err := dec.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.AttachPath(err, img.Path)
	}
	if s.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > s.MaxPixels {
		return nil, apperrors.WithPath(apperrors.CategoryImageTooLarge, s.Name(), img.Path, apperrors.ErrImageTooLarge)
	}

	buf, err := dec.Decode(ctx, bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.AttachPath(err, img.Path)
	}

	orientation := utils.Orientation(raw)
	out := *img
	out.Format = format
	out.Info = core.ImageInfo{
		Filename:    filepath.Base(img.Path),
		Size:        buf.Size(),
		Format:      format,
		Mode:        buf.Mode,
		Orientation: orientation,
		SizeBytes:   int64(len(raw)),
	}
	if s.AutoOrient {
		buf = transform.Orient(buf, orientation)
	}
	out.Buffer = buf
	out.Raw = nil
	return &out, nil
}

// ── Skew detection ────────────────────────────────────────────────────────────

// DetectSkewStep measures the content angle on a grayscale copy. When the
// detector finds nothing the angle is recorded as 0.
type DetectSkewStep struct {
	Detector core.SkewDetector
	Params   core.SkewParams
}

func (s *DetectSkewStep) Name() string { return "detect_skew" }

func (s *DetectSkewStep) Execute(ctx context.Context, img *core.ImageData) (*core.ImageData, error) {
	if img.Buffer == nil {
		return nil, apperrors.WithPath(apperrors.CategoryInternal, s.Name(), img.Path, apperrors.ErrEmptyInput)
	}
	angle, ok := s.Detector.Detect(transform.Grayscale(img.Buffer.Image), s.Params)
	if !ok {
		angle = 0
	}
	out := *img
	out.SkewAngle = angle
	out.SkewDetected = ok
	return &out, nil
}

// ── Rotate ────────────────────────────────────────────────────────────────────

// RotateStep corrects the measured skew. Angles under transform.MinRotation
// leave the buffer untouched.
type RotateStep struct{}

func (s *RotateStep) Name() string { return "rotate" }

func (s *RotateStep) Execute(_ context.Context, img *core.ImageData) (*core.ImageData, error) {
	if img.Buffer == nil {
		return nil, apperrors.WithPath(apperrors.CategoryInternal, s.Name(), img.Path, apperrors.ErrEmptyInput)
	}
	buf, applied := transform.Rotate(img.Buffer, img.SkewAngle)
	out := *img
	out.Buffer = buf
	out.Rotated = applied
	return &out, nil
}

// ── Crop ──────────────────────────────────────────────────────────────────────

// CropStep normalises orientation and crops to the A4 ratio.
type CropStep struct {
	MarginPercent float64
	ForcePortrait bool
}

func (s *CropStep) Name() string { return "crop" }

func (s *CropStep) Execute(_ context.Context, img *core.ImageData) (*core.ImageData, error) {
	if img.Buffer == nil {
		return nil, apperrors.WithPath(apperrors.CategoryInternal, s.Name(), img.Path, apperrors.ErrEmptyInput)
	}
	buf, box := transform.AspectCrop(img.Buffer, s.MarginPercent, s.ForcePortrait)
	out := *img
	out.Buffer = buf
	out.CropBox = box
	return &out, nil
}

// compile-time interface checks
var (
	_ core.Step = (*DecodeStep)(nil)
	_ core.Step = (*DetectSkewStep)(nil)
	_ core.Step = (*RotateStep)(nil)
	_ core.Step = (*CropStep)(nil)
)

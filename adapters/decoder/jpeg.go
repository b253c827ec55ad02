// Package decoder provides format-specific image decoders.
package decoder

import (
	"context"
	"image"
	"image/jpeg"
	"io"

	"github.com/olafgeibig/foto2pdf/core"
	apperrors "github.com/olafgeibig/foto2pdf/errors"
)

// JPEG decodes JPEG images using the standard library.
type JPEG struct{}

// NewJPEG returns an initialised JPEG decoder.
func NewJPEG() *JPEG { return &JPEG{} }

func (j *JPEG) CanDecode(format core.Format) bool { return format == core.FormatJPEG }

func (j *JPEG) Decode(ctx context.Context, r io.Reader) (*core.ImageBuffer, error) {
	return decodeWith(ctx, "jpeg.decode", r, jpeg.Decode)
}

func (j *JPEG) DecodeConfig(r io.Reader) (image.Config, error) {
	return configWith("jpeg.config", r, jpeg.DecodeConfig)
}

// decodeWith runs a stdlib-style decode function and classifies its failure
// as an unreadable image.
func decodeWith(ctx context.Context, op string, r io.Reader, fn func(io.Reader) (image.Image, error)) (*core.ImageBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryCanceled, op, err)
	}
	img, err := fn(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryUnreadableImage, op, err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, apperrors.New(apperrors.CategoryUnreadableImage, op, apperrors.ErrInvalidDimensions)
	}
	return core.NewImageBuffer(img), nil
}

func configWith(op string, r io.Reader, fn func(io.Reader) (image.Config, error)) (image.Config, error) {
	cfg, err := fn(r)
	if err != nil {
		return image.Config{}, apperrors.Wrap(apperrors.CategoryUnreadableImage, op, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return image.Config{}, apperrors.New(apperrors.CategoryUnreadableImage, op, apperrors.ErrInvalidDimensions)
	}
	return cfg, nil
}

var _ core.Decoder = (*JPEG)(nil)

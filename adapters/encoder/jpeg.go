// Package encoder provides format-specific image encoders.
package encoder

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	"github.com/olafgeibig/foto2pdf/core"
	apperrors "github.com/olafgeibig/foto2pdf/errors"
)

// JPEG encodes images to JPEG format. Transparent pixels are flattened onto
// white since JPEG has no alpha channel.
type JPEG struct {
	DefaultQuality int // used when EncodeOptions.Quality == 0
}

func NewJPEG(defaultQuality int) *JPEG {
	if defaultQuality <= 0 {
		defaultQuality = 90
	}
	return &JPEG{DefaultQuality: defaultQuality}
}

func (j *JPEG) CanEncode(format core.Format) bool { return format == core.FormatJPEG }

func (j *JPEG) Encode(ctx context.Context, buf *core.ImageBuffer, opts core.EncodeOptions) ([]byte, error) {
	src, err := source(ctx, "jpeg.encode", buf)
	if err != nil {
		return nil, err
	}

	quality := opts.Quality
	if quality <= 0 {
		quality = j.DefaultQuality
	}
	if buf.Mode == core.ColorModeRGBA {
		src = flatten(src)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, src, &jpeg.Options{Quality: quality}); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncodeFailure, "jpeg.encode", err)
	}
	return out.Bytes(), nil
}

// source checks the context and the buffer shared by all encoders.
func source(ctx context.Context, op string, buf *core.ImageBuffer) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryCanceled, op, err)
	}
	if buf == nil || buf.Image == nil {
		return nil, apperrors.New(apperrors.CategoryEncodeFailure, op, apperrors.ErrEmptyInput)
	}
	return buf.Image, nil
}

func flatten(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, b, src, b.Min, draw.Over)
	return dst
}

var _ core.Encoder = (*JPEG)(nil)

package encoder

import (
	"bytes"
	"context"
	"image/png"

	"github.com/olafgeibig/foto2pdf/core"
	apperrors "github.com/olafgeibig/foto2pdf/errors"
)

// PNG encodes images to PNG format.
type PNG struct{}

func NewPNG() *PNG { return &PNG{} }

func (p *PNG) CanEncode(format core.Format) bool { return format == core.FormatPNG }

func (p *PNG) Encode(ctx context.Context, buf *core.ImageBuffer, opts core.EncodeOptions) ([]byte, error) {
	src, err := source(ctx, "png.encode", buf)
	if err != nil {
		return nil, err
	}

	enc := &png.Encoder{CompressionLevel: png.DefaultCompression}
	if opts.Lossless {
		enc.CompressionLevel = png.BestCompression
	}

	var out bytes.Buffer
	if err := enc.Encode(&out, src); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncodeFailure, "png.encode", err)
	}
	return out.Bytes(), nil
}

var _ core.Encoder = (*PNG)(nil)

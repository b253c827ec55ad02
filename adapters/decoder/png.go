package decoder

import (
	"context"
	"image"
	"image/png"
	"io"

	"github.com/olafgeibig/foto2pdf/core"
)

// PNG decodes PNG images using the standard library.
type PNG struct{}

func NewPNG() *PNG { return &PNG{} }

func (p *PNG) CanDecode(format core.Format) bool { return format == core.FormatPNG }

func (p *PNG) Decode(ctx context.Context, r io.Reader) (*core.ImageBuffer, error) {
	return decodeWith(ctx, "png.decode", r, png.Decode)
}

func (p *PNG) DecodeConfig(r io.Reader) (image.Config, error) {
	return configWith("png.config", r, png.DecodeConfig)
}

var _ core.Decoder = (*PNG)(nil)

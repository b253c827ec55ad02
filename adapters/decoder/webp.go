package decoder

import (
	"context"
	"image"
	"io"

	"golang.org/x/image/webp"

	"github.com/olafgeibig/foto2pdf/core"
)

// WebP decodes WebP images using golang.org/x/image/webp.
// NOTE: golang.org/x/image/webp does not decode animated WebP; the vips
// backend handles those.
type WebP struct{}

func NewWebP() *WebP { return &WebP{} }

func (w *WebP) CanDecode(format core.Format) bool { return format == core.FormatWebP }

func (w *WebP) Decode(ctx context.Context, r io.Reader) (*core.ImageBuffer, error) {
	return decodeWith(ctx, "webp.decode", r, webp.Decode)
}

func (w *WebP) DecodeConfig(r io.Reader) (image.Config, error) {
	return configWith("webp.config", r, webp.DecodeConfig)
}

var _ core.Decoder = (*WebP)(nil)

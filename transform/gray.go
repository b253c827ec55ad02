package transform

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Grayscale returns a luma copy of img. The result is always a fresh
// *image.Gray whose origin is (0,0) and whose stride equals its width.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Downscale shrinks g so that its longer side is at most maxSide, using a
// bilinear kernel. The input is returned when it is already small enough.
func Downscale(g *image.Gray, maxSide int) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	long := max(w, h)
	if maxSide <= 0 || long <= maxSide {
		return g
	}
	scale := float64(maxSide) / float64(long)
	dw := max(1, int(float64(w)*scale))
	dh := max(1, int(float64(h)*scale))
	dst := image.NewGray(image.Rect(0, 0, dw, dh))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), g, b, xdraw.Src, nil)
	return dst
}

package transform

import (
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/olafgeibig/foto2pdf/core"
)

// MinRotation is the smallest skew, in degrees, that is corrected. Smaller
// angles leave the image untouched.
const MinRotation = 0.1

// Rotate straightens an image whose content is tilted by angle degrees
// (counter-clockwise positive) by rotating it by -angle. The canvas grows to
// hold the whole rotated image, never shrinks below the input size, and
// uncovered areas are filled white. applied is false, and buf is returned
// as-is, when |angle| < MinRotation or angle is not finite.
func Rotate(buf *core.ImageBuffer, angle float64) (out *core.ImageBuffer, applied bool) {
	if math.IsNaN(angle) || math.IsInf(angle, 0) || math.Abs(angle) < MinRotation {
		return buf, false
	}
	return RotateCCW(buf, -angle), true
}

// RotateCCW rotates buf counter-clockwise by deg degrees about its centre using
// bilinear resampling, on an expanded white canvas.
func RotateCCW(buf *core.ImageBuffer, deg float64) *core.ImageBuffer {
	src := buf.Image
	w, h := buf.Width(), buf.Height()
	dw, dh := ExpandedSize(w, h, deg)

	dst := newCanvas(src, dw, dh)
	fill(dst, color.White)

	rad := deg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	cx, cy := float64(w)/2, float64(h)/2
	dx, dy := float64(dw)/2, float64(dh)/2

	// Source → destination in y-down pixel space; a positive angle turns the
	// content counter-clockwise on screen.
	s2d := f64.Aff3{
		cos, sin, dx - (cos*cx + sin*cy),
		-sin, cos, dy - (-sin*cx + cos*cy),
	}
	draw.BiLinear.Transform(dst, s2d, src, src.Bounds(), draw.Over, nil)

	return &core.ImageBuffer{Image: dst, Mode: modeAfter(buf.Mode)}
}

// ExpandedSize is the canvas needed to hold a w×h image rotated by deg
// degrees. Each side is at least the corresponding input side.
func ExpandedSize(w, h int, deg float64) (int, int) {
	rad := deg * math.Pi / 180
	c, s := math.Abs(math.Cos(rad)), math.Abs(math.Sin(rad))
	fw, fh := float64(w), float64(h)
	// Trim float noise so that e.g. 90° does not round 100.0000001 up to 101.
	dw := int(math.Ceil(fw*c + fh*s - 1e-6))
	dh := int(math.Ceil(fw*s + fh*c - 1e-6))
	return max(dw, w), max(dh, h)
}

// Rotate90CCW turns buf a quarter counter-clockwise, losslessly.
func Rotate90CCW(buf *core.ImageBuffer) *core.ImageBuffer {
	w, h := buf.Width(), buf.Height()
	img := remap(buf.Image, h, w, func(x, y int) (int, int) { return w - 1 - y, x })
	return &core.ImageBuffer{Image: img, Mode: modeAfter(buf.Mode)}
}

// Rotate90CW turns buf a quarter clockwise, losslessly.
func Rotate90CW(buf *core.ImageBuffer) *core.ImageBuffer {
	w, h := buf.Width(), buf.Height()
	img := remap(buf.Image, h, w, func(x, y int) (int, int) { return y, h - 1 - x })
	return &core.ImageBuffer{Image: img, Mode: modeAfter(buf.Mode)}
}

// Rotate180 turns buf half a turn, losslessly.
func Rotate180(buf *core.ImageBuffer) *core.ImageBuffer {
	w, h := buf.Width(), buf.Height()
	img := remap(buf.Image, w, h, func(x, y int) (int, int) { return w - 1 - x, h - 1 - y })
	return &core.ImageBuffer{Image: img, Mode: modeAfter(buf.Mode)}
}

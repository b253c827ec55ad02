package transform

import (
	"image/draw"

	"github.com/olafgeibig/foto2pdf/core"
)

// A4 page size in pixels at 300 dpi (8.27 × 11.69 in, truncated).
const (
	A4WidthPx  = 2481
	A4HeightPx = 3507
)

// A4Ratio is the portrait height/width ratio.
const A4Ratio = float64(A4HeightPx) / float64(A4WidthPx)

// TargetRatio returns the height/width ratio of the output page.
func TargetRatio(portrait bool) float64 {
	if portrait {
		return A4Ratio
	}
	return 1 / A4Ratio
}

// ComputeCropBox returns the largest box of the target ratio that fits a w×h
// image, shrunk on each side by marginPercent of its own size and centred.
// Margins of 50% or more would empty the box; each side is then kept at one
// pixel, so the result is always a valid box inside the image.
func ComputeCropBox(w, h int, marginPercent float64, portrait bool) core.CropBox {
	target := TargetRatio(portrait)

	nw, nh := w, h
	if float64(h)/float64(w) > target {
		nh = int(float64(w) * target)
	} else {
		nw = int(float64(h) / target)
	}

	mx := int(float64(nw) * marginPercent / 100)
	my := int(float64(nh) * marginPercent / 100)
	nw -= 2 * mx
	nh -= 2 * my

	nw = clamp(nw, 1, w)
	nh = clamp(nh, 1, h)

	left := (w - nw) / 2
	top := (h - nh) / 2
	return core.CropBox{
		Left:   clamp(left, 0, w-1),
		Top:    clamp(top, 0, h-1),
		Right:  clamp(left+nw, 1, w),
		Bottom: clamp(top+nh, 1, h),
	}
}

// AspectCrop normalises orientation and crops buf to the A4 ratio. With
// forcePortrait a landscape image is first turned a quarter counter-clockwise;
// without it a portrait (or square) image is turned a quarter clockwise. The
// returned box is in the coordinates of the turned image.
func AspectCrop(buf *core.ImageBuffer, marginPercent float64, forcePortrait bool) (*core.ImageBuffer, core.CropBox) {
	landscape := buf.Width() > buf.Height()
	switch {
	case forcePortrait && landscape:
		buf = Rotate90CCW(buf)
	case !forcePortrait && !landscape:
		buf = Rotate90CW(buf)
	}

	box := ComputeCropBox(buf.Width(), buf.Height(), marginPercent, forcePortrait)
	return Crop(buf, box), box
}

// Crop copies the pixels inside box into a new buffer.
func Crop(buf *core.ImageBuffer, box core.CropBox) *core.ImageBuffer {
	r := box.Rect().Intersect(buf.Image.Bounds())
	dst := newCanvas(buf.Image, r.Dx(), r.Dy())
	draw.Draw(dst, dst.Bounds(), buf.Image, r.Min, draw.Src)
	return &core.ImageBuffer{Image: dst, Mode: modeAfter(buf.Mode)}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

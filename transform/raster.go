// Package transform holds the pixel-level geometry used by the pipeline:
// corrective rotation, exact quarter turns, EXIF orientation and A4 cropping.
// Every function returns a new buffer and leaves its input untouched.
package transform

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/olafgeibig/foto2pdf/core"
)

// newCanvas allocates a w×h destination matching the pixel model of src:
// grayscale stays grayscale, everything else becomes RGBA.
func newCanvas(src image.Image, w, h int) draw.Image {
	if _, ok := src.(*image.Gray); ok {
		return image.NewGray(image.Rect(0, 0, w, h))
	}
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// fill paints dst with c.
func fill(dst draw.Image, c color.Color) {
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// modeAfter is the color mode of a buffer produced from one with mode m.
func modeAfter(m core.ColorMode) core.ColorMode {
	switch m {
	case core.ColorModeGray, core.ColorModeRGBA:
		return m
	}
	return core.ColorModeRGB
}

// normalize returns src as *image.Gray or *image.RGBA so that the quarter-turn
// and crop loops can copy raw Pix rows.
func normalize(src image.Image) image.Image {
	b := src.Bounds()
	switch src.(type) {
	case *image.Gray, *image.RGBA:
		if b.Min == (image.Point{}) {
			return src
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// remap builds a dw×dh image where destination pixel (x, y) is copied from
// source pixel at(x, y).
func remap(src image.Image, dw, dh int, at func(x, y int) (int, int)) image.Image {
	switch s := normalize(src).(type) {
	case *image.Gray:
		dst := image.NewGray(image.Rect(0, 0, dw, dh))
		for y := 0; y < dh; y++ {
			row := dst.Pix[y*dst.Stride:]
			for x := 0; x < dw; x++ {
				sx, sy := at(x, y)
				row[x] = s.Pix[sy*s.Stride+sx]
			}
		}
		return dst
	case *image.RGBA:
		dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
		for y := 0; y < dh; y++ {
			row := dst.Pix[y*dst.Stride:]
			for x := 0; x < dw; x++ {
				sx, sy := at(x, y)
				i := sy*s.Stride + sx*4
				copy(row[x*4:x*4+4], s.Pix[i:i+4])
			}
		}
		return dst
	}
	panic("transform: normalize returned an unexpected image type")
}

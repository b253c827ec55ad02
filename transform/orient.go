package transform

import "github.com/olafgeibig/foto2pdf/core"

// Orient applies an EXIF orientation tag so that the pixels display upright.
// Values outside 2-8 return buf unchanged.
func Orient(buf *core.ImageBuffer, orientation int) *core.ImageBuffer {
	w, h := buf.Width(), buf.Height()
	var at func(x, y int) (int, int)
	dw, dh := w, h

	switch orientation {
	case 2: // mirrored horizontally
		at = func(x, y int) (int, int) { return w - 1 - x, y }
	case 3:
		return Rotate180(buf)
	case 4: // mirrored vertically
		at = func(x, y int) (int, int) { return x, h - 1 - y }
	case 5: // transpose
		dw, dh = h, w
		at = func(x, y int) (int, int) { return y, x }
	case 6:
		return Rotate90CW(buf)
	case 7: // transverse
		dw, dh = h, w
		at = func(x, y int) (int, int) { return w - 1 - y, h - 1 - x }
	case 8:
		return Rotate90CCW(buf)
	default:
		return buf
	}
	return &core.ImageBuffer{Image: remap(buf.Image, dw, dh, at), Mode: modeAfter(buf.Mode)}
}

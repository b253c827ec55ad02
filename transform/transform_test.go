package transform_test

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olafgeibig/foto2pdf/core"
	"github.com/olafgeibig/foto2pdf/transform"
)

// ── Test helpers ──────────────────────────────────────────────────────────────

func solidRGBA(t *testing.T, w, h int, c color.RGBA) *core.ImageBuffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return core.NewImageBuffer(img)
}

// marked returns a white w×h gray image with pixel (mx, my) black.
func marked(t *testing.T, w, h, mx, my int) *core.ImageBuffer {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetGray(mx, my, color.Gray{Y: 0})
	return core.NewImageBuffer(img)
}

func grayAt(buf *core.ImageBuffer, x, y int) uint8 {
	return color.GrayModel.Convert(buf.Image.At(x, y)).(color.Gray).Y
}

func ratio(buf *core.ImageBuffer) float64 {
	return float64(buf.Height()) / float64(buf.Width())
}

// ── Rotation ──────────────────────────────────────────────────────────────────

func TestRotate_SkipsSmallAngles(t *testing.T) {
	buf := solidRGBA(t, 40, 30, color.RGBA{R: 10, A: 255})
	for _, a := range []float64{0, 0.05, -0.099, math.NaN(), math.Inf(1)} {
		out, applied := transform.Rotate(buf, a)
		assert.False(t, applied, "angle %v", a)
		assert.Same(t, buf, out)
	}
}

func TestRotate_ExpandsCanvasWithWhiteFill(t *testing.T) {
	buf := solidRGBA(t, 100, 60, color.RGBA{A: 255})

	out, applied := transform.Rotate(buf, 5)
	require.True(t, applied)
	wantW, wantH := transform.ExpandedSize(100, 60, -5)
	assert.Equal(t, wantW, out.Width())
	assert.Equal(t, wantH, out.Height())
	assert.GreaterOrEqual(t, out.Width(), 100)
	assert.GreaterOrEqual(t, out.Height(), 60)

	assert.EqualValues(t, 255, grayAt(out, 0, 0), "uncovered corner is white")
	assert.Less(t, grayAt(out, out.Width()/2, out.Height()/2), uint8(10), "content stays dark")
	assert.Equal(t, core.ColorModeRGBA, out.Mode)

	assert.EqualValues(t, 0, grayAt(buf, 0, 0), "input untouched")
}

func TestRotateCCW_Direction(t *testing.T) {
	// A 4×4 dark block at x∈[10,14), y∈[20,24) of a 100×100 image lands at
	// x∈[20,24), y∈[86,90) after a 90° counter-clockwise turn.
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for y := 20; y < 24; y++ {
		for x := 10; x < 14; x++ {
			img.SetGray(x, y, color.Gray{})
		}
	}
	out := transform.RotateCCW(core.NewImageBuffer(img), 90)

	require.Equal(t, 100, out.Width())
	require.Equal(t, 100, out.Height())
	assert.Less(t, grayAt(out, 21, 87), uint8(64))
	assert.Greater(t, grayAt(out, 11, 21), uint8(200))
	assert.Equal(t, core.ColorModeGray, out.Mode)
}

func TestExpandedSize(t *testing.T) {
	w, h := transform.ExpandedSize(100, 100, 90)
	assert.Equal(t, 100, w)
	assert.Equal(t, 100, h)

	w, h = transform.ExpandedSize(100, 50, 0)
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)

	w, h = transform.ExpandedSize(100, 100, 45)
	assert.Equal(t, 142, w) // ceil(100·√2)
	assert.Equal(t, 142, h)

	w, h = transform.ExpandedSize(100, 50, 90)
	assert.Equal(t, 100, w, "never smaller than the input")
	assert.Equal(t, 100, h)
}

func TestQuarterTurns(t *testing.T) {
	buf := marked(t, 3, 2, 2, 0) // top-right corner

	ccw := transform.Rotate90CCW(buf)
	assert.Equal(t, 2, ccw.Width())
	assert.Equal(t, 3, ccw.Height())
	assert.EqualValues(t, 0, grayAt(ccw, 0, 0), "top-right moves to top-left")

	cw := transform.Rotate90CW(buf)
	assert.EqualValues(t, 0, grayAt(cw, 1, 2), "top-right moves to bottom-right")

	half := transform.Rotate180(buf)
	assert.EqualValues(t, 0, grayAt(half, 0, 1))

	back := transform.Rotate90CW(transform.Rotate90CCW(buf))
	assert.Equal(t, buf.Image.(*image.Gray).Pix, back.Image.(*image.Gray).Pix)
}

func TestOrient(t *testing.T) {
	buf := marked(t, 3, 2, 0, 0) // top-left corner

	tests := []struct {
		orientation int
		w, h        int
		x, y        int
	}{
		{1, 3, 2, 0, 0},
		{2, 3, 2, 2, 0},
		{3, 3, 2, 2, 1},
		{4, 3, 2, 0, 1},
		{5, 2, 3, 0, 0},
		{6, 2, 3, 1, 0},
		{7, 2, 3, 1, 2},
		{8, 2, 3, 0, 2},
	}
	for _, tt := range tests {
		out := transform.Orient(buf, tt.orientation)
		assert.Equal(t, tt.w, out.Width(), "orientation %d", tt.orientation)
		assert.Equal(t, tt.h, out.Height(), "orientation %d", tt.orientation)
		assert.EqualValues(t, 0, grayAt(out, tt.x, tt.y), "orientation %d", tt.orientation)
	}
	assert.Same(t, buf, transform.Orient(buf, 0))
	assert.Same(t, buf, transform.Orient(buf, 9))
}

// ── Crop ──────────────────────────────────────────────────────────────────────

func TestAspectCrop_Portrait(t *testing.T) {
	buf := solidRGBA(t, 400, 200, color.RGBA{G: 255, A: 255})

	out, box := transform.AspectCrop(buf, 0, true)
	assert.Less(t, out.Width(), out.Height())
	assert.InDelta(t, transform.A4Ratio, ratio(out), 0.01)
	assert.True(t, box.Within(200, 400), "box is in turned-image coordinates")
	assert.Equal(t, box.Width(), out.Width())
	assert.Equal(t, box.Height(), out.Height())
}

func TestAspectCrop_Landscape(t *testing.T) {
	buf := solidRGBA(t, 200, 400, color.RGBA{B: 255, A: 255})

	out, box := transform.AspectCrop(buf, 0, false)
	assert.Greater(t, out.Width(), out.Height())
	assert.InDelta(t, 1/transform.A4Ratio, ratio(out), 0.01)
	assert.True(t, box.Within(400, 200))
}

func TestAspectCrop_SquareGoesLandscapeWhenNotPortrait(t *testing.T) {
	buf := marked(t, 100, 100, 0, 0)
	out, _ := transform.AspectCrop(buf, 0, false)
	assert.Greater(t, out.Width(), out.Height())
}

func TestComputeCropBox_Margin(t *testing.T) {
	box := transform.ComputeCropBox(1000, 2000, 0, true)
	// 1000 wide → height int(1000·A4Ratio) = 1413, centred vertically.
	assert.Equal(t, 1000, box.Width())
	assert.Equal(t, 1413, box.Height())
	assert.Equal(t, (2000-1413)/2, box.Top)

	box = transform.ComputeCropBox(1000, 2000, 10, true)
	assert.Equal(t, 1000-2*100, box.Width())
	assert.Equal(t, 1413-2*141, box.Height())
	assert.Equal(t, 100, box.Left)
}

func TestComputeCropBox_AlwaysValid(t *testing.T) {
	sizes := [][2]int{{1, 1}, {2, 3}, {400, 200}, {200, 400}, {2481, 3507}, {3000, 17}}
	margins := []float64{0, 1, 5, 25, 49.9, 50, 75, 99.9, 100}
	for _, s := range sizes {
		for _, m := range margins {
			for _, portrait := range []bool{true, false} {
				box := transform.ComputeCropBox(s[0], s[1], m, portrait)
				assert.True(t, box.Within(s[0], s[1]), "size %v margin %v portrait %v: %+v", s, m, portrait, box)
			}
		}
	}
}

func TestAspectCrop_FullMarginKeepsOnePixel(t *testing.T) {
	buf := solidRGBA(t, 300, 400, color.RGBA{R: 255, A: 255})
	out, box := transform.AspectCrop(buf, 100, true)
	assert.Equal(t, 1, out.Width())
	assert.Equal(t, 1, out.Height())
	assert.True(t, box.Within(300, 400))
}

func TestCrop_CopiesPixels(t *testing.T) {
	buf := marked(t, 10, 10, 5, 5)
	out := transform.Crop(buf, core.CropBox{Left: 4, Top: 4, Right: 8, Bottom: 8})
	assert.Equal(t, 4, out.Width())
	assert.EqualValues(t, 0, grayAt(out, 1, 1))
	assert.EqualValues(t, 255, grayAt(out, 0, 0))
}

// ── Grayscale ─────────────────────────────────────────────────────────────────

func TestGrayscaleAndDownscale(t *testing.T) {
	buf := solidRGBA(t, 200, 100, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	g := transform.Grayscale(buf.Image)
	assert.Equal(t, 200, g.Stride)
	assert.EqualValues(t, 255, g.Pix[0])

	small := transform.Downscale(g, 50)
	assert.Equal(t, 50, small.Bounds().Dx())
	assert.Equal(t, 25, small.Bounds().Dy())
	assert.Same(t, g, transform.Downscale(g, 500))
}

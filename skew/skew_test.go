package skew_test

import (
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olafgeibig/foto2pdf/core"
	apperrors "github.com/olafgeibig/foto2pdf/errors"
	"github.com/olafgeibig/foto2pdf/skew"
	"github.com/olafgeibig/foto2pdf/transform"
)

// linedPage draws 3-pixel black lines on a white size×size page. Each line
// descends to the right by slopeDeg degrees (screen coordinates).
func linedPage(t *testing.T, size int, slopeDeg float64) *image.Gray {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	tan := math.Tan(slopeDeg * math.Pi / 180)
	for y0 := size / 10; y0 < size; y0 += size / 10 {
		for x := 0; x < size; x++ {
			yc := int(math.Round(float64(y0) + float64(x)*tan))
			for d := -1; d <= 1; d++ {
				if y := yc + d; y >= 0 && y < size {
					img.SetGray(x, y, color.Gray{})
				}
			}
		}
	}
	return img
}

func blank(size int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// ── Hough ─────────────────────────────────────────────────────────────────────

func TestHough_DetectsSlantedLines(t *testing.T) {
	angle, ok := skew.NewHough().Detect(linedPage(t, 400, 15), core.DefaultSkewParams())
	require.True(t, ok)
	// Lines falling to the right are a clockwise tilt, reported as negative.
	assert.InDelta(t, 15, math.Abs(angle), 1.0)
	assert.Negative(t, angle)
}

func TestHough_HorizontalLines(t *testing.T) {
	angle, ok := skew.NewHough().Detect(linedPage(t, 300, 0), core.DefaultSkewParams())
	require.True(t, ok)
	assert.InDelta(t, 0, angle, 0.5)
}

func TestHough_RoundTripWithRotate(t *testing.T) {
	page := core.NewImageBuffer(linedPage(t, 300, 0))
	tilted := transform.RotateCCW(page, 7)

	det := skew.NewHough()
	angle, ok := det.Detect(transform.Grayscale(tilted.Image), core.DefaultSkewParams())
	require.True(t, ok)
	assert.InDelta(t, 7, angle, 1.0, "counter-clockwise tilt is positive")

	fixed, applied := transform.Rotate(tilted, angle)
	require.True(t, applied)
	residual, ok := det.Detect(transform.Grayscale(fixed.Image), core.DefaultSkewParams())
	require.True(t, ok)
	assert.InDelta(t, 0, residual, 1.0)
}

func TestHough_BlankImage(t *testing.T) {
	angle, ok := skew.NewHough().Detect(blank(200), core.DefaultSkewParams())
	assert.False(t, ok)
	assert.Zero(t, angle)
}

func TestHough_RespectsRange(t *testing.T) {
	params := core.DefaultSkewParams()
	params.MinAngle, params.MaxAngle = -5, 5
	angle, ok := skew.NewHough().Detect(linedPage(t, 300, 15), params)
	if ok {
		assert.GreaterOrEqual(t, angle, -5.0)
		assert.LessOrEqual(t, angle, 5.0)
	}
}

func TestHough_TinyOrNil(t *testing.T) {
	_, ok := skew.NewHough().Detect(nil, core.DefaultSkewParams())
	assert.False(t, ok)
	_, ok = skew.NewHough().Detect(image.NewGray(image.Rect(0, 0, 2, 2)), core.DefaultSkewParams())
	assert.False(t, ok)
}

func TestHough_DownscalesLargeInput(t *testing.T) {
	det := &skew.Hough{MaxSide: 200}
	angle, ok := det.Detect(linedPage(t, 600, 10), core.DefaultSkewParams())
	require.True(t, ok)
	assert.InDelta(t, 10, math.Abs(angle), 1.5)
}

func TestHough_Tilts(t *testing.T) {
	for _, slope := range []float64{2, -3, 8} {
		angle, ok := skew.NewHough().Detect(linedPage(t, 400, slope), core.DefaultSkewParams())
		require.True(t, ok, "slope %v", slope)
		assert.InDelta(t, -slope, angle, 0.5, "slope %v", slope)
	}
}

// ── Content without line structure ────────────────────────────────────────────

func noisePage(seed int64, size int) *image.Gray {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	return img
}

// blobPage scatters filled discs of random shade over a mid-gray field.
func blobPage(seed int64, size, discs int) *image.Gray {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	for n := 0; n < discs; n++ {
		cx, cy := rng.Float64()*float64(size), rng.Float64()*float64(size)
		r := 8 + rng.Float64()*30
		shade := uint8(rng.Intn(256))
		for y := int(cy - r); y <= int(cy+r); y++ {
			for x := int(cx - r); x <= int(cx+r); x++ {
				if x < 0 || y < 0 || x >= size || y >= size {
					continue
				}
				if dx, dy := float64(x)-cx, float64(y)-cy; dx*dx+dy*dy <= r*r {
					img.SetGray(x, y, color.Gray{Y: shade})
				}
			}
		}
	}
	return img
}

// grainPage is film grain over a radial vignette.
func grainPage(seed int64, size int) *image.Gray {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)-c, float64(y)-c) / c
			v := 200 - 80*d + rng.NormFloat64()*25
			img.SetGray(x, y, color.Gray{Y: uint8(math.Max(0, math.Min(255, v)))})
		}
	}
	return img
}

func TestHough_UnstructuredContent(t *testing.T) {
	pages := map[string]*image.Gray{
		"noise":  noisePage(1, 300),
		"noise2": noisePage(7, 257),
		"blobs":  blobPage(3, 320, 40),
		"grain":  grainPage(5, 300),
	}
	for name, page := range pages {
		angle, ok := skew.NewHough().Detect(page, core.DefaultSkewParams())
		if ok {
			assert.Less(t, math.Abs(angle), 5.0, "%s reported %v", name, angle)
		}
	}
}

func TestHough_MinDeviationGatesAcceptance(t *testing.T) {
	page := linedPage(t, 300, 4)
	params := core.DefaultSkewParams()

	_, ok := skew.NewHough().Detect(page, params)
	require.True(t, ok)

	params.MinDeviation = 1e9
	angle, ok := skew.NewHough().Detect(page, params)
	assert.False(t, ok)
	assert.Zero(t, angle)
}

// ── White lines ───────────────────────────────────────────────────────────────

func TestWhiteLines_StaysInRange(t *testing.T) {
	params := core.DefaultSkewParams()
	angle, ok := skew.NewWhiteLines().Detect(linedPage(t, 400, 3), params)
	if ok {
		assert.GreaterOrEqual(t, angle, params.MinAngle)
		assert.LessOrEqual(t, angle, params.MaxAngle)
	}
	_, ok = skew.NewWhiteLines().Detect(nil, params)
	assert.False(t, ok)
}

// ── Registry ──────────────────────────────────────────────────────────────────

func TestNew(t *testing.T) {
	for method, want := range map[string]string{"": "hough", "hough": "hough", "whitelines": "whitelines"} {
		det, err := skew.New(method)
		require.NoError(t, err)
		assert.Equal(t, want, det.Name())
	}

	_, err := skew.New("fft")
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryInvalidParameter))
}

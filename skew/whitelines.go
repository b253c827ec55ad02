package skew

import (
	"image"
	"math"

	"github.com/bmharper/docangle"

	"github.com/olafgeibig/foto2pdf/core"
)

// WhiteLines finds the angle at which the gaps between text lines are
// whitest, using docangle. It suits text pages better than photographs.
// NumPeaks and MinDeviation are not used by this detector.
type WhiteLines struct{}

// NewWhiteLines returns a docangle-backed detector.
func NewWhiteLines() *WhiteLines { return &WhiteLines{} }

func (w *WhiteLines) Name() string { return "whitelines" }

// Detect implements core.SkewDetector. docangle reports 0 when nothing
// stands out, which is treated as no detection.
func (w *WhiteLines) Detect(gray *image.Gray, params core.SkewParams) (float64, bool) {
	if gray == nil || params.MinAngle >= params.MaxAngle {
		return 0, false
	}
	p := docangle.NewWhiteLinesParams()
	p.Include90Degrees = false
	p.MinDeltaDegrees = params.MinAngle
	p.MaxDeltaDegrees = params.MaxAngle

	_, angle := docangle.GetAngleWhiteLines(docAngleImage(gray), p)
	if angle == 0 || math.IsNaN(angle) {
		return 0, false
	}
	return math.Max(params.MinAngle, math.Min(params.MaxAngle, angle)), true
}

// docAngleImage packs g into docangle's tightly strided 8-bit layout.
func docAngleImage(g *image.Gray) *docangle.Image {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := g.Pix
	if g.Stride != w || b.Min != (image.Point{}) {
		pix = make([]byte, w*h)
		for y := 0; y < h; y++ {
			off := g.PixOffset(b.Min.X, b.Min.Y+y)
			copy(pix[y*w:(y+1)*w], g.Pix[off:off+w])
		}
	}
	return &docangle.Image{Pixels: pix, Width: w, Height: h}
}

var _ core.SkewDetector = (*WhiteLines)(nil)

// Package skew estimates how far page content is rotated away from the
// horizontal. Angles are in degrees, counter-clockwise positive: a line that
// rises to the right has a positive angle.
package skew

import (
	"image"
	"math"
	"sort"

	"github.com/olafgeibig/foto2pdf/core"
	"github.com/olafgeibig/foto2pdf/transform"
)

const (
	// Detection runs on a copy whose longer side is at most this many pixels.
	houghMaxSide = 1024

	coarseStep  = 0.5
	refineStep  = 0.05
	refineRange = 0.5

	// Sobel magnitude below this is never an edge, whatever the image contrast.
	edgeFloor = 64.0
	// Edges must also reach this share of the strongest gradient.
	edgeRelative = 0.25

	// Share of each image side over which edge votes fade out.
	taperShare = 0.125

	// A peak must beat the median of the coarse profile by contrastUnit ×
	// MinDeviation times the self energy of the votes.
	contrastUnit = 4.0
)

// Hough scores candidate angles by projecting edge pixels onto the normals of
// two line families, near-horizontal lines at angle a and near-vertical lines
// at a+90°. Aligned lines collapse into sharp projection peaks, so the energy
// of the profile's first differences peaks at the content angle.
//
// Votes are split linearly between neighbouring bins, jittered off the pixel
// lattice and tapered towards the image border, and each vote's own share of
// the energy is removed. Content without line structure then scores about
// the same at every angle.
type Hough struct {
	MaxSide int // 0 = 1024
}

// NewHough returns a detector with default settings.
func NewHough() *Hough { return &Hough{} }

func (h *Hough) Name() string { return "hough" }

// Detect implements core.SkewDetector. The strongest refined peak is accepted
// when its score exceeds the median of the coarse profile by at least
// 4 × params.MinDeviation times the vote self energy. Maxima on the ends of
// the searched range are not peaks.
func (h *Hough) Detect(gray *image.Gray, params core.SkewParams) (float64, bool) {
	if gray == nil || params.MinAngle >= params.MaxAngle {
		return 0, false
	}
	maxSide := h.MaxSide
	if maxSide <= 0 {
		maxSide = houghMaxSide
	}
	g := transform.Downscale(gray, maxSide)

	pts := edgePoints(g)
	if len(pts) < 2 {
		return 0, false
	}
	acc := newAccumulator(g.Bounds().Dx(), g.Bounds().Dy(), pts)

	// Coarse sweep.
	n := int(math.Floor((params.MaxAngle-params.MinAngle)/coarseStep)) + 1
	if n < 3 {
		return 0, false
	}
	angles := make([]float64, n)
	scores := make([]float64, n)
	var selfSum float64
	for i := range angles {
		angles[i] = params.MinAngle + float64(i)*coarseStep
		scores[i], _ = acc.score(angles[i])
	}
	baseline := median(scores)

	numPeaks := params.NumPeaks
	if numPeaks < 1 {
		numPeaks = 1
	}
	peaks := interiorMaxima(scores)
	if len(peaks) == 0 {
		return 0, false
	}
	sort.SliceStable(peaks, func(i, j int) bool { return scores[peaks[i]] > scores[peaks[j]] })
	if len(peaks) > numPeaks {
		peaks = peaks[:numPeaks]
	}

	bestAngle, bestScore := 0.0, math.Inf(-1)
	for _, p := range peaks {
		lo := math.Max(params.MinAngle, angles[p]-refineRange)
		hi := math.Min(params.MaxAngle, angles[p]+refineRange)
		steps := int(math.Round((hi - lo) / refineStep))
		for k := 0; k <= steps; k++ {
			a := lo + float64(k)*refineStep
			if s, self := acc.score(a); s > bestScore {
				bestAngle, bestScore, selfSum = a, s, self
			}
		}
	}

	if selfSum <= 0 || (bestScore-baseline)/selfSum < contrastUnit*params.MinDeviation {
		return 0, false
	}
	return math.Round(bestAngle*1000) / 1000, true
}

// ── Edge extraction ───────────────────────────────────────────────────────────

// point is an edge vote: jittered position and border taper weight.
type point struct{ x, y, w float64 }

// edgePoints returns pixels whose 3×3 Sobel gradient magnitude clears both the
// absolute floor and the relative threshold.
func edgePoints(g *image.Gray) []point {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return nil
	}
	mag := make([]float64, w*h)
	peak := 0.0
	px := func(x, y int) float64 { return float64(g.Pix[y*g.Stride+x]) }
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := px(x+1, y-1) + 2*px(x+1, y) + px(x+1, y+1) -
				px(x-1, y-1) - 2*px(x-1, y) - px(x-1, y+1)
			gy := px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1) -
				px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1)
			m := math.Hypot(gx, gy)
			mag[y*w+x] = m
			if m > peak {
				peak = m
			}
		}
	}
	thresh := math.Max(edgeFloor, edgeRelative*peak)
	var pts []point
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			if mag[y*w+x] < thresh {
				continue
			}
			wt := taper(float64(x), w) * taper(float64(y), h)
			if wt == 0 {
				continue
			}
			dx, dy := jitter(x, y)
			pts = append(pts, point{x: float64(x) + dx, y: float64(y) + dy, w: wt})
		}
	}
	return pts
}

// taper is a raised cosine that rises from 0 at the border to 1 at
// taperShare of the side length.
func taper(v float64, size int) float64 {
	ramp := taperShare * float64(size)
	d := math.Min(v+0.5, float64(size)-0.5-v)
	if ramp <= 0 || d >= ramp {
		return 1
	}
	if d <= 0 {
		return 0
	}
	return 0.5 - 0.5*math.Cos(math.Pi*d/ramp)
}

// jitter returns a fixed pseudo-random offset in [-0.5, 0.5)² for pixel (x, y).
func jitter(x, y int) (float64, float64) {
	z := uint64(x)*0x9e3779b97f4a7c15 ^ uint64(y)*0xc2b2ae3d27d4eb4f
	z ^= z >> 30
	z *= 0xbf58476d1ce4e5b9
	z ^= z >> 27
	z *= 0x94d049bb133111eb
	z ^= z >> 31
	return float64(z&0xffff)/65536 - 0.5, float64((z>>16)&0xffff)/65536 - 0.5
}

// ── Projection accumulator ────────────────────────────────────────────────────

type accumulator struct {
	pts    []point
	offset float64
	horiz  []float64
	vert   []float64
}

func newAccumulator(w, h int, pts []point) *accumulator {
	size := 2*(w+h) + 8
	return &accumulator{
		pts:    pts,
		offset: float64(w+h) + 4,
		horiz:  make([]float64, size),
		vert:   make([]float64, size),
	}
}

// score returns the cross energy for angle deg: the squared first
// differences of both projection profiles minus the part every vote adds on
// its own, which is returned as self. Not safe for concurrent use.
func (a *accumulator) score(deg float64) (cross, self float64) {
	clear(a.horiz)
	clear(a.vert)
	rad := deg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	for _, p := range a.pts {
		// Normal of a line rising at deg, then of the perpendicular family.
		self += vote(a.horiz, p.x*sin+p.y*cos+a.offset, p.w)
		self += vote(a.vert, p.x*cos-p.y*sin+a.offset, p.w)
	}
	var total float64
	for _, bins := range [][]float64{a.horiz, a.vert} {
		for i := 1; i < len(bins); i++ {
			d := bins[i] - bins[i-1]
			total += d * d
		}
	}
	return total - self, self
}

// vote splits weight w between the two bins around rho and returns the
// energy that split contributes to the first differences by itself.
func vote(bins []float64, rho, w float64) float64 {
	i := int(rho)
	f := rho - float64(i)
	lo, hi := w*(1-f), w*f
	bins[i] += lo
	bins[i+1] += hi
	return lo*lo + (hi-lo)*(hi-lo) + hi*hi
}

// interiorMaxima returns local maxima of s that are not its first or last
// sample.
func interiorMaxima(s []float64) []int {
	var out []int
	for i := 1; i < len(s)-1; i++ {
		if s[i-1] > s[i] || s[i+1] > s[i] {
			continue
		}
		out = append(out, i)
	}
	return out
}

func median(s []float64) float64 {
	c := append([]float64(nil), s...)
	sort.Float64s(c)
	m := len(c) / 2
	if len(c)%2 == 0 {
		return (c[m-1] + c[m]) / 2
	}
	return c[m]
}

var _ core.SkewDetector = (*Hough)(nil)

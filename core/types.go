package core

import (
	"context"
	"image"
	"image/draw"
	"math"
	"strings"
	"time"

	apperrors "github.com/olafgeibig/foto2pdf/errors"
)

// Format identifies an image codec.
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatWebP    Format = "webp"
	FormatUnknown Format = "unknown"
)

// Extension returns the file extension written for f, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatPNG:
		return ".png"
	case FormatWebP:
		return ".webp"
	}
	return ""
}

// ParseFormat maps a user supplied name ("png", "jpg", "JPEG", ...) to a Format.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "jpeg", "jpg":
		return FormatJPEG, true
	case "png":
		return FormatPNG, true
	case "webp":
		return FormatWebP, true
	}
	return FormatUnknown, false
}

// ColorMode represents the pixel model of a decoded image.
type ColorMode string

const (
	ColorModeRGB     ColorMode = "rgb"
	ColorModeRGBA    ColorMode = "rgba"
	ColorModeGray    ColorMode = "gray"
	ColorModeIndexed ColorMode = "indexed"
	ColorModeCMYK    ColorMode = "cmyk"
)

// ColorModeOf inspects the concrete image type.
func ColorModeOf(img image.Image) ColorMode {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return ColorModeGray
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		return ColorModeRGBA
	case *image.Paletted:
		return ColorModeIndexed
	case *image.CMYK:
		return ColorModeCMYK
	}
	return ColorModeRGB
}

// ── Pixel buffer ──────────────────────────────────────────────────────────────

// ImageBuffer owns a decoded raster. Its image always has its origin at (0,0)
// and transforms never modify it in place; they return a new buffer.
type ImageBuffer struct {
	Image image.Image
	Mode  ColorMode
}

// NewImageBuffer wraps img, copying it when its bounds do not start at (0,0).
func NewImageBuffer(img image.Image) *ImageBuffer {
	b := img.Bounds()
	if b.Min != (image.Point{}) {
		dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return &ImageBuffer{Image: dst, Mode: ColorModeOf(img)}
	}
	return &ImageBuffer{Image: img, Mode: ColorModeOf(img)}
}

func (b *ImageBuffer) Width() int  { return b.Image.Bounds().Dx() }
func (b *ImageBuffer) Height() int { return b.Image.Bounds().Dy() }
func (b *ImageBuffer) Size() Size  { return Size{Width: b.Width(), Height: b.Height()} }

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ImageInfo describes an input image as it was decoded.
type ImageInfo struct {
	Filename    string    `json:"filename"`
	Size        Size      `json:"size"`
	Format      Format    `json:"format"`
	Mode        ColorMode `json:"mode"`
	Orientation int       `json:"orientation,omitempty"` // EXIF orientation tag (1-8), 0 when absent
	SizeBytes   int64     `json:"size_bytes"`
}

// CropBox is a pixel rectangle: Left and Top inclusive, Right and Bottom exclusive.
type CropBox struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

func (c CropBox) Width() int            { return c.Right - c.Left }
func (c CropBox) Height() int           { return c.Bottom - c.Top }
func (c CropBox) Rect() image.Rectangle { return image.Rect(c.Left, c.Top, c.Right, c.Bottom) }

// Within reports whether the box is non-empty and lies inside a w×h image.
func (c CropBox) Within(w, h int) bool {
	return c.Left >= 0 && c.Top >= 0 && c.Left < c.Right && c.Top < c.Bottom && c.Right <= w && c.Bottom <= h
}

// ── Parameters ────────────────────────────────────────────────────────────────

// SkewParams bounds the skew search.
type SkewParams struct {
	NumPeaks     int     `yaml:"num_peaks"`
	MinAngle     float64 `yaml:"min_angle"`
	MaxAngle     float64 `yaml:"max_angle"`
	MinDeviation float64 `yaml:"min_deviation"`
}

// DefaultSkewParams returns the search bounds used when none are configured.
func DefaultSkewParams() SkewParams {
	return SkewParams{NumPeaks: 20, MinAngle: -45, MaxAngle: 45, MinDeviation: 1.0}
}

// Validate rejects empty or inverted ranges and non-finite values.
func (p SkewParams) Validate() error {
	const op = "skew.params"
	switch {
	case p.NumPeaks < 1:
		return apperrors.Newf(apperrors.CategoryInvalidParameter, op, "%w: num_peaks %d < 1", apperrors.ErrInvalidSkewParams, p.NumPeaks)
	case !finite(p.MinAngle) || !finite(p.MaxAngle) || !finite(p.MinDeviation):
		return apperrors.Newf(apperrors.CategoryInvalidParameter, op, "%w: non-finite value", apperrors.ErrInvalidSkewParams)
	case p.MinAngle >= p.MaxAngle:
		return apperrors.Newf(apperrors.CategoryInvalidParameter, op, "%w: min_angle %.2f >= max_angle %.2f", apperrors.ErrInvalidSkewParams, p.MinAngle, p.MaxAngle)
	case p.MinAngle < -90 || p.MaxAngle > 90:
		return apperrors.Newf(apperrors.CategoryInvalidParameter, op, "%w: angles must lie within [-90, 90]", apperrors.ErrInvalidSkewParams)
	case p.MinDeviation < 0:
		return apperrors.Newf(apperrors.CategoryInvalidParameter, op, "%w: min_deviation must not be negative", apperrors.ErrInvalidSkewParams)
	}
	return nil
}

// ProcessParams controls the single-image pipeline.
type ProcessParams struct {
	MarginPercent float64
	ForcePortrait bool
	AutoOrient    bool // apply the EXIF orientation tag before skew detection
	Skew          SkewParams
}

// DefaultProcessParams returns a 5% margin, portrait output and default skew bounds.
func DefaultProcessParams() ProcessParams {
	return ProcessParams{MarginPercent: 5, ForcePortrait: true, Skew: DefaultSkewParams()}
}

// ValidateMargin accepts any finite margin in [0, 100].
func ValidateMargin(m float64) error {
	if math.IsNaN(m) || m < 0 || m > 100 {
		return apperrors.Newf(apperrors.CategoryInvalidParameter, "margin", "%w: got %v", apperrors.ErrInvalidMargin, m)
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// BatchOptions configures one batch run.
type BatchOptions struct {
	OutputRoot    string
	Prefix        string
	Format        Format
	MarginPercent float64
	ForcePortrait bool
	AutoOrient    bool
	Workers       int // 0 = runtime.NumCPU()
	Skew          SkewParams
}

// DefaultBatchOptions returns options matching the command line defaults.
func DefaultBatchOptions(outputRoot string) BatchOptions {
	p := DefaultProcessParams()
	return BatchOptions{
		OutputRoot:    outputRoot,
		Prefix:        "processed_",
		Format:        FormatPNG,
		MarginPercent: p.MarginPercent,
		ForcePortrait: p.ForcePortrait,
		Skew:          p.Skew,
	}
}

// ProcessParams extracts the per-image parameters.
func (o BatchOptions) ProcessParams() ProcessParams {
	return ProcessParams{
		MarginPercent: o.MarginPercent,
		ForcePortrait: o.ForcePortrait,
		AutoOrient:    o.AutoOrient,
		Skew:          o.Skew,
	}
}

// ── Pipeline values ───────────────────────────────────────────────────────────

// ProcessingInfo records what the pipeline measured and did for one image.
type ProcessingInfo struct {
	Original     ImageInfo                `json:"original"`
	SkewAngle    float64                  `json:"skew_angle"` // degrees, counter-clockwise positive; 0 when not detected
	SkewDetected bool                     `json:"skew_detected"`
	Rotated      bool                     `json:"rotated"`
	CropBox      CropBox                  `json:"crop_box"`
	FinalSize    Size                     `json:"final_size"`
	StepTimings  map[string]time.Duration `json:"-"`
}

// ImageData is the value passed between pipeline steps. Steps copy it
// (out := *img) and fill in the fields they own.
type ImageData struct {
	Path   string
	Raw    []byte
	Format Format
	Buffer *ImageBuffer
	Info   ImageInfo

	SkewAngle    float64
	SkewDetected bool
	Rotated      bool
	CropBox      CropBox
}

// Step is the fundamental pipeline building block. Each Step transforms an
// *ImageData value and must be safe for concurrent use across goroutines.
type Step interface {
	Name() string
	Execute(ctx context.Context, img *ImageData) (*ImageData, error)
}

// Hook is an optional observer invoked around pipeline steps.
type Hook interface {
	BeforeStep(ctx context.Context, stepName string, img *ImageData)
	AfterStep(ctx context.Context, stepName string, img *ImageData, d time.Duration, err error)
}

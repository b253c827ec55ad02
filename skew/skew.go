package skew

import (
	"fmt"

	"github.com/olafgeibig/foto2pdf/core"
	apperrors "github.com/olafgeibig/foto2pdf/errors"
)

// Detector method names accepted by New.
const (
	MethodHough      = "hough"
	MethodWhiteLines = "whitelines"
)

// New returns the detector registered under method. An empty method selects
// the Hough detector.
func New(method string) (core.SkewDetector, error) {
	switch method {
	case "", MethodHough:
		return NewHough(), nil
	case MethodWhiteLines:
		return NewWhiteLines(), nil
	}
	return nil, apperrors.New(apperrors.CategoryInvalidParameter, "skew.new",
		fmt.Errorf("unknown skew method %q (want %q or %q)", method, MethodHough, MethodWhiteLines))
}

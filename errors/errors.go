package errors

import (
	"errors"
	"fmt"
)

// Category classifies a failure. Its string value is what batch summaries
// count under ErrorTypes, so values are stable identifiers.
type Category string

const (
	CategoryInputNotFound      Category = "InputNotFound"
	CategoryInputNotADirectory Category = "InputNotADirectory"
	CategoryOutputUnavailable  Category = "OutputUnavailable"
	CategoryUnreadableImage    Category = "UnreadableImage"
	CategoryInvalidParameter   Category = "InvalidParameter"
	CategoryIOFailure          Category = "IOFailure"
	CategoryImageTooLarge      Category = "ImageTooLarge"
	CategoryEncodeFailure      Category = "EncodeFailure"
	CategoryCanceled           Category = "Canceled"
	CategoryInternal           Category = "Internal"
)

// ProcessingError is the structured error type used throughout the module.
type ProcessingError struct {
	Category Category
	Op       string // operation name
	Path     string // input or output path, when known
	Err      error
}

func (e *ProcessingError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s %s: %v", e.Category, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Category, e.Op, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// New creates a ProcessingError.
func New(category Category, op string, err error) *ProcessingError {
	return &ProcessingError{Category: category, Op: op, Err: err}
}

// Newf creates a ProcessingError from a formatted message.
func Newf(category Category, op string, format string, args ...any) *ProcessingError {
	return New(category, op, fmt.Errorf(format, args...))
}

// Wrap wraps an existing error with context. A nil err yields nil.
func Wrap(category Category, op string, err error) error {
	if err == nil {
		return nil
	}
	return New(category, op, err)
}

// WithPath wraps err and records the path it concerns.
func WithPath(category Category, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &ProcessingError{Category: category, Op: op, Path: path, Err: err}
}

// CategoryOf returns the category of the outermost ProcessingError in err's
// chain, or CategoryInternal when err carries none.
func CategoryOf(err error) Category {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return CategoryInternal
}

// IsCategory reports whether err belongs to the given category.
func IsCategory(err error, cat Category) bool {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Category == cat
	}
	return false
}

// Sentinel errors for common failure modes.
var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrInvalidMargin     = errors.New("margin percent must be between 0 and 100")
	ErrInvalidSkewParams = errors.New("invalid skew parameters")
	ErrImageTooLarge     = errors.New("image exceeds configured limit")
	ErrEmptyInput        = errors.New("empty input")
	ErrOutputExists      = errors.New("output file already exists")
	ErrNotADirectory     = errors.New("not a directory")
)

// AttachPath records path on err when err carries a ProcessingError without
// one. A ProcessingError at the top of the chain is copied with the path set.
// One wrapped deeper is left alone and the whole chain is wrapped in a new
// ProcessingError of the same category and op, so outer messages survive.
// Other errors are returned unchanged.
func AttachPath(err error, path string) error {
	var pe *ProcessingError
	if !errors.As(err, &pe) || pe.Path != "" {
		return err
	}
	if top, ok := err.(*ProcessingError); ok {
		cp := *top
		cp.Path = path
		return &cp
	}
	return &ProcessingError{Category: pe.Category, Op: pe.Op, Path: path, Err: err}
}

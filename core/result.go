package core

import (
	apperrors "github.com/olafgeibig/foto2pdf/errors"
)

// BatchResult is the outcome for one input. It holds either an output path
// with processing info, or an error; fields are set once by the constructors.
type BatchResult struct {
	input  string
	output string
	info   *ProcessingInfo
	err    error
}

// NewSuccess records a written output.
func NewSuccess(input, output string, info *ProcessingInfo) BatchResult {
	return BatchResult{input: input, output: output, info: info}
}

// NewFailure records a failed input. A nil err is stored as an Internal error
// so that the result still counts as failed.
func NewFailure(input string, err error) BatchResult {
	if err == nil {
		err = apperrors.New(apperrors.CategoryInternal, "batch.result", apperrors.ErrEmptyInput)
	}
	return BatchResult{input: input, err: err}
}

func (r BatchResult) Input() string         { return r.input }
func (r BatchResult) Output() string        { return r.output }
func (r BatchResult) Info() *ProcessingInfo { return r.info }
func (r BatchResult) Err() error            { return r.err }

// Success reports whether an output file was written.
func (r BatchResult) Success() bool { return r.err == nil && r.output != "" }

// Category returns the error category, or "" for a success.
func (r BatchResult) Category() apperrors.Category {
	if r.err == nil {
		if r.output == "" {
			return categoryUnknown
		}
		return ""
	}
	return apperrors.CategoryOf(r.err)
}

// categoryUnknown labels the zero BatchResult, which has neither output nor error.
const categoryUnknown apperrors.Category = "Unknown"

package pipeline

import (
	"context"

	"github.com/olafgeibig/foto2pdf/core"
	apperrors "github.com/olafgeibig/foto2pdf/errors"
)

// Limits caps the resources a single input may use.
type Limits struct {
	MaxBytes  int64
	MaxPixels int64
	ChunkSize int
}

// Orchestrator runs Decode → DetectSkew → Rotate → Crop for one input. It
// holds no per-image state and is safe for concurrent use.
type Orchestrator struct {
	registry core.Registry
	detector core.SkewDetector
	limits   Limits
	hooks    []core.Hook
}

// NewOrchestrator wires the single-image pipeline.
func NewOrchestrator(reg core.Registry, det core.SkewDetector, limits Limits) *Orchestrator {
	return &Orchestrator{registry: reg, detector: det, limits: limits}
}

// AddHook registers an observer for every step of every image. Register hooks
// before processing starts.
func (o *Orchestrator) AddHook(h core.Hook) { o.hooks = append(o.hooks, h) }

// Pipeline builds the step sequence for params.
func (o *Orchestrator) Pipeline(params core.ProcessParams) *Pipeline {
	return New().
		Use(
			&DecodeStep{
				Registry:   o.registry,
				MaxBytes:   o.limits.MaxBytes,
				MaxPixels:  o.limits.MaxPixels,
				ChunkSize:  o.limits.ChunkSize,
				AutoOrient: params.AutoOrient,
			},
			&DetectSkewStep{Detector: o.detector, Params: params.Skew},
			&RotateStep{},
			&CropStep{MarginPercent: params.MarginPercent, ForcePortrait: params.ForcePortrait},
		).
		AddHook(o.hooks...)
}

// Process validates params before touching the file, then runs the pipeline.
func (o *Orchestrator) Process(ctx context.Context, path string, params core.ProcessParams) (*core.ImageBuffer, *core.ProcessingInfo, error) {
	if err := core.ValidateMargin(params.MarginPercent); err != nil {
		return nil, nil, apperrors.AttachPath(err, path)
	}
	if err := params.Skew.Validate(); err != nil {
		return nil, nil, apperrors.AttachPath(err, path)
	}

	res, timings, err := o.Pipeline(params).Run(ctx, &core.ImageData{Path: path})
	if err != nil {
		return nil, nil, err
	}

	info := &core.ProcessingInfo{
		Original:     res.Info,
		SkewAngle:    res.SkewAngle,
		SkewDetected: res.SkewDetected,
		Rotated:      res.Rotated,
		CropBox:      res.CropBox,
		FinalSize:    res.Buffer.Size(),
		StepTimings:  timings,
	}
	return res.Buffer, info, nil
}

var _ core.ImageProcessor = (*Orchestrator)(nil)

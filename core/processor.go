package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/olafgeibig/foto2pdf/errors"
)

// Scheduler runs an ImageProcessor over many inputs on a bounded worker pool.
// A Scheduler is safe for concurrent use; each Run is independent.
type Scheduler struct {
	proc       ImageProcessor
	registry   Registry
	store      OutputStore
	encodeOpts EncodeOptions
	logger     Logger
	metrics    MetricsCollector

	// Atomic counters across all runs.
	processedCount int64
	errorCount     int64
}

// NewScheduler wires a scheduler. The registry supplies the output encoder and
// the store persists encoded files.
func NewScheduler(proc ImageProcessor, reg Registry, store OutputStore) *Scheduler {
	return &Scheduler{
		proc:     proc,
		registry: reg,
		store:    store,
		logger:   NopLogger{},
	}
}

// SetLogger attaches a structured logger.
func (s *Scheduler) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	s.logger = l
}

// SetMetrics attaches a metrics collector.
func (s *Scheduler) SetMetrics(m MetricsCollector) { s.metrics = m }

// SetEncodeOptions sets the options passed to the output encoder.
func (s *Scheduler) SetEncodeOptions(o EncodeOptions) { s.encodeOpts = o }

// Run validates the batch setup, then processes inputs concurrently. Results
// arrive in completion order; the channel is closed once every input has
// exactly one result. Setup failures are returned as an error and no channel.
//
// When ctx is canceled, inputs that have not started yet are reported as
// Canceled failures so that the result count still equals len(inputs).
func (s *Scheduler) Run(ctx context.Context, inputs []string, opts BatchOptions) (<-chan BatchResult, error) {
	const op = "batch.run"

	if opts.Workers < 0 {
		return nil, apperrors.Newf(apperrors.CategoryInvalidParameter, op, "worker count must not be negative, got %d", opts.Workers)
	}
	if opts.Format == "" {
		opts.Format = FormatPNG
	}
	enc, ok := s.registry.EncoderFor(opts.Format)
	if !ok || !enc.CanEncode(opts.Format) {
		return nil, apperrors.Newf(apperrors.CategoryInvalidParameter, op, "%w: no encoder for %q (have %v)", apperrors.ErrUnsupportedFormat, opts.Format, s.registry.EncoderFormats())
	}
	if err := s.store.Prepare(opts.OutputRoot); err != nil {
		return nil, apperrors.WithPath(apperrors.CategoryOutputUnavailable, op, opts.OutputRoot, err)
	}

	results := make(chan BatchResult, len(inputs))
	if len(inputs) == 0 {
		close(results)
		return results, nil
	}

	workers := opts.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	runID := uuid.NewString()
	logger := s.logger
	logger.Info("batch.start",
		"run_id", runID,
		"inputs", len(inputs),
		"workers", workers,
		"output_root", opts.OutputRoot,
		"format", opts.Format,
	)

	start := time.Now()
	var failed int64
	jobs := make(chan string)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for input := range jobs {
				r := s.processOne(ctx, runID, input, enc, opts)
				if !r.Success() {
					atomic.AddInt64(&failed, 1)
				}
				results <- r
			}
		}()
	}

	// Producer. Stops feeding on cancellation and reports the remainder.
	go func() {
		defer close(jobs)
		for i, input := range inputs {
			select {
			case jobs <- input:
			case <-ctx.Done():
				for _, rest := range inputs[i:] {
					r := NewFailure(rest, apperrors.WithPath(apperrors.CategoryCanceled, op, rest, ctx.Err()))
					s.record(runID, r)
					atomic.AddInt64(&failed, 1)
					results <- r
				}
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		logger.Info("batch.done",
			"run_id", runID,
			"inputs", len(inputs),
			"failed", atomic.LoadInt64(&failed),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		close(results)
	}()

	return results, nil
}

// processOne never panics and always yields a result for input.
func (s *Scheduler) processOne(ctx context.Context, runID, input string, enc Encoder, opts BatchOptions) (res BatchResult) {
	defer func() {
		if rec := recover(); rec != nil {
			res = NewFailure(input, apperrors.WithPath(apperrors.CategoryInternal, "batch.worker", input, fmt.Errorf("panic: %v", rec)))
		}
		s.record(runID, res)
	}()

	if err := ctx.Err(); err != nil {
		return NewFailure(input, apperrors.WithPath(apperrors.CategoryCanceled, "batch.worker", input, err))
	}

	buf, info, err := s.proc.Process(ctx, input, opts.ProcessParams())
	if err != nil {
		return NewFailure(input, err)
	}

	data, err := enc.Encode(ctx, buf, s.encodeOpts)
	if err != nil {
		if !isProcessingError(err) {
			err = apperrors.WithPath(apperrors.CategoryEncodeFailure, "batch.encode", input, err)
		}
		return NewFailure(input, err)
	}
	if s.metrics != nil {
		s.metrics.RecordThroughput(int64(len(data)))
	}

	out, err := s.store.Put(ctx, opts.OutputRoot, OutputName(input, opts.Prefix, opts.Format), data)
	if err != nil {
		if !isProcessingError(err) {
			err = apperrors.WithPath(apperrors.CategoryIOFailure, "batch.write", input, err)
		}
		return NewFailure(input, err)
	}
	return NewSuccess(input, out, info)
}

func (s *Scheduler) record(runID string, r BatchResult) {
	status := "success"
	switch {
	case r.Success():
		atomic.AddInt64(&s.processedCount, 1)
		s.logger.Info("batch.item.done", "run_id", runID, "input", r.Input(), "output", r.Output())
	case r.Category() == apperrors.CategoryUnreadableImage:
		status = "skipped"
		s.logger.Warn("batch.item.skipped", "run_id", runID, "input", r.Input(), "error", errString(r.Err()))
	default:
		status = "errored"
		atomic.AddInt64(&s.errorCount, 1)
		s.logger.Error("batch.item.error", "run_id", runID, "input", r.Input(), "category", string(r.Category()), "error", errString(r.Err()))
	}
	if s.metrics != nil {
		s.metrics.RecordResult(status)
	}
}

func errString(err error) string {
	if err == nil {
		return "no output written"
	}
	return err.Error()
}

func isProcessingError(err error) bool {
	var pe *apperrors.ProcessingError
	return errors.As(err, &pe)
}

// OutputName builds the flat output file name: prefix + input stem + the
// extension of f. Inputs from different directories with the same base name
// map to the same output name.
func OutputName(input, prefix string, f Format) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return prefix + stem + f.Extension()
}

// ProcessedCount returns the total number of successfully written outputs.
func (s *Scheduler) ProcessedCount() int64 { return atomic.LoadInt64(&s.processedCount) }

// ErrorCount returns the total number of failed inputs, skipped ones excluded.
func (s *Scheduler) ErrorCount() int64 { return atomic.LoadInt64(&s.errorCount) }

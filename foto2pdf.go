// Package foto2pdf straightens scanned photos and crops them to the A4 page
// ratio, one directory tree at a time.
package foto2pdf

import (
	"context"
	"os"

	"github.com/olafgeibig/foto2pdf/adapters/decoder"
	"github.com/olafgeibig/foto2pdf/adapters/encoder"
	"github.com/olafgeibig/foto2pdf/adapters/storage"
	"github.com/olafgeibig/foto2pdf/config"
	"github.com/olafgeibig/foto2pdf/core"
	"github.com/olafgeibig/foto2pdf/pipeline"
	"github.com/olafgeibig/foto2pdf/scanner"
	"github.com/olafgeibig/foto2pdf/skew"
)

// Re-export Format constants for convenience.
const (
	JPEG = core.FormatJPEG
	PNG  = core.FormatPNG
	WebP = core.FormatWebP
)

// DefaultConfig returns a sensible production configuration.
func DefaultConfig() config.Config { return config.Default() }

// Processor is the primary entry point.
type Processor struct {
	cfg   config.Config
	reg   *core.DefaultRegistry
	orch  *pipeline.Orchestrator
	sched *core.Scheduler
}

// New creates a fully wired Processor with the stdlib JPEG, PNG and WebP
// decoders and the JPEG and PNG encoders registered. WebP output needs an
// encoder registered through Registry, for example the libvips backend.
func New(cfg config.Config) (*Processor, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	reg := core.NewRegistry()
	reg.RegisterDecoder(core.FormatJPEG, decoder.NewJPEG())
	reg.RegisterDecoder(core.FormatPNG, decoder.NewPNG())
	reg.RegisterDecoder(core.FormatWebP, decoder.NewWebP())
	reg.RegisterEncoder(core.FormatJPEG, encoder.NewJPEG(cfg.Codec.JPEGQuality))
	reg.RegisterEncoder(core.FormatPNG, encoder.NewPNG())

	det, err := skew.New(cfg.Skew.Method)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewLocal(os.FileMode(cfg.Output.Permissions), storage.CollisionPolicy(cfg.Output.Collision))
	if err != nil {
		return nil, err
	}

	orch := pipeline.NewOrchestrator(reg, det, pipeline.Limits{
		MaxBytes:  cfg.Limits.MaxImageBytes,
		MaxPixels: cfg.Limits.MaxPixels,
		ChunkSize: cfg.Limits.ChunkSize,
	})

	sched := core.NewScheduler(orch, reg, store)
	sched.SetEncodeOptions(core.EncodeOptions{
		Quality:  cfg.Codec.JPEGQuality,
		Lossless: cfg.Codec.Lossless,
	})

	return &Processor{cfg: cfg, reg: reg, orch: orch, sched: sched}, nil
}

// SetLogger attaches a structured logger.
func (p *Processor) SetLogger(l core.Logger) { p.sched.SetLogger(l) }

// SetMetrics attaches a metrics collector.
func (p *Processor) SetMetrics(m core.MetricsCollector) { p.sched.SetMetrics(m) }

// AddHook registers an observer for pipeline step events. Register hooks
// before the first batch starts.
func (p *Processor) AddHook(h core.Hook) { p.orch.AddHook(h) }

// RegisterDecoder registers a custom decoder for the given format.
func (p *Processor) RegisterDecoder(f core.Format, d core.Decoder) { p.reg.RegisterDecoder(f, d) }

// RegisterEncoder registers a custom encoder for the given format.
func (p *Processor) RegisterEncoder(f core.Format, e core.Encoder) { p.reg.RegisterEncoder(f, e) }

// Options returns batch options for outputRoot derived from the Processor's
// configuration.
func (p *Processor) Options(outputRoot string) core.BatchOptions {
	f, _ := core.ParseFormat(p.cfg.OutputFormat)
	return core.BatchOptions{
		OutputRoot:    outputRoot,
		Prefix:        p.cfg.Prefix,
		Format:        f,
		MarginPercent: p.cfg.MarginPercent,
		ForcePortrait: p.cfg.ForcePortrait,
		AutoOrient:    p.cfg.AutoOrient,
		Workers:       p.cfg.WorkerCount,
		Skew:          p.cfg.Skew.SkewParams,
	}
}

// ProcessImages scans inputRoot for images and processes them into
// opts.OutputRoot. A missing or non-directory input root fails the whole call
// before any file is touched; per-file failures arrive as results.
func (p *Processor) ProcessImages(ctx context.Context, inputRoot string, opts core.BatchOptions) (<-chan core.BatchResult, error) {
	files, err := scanner.FindImageFiles(inputRoot)
	if err != nil {
		return nil, err
	}
	return p.sched.Run(ctx, files, opts)
}

// Run processes an explicit list of input files.
func (p *Processor) Run(ctx context.Context, inputs []string, opts core.BatchOptions) (<-chan core.BatchResult, error) {
	return p.sched.Run(ctx, inputs, opts)
}

// ProcessImage runs the single-image pipeline without writing any output.
func (p *Processor) ProcessImage(ctx context.Context, path string, params core.ProcessParams) (*core.ImageBuffer, *core.ProcessingInfo, error) {
	return p.orch.Process(ctx, path, params)
}

// Stats returns lightweight processing statistics.
func (p *Processor) Stats() (processed, errors int64) {
	return p.sched.ProcessedCount(), p.sched.ErrorCount()
}

// Summarize folds results into a summary.
func Summarize(results []core.BatchResult) core.BatchSummary { return core.Summarize(results) }

// Collect drains a result stream.
func Collect(ch <-chan core.BatchResult) []core.BatchResult { return core.Collect(ch) }

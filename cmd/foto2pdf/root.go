package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/olafgeibig/foto2pdf"
	"github.com/olafgeibig/foto2pdf/adapters/vips"
	"github.com/olafgeibig/foto2pdf/config"
	"github.com/olafgeibig/foto2pdf/core"
	"github.com/olafgeibig/foto2pdf/hooks"
	"github.com/olafgeibig/foto2pdf/scanner"
	"github.com/olafgeibig/foto2pdf/tui"
)

// errBatchFailed marks a run that finished with at least one errored item.
var errBatchFailed = errors.New("batch finished with errors")

type flags struct {
	prefix     string
	margin     float64
	landscape  bool
	workers    int
	format     string
	collision  string
	skewMethod string
	autoOrient bool
	configPath string
	logLevel   string
	logFormat  string
	progress   bool
}

// execute runs the command line and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errBatchFailed) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "foto2pdf <input_dir> <output_dir>",
		Short:         "Process photos to prepare them for PDF conversion.",
		Long:          "foto2pdf detects and corrects the skew of scanned photos, then crops each one to the A4 page ratio.",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, f.progress, args[0], args[1], stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	fl := cmd.Flags()
	fl.StringVar(&f.prefix, "prefix", "processed_", "prefix for output file names")
	fl.Float64Var(&f.margin, "margin", 5, "margin percentage trimmed from each edge (0-100)")
	fl.BoolVar(&f.landscape, "landscape", false, "produce landscape instead of portrait pages")
	fl.IntVar(&f.workers, "workers", 0, "number of parallel workers (0 = number of CPUs)")
	fl.StringVar(&f.format, "format", "png", "output format: png, jpeg or webp")
	fl.StringVar(&f.collision, "collision", "overwrite", "existing output files: overwrite, error or rename")
	fl.StringVar(&f.skewMethod, "skew-method", "hough", "skew detector: hough or whitelines")
	fl.BoolVar(&f.autoOrient, "auto-orient", false, "apply the EXIF orientation tag before processing")
	fl.StringVar(&f.configPath, "config", "", "YAML configuration file")
	fl.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	fl.StringVar(&f.logFormat, "log-format", "console", "log format: console or json")
	fl.BoolVar(&f.progress, "progress", false, "show an interactive progress view")
	return cmd
}

// resolveConfig layers explicitly set flags over the loaded configuration.
func resolveConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	set := cmd.Flags().Changed
	if set("prefix") {
		cfg.Prefix = f.prefix
	}
	if set("margin") {
		cfg.MarginPercent = f.margin
	}
	if set("landscape") {
		cfg.ForcePortrait = !f.landscape
	}
	if set("workers") {
		cfg.WorkerCount = f.workers
	}
	if set("format") {
		cfg.OutputFormat = f.format
	}
	if set("collision") {
		cfg.Output.Collision = f.collision
	}
	if set("skew-method") {
		cfg.Skew.Method = f.skewMethod
	}
	if set("auto-orient") {
		cfg.AutoOrient = f.autoOrient
	}
	if set("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if set("log-format") {
		cfg.LogFormat = f.logFormat
	}
	if !hooks.ValidLevel(cfg.LogLevel) {
		return config.Config{}, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg config.Config, progress bool, inputDir, outputDir string, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	level := cfg.LogLevel
	if progress {
		level = progressLogLevel(level)
	}
	logger := hooks.NewZerologLogger(hooks.LogConfig{
		Level:  level,
		Format: cfg.LogFormat,
		Output: stderr,
	})

	proc, err := foto2pdf.New(cfg)
	if err != nil {
		return err
	}
	if format, _ := core.ParseFormat(cfg.OutputFormat); cfg.Codec.Backend == config.BackendVips || format == core.FormatWebP {
		backend := vips.NewBackend(vips.BackendConfig{
			DefaultQuality: cfg.Codec.JPEGQuality,
			MaxWorkers:     cfg.WorkerCount,
		})
		defer backend.Shutdown()
		if cfg.Codec.Backend == config.BackendVips {
			vips.RegisterBackend(proc.Registry(), backend)
		} else {
			vips.RegisterWebPEncoder(proc.Registry(), backend)
		}
	}

	metrics := hooks.NewInMemoryMetrics()
	proc.SetLogger(logger)
	proc.SetMetrics(metrics)
	proc.AddHook(hooks.NewLoggingHook(logger))
	proc.AddHook(hooks.NewMetricsHook(metrics))

	files, err := scanner.FindImageFiles(inputDir)
	if err != nil {
		return err
	}
	results, err := proc.Run(ctx, files, proc.Options(outputDir))
	if err != nil {
		return err
	}

	var all []core.BatchResult
	if progress {
		all = watch(results, len(files), cancel, stdout)
	} else {
		all = foto2pdf.Collect(results)
	}

	summary := foto2pdf.Summarize(all)
	snap := metrics.Snapshot()
	logger.Info("batch.summary",
		"total", summary.Total,
		"success", summary.Success,
		"skipped", summary.Skipped,
		"errored", summary.Errored,
		"bytes_written", snap.TotalThroughputB,
	)
	fmt.Fprintln(stdout, tui.RenderSummary(tui.SummaryRows(summary)))

	if summary.Errored > 0 {
		return errBatchFailed
	}
	return nil
}

// progressLogLevel raises level to warn so per-item logs do not draw over the
// progress view.
func progressLogLevel(level string) string {
	if hooks.ParseLevel(level) < zerolog.WarnLevel {
		return "warn"
	}
	return level
}

// watch renders a progress view while draining results. The terminal is in raw
// mode while the view runs, so ctrl+c arrives as a key and cancel stops the run.
func watch(results <-chan core.BatchResult, total int, cancel context.CancelFunc, out io.Writer) []core.BatchResult {
	updates := make(chan core.BatchResult, total)
	program := tea.NewProgram(tui.NewModel(updates, total, cancel), tea.WithOutput(out))

	uiDone := make(chan struct{})
	go func() {
		_, _ = program.Run()
		close(uiDone)
	}()

	all := make([]core.BatchResult, 0, total)
	for r := range results {
		all = append(all, r)
		updates <- r
	}
	close(updates)
	<-uiDone
	return all
}

package exporter

import (
	"context"
	"log/slog"
	"time"

	"clipdeck/internal/apperrors"
	"clipdeck/internal/encoder"
	"clipdeck/internal/fileutil"
	"clipdeck/internal/logging"
	"clipdeck/internal/media"
	"clipdeck/internal/process"
)

// Kinds recorded on a Result.
const (
	KindTrim = "trim"
	KindPip  = "pip"
)

// Result describes a finished export.
type Result struct {
	Kind       string
	OutputPath string
	Inputs     []string
	// Window is the length of the main clip in seconds.
	Window     float64
	StartedAt  time.Time
	FinishedAt time.Time
}

// Exporter runs trim and overlay exports.
type Exporter struct {
	runner  process.Runner
	builder *encoder.Builder
	prober  *media.Prober
	logger  *slog.Logger
}

// New constructs an Exporter. prober may be nil, in which case overlay offsets
// fall back to filter expressions unless the intent carries a frame size.
func New(runner process.Runner, builder *encoder.Builder, prober *media.Prober, logger *slog.Logger) *Exporter {
	return &Exporter{
		runner:  runner,
		builder: builder,
		prober:  prober,
		logger:  logging.NewComponentLogger(logger, "exporter"),
	}
}

// Trim cuts [Start, End) out of Input and re-encodes it to Output.
func (e *Exporter) Trim(ctx context.Context, intent encoder.TrimIntent) (Result, error) {
	inv, err := e.builder.Trim(intent)
	if err != nil {
		return Result{}, err
	}
	result := Result{
		Kind:       KindTrim,
		OutputPath: intent.Output,
		Inputs:     []string{intent.Input},
		Window:     intent.End - intent.Start,
	}
	return e.run(ctx, inv, result)
}

// Overlay composites PipPath over MainPath. When MainFrame is unknown the
// main input is probed so the overlay lands at numeric offsets.
func (e *Exporter) Overlay(ctx context.Context, intent encoder.OverlayExportIntent) (Result, error) {
	if !intent.MainFrame.Known() && e.prober != nil && intent.MainPath != "" {
		intent.MainFrame = e.prober.FrameSize(ctx, intent.MainPath)
	}
	inv, err := e.builder.OverlayExport(intent)
	if err != nil {
		return Result{}, err
	}
	result := Result{
		Kind:       KindPip,
		OutputPath: intent.Output,
		Inputs:     []string{intent.MainPath, intent.PipPath},
		Window:     intent.MainEnd - intent.MainStart,
	}
	return e.run(ctx, inv, result)
}

func (e *Exporter) run(ctx context.Context, inv encoder.Invocation, result Result) (Result, error) {
	if err := fileutil.EnsureParentDir(result.OutputPath); err != nil {
		return Result{}, err
	}

	result.StartedAt = time.Now().UTC()
	e.logger.Info("export started",
		logging.String(logging.FieldEventType, "export_started"),
		logging.String("kind", result.Kind),
		logging.String("output", result.OutputPath),
		logging.Float64("window_seconds", result.Window),
	)
	e.logger.Debug("export invocation", logging.String("command", inv.String()))

	out, err := e.runner.Run(ctx, inv)
	result.FinishedAt = time.Now().UTC()
	if err != nil {
		e.logger.Warn("export could not run",
			logging.String(logging.FieldEventType, "export_failed"),
			logging.String("kind", result.Kind),
			logging.Error(err),
			logging.String(logging.FieldImpact, "no output file was produced"),
			logging.String(logging.FieldErrorHint, "check that the encoder binary is installed and on PATH"),
		)
		return result, err
	}
	if out.ExitCode != 0 {
		toolErr := &apperrors.ToolError{Program: inv.Program, ExitCode: out.ExitCode, Stderr: out.Stderr}
		e.logger.Warn("export failed",
			logging.String(logging.FieldEventType, "export_failed"),
			logging.String("kind", result.Kind),
			logging.Int("exit_code", out.ExitCode),
			logging.Error(toolErr),
			logging.String(logging.FieldImpact, "output file may be missing or incomplete"),
			logging.String(logging.FieldErrorHint, "inspect the encoder diagnostics in the error message"),
		)
		return result, toolErr
	}

	e.logger.Info("export finished",
		logging.String(logging.FieldEventType, "export_finished"),
		logging.String("kind", result.Kind),
		logging.String("output", result.OutputPath),
		logging.Duration("elapsed", result.FinishedAt.Sub(result.StartedAt)),
	)
	return result, nil
}

package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"

	"clipdeck/internal/apperrors"
	"clipdeck/internal/exporter"
	"clipdeck/internal/library"
	"clipdeck/internal/logging"
	"clipdeck/internal/session"
)

// recordSession stores a finished recording in the library. It runs on the
// session manager's finish hook, outside the slot lock.
func (d *Daemon) recordSession(result session.Result) {
	if d.library == nil {
		return
	}
	finished := result.FinishedAt
	entry := &library.Entry{
		Category:     library.CategoryRecording,
		Kind:         string(result.Type),
		OutputPath:   result.OutputPath,
		StartedAt:    result.StartedAt,
		FinishedAt:   &finished,
		ExitCode:     result.ExitCode,
		ErrorMessage: result.Error,
	}
	if entry.ErrorMessage == "" && result.Reason == session.ReasonExited && result.ExitCode != 0 {
		entry.ErrorMessage = fmt.Sprintf("encoder exited with status %d before stop was requested", result.ExitCode)
	}
	d.addEntry(entry)
}

// recordExport stores an export attempt, successful or not. Attempts that
// never reached the encoder are skipped.
func (d *Daemon) recordExport(result exporter.Result, err error) {
	if d.library == nil || result.OutputPath == "" || result.StartedAt.IsZero() {
		return
	}
	finished := result.FinishedAt
	entry := &library.Entry{
		Category:   library.CategoryExport,
		Kind:       result.Kind,
		OutputPath: result.OutputPath,
		Inputs:     result.Inputs,
		StartedAt:  result.StartedAt,
		FinishedAt: &finished,
	}
	if err != nil {
		entry.ErrorMessage = err.Error()
		var toolErr *apperrors.ToolError
		if errors.As(err, &toolErr) {
			entry.ExitCode = toolErr.ExitCode
		}
	}
	d.addEntry(entry)
}

func (d *Daemon) addEntry(entry *library.Entry) {
	ctx := context.Background()
	if entry.ErrorMessage == "" {
		d.annotateMedia(ctx, entry)
	}
	if err := d.library.Add(ctx, entry); err != nil {
		logging.WarnWithContext(d.logger, "failed to record library entry", "library_write_failed",
			logging.Error(err),
			logging.String("output_path", entry.OutputPath),
			logging.String(logging.FieldImpact, "entry missing from library history"),
		)
		return
	}
	d.logger.Debug("library entry recorded",
		logging.String("entry_id", entry.ID),
		logging.String("category", string(entry.Category)),
		logging.String("output_path", entry.OutputPath),
	)
}

func (d *Daemon) annotateMedia(ctx context.Context, entry *library.Entry) {
	if info, err := os.Stat(entry.OutputPath); err == nil {
		entry.SizeBytes = info.Size()
	}
	if d.prober == nil {
		return
	}
	seconds, source, err := d.prober.Duration(ctx, entry.OutputPath)
	if err != nil {
		d.logger.Debug("duration unavailable",
			logging.String("output_path", entry.OutputPath),
			logging.Error(err),
		)
		return
	}
	entry.DurationSec = seconds
	entry.DurationSource = source
}

package preflight

import (
	"context"

	"clipdeck/internal/config"
	"clipdeck/internal/process"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory checks and, when runner is non-nil, the
// encoder version probe.
func RunAll(ctx context.Context, cfg *config.Config, runner process.Runner) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Recordings directory", cfg.Paths.RecordingsDir),
		CheckDirectoryAccess("Exports directory", cfg.Paths.ExportsDir),
		CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir),
	}

	if runner != nil {
		results = append(results, CheckEncoder(ctx, cfg, runner))
	}

	return results
}

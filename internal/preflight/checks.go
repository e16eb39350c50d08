package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"clipdeck/internal/config"
	"clipdeck/internal/deps"
	"clipdeck/internal/encoder"
	"clipdeck/internal/process"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckEncoder runs the configured encoder's version probe.
func CheckEncoder(ctx context.Context, cfg *config.Config, runner process.Runner) Result {
	const name = "Encoder"

	probe := encoder.NewBuilder(encoder.Options{Program: cfg.FFmpegBinary()}).VersionProbe()
	status := deps.CheckEncoder(ctx, runner, probe)
	if !status.Available {
		return Result{Name: name, Detail: status.Detail}
	}
	if status.Version == "" {
		return Result{Name: name, Passed: true, Detail: probe.Program}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s %s", probe.Program, status.Version)}
}

// CheckSystemDeps evaluates the external binaries clipdeck drives. Both the
// daemon and the CLI status command use this to avoid duplicating the
// requirements list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for capture and export",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Used for duration and frame size probing",
			Optional:    true,
		},
	}
	return deps.CheckBinaries(requirements)
}

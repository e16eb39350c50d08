package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"clipdeck/internal/encoder"
	"clipdeck/internal/process"
)

// Requirement defines an external dependency clipdeck relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// EncoderStatus is the outcome of running the encoder's version probe.
type EncoderStatus struct {
	Available bool
	Version   string
	Detail    string
}

// CheckEncoder runs the version probe and reports the encoder usable when it
// exits with status zero. Failure to start the program is reported, not returned.
func CheckEncoder(ctx context.Context, runner process.Runner, probe encoder.Invocation) EncoderStatus {
	out, err := runner.Run(ctx, probe)
	if err != nil {
		return EncoderStatus{Detail: err.Error()}
	}
	if out.ExitCode != 0 {
		return EncoderStatus{Detail: fmt.Sprintf("%s -version exited with status %d", probe.Program, out.ExitCode)}
	}
	return EncoderStatus{Available: true, Version: parseVersion(out.Stdout)}
}

// parseVersion extracts "7.1" from a banner line such as
// "ffmpeg version 7.1 Copyright (c) 2000-2024 the FFmpeg developers".
func parseVersion(banner string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(banner), "\n")
	fields := strings.Fields(line)
	for i, field := range fields {
		if field == "version" && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return ""
}

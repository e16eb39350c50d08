package deps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"clipdeck/internal/apperrors"
	"clipdeck/internal/encoder"
	"clipdeck/internal/process"
	"clipdeck/internal/testsupport"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected blank command status: %#v", results[2])
	}
}

func TestCheckEncoder(t *testing.T) {
	probe := encoder.Invocation{Program: "ffmpeg", Args: []string{"-version"}}

	tests := []struct {
		name      string
		runner    *testsupport.FakeRunner
		available bool
		version   string
	}{
		{
			name: "exit zero",
			runner: &testsupport.FakeRunner{Output: process.Output{
				Stdout: "ffmpeg version 7.1 Copyright (c) 2000-2024 the FFmpeg developers\nbuilt with clang\n",
			}},
			available: true,
			version:   "7.1",
		},
		{
			name:      "non-zero exit",
			runner:    &testsupport.FakeRunner{Output: process.Output{ExitCode: 1}},
			available: false,
		},
		{
			name: "missing binary",
			runner: &testsupport.FakeRunner{
				Err: apperrors.Wrap(apperrors.ErrExternalToolUnavailable, "start ffmpeg", "", errors.New("not found")),
			},
			available: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status := CheckEncoder(context.Background(), tc.runner, probe)
			if status.Available != tc.available {
				t.Fatalf("available = %v, want %v (detail %q)", status.Available, tc.available, status.Detail)
			}
			if status.Version != tc.version {
				t.Fatalf("version = %q, want %q", status.Version, tc.version)
			}
			if !tc.available && status.Detail == "" {
				t.Fatal("expected detail for unavailable encoder")
			}
			if calls := tc.runner.Calls(); len(calls) != 1 || calls[0].Program != "ffmpeg" {
				t.Fatalf("unexpected runner calls: %#v", calls)
			}
		})
	}
}

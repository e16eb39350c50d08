package daemonctl

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"clipdeck/internal/api"
	"clipdeck/internal/library"
	"clipdeck/internal/testsupport"
)

func TestBuildDependencySummary(t *testing.T) {
	tests := []struct {
		name     string
		deps     []api.DependencyStatus
		severity string
		detail   string
	}{
		{name: "none", severity: "info", detail: "No dependency checks configured"},
		{
			name:     "all available",
			deps:     []api.DependencyStatus{{Name: "FFmpeg", Available: true}, {Name: "FFprobe", Available: true, Optional: true}},
			severity: "ok",
			detail:   "2/2 available",
		},
		{
			name:     "optional missing",
			deps:     []api.DependencyStatus{{Name: "FFmpeg", Available: true}, {Name: "FFprobe", Optional: true}},
			severity: "warn",
			detail:   "1/2 available (missing: 0 required, 1 optional)",
		},
		{
			name:     "required missing",
			deps:     []api.DependencyStatus{{Name: "FFmpeg"}, {Name: "FFprobe", Optional: true}},
			severity: "error",
			detail:   "0/2 available (missing: 1 required, 1 optional)",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := BuildDependencySummary(tc.deps)
			if got.Severity != tc.severity || got.Detail != tc.detail {
				t.Fatalf("got %+v, want severity %q detail %q", got, tc.severity, tc.detail)
			}
		})
	}
}

func TestBuildSystemChecks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Devices.HotplugMonitor = true

	offline := BuildSystemChecks(cfg, false, api.RecordingStatus{}, false)
	if offline[0].Label != "Clipdeck" || offline[0].Severity != "warn" {
		t.Fatalf("unexpected first line %+v", offline[0])
	}
	if findLine(offline, "Recording") != nil {
		t.Fatal("recording line only applies to a running daemon")
	}
	if line := findLine(offline, "Device Hotplug"); line == nil || line.Severity != "info" {
		t.Fatalf("unexpected hotplug line %+v", line)
	}

	recording := api.RecordingStatus{Recording: true, Current: &api.RecordingInfo{RecordingType: "pip", OutputPath: "/rec/a.mp4"}}
	online := BuildSystemChecks(cfg, true, recording, false)
	if line := findLine(online, "Recording"); line == nil || line.Detail != "pip capture to /rec/a.mp4" {
		t.Fatalf("unexpected recording line %+v", line)
	}
	if line := findLine(online, "Device Hotplug"); line == nil || line.Severity != "warn" {
		t.Fatalf("expected hotplug warning, got %+v", line)
	}

	cfg.Paths.APIToken = "secret"
	cfg.Library.Enabled = false
	lines := BuildSystemChecks(cfg, true, api.RecordingStatus{}, true)
	if line := findLine(lines, "API"); line == nil || !strings.Contains(line.Detail, "token required") {
		t.Fatalf("unexpected api line %+v", line)
	}
	if line := findLine(lines, "Library"); line == nil || line.Detail != "Disabled" {
		t.Fatalf("unexpected library line %+v", line)
	}
}

func TestDeriveLogDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if got := DeriveLogDir("/a/clipdeck.lock", "/b/library.db", cfg); got != "/a" {
		t.Fatalf("lock path should win, got %q", got)
	}
	if got := DeriveLogDir("", "/b/library.db", cfg); got != "/b" {
		t.Fatalf("library path should be next, got %q", got)
	}
	if got := DeriveLogDir("", "", cfg); got != cfg.Paths.LogDir {
		t.Fatalf("config log dir should be last, got %q", got)
	}
	if got := DeriveLogDir("", "", nil); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestForceKillProcessRefusesSelf(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, PIDFileName)
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	if _, err := ForceKillProcess(pidPath, "", 0); err == nil || !strings.Contains(err.Error(), "refusing") {
		t.Fatalf("expected refusal, got %v", err)
	}
	if _, err := ForceKillProcess(filepath.Join(dir, "missing.pid"), "", 0); err == nil {
		t.Fatal("expected error without a pid")
	}
}

func TestBuildStatusSnapshotOffline(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)
	now := time.Now()
	testsupport.AddEntry(t, store, library.CategoryRecording, "/rec/a.mp4", now)
	testsupport.AddEntry(t, store, library.CategoryExport, "/exp/a.mp4", now)
	testsupport.AddEntry(t, store, library.CategoryExport, "/exp/b.mp4", now)

	snapshot, err := BuildStatusSnapshot(context.Background(), filepath.Join(t.TempDir(), "none.sock"), cfg)
	if err != nil {
		t.Fatalf("BuildStatusSnapshot: %v", err)
	}
	if snapshot.Running {
		t.Fatal("expected offline snapshot")
	}
	if snapshot.LibraryCounts["recording"] != 1 || snapshot.LibraryCounts["export"] != 2 {
		t.Fatalf("unexpected counts %+v", snapshot.LibraryCounts)
	}
	if snapshot.LibraryDBPath != cfg.LibraryDBPath() {
		t.Fatalf("library path = %q", snapshot.LibraryDBPath)
	}
	if len(snapshot.Dependencies) != 2 {
		t.Fatalf("expected ffmpeg and ffprobe dependencies, got %+v", snapshot.Dependencies)
	}
	for _, dep := range snapshot.Dependencies {
		if dep.Severity == "" {
			t.Fatalf("dependency %q missing severity", dep.Name)
		}
	}
	if len(snapshot.Checks) == 0 || len(snapshot.SystemChecks) == 0 {
		t.Fatalf("expected checks, got %+v", snapshot)
	}
	if snapshot.DependencySummary.Total != 2 {
		t.Fatalf("unexpected summary %+v", snapshot.DependencySummary)
	}
}

func TestBuildStatusSnapshotRequiresConfig(t *testing.T) {
	if _, err := BuildStatusSnapshot(context.Background(), "/nonexistent.sock", nil); err == nil {
		t.Fatal("expected error without config")
	}
}

func findLine(lines []api.StatusLine, label string) *api.StatusLine {
	for i := range lines {
		if lines[i].Label == label {
			return &lines[i]
		}
	}
	return nil
}

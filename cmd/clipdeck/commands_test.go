package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipdeck/internal/api"
	"clipdeck/internal/process"
)

func TestDevicesCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.run(t, "devices")
	requireContains(t, out, "Capture screen 0")
	requireContains(t, out, "FaceTime HD Camera")
	requireContains(t, out, "Built-in Microphone")
	requireContains(t, out, "Screen")
	requireContains(t, out, "Webcam")

	out = env.run(t, "--json", "devices", "--refresh")
	var resp api.DeviceListResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode devices json: %v", err)
	}
	if len(resp.Devices) != 3 {
		t.Fatalf("expected 3 devices, got %+v", resp.Devices)
	}
	if resp.RefreshedAt == "" {
		t.Fatal("expected refreshed_at after refresh")
	}
}

func TestRecordCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	output := filepath.Join(env.cfg.Paths.RecordingsDir, "demo.mp4")

	out := env.run(t, "record", "status")
	requireContains(t, out, "[INFO] Idle")

	out = env.run(t, "record", "start", output, "--type", "screen", "--screen", "2")
	requireContains(t, out, "Recording screen to "+output)

	spawned := env.host.Spawned()
	if len(spawned) != 1 {
		t.Fatalf("expected one spawned capture, got %d", len(spawned))
	}
	if !strings.Contains(strings.Join(spawned[0].Args, " "), "2") {
		t.Fatalf("expected screen index 2 in args %v", spawned[0].Args)
	}

	_, _, err := runCLI(t, []string{"record", "start", "--type", "webcam"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "already") {
		t.Fatalf("expected already recording error, got %v", err)
	}

	out = env.run(t, "record", "status")
	requireContains(t, out, "[OK] Screen")
	requireContains(t, out, output)

	out = env.run(t, "record", "stop")
	requireContains(t, out, "Recording saved to "+output)

	_, _, err = runCLI(t, []string{"record", "stop"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected error stopping while idle")
	}
}

func TestRecordStartRejectsUnknownType(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"record", "start", "--type", "hologram"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "unknown recording type") {
		t.Fatalf("expected invalid type error, got %v", err)
	}
	if len(env.host.Spawned()) != 0 {
		t.Fatal("nothing should be spawned for a rejected request")
	}
}

func TestExportCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	input := filepath.Join(env.cfg.Paths.RecordingsDir, "in.mp4")
	webcam := filepath.Join(env.cfg.Paths.RecordingsDir, "cam.mp4")
	trimmed := filepath.Join(env.cfg.Paths.ExportsDir, "trim.mp4")
	composite := filepath.Join(env.cfg.Paths.ExportsDir, "pip.mp4")

	out := env.run(t, "export", "trim", input, trimmed, "--start", "1", "--end", "3.5")
	requireContains(t, out, "Trim export written to "+trimmed)

	out = env.run(t, "--json", "export", "pip", input, webcam, composite,
		"--main-end", "4", "--pip-end", "4", "--position", "top-left")
	var resp api.ExportResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode export json: %v", err)
	}
	if resp.OutputPath != composite {
		t.Fatalf("output = %q, want %q", resp.OutputPath, composite)
	}

	_, _, err := runCLI(t, []string{"export", "trim", input, trimmed, "--start", "3", "--end", "1"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected invalid window to be rejected")
	}

	env.runner.Func = nil
	env.runner.Output = process.Output{ExitCode: 1, Stderr: "Invalid data found when processing input"}
	_, _, err = runCLI(t, []string{"export", "trim", input, trimmed, "--end", "2"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "Invalid data") {
		t.Fatalf("expected encoder failure, got %v", err)
	}
}

func TestEncoderCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.run(t, "encoder", "check")
	requireContains(t, out, "[OK] 7.1")

	env.runner.Func = nil
	env.runner.Output = process.Output{ExitCode: 127}
	out, _, err := runCLI(t, []string{"encoder", "check"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected unavailable encoder to fail the command")
	}
	requireContains(t, out, "[ERROR]")
}

func TestLibraryCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.run(t, "library", "list")
	requireContains(t, out, "Library is empty")

	recording := filepath.Join(env.cfg.Paths.RecordingsDir, "talk.mp4")
	env.run(t, "record", "start", recording)
	env.run(t, "record", "stop")
	env.run(t, "export", "trim", recording, filepath.Join(env.cfg.Paths.ExportsDir, "talk-trim.mp4"), "--end", "2")

	out = env.run(t, "library", "list")
	requireContains(t, out, "Recording")
	requireContains(t, out, "Export")

	out = env.run(t, "--json", "library", "list", "--category", "exports")
	var resp api.LibraryListResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode library json: %v", err)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].Kind != "trim" {
		t.Fatalf("unexpected export entries %+v", resp.Entries)
	}

	out = env.run(t, "library", "clear", "--category", "exports")
	requireContains(t, out, "Removed 1 export entries")

	out = env.run(t, "library", "clear")
	requireContains(t, out, "Removed 1 library entries")

	_, _, err := runCLI(t, []string{"library", "list", "--category", "bogus"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected unknown category to be rejected")
	}
}

func TestLogsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.run(t, "logs")
	requireContains(t, out, "No log entries available")

	logPath := filepath.Join(env.cfg.Paths.LogDir, "clipdeck.log")
	if err := os.WriteFile(logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	out = env.run(t, "logs", "-n", "2")
	if strings.Contains(out, "first") || !strings.Contains(out, "second\nthird") {
		t.Fatalf("unexpected tail output %q", out)
	}

	out = env.run(t, "logs", "--capture")
	requireContains(t, out, "No capture logs available")

	if err := os.MkdirAll(env.cfg.ToolLogDir(), 0o755); err != nil {
		t.Fatalf("mkdir tool logs: %v", err)
	}
	capturePath := filepath.Join(env.cfg.ToolLogDir(), "capture-20260301T100000.000Z.log")
	if err := os.WriteFile(capturePath, []byte("# ffmpeg -f avfoundation\nframe=  30\n"), 0o644); err != nil {
		t.Fatalf("write capture log: %v", err)
	}
	out = env.run(t, "logs", "--capture")
	requireContains(t, out, "frame=  30")
}

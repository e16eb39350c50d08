package main

import (
	"encoding/json"
	"testing"

	"clipdeck/internal/daemonctl"
)

func TestDaemonStartAndStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.run(t, "start")
	requireContains(t, out, "Daemon started")

	out = env.run(t, "start")
	requireContains(t, out, "Daemon already running")

	out = env.run(t, "status")
	requireContains(t, out, "System Status")
	requireContains(t, out, "[OK] Running")
	requireContains(t, out, "[INFO] Idle")
	requireContains(t, out, "Dependencies")
	requireContains(t, out, "Library is empty")
}

func TestDaemonStatusJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	env.run(t, "start")

	out := env.run(t, "--json", "status")
	var snapshot daemonctl.Snapshot
	if err := json.Unmarshal([]byte(out), &snapshot); err != nil {
		t.Fatalf("decode status json: %v\n%s", err, out)
	}
	if !snapshot.Running {
		t.Fatalf("expected running daemon in %+v", snapshot)
	}
	if snapshot.LibraryDBPath != env.cfg.LibraryDBPath() {
		t.Fatalf("library path = %q", snapshot.LibraryDBPath)
	}
	if len(snapshot.SystemChecks) == 0 {
		t.Fatal("expected system checks")
	}
}

func TestStatusWithoutDaemon(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := env.socketPath + ".missing"

	out, _, err := runCLI(t, []string{"status"}, missing, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Not running")
}

func TestClientCommandsRequireDaemon(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := env.socketPath + ".missing"

	_, _, err := runCLI(t, []string{"devices"}, missing, env.configPath)
	if err == nil {
		t.Fatal("expected dial error")
	}
	requireContains(t, err.Error(), "clipdeck start")
}

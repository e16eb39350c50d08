// Package process is the only OS-facing layer for child processes.
//
// Host and Handle cover long-running capture processes: spawn, interrupt,
// wait, and a non-blocking liveness check. Runner covers one-shot probes and
// exports whose output is captured in memory. Both are interfaces so callers
// can be tested without touching the OS.
package process

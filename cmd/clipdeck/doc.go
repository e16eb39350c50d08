// Package main hosts the clipdeck CLI entrypoint and command graph.
//
// The Cobra command tree translates terminal invocations into IPC calls
// against the daemon: device listing, recording control, exports, encoder
// checks and library maintenance. Daemon lifecycle commands go through
// internal/daemonctl, and the hidden daemon command runs the process itself
// via internal/daemonrun.
//
// Add behaviour to the internal packages first and surface it here as a
// command or flag.
package main

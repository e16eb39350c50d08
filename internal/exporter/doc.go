// Package exporter runs one-shot encoder invocations that produce new clips
// from existing recordings: a plain trim and a picture-in-picture composite.
//
// Invocations are built by the encoder package and executed through a
// process.Runner, so tests substitute a fake runner and never touch ffmpeg.
// Exports block until the encoder exits; there is no timeout.
package exporter

// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe through a process.Runner and returns a Result with
// helpers for stream counts, the first video stream's frame size, and the
// container duration.
package ffprobe

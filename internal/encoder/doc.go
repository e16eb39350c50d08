// Package encoder renders capture, trim, and picture-in-picture export
// requests into ffmpeg argument vectors.
//
// Everything here is pure: a Builder never touches the filesystem or spawns a
// process. Filter graphs are passed as a single argument, never through a
// shell. Time windows are validated before an invocation is produced.
package encoder

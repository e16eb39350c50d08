// Package logs reads the daemon and encoder log files for the CLI.
//
// Tail returns the last lines of a file together with the byte offset to
// resume from, and Follow polls from that offset until the context ends.
// Follow restarts from the top when a file shrinks, which happens when the
// clipdeck.log pointer moves to a new run.
package logs

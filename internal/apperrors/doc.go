// Package apperrors defines the error taxonomy shared by the session manager,
// exporter, and the daemon's HTTP and IPC surfaces.
//
// Errors are tagged with one sentinel marker via Wrap or ToolError and
// classified with errors.Is. Messages are surfaced to callers verbatim; nothing
// in clipdeck retries on these errors.
package apperrors

package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrInvalidArgument         = errors.New("invalid argument")
	ErrAlreadyRecording        = errors.New("already recording")
	ErrNoActiveRecording       = errors.New("no active recording")
	ErrExternalToolUnavailable = errors.New("external tool unavailable")
	ErrExternalToolFailed      = errors.New("external tool failed")
	ErrIO                      = errors.New("io error")
)

// maxDiagnosticLines bounds how much encoder stderr is carried in a ToolError.
const maxDiagnosticLines = 40

// Wrap builds an error message that includes operation context while tagging it
// with marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Invalid is shorthand for an ErrInvalidArgument with a formatted message.
func Invalid(operation, format string, args ...any) error {
	return Wrap(ErrInvalidArgument, operation, fmt.Sprintf(format, args...), nil)
}

// ToolError reports an external tool that ran and exited non-zero.
type ToolError struct {
	Program  string
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Program, e.ExitCode)
	if tail := diagnosticTail(e.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

func (e *ToolError) Unwrap() error { return ErrExternalToolFailed }

// Kind returns a stable snake_case classification for API payloads.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrAlreadyRecording):
		return "already_recording"
	case errors.Is(err, ErrNoActiveRecording):
		return "no_active_recording"
	case errors.Is(err, ErrExternalToolUnavailable):
		return "external_tool_unavailable"
	case errors.Is(err, ErrExternalToolFailed):
		return "external_tool_failed"
	default:
		return "io_error"
	}
}

// HTTPStatus maps an error to the response code used by the HTTP API.
func HTTPStatus(err error) int {
	switch Kind(err) {
	case "":
		return http.StatusOK
	case "invalid_argument":
		return http.StatusBadRequest
	case "already_recording", "no_active_recording":
		return http.StatusConflict
	case "external_tool_unavailable":
		return http.StatusServiceUnavailable
	case "external_tool_failed":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "operation failed"
	}
	return strings.Join(parts, ": ")
}

func diagnosticTail(stderr string) string {
	trimmed := strings.TrimSpace(stderr)
	if trimmed == "" {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) > maxDiagnosticLines {
		lines = lines[len(lines)-maxDiagnosticLines:]
	}
	return strings.Join(lines, "\n")
}

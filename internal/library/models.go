package library

import "time"

// Category separates captured recordings from derived exports.
type Category string

const (
	CategoryRecording Category = "recording"
	CategoryExport    Category = "export"
)

// ParseCategory accepts "recording(s)", "export(s)" or "" (all).
func ParseCategory(value string) (Category, bool) {
	switch value {
	case "":
		return "", true
	case "recording", "recordings":
		return CategoryRecording, true
	case "export", "exports":
		return CategoryExport, true
	default:
		return "", false
	}
}

// Entry is one finished recording or export.
type Entry struct {
	ID             string     `json:"id"`
	Category       Category   `json:"category"`
	Kind           string     `json:"kind"`
	OutputPath     string     `json:"output_path"`
	Inputs         []string   `json:"inputs,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	DurationSec    float64    `json:"duration_seconds,omitempty"`
	DurationSource string     `json:"duration_source,omitempty"`
	SizeBytes      int64      `json:"size_bytes,omitempty"`
	ExitCode       int        `json:"exit_code"`
	ErrorMessage   string     `json:"error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Succeeded reports whether the entry finished without a recorded error.
// Exit codes are kept for diagnostics only: an interrupted capture exits
// non-zero even when the file is complete.
func (e Entry) Succeeded() bool {
	return e.ErrorMessage == ""
}

// ListFilter narrows List results. A zero Limit returns every entry.
type ListFilter struct {
	Category Category
	Limit    int
}

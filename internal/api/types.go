package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Device is one capture device from the encoder's catalog.
type Device struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Type  string `json:"type"`
}

// DeviceListResponse wraps the device catalog.
type DeviceListResponse struct {
	Devices     []Device `json:"devices"`
	RefreshedAt string   `json:"refreshed_at,omitempty"`
}

// StartRecordingRequest starts a capture. Pointer indices distinguish an
// omitted index from device 0.
type StartRecordingRequest struct {
	OutputPath    string `json:"output_path"`
	RecordingType string `json:"recording_type"`
	ScreenIndex   *int   `json:"screen_index,omitempty"`
	WebcamIndex   *int   `json:"webcam_index,omitempty"`
	PipPosition   string `json:"pip_position,omitempty"`
	PipSize       string `json:"pip_size,omitempty"`
}

// RecordingInfo describes the active recording.
type RecordingInfo struct {
	ID            string `json:"id"`
	OutputPath    string `json:"output_path"`
	RecordingType string `json:"recording_type"`
	StartedAt     string `json:"started_at"`
	PID           int    `json:"pid"`
}

// RecordingResult describes a recording that has ended.
type RecordingResult struct {
	RecordingInfo
	Message         string  `json:"message"`
	ExitCode        int     `json:"exit_code"`
	FinishedAt      string  `json:"finished_at"`
	DurationSeconds float64 `json:"duration_seconds"`
	Reason          string  `json:"reason"`
	Error           string  `json:"error,omitempty"`
}

// RecordingStatus reports whether a capture is live.
type RecordingStatus struct {
	Recording bool           `json:"recording"`
	Current   *RecordingInfo `json:"current,omitempty"`
}

// ExportRequest trims a single input.
type ExportRequest struct {
	InputPath  string  `json:"input_path"`
	OutputPath string  `json:"output_path"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
}

// ExportPipRequest composites a trimmed PiP clip over a trimmed main clip.
type ExportPipRequest struct {
	MainPath      string  `json:"main_path"`
	PipPath       string  `json:"pip_path"`
	OutputPath    string  `json:"output_path"`
	MainStartTime float64 `json:"main_start_time"`
	MainEndTime   float64 `json:"main_end_time"`
	PipStartTime  float64 `json:"pip_start_time"`
	PipEndTime    float64 `json:"pip_end_time"`
	PipPosition   string  `json:"pip_position,omitempty"`
}

// ExportResponse reports where an export was written.
type ExportResponse struct {
	OutputPath     string  `json:"output_path"`
	Kind           string  `json:"kind"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// EncoderStatus reports whether the encoder's version probe succeeded.
type EncoderStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// WriteTempRequest writes Data into the temp directory under Filename's base name.
type WriteTempRequest struct {
	Filename string `json:"filename"`
	Data     []byte `json:"data"`
}

// ReadFileRequest reads a file.
type ReadFileRequest struct {
	Path string `json:"path"`
}

// ReadFileResponse carries file contents.
type ReadFileResponse struct {
	Data []byte `json:"data"`
}

// PathResponse carries a single filesystem path.
type PathResponse struct {
	Path string `json:"path"`
}

// LibraryEntry is a finished recording or export.
type LibraryEntry struct {
	ID              string   `json:"id"`
	Category        string   `json:"category"`
	Kind            string   `json:"kind"`
	OutputPath      string   `json:"output_path"`
	Inputs          []string `json:"inputs,omitempty"`
	StartedAt       string   `json:"started_at,omitempty"`
	FinishedAt      string   `json:"finished_at,omitempty"`
	DurationSeconds float64  `json:"duration_seconds,omitempty"`
	DurationSource  string   `json:"duration_source,omitempty"`
	SizeBytes       int64    `json:"size_bytes,omitempty"`
	ExitCode        int      `json:"exit_code"`
	Error           string   `json:"error,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
}

// LibraryListRequest filters the library listing.
type LibraryListRequest struct {
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// LibraryListResponse wraps library entries, newest first.
type LibraryListResponse struct {
	Entries []LibraryEntry `json:"entries"`
}

// LibraryClearRequest selects which entries to clear; empty clears all.
type LibraryClearRequest struct {
	Category string `json:"category,omitempty"`
}

// LibraryClearResponse reports how many entries were removed.
type LibraryClearResponse struct {
	Removed int64 `json:"removed"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
	Severity    string `json:"severity,omitempty"`
}

// StatusLine is one labelled readiness check.
type StatusLine struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running           bool               `json:"running"`
	PID               int                `json:"pid"`
	Recording         RecordingStatus    `json:"recording"`
	LibraryDBPath     string             `json:"library_db_path,omitempty"`
	LibraryCounts     map[string]int     `json:"library_counts,omitempty"`
	LockFilePath      string             `json:"lock_file_path"`
	LogPath           string             `json:"log_path,omitempty"`
	HotplugMonitoring bool               `json:"hotplug_monitoring"`
	Dependencies      []DependencyStatus `json:"dependencies"`
	Checks            []StatusLine       `json:"checks,omitempty"`
}

// ErrorResponse is the body of every failed HTTP request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// DependencySummary aggregates dependency readiness for status output.
type DependencySummary struct {
	Total           int    `json:"total"`
	Available       int    `json:"available"`
	MissingRequired int    `json:"missing_required"`
	MissingOptional int    `json:"missing_optional"`
	Severity        string `json:"severity"`
	Detail          string `json:"detail"`
}

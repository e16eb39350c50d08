package ipc

import "clipdeck/internal/api"

// StartRequest brings up the daemon's API and monitors.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops the daemon and asks its process to exit.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse mirrors the HTTP status payload.
type StatusResponse = api.DaemonStatus

// DependencyStatus describes availability of an external dependency.
type DependencyStatus = api.DependencyStatus

// DeviceListRequest lists capture devices, optionally bypassing the cache.
type DeviceListRequest struct {
	Refresh bool `json:"refresh"`
}

// DeviceListResponse wraps the device catalog.
type DeviceListResponse = api.DeviceListResponse

// StartRecordingRequest starts a capture.
type StartRecordingRequest = api.StartRecordingRequest

// RecordingInfo describes the active recording.
type RecordingInfo = api.RecordingInfo

// StopRecordingRequest stops the active capture.
type StopRecordingRequest struct{}

// RecordingResult describes a recording that has ended.
type RecordingResult = api.RecordingResult

// RecordingStatusRequest asks whether a capture is live.
type RecordingStatusRequest struct{}

// RecordingStatus reports whether a capture is live.
type RecordingStatus = api.RecordingStatus

// ExportRequest trims a single input.
type ExportRequest = api.ExportRequest

// ExportPipRequest composites a picture-in-picture clip over a main clip.
type ExportPipRequest = api.ExportPipRequest

// ExportResponse reports where an export was written.
type ExportResponse = api.ExportResponse

// EncoderCheckRequest runs the encoder's version probe.
type EncoderCheckRequest struct{}

// EncoderStatus reports whether the encoder is usable.
type EncoderStatus = api.EncoderStatus

// WriteTempRequest writes a file into the temp directory.
type WriteTempRequest = api.WriteTempRequest

// ReadFileRequest reads a file.
type ReadFileRequest = api.ReadFileRequest

// ReadFileResponse carries file contents.
type ReadFileResponse = api.ReadFileResponse

// DocumentsPathRequest asks for the documents directory.
type DocumentsPathRequest struct{}

// PathResponse carries a single filesystem path.
type PathResponse = api.PathResponse

// LibraryListRequest filters the library listing.
type LibraryListRequest = api.LibraryListRequest

// LibraryListResponse wraps library entries.
type LibraryListResponse = api.LibraryListResponse

// LibraryClearRequest selects entries to clear.
type LibraryClearRequest = api.LibraryClearRequest

// LibraryClearResponse reports removed entries.
type LibraryClearResponse = api.LibraryClearResponse

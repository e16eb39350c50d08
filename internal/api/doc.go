// Package api defines wire-format types and converters for the IPC and HTTP
// API layer. It translates requests into encoder intents and internal models
// into transport-friendly DTOs so the UI and CLI never couple to internal types.
//
// # Key Types
//
// StartRecordingRequest, ExportRequest, ExportPipRequest: endpoint inputs.
// Missing device indices, placements and output paths are filled from config.
//
// Device, RecordingInfo, RecordingResult, LibraryEntry: read models.
//
// DaemonStatus: running state, recording state, dependency and path checks.
//
// # Design Notes
//
// DTOs use snake_case JSON tags to match the endpoint contract. Timestamps
// use RFC3339 with milliseconds. Binary payloads ([]byte) travel as base64.
package api

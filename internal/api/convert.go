package api

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"clipdeck/internal/apperrors"
	"clipdeck/internal/config"
	"clipdeck/internal/deps"
	"clipdeck/internal/devices"
	"clipdeck/internal/encoder"
	"clipdeck/internal/exporter"
	"clipdeck/internal/library"
	"clipdeck/internal/preflight"
	"clipdeck/internal/session"
)

// BuilderOptions maps the encoder and capture config sections onto builder settings.
func BuilderOptions(cfg *config.Config) encoder.Options {
	if cfg == nil {
		return encoder.DefaultOptions()
	}
	return encoder.Options{
		Program:       cfg.FFmpegBinary(),
		InputFormat:   cfg.Encoder.InputFormat,
		VideoCodec:    cfg.Encoder.VideoCodec,
		AudioCodec:    cfg.Encoder.AudioCodec,
		ExportPreset:  cfg.Encoder.ExportPreset,
		CapturePreset: cfg.Encoder.CapturePreset,
		PixelFormat:   cfg.Encoder.PixelFormat,
		Framerate:     cfg.Encoder.Framerate,
		AudioIndex:    cfg.Capture.AudioIndex,
		WebcamSize:    cfg.Capture.WebcamSize,
		CaptureCursor: cfg.Capture.CaptureCursor,
		Margin:        cfg.Overlay.Margin,
		ScreenFrame:   encoder.Size{Width: cfg.Capture.FrameWidth, Height: cfg.Capture.FrameHeight},
	}
}

// DefaultRecordingPath names a recording after the wall clock in unix milliseconds.
func DefaultRecordingPath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("recording_%d.mp4", now.UnixMilli()))
}

// CaptureIntent resolves req against config defaults. Only the indices the
// recording type uses are filled; an explicit negative index is rejected.
// A nil cfg resolves against config.Default.
func CaptureIntent(req StartRecordingRequest, cfg *config.Config, now time.Time) (encoder.CaptureIntent, error) {
	kind, err := encoder.ParseCaptureKind(req.RecordingType)
	if err != nil {
		return encoder.CaptureIntent{}, err
	}
	if cfg == nil {
		def := config.Default()
		dir, err := config.ExpandPath(def.Paths.RecordingsDir)
		if err != nil {
			return encoder.CaptureIntent{}, apperrors.Wrap(apperrors.ErrIO, "start recording", "resolve recordings directory", err)
		}
		def.Paths.RecordingsDir = dir
		cfg = &def
	}
	for _, idx := range []*int{req.ScreenIndex, req.WebcamIndex} {
		if idx != nil && *idx < 0 {
			return encoder.CaptureIntent{}, apperrors.Invalid("start recording", "device index %d must not be negative", *idx)
		}
	}

	intent := encoder.CaptureIntent{
		Kind:        kind,
		ScreenIndex: encoder.NoDevice,
		WebcamIndex: encoder.NoDevice,
		OutputPath:  strings.TrimSpace(req.OutputPath),
	}
	if intent.OutputPath == "" {
		intent.OutputPath = DefaultRecordingPath(cfg.Paths.RecordingsDir, now)
	}
	if kind == encoder.CaptureScreen || kind == encoder.CapturePiP {
		intent.ScreenIndex = indexOrDefault(req.ScreenIndex, cfg.Capture.DefaultScreenIndex)
	}
	if kind == encoder.CaptureWebcam || kind == encoder.CapturePiP {
		intent.WebcamIndex = indexOrDefault(req.WebcamIndex, cfg.Capture.DefaultWebcamIndex)
	}

	if kind == encoder.CapturePiP {
		placement, err := encoder.ParsePlacement(firstNonEmpty(req.PipPosition, cfg.Overlay.CapturePosition))
		if err != nil {
			return encoder.CaptureIntent{}, err
		}
		size, err := encoder.ParseOverlaySize(firstNonEmpty(req.PipSize, cfg.Overlay.CaptureSize))
		if err != nil {
			return encoder.CaptureIntent{}, err
		}
		intent.Placement = placement
		intent.Size = size
	}
	return intent, nil
}

func indexOrDefault(idx *int, fallback int) int {
	if idx != nil {
		return *idx
	}
	return fallback
}

// TrimIntent converts an export request. The output path is required.
func TrimIntent(req ExportRequest) encoder.TrimIntent {
	return encoder.TrimIntent{
		Input:  strings.TrimSpace(req.InputPath),
		Output: strings.TrimSpace(req.OutputPath),
		Start:  req.StartTime,
		End:    req.EndTime,
	}
}

// OverlayIntent converts a PiP export request. An empty position falls back
// to the configured export position.
func OverlayIntent(req ExportPipRequest, cfg *config.Config) (encoder.OverlayExportIntent, error) {
	position := strings.TrimSpace(req.PipPosition)
	if position == "" && cfg != nil {
		position = cfg.Overlay.ExportPosition
	}
	var placement encoder.Placement
	if position != "" {
		parsed, err := encoder.ParsePlacement(position)
		if err != nil {
			return encoder.OverlayExportIntent{}, err
		}
		placement = parsed
	}
	return encoder.OverlayExportIntent{
		MainPath:  strings.TrimSpace(req.MainPath),
		PipPath:   strings.TrimSpace(req.PipPath),
		Output:    strings.TrimSpace(req.OutputPath),
		MainStart: req.MainStartTime,
		MainEnd:   req.MainEndTime,
		PipStart:  req.PipStartTime,
		PipEnd:    req.PipEndTime,
		Placement: placement,
	}, nil
}

// FromDevices converts parsed catalog entries.
func FromDevices(list []devices.Device) []Device {
	out := make([]Device, 0, len(list))
	for _, d := range list {
		out = append(out, Device{Index: d.Index, Name: d.Name, Type: string(d.Category)})
	}
	return out
}

// FromSessionInfo converts the active recording.
func FromSessionInfo(info session.Info) RecordingInfo {
	return RecordingInfo{
		ID:            info.ID,
		OutputPath:    info.OutputPath,
		RecordingType: string(info.Type),
		StartedAt:     formatTime(info.StartedAt),
		PID:           info.PID,
	}
}

// FromSessionStatus converts a slot snapshot.
func FromSessionStatus(st session.Status) RecordingStatus {
	out := RecordingStatus{Recording: st.Active}
	if st.Current != nil {
		info := FromSessionInfo(*st.Current)
		out.Current = &info
	}
	return out
}

// FromSessionResult converts a finished recording.
func FromSessionResult(result session.Result) RecordingResult {
	return RecordingResult{
		RecordingInfo:   FromSessionInfo(result.Info),
		Message:         fmt.Sprintf("Recording saved to %s", result.OutputPath),
		ExitCode:        result.ExitCode,
		FinishedAt:      formatTime(result.FinishedAt),
		DurationSeconds: result.Duration().Seconds(),
		Reason:          result.Reason,
		Error:           result.Error,
	}
}

// FromExportResult converts a finished export.
func FromExportResult(result exporter.Result) ExportResponse {
	return ExportResponse{
		OutputPath:     result.OutputPath,
		Kind:           result.Kind,
		ElapsedSeconds: result.FinishedAt.Sub(result.StartedAt).Seconds(),
	}
}

// FromEncoderStatus converts a version probe outcome.
func FromEncoderStatus(status deps.EncoderStatus) EncoderStatus {
	return EncoderStatus{Available: status.Available, Version: status.Version, Detail: status.Detail}
}

// FromLibraryEntry converts a stored history entry.
func FromLibraryEntry(entry *library.Entry) LibraryEntry {
	if entry == nil {
		return LibraryEntry{}
	}
	dto := LibraryEntry{
		ID:              entry.ID,
		Category:        string(entry.Category),
		Kind:            entry.Kind,
		OutputPath:      entry.OutputPath,
		Inputs:          entry.Inputs,
		StartedAt:       formatTime(entry.StartedAt),
		DurationSeconds: entry.DurationSec,
		DurationSource:  entry.DurationSource,
		SizeBytes:       entry.SizeBytes,
		ExitCode:        entry.ExitCode,
		Error:           entry.ErrorMessage,
		CreatedAt:       formatTime(entry.CreatedAt),
	}
	if entry.FinishedAt != nil {
		dto.FinishedAt = formatTime(*entry.FinishedAt)
	}
	return dto
}

// FromLibraryEntries converts a slice of stored entries.
func FromLibraryEntries(entries []*library.Entry) []LibraryEntry {
	out := make([]LibraryEntry, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		out = append(out, FromLibraryEntry(entry))
	}
	return out
}

// FromDependencies converts binary checks and assigns a severity to each.
func FromDependencies(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, 0, len(statuses))
	for _, s := range statuses {
		severity := "ok"
		if !s.Available {
			severity = "error"
			if s.Optional {
				severity = "warn"
			}
		}
		out = append(out, DependencyStatus{
			Name:        s.Name,
			Command:     s.Command,
			Description: s.Description,
			Optional:    s.Optional,
			Available:   s.Available,
			Detail:      s.Detail,
			Severity:    severity,
		})
	}
	return out
}

// FromPreflight converts preflight results into status lines.
func FromPreflight(results []preflight.Result) []StatusLine {
	out := make([]StatusLine, 0, len(results))
	for _, r := range results {
		severity := "error"
		if r.Passed {
			severity = "ok"
		}
		out = append(out, StatusLine{Label: r.Name, Severity: severity, Detail: r.Detail})
	}
	return out
}

// LibraryFilter validates a listing request.
func LibraryFilter(req LibraryListRequest) (library.ListFilter, error) {
	category, ok := library.ParseCategory(strings.ToLower(strings.TrimSpace(req.Category)))
	if !ok {
		return library.ListFilter{}, apperrors.Invalid("list library", "unknown category %q", req.Category)
	}
	if req.Limit < 0 {
		return library.ListFilter{}, apperrors.Invalid("list library", "limit must not be negative")
	}
	return library.ListFilter{Category: category, Limit: req.Limit}, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

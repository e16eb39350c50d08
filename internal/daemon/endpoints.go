package daemon

import (
	"context"
	"strings"
	"time"

	"clipdeck/internal/api"
	"clipdeck/internal/apperrors"
	"clipdeck/internal/deps"
	"clipdeck/internal/fileutil"
	"clipdeck/internal/logging"
)

// ListDevices returns the capture device catalog. The cached listing is
// reused unless refresh is set.
func (d *Daemon) ListDevices(ctx context.Context, refresh bool) (api.DeviceListResponse, error) {
	list := d.catalog.List
	if refresh {
		list = d.catalog.Refresh
	}
	found, err := list(ctx)
	if err != nil {
		return api.DeviceListResponse{}, err
	}
	resp := api.DeviceListResponse{Devices: api.FromDevices(found)}
	if at, ok := d.catalog.RefreshedAt(); ok {
		resp.RefreshedAt = at.UTC().Format(time.RFC3339)
	}
	return resp, nil
}

// StartRecording spawns a capture process into the recording slot.
func (d *Daemon) StartRecording(req api.StartRecordingRequest) (api.RecordingInfo, error) {
	intent, err := api.CaptureIntent(req, d.cfg, time.Now())
	if err != nil {
		return api.RecordingInfo{}, err
	}
	info, err := d.sessions.Start(intent)
	if err != nil {
		return api.RecordingInfo{}, err
	}
	return api.FromSessionInfo(info), nil
}

// StopRecording interrupts the active capture and waits for the file to be finalized.
func (d *Daemon) StopRecording() (api.RecordingResult, error) {
	result, err := d.sessions.Stop()
	if err != nil {
		return api.RecordingResult{}, err
	}
	return api.FromSessionResult(result), nil
}

// RecordingStatus reports whether a capture is live.
func (d *Daemon) RecordingStatus() api.RecordingStatus {
	return api.FromSessionStatus(d.sessions.Status())
}

// ExportVideo trims a single input. It blocks until the encoder exits.
func (d *Daemon) ExportVideo(ctx context.Context, req api.ExportRequest) (api.ExportResponse, error) {
	result, err := d.exporter.Trim(ctx, api.TrimIntent(req))
	d.recordExport(result, err)
	if err != nil {
		return api.ExportResponse{}, err
	}
	return api.FromExportResult(result), nil
}

// ExportVideoWithPip composites a picture-in-picture clip over a main clip.
func (d *Daemon) ExportVideoWithPip(ctx context.Context, req api.ExportPipRequest) (api.ExportResponse, error) {
	intent, err := api.OverlayIntent(req, d.cfg)
	if err != nil {
		return api.ExportResponse{}, err
	}
	result, err := d.exporter.Overlay(ctx, intent)
	d.recordExport(result, err)
	if err != nil {
		return api.ExportResponse{}, err
	}
	return api.FromExportResult(result), nil
}

// CheckEncoder runs the encoder's version probe.
func (d *Daemon) CheckEncoder(ctx context.Context) api.EncoderStatus {
	status := deps.CheckEncoder(ctx, d.runner, d.builder.VersionProbe())
	if !status.Available {
		logging.WarnWithContext(d.logger, "encoder unavailable", "encoder_unavailable",
			logging.String("detail", status.Detail),
			logging.String(logging.FieldErrorHint, "install ffmpeg or set encoder.ffmpeg_binary"),
			logging.String(logging.FieldImpact, "recordings and exports will fail"),
		)
	}
	return api.FromEncoderStatus(status)
}

// WriteTempFile stores data under the base name of req.Filename in the temp directory.
func (d *Daemon) WriteTempFile(req api.WriteTempRequest) (api.PathResponse, error) {
	path, err := fileutil.WriteTemp(d.cfg.Paths.TempDir, req.Filename, req.Data)
	if err != nil {
		return api.PathResponse{}, err
	}
	d.logger.Debug("temp file written",
		logging.String("path", path),
		logging.Int("bytes", len(req.Data)),
	)
	return api.PathResponse{Path: path}, nil
}

// ReadFile returns the contents of req.Path.
func (d *Daemon) ReadFile(req api.ReadFileRequest) (api.ReadFileResponse, error) {
	data, err := fileutil.ReadBytes(strings.TrimSpace(req.Path))
	if err != nil {
		return api.ReadFileResponse{}, err
	}
	return api.ReadFileResponse{Data: data}, nil
}

// DocumentsPath returns the user's documents directory.
func (d *Daemon) DocumentsPath() (api.PathResponse, error) {
	dir, err := fileutil.DocumentsDir()
	if err != nil {
		return api.PathResponse{}, err
	}
	return api.PathResponse{Path: dir}, nil
}

// LibraryList returns history entries, newest first. A disabled library lists nothing.
func (d *Daemon) LibraryList(ctx context.Context, req api.LibraryListRequest) (api.LibraryListResponse, error) {
	filter, err := api.LibraryFilter(req)
	if err != nil {
		return api.LibraryListResponse{}, err
	}
	if d.library == nil {
		return api.LibraryListResponse{Entries: []api.LibraryEntry{}}, nil
	}
	entries, err := d.library.List(ctx, filter)
	if err != nil {
		return api.LibraryListResponse{}, apperrors.Wrap(apperrors.ErrIO, "list library", "query failed", err)
	}
	return api.LibraryListResponse{Entries: api.FromLibraryEntries(entries)}, nil
}

// LibraryClear removes history entries, optionally restricted to one category.
func (d *Daemon) LibraryClear(ctx context.Context, req api.LibraryClearRequest) (api.LibraryClearResponse, error) {
	filter, err := api.LibraryFilter(api.LibraryListRequest{Category: req.Category})
	if err != nil {
		return api.LibraryClearResponse{}, err
	}
	if d.library == nil {
		return api.LibraryClearResponse{}, nil
	}
	removed, err := d.library.Clear(ctx, filter.Category)
	if err != nil {
		return api.LibraryClearResponse{}, apperrors.Wrap(apperrors.ErrIO, "clear library", "delete failed", err)
	}
	d.logger.Info("library cleared",
		logging.String(logging.FieldEventType, "library_cleared"),
		logging.String("category", string(filter.Category)),
		logging.Int64("removed", removed),
	)
	return api.LibraryClearResponse{Removed: removed}, nil
}

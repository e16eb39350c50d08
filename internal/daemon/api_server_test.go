package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipdeck/internal/api"
	"clipdeck/internal/config"
	"clipdeck/internal/encoder"
	"clipdeck/internal/logging"
	"clipdeck/internal/process"
	"clipdeck/internal/testsupport"
)

const deviceListing = `[AVFoundation indev @ 0x1] AVFoundation video devices:
[AVFoundation indev @ 0x1] [0] FaceTime HD Camera
[AVFoundation indev @ 0x1] [1] Capture screen 0
[AVFoundation indev @ 0x1] AVFoundation audio devices:
[AVFoundation indev @ 0x1] [0] Built-in Microphone
`

type testServer struct {
	cfg    *config.Config
	host   *testsupport.FakeHost
	runner *testsupport.FakeRunner
	daemon *Daemon
	http   *httptest.Server
}

func newTestServer(t *testing.T, opts ...testsupport.ConfigOption) *testServer {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	host := &testsupport.FakeHost{}
	runner := &testsupport.FakeRunner{}
	d, err := New(cfg, logging.NewNop(), Options{Host: host, Runner: runner})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv, err := newAPIServer(cfg, d, logging.NewNop())
	if err != nil {
		t.Fatalf("newAPIServer: %v", err)
	}
	ts := httptest.NewServer(srv.handler())
	t.Cleanup(ts.Close)
	return &testServer{cfg: cfg, host: host, runner: runner, daemon: d, http: ts}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, s.http.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestRecordingLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	out := filepath.Join(s.cfg.Paths.RecordingsDir, "a.mp4")

	resp := s.do(t, http.MethodPost, "/api/recording/start", api.StartRecordingRequest{
		OutputPath:    out,
		RecordingType: "screen",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d", resp.StatusCode)
	}
	info := decode[api.RecordingInfo](t, resp)
	if info.OutputPath != out || info.RecordingType != "screen" || info.ID == "" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := os.Stat(s.cfg.Paths.RecordingsDir); err != nil {
		t.Fatalf("recordings dir not created: %v", err)
	}

	resp = s.do(t, http.MethodPost, "/api/recording/start", api.StartRecordingRequest{RecordingType: "webcam"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second start status = %d, want 409", resp.StatusCode)
	}
	if body := decode[api.ErrorResponse](t, resp); body.Kind != "already_recording" {
		t.Fatalf("unexpected error body %+v", body)
	}

	status := decode[api.RecordingStatus](t, s.do(t, http.MethodGet, "/api/recording", nil))
	if !status.Recording || status.Current == nil || status.Current.ID != info.ID {
		t.Fatalf("unexpected status %+v", status)
	}

	resp = s.do(t, http.MethodPost, "/api/recording/stop", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stop status = %d", resp.StatusCode)
	}
	result := decode[api.RecordingResult](t, resp)
	if result.Message != "Recording saved to "+out || result.Reason != "stopped" {
		t.Fatalf("unexpected result %+v", result)
	}
	if s.host.Last().Interrupts() != 1 {
		t.Fatalf("expected one interrupt, got %d", s.host.Last().Interrupts())
	}

	resp = s.do(t, http.MethodPost, "/api/recording/stop", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("idle stop status = %d, want 409", resp.StatusCode)
	}
	if body := decode[api.ErrorResponse](t, resp); body.Kind != "no_active_recording" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestStartRecordingDefaultsOutputPath(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/recording/start", api.StartRecordingRequest{RecordingType: "picture-in-picture"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	info := decode[api.RecordingInfo](t, resp)
	if filepath.Dir(info.OutputPath) != s.cfg.Paths.RecordingsDir {
		t.Fatalf("output %q not in recordings dir", info.OutputPath)
	}
	if !strings.HasPrefix(filepath.Base(info.OutputPath), "recording_") {
		t.Fatalf("unexpected default name %q", info.OutputPath)
	}
	if info.RecordingType != "pip" {
		t.Fatalf("recording type = %q, want pip", info.RecordingType)
	}
}

func TestStartRecordingRejectsUnknownType(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/recording/start", api.StartRecordingRequest{RecordingType: "hologram"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if len(s.host.Spawned()) != 0 {
		t.Fatal("invalid request must not spawn")
	}
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	s := newTestServer(t)
	req, _ := http.NewRequest(http.MethodPost, s.http.URL+"/api/export", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPostRequiresJSONContentType(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		name        string
		path        string
		contentType string
		body        string
	}{
		{"text plain start", "/api/recording/start", "text/plain", `{"recording_type":"screen"}`},
		{"form temp write", "/api/files/temp", "application/x-www-form-urlencoded", `{"filename":"a.txt","data":"aGk="}`},
		{"missing header stop", "/api/recording/stop", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, s.http.URL+tc.path, strings.NewReader(tc.body))
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}
			req.Header.Set("Origin", "https://example.com")
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusUnsupportedMediaType {
				t.Fatalf("status = %d, want 415", resp.StatusCode)
			}
		})
	}
	if len(s.host.Spawned()) != 0 {
		t.Fatal("rejected requests must not spawn")
	}
	if entries, _ := os.ReadDir(s.cfg.Paths.TempDir); len(entries) != 0 {
		t.Fatalf("rejected requests must not write files, found %d", len(entries))
	}

	req, _ := http.NewRequest(http.MethodPost, s.http.URL+"/api/recording/start", strings.NewReader(`{"recording_type":"screen"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("json start status = %d, want 200", resp.StatusCode)
	}
}

func TestDevicesEndpointCachesUntilRefresh(t *testing.T) {
	s := newTestServer(t)
	s.runner.Output = process.Output{Stderr: deviceListing, ExitCode: 1}

	list := decode[api.DeviceListResponse](t, s.do(t, http.MethodGet, "/api/devices", nil))
	if len(list.Devices) != 3 {
		t.Fatalf("expected 3 devices, got %+v", list.Devices)
	}
	if list.Devices[0].Type != "webcam" || list.Devices[1].Type != "screen" || list.Devices[2].Type != "audio" {
		t.Fatalf("unexpected categories %+v", list.Devices)
	}

	_ = s.do(t, http.MethodGet, "/api/devices", nil)
	if calls := len(s.runner.Calls()); calls != 1 {
		t.Fatalf("expected cached listing, runner called %d times", calls)
	}
	_ = s.do(t, http.MethodGet, "/api/devices?refresh=1", nil)
	if calls := len(s.runner.Calls()); calls != 2 {
		t.Fatalf("expected refresh to probe again, runner called %d times", calls)
	}
}

func TestExportEndpointErrors(t *testing.T) {
	s := newTestServer(t)
	out := filepath.Join(s.cfg.Paths.ExportsDir, "clip.mp4")

	resp := s.do(t, http.MethodPost, "/api/export", api.ExportRequest{InputPath: "/in.mp4", OutputPath: out, StartTime: 5, EndTime: 2})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("inverted window status = %d, want 400", resp.StatusCode)
	}

	s.runner.Output = process.Output{ExitCode: 1, Stderr: "Invalid data found when processing input"}
	resp = s.do(t, http.MethodPost, "/api/export", api.ExportRequest{InputPath: "/in.mp4", OutputPath: out, StartTime: 0, EndTime: 2})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("tool failure status = %d, want 502", resp.StatusCode)
	}
	body := decode[api.ErrorResponse](t, resp)
	if body.Kind != "external_tool_failed" || !strings.Contains(body.Error, "Invalid data found") {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestExportPipEndpoint(t *testing.T) {
	s := newTestServer(t)
	out := filepath.Join(s.cfg.Paths.ExportsDir, "pip.mp4")
	s.runner.Func = func(_ context.Context, inv encoder.Invocation) (process.Output, error) {
		if inv.Program == s.cfg.FFprobeBinary() {
			return process.Output{ExitCode: 1}, nil
		}
		return process.Output{}, nil
	}

	resp := s.do(t, http.MethodPost, "/api/export/pip", api.ExportPipRequest{
		MainPath: "/main.mp4", PipPath: "/cam.mp4", OutputPath: out,
		MainStartTime: 0, MainEndTime: 10, PipStartTime: 0, PipEndTime: 10,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	export := decode[api.ExportResponse](t, resp)
	if export.OutputPath != out || export.Kind != "pip" {
		t.Fatalf("unexpected response %+v", export)
	}
}

func TestEncoderEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.runner.Output = process.Output{Stdout: "ffmpeg version 7.1 Copyright (c) 2000-2024\n"}
	status := decode[api.EncoderStatus](t, s.do(t, http.MethodGet, "/api/encoder", nil))
	if !status.Available || status.Version != "7.1" {
		t.Fatalf("unexpected status %+v", status)
	}

	s.runner.Err = errors.New("exec: not found")
	status = decode[api.EncoderStatus](t, s.do(t, http.MethodGet, "/api/encoder", nil))
	if status.Available {
		t.Fatal("expected encoder unavailable")
	}
}

func TestFileEndpoints(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/files/temp", api.WriteTempRequest{Filename: "../../evil/clip.webm", Data: []byte("payload")})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("write status = %d", resp.StatusCode)
	}
	written := decode[api.PathResponse](t, resp)
	if written.Path != filepath.Join(s.cfg.Paths.TempDir, "clip.webm") {
		t.Fatalf("unexpected temp path %q", written.Path)
	}

	resp = s.do(t, http.MethodPost, "/api/files/read", api.ReadFileRequest{Path: written.Path})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("read status = %d", resp.StatusCode)
	}
	if got := decode[api.ReadFileResponse](t, resp); string(got.Data) != "payload" {
		t.Fatalf("unexpected data %q", got.Data)
	}

	resp = s.do(t, http.MethodPost, "/api/files/read", api.ReadFileRequest{Path: filepath.Join(s.cfg.Paths.TempDir, "missing")})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("missing file status = %d, want 500", resp.StatusCode)
	}
	if body := decode[api.ErrorResponse](t, resp); body.Kind != "io_error" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestDocumentsEndpoint(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	s := newTestServer(t)
	got := decode[api.PathResponse](t, s.do(t, http.MethodGet, "/api/documents", nil))
	if got.Path != filepath.Join(home, "Documents") {
		t.Fatalf("documents path = %q", got.Path)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/api/recording/start", nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow != http.MethodPost {
		t.Fatalf("Allow = %q", allow)
	}
}

func TestAuthRequiresBearerToken(t *testing.T) {
	s := newTestServer(t, testsupport.WithAPIToken("secret"))

	resp := s.do(t, http.MethodGet, "/api/recording", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", resp.StatusCode)
	}

	for _, header := range []string{"Bearer wrong", "Basic secret"} {
		req, _ := http.NewRequest(http.MethodGet, s.http.URL+"/api/recording", nil)
		req.Header.Set("Authorization", header)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status with %q = %d, want 401", header, resp.StatusCode)
		}
	}

	req, _ := http.NewRequest(http.MethodGet, s.http.URL+"/api/recording", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status with token = %d, want 200", resp.StatusCode)
	}
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/api/recording", nil)
	if resp.Header.Get(requestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}

	req, _ := http.NewRequest(http.MethodGet, s.http.URL+"/api/recording", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp2.Body.Close()
	if got := resp2.Header.Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("request id = %q, want caller's id", got)
	}
}

func TestLibraryEndpointWithoutStore(t *testing.T) {
	s := newTestServer(t)
	list := decode[api.LibraryListResponse](t, s.do(t, http.MethodGet, "/api/library?category=exports&limit=5", nil))
	if list.Entries == nil || len(list.Entries) != 0 {
		t.Fatalf("expected empty list, got %+v", list.Entries)
	}
	resp := s.do(t, http.MethodGet, "/api/library?category=podcasts", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown category status = %d, want 400", resp.StatusCode)
	}
	resp = s.do(t, http.MethodGet, "/api/library?limit=many", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d, want 400", resp.StatusCode)
	}
	resp = s.do(t, http.MethodPut, "/api/library", nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("put status = %d, want 405", resp.StatusCode)
	}
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer(t)
	status := decode[api.DaemonStatus](t, s.do(t, http.MethodGet, "/api/status", nil))
	if status.Running {
		t.Fatal("daemon was never started")
	}
	if status.PID != os.Getpid() {
		t.Fatalf("pid = %d", status.PID)
	}
	if len(status.Dependencies) != 2 {
		t.Fatalf("expected ffmpeg and ffprobe dependencies, got %+v", status.Dependencies)
	}
	if status.LockFilePath != filepath.Join(s.cfg.Paths.LogDir, "clipdeck.lock") {
		t.Fatalf("lock path = %q", status.LockFilePath)
	}
}

package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"clipdeck/internal/config"
	"clipdeck/internal/logging"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("daemon ready", logging.String(logging.FieldEventType, "daemon_ready"))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "clipdeck.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", data, err)
	}
	if entry["msg"] != "daemon ready" || entry["level"] != "info" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
	if entry[logging.FieldEventType] != "daemon_ready" {
		t.Fatalf("expected event type, got %v", entry)
	}
}

func TestConsoleLoggerFormatsComponentAndRecording(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger = logging.NewComponentLogger(logger, "session")
	logger.Info("recording started",
		logging.String(logging.FieldRecordingID, "0123456789abcdef"),
		logging.String("output", "/tmp/my clip.mp4"),
	)
	logger.Debug("hidden")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, want := range []string{"INFO [session] rec 01234567 – recording started", `output="/tmp/my clip.mp4"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "hidden") {
		t.Fatalf("debug record leaked at info level: %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml", OutputPaths: []string{filepath.Join(t.TempDir(), "x.log")}}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logging.WarnWithContext(logger, "interrupt failed", "interrupt_failed",
		logging.String(logging.FieldImpact, "encoder may not finalize output"),
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry[logging.FieldEventType] != "interrupt_failed" {
		t.Fatalf("expected event type, got %v", entry)
	}
	if entry[logging.FieldImpact] != "encoder may not finalize output" {
		t.Fatalf("expected caller impact preserved, got %v", entry)
	}
	if entry[logging.FieldErrorHint] == nil {
		t.Fatalf("expected default error hint, got %v", entry)
	}
}

func TestWithContextAddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := logging.WithRequestID(context.Background(), "req-42")
	logging.WithContext(ctx, base).Info("export requested")

	if !strings.Contains(buf.String(), `"correlation_id":"req-42"`) {
		t.Fatalf("expected correlation id, got %s", buf.String())
	}
	if _, ok := logging.RequestIDFromContext(logging.WithRequestID(context.Background(), "  ")); ok {
		t.Fatal("blank request id should not be stored")
	}
}

func TestWithSessionIDTagsRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.WithSessionID(slog.New(slog.NewJSONHandler(&buf, nil)), "diag-1")
	logger.Info("hello")
	if !strings.Contains(buf.String(), `"session_id":"diag-1"`) {
		t.Fatalf("expected session id, got %s", buf.String())
	}
}

func TestCleanupOldLogsRemovesExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	oldLog := filepath.Join(dir, "clipdeck-old.log")
	newLog := filepath.Join(dir, "clipdeck-new.log")
	current := filepath.Join(dir, "clipdeck-current.log")
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{oldLog, newLog, current, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	past := time.Now().AddDate(0, 0, -10)
	for _, path := range []string{oldLog, current, other} {
		if err := os.Chtimes(path, past, past); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	logging.CleanupOldLogs(logging.NewNop(), 7, logging.RetentionTarget{Dir: dir, Pattern: "clipdeck-*.log", Exclude: []string{current}})

	if _, err := os.Stat(oldLog); !os.IsNotExist(err) {
		t.Fatalf("expected %s removed, err=%v", oldLog, err)
	}
	for _, path := range []string{newLog, current, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}
}

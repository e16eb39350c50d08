package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEncoder()
	c.normalizeCapture()
	c.normalizeOverlay()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.RecordingsDir) == "" {
		c.Paths.RecordingsDir = defaultRecordingsDir
	}
	if c.Paths.RecordingsDir, err = expandPath(c.Paths.RecordingsDir); err != nil {
		return fmt.Errorf("paths.recordings_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportsDir) == "" {
		c.Paths.ExportsDir = defaultExportsDir
	}
	if c.Paths.ExportsDir, err = expandPath(c.Paths.ExportsDir); err != nil {
		return fmt.Errorf("paths.exports_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = defaultTempDir()
	}
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv(apiTokenEnv); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeEncoder() {
	c.Encoder.FFmpegBinary = strings.TrimSpace(c.Encoder.FFmpegBinary)
	if c.Encoder.FFmpegBinary == "" {
		c.Encoder.FFmpegBinary = defaultFFmpegBinary
	}
	c.Encoder.FFprobeBinary = strings.TrimSpace(c.Encoder.FFprobeBinary)
	if c.Encoder.FFprobeBinary == "" {
		c.Encoder.FFprobeBinary = defaultFFprobeBinary
	}
	c.Encoder.InputFormat = defaultString(c.Encoder.InputFormat, defaultInputFormat)
	c.Encoder.VideoCodec = defaultString(c.Encoder.VideoCodec, defaultVideoCodec)
	c.Encoder.AudioCodec = defaultString(c.Encoder.AudioCodec, defaultAudioCodec)
	c.Encoder.ExportPreset = defaultString(c.Encoder.ExportPreset, defaultExportPreset)
	c.Encoder.CapturePreset = defaultString(c.Encoder.CapturePreset, defaultCapturePreset)
	c.Encoder.PixelFormat = defaultString(c.Encoder.PixelFormat, defaultPixelFormat)
	if c.Encoder.Framerate <= 0 {
		c.Encoder.Framerate = defaultFramerate
	}
}

func (c *Config) normalizeCapture() {
	c.Capture.WebcamSize = strings.ToLower(defaultString(c.Capture.WebcamSize, defaultWebcamSize))
	if c.Capture.AudioIndex < noAudioIndex {
		c.Capture.AudioIndex = noAudioIndex
	}
}

func (c *Config) normalizeOverlay() {
	if c.Overlay.Margin < 0 {
		c.Overlay.Margin = 0
	}
	c.Overlay.CaptureSize = strings.ToLower(defaultString(c.Overlay.CaptureSize, defaultOverlaySize))
	c.Overlay.CapturePosition = strings.ToLower(defaultString(c.Overlay.CapturePosition, defaultCapturePosition))
	c.Overlay.ExportPosition = strings.ToLower(defaultString(c.Overlay.ExportPosition, defaultExportPosition))
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func defaultString(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

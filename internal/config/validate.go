package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

var (
	validPositions = map[string]struct{}{
		"top-left":     {},
		"top-right":    {},
		"bottom-left":  {},
		"bottom-right": {},
	}
	validOverlaySizes = map[string]struct{}{
		"small":  {},
		"medium": {},
		"large":  {},
	}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateOverlay(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Paths.RecordingsDir == "" {
		return errors.New("paths.recordings_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind must be host:port: %w", err)
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if strings.ContainsAny(c.Encoder.FFmpegBinary, "\n\r") {
		return errors.New("encoder.ffmpeg_binary must be a single path")
	}
	if c.Encoder.Framerate > 240 {
		return fmt.Errorf("encoder.framerate must be between 1 and 240, got %d", c.Encoder.Framerate)
	}
	return nil
}

func (c *Config) validateCapture() error {
	if c.Capture.DefaultScreenIndex < 0 {
		return errors.New("capture.default_screen_index must be non-negative")
	}
	if c.Capture.DefaultWebcamIndex < 0 {
		return errors.New("capture.default_webcam_index must be non-negative")
	}
	if _, _, err := ParseFrameSize(c.Capture.WebcamSize); err != nil {
		return fmt.Errorf("capture.webcam_size: %w", err)
	}
	if c.Capture.FrameWidth < 0 || c.Capture.FrameHeight < 0 {
		return errors.New("capture.frame_width and capture.frame_height must be non-negative")
	}
	if (c.Capture.FrameWidth == 0) != (c.Capture.FrameHeight == 0) {
		return errors.New("capture.frame_width and capture.frame_height must be set together")
	}
	return nil
}

func (c *Config) validateOverlay() error {
	if _, ok := validOverlaySizes[c.Overlay.CaptureSize]; !ok {
		return fmt.Errorf("overlay.capture_size must be small, medium, or large (got %q)", c.Overlay.CaptureSize)
	}
	if _, ok := validPositions[c.Overlay.CapturePosition]; !ok {
		return fmt.Errorf("overlay.capture_position %q is not a corner placement", c.Overlay.CapturePosition)
	}
	if _, ok := validPositions[c.Overlay.ExportPosition]; !ok {
		return fmt.Errorf("overlay.export_position %q is not a corner placement", c.Overlay.ExportPosition)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
}

// ParseFrameSize parses a WIDTHxHEIGHT string such as 1280x720.
func ParseFrameSize(value string) (int, int, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(value)), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid frame size %q", value)
	}
	width, err := strconv.Atoi(parts[0])
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("invalid frame width in %q", value)
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("invalid frame height in %q", value)
	}
	return width, height, nil
}

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	LogDir        string `toml:"log_dir"`
	RecordingsDir string `toml:"recordings_dir"`
	ExportsDir    string `toml:"exports_dir"`
	TempDir       string `toml:"temp_dir"`
	APIBind       string `toml:"api_bind"`
	APIToken      string `toml:"api_token"`
}

// Encoder contains the external encoder binaries and shared codec settings.
type Encoder struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	InputFormat   string `toml:"input_format"`
	VideoCodec    string `toml:"video_codec"`
	AudioCodec    string `toml:"audio_codec"`
	ExportPreset  string `toml:"export_preset"`
	CapturePreset string `toml:"capture_preset"`
	PixelFormat   string `toml:"pixel_format"`
	Framerate     int    `toml:"framerate"`
}

// Capture contains defaults applied to recording requests.
type Capture struct {
	DefaultScreenIndex int    `toml:"default_screen_index"`
	DefaultWebcamIndex int    `toml:"default_webcam_index"`
	AudioIndex         int    `toml:"audio_index"` // -1 records without audio
	WebcamSize         string `toml:"webcam_size"`
	CaptureCursor      bool   `toml:"capture_cursor"`
	FrameWidth         int    `toml:"frame_width"`
	FrameHeight        int    `toml:"frame_height"`
}

// Overlay contains picture-in-picture placement settings.
type Overlay struct {
	Margin          int    `toml:"margin"`
	CaptureSize     string `toml:"capture_size"`
	CapturePosition string `toml:"capture_position"`
	ExportPosition  string `toml:"export_position"`
}

// Library contains configuration for recording/export history.
type Library struct {
	Enabled bool `toml:"enabled"`
}

// Devices contains configuration for device discovery.
type Devices struct {
	HotplugMonitor bool `toml:"hotplug_monitor"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for clipdeck.
//
// Configuration sections by subsystem:
//   - Paths: directories, API bind address and token
//   - Encoder: ffmpeg/ffprobe binaries and codec settings
//   - Capture: recording defaults (device indices, webcam size)
//   - Overlay: picture-in-picture margin, size, and placement
//   - Library: recording/export history
//   - Devices: hotplug monitoring
//   - Logging: log format, level, and retention
type Config struct {
	Paths   Paths   `toml:"paths"`
	Encoder Encoder `toml:"encoder"`
	Capture Capture `toml:"capture"`
	Overlay Overlay `toml:"overlay"`
	Library Library `toml:"library"`
	Devices Devices `toml:"devices"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("clipdeck.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.RecordingsDir, c.Paths.ExportsDir, c.Paths.TempDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the encoder executable used for capture and export.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Encoder.FFmpegBinary); bin != "" {
		return bin
	}
	return defaultFFmpegBinary
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Encoder.FFprobeBinary); bin != "" {
		return bin
	}
	return defaultFFprobeBinary
}

// ToolLogDir is where per-recording encoder diagnostics are written.
func (c *Config) ToolLogDir() string {
	return filepath.Join(c.Paths.LogDir, "tool")
}

// LibraryDBPath returns the SQLite database location for recording history.
func (c *Config) LibraryDBPath() string {
	return filepath.Join(c.Paths.LogDir, "library.db")
}

// SocketPath returns the daemon IPC socket location.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.LogDir, "clipdeck.sock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

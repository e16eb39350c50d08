package config

import (
	"os"
	"strings"
)

const (
	defaultConfigPath       = "~/.config/clipdeck/config.toml"
	defaultLogDir           = "~/.local/share/clipdeck/logs"
	defaultRecordingsDir    = "~/Movies/clipdeck"
	defaultExportsDir       = "~/Documents"
	defaultAPIBind          = "127.0.0.1:7491"
	defaultFFmpegBinary     = "ffmpeg"
	defaultFFprobeBinary    = "ffprobe"
	defaultInputFormat      = "avfoundation"
	defaultVideoCodec       = "libx264"
	defaultAudioCodec       = "aac"
	defaultExportPreset     = "medium"
	defaultCapturePreset    = "ultrafast"
	defaultPixelFormat      = "yuv420p"
	defaultFramerate        = 30
	defaultScreenIndex      = 1
	defaultWebcamIndex      = 0
	defaultWebcamSize       = "1280x720"
	defaultOverlayMargin    = 20
	defaultOverlaySize      = "small"
	defaultCapturePosition  = "bottom-right"
	defaultExportPosition   = "bottom-left"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
	noAudioIndex            = -1
	apiTokenEnv             = "CLIPDECK_API_TOKEN"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:        defaultLogDir,
			RecordingsDir: defaultRecordingsDir,
			ExportsDir:    defaultExportsDir,
			APIBind:       defaultAPIBind,
		},
		Encoder: Encoder{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			InputFormat:   defaultInputFormat,
			VideoCodec:    defaultVideoCodec,
			AudioCodec:    defaultAudioCodec,
			ExportPreset:  defaultExportPreset,
			CapturePreset: defaultCapturePreset,
			PixelFormat:   defaultPixelFormat,
			Framerate:     defaultFramerate,
		},
		Capture: Capture{
			DefaultScreenIndex: defaultScreenIndex,
			DefaultWebcamIndex: defaultWebcamIndex,
			AudioIndex:         noAudioIndex,
			WebcamSize:         defaultWebcamSize,
			CaptureCursor:      true,
		},
		Overlay: Overlay{
			Margin:          defaultOverlayMargin,
			CaptureSize:     defaultOverlaySize,
			CapturePosition: defaultCapturePosition,
			ExportPosition:  defaultExportPosition,
		},
		Library: Library{
			Enabled: true,
		},
		Devices: Devices{
			HotplugMonitor: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

func defaultTempDir() string {
	if dir := strings.TrimSpace(os.TempDir()); dir != "" {
		return dir
	}
	return "/tmp"
}

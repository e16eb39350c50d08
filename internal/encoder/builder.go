package encoder

import (
	"math"
	"strconv"
	"strings"

	"clipdeck/internal/apperrors"
)

// Invocation is a program plus its argument vector. Arguments are passed to
// the process as-is; no shell is involved.
type Invocation struct {
	Program string
	Args    []string
}

// String renders the invocation for logs, quoting arguments that need it.
func (inv Invocation) String() string {
	parts := make([]string, 0, len(inv.Args)+1)
	parts = append(parts, inv.Program)
	for _, arg := range inv.Args {
		if arg == "" || strings.ContainsAny(arg, " \t'\"[];") {
			parts = append(parts, strconv.Quote(arg))
			continue
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

// Options holds the encoder settings shared by every invocation.
type Options struct {
	Program       string
	InputFormat   string
	VideoCodec    string
	AudioCodec    string
	ExportPreset  string
	CapturePreset string
	PixelFormat   string
	Framerate     int
	AudioIndex    int // NoDevice records video only
	WebcamSize    string
	CaptureCursor bool
	Margin        int
	ScreenFrame   Size // zero when the screen resolution is unknown
}

// DefaultOptions returns settings that reproduce the stock ffmpeg invocations.
func DefaultOptions() Options {
	return Options{
		Program:       "ffmpeg",
		InputFormat:   "avfoundation",
		VideoCodec:    "libx264",
		AudioCodec:    "aac",
		ExportPreset:  "medium",
		CapturePreset: "ultrafast",
		PixelFormat:   "yuv420p",
		Framerate:     30,
		AudioIndex:    NoDevice,
		WebcamSize:    "1280x720",
		CaptureCursor: true,
		Margin:        20,
	}
}

// Builder turns intents into invocations. It performs no I/O.
type Builder struct {
	opts Options
}

// NewBuilder fills blank options from DefaultOptions.
func NewBuilder(opts Options) *Builder {
	def := DefaultOptions()
	if strings.TrimSpace(opts.Program) == "" {
		opts.Program = def.Program
	}
	if opts.InputFormat == "" {
		opts.InputFormat = def.InputFormat
	}
	if opts.VideoCodec == "" {
		opts.VideoCodec = def.VideoCodec
	}
	if opts.AudioCodec == "" {
		opts.AudioCodec = def.AudioCodec
	}
	if opts.ExportPreset == "" {
		opts.ExportPreset = def.ExportPreset
	}
	if opts.CapturePreset == "" {
		opts.CapturePreset = def.CapturePreset
	}
	if opts.PixelFormat == "" {
		opts.PixelFormat = def.PixelFormat
	}
	if opts.Framerate <= 0 {
		opts.Framerate = def.Framerate
	}
	if opts.WebcamSize == "" {
		opts.WebcamSize = def.WebcamSize
	}
	if opts.Margin < 0 {
		opts.Margin = 0
	}
	return &Builder{opts: opts}
}

// Options returns the effective builder settings.
func (b *Builder) Options() Options { return b.opts }

// Capture renders a recording invocation.
func (b *Builder) Capture(intent CaptureIntent) (Invocation, error) {
	if err := intent.validate(); err != nil {
		return Invocation{}, err
	}
	hasAudio := b.opts.AudioIndex >= 0

	var args []string
	switch intent.Kind {
	case CaptureScreen:
		args = append(args, b.screenInput(intent.ScreenIndex, hasAudio)...)
	case CaptureWebcam:
		args = append(args, b.webcamInput(intent.WebcamIndex, hasAudio)...)
	case CapturePiP:
		placement := intent.Placement
		if placement == "" {
			placement = BottomRight
		}
		size := intent.Size
		if size == "" {
			size = OverlaySmall
		}
		overlay := size.Dimensions()
		args = append(args, b.screenInput(intent.ScreenIndex, hasAudio)...)
		args = append(args, b.webcamInput(intent.WebcamIndex, false)...)
		filter := "[1:v]scale=" + strconv.Itoa(overlay.Width) + ":" + strconv.Itoa(overlay.Height) + "[pip];" +
			"[0:v][pip]overlay=" + overlayPosition(placement, b.opts.ScreenFrame, overlay, b.opts.Margin) + "[out]"
		args = append(args, "-filter_complex", filter, "-map", "[out]")
		if hasAudio {
			args = append(args, "-map", "0:a?")
		}
	}

	args = append(args,
		"-c:v", b.opts.VideoCodec,
		"-preset", b.opts.CapturePreset,
		"-pix_fmt", b.opts.PixelFormat,
	)
	if hasAudio {
		args = append(args, "-c:a", b.opts.AudioCodec)
	}
	args = append(args, "-y", intent.OutputPath)
	return Invocation{Program: b.opts.Program, Args: args}, nil
}

func (b *Builder) screenInput(index int, audio bool) []string {
	args := []string{
		"-f", b.opts.InputFormat,
		"-framerate", strconv.Itoa(b.opts.Framerate),
	}
	if b.opts.CaptureCursor {
		args = append(args, "-capture_cursor", "1")
	}
	return append(args, "-i", b.deviceSpec(index, audio))
}

func (b *Builder) webcamInput(index int, audio bool) []string {
	return []string{
		"-f", b.opts.InputFormat,
		"-framerate", strconv.Itoa(b.opts.Framerate),
		"-video_size", b.opts.WebcamSize,
		"-i", b.deviceSpec(index, audio),
	}
}

// deviceSpec renders the avfoundation "video:audio" input selector.
func (b *Builder) deviceSpec(video int, audio bool) string {
	if audio {
		return strconv.Itoa(video) + ":" + strconv.Itoa(b.opts.AudioIndex)
	}
	return strconv.Itoa(video) + ":none"
}

// Trim renders a single-input re-encode over [Start, End).
func (b *Builder) Trim(intent TrimIntent) (Invocation, error) {
	if err := requirePaths("build trim", intent.Input, intent.Output); err != nil {
		return Invocation{}, err
	}
	if err := validateWindow("build trim", intent.Start, intent.End); err != nil {
		return Invocation{}, err
	}
	args := []string{
		"-i", intent.Input,
		"-ss", formatSeconds(intent.Start),
		"-t", formatSeconds(intent.End - intent.Start),
		"-c:v", b.opts.VideoCodec,
		"-c:a", b.opts.AudioCodec,
		"-preset", b.opts.ExportPreset,
		"-y", intent.Output,
	}
	return Invocation{Program: b.opts.Program, Args: args}, nil
}

// OverlayExport renders a two-input composite. Each input is trimmed on the
// input side, the PiP stream is scaled to the small overlay size and shown
// only during the main window.
func (b *Builder) OverlayExport(intent OverlayExportIntent) (Invocation, error) {
	if err := requirePaths("build pip export", intent.MainPath, intent.PipPath, intent.Output); err != nil {
		return Invocation{}, err
	}
	if err := validateWindow("build pip export: main", intent.MainStart, intent.MainEnd); err != nil {
		return Invocation{}, err
	}
	if err := validateWindow("build pip export: pip", intent.PipStart, intent.PipEnd); err != nil {
		return Invocation{}, err
	}
	placement := intent.Placement
	if placement == "" {
		placement = BottomLeft
	}
	if _, err := ParsePlacement(string(placement)); err != nil {
		return Invocation{}, err
	}

	mainDuration := formatSeconds(intent.MainEnd - intent.MainStart)
	overlay := OverlaySmall.Dimensions()
	filter := "[1:v]scale=" + strconv.Itoa(overlay.Width) + ":" + strconv.Itoa(overlay.Height) + "[pip];" +
		"[0:v][pip]overlay=" + overlayPosition(placement, intent.MainFrame, overlay, b.opts.Margin) +
		":enable='between(t,0," + mainDuration + ")'[v]"

	args := []string{
		"-ss", formatSeconds(intent.MainStart),
		"-t", mainDuration,
		"-i", intent.MainPath,
		"-ss", formatSeconds(intent.PipStart),
		"-t", formatSeconds(intent.PipEnd - intent.PipStart),
		"-i", intent.PipPath,
		"-filter_complex", filter,
		"-map", "[v]",
		"-map", "0:a?",
		"-c:v", b.opts.VideoCodec,
		"-c:a", b.opts.AudioCodec,
		"-preset", b.opts.ExportPreset,
		"-y", intent.Output,
	}
	return Invocation{Program: b.opts.Program, Args: args}, nil
}

// DeviceProbe lists capture devices. The encoder prints the catalog on its
// diagnostic stream and exits non-zero.
func (b *Builder) DeviceProbe() Invocation {
	return Invocation{
		Program: b.opts.Program,
		Args:    []string{"-f", b.opts.InputFormat, "-list_devices", "true", "-i", ""},
	}
}

// VersionProbe checks that the encoder can be executed.
func (b *Builder) VersionProbe() Invocation {
	return Invocation{Program: b.opts.Program, Args: []string{"-version"}}
}

func requirePaths(op string, paths ...string) error {
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			return apperrors.Invalid(op, "input and output paths are required")
		}
	}
	return nil
}

func validateWindow(op string, start, end float64) error {
	switch {
	case math.IsNaN(start) || math.IsNaN(end) || math.IsInf(start, 0) || math.IsInf(end, 0):
		return apperrors.Invalid(op, "start and end times must be finite")
	case start < 0:
		return apperrors.Invalid(op, "start time %s must not be negative", formatSeconds(start))
	case end <= start:
		return apperrors.Invalid(op, "end time %s must be after start time %s", formatSeconds(end), formatSeconds(start))
	}
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

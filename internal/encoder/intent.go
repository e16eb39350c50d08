package encoder

import (
	"strings"

	"clipdeck/internal/apperrors"
)

// CaptureKind selects which capture variant an intent describes.
type CaptureKind string

const (
	CaptureScreen CaptureKind = "screen"
	CaptureWebcam CaptureKind = "webcam"
	CapturePiP    CaptureKind = "pip"
)

// ParseCaptureKind accepts screen, webcam, pip, and picture-in-picture.
func ParseCaptureKind(value string) (CaptureKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "screen":
		return CaptureScreen, nil
	case "webcam", "camera":
		return CaptureWebcam, nil
	case "pip", "picture-in-picture", "picture_in_picture":
		return CapturePiP, nil
	default:
		return "", apperrors.Invalid("parse recording type", "unknown recording type %q", value)
	}
}

// NoDevice marks a device index that the intent does not carry.
const NoDevice = -1

// CaptureIntent describes a recording. Screen uses ScreenIndex, Webcam uses
// WebcamIndex, and PiP uses both plus Placement and Size.
type CaptureIntent struct {
	Kind        CaptureKind
	ScreenIndex int
	WebcamIndex int
	OutputPath  string
	Placement   Placement
	Size        OverlaySize
}

func (c CaptureIntent) validate() error {
	if strings.TrimSpace(c.OutputPath) == "" {
		return apperrors.Invalid("build capture", "output path is required")
	}
	needScreen := c.Kind == CaptureScreen || c.Kind == CapturePiP
	needWebcam := c.Kind == CaptureWebcam || c.Kind == CapturePiP
	switch c.Kind {
	case CaptureScreen, CaptureWebcam, CapturePiP:
	default:
		return apperrors.Invalid("build capture", "unknown recording type %q", c.Kind)
	}
	if needScreen && c.ScreenIndex < 0 {
		return apperrors.Invalid("build capture", "screen index is required for %s recordings", c.Kind)
	}
	if needWebcam && c.WebcamIndex < 0 {
		return apperrors.Invalid("build capture", "webcam index is required for %s recordings", c.Kind)
	}
	if c.Placement != "" && !c.Placement.valid() {
		return apperrors.Invalid("build capture", "unknown pip position %q", c.Placement)
	}
	if c.Size != "" && !c.Size.valid() {
		return apperrors.Invalid("build capture", "unknown pip size %q", c.Size)
	}
	return nil
}

// TrimIntent re-encodes Input over [Start, End) into Output.
type TrimIntent struct {
	Input  string
	Output string
	Start  float64
	End    float64
}

// OverlayExportIntent composites a trimmed PiP clip over a trimmed main clip.
// MainFrame may be zero when the main clip's resolution is unknown.
type OverlayExportIntent struct {
	MainPath  string
	PipPath   string
	Output    string
	MainStart float64
	MainEnd   float64
	PipStart  float64
	PipEnd    float64
	Placement Placement
	MainFrame Size
}

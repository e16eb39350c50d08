package encoder

import (
	"strconv"
	"strings"

	"clipdeck/internal/apperrors"
)

// Placement is the corner a picture-in-picture overlay is anchored to.
type Placement string

const (
	TopLeft     Placement = "top-left"
	TopRight    Placement = "top-right"
	BottomLeft  Placement = "bottom-left"
	BottomRight Placement = "bottom-right"
)

// ParsePlacement accepts the corner names case-insensitively. Underscores are
// treated as hyphens.
func ParsePlacement(value string) (Placement, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "_", "-")
	if p := Placement(normalized); p.valid() {
		return p, nil
	}
	return "", apperrors.Invalid("parse placement", "unknown pip position %q", value)
}

func (p Placement) valid() bool {
	switch p {
	case TopLeft, TopRight, BottomLeft, BottomRight:
		return true
	}
	return false
}

func (p Placement) right() bool  { return p == TopRight || p == BottomRight }
func (p Placement) bottom() bool { return p == BottomLeft || p == BottomRight }

// Size is a frame or overlay resolution in pixels.
type Size struct {
	Width  int
	Height int
}

// Known reports whether both dimensions are positive.
func (s Size) Known() bool { return s.Width > 0 && s.Height > 0 }

// Offset computes the overlay's top-left pixel position inside frame.
func (p Placement) Offset(frame, overlay Size, margin int) (x, y int) {
	x, y = margin, margin
	if p.right() {
		x = frame.Width - overlay.Width - margin
	}
	if p.bottom() {
		y = frame.Height - overlay.Height - margin
	}
	return x, y
}

// Expr renders the same rule as overlay filter expressions, evaluated by the
// encoder against the main (W, H) and overlay (w, h) dimensions.
func (p Placement) Expr(margin int) (x, y string) {
	m := strconv.Itoa(margin)
	x, y = m, m
	if p.right() {
		x = "W-w-" + m
	}
	if p.bottom() {
		y = "H-h-" + m
	}
	return x, y
}

// overlayPosition picks numeric offsets when frame is known, expressions otherwise.
func overlayPosition(p Placement, frame, overlay Size, margin int) string {
	if frame.Known() {
		x, y := p.Offset(frame, overlay, margin)
		return strconv.Itoa(x) + ":" + strconv.Itoa(y)
	}
	x, y := p.Expr(margin)
	return x + ":" + y
}

// OverlaySize is the size class of a picture-in-picture overlay.
type OverlaySize string

const (
	OverlaySmall  OverlaySize = "small"
	OverlayMedium OverlaySize = "medium"
	OverlayLarge  OverlaySize = "large"
)

// ParseOverlaySize accepts small, medium, or large.
func ParseOverlaySize(value string) (OverlaySize, error) {
	switch s := OverlaySize(strings.ToLower(strings.TrimSpace(value))); s {
	case OverlaySmall, OverlayMedium, OverlayLarge:
		return s, nil
	default:
		return "", apperrors.Invalid("parse overlay size", "unknown pip size %q", value)
	}
}

func (s OverlaySize) valid() bool {
	return s == OverlaySmall || s == OverlayMedium || s == OverlayLarge
}

// Dimensions returns the scaled overlay resolution for the size class.
func (s OverlaySize) Dimensions() Size {
	switch s {
	case OverlayMedium:
		return Size{Width: 480, Height: 270}
	case OverlayLarge:
		return Size{Width: 640, Height: 360}
	default:
		return Size{Width: 320, Height: 180}
	}
}

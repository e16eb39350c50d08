package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"clipdeck/internal/encoder"
	"clipdeck/internal/logging"
	"clipdeck/internal/media/ffprobe"
	"clipdeck/internal/process"
)

// Duration sources reported by Prober.Duration.
const (
	SourceFFprobe = "ffprobe"
	SourceMP4     = "mp4"
)

// ErrUnknownDuration is returned when neither ffprobe nor the MP4 header
// yields a positive duration.
var ErrUnknownDuration = errors.New("media duration unavailable")

// Prober reads media metadata, preferring ffprobe and falling back to the
// MP4 movie header.
type Prober struct {
	runner process.Runner
	binary string
	logger *slog.Logger
}

// NewProber constructs a Prober that runs binary through runner.
func NewProber(runner process.Runner, binary string, logger *slog.Logger) *Prober {
	return &Prober{runner: runner, binary: binary, logger: logging.NewComponentLogger(logger, "media")}
}

// Duration returns the media duration in seconds and where it was read from.
func (p *Prober) Duration(ctx context.Context, path string) (float64, string, error) {
	result, err := ffprobe.Inspect(ctx, p.runner, p.binary, path)
	if err == nil {
		if d := result.DurationSeconds(); d > 0 && !math.IsNaN(d) {
			return d, SourceFFprobe, nil
		}
	} else {
		p.logger.Debug("ffprobe duration failed; trying mp4 header",
			logging.String(logging.FieldEventType, "ffprobe_fallback"),
			logging.String("path", path),
			logging.Error(err),
		)
	}

	d, mp4Err := MP4Duration(path)
	if mp4Err != nil {
		if err != nil {
			return 0, "", fmt.Errorf("%w: %w", ErrUnknownDuration, errors.Join(err, mp4Err))
		}
		return 0, "", fmt.Errorf("%w: %w", ErrUnknownDuration, mp4Err)
	}
	return d, SourceMP4, nil
}

// FrameSize returns the first video stream's resolution, or a zero Size
// when it cannot be determined.
func (p *Prober) FrameSize(ctx context.Context, path string) encoder.Size {
	result, err := ffprobe.Inspect(ctx, p.runner, p.binary, path)
	if err != nil {
		p.logger.Debug("frame size probe failed",
			logging.String(logging.FieldEventType, "frame_size_unknown"),
			logging.String("path", path),
			logging.Error(err),
		)
		return encoder.Size{}
	}
	w, h, ok := result.VideoSize()
	if !ok {
		return encoder.Size{}
	}
	return encoder.Size{Width: w, Height: h}
}

// MP4Duration reads the movie header (mvhd) of an MP4 file.
func MP4Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open mp4: %w", err)
	}
	defer f.Close()

	parsed, err := mp4.DecodeFile(f, mp4.WithDecodeMode(mp4.DecModeLazyMdat))
	if err != nil {
		return 0, fmt.Errorf("decode mp4: %w", err)
	}
	if parsed.Moov == nil || parsed.Moov.Mvhd == nil {
		return 0, fmt.Errorf("decode mp4: %w", ErrUnknownDuration)
	}
	mvhd := parsed.Moov.Mvhd
	if mvhd.Timescale == 0 || mvhd.Duration == 0 {
		return 0, fmt.Errorf("mp4 header: %w", ErrUnknownDuration)
	}
	return float64(mvhd.Duration) / float64(mvhd.Timescale), nil
}

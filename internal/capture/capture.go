// Package capture grabs single frames from a video at exact timestamps.
package capture

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/Fr0z3nRebel/video-toolbox/internal/engine"
	"github.com/Fr0z3nRebel/video-toolbox/internal/errors"
	"github.com/Fr0z3nRebel/video-toolbox/internal/util"
)

// Image formats for captured frames.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// DefaultSeekTimeout bounds how long one seek may take before the capture
// is abandoned.
const DefaultSeekTimeout = 5 * time.Second

// Default timestamp clamp epsilons in seconds.
const (
	DefaultEndEpsilon   = 0.1
	DefaultStartEpsilon = 0.01
)

// Options configures a Capturer.
type Options struct {
	Format string
	// JPEGQuality in [0,1], where 1 is best. Ignored for PNG.
	JPEGQuality float64
	SeekTimeout time.Duration
	// StartEpsilon replaces negative timestamps; EndEpsilon backs off
	// timestamps at or past the end of the media.
	StartEpsilon float64
	EndEpsilon   float64
}

// withDefaults fills in zero-valued options.
func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = FormatPNG
	}
	if o.SeekTimeout <= 0 {
		o.SeekTimeout = DefaultSeekTimeout
	}
	if o.StartEpsilon <= 0 {
		o.StartEpsilon = DefaultStartEpsilon
	}
	if o.EndEpsilon <= 0 {
		o.EndEpsilon = DefaultEndEpsilon
	}
	return o
}

// Capturer extracts frames through an engine session.
type Capturer struct {
	session *engine.Session
	opts    Options
}

// New creates a Capturer. The session must be acquired before Frame is
// called.
func New(session *engine.Session, opts Options) (*Capturer, error) {
	opts = opts.withDefaults()
	if opts.Format != FormatPNG && opts.Format != FormatJPEG {
		return nil, errors.NewInvalidOptionsError(fmt.Sprintf("unsupported image format %q", opts.Format), nil)
	}
	if opts.JPEGQuality < 0 || opts.JPEGQuality > 1 {
		return nil, errors.NewInvalidOptionsError(
			fmt.Sprintf("jpeg quality %.2f must be within [0, 1]", opts.JPEGQuality), nil)
	}
	return &Capturer{session: session, opts: opts}, nil
}

// Extension returns the file extension for the configured format.
func (c *Capturer) Extension() string {
	if c.opts.Format == FormatJPEG {
		return ".jpg"
	}
	return ".png"
}

// ClampTimestamp applies the capture timestamp policy: targets at or past
// the end of the media back off by endEpsilon, and negative targets snap to
// startEpsilon. In-range targets pass through untouched.
func ClampTimestamp(target, duration, startEpsilon, endEpsilon float64) float64 {
	if target < 0 {
		return startEpsilon
	}
	if target >= duration {
		clamped := duration - endEpsilon
		if clamped < 0 {
			clamped = startEpsilon
		}
		return clamped
	}
	return target
}

// jpegQScale maps a [0,1] quality to the encoder's 2 (best) to 31 (worst)
// quantizer range.
func jpegQScale(quality float64) int {
	return int(math.Round(2 + (1-quality)*29))
}

// buildArgs composes the single-frame extraction argv. Seeking happens
// before the input is opened so the demuxer jumps instead of decoding up
// to the target.
func (c *Capturer) buildArgs(inputPath string, target float64, outputPath string) []string {
	args := []string{
		"-y",
		"-ss", util.FormatSeconds(target),
		"-i", inputPath,
		"-frames:v", "1",
	}
	if c.opts.Format == FormatJPEG {
		args = append(args, "-q:v", fmt.Sprintf("%d", jpegQScale(c.opts.JPEGQuality)))
	}
	return append(args, outputPath)
}

// Frame captures the frame nearest the target timestamp into the named
// staged file. The target is clamped per policy before seeking, and the
// seek is bounded by the configured timeout.
func (c *Capturer) Frame(ctx context.Context, inputPath string, target, duration float64, outName string) error {
	clamped := ClampTimestamp(target, duration, c.opts.StartEpsilon, c.opts.EndEpsilon)

	outputPath, err := c.session.Path(outName)
	if err != nil {
		return err
	}

	seekCtx, cancel := context.WithTimeout(ctx, c.opts.SeekTimeout)
	defer cancel()

	err = c.session.Run(seekCtx, engine.RunSpec{
		Args: c.buildArgs(inputPath, clamped, outputPath),
	})
	if err != nil {
		if seekCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return errors.NewSeekTimeoutError(clamped)
		}
		if ctx.Err() != nil {
			return errors.NewCancelledError()
		}
		return err
	}

	// A zero-byte capture means the encoder produced nothing usable.
	info, statErr := os.Stat(outputPath)
	if statErr != nil || info.Size() == 0 {
		return errors.NewEncodeError(outName)
	}
	return nil
}

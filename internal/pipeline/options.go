package pipeline

import (
	"github.com/go-playground/validator/v10"

	"github.com/Fr0z3nRebel/video-toolbox/internal/errors"
	"github.com/Fr0z3nRebel/video-toolbox/internal/util"
)

var validate = validator.New()

// Frame positions.
const (
	PositionFirst = "first"
	PositionLast  = "last"
)

// Dithering algorithms for GIF palette application. DitherNone is an
// explicit variant rather than an absent value.
const (
	DitherNone           = "none"
	DitherFloydSteinberg = "floyd_steinberg"
	DitherBayer          = "bayer"
	DitherSierra2        = "sierra2"
	DitherSierra24A      = "sierra2_4a"
)

// Audio output formats and quality tiers.
const (
	AudioFormatMP3 = "mp3"
	AudioFormatWAV = "wav"

	AudioQualityLow    = "low"
	AudioQualityMedium = "medium"
	AudioQualityHigh   = "high"
)

// FrameOptions configures the frame extraction tool.
type FrameOptions struct {
	Position string `validate:"required,oneof=first last"`
	Format   string `validate:"required,oneof=png jpeg"`
	// Quality applies to jpeg only, 1 is best.
	Quality float64 `validate:"gte=0,lte=1"`
}

// DefaultFrameOptions returns the frame extraction defaults.
func DefaultFrameOptions() FrameOptions {
	return FrameOptions{Position: PositionFirst, Format: "png", Quality: 0.92}
}

// GIFOptions configures the video-to-GIF tool.
type GIFOptions struct {
	FPS int `validate:"gte=1,lte=30"`
	// Quality is 1 (best) to 20 (smallest palette).
	Quality int     `validate:"gte=1,lte=20"`
	Scale   float64 `validate:"gt=0,lte=1"`
	// StartTime is the offset into the source in seconds.
	StartTime float64 `validate:"gte=0"`
	// MaxDuration caps the converted span in seconds.
	MaxDuration float64 `validate:"gt=0"`
	Dithering   string  `validate:"required,oneof=none floyd_steinberg bayer sierra2 sierra2_4a"`
	// LoopCount follows GIF semantics: 0 loops forever, -1 plays once.
	LoopCount int `validate:"gte=-1"`
	// Workers bounds encoder threading.
	Workers int `validate:"gte=2,lte=8"`
}

// DefaultGIFOptions returns the GIF conversion defaults.
func DefaultGIFOptions() GIFOptions {
	return GIFOptions{
		FPS:         10,
		Quality:     10,
		Scale:       1.0,
		StartTime:   0,
		MaxDuration: 10,
		Dithering:   DitherFloydSteinberg,
		LoopCount:   0,
		Workers:     util.DefaultEncoderWorkers(),
	}
}

// MaxColors maps a [1,20] quality to the palette size, monotonically
// decreasing and floored at 32 colors.
func (o GIFOptions) MaxColors() int {
	colors := 256 - (o.Quality-1)*12
	if colors < 32 {
		colors = 32
	}
	return colors
}

// SplitOptions configures the audio segment splitting tool.
type SplitOptions struct {
	// SegmentLength is the target length of each piece in seconds.
	SegmentLength float64 `validate:"gt=0"`
}

// AudioOptions configures the audio extraction tool.
type AudioOptions struct {
	Format  string `validate:"required,oneof=mp3 wav"`
	Quality string `validate:"required,oneof=low medium high"`
	// ExtraArgs are additional encoder arguments inserted before the
	// output, already tokenized. Callers validate them at the boundary.
	ExtraArgs []string `validate:"-"`
}

// DefaultAudioOptions returns the audio extraction defaults.
func DefaultAudioOptions() AudioOptions {
	return AudioOptions{Format: AudioFormatMP3, Quality: AudioQualityMedium}
}

// Bitrate returns the mp3 bitrate for the quality tier. WAV output ignores
// the tier and is always pcm_s16le at 44.1kHz.
func (o AudioOptions) Bitrate() string {
	switch o.Quality {
	case AudioQualityLow:
		return "96k"
	case AudioQualityHigh:
		return "320k"
	default:
		return "192k"
	}
}

// checkOptions runs struct tag validation, converting failures into a
// descriptive options error instead of clamping.
func checkOptions(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return errors.NewInvalidOptionsError("options failed validation", err)
	}
	return nil
}

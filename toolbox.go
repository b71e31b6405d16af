// Package toolbox provides a Go library for common media tooling: video
// frame extraction, video-to-GIF conversion, audio extraction, and audio
// segment splitting.
//
// Toolbox is an opinionated FFmpeg wrapper. Decode and encode work is
// delegated to locally installed ffmpeg/ffprobe binaries through a shared,
// lazily initialized engine session with a private staging directory.
//
// Basic usage:
//
//	tb, err := toolbox.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tb.Close()
//
//	artifact, err := tb.ConvertGIF(ctx, "input.mp4", "output/", toolbox.DefaultGIFOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Wrote %s (%d bytes)\n", artifact.Name, artifact.Size)
package toolbox

import (
	"context"
	"time"

	"github.com/Fr0z3nRebel/video-toolbox/internal/capture"
	"github.com/Fr0z3nRebel/video-toolbox/internal/config"
	"github.com/Fr0z3nRebel/video-toolbox/internal/discovery"
	"github.com/Fr0z3nRebel/video-toolbox/internal/engine"
	"github.com/Fr0z3nRebel/video-toolbox/internal/pipeline"
	"github.com/Fr0z3nRebel/video-toolbox/internal/probe"
	"github.com/Fr0z3nRebel/video-toolbox/internal/report"
)

// Re-export the option records and artifact type.
type (
	FrameOptions = pipeline.FrameOptions
	GIFOptions   = pipeline.GIFOptions
	SplitOptions = pipeline.SplitOptions
	AudioOptions = pipeline.AudioOptions
	Artifact     = pipeline.Artifact
	Reporter     = report.Reporter
)

// Default option constructors.
var (
	DefaultFrameOptions = pipeline.DefaultFrameOptions
	DefaultGIFOptions   = pipeline.DefaultGIFOptions
	DefaultAudioOptions = pipeline.DefaultAudioOptions
)

// MediaMetadata describes a probed media source.
type MediaMetadata = probe.MediaMetadata

// Toolbox is the main entry point. It owns one engine session shared by
// all runs; callers serialize runs or namespace outputs per run.
type Toolbox struct {
	cfg      *config.Config
	session  *engine.Session
	prober   *probe.Prober
	reporter report.Reporter
}

// Option configures the toolbox.
type Option func(*Toolbox)

// New creates a Toolbox with the given options. The engine session is not
// initialized until the first run needs it.
func New(opts ...Option) (*Toolbox, error) {
	tb := &Toolbox{cfg: config.Default()}
	for _, opt := range opts {
		opt(tb)
	}
	if err := tb.cfg.Validate(); err != nil {
		return nil, err
	}

	tb.session = engine.NewSession(engine.Config{
		FFmpegBin:    tb.cfg.FFmpegBin,
		FFprobeBin:   tb.cfg.FFprobeBin,
		ScratchBase:  tb.cfg.ScratchDir,
		MinFreeSpace: tb.cfg.MinScratchSpace,
	})
	tb.prober = probe.New(tb.cfg.FFprobeBin)
	return tb, nil
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg *config.Config) Option {
	return func(t *Toolbox) {
		t.cfg = cfg
	}
}

// WithFFmpegBin sets the ffmpeg binary name or path.
func WithFFmpegBin(bin string) Option {
	return func(t *Toolbox) {
		t.cfg.FFmpegBin = bin
	}
}

// WithFFprobeBin sets the ffprobe binary name or path.
func WithFFprobeBin(bin string) Option {
	return func(t *Toolbox) {
		t.cfg.FFprobeBin = bin
	}
}

// WithScratchDir sets where the engine's staging directory is created.
func WithScratchDir(dir string) Option {
	return func(t *Toolbox) {
		t.cfg.ScratchDir = dir
	}
}

// WithSeekTimeout bounds how long a frame capture seek may take.
func WithSeekTimeout(d time.Duration) Option {
	return func(t *Toolbox) {
		t.cfg.SeekTimeout = d
	}
}

// WithReporter attaches a progress reporter to every run.
func WithReporter(r report.Reporter) Option {
	return func(t *Toolbox) {
		t.reporter = r
	}
}

// Probe returns metadata for a media file.
func (t *Toolbox) Probe(ctx context.Context, input string) (*MediaMetadata, error) {
	return t.prober.Probe(ctx, input)
}

// runner builds a pipeline runner bound to the shared session.
func (t *Toolbox) runner() *pipeline.Runner {
	return pipeline.NewRunner(t.session, t.prober, t.reporter, capture.Options{
		SeekTimeout:  t.cfg.SeekTimeout,
		StartEpsilon: t.cfg.StartEpsilon,
		EndEpsilon:   t.cfg.EndEpsilon,
	})
}

// ExtractFrames extracts one frame from each input video. Per-file
// failures are skipped; all successful artifacts are returned in input
// order.
func (t *Toolbox) ExtractFrames(ctx context.Context, inputs []string, outputDir string, opts FrameOptions) ([]Artifact, error) {
	return t.runner().RunFrames(ctx, inputs, outputDir, opts)
}

// ExtractFramesFromDir extracts frames from every video file in a
// directory.
func (t *Toolbox) ExtractFramesFromDir(ctx context.Context, inputDir, outputDir string, opts FrameOptions) ([]Artifact, error) {
	inputs, err := discovery.FindVideoFiles(inputDir)
	if err != nil {
		return nil, err
	}
	return t.runner().RunFrames(ctx, inputs, outputDir, opts)
}

// ConvertGIF converts one video into an animated GIF.
func (t *Toolbox) ConvertGIF(ctx context.Context, input, outputDir string, opts GIFOptions) (*Artifact, error) {
	return t.runner().RunGIF(ctx, input, outputDir, opts)
}

// ExtractAudio extracts the audio track of one video.
func (t *Toolbox) ExtractAudio(ctx context.Context, input, outputDir string, opts AudioOptions) (*Artifact, error) {
	return t.runner().RunAudioExtract(ctx, input, outputDir, opts)
}

// SplitAudio cuts one audio file into fixed-length segments.
func (t *Toolbox) SplitAudio(ctx context.Context, input, outputDir string, opts SplitOptions) ([]Artifact, error) {
	return t.runner().RunAudioSplit(ctx, input, outputDir, opts)
}

// Close tears down the engine session and removes its staging directory.
func (t *Toolbox) Close() error {
	return t.session.Close()
}

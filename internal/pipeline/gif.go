package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/Fr0z3nRebel/video-toolbox/internal/engine"
	"github.com/Fr0z3nRebel/video-toolbox/internal/errors"
	"github.com/Fr0z3nRebel/video-toolbox/internal/plan"
	"github.com/Fr0z3nRebel/video-toolbox/internal/report"
	"github.com/Fr0z3nRebel/video-toolbox/internal/util"
)

// GIF conversion progress bands.
const (
	gifLoadingHi = 20
	gifPaletteHi = 50
	gifEncodeHi  = 90
)

// RunGIF converts one video into an animated GIF using a two-pass
// palette encode: a palettegen pass computes the optimal palette for the
// selected span, then a paletteuse pass renders the frames against it.
// The run aborts on the first error with no partial output.
func (r *Runner) RunGIF(ctx context.Context, inputPath, outDir string, opts GIFOptions) (*Artifact, error) {
	if err := checkOptions(opts); err != nil {
		return nil, r.fail("gif", err)
	}

	started := time.Now()
	meta, err := r.load(ctx, inputPath, gifLoadingHi)
	if err != nil {
		return nil, r.fail("gif", err)
	}
	if !meta.HasVideo {
		return nil, r.fail("gif", errors.NewMetadataLoadError(inputPath, nil))
	}
	if opts.StartTime >= meta.DurationSeconds {
		return nil, r.fail("gif", errors.NewInvalidOptionsError(
			fmt.Sprintf("start time %.3fs is past the end of the %.3fs source",
				opts.StartTime, meta.DurationSeconds), nil))
	}

	span := meta.DurationSeconds - opts.StartTime
	if span > opts.MaxDuration {
		span = opts.MaxDuration
	}

	width, height := plan.ScaleDimensions(meta.Width, meta.Height, opts.Scale)
	filters := fmt.Sprintf("fps=%d,scale=%d:%d:flags=lanczos", opts.FPS, width, height)

	rn := newRun()
	defer r.cleanup(rn)

	r.reporter.ToolStarted(report.ToolStartInfo{
		Tool:      "gif",
		InputFile: util.GetFilename(inputPath),
		OutputDir: outDir,
		Detail: fmt.Sprintf("%dx%d @ %d fps, %d colors, dither %s",
			width, height, opts.FPS, opts.MaxColors(), opts.Dithering),
	})

	palette := rn.stagedName("palette.png")
	palettePath, err := r.session.Path(palette)
	if err != nil {
		return nil, r.fail("gif", err)
	}

	paletteArgs := []string{
		"-y",
		"-ss", util.FormatSeconds(opts.StartTime),
		"-t", util.FormatSeconds(span),
		"-i", inputPath,
		"-vf", fmt.Sprintf("%s,palettegen=max_colors=%d", filters, opts.MaxColors()),
		palettePath,
	}
	err = r.session.Run(ctx, engine.RunSpec{
		Args:          paletteArgs,
		MediaDuration: span,
		OnProgress: func(p engine.Progress) {
			r.emit(StagePalette, band(gifLoadingHi, gifPaletteHi, p.Percent/100), "", 0, 0)
		},
	})
	if err != nil {
		return nil, r.fail("gif", err)
	}
	r.emit(StagePalette, gifPaletteHi, "palette ready", 0, 0)

	stem := util.GetFileStem(inputPath)
	finalName := gifName(stem)
	output := rn.stagedName(finalName)
	outputPath, err := r.session.Path(output)
	if err != nil {
		return nil, r.fail("gif", err)
	}

	encodeArgs := []string{
		"-y",
		"-ss", util.FormatSeconds(opts.StartTime),
		"-t", util.FormatSeconds(span),
		"-i", inputPath,
		"-i", palettePath,
		"-lavfi", fmt.Sprintf("%s[x];[x][1:v]paletteuse=dither=%s", filters, opts.Dithering),
		"-loop", fmt.Sprintf("%d", opts.LoopCount),
		"-threads", fmt.Sprintf("%d", util.ClampWorkers(opts.Workers)),
		outputPath,
	}
	err = r.session.Run(ctx, engine.RunSpec{
		Args:          encodeArgs,
		MediaDuration: span,
		OnProgress: func(p engine.Progress) {
			r.emit(StageEncoding, band(gifPaletteHi, gifEncodeHi, p.Percent/100), "", 0, 0)
		},
	})
	if err != nil {
		return nil, r.fail("gif", err)
	}

	r.emit(StageFinalizing, gifEncodeHi, "", 0, 0)
	artifact, err := r.export(output, outDir, finalName)
	if err != nil {
		return nil, r.fail("gif", err)
	}

	r.complete("gif", inputPath, outDir, []Artifact{artifact}, started)
	return &artifact, nil
}

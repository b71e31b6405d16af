package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Fr0z3nRebel/video-toolbox/internal/engine"
	"github.com/Fr0z3nRebel/video-toolbox/internal/errors"
	"github.com/Fr0z3nRebel/video-toolbox/internal/plan"
	"github.com/Fr0z3nRebel/video-toolbox/internal/report"
	"github.com/Fr0z3nRebel/video-toolbox/internal/util"
)

// Audio tool progress bands, shared by extraction and splitting.
const (
	audioLoadingHi = 20
	audioWorkHi    = 90
)

// RunAudioExtract extracts the audio track of one video into mp3 or wav.
// The run aborts on the first error with no partial output.
func (r *Runner) RunAudioExtract(ctx context.Context, inputPath, outDir string, opts AudioOptions) (*Artifact, error) {
	if err := checkOptions(opts); err != nil {
		return nil, r.fail("extract-audio", err)
	}

	started := time.Now()
	meta, err := r.load(ctx, inputPath, audioLoadingHi)
	if err != nil {
		return nil, r.fail("extract-audio", err)
	}
	if !meta.HasAudio {
		return nil, r.fail("extract-audio", errors.NewMetadataLoadError(inputPath, nil))
	}

	rn := newRun()
	defer r.cleanup(rn)

	stem := util.GetFileStem(inputPath)
	finalName := audioName(stem, opts.Format)
	output := rn.stagedName(finalName)
	outputPath, err := r.session.Path(output)
	if err != nil {
		return nil, r.fail("extract-audio", err)
	}

	detail := opts.Format
	args := []string{"-y", "-i", inputPath, "-vn"}
	if opts.Format == AudioFormatWAV {
		// WAV is uncompressed CD-quality regardless of the tier.
		args = append(args, "-acodec", "pcm_s16le", "-ar", "44100")
	} else {
		args = append(args, "-acodec", "libmp3lame", "-b:a", opts.Bitrate())
		detail = fmt.Sprintf("%s @ %s", opts.Format, opts.Bitrate())
	}
	args = append(args, opts.ExtraArgs...)
	args = append(args, outputPath)

	r.reporter.ToolStarted(report.ToolStartInfo{
		Tool:      "extract-audio",
		InputFile: util.GetFilename(inputPath),
		OutputDir: outDir,
		Detail:    detail,
	})

	err = r.session.Run(ctx, engine.RunSpec{
		Args:          args,
		MediaDuration: meta.DurationSeconds,
		OnProgress: func(p engine.Progress) {
			r.emit(StageEncoding, band(audioLoadingHi, audioWorkHi, p.Percent/100), "", 0, 0)
		},
	})
	if err != nil {
		return nil, r.fail("extract-audio", err)
	}

	r.emit(StageFinalizing, audioWorkHi, "", 0, 0)
	artifact, err := r.export(output, outDir, finalName)
	if err != nil {
		return nil, r.fail("extract-audio", err)
	}

	r.complete("extract-audio", inputPath, outDir, []Artifact{artifact}, started)
	return &artifact, nil
}

// RunAudioSplit cuts one audio file into fixed-length segments without
// re-encoding. Segments are produced strictly in planner order; the run
// aborts on the first error with no partial output.
func (r *Runner) RunAudioSplit(ctx context.Context, inputPath, outDir string, opts SplitOptions) ([]Artifact, error) {
	if err := checkOptions(opts); err != nil {
		return nil, r.fail("split-audio", err)
	}

	started := time.Now()
	meta, err := r.load(ctx, inputPath, audioLoadingHi)
	if err != nil {
		return nil, r.fail("split-audio", err)
	}
	if !meta.HasAudio {
		return nil, r.fail("split-audio", errors.NewMetadataLoadError(inputPath, nil))
	}

	p, err := plan.Segments(meta.DurationSeconds, opts.SegmentLength)
	if err != nil {
		return nil, r.fail("split-audio", err)
	}
	r.reporter.PlanComputed(report.PlanSummary{
		Units:      p.Count(),
		UnitLength: p.UnitLength,
		LastShort:  p.LastShort,
	})

	rn := newRun()
	defer r.cleanup(rn)

	r.reporter.ToolStarted(report.ToolStartInfo{
		Tool:      "split-audio",
		InputFile: util.GetFilename(inputPath),
		OutputDir: outDir,
		Detail:    fmt.Sprintf("%d segments of %ss", p.Count(), util.FormatSeconds(opts.SegmentLength)),
	})

	stem := util.GetFileStem(inputPath)
	ext := filepath.Ext(inputPath)
	total := p.Count()

	var artifacts []Artifact
	for _, unit := range p.Units {
		if ctx.Err() != nil {
			return nil, r.fail("split-audio", errors.NewCancelledError())
		}

		finalName := segmentName(stem, unit.Index, ext)
		staged := rn.stagedName(finalName)
		stagedPath, err := r.session.Path(staged)
		if err != nil {
			return nil, r.fail("split-audio", err)
		}

		args := []string{
			"-y",
			"-ss", util.FormatSeconds(unit.Start),
			"-t", util.FormatSeconds(unit.Duration),
			"-i", inputPath,
			"-c", "copy",
			stagedPath,
		}
		if err := r.session.Run(ctx, engine.RunSpec{Args: args}); err != nil {
			return nil, r.fail("split-audio", err)
		}

		artifact, err := r.export(staged, outDir, finalName)
		if err != nil {
			return nil, r.fail("split-audio", err)
		}
		artifacts = append(artifacts, artifact)

		frac := float64(unit.Index+1) / float64(total)
		r.emit(StageSegments, band(audioLoadingHi, audioWorkHi, frac), finalName, unit.Index+1, total)
	}

	r.emit(StageFinalizing, audioWorkHi, "", 0, 0)
	r.complete("split-audio", inputPath, outDir, artifacts, started)
	return artifacts, nil
}

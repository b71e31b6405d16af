package pipeline

import (
	"context"
	"time"

	"github.com/Fr0z3nRebel/video-toolbox/internal/capture"
	"github.com/Fr0z3nRebel/video-toolbox/internal/errors"
	"github.com/Fr0z3nRebel/video-toolbox/internal/logging"
	"github.com/Fr0z3nRebel/video-toolbox/internal/report"
	"github.com/Fr0z3nRebel/video-toolbox/internal/util"
)

// Frame extraction progress bands.
const (
	framesLoadingHi    = 10
	framesExtractingHi = 95
)

// RunFrames extracts one frame from each input video. The batch continues
// past per-file failures: bad files are reported and skipped, and all
// successful artifacts are returned in input order. Only a fatal workspace
// or environment failure aborts the whole batch.
func (r *Runner) RunFrames(ctx context.Context, inputs []string, outDir string, opts FrameOptions) ([]Artifact, error) {
	if err := checkOptions(opts); err != nil {
		return nil, r.fail("frames", err)
	}
	if len(inputs) == 0 {
		return nil, r.fail("frames", errors.NewNoFilesFoundError("input list"))
	}

	started := time.Now()
	r.emit(StageLoading, 0, "starting engine", 0, 0)
	if err := r.session.Acquire(ctx); err != nil {
		return nil, r.fail("frames", err)
	}
	r.emit(StageLoading, framesLoadingHi, "engine ready", 0, 0)

	captureOpts := r.capture
	captureOpts.Format = opts.Format
	captureOpts.JPEGQuality = opts.Quality
	capturer, err := capture.New(r.session, captureOpts)
	if err != nil {
		return nil, r.fail("frames", err)
	}

	var artifacts []Artifact
	var failures []report.FileFailure
	total := len(inputs)

	fileList := make([]string, 0, total)
	for _, inputPath := range inputs {
		fileList = append(fileList, util.GetFilename(inputPath))
	}
	r.reporter.BatchStarted(report.BatchStartInfo{
		TotalFiles: total,
		FileList:   fileList,
		OutputDir:  outDir,
	})

	for i, inputPath := range inputs {
		if ctx.Err() != nil {
			return nil, r.fail("frames", errors.NewCancelledError())
		}
		r.reporter.FileProgress(report.FileProgressContext{CurrentFile: i + 1, TotalFiles: total})

		artifact, err := r.extractOneFrame(ctx, inputPath, outDir, opts, capturer)
		if err != nil {
			if errors.IsFatal(err) || errors.IsCancelled(err) {
				return nil, r.fail("frames", err)
			}
			logging.Warn("skipping file after extraction failure",
				"file", inputPath, "error", err)
			failures = append(failures, report.FileFailure{
				Filename: util.GetFilename(inputPath),
				Reason:   err.Error(),
			})
			continue
		}
		artifacts = append(artifacts, artifact)

		frac := float64(i+1) / float64(total)
		r.emit(StageExtracting, band(framesLoadingHi, framesExtractingHi, frac),
			util.GetFilename(inputPath), i+1, total)
	}

	r.emit(StageFinalizing, framesExtractingHi, "", 0, 0)

	var totalSize uint64
	for _, a := range artifacts {
		totalSize += a.Size
	}
	r.reporter.BatchComplete(report.BatchSummary{
		SuccessfulCount: len(artifacts),
		TotalFiles:      total,
		TotalArtifacts:  len(artifacts),
		TotalSize:       totalSize,
		Failures:        failures,
	})
	r.emit(StageComplete, 100, "", 0, 0)

	logging.Info("frame extraction finished",
		"succeeded", len(artifacts), "failed", len(failures),
		"elapsed", time.Since(started).String())
	return artifacts, nil
}

// extractOneFrame probes one input, captures the requested frame into the
// staging dir, and exports it. Staged files are released before returning
// on every path.
func (r *Runner) extractOneFrame(ctx context.Context, inputPath, outDir string, opts FrameOptions, capturer *capture.Capturer) (Artifact, error) {
	meta, err := r.prober.Probe(ctx, inputPath)
	if err != nil {
		return Artifact{}, err
	}
	if !meta.HasVideo {
		return Artifact{}, errors.NewMetadataLoadError(inputPath, nil)
	}

	target := 0.0
	if opts.Position == PositionLast {
		target = meta.DurationSeconds
	}

	rn := newRun()
	defer r.cleanup(rn)

	stem := util.GetFileStem(inputPath)
	finalName := frameName(stem, opts.Position, capturer.Extension())
	staged := rn.stagedName(finalName)

	if err := capturer.Frame(ctx, inputPath, target, meta.DurationSeconds, staged); err != nil {
		return Artifact{}, err
	}
	return r.export(staged, outDir, finalName)
}

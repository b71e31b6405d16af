// Package pipeline drives the per-tool media pipelines: metadata probe,
// planning, engine commands, and artifact export, with typed progress
// reporting throughout.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/Fr0z3nRebel/video-toolbox/internal/capture"
	"github.com/Fr0z3nRebel/video-toolbox/internal/engine"
	"github.com/Fr0z3nRebel/video-toolbox/internal/errors"
	"github.com/Fr0z3nRebel/video-toolbox/internal/logging"
	"github.com/Fr0z3nRebel/video-toolbox/internal/probe"
	"github.com/Fr0z3nRebel/video-toolbox/internal/report"
	"github.com/Fr0z3nRebel/video-toolbox/internal/util"
)

// Progress stages shared across the tools.
const (
	StageLoading    = "loading"
	StageExtracting = "extracting"
	StagePalette    = "palette"
	StageEncoding   = "encoding"
	StageSegments   = "segments"
	StageFinalizing = "finalizing"
	StageComplete   = "complete"
)

// Runner executes tool pipelines against a shared engine session. Units
// within one run are processed strictly sequentially; the session and its
// staging directory are shared, mutable resources.
type Runner struct {
	session  *engine.Session
	prober   *probe.Prober
	reporter report.Reporter
	capture  capture.Options
}

// NewRunner creates a Runner. A nil reporter discards progress.
func NewRunner(session *engine.Session, prober *probe.Prober, reporter report.Reporter, captureOpts capture.Options) *Runner {
	if reporter == nil {
		reporter = report.NullReporter{}
	}
	return &Runner{
		session:  session,
		prober:   prober,
		reporter: reporter,
		capture:  captureOpts,
	}
}

// run carries the per-run state: the staging namespace token and the files
// staged under it, so cleanup can release everything on every exit path.
type run struct {
	token  string
	staged []string
}

func newRun() *run {
	return &run{token: shortuuid.New()}
}

// stagedName namespaces a filename with the run token to avoid collisions
// between concurrent runs sharing one session.
func (r *run) stagedName(name string) string {
	staged := r.token + "_" + name
	r.staged = append(r.staged, staged)
	return staged
}

// cleanup deletes every staged file recorded for this run. Called on both
// the success and the abort path.
func (r *Runner) cleanup(rn *run) {
	for _, name := range rn.staged {
		if err := r.session.Delete(name); err != nil {
			logging.Warn("failed to delete staged file", "name", name, "error", err)
		}
	}
	rn.staged = nil
}

// emit sends one progress event.
func (r *Runner) emit(stage string, percent float64, message string, currentUnit, totalUnits int) {
	r.reporter.ToolProgress(report.ToolProgress{
		Stage:       stage,
		Percent:     percent,
		Message:     message,
		CurrentUnit: currentUnit,
		TotalUnits:  totalUnits,
	})
}

// band maps a [0,1] fraction into the [lo,hi] percent band.
func band(lo, hi, frac float64) float64 {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return lo + (hi-lo)*frac
}

// load acquires the engine and probes the input, reporting the outcome as
// the loading stage of the run.
func (r *Runner) load(ctx context.Context, inputPath string, loadingHi float64) (*probe.MediaMetadata, error) {
	r.emit(StageLoading, 0, "starting engine", 0, 0)
	if err := r.session.Acquire(ctx); err != nil {
		return nil, err
	}
	r.emit(StageLoading, loadingHi/2, "reading metadata", 0, 0)

	meta, err := r.prober.Probe(ctx, inputPath)
	if err != nil {
		return nil, err
	}

	resolution := ""
	if meta.HasVideo {
		resolution = formatResolution(meta.Width, meta.Height)
	}
	r.reporter.SourceLoaded(report.SourceSummary{
		InputFile:  util.GetFilename(inputPath),
		Duration:   util.FormatDuration(meta.DurationSeconds),
		Resolution: resolution,
		HasVideo:   meta.HasVideo,
		HasAudio:   meta.HasAudio,
	})
	r.emit(StageLoading, loadingHi, "metadata ready", 0, 0)
	return meta, nil
}

func formatResolution(width, height int) string {
	return fmt.Sprintf("%dx%d", width, height)
}

// export moves a staged output into the output directory under its final
// artifact name and reports it.
func (r *Runner) export(stagedName, outDir, finalName string) (Artifact, error) {
	srcPath, err := r.session.Path(stagedName)
	if err != nil {
		return Artifact{}, err
	}

	if err := util.EnsureDirectory(outDir); err != nil {
		return Artifact{}, errors.NewIOError("creating output directory "+outDir, err)
	}
	destPath := filepath.Join(outDir, finalName)

	if err := copyFile(srcPath, destPath); err != nil {
		return Artifact{}, err
	}

	size, err := util.GetFileSize(destPath)
	if err != nil {
		return Artifact{}, errors.NewIOError("stat "+destPath, err)
	}

	artifact := Artifact{Name: finalName, Path: destPath, Size: size}
	r.reporter.ArtifactReady(report.ArtifactSummary{Name: finalName, Size: size})
	return artifact, nil
}

// copyFile copies across filesystems; the staging dir and the output dir
// commonly live on different volumes, so rename is not an option.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.NewIOError("opening "+src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return errors.NewIOError("creating "+dest, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.NewIOError("copying to "+dest, err)
	}
	return out.Close()
}

// complete emits the terminal progress event and the tool summary.
func (r *Runner) complete(tool, inputPath, outDir string, artifacts []Artifact, started time.Time) {
	var totalSize uint64
	for _, a := range artifacts {
		totalSize += a.Size
	}
	r.emit(StageComplete, 100, "", 0, 0)
	r.reporter.ToolComplete(report.ToolOutcome{
		Tool:       tool,
		InputFile:  util.GetFilename(inputPath),
		Artifacts:  len(artifacts),
		TotalSize:  totalSize,
		OutputDir:  outDir,
		ElapsedSec: time.Since(started).Seconds(),
	})
}

// fail reports a run abort.
func (r *Runner) fail(tool string, err error) error {
	r.reporter.Error(report.ReporterError{
		Title:   tool + " failed",
		Message: err.Error(),
	})
	return err
}

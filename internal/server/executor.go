package server

import (
	"context"
	"fmt"

	"github.com/Fr0z3nRebel/video-toolbox/internal/capture"
	"github.com/Fr0z3nRebel/video-toolbox/internal/config"
	"github.com/Fr0z3nRebel/video-toolbox/internal/engine"
	"github.com/Fr0z3nRebel/video-toolbox/internal/pipeline"
	"github.com/Fr0z3nRebel/video-toolbox/internal/probe"
	"github.com/Fr0z3nRebel/video-toolbox/internal/report"
	"github.com/Fr0z3nRebel/video-toolbox/internal/task"
)

// Tool names accepted by the job API.
const (
	ToolFrames       = "frames"
	ToolGIF          = "gif"
	ToolExtractAudio = "extract-audio"
	ToolSplitAudio   = "split-audio"
)

// PipelineExecutor adapts the tool pipelines to the task manager. Each
// task gets its own Runner bound to a reporter that feeds the task's
// progress snapshot.
type PipelineExecutor struct {
	session *engine.Session
	prober  *probe.Prober
	capture capture.Options
}

// NewPipelineExecutor creates an executor sharing one engine session.
func NewPipelineExecutor(session *engine.Session, prober *probe.Prober, cfg *config.Config) *PipelineExecutor {
	return &PipelineExecutor{
		session: session,
		prober:  prober,
		capture: capture.Options{
			SeekTimeout:  cfg.SeekTimeout,
			StartEpsilon: cfg.StartEpsilon,
			EndEpsilon:   cfg.EndEpsilon,
		},
	}
}

// taskReporter forwards pipeline progress into the task snapshot.
type taskReporter struct {
	report.NullReporter
	task *task.Task
}

func (r *taskReporter) ToolProgress(update report.ToolProgress) {
	r.task.UpdateProgress(update.Stage, update.Percent)
}

// Execute runs the task's tool pipeline.
func (e *PipelineExecutor) Execute(ctx context.Context, t *task.Task) ([]pipeline.Artifact, error) {
	runner := pipeline.NewRunner(e.session, e.prober, &taskReporter{task: t}, e.capture)

	switch t.Tool {
	case ToolFrames:
		opts := pipeline.DefaultFrameOptions()
		if t.Options.Frame != nil {
			opts = *t.Options.Frame
		}
		return runner.RunFrames(ctx, []string{t.InputPath}, t.OutputDir, opts)
	case ToolGIF:
		opts := pipeline.DefaultGIFOptions()
		if t.Options.GIF != nil {
			opts = *t.Options.GIF
		}
		artifact, err := runner.RunGIF(ctx, t.InputPath, t.OutputDir, opts)
		if err != nil {
			return nil, err
		}
		return []pipeline.Artifact{*artifact}, nil
	case ToolExtractAudio:
		opts := pipeline.DefaultAudioOptions()
		if t.Options.Audio != nil {
			opts = *t.Options.Audio
		}
		artifact, err := runner.RunAudioExtract(ctx, t.InputPath, t.OutputDir, opts)
		if err != nil {
			return nil, err
		}
		return []pipeline.Artifact{*artifact}, nil
	case ToolSplitAudio:
		if t.Options.Split == nil {
			return nil, fmt.Errorf("split-audio requires split options")
		}
		return runner.RunAudioSplit(ctx, t.InputPath, t.OutputDir, *t.Options.Split)
	default:
		return nil, fmt.Errorf("unknown tool %q", t.Tool)
	}
}

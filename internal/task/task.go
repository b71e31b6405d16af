// Package task manages queued tool jobs for the HTTP service.
package task

import (
	"context"
	"sync"
	"time"

	"github.com/Fr0z3nRebel/video-toolbox/internal/pipeline"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

// Options carries the per-tool option payload; exactly one field matching
// the task's tool is set.
type Options struct {
	Frame *pipeline.FrameOptions `json:"frame,omitempty"`
	GIF   *pipeline.GIFOptions   `json:"gif,omitempty"`
	Split *pipeline.SplitOptions `json:"split,omitempty"`
	Audio *pipeline.AudioOptions `json:"audio,omitempty"`
}

// Progress is the latest reported progress of a running task.
type Progress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
}

// Task is one queued tool invocation. Mutable fields are guarded by mu;
// handlers read through Snapshot.
type Task struct {
	mu sync.Mutex

	ID          string               `json:"id"`
	Tool        string               `json:"tool"`
	Status      Status               `json:"status"`
	Options     Options              `json:"options"`
	InputPath   string               `json:"-"`
	OutputDir   string               `json:"-"`
	Artifacts   []pipeline.Artifact  `json:"artifacts,omitempty"`
	Progress    Progress             `json:"progress"`
	Error       string               `json:"error,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	StartedAt   time.Time            `json:"startedAt,omitempty"`
	CompletedAt time.Time            `json:"completedAt,omitempty"`

	cancelFunc context.CancelFunc
}

// UpdateProgress records the latest progress snapshot.
func (t *Task) UpdateProgress(stage string, percent float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Progress = Progress{Stage: stage, Percent: percent}
}

// Snapshot returns a copy of the task safe to serialize while the worker
// keeps mutating the original.
func (t *Task) Snapshot() Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Task{
		ID:          t.ID,
		Tool:        t.Tool,
		Status:      t.Status,
		Options:     t.Options,
		InputPath:   t.InputPath,
		OutputDir:   t.OutputDir,
		Artifacts:   append([]pipeline.Artifact(nil), t.Artifacts...),
		Progress:    t.Progress,
		Error:       t.Error,
		CreatedAt:   t.CreatedAt,
		StartedAt:   t.StartedAt,
		CompletedAt: t.CompletedAt,
	}
}

func (t *Task) status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Status
}

package task

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/Fr0z3nRebel/video-toolbox/internal/config"
	"github.com/Fr0z3nRebel/video-toolbox/internal/errors"
	"github.com/Fr0z3nRebel/video-toolbox/internal/logging"
	"github.com/Fr0z3nRebel/video-toolbox/internal/pipeline"
)

// Executor runs one task's tool pipeline to completion.
type Executor interface {
	Execute(ctx context.Context, t *Task) ([]pipeline.Artifact, error)
}

// Manager owns the job queue: a buffered submission channel, a worker loop
// bounded by a concurrency semaphore, and a cleanup loop that expires old
// outputs.
type Manager struct {
	cfg            *config.Config
	tasks          sync.Map
	taskQueue      chan *Task
	concurrencySem chan struct{}
	executor       Executor
}

// NewManager creates a Manager.
func NewManager(cfg *config.Config, executor Executor) *Manager {
	return &Manager{
		cfg:            cfg,
		taskQueue:      make(chan *Task, 100),
		concurrencySem: make(chan struct{}, cfg.MaxConcurrency),
		executor:       executor,
	}
}

// Start launches the worker and cleanup loops; both stop when ctx ends.
func (m *Manager) Start(ctx context.Context) {
	logging.Info("task manager started", "concurrency", m.cfg.MaxConcurrency)
	go m.cleanupLoop(ctx)
	go m.workerLoop(ctx)
}

func (m *Manager) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logging.Debug("worker loop shutting down")
			return
		case t := <-m.taskQueue:
			m.concurrencySem <- struct{}{}
			go func(t *Task) {
				defer func() { <-m.concurrencySem }()
				m.processTask(ctx, t)
			}(t)
		}
	}
}

func (m *Manager) processTask(parentCtx context.Context, t *Task) {
	// Skip tasks canceled while waiting in the queue.
	if t.status() == StatusCanceled {
		logging.Debug("skipping canceled task", "id", t.ID)
		return
	}

	var taskCtx context.Context
	var cancel context.CancelFunc
	if m.cfg.CommandTimeout > 0 {
		taskCtx, cancel = context.WithTimeout(parentCtx, m.cfg.CommandTimeout)
	} else {
		taskCtx, cancel = context.WithCancel(parentCtx)
	}
	defer cancel()

	t.mu.Lock()
	t.Status = StatusProcessing
	t.StartedAt = time.Now()
	t.cancelFunc = cancel
	t.mu.Unlock()

	logging.Info("processing task", "id", t.ID, "tool", t.Tool)
	artifacts, err := m.executor.Execute(taskCtx, t)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.CompletedAt = time.Now()

	if err != nil {
		if errors.IsCancelled(err) || stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			logging.Info("task canceled or timed out", "id", t.ID)
			t.Status = StatusCanceled
			t.Error = "task was canceled or timed out"
		} else {
			logging.Warn("task failed", "id", t.ID, "error", err)
			t.Status = StatusFailed
			t.Error = err.Error()
		}
		return
	}

	t.Status = StatusCompleted
	t.Artifacts = artifacts
	t.Progress = Progress{Stage: "complete", Percent: 100}
	logging.Info("task completed", "id", t.ID, "artifacts", len(artifacts))
}

// cleanupLoop expires completed tasks' output files after their local
// lifetime.
func (m *Manager) cleanupLoop(ctx context.Context) {
	lifetime := m.cfg.OutputLocalLifetime
	if lifetime <= 0 {
		return
	}
	ticker := time.NewTicker(lifetime / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Debug("cleanup loop shutting down")
			return
		case <-ticker.C:
			m.tasks.Range(func(key, value interface{}) bool {
				t := value.(*Task)
				t.mu.Lock()
				expired := t.Status == StatusCompleted && time.Since(t.CompletedAt) > lifetime
				artifacts := t.Artifacts
				if expired {
					t.Artifacts = nil
				}
				t.mu.Unlock()

				if expired {
					for _, a := range artifacts {
						logging.Debug("removing expired output", "path", a.Path)
						_ = os.Remove(a.Path)
					}
				}
				return true
			})
		}
	}
}

// Submit enqueues a new task for the given tool.
func (m *Manager) Submit(tool, inputPath, outputDir string, opts Options) *Task {
	t := &Task{
		ID:        fmt.Sprintf("%s_%d", shortuuid.New(), time.Now().Unix()),
		Tool:      tool,
		Status:    StatusQueued,
		Options:   opts,
		InputPath: inputPath,
		OutputDir: outputDir,
		CreatedAt: time.Now(),
	}

	m.tasks.Store(t.ID, t)
	m.taskQueue <- t
	logging.Info("task submitted", "id", t.ID, "tool", tool)
	return t
}

// Get returns a task by ID.
func (m *Manager) Get(taskID string) (*Task, bool) {
	if val, ok := m.tasks.Load(taskID); ok {
		return val.(*Task), true
	}
	return nil, false
}

// List returns all known tasks.
func (m *Manager) List() []*Task {
	var tasks []*Task
	m.tasks.Range(func(key, value interface{}) bool {
		tasks = append(tasks, value.(*Task))
		return true
	})
	return tasks
}

// Cancel stops a queued or running task.
func (m *Manager) Cancel(taskID string) error {
	val, ok := m.tasks.Load(taskID)
	if !ok {
		return fmt.Errorf("task %s not found", taskID)
	}

	t := val.(*Task)
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.Status {
	case StatusCompleted, StatusFailed, StatusCanceled:
		return fmt.Errorf("cannot cancel task in state %s", t.Status)
	case StatusQueued:
		t.Status = StatusCanceled
		t.Error = "canceled by user while in queue"
	case StatusProcessing:
		if t.cancelFunc == nil {
			return fmt.Errorf("task %s is processing but has no cancellation handle", taskID)
		}
		t.cancelFunc()
	}
	return nil
}

// OutputFilePath resolves a served filename inside the output directory,
// rejecting path traversal.
func (m *Manager) OutputFilePath(baseDir, filename string) (string, error) {
	clean := filepath.Base(filename)
	if clean != filename || filename == "" {
		return "", fmt.Errorf("invalid filename")
	}

	fullPath := filepath.Join(baseDir, clean)
	if _, err := os.Stat(fullPath); err != nil {
		return "", fmt.Errorf("file not found")
	}
	return fullPath, nil
}

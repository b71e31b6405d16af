package task

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fr0z3nRebel/video-toolbox/internal/config"
	"github.com/Fr0z3nRebel/video-toolbox/internal/pipeline"
)

// fakeExecutor completes tasks with canned artifacts, optionally blocking
// until its context is canceled.
type fakeExecutor struct {
	artifacts []pipeline.Artifact
	err       error
	block     bool
	started   chan string
}

func (f *fakeExecutor) Execute(ctx context.Context, t *Task) ([]pipeline.Artifact, error) {
	if f.started != nil {
		f.started <- t.ID
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.artifacts, f.err
}

func waitForStatus(t *testing.T, m *Manager, id string, want Status) *Task {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-deadline:
			status := Status("missing")
			if tk, ok := m.Get(id); ok {
				status = tk.status()
			}
			t.Fatalf("task %s never reached %s, stuck at %s", id, want, status)
		case <-time.After(10 * time.Millisecond):
			if tk, ok := m.Get(id); ok && tk.status() == want {
				return tk
			}
		}
	}
}

func TestSubmitAndComplete(t *testing.T) {
	exec := &fakeExecutor{artifacts: []pipeline.Artifact{{Name: "clip.gif", Size: 10}}}
	m := NewManager(config.Default(), exec)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	tk := m.Submit("gif", "/in/clip.mp4", t.TempDir(), Options{GIF: &pipeline.GIFOptions{}})
	assert.Equal(t, StatusQueued, tk.Snapshot().Status)

	done := waitForStatus(t, m, tk.ID, StatusCompleted)
	snap := done.Snapshot()
	require.Len(t, snap.Artifacts, 1)
	assert.Equal(t, "clip.gif", snap.Artifacts[0].Name)
	assert.Equal(t, float64(100), snap.Progress.Percent)
	assert.False(t, snap.CompletedAt.IsZero())
}

func TestExecutorFailureMarksFailed(t *testing.T) {
	exec := &fakeExecutor{err: assert.AnError}
	m := NewManager(config.Default(), exec)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	tk := m.Submit("frames", "/in/clip.mp4", t.TempDir(), Options{})
	failed := waitForStatus(t, m, tk.ID, StatusFailed)
	assert.NotEmpty(t, failed.Snapshot().Error)
}

func TestCancelRunningTask(t *testing.T) {
	exec := &fakeExecutor{block: true, started: make(chan string, 1)}
	m := NewManager(config.Default(), exec)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	tk := m.Submit("split-audio", "/in/clip.mp3", t.TempDir(), Options{})
	<-exec.started
	waitForStatus(t, m, tk.ID, StatusProcessing)

	require.NoError(t, m.Cancel(tk.ID))
	canceled := waitForStatus(t, m, tk.ID, StatusCanceled)
	assert.NotEmpty(t, canceled.Snapshot().Error)

	// A finished task cannot be canceled again.
	assert.Error(t, m.Cancel(tk.ID))
}

func TestCancelQueuedTask(t *testing.T) {
	exec := &fakeExecutor{}
	m := NewManager(config.Default(), exec)
	// Manager not started: the task stays queued.

	tk := m.Submit("gif", "/in/clip.mp4", t.TempDir(), Options{})
	require.NoError(t, m.Cancel(tk.ID))
	assert.Equal(t, StatusCanceled, tk.Snapshot().Status)
}

func TestCancelUnknownTask(t *testing.T) {
	m := NewManager(config.Default(), &fakeExecutor{})
	assert.Error(t, m.Cancel("nope"))
}

func TestListReturnsAllTasks(t *testing.T) {
	m := NewManager(config.Default(), &fakeExecutor{})
	m.Submit("gif", "a", "", Options{})
	m.Submit("frames", "b", "", Options{})
	assert.Len(t, m.List(), 2)
}

func TestOutputFilePath(t *testing.T) {
	m := NewManager(config.Default(), &fakeExecutor{})
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "out.gif"), []byte("x"), 0644))

	path, err := m.OutputFilePath(dir, "out.gif")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.gif"), path)

	_, err = m.OutputFilePath(dir, "../escape.gif")
	assert.Error(t, err)
	_, err = m.OutputFilePath(dir, "missing.gif")
	assert.Error(t, err)
}

// Package engine manages the transcode engine session: a lazily
// initialized ffmpeg handle with a private staging directory.
package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/Fr0z3nRebel/video-toolbox/internal/errors"
	"github.com/Fr0z3nRebel/video-toolbox/internal/logging"
)

// State describes the session lifecycle.
type State int

const (
	// StateUninitialized means no initialization has been attempted, or the
	// previous attempt failed and a retry is allowed.
	StateUninitialized State = iota
	// StateLoading means one initialization is in flight.
	StateLoading
	// StateReady means the session can stage files and run commands.
	StateReady
	// StateClosed means the session was torn down and its staging dir removed.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config holds session construction parameters.
type Config struct {
	FFmpegBin  string
	FFprobeBin string
	// ScratchBase is where the staging directory is created. Empty means
	// the system temp dir.
	ScratchBase string
	// MinFreeSpace is the free space required on the scratch volume before
	// initialization succeeds. Zero disables the check.
	MinFreeSpace int64
}

// Session is an explicitly owned handle to the transcode engine. It is
// shared by reference across pipeline runs; initialization happens at most
// once while the session is alive, and concurrent Acquire callers share a
// single in-flight initialization. A failed initialization resets the
// session so a later Acquire may retry.
//
// Commands are not safe to interleave against shared staged filenames;
// callers serialize command execution per pipeline run and namespace their
// staged files with a run-unique token.
type Session struct {
	cfg Config

	mu        sync.Mutex
	state     State
	dir       string
	waiters   []chan error
	initCount int // initialization attempts, for tests and diagnostics
}

// NewSession creates an uninitialized session.
func NewSession(cfg Config) *Session {
	if cfg.FFmpegBin == "" {
		cfg.FFmpegBin = "ffmpeg"
	}
	if cfg.FFprobeBin == "" {
		cfg.FFprobeBin = "ffprobe"
	}
	return &Session{cfg: cfg}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// FFmpegBin returns the configured ffmpeg binary.
func (s *Session) FFmpegBin() string {
	return s.cfg.FFmpegBin
}

// Acquire ensures the session is ready, initializing it on first call.
// Callers arriving during an in-flight initialization wait for its outcome
// instead of starting a second one.
func (s *Session) Acquire(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateReady:
		s.mu.Unlock()
		return nil
	case StateClosed:
		s.mu.Unlock()
		return errors.NewWorkspaceError("engine session is closed", nil)
	case StateLoading:
		ch := make(chan error, 1)
		s.waiters = append(s.waiters, ch)
		s.mu.Unlock()
		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			return errors.NewCancelledError()
		}
	}

	// Uninitialized: this caller performs the initialization.
	s.state = StateLoading
	s.initCount++
	s.mu.Unlock()

	err := s.initialize()

	s.mu.Lock()
	if err != nil {
		// Reset so a later explicit retry can attempt again.
		s.state = StateUninitialized
	} else {
		s.state = StateReady
	}
	waiters := s.waiters
	s.waiters = nil
	s.mu.Unlock()

	for _, ch := range waiters {
		ch <- err
	}
	return err
}

// initialize verifies the engine binaries and creates the staging directory.
func (s *Session) initialize() error {
	if _, err := exec.LookPath(s.cfg.FFmpegBin); err != nil {
		return errors.NewEnvironmentUnsupportedError(s.cfg.FFmpegBin, err)
	}
	if _, err := exec.LookPath(s.cfg.FFprobeBin); err != nil {
		return errors.NewEnvironmentUnsupportedError(s.cfg.FFprobeBin, err)
	}

	base := s.cfg.ScratchBase
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0755); err != nil {
		return errors.NewWorkspaceError(fmt.Sprintf("cannot create scratch base %s", base), err)
	}

	if s.cfg.MinFreeSpace > 0 {
		free, err := freeSpace(base)
		if err == nil && free > 0 && free < uint64(s.cfg.MinFreeSpace) {
			return errors.NewWorkspaceError(
				fmt.Sprintf("scratch volume has %d bytes free, need %d", free, s.cfg.MinFreeSpace), nil)
		}
	}

	dir, err := os.MkdirTemp(base, "toolbox_")
	if err != nil {
		return errors.NewWorkspaceError("cannot create staging directory", err)
	}

	s.mu.Lock()
	s.dir = dir
	s.mu.Unlock()

	logging.Debug("engine session initialized", "staging_dir", dir)
	return nil
}

// stagingDir returns the staging directory, or an error when not ready.
func (s *Session) stagingDir() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady || s.dir == "" {
		return "", errors.NewWorkspaceError("engine session is not ready", nil)
	}
	return s.dir, nil
}

// stagedPath validates a staged name and resolves it inside the staging dir.
func (s *Session) stagedPath(name string) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", errors.NewWorkspaceError(fmt.Sprintf("invalid staged filename %q", name), nil)
	}
	dir, err := s.stagingDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// Write stages bytes under the given name.
func (s *Session) Write(name string, data []byte) error {
	path, err := s.stagedPath(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewIOError(fmt.Sprintf("staging %s", name), err)
	}
	return nil
}

// Read returns the bytes of a staged file.
func (s *Session) Read(name string) ([]byte, error) {
	path, err := s.stagedPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(fmt.Sprintf("reading staged %s", name), err)
	}
	return data, nil
}

// Delete removes a staged file. The staging filesystem is not self-cleaning:
// callers delete inputs and outputs once read, or they stay for the
// session's lifetime.
func (s *Session) Delete(name string) error {
	path, err := s.stagedPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.NewIOError(fmt.Sprintf("deleting staged %s", name), err)
	}
	return nil
}

// Path resolves a staged name to its on-disk path for use in command argv.
func (s *Session) Path(name string) (string, error) {
	return s.stagedPath(name)
}

// Close tears the session down and removes its staging directory.
func (s *Session) Close() error {
	s.mu.Lock()
	dir := s.dir
	s.dir = ""
	s.state = StateClosed
	s.mu.Unlock()

	if dir != "" {
		if err := os.RemoveAll(dir); err != nil {
			return errors.NewIOError("removing staging directory", err)
		}
	}
	return nil
}

package engine

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/Fr0z3nRebel/video-toolbox/internal/errors"
	"github.com/Fr0z3nRebel/video-toolbox/internal/logging"
	"github.com/Fr0z3nRebel/video-toolbox/internal/util"
)

// Progress reports the state of a running engine command.
type Progress struct {
	// Percent of the command's media span processed, 0 when unknown.
	Percent     float64
	ElapsedSecs float64
	Speed       float64
	FPS         float64
}

// ProgressCallback receives progress updates while a command runs.
type ProgressCallback func(Progress)

// RunSpec describes one engine command.
type RunSpec struct {
	// Args is the ffmpeg argv, without the binary itself.
	Args []string
	// MediaDuration is the span of media the command processes, used to
	// turn time= offsets into a percentage. Zero disables percent reporting.
	MediaDuration float64
	// OnProgress, when set, is called for each parsed progress line.
	OnProgress ProgressCallback
}

var timeRegex = regexp.MustCompile(`time=(\d{2}:\d{2}:\d{2}\.?\d*)`)

// maxStderrTail bounds the stderr retained for error diagnostics.
const maxStderrTail = 8 * 1024

// Run executes one engine command to completion, parsing progress from its
// stderr stream. The session must be ready. On failure the returned error
// carries the exit code and a bounded stderr tail.
func (s *Session) Run(ctx context.Context, spec RunSpec) error {
	if _, err := s.stagingDir(); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, s.cfg.FFmpegBin, spec.Args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.WrapExecError(s.cfg.FFmpegBin, err, "")
	}

	logging.Debug("running engine command", "binary", s.cfg.FFmpegBin, "args", strings.Join(spec.Args, " "))

	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return errors.NewCancelledError()
		}
		return errors.WrapExecError(s.cfg.FFmpegBin, err, "")
	}

	var tail stderrTail
	parseProgress(stderr, &tail, spec.MediaDuration, spec.OnProgress)

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return errors.NewCancelledError()
		}
		return errors.WrapExecError(s.cfg.FFmpegBin, err, tail.String())
	}
	return nil
}

// stderrTail keeps only the last maxStderrTail bytes written to it.
type stderrTail struct {
	buf []byte
}

func (t *stderrTail) push(b byte) {
	t.buf = append(t.buf, b)
	if len(t.buf) > maxStderrTail {
		t.buf = t.buf[len(t.buf)-maxStderrTail:]
	}
}

func (t *stderrTail) String() string {
	return strings.TrimSpace(string(t.buf))
}

// parseProgress reads engine stderr byte by byte, splitting on both \r and
// \n since progress lines are carriage-return updates.
func parseProgress(stderr io.Reader, tail *stderrTail, duration float64, callback ProgressCallback) {
	reader := bufio.NewReader(stderr)
	var lineBuf strings.Builder

	for {
		b, err := reader.ReadByte()
		if err != nil {
			break
		}

		tail.push(b)

		if b == '\r' || b == '\n' {
			line := lineBuf.String()
			lineBuf.Reset()

			if callback != nil && strings.Contains(line, "time=") {
				if p := parseProgressLine(line, duration); p != nil {
					callback(*p)
				}
			}
		} else {
			lineBuf.WriteByte(b)
		}
	}
}

// parseProgressLine extracts progress fields from one stderr status line.
func parseProgressLine(line string, duration float64) *Progress {
	matches := timeRegex.FindStringSubmatch(line)
	if len(matches) < 2 {
		return nil
	}
	elapsed, ok := util.ParseFFmpegTime(matches[1])
	if !ok {
		return nil
	}

	p := &Progress{ElapsedSecs: elapsed}

	if duration > 0 {
		p.Percent = (elapsed / duration) * 100
		if p.Percent > 100 {
			p.Percent = 100
		}
	}

	if v, ok := parseField(line, "fps="); ok {
		p.FPS = v
	}
	if v, ok := parseField(line, "speed="); ok {
		p.Speed = v
	}

	return p
}

// parseField extracts a numeric key= field, tolerating a trailing x suffix.
func parseField(line, key string) (float64, bool) {
	idx := strings.Index(line, key)
	if idx < 0 {
		return 0, false
	}
	remaining := strings.TrimLeft(line[idx+len(key):], " ")
	if spaceIdx := strings.IndexAny(remaining, " \t"); spaceIdx > 0 {
		remaining = remaining[:spaceIdx]
	}
	remaining = strings.TrimSuffix(remaining, "x")
	v, err := strconv.ParseFloat(remaining, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

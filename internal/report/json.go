package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONReporter outputs NDJSON events for machine consumers.
type JSONReporter struct {
	writer             io.Writer
	mu                 sync.Mutex
	lastProgressBucket int
	lastProgressTime   time.Time
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return NewJSONReporterWithWriter(os.Stdout)
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer:             w,
		lastProgressBucket: -1,
	}
}

func (r *JSONReporter) timestamp() int64 {
	return time.Now().Unix()
}

func (r *JSONReporter) write(v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) SourceLoaded(summary SourceSummary) {
	r.write(map[string]interface{}{
		"type":       "source_loaded",
		"input_file": summary.InputFile,
		"duration":   summary.Duration,
		"resolution": summary.Resolution,
		"has_video":  summary.HasVideo,
		"has_audio":  summary.HasAudio,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) ToolStarted(info ToolStartInfo) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.lastProgressTime = time.Time{}
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":       "tool_started",
		"tool":       info.Tool,
		"input_file": info.InputFile,
		"output_dir": info.OutputDir,
		"detail":     info.Detail,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) PlanComputed(summary PlanSummary) {
	r.write(map[string]interface{}{
		"type":        "plan_computed",
		"units":       summary.Units,
		"unit_length": summary.UnitLength,
		"last_short":  summary.LastShort,
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) ToolProgress(update ToolProgress) {
	const progressBucketSize = 1
	const minInterval = 5 * time.Second

	bucket := int(update.Percent) / progressBucketSize
	now := time.Now()

	r.mu.Lock()
	intervalElapsed := r.lastProgressTime.IsZero() || now.Sub(r.lastProgressTime) >= minInterval
	shouldEmit := bucket > r.lastProgressBucket || intervalElapsed || update.Percent >= 99.0

	if !shouldEmit {
		r.mu.Unlock()
		return
	}

	if bucket > r.lastProgressBucket {
		r.lastProgressBucket = bucket
	}
	r.lastProgressTime = now
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":         "tool_progress",
		"stage":        update.Stage,
		"percent":      update.Percent,
		"message":      update.Message,
		"current_unit": update.CurrentUnit,
		"total_units":  update.TotalUnits,
		"timestamp":    r.timestamp(),
	})
}

func (r *JSONReporter) ArtifactReady(artifact ArtifactSummary) {
	r.write(map[string]interface{}{
		"type":      "artifact_ready",
		"name":      artifact.Name,
		"size":      artifact.Size,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) ToolComplete(summary ToolOutcome) {
	r.write(map[string]interface{}{
		"type":             "tool_complete",
		"tool":             summary.Tool,
		"input_file":       summary.InputFile,
		"artifacts":        summary.Artifacts,
		"total_size":       summary.TotalSize,
		"output_dir":       summary.OutputDir,
		"duration_seconds": summary.ElapsedSec,
		"timestamp":        r.timestamp(),
	})
}

func (r *JSONReporter) BatchStarted(info BatchStartInfo) {
	r.write(map[string]interface{}{
		"type":        "batch_started",
		"total_files": info.TotalFiles,
		"file_list":   info.FileList,
		"output_dir":  info.OutputDir,
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) FileProgress(context FileProgressContext) {
	r.write(map[string]interface{}{
		"type":         "file_progress",
		"current_file": context.CurrentFile,
		"total_files":  context.TotalFiles,
		"timestamp":    r.timestamp(),
	})
}

func (r *JSONReporter) BatchComplete(summary BatchSummary) {
	failures := make([]map[string]string, len(summary.Failures))
	for i, f := range summary.Failures {
		failures[i] = map[string]string{"filename": f.Filename, "reason": f.Reason}
	}

	r.write(map[string]interface{}{
		"type":             "batch_complete",
		"successful_count": summary.SuccessfulCount,
		"total_files":      summary.TotalFiles,
		"total_artifacts":  summary.TotalArtifacts,
		"total_size":       summary.TotalSize,
		"failures":         failures,
		"timestamp":        r.timestamp(),
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]interface{}{
		"type":      "warning",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]interface{}{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) Verbose(message string) {
	r.write(map[string]interface{}{
		"type":      "verbose",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

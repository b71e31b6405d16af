package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var events []map[string]interface{}
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var event map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			t.Fatalf("invalid NDJSON line %q: %v", scanner.Text(), err)
		}
		events = append(events, event)
	}
	return events
}

func TestJSONReporterEmitsNDJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)

	r.ToolStarted(ToolStartInfo{Tool: "gif", InputFile: "clip.mp4", OutputDir: "out"})
	r.PlanComputed(PlanSummary{Units: 3, UnitLength: 10, LastShort: true})
	r.ToolComplete(ToolOutcome{Tool: "gif", Artifacts: 1, TotalSize: 2048})

	events := decodeLines(t, &buf)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0]["type"] != "tool_started" || events[0]["tool"] != "gif" {
		t.Errorf("unexpected first event: %v", events[0])
	}
	if events[1]["last_short"] != true {
		t.Errorf("plan event should surface the short last unit: %v", events[1])
	}
	if events[2]["artifacts"] != float64(1) {
		t.Errorf("unexpected completion event: %v", events[2])
	}
	for _, e := range events {
		if _, ok := e["timestamp"]; !ok {
			t.Errorf("event missing timestamp: %v", e)
		}
	}
}

func TestJSONReporterThrottlesProgress(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)
	r.ToolStarted(ToolStartInfo{Tool: "frames"})
	buf.Reset()

	// Same percent bucket twice in quick succession emits once.
	r.ToolProgress(ToolProgress{Stage: "capture", Percent: 10.2})
	r.ToolProgress(ToolProgress{Stage: "capture", Percent: 10.8})
	// A new bucket emits again.
	r.ToolProgress(ToolProgress{Stage: "capture", Percent: 11.5})

	events := decodeLines(t, &buf)
	if len(events) != 2 {
		t.Fatalf("expected 2 throttled progress events, got %d", len(events))
	}
}

func TestJSONReporterAlwaysEmitsNearCompletion(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)
	r.ToolStarted(ToolStartInfo{Tool: "frames"})
	buf.Reset()

	r.ToolProgress(ToolProgress{Stage: "finalize", Percent: 99.5})
	r.ToolProgress(ToolProgress{Stage: "finalize", Percent: 99.9})

	events := decodeLines(t, &buf)
	if len(events) != 2 {
		t.Fatalf("final progress updates must not be throttled, got %d events", len(events))
	}
}

// recordingReporter captures calls for composite fan-out tests.
type recordingReporter struct {
	NullReporter
	progress []ToolProgress
	warnings []string
}

func (r *recordingReporter) ToolProgress(update ToolProgress) {
	r.progress = append(r.progress, update)
}

func (r *recordingReporter) Warning(message string) {
	r.warnings = append(r.warnings, message)
}

func TestCompositeFansOut(t *testing.T) {
	a := &recordingReporter{}
	b := &recordingReporter{}
	c := NewCompositeReporter(a, b, NullReporter{})

	c.ToolProgress(ToolProgress{Stage: "encode", Percent: 42})
	c.Warning("low disk space")

	for name, r := range map[string]*recordingReporter{"a": a, "b": b} {
		if len(r.progress) != 1 || r.progress[0].Percent != 42 {
			t.Errorf("reporter %s did not receive progress: %+v", name, r.progress)
		}
		if len(r.warnings) != 1 || r.warnings[0] != "low disk space" {
			t.Errorf("reporter %s did not receive warning: %+v", name, r.warnings)
		}
	}
}

func TestTerminalProgressMonotonic(t *testing.T) {
	r := NewTerminalReporter()
	r.ToolStarted(ToolStartInfo{Tool: "gif", InputFile: "clip.mp4", OutputDir: "out"})
	defer r.finishProgress()

	r.ToolProgress(ToolProgress{Stage: "palette", Percent: 50})
	r.ToolProgress(ToolProgress{Stage: "palette", Percent: 30})

	r.mu.Lock()
	max := r.maxPercent
	r.mu.Unlock()
	if max != 50 {
		t.Errorf("displayed percent regressed: max = %f, want 50", max)
	}

	// Out-of-range values clamp instead of wrapping.
	r.ToolProgress(ToolProgress{Stage: "palette", Percent: 140})
	r.mu.Lock()
	max = r.maxPercent
	r.mu.Unlock()
	if max != 100 {
		t.Errorf("expected clamp at 100, got %f", max)
	}
}

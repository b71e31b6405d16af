package toolbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const probeJSON = `{
	"format": {"duration": "20.0"},
	"streams": [
		{"codec_type": "video", "width": 640, "height": 360},
		{"codec_type": "audio"}
	]
}`

// writeStub writes an executable shell script and returns its path.
func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("writing stub %s: %v", name, err)
	}
	return path
}

func newStubToolbox(t *testing.T) *Toolbox {
	t.Helper()
	dir := t.TempDir()

	ffmpeg := writeStub(t, dir, "ffmpeg",
		`for a in "$@"; do last="$a"; done
echo payload > "$last"
`)
	ffprobe := writeStub(t, dir, "ffprobe", `cat <<'EOF'
`+probeJSON+`
EOF
`)

	tb, err := New(
		WithFFmpegBin(ffmpeg),
		WithFFprobeBin(ffprobe),
		WithScratchDir(t.TempDir()),
		WithSeekTimeout(10*time.Second),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { tb.Close() })
	return tb
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(WithFFmpegBin("")); err == nil {
		t.Fatal("New() with empty ffmpeg binary should fail")
	}
	if _, err := New(WithSeekTimeout(-time.Second)); err == nil {
		t.Fatal("New() with negative seek timeout should fail")
	}
}

func TestProbe(t *testing.T) {
	tb := newStubToolbox(t)

	meta, err := tb.Probe(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if meta.DurationSeconds != 20.0 {
		t.Errorf("DurationSeconds = %v, want 20.0", meta.DurationSeconds)
	}
	if !meta.HasVideo || !meta.HasAudio {
		t.Errorf("HasVideo = %v, HasAudio = %v, want both true", meta.HasVideo, meta.HasAudio)
	}
}

func TestExtractFramesEndToEnd(t *testing.T) {
	tb := newStubToolbox(t)

	inDir := t.TempDir()
	input := filepath.Join(inDir, "clip.mp4")
	if err := os.WriteFile(input, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(t.TempDir(), "out")

	artifacts, err := tb.ExtractFrames(context.Background(), []string{input}, outDir, DefaultFrameOptions())
	if err != nil {
		t.Fatalf("ExtractFrames() error = %v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("got %d artifacts, want 1", len(artifacts))
	}
	if artifacts[0].Name != "clip_first-frame.png" {
		t.Errorf("artifact name = %q, want %q", artifacts[0].Name, "clip_first-frame.png")
	}
	if _, err := os.Stat(filepath.Join(outDir, artifacts[0].Name)); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestExtractFramesFromDir(t *testing.T) {
	tb := newStubToolbox(t)

	inDir := t.TempDir()
	for _, name := range []string{"a.mp4", "b.mkv", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(inDir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	outDir := filepath.Join(t.TempDir(), "out")

	artifacts, err := tb.ExtractFramesFromDir(context.Background(), inDir, outDir, DefaultFrameOptions())
	if err != nil {
		t.Fatalf("ExtractFramesFromDir() error = %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("got %d artifacts, want 2", len(artifacts))
	}
}

func TestConvertGIFEndToEnd(t *testing.T) {
	tb := newStubToolbox(t)

	inDir := t.TempDir()
	input := filepath.Join(inDir, "demo.mp4")
	if err := os.WriteFile(input, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(t.TempDir(), "out")

	artifact, err := tb.ConvertGIF(context.Background(), input, outDir, DefaultGIFOptions())
	if err != nil {
		t.Fatalf("ConvertGIF() error = %v", err)
	}
	if artifact.Name != "demo.gif" {
		t.Errorf("artifact name = %q, want %q", artifact.Name, "demo.gif")
	}
}

func TestCloseReleasesSession(t *testing.T) {
	tb := newStubToolbox(t)
	if err := tb.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	_, err := tb.ExtractFrames(context.Background(), []string{"clip.mp4"}, t.TempDir(), DefaultFrameOptions())
	if err == nil {
		t.Fatal("run after Close() should fail")
	}
}

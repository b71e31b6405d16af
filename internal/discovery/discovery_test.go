package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Fr0z3nRebel/video-toolbox/internal/errors"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
}

func TestFindMediaFilesVideo(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "B.mkv", "a.mp4", "track.mp3", "notes.txt", ".hidden.mp4")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	result, err := FindMediaFiles(dir, KindVideo)
	if err != nil {
		t.Fatalf("FindMediaFiles failed: %v", err)
	}

	if len(result.Files) != 2 {
		t.Fatalf("expected 2 video files, got %d", len(result.Files))
	}
	// Case-insensitive alphabetical order.
	if filepath.Base(result.Files[0]) != "a.mp4" || filepath.Base(result.Files[1]) != "B.mkv" {
		t.Errorf("unexpected order: %v", result.Files)
	}
	if result.SkippedCount != 2 {
		t.Errorf("expected 2 skipped files, got %d", result.SkippedCount)
	}
}

func TestFindMediaFilesKinds(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "clip.mp4", "track.flac")

	audio, err := FindMediaFiles(dir, KindAudio)
	if err != nil {
		t.Fatalf("audio scan failed: %v", err)
	}
	if len(audio.Files) != 1 || filepath.Base(audio.Files[0]) != "track.flac" {
		t.Errorf("unexpected audio result: %v", audio.Files)
	}

	any, err := FindMediaFiles(dir, KindAny)
	if err != nil {
		t.Fatalf("any scan failed: %v", err)
	}
	if len(any.Files) != 2 {
		t.Errorf("expected both files, got %v", any.Files)
	}
}

func TestFindMediaFilesEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "notes.txt")

	_, err := FindMediaFiles(dir, KindVideo)
	if !errors.IsKind(err, errors.KindNoFilesFound) {
		t.Errorf("expected no files found error, got %v", err)
	}
}

func TestFindMediaFilesMissingDir(t *testing.T) {
	_, err := FindMediaFiles(filepath.Join(t.TempDir(), "nope"), KindVideo)
	if !errors.IsKind(err, errors.KindIO) {
		t.Errorf("expected I/O error, got %v", err)
	}
}

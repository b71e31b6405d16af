package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCoreErrorMessage(t *testing.T) {
	err := NewMetadataLoadError("clip.mp4", fmt.Errorf("moov atom not found"))
	if !strings.Contains(err.Error(), "Metadata load error") {
		t.Errorf("expected kind prefix, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "clip.mp4") {
		t.Errorf("expected path in message, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "moov atom") {
		t.Errorf("expected underlying cause, got %q", err.Error())
	}
}

func TestIsKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
		want bool
	}{
		{"metadata load", NewMetadataLoadError("a.mp4", nil), KindMetadataLoad, true},
		{"wrong kind", NewMetadataLoadError("a.mp4", nil), KindEncode, false},
		{"seek timeout", NewSeekTimeoutError(12.5), KindSeekTimeout, true},
		{"segment length", NewInvalidSegmentLengthError(90, 60), KindInvalidSegmentLength, true},
		{"plain error", errors.New("boom"), KindIO, false},
		{"wrapped", fmt.Errorf("run failed: %w", NewEncodeError("out.gif")), KindEncode, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsKind(tt.err, tt.kind); got != tt.want {
				t.Errorf("IsKind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngineExecutionError(t *testing.T) {
	err := NewEngineExecutionError("ffmpeg", 1, "Invalid data found when processing input")
	if !IsKind(err, KindEngineExecution) {
		t.Fatal("expected engine execution kind")
	}

	var engErr *EngineError
	if !errors.As(err, &engErr) {
		t.Fatal("expected wrapped EngineError")
	}
	if engErr.ExitCode != 1 {
		t.Errorf("expected exit code 1, got %d", engErr.ExitCode)
	}
	if !strings.Contains(engErr.Error(), "Invalid data") {
		t.Errorf("expected stderr in message, got %q", engErr.Error())
	}
}

func TestIsFatal(t *testing.T) {
	if !IsFatal(NewWorkspaceError("cannot create staging dir", nil)) {
		t.Error("workspace errors should be fatal")
	}
	if !IsFatal(NewEnvironmentUnsupportedError("ffmpeg", nil)) {
		t.Error("environment errors should be fatal")
	}
	if IsFatal(NewEncodeError("frame.png")) {
		t.Error("encode errors should not be fatal")
	}
}

func TestErrorsIsMatchesByKind(t *testing.T) {
	err := NewSeekTimeoutError(5)
	target := &CoreError{Kind: KindSeekTimeout}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match on kind")
	}
}

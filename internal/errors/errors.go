// Package errors provides structured error types for toolbox operations.
package errors

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// KindIO represents I/O errors.
	KindIO ErrorKind = iota
	// KindMetadataLoad represents failures to probe media metadata.
	KindMetadataLoad
	// KindSeekTimeout represents a frame capture whose seek never settled.
	KindSeekTimeout
	// KindWorkspace represents an unusable staging workspace. Fatal for the run.
	KindWorkspace
	// KindEncode represents an encode that produced no usable output.
	KindEncode
	// KindInvalidSegmentLength represents an out-of-range segment length.
	KindInvalidSegmentLength
	// KindEnvironmentUnsupported represents a host missing the transcode engine.
	KindEnvironmentUnsupported
	// KindEngineExecution represents a non-zero engine command outcome.
	KindEngineExecution
	// KindInvalidOptions represents rejected tool options.
	KindInvalidOptions
	// KindConfig represents configuration validation errors.
	KindConfig
	// KindJSONParse represents JSON parsing errors.
	KindJSONParse
	// KindNoFilesFound represents no suitable media files found.
	KindNoFilesFound
	// KindCancelled represents user-cancelled operations.
	KindCancelled
)

// String returns a string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "I/O error"
	case KindMetadataLoad:
		return "Metadata load error"
	case KindSeekTimeout:
		return "Seek timeout"
	case KindWorkspace:
		return "Workspace error"
	case KindEncode:
		return "Encode error"
	case KindInvalidSegmentLength:
		return "Invalid segment length"
	case KindEnvironmentUnsupported:
		return "Environment unsupported"
	case KindEngineExecution:
		return "Engine execution error"
	case KindInvalidOptions:
		return "Invalid options"
	case KindConfig:
		return "Configuration error"
	case KindJSONParse:
		return "JSON parse error"
	case KindNoFilesFound:
		return "No files found"
	case KindCancelled:
		return "Operation cancelled"
	default:
		return "Unknown error"
	}
}

// CoreError is the main error type for toolbox operations.
type CoreError struct {
	Kind       ErrorKind
	Message    string
	Underlying error
}

func (e *CoreError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CoreError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target matches this error's kind.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// EngineError carries the diagnostics of a failed engine invocation.
type EngineError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *EngineError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with code %d: %s", e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
}

// NewIOError creates a new I/O error.
func NewIOError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindIO, Message: message, Underlying: underlying}
}

// NewMetadataLoadError creates an error for a failed metadata probe.
func NewMetadataLoadError(path string, underlying error) *CoreError {
	return &CoreError{Kind: KindMetadataLoad, Message: fmt.Sprintf("could not read metadata from %s", path), Underlying: underlying}
}

// NewSeekTimeoutError creates an error for a seek that never settled.
func NewSeekTimeoutError(target float64) *CoreError {
	return &CoreError{Kind: KindSeekTimeout, Message: fmt.Sprintf("seek to %.3fs did not settle within the allowed time", target)}
}

// NewWorkspaceError creates an error for an unusable staging workspace.
func NewWorkspaceError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindWorkspace, Message: message, Underlying: underlying}
}

// NewEncodeError creates an error for an encode that produced no output.
func NewEncodeError(name string) *CoreError {
	return &CoreError{Kind: KindEncode, Message: fmt.Sprintf("encode produced no output for %s", name)}
}

// NewInvalidSegmentLengthError creates an error for an out-of-range segment length.
func NewInvalidSegmentLengthError(segmentLength, totalDuration float64) *CoreError {
	return &CoreError{
		Kind:    KindInvalidSegmentLength,
		Message: fmt.Sprintf("segment length %.3fs must be > 0 and <= total duration %.3fs", segmentLength, totalDuration),
	}
}

// NewEnvironmentUnsupportedError creates an error for a host missing a required binary.
func NewEnvironmentUnsupportedError(binary string, underlying error) *CoreError {
	return &CoreError{
		Kind:       KindEnvironmentUnsupported,
		Message:    fmt.Sprintf("%s is not available on this host", binary),
		Underlying: underlying,
	}
}

// NewEngineExecutionError creates an error for a non-zero engine command outcome.
func NewEngineExecutionError(command string, exitCode int, stderr string) *CoreError {
	engErr := &EngineError{Command: command, ExitCode: exitCode, Stderr: stderr}
	return &CoreError{Kind: KindEngineExecution, Message: engErr.Error(), Underlying: engErr}
}

// NewInvalidOptionsError creates an error for rejected tool options.
func NewInvalidOptionsError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindInvalidOptions, Message: message, Underlying: underlying}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string) *CoreError {
	return &CoreError{Kind: KindConfig, Message: message}
}

// NewJSONParseError creates a new JSON parsing error.
func NewJSONParseError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindJSONParse, Message: message, Underlying: underlying}
}

// NewNoFilesFoundError creates an error for when no media files are found.
func NewNoFilesFoundError(dir string) *CoreError {
	return &CoreError{Kind: KindNoFilesFound, Message: fmt.Sprintf("no suitable media files found in %s", dir)}
}

// NewCancelledError creates an error for user-cancelled operations.
func NewCancelledError() *CoreError {
	return &CoreError{Kind: KindCancelled, Message: "operation was cancelled by the user"}
}

// IsKind checks if the error has the specified kind.
func IsKind(err error, kind ErrorKind) bool {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Kind == kind
	}
	return false
}

// IsCancelled checks if the error is a cancellation error.
func IsCancelled(err error) bool {
	return IsKind(err, KindCancelled)
}

// IsFatal reports whether the error should abort a whole batch rather than a
// single file. Workspace and environment failures are never recoverable by
// moving on to the next input.
func IsFatal(err error) bool {
	return IsKind(err, KindWorkspace) || IsKind(err, KindEnvironmentUnsupported)
}

// WrapExecError converts an exec failure into an engine execution error.
func WrapExecError(command string, err error, stderr string) *CoreError {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return NewEngineExecutionError(command, exitErr.ExitCode(), stderr)
	}
	return &CoreError{Kind: KindEngineExecution, Message: fmt.Sprintf("failed to execute %s", command), Underlying: err}
}

package util

import (
	"os"
	"runtime"
)

// SystemInfo contains information about the host system.
type SystemInfo struct {
	Hostname string
	NumCPU   int
	OS       string
	Arch     string
}

// GetSystemInfo collects system information.
func GetSystemInfo() SystemInfo {
	hostname, _ := os.Hostname()
	return SystemInfo{
		Hostname: hostname,
		NumCPU:   runtime.NumCPU(),
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
	}
}

// DefaultEncoderWorkers picks a worker count for the GIF encoder from the
// host's logical core count, clamped to the supported 2-8 range.
func DefaultEncoderWorkers() int {
	return ClampWorkers(runtime.NumCPU())
}

// ClampWorkers clamps a worker count to the supported 2-8 range.
func ClampWorkers(n int) int {
	if n < 2 {
		return 2
	}
	if n > 8 {
		return 8
	}
	return n
}

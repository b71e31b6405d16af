package util

import "testing"

func TestClampWorkers(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 2},
		{1, 2},
		{2, 2},
		{4, 4},
		{8, 8},
		{16, 8},
	}
	for _, tt := range tests {
		if got := ClampWorkers(tt.in); got != tt.want {
			t.Errorf("ClampWorkers(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDefaultEncoderWorkersInRange(t *testing.T) {
	n := DefaultEncoderWorkers()
	if n < 2 || n > 8 {
		t.Errorf("DefaultEncoderWorkers() = %d, want within [2,8]", n)
	}
}

func TestGetSystemInfo(t *testing.T) {
	info := GetSystemInfo()
	if info.NumCPU < 1 {
		t.Errorf("NumCPU = %d, want at least 1", info.NumCPU)
	}
	if info.OS == "" || info.Arch == "" {
		t.Errorf("OS/Arch should be populated, got %q/%q", info.OS, info.Arch)
	}
}

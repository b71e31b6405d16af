package plan

import (
	"math"
	"testing"

	"github.com/Fr0z3nRebel/video-toolbox/internal/errors"
)

func TestSegmentsEvenSplit(t *testing.T) {
	p, err := Segments(60, 15)
	if err != nil {
		t.Fatalf("Segments failed: %v", err)
	}

	if p.Count() != 4 {
		t.Fatalf("expected 4 units, got %d", p.Count())
	}
	for i, u := range p.Units {
		if u.Index != i {
			t.Errorf("unit %d has index %d", i, u.Index)
		}
		if want := float64(i) * 15; u.Start != want {
			t.Errorf("unit %d start = %f, want %f", i, u.Start, want)
		}
		if u.Duration != 15 {
			t.Errorf("unit %d duration = %f, want 15", i, u.Duration)
		}
	}
	if p.LastShort {
		t.Error("even split should not report a short last unit")
	}
}

func TestSegmentsRemainder(t *testing.T) {
	p, err := Segments(100, 30)
	if err != nil {
		t.Fatalf("Segments failed: %v", err)
	}

	if p.Count() != 4 {
		t.Fatalf("expected ceil(100/30)=4 units, got %d", p.Count())
	}
	last := p.Units[3]
	if math.Abs(last.Duration-10) > 1e-9 {
		t.Errorf("last unit duration = %f, want 10", last.Duration)
	}
	if !p.LastShort {
		t.Error("expected short last unit to be surfaced")
	}

	// Nominal durations must sum to the total exactly.
	var sum float64
	for _, u := range p.Units {
		sum += u.Duration
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("durations sum to %f, want 100", sum)
	}
}

func TestSegmentsBoundaries(t *testing.T) {
	// segmentLength == totalDuration is valid and yields one unit.
	p, err := Segments(45, 45)
	if err != nil {
		t.Fatalf("Segments failed: %v", err)
	}
	if p.Count() != 1 {
		t.Errorf("expected exactly one unit, got %d", p.Count())
	}

	// segmentLength > totalDuration is rejected.
	_, err = Segments(45, 45.1)
	if !errors.IsKind(err, errors.KindInvalidSegmentLength) {
		t.Errorf("expected invalid segment length error, got %v", err)
	}

	// Non-positive lengths are rejected.
	for _, bad := range []float64{0, -1} {
		if _, err := Segments(45, bad); !errors.IsKind(err, errors.KindInvalidSegmentLength) {
			t.Errorf("Segments(45, %f): expected invalid segment length error, got %v", bad, err)
		}
	}
}

func TestFrameSamples(t *testing.T) {
	p, err := FrameSamples(2.0, 10)
	if err != nil {
		t.Fatalf("FrameSamples failed: %v", err)
	}
	if p.Count() != 20 {
		t.Errorf("expected 20 sampled frames, got %d", p.Count())
	}

	// Unit length above total duration is fine in sampling mode.
	p, err = FrameSamples(0.5, 1)
	if err != nil {
		t.Fatalf("FrameSamples failed for short clip: %v", err)
	}
	if p.Count() != 1 {
		t.Errorf("expected a single frame for a short clip, got %d", p.Count())
	}

	if _, err := FrameSamples(2.0, 0); err == nil {
		t.Error("expected error for fps 0")
	}
}

func TestScaleDimension(t *testing.T) {
	tests := []struct {
		dim   int
		scale float64
		want  int
	}{
		{101, 0.5, 50},  // 50.5 rounds to 51, evened down to 50
		{1920, 0.5, 960},
		{100, 0.25, 24}, // 25 evened down to 24
		{11, 0.5, 10},   // floor applies before even rounding
		{4, 0.5, 10},    // below the minimum
		{3, 1.0, 10},
		{640, 1.0, 640},
	}

	for _, tt := range tests {
		got := ScaleDimension(tt.dim, tt.scale)
		if got != tt.want {
			t.Errorf("ScaleDimension(%d, %f) = %d, want %d", tt.dim, tt.scale, got, tt.want)
		}
		if got%2 != 0 {
			t.Errorf("ScaleDimension(%d, %f) = %d is not even", tt.dim, tt.scale, got)
		}
	}
}

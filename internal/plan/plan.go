// Package plan computes the ordered units of work for a pipeline run.
package plan

import (
	"math"

	"github.com/Fr0z3nRebel/video-toolbox/internal/errors"
)

// Unit is one planned item of work: a time segment or a sampled frame.
type Unit struct {
	Index    int
	Start    float64
	Duration float64
}

// Plan is an ordered list of units covering a media source.
type Plan struct {
	Units         []Unit
	TotalDuration float64
	UnitLength    float64
	// LastShort reports that the final unit's nominal duration is shorter
	// than UnitLength. Callers surface this as a caveat on estimated
	// unit counts rather than papering over it.
	LastShort bool
}

// Count returns the number of planned units.
func (p *Plan) Count() int {
	return len(p.Units)
}

// Segments plans ceil(totalDuration/segmentLength) contiguous units with
// start offsets i*segmentLength. The final unit absorbs the remainder so
// the nominal durations sum to totalDuration exactly.
func Segments(totalDuration, segmentLength float64) (*Plan, error) {
	if segmentLength <= 0 || segmentLength > totalDuration {
		return nil, errors.NewInvalidSegmentLengthError(segmentLength, totalDuration)
	}
	return sliced(totalDuration, segmentLength), nil
}

// FrameSamples plans one unit per sampled frame at the given rate. Unlike
// Segments, the unit length may exceed the total duration: a 0.5s clip
// sampled at 1 fps still yields one frame.
func FrameSamples(totalDuration float64, fps int) (*Plan, error) {
	if fps < 1 {
		return nil, errors.NewInvalidOptionsError("fps must be at least 1", nil)
	}
	if totalDuration <= 0 {
		return nil, errors.NewInvalidSegmentLengthError(1/float64(fps), totalDuration)
	}
	return sliced(totalDuration, 1/float64(fps)), nil
}

func sliced(total, unit float64) *Plan {
	count := int(math.Ceil(total / unit))
	if count < 1 {
		count = 1
	}

	units := make([]Unit, count)
	for i := 0; i < count; i++ {
		start := float64(i) * unit
		dur := unit
		if i == count-1 {
			dur = total - start
		}
		units[i] = Unit{Index: i, Start: start, Duration: dur}
	}

	return &Plan{
		Units:         units,
		TotalDuration: total,
		UnitLength:    unit,
		LastShort:     units[count-1].Duration < unit,
	}
}

// MinScaledDimension is the smallest output dimension the scaler produces.
const MinScaledDimension = 10

// ScaleDimension applies the output dimension policy: round(dim*scale),
// floored to MinScaledDimension, then rounded down to an even value.
// The downstream encoders require even dimensions, and the floor must be
// applied before the even rounding.
func ScaleDimension(dim int, scale float64) int {
	scaled := int(math.Round(float64(dim) * scale))
	if scaled < MinScaledDimension {
		scaled = MinScaledDimension
	}
	if scaled%2 != 0 {
		scaled--
	}
	return scaled
}

// ScaleDimensions applies ScaleDimension to a width/height pair.
func ScaleDimensions(width, height int, scale float64) (int, int) {
	return ScaleDimension(width, scale), ScaleDimension(height, scale)
}

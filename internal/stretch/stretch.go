// Package stretch implements the two phase-domain effects that
// together produce time-stretching and pitch-shifting: a frequency
// (bin-rotation) component and a time (phase-propagation) component.
//
// Frequency adds a per-bin phase rotation scaled by the grain's speed
// (not its pitch); it does not move energy between bins. It is driven
// recursively by the grain's own measured phase array, not by bin index
// alone, so it tracks whatever the spectrum actually did between bins.
// Time re-expresses
// the phase advance measured between two analysis grains (spaced one
// analysis hop apart) as the equivalent advance for two synthesis
// grains (spaced one, possibly different, synthesis hop apart),
// implementing time stretch. Both operate on
// [github.com/kupix/bungee-go/internal/phase] values and are combined
// per bin by the synthesis driver.
package stretch

import (
	"math"

	"github.com/kupix/bungee-go/internal/phase"
)

// frequencyShift is the fixed-point shift Frequency's multiplier is
// expressed in (256 == ratio 1.0), matching the reference
// implementation's compact integer multiply in the hot path.
const frequencyShift = 8

// Frequency computes a per-bin rotation offset that implements time
// stretch at the given speed, represented as an 8-bit fixed-point
// scale (256 == unison) to keep the recursive per-bin update free of
// floating point.
type Frequency struct {
	multiplier int32 // 8-bit fixed point, always <= 0
}

// NewFrequency builds a Frequency for the given grain speed
// (hopIdeal/synthesisHop, not pitch): multiplier = round(256/-|speed|),
// clamped to fit an int16, guaranteed non-positive.
func NewFrequency(speed float64) Frequency {
	const preventDivideByZero = 1e-20
	s := math.Abs(speed) + preventDivideByZero

	m := math.Round(float64(int32(1)<<frequencyShift) / -s)
	if m < math.MinInt16 {
		m = math.MinInt16
	}
	return Frequency{multiplier: int32(m)}
}

// Rotate fills rotation[0:n] from the grain's measured phase array
// phase[0:n], following the recursive relation
//
//	rotation[0] = 0
//	rotation[m] = rotation[m-1] + (phase[m-1]-phase[m])*multiplier>>8 + (phase[m-1]-phase[m])
//
// When |speed|==1, multiplier == -256 and every term after the delta
// cancels, so Rotate produces an all-zero array — the passthrough
// invariant.
func (f Frequency) Rotate(ph, rotation []phase.Type, n int) {
	if n <= 0 {
		return
	}
	rotation[0] = 0
	for m := 1; m < n; m++ {
		delta := ph[m-1] - ph[m]
		x := int32(delta) * f.multiplier >> frequencyShift
		rotation[m] = rotation[m-1] + phase.Type(x) + delta
	}
}

// log2SynthesisHopRevolution fixes Time's internal transform-length
// relationship (log2TransformLength = log2SynthesisHop - this),
// matching the reference implementation's Stretch::Time.
const log2SynthesisHopRevolution = -3

// logS is the shift used by Delta's nominal-advance term: 32 +
// log2SynthesisHopRevolution.
const logS = 32 + log2SynthesisHopRevolution

// Time propagates a measured analysis-hop phase advance into the
// equivalent synthesis-hop advance at one partial's peak bin, entirely
// in fixed-point integer arithmetic, parameterized by whether the
// current and previous grains were read in reverse.
type Time struct {
	reverse         bool
	reversePrevious bool

	a          int32
	multiplier int32
}

// NewTime builds a Time propagator for a grain with the given
// (signed) analysisHop, following a previous grain with
// analysisHopPrevious, at the given log2SynthesisHop.
func NewTime(reverse, reversePrevious bool, log2SynthesisHop, analysisHop, analysisHopPrevious int) Time {
	_ = analysisHopPrevious // direction is already captured by reverse/reversePrevious

	log2TransformLength := log2SynthesisHop - log2SynthesisHopRevolution
	a := int32(analysisHop) << uint(32-log2TransformLength)

	dividend := int32(1<<uint(log2SynthesisHop)) << 16
	divisor := int32(analysisHop) << 1

	var multiplier int32
	if divisor != 0 {
		abs := divisor
		if abs < 0 {
			abs = -abs
		}
		multiplier = (dividend + abs/2) / divisor
	}

	return Time{reverse: reverse, reversePrevious: reversePrevious, a: a, multiplier: multiplier}
}

// Offset returns the measured phase advance at one bin from the
// previous grain to this one (the advance over the analysis hop),
// negating each grain's phase first when that grain read its input
// backwards.
func (t Time) Offset(measured, previous phase.Type) phase.Type {
	m := measured
	if t.reverse {
		m = -m
	}
	p := previous
	if t.reversePrevious {
		p = -p
	}
	return m - p
}

// Delta returns the per-bin phase correction for bin m: the
// synthesis-hop-equivalent advance that a pure sinusoid at bin m's
// frequency would accumulate across this grain's analysis hop,
// computed with sub-LSB precision before narrowing back to a Type.
func (t Time) Delta(measured, previous phase.Type, m int) phase.Type {
	measuredWide := int32(measured) << 16
	previousWide := int32(previous) << 16

	da := (measuredWide - previousWide) - int32(m)*t.a
	result := (int32(m) << uint(logS)) + (da>>15)*t.multiplier
	return phase.Type(result >> 16)
}

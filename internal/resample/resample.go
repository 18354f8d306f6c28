// Package resample implements Bungee's fractional-rate resampling,
// used on the input side (to convert a variable-rate request into the
// engine's fixed internal grain rate) and the output side (the
// reverse). Two modes share one algorithm:
//
//   - [VariableToFixed] consumes an externally-supplied, possibly
//     time-varying ratio and produces a fixed number of output
//     samples per call — used when resampling live input.
//   - [FixedToVariable] consumes a fixed number of input samples and
//     produces however many output samples the ratio implies — used
//     when resampling the engine's output back to a caller's rate.
//
// Both directions accept a ratio that varies linearly across the
// block: each output sample advances the input position by the ratio
// interpolated between beginRatio and endRatio at that sample (a
// running sum of per-sample ratios, not an exact integral of the linear
// ramp). With alignEnd, FixedToVariable instead uses one constant step
// for the whole block.
package resample

import (
	"fmt"
	"math"
)

// Interpolation selects how a resampled output sample is derived from
// its (possibly fractional) input position.
type Interpolation int

const (
	// None produces silence for every output sample.
	None Interpolation = iota
	// Nearest rounds to the closest input sample.
	Nearest
	// Bilinear linearly interpolates between the two neighboring
	// input samples.
	Bilinear
)

// minPadding is the minimum number of guard samples required on each
// side of a [Padded] buffer so Bilinear interpolation never reads out
// of bounds even at the extremes of a varying ratio.
const minPadding = 6

// Padded wraps a buffer that carries align guard samples on each side,
// so resampling code can read positions slightly before 0 or after
// len(inner) without special-casing the ends.
type Padded struct {
	buf   []float64
	align int
}

// NewPadded allocates a Padded buffer holding n unpadded samples, with
// padding samples of guard band on each side (rounded up to a multiple
// of align, and never less than [minPadding]).
func NewPadded(n, align int) *Padded {
	if align < 1 {
		align = 1
	}
	padding := (minPadding + align - 1) / align * align
	return &Padded{
		buf:   make([]float64, n+2*padding),
		align: padding,
	}
}

// Padding returns the number of guard samples on each side.
func (p *Padded) Padding() int {
	return p.align
}

// Ref returns the full underlying buffer, including padding.
func (p *Padded) Ref() []float64 {
	return p.buf
}

// Unpadded returns the interior (non-guard) region of the buffer.
func (p *Padded) Unpadded() []float64 {
	return p.buf[p.align : len(p.buf)-p.align]
}

// At returns the value at unpadded index i, where i may range from
// -Padding() to len(Unpadded())+Padding()-1.
func (p *Padded) At(i int) float64 {
	return p.buf[i+p.align]
}

// Mode distinguishes which side of a resample call carries the fixed
// frame count.
type Mode int

const (
	// VariableToFixed resamples a variable-length input into a fixed
	// number of output samples (used on the input side).
	VariableToFixed Mode = iota
	// FixedToVariable resamples a fixed-length input into however
	// many output samples the ratio implies (used on the output side).
	FixedToVariable
)

// Operation holds a resampling ratio. It carries no on/off flag:
// whether to run at all (identity ratios) is decided by the caller.
type Operation struct {
	Ratio float64
}

// VariableFrameCount returns the number of input samples a
// FixedToVariable resample with the given output length and ratio
// range would need available, i.e. the number of input frames
// implied by outputLen output samples stepping at the mean of
// beginRatio and endRatio.
func VariableFrameCount(outputLen int, beginRatio, endRatio float64) int {
	mean := (beginRatio + endRatio) / 2
	return int(math.Ceil(float64(outputLen) * mean))
}

// Resample runs the chosen mode and interpolation over in (a
// [Padded] buffer), filling every sample of out; for FixedToVariable
// the caller sizes out to the number of samples the ratio implies.
// beginRatio and endRatio give the resampling ratio (input samples
// advanced per output sample, in both modes) at the start and end of
// the block; the ratio varies linearly across it. beginOffset is the
// fractional input position (in unpadded-buffer coordinates) the first
// output sample should be read from. alignEnd, when true and mode is
// FixedToVariable, replaces the per-sample ratio with one constant step
// chosen so the last sample read lands exactly on the last input
// sample; VariableToFixed ignores it.
//
// It returns the fractional input position just past the last sample
// consumed, for the caller to carry forward as the next call's
// beginOffset, and an error if beginOffset lies outside the buffer's
// valid range.
func Resample(mode Mode, interp Interpolation, out []float64, in *Padded, beginOffset, beginRatio, endRatio float64, alignEnd bool) (endOffset float64, err error) {
	n := len(in.Unpadded())

	lowerBound := float64(-in.Padding() + 1)
	upperBound := float64(n + in.Padding() - 2)
	if beginOffset < lowerBound || beginOffset > upperBound {
		return 0, fmt.Errorf("resample: beginOffset %v out of bounds [%v, %v]", beginOffset, lowerBound, upperBound)
	}

	count := len(out)
	if count == 0 {
		return beginOffset, nil
	}

	meanRatio := (beginRatio + endRatio) / 2

	switch mode {
	case VariableToFixed:
		return resampleVariableToFixed(interp, out, in, beginOffset, beginRatio, endRatio, meanRatio)
	case FixedToVariable:
		return resampleFixedToVariable(interp, out, in, beginOffset, beginRatio, endRatio, meanRatio, alignEnd)
	default:
		return 0, fmt.Errorf("resample: unknown mode %d", mode)
	}
}

// resampleVariableToFixed steps through count fixed output samples,
// each consuming approximately ratio input samples, ratio varying
// linearly from beginRatio to endRatio across the block.
func resampleVariableToFixed(interp Interpolation, out []float64, in *Padded, beginOffset, beginRatio, endRatio, meanRatio float64) (float64, error) {
	count := len(out)
	offset := beginOffset

	for i := range out {
		frac := float64(i) / float64(count)
		ratio := beginRatio + (endRatio-beginRatio)*frac

		out[i] = sampleAt(interp, in, offset)
		offset += ratio
	}

	return offset, nil
}

// resampleFixedToVariable fills out from the fixed-rate input, each
// output sample reading from the running input position, which then
// advances by the ratio interpolated at that sample (or by the constant
// aligned step when alignEnd is set).
func resampleFixedToVariable(interp Interpolation, out []float64, in *Padded, beginOffset, beginRatio, endRatio, meanRatio float64, alignEnd bool) (float64, error) {
	count := len(out)
	if count == 0 {
		return beginOffset, nil
	}

	step := meanRatio
	if alignEnd && count > 1 {
		n := len(in.Unpadded())
		target := float64(n - 1)
		step = (target - beginOffset) / float64(count-1)
	}

	offset := beginOffset
	for i := range out {
		frac := float64(i) / float64(max(count-1, 1))
		ratio := beginRatio + (endRatio-beginRatio)*frac
		if alignEnd {
			ratio = step
		}

		out[i] = sampleAt(interp, in, offset)
		offset += ratio
	}

	return offset, nil
}

func sampleAt(interp Interpolation, in *Padded, offset float64) float64 {
	switch interp {
	case None:
		return 0
	case Nearest:
		return in.At(int(math.Round(offset)))
	case Bilinear:
		lo := math.Floor(offset)
		frac := offset - lo
		i := int(lo)
		a := in.At(i)
		b := in.At(i + 1)
		return a + (b-a)*frac
	default:
		return 0
	}
}

package bungee

import (
	"math"
	"math/bits"
)

// maxPitchOctaves bounds how far a Request's Pitch may shift frequency
// content, which in turn bounds how many extra input samples a grain
// might need on either side of its nominal range — a higher pitch
// ratio reads a narrower input range per grain, a lower one a wider
// one, and the bound bookends that range generously.
const maxPitchOctaves = 2

// timing derives the engine's fixed internal hop size from the input
// sample rate and computes, from a Request, how far the grain
// pipeline must look ahead or behind in the input and output streams.
type timing struct {
	sampleRates      SampleRates
	log2SynthesisHop int
}

// newTiming picks log2SynthesisHop as the largest power of two no
// greater than inputRate/64 — i.e. roughly 64 grains per second at
// speed 1, a hop short enough to track fast pitch modulation but long
// enough to amortize the FFT cost per sample.
func newTiming(rates SampleRates) timing {
	log2InputRate := floorLog2(rates.Input)
	log2SynthesisHop := log2InputRate - 6
	if log2SynthesisHop < 0 {
		log2SynthesisHop = 0
	}
	return timing{sampleRates: rates, log2SynthesisHop: log2SynthesisHop}
}

func floorLog2(x int) int {
	if x <= 0 {
		return 0
	}
	return bits.Len(uint(x)) - 1
}

// SynthesisHop returns the fixed synthesis hop length, in samples, at
// the engine's output rate.
func (t timing) SynthesisHop() int {
	return 1 << uint(t.log2SynthesisHop)
}

// Log2TransformLength returns the power-of-two FFT size used for every
// grain, sized at 8 synthesis hops so the analysis/synthesis windows
// (see internal/window) span four hops either side of the grain
// center.
func (t timing) Log2TransformLength() int {
	return t.log2SynthesisHop + 3
}

// TransformLength returns 1<<Log2TransformLength().
func (t timing) TransformLength() int {
	return 1 << uint(t.Log2TransformLength())
}

// MaxInputFrameCount bounds how many input frames a single grain can
// require, across the full range of pitches [1/2^maxPitchOctaves,
// 2^maxPitchOctaves] the engine supports without reallocating buffers.
func (t timing) MaxInputFrameCount() int {
	return t.TransformLength() << maxPitchOctaves
}

// MaxOutputFrameCount bounds how many output frames a single grain
// can produce, symmetric with MaxInputFrameCount.
func (t timing) MaxOutputFrameCount() int {
	return t.TransformLength() << maxPitchOctaves
}

// CalculateInputHop returns unitHop·speed: the ideal (fractional)
// number of input samples that should separate this grain's position
// from the previous grain's, used only as a fallback for
// [grain.specify] when the hop cannot instead be derived by
// differencing two successive Request.Position values. unitHop is the
// synthesis hop re-expressed in input-frame terms, undoing whatever
// fraction of the pitch-driven resample ratio is active on the output
// side (resampling active on the input side instead leaves unitHop at
// the plain synthesis hop, scaled only by the sample-rate ratio).
func (t timing) CalculateInputHop(request Request) float64 {
	_, outputRatio := resampleRatios(t.sampleRates, request)
	unitHop := float64(t.SynthesisHop()) * float64(t.sampleRates.Input) / float64(t.sampleRates.Output) / outputRatio
	return unitHop * request.Speed
}

// Preroll rewinds request.Position by four input hops and sets
// request.Reset, so that by the time steady-state output reaches the
// position the caller actually wants, the grain ring has already
// absorbed a few grains' worth of run-in — without this, the first
// few milliseconds of output can sound weak or lose a transient.
func (t timing) Preroll(request *Request) {
	request.Position -= 4 * t.CalculateInputHop(*request)
	request.Reset = true
}

// Next advances request.Position by one input hop and clears
// request.Reset, unless either Position or Speed is NaN (in which case
// the request is left alone — it addresses an invalid/flush grain or
// the caller is driving Position itself).
func (t timing) Next(request *Request) {
	if !math.IsNaN(request.Speed) && !math.IsNaN(request.Position) {
		request.Position += t.CalculateInputHop(*request)
		request.Reset = false
	}
}

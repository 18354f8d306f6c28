// Package window builds Bungee's analysis and synthesis windows.
//
// Unlike a conventional time-domain window generator, Bungee specifies
// its windows by their frequency-domain coefficients: a handful of
// gain-scaled cosine terms placed directly into FFT bins, inverse
// transformed to produce the time-domain window. This produces a
// window whose spectral leakage characteristics are exact by
// construction rather than approximated, at the cost of only being
// practical for windows expressible as a short cosine series.
package window

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/kupix/bungee-go/internal/fourier"
)

// FromFrequencyDomainCoefficients builds a time-domain window of
// length 1<<log2Size by placing gain*coefficients[i] into FFT bin i
// (for i in range) and zero elsewhere, then taking the inverse FFT.
// coefficients therefore describes a cosine series: coefficients[0]
// is the DC term, coefficients[1] the fundamental, and so on.
func FromFrequencyDomainCoefficients(log2Size int, gain float64, coefficients []float64) ([]float64, error) {
	bins := fourier.Bins(log2Size)
	if len(coefficients) > bins {
		return nil, fmt.Errorf("window: %d coefficients exceed %d available bins for log2Size %d", len(coefficients), bins, log2Size)
	}

	spectrum := make([]complex128, bins)

	scaled := make([]float64, len(coefficients))
	copy(scaled, coefficients)
	vecmath.ScaleBlock(scaled, scaled, gain)

	for i, c := range scaled {
		spectrum[i] = complex(c, 0)
	}

	tr, err := fourier.Acquire(log2Size)
	if err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}

	out := make([]float64, tr.Size())
	if err := tr.Inverse(out, spectrum); err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}

	return out, nil
}

// analysisGain is the DC gain applied to the analysis window's
// frequency-domain coefficients, chosen so that the folded,
// overlap-summed analysis window has unit gain at the synthesis hop
// spacing used throughout the engine.
const analysisGain = (3 * piConst) / (3*piConst + 8)

const piConst = 3.141592653589793

// analysisCoefficients is the two-term cosine series ({1, 0.5}) used
// to build the analysis window, matching the synthesis window's shape
// so that analysis and synthesis windows multiply to the same
// overlap-add-unity envelope.
var analysisCoefficients = []float64{1, 0.5}

// AnalysisWindow builds the input-stage analysis window for a grain
// whose synthesis hop is 1<<log2SynthesisHop samples. Its length is
// 8<<log2SynthesisHop samples (four synthesis hops either side of the
// grain center).
func AnalysisWindow(log2SynthesisHop int) ([]float64, error) {
	log2Size := log2SynthesisHop + 3
	gain := analysisGain / float64(int64(8)<<uint(log2SynthesisHop))
	return FromFrequencyDomainCoefficients(log2Size, gain, analysisCoefficients)
}

// synthesisGain is the DC gain applied to the synthesis window's
// frequency-domain coefficients.
const synthesisGain = 0.25

// synthesisCoefficients is the cosine series used to build the
// synthesis (output overlap-add) window.
var synthesisCoefficients = []float64{1, 0.5}

// SynthesisWindow builds the output-stage synthesis window for a
// grain whose synthesis hop is 1<<log2SynthesisHop samples. Its length
// is 8<<log2SynthesisHop samples, matching AnalysisWindow.
func SynthesisWindow(log2SynthesisHop int) ([]float64, error) {
	log2Size := log2SynthesisHop + 3
	return FromFrequencyDomainCoefficients(log2Size, synthesisGain, synthesisCoefficients)
}

// ApplyMode selects whether [Apply] assigns into dst (the first write
// to a quadrant) or accumulates onto the existing contents (a
// subsequent overlapping write). This mirrors the original
// implementation's compile-time Apply<index>::receive dispatch
// (assign for index 0, add for index 1) as a two-entry runtime table.
type ApplyMode int

const (
	// Assign overwrites dst with win*src.
	Assign ApplyMode = iota
	// Add accumulates win*src onto dst.
	Add
)

// Apply multiplies src by win and writes the result into dst according
// to mode, using [github.com/cwbudde/algo-vecmath] block arithmetic.
func Apply(dst, src, win []float64, mode ApplyMode) error {
	if len(src) != len(win) || len(dst) != len(win) {
		return fmt.Errorf("window: Apply length mismatch: dst=%d src=%d win=%d", len(dst), len(src), len(win))
	}

	switch mode {
	case Assign:
		vecmath.MulBlock(dst, src, win)
	case Add:
		tmp := make([]float64, len(src))
		vecmath.MulBlock(tmp, src, win)
		vecmath.AddBlockInPlace(dst, tmp)
	default:
		return fmt.Errorf("window: unknown ApplyMode %d", mode)
	}

	return nil
}

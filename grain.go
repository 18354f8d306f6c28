package bungee

import (
	"math"

	"github.com/kupix/bungee-go/internal/fourier"
	"github.com/kupix/bungee-go/internal/partials"
	"github.com/kupix/bungee-go/internal/phase"
)

// grain holds everything the engine knows about one analysis/
// synthesis cycle: where it reads from the input, its analysed
// spectrum and phase-vocoder bookkeeping, and (once synthesised) its
// contribution to the output.
//
// Multi-channel audio is analysed per channel (transformed holds one
// spectrum per channel) but all phase, energy, rotation and partial
// bookkeeping is channel-summed: the engine tracks one phase
// relationship per bin, shared across channels, exactly as a
// multi-channel recording of a single instrument shares one pitch per
// harmonic regardless of which channels carry it.
type grain struct {
	log2TransformLength int
	channels            int

	request    Request
	requestHop float64

	// specified is true once specify has run on this grain at least
	// once; it guards AnalyseGrain/SynthesiseGrain against being
	// called out of order, independent of whether the grain itself
	// turned out valid.
	specified bool

	// resampleRatioInput and resampleRatioOutput are this grain's
	// resample plan (Resample::Operation.ratio in the reference
	// implementation): the input-side ratio is applied when reading
	// this grain's input chunk, the output-side ratio when the
	// synthesised quadrant is later drained. Either is pinned to 1
	// (inactive) depending on request.ResampleMode.
	resampleRatioInput  float64
	resampleRatioOutput float64

	// hop is this grain's rounded analysis hop, in input frames,
	// signed (negative means this grain reads the input backwards).
	hop int
	// hopIdeal is the unrounded analysis hop implied by requestHop
	// and the input-side resample ratio.
	hopIdeal float64
	// positionError is the sub-sample remainder carried forward from
	// hop's rounding, so successive grains' fractional positions
	// don't drift.
	positionError float64
	// speed is hopIdeal re-expressed as a multiple of the synthesis
	// hop; it drives the frequency-rotation component (see
	// internal/stretch.Frequency).
	speed float64

	// continuous is true when this grain's hop was derived by
	// differencing this grain's Position against the previous
	// grain's, rather than starting a fresh, unrelated analysis (the
	// first grain, after a seek, or whenever Request.Reset is set).
	continuous bool
	// passthrough is ±1 (the sign of speed) when |speed|==1 and 0
	// otherwise; a continuous grain whose previous grain had a different
	// passthrough value gets 0. When it is non-zero the frequency and
	// time stretch components must both contribute exactly zero rotation.
	passthrough int

	inputRange InputChunk

	validBinCount int

	// transformed holds one forward-FFT half-spectrum per channel.
	transformed [][]complex128

	// phase, energy and rotation are shared (channel-summed) per-bin
	// state: phase holds this grain's measured phase (compared against
	// the previous grain's phase in the phase-advance calculation),
	// energy this grain's per-bin power, rotation the cumulative phase
	// correction carried into synthesis.
	phase    []phase.Type
	energy   []float64
	rotation []phase.Type

	partialList []partials.Partial
}

// newEmptyGrain returns a grain representing an empty ring slot: an
// invalid grain whose Request.Position is NaN, exactly the state
// [Stretcher.SpecifyGrain] would leave a slot in for an explicit flush
// request.
func newEmptyGrain() *grain {
	return &grain{request: Request{Position: math.NaN()}}
}

// valid reports whether this grain's request position is a real
// sample index rather than the NaN sentinel marking an invalid
// (flush) grain.
func (g *grain) valid() bool {
	return !math.IsNaN(g.request.Position)
}

// reverse reports whether this grain reads its input chunk backwards.
func (g *grain) reverse() bool {
	return g.hop < 0
}

// resampleRatios computes the input- and output-side resample ratios
// for request against sampleRates, following Resample::Operations::setup:
// a base ratio split symmetrically between the two sides, then one or
// both sides pinned to the unit ratio (meaning inactive) according to
// request.ResampleMode.
func resampleRatios(sampleRates SampleRates, request Request) (inputRatio, outputRatio float64) {
	resampleRatio := request.Pitch * float64(sampleRates.Input) / float64(sampleRates.Output)
	inputRatio = 1 / resampleRatio
	outputRatio = resampleRatio

	inputActive, outputActive := true, true
	switch {
	case request.ResampleMode == ResampleForceOut:
		inputActive = false
	case request.ResampleMode == ResampleForceIn:
		outputActive = false
	case resampleRatio == 1:
		inputActive, outputActive = false, false
	case request.ResampleMode == ResampleAutoIn:
		outputActive = false
	case request.ResampleMode == ResampleAutoOut:
		inputActive = false
	case request.ResampleMode == ResampleAutoInOut && resampleRatio > 1:
		outputActive = false
	case request.ResampleMode == ResampleAutoInOut && resampleRatio < 1:
		inputActive = false
	default:
		inputActive = false
	}

	if !inputActive {
		inputRatio = 1
	}
	if !outputActive {
		outputRatio = 1
	}
	return inputRatio, outputRatio
}

// specify computes this grain's resample plan, analysis hop and
// required input range from the previous grain (nil for the very
// first grain) and the caller's request, following the reference
// implementation's Grain::specify. prev need not be valid: a NaN
// previous position (an empty ring slot, or an explicit flush grain)
// simply forces this grain to be discontinuous.
func (g *grain) specify(prev *grain, tm timing, channels int, request Request) InputChunk {
	g.request = request
	g.channels = channels
	g.specified = true
	g.log2TransformLength = tm.Log2TransformLength()

	g.resampleRatioInput, g.resampleRatioOutput = resampleRatios(tm.sampleRates, request)

	unitHop := float64(tm.SynthesisHop()) * float64(tm.sampleRates.Input) / float64(tm.sampleRates.Output) / g.resampleRatioOutput

	prevPosition := math.NaN()
	var prevPositionError float64
	var prevPassthrough int
	if prev != nil {
		prevPosition = prev.request.Position
		prevPositionError = prev.positionError
		prevPassthrough = prev.passthrough
	}

	g.requestHop = request.Position - prevPosition
	if math.IsNaN(g.requestHop) || request.Reset {
		g.requestHop = request.Speed * unitHop
	}

	g.hopIdeal = g.requestHop * g.resampleRatioInput

	g.continuous = !request.Reset && !math.IsNaN(prevPosition)
	if g.continuous {
		g.positionError = prevPositionError - g.hopIdeal
		g.hop = int(math.Round(-g.positionError))
		g.positionError += float64(g.hop)
	} else {
		g.hop = int(math.Round(g.hopIdeal))
		g.positionError = math.Round(request.Position) - request.Position
	}

	g.speed = g.hopIdeal / float64(tm.SynthesisHop())

	g.passthrough = 0
	if math.Abs(g.speed) == 1 {
		if g.speed < 0 {
			g.passthrough = -1
		} else {
			g.passthrough = 1
		}
	}
	if g.continuous && g.passthrough != prevPassthrough {
		g.passthrough = 0
	}

	n := tm.TransformLength()
	half := n / 2
	if g.resampleRatioInput != 1 {
		half = int(math.Round(float64(half)/g.resampleRatioInput)) + 1
	}
	center := int(math.Round(request.Position))
	g.inputRange = InputChunk{Begin: center - half, End: center + half}

	bins := fourier.Bins(g.log2TransformLength)
	g.validBinCount = computeValidBinCount(bins-1, g.resampleRatioOutput)

	g.transformed = make([][]complex128, channels)
	for c := range g.transformed {
		g.transformed[c] = make([]complex128, bins)
	}
	g.phase = make([]phase.Type, bins)
	g.energy = make([]float64, bins)
	g.rotation = make([]phase.Type, bins)

	return g.inputRange
}

// computeValidBinCount returns the number of low-frequency bins
// (out of nyquist+1) that carry genuine signal once this grain's
// output-side resample ratio is applied: a ratio above 1 (reading the
// synthesised output faster, raising its frequencies) limits the usable
// spectrum to bins up to nyquist/ratio (the rest would alias past
// Nyquist), while a ratio of 1 or below leaves every bin valid. nyquist
// is the index of the Nyquist bin (bins-1).
func computeValidBinCount(nyquist int, outputRatio float64) int {
	valid := int(math.Ceil(float64(nyquist) / outputRatio))
	if valid > nyquist {
		valid = nyquist
	}
	if valid < 0 {
		valid = 0
	}
	return valid + 1
}

package bungee

import (
	"fmt"
	"math"

	"github.com/kupix/bungee-go/internal/fourier"
	"github.com/kupix/bungee-go/internal/partials"
	"github.com/kupix/bungee-go/internal/phase"
	"github.com/kupix/bungee-go/internal/window"
)

// inputStage owns the analysis window (built once at construction and
// shared across grains) and drives the per-channel forward FFT.
type inputStage struct {
	log2SynthesisHop int
	window           []float64
	transform        *fourier.Transform

	// transientThreshold is passed to partials.SuppressTransient; a
	// value <= 0 selects partials.DefaultTransientThreshold.
	transientThreshold float64
}

func newInputStage(tm timing) (*inputStage, error) {
	win, err := window.AnalysisWindow(tm.log2SynthesisHop)
	if err != nil {
		return nil, fmt.Errorf("bungee: building analysis window: %w", err)
	}

	tr, err := fourier.Acquire(tm.Log2TransformLength())
	if err != nil {
		return nil, fmt.Errorf("bungee: acquiring analysis transform: %w", err)
	}

	return &inputStage{log2SynthesisHop: tm.log2SynthesisHop, window: win, transform: tr}, nil
}

// analyse windows and forward-transforms each channel of input (one
// slice per channel, each len == transform length), storing the
// per-channel spectra in g.transformed and deriving the shared
// (channel-summed) phase, energy and partial bookkeeping that
// synthesis needs. previousEnergy is the previous grain's energy, used
// for transient suppression; it may be nil for the first grain.
func (s *inputStage) analyse(g *grain, input [][]float64, previousEnergy []float64) error {
	if len(input) != g.channels {
		return fmt.Errorf("%w: analyse: got %d channels, want %d", ErrChannelDataLength, len(input), g.channels)
	}

	windowed := make([]float64, len(s.window))
	bins := s.transform.BinCount()
	summed := make([]complex128, bins)

	for c, data := range input {
		if len(data) != len(s.window) {
			return fmt.Errorf("%w: analyse: channel %d length %d, want %d", ErrChannelDataLength, c, len(data), len(s.window))
		}

		if err := window.Apply(windowed, data, s.window, window.Assign); err != nil {
			return fmt.Errorf("bungee: analyse: %w", err)
		}

		if err := s.transform.Forward(g.transformed[c], windowed); err != nil {
			return fmt.Errorf("bungee: analyse: %w", err)
		}

		for i, v := range g.transformed[c] {
			summed[i] += v
		}
	}

	re := make([]float64, bins)
	im := make([]float64, bins)
	for i, v := range summed {
		re[i], im[i] = real(v), imag(v)
		g.phase[i] = phase.FromRadians(math.Atan2(imag(v), real(v)))
	}

	g.energy = partials.Energy(re, im)

	g.partialList = partials.Enumerate(g.energy, g.validBinCount)
	if g.continuous && previousEnergy != nil {
		g.partialList = partials.SuppressTransient(g.partialList, g.energy, previousEnergy, s.transientThreshold)
	}

	return nil
}

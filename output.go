package bungee

import (
	"fmt"
	"math"

	"github.com/kupix/bungee-go/internal/fourier"
	"github.com/kupix/bungee-go/internal/resample"
	"github.com/kupix/bungee-go/internal/window"
)

// outputStage owns the synthesis window and inverse FFT, and
// accumulates each grain's windowed, overlap-added contribution in a
// per-channel ring-like buffer addressed by absolute output-sample
// position, draining the fully-settled prefix (the region no
// subsequent grain can still contribute to) on every call.
type outputStage struct {
	log2SynthesisHop int
	window           []float64
	transform        *fourier.Transform

	channels int
	acc      [][]float64
	base     int // absolute sample position acc[c][0] corresponds to
	started  bool

	// fixedOffset is the fractional input position, in the fixed-rate
	// accumulator's own coordinates, the next resample call should start
	// reading from — carried forward across calls so successive
	// fractional hops don't drift (Resample::Operations::fixedBufferOffset
	// in the reference implementation).
	fixedOffset float64
}

func newOutputStage(tm timing, channels int) (*outputStage, error) {
	win, err := window.SynthesisWindow(tm.log2SynthesisHop)
	if err != nil {
		return nil, fmt.Errorf("bungee: building synthesis window: %w", err)
	}

	tr, err := fourier.Acquire(tm.Log2TransformLength())
	if err != nil {
		return nil, fmt.Errorf("bungee: acquiring synthesis transform: %w", err)
	}

	acc := make([][]float64, channels)
	for c := range acc {
		acc[c] = []float64{}
	}

	return &outputStage{
		log2SynthesisHop: tm.log2SynthesisHop,
		window:           win,
		transform:        tr,
		channels:         channels,
		acc:              acc,
	}, nil
}

// synthesise inverse-transforms g's (already rotated) spectrum for
// every channel, applies the synthesis window, and overlap-adds the
// result into the accumulator at the position implied by g.request.Position.
func (s *outputStage) synthesise(g *grain) error {
	n := s.transform.Size()
	begin := int(math.Round(g.request.Position)) - n/2

	if !s.started {
		s.base = begin
		s.started = true
	}
	s.ensureRange(begin, begin+n)

	timeDomain := make([]float64, n)
	windowed := make([]float64, n)

	for c, spectrum := range g.transformed {
		if err := s.transform.Inverse(timeDomain, spectrum); err != nil {
			return fmt.Errorf("bungee: synthesise: %w", err)
		}
		if err := window.Apply(windowed, timeDomain, s.window, window.Assign); err != nil {
			return fmt.Errorf("bungee: synthesise: %w", err)
		}

		off := begin - s.base
		for i, v := range windowed {
			s.acc[c][off+i] += v
		}
	}

	return nil
}

// ensureRange grows the accumulator (on either end) so that the
// absolute sample range [begin, end) is addressable.
func (s *outputStage) ensureRange(begin, end int) {
	if begin < s.base {
		grow := s.base - begin
		for c := range s.acc {
			extended := make([]float64, grow+len(s.acc[c]))
			copy(extended[grow:], s.acc[c])
			s.acc[c] = extended
		}
		s.base = begin
	}

	need := end - s.base
	for c := range s.acc {
		if len(s.acc[c]) < need {
			s.acc[c] = append(s.acc[c], make([]float64, need-len(s.acc[c]))...)
		}
	}
}

// everythingBuffered returns the absolute position just past every
// sample currently held in the accumulator, for callers (a flushed
// Stretcher with no current grain to measure a settled boundary
// against) that want to drain whatever is left rather than stop at a
// grain-relative boundary.
func (s *outputStage) everythingBuffered() int {
	if len(s.acc) == 0 {
		return s.base
	}
	return s.base + len(s.acc[0])
}

// drainThrough removes and returns the settled prefix of the
// accumulator up to (but not including) absolute position through,
// resampling it per mode/ratio if resampling is requested, and
// returns the output-frame position range the (possibly resampled)
// data corresponds to. resampleRatio is the number of fixed-rate
// accumulator samples that correspond to one resampled output sample
// (Resample::Operations.output.ratio in the reference implementation);
// alignEnd is always false in this architecture since drainThrough
// never runs at ratio 1, so there is no exact-boundary tail to align to.
func (s *outputStage) drainThrough(through int, resampleRatio float64, interp resample.Interpolation) (data [][]float64, begin, end int, err error) {
	if through > s.everythingBuffered() {
		through = s.everythingBuffered()
	}
	begin = s.base
	if through <= begin {
		return nil, begin, begin, nil
	}

	count := through - begin
	out := make([][]float64, s.channels)
	for c := range s.acc {
		out[c] = append([]float64(nil), s.acc[c][:count]...)
		s.acc[c] = s.acc[c][count:]
	}
	s.base = through

	if resampleRatio == 1 {
		s.fixedOffset = 0
		return out, begin, through, nil
	}

	const alignEnd = false
	step := resampleRatio

	variableFrameCount := int(math.Round((float64(count)+step-s.fixedOffset)/step - 1))
	if variableFrameCount < 0 {
		variableFrameCount = 0
	}

	resampled := make([][]float64, s.channels)
	var endOffset float64
	for c := range out {
		padded := resample.NewPadded(len(out[c]), 1)
		copy(padded.Unpadded(), out[c])
		dst := make([]float64, variableFrameCount)
		eo, rerr := resample.Resample(resample.FixedToVariable, interp, dst, padded, s.fixedOffset, step, step, alignEnd)
		if rerr != nil {
			return nil, 0, 0, fmt.Errorf("bungee: output resample: %w", rerr)
		}
		resampled[c] = dst
		endOffset = eo
	}

	next := endOffset - float64(count)
	if bound := (step + step) * 0.3; math.Abs(next) >= bound {
		next = 0
	}
	s.fixedOffset = next

	return resampled, begin, through, nil
}

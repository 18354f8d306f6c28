package bungee

import (
	"fmt"
	"math"

	"github.com/kupix/bungee-go/internal/resample"
)

// Option configures a [Stretcher] at construction time.
type Option func(*config)

type config struct {
	interpolation   resample.Interpolation
	transientFactor float64
}

func defaultConfig() config {
	return config{
		interpolation:   resample.Bilinear,
		transientFactor: 1.5,
	}
}

// WithNearestInterpolation selects nearest-sample resampling instead
// of the default bilinear interpolation, trading quality for speed.
func WithNearestInterpolation() Option {
	return func(c *config) { c.interpolation = resample.Nearest }
}

// WithTransientThreshold overrides the energy-ratio factor used to
// detect and suppress transient partials (see internal/partials).
func WithTransientThreshold(factor float64) Option {
	return func(c *config) {
		if factor > 0 {
			c.transientFactor = factor
		}
	}
}

// Stretcher is a pull-driven, single-grain-at-a-time time-stretch and
// pitch-shift engine. One Stretcher instance processes one audio
// stream; it is not safe for concurrent use by multiple goroutines.
type Stretcher struct {
	sampleRates  SampleRates
	channelCount int
	cfg          config

	timing timing
	ring   *grainRing

	input  *inputStage
	output *outputStage
}

// NewStretcher constructs a Stretcher for the given sample rates and
// channel count.
func NewStretcher(rates SampleRates, channelCount int, opts ...Option) (*Stretcher, error) {
	if err := validateSampleRates(rates); err != nil {
		return nil, err
	}
	if err := validateChannelCount(channelCount); err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	tm := newTiming(rates)

	in, err := newInputStage(tm)
	if err != nil {
		return nil, err
	}
	in.transientThreshold = cfg.transientFactor

	out, err := newOutputStage(tm, channelCount)
	if err != nil {
		return nil, err
	}

	return &Stretcher{
		sampleRates:  rates,
		channelCount: channelCount,
		cfg:          cfg,
		timing:       tm,
		ring:         newGrainRing(),
		input:        in,
		output:       out,
	}, nil
}

// Preroll rewinds request.Position to prime the grain ring before the
// caller's intended start position, so steady-state output has already
// absorbed a few grains' run-in by the time it reaches that position.
func (s *Stretcher) Preroll(request *Request) { s.timing.Preroll(request) }

// Next advances request.Position by one input hop in preparation for
// the following [Stretcher.SpecifyGrain] call.
func (s *Stretcher) Next(request *Request) { s.timing.Next(request) }

// SampleRates returns the sample rates this Stretcher was constructed for.
func (s *Stretcher) SampleRates() SampleRates { return s.sampleRates }

// ChannelCount returns the channel count this Stretcher was constructed for.
func (s *Stretcher) ChannelCount() int { return s.channelCount }

// MaxInputFrameCount bounds how many input frames [Stretcher.SpecifyGrain]
// can ask for in one call.
func (s *Stretcher) MaxInputFrameCount() int { return s.timing.MaxInputFrameCount() }

// MaxOutputFrameCount bounds how many output frames
// [Stretcher.SynthesiseGrain] can produce in one call.
func (s *Stretcher) MaxOutputFrameCount() int { return s.timing.MaxOutputFrameCount() }

// Flushed reports whether every grain in the ring is empty — true for
// a freshly constructed Stretcher, and true again once four consecutive
// grains with a NaN Position (flush grains) have been specified.
func (s *Stretcher) Flushed() bool { return s.ring.flushed() }

// SpecifyGrain advances the grain pipeline by one grain for the given
// request, and returns the range of input samples (in request-frame
// positions) the caller must supply to [Stretcher.AnalyseGrain] next.
func (s *Stretcher) SpecifyGrain(request Request) (InputChunk, error) {
	if err := validateRequest(request); err != nil {
		return InputChunk{}, err
	}

	prev := s.ring.at(0)

	g := newEmptyGrain()
	chunk := g.specify(prev, s.timing, s.channelCount, request)
	s.ring.rotate(g)

	return chunk, nil
}

// AnalyseGrain windows and forward-transforms the input samples
// (channel-planar, each channel's slice exactly spanning the range
// returned by the preceding [Stretcher.SpecifyGrain]) for the grain
// most recently specified.
func (s *Stretcher) AnalyseGrain(channelData [][]float64) error {
	curr := s.ring.at(0)
	if curr == nil || !curr.specified {
		return fmt.Errorf("bungee: AnalyseGrain called before SpecifyGrain")
	}

	var previousEnergy []float64
	if prev := s.ring.at(1); prev != nil && prev.valid() {
		previousEnergy = prev.energy
	}

	return s.input.analyse(curr, channelData, previousEnergy)
}

// SynthesiseGrain applies the phase-vocoder stretch and pitch
// transformation to the most recently analysed grain and returns its
// contribution to the output stream. The returned chunk's Data may be
// empty (FrameCount() == 0) during preroll, while the grain ring is
// still filling and no output range has fully settled yet.
func (s *Stretcher) SynthesiseGrain() (OutputChunk, error) {
	curr := s.ring.at(0)
	if curr == nil || !curr.specified {
		return OutputChunk{}, fmt.Errorf("bungee: SynthesiseGrain called before AnalyseGrain")
	}

	prev := s.ring.at(1)
	synthesiseSpectrum(curr, prev)

	outputRatio := curr.resampleRatioOutput

	var settledThrough int
	if curr.valid() {
		if err := s.output.synthesise(curr); err != nil {
			return OutputChunk{}, err
		}

		// Anything before this grain's own window start can no longer
		// receive contributions from it or (in the common
		// forward-continuous case) from any later grain, since later
		// grains only advance further along the input; it is therefore
		// safe to drain.
		n := s.output.transform.Size()
		settledThrough = int(math.Round(curr.request.Position)) - n/2
	} else {
		// An invalid (flush) grain contributes nothing new; drain
		// whatever the accumulator still holds, using whichever
		// resample ratio the pipeline was last actually using.
		settledThrough = s.output.everythingBuffered()
		if prev != nil && prev.valid() {
			outputRatio = prev.resampleRatioOutput
		} else {
			outputRatio = 1
		}
	}

	data, begin, end, err := s.output.drainThrough(settledThrough, outputRatio, s.cfg.interpolation)
	if err != nil {
		return OutputChunk{}, err
	}

	return OutputChunk{Data: flattenChannels(data), Begin: begin, End: end, Request: curr.request}, nil
}

// flattenChannels concatenates per-channel slices into one
// channel-stride-planar buffer: all of channel 0's frames, then
// channel 1's, and so on.
func flattenChannels(channels [][]float64) []float64 {
	if len(channels) == 0 {
		return nil
	}
	out := make([]float64, 0, len(channels)*len(channels[0]))
	for _, c := range channels {
		out = append(out, c...)
	}
	return out
}

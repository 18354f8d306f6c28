// Package bungee implements a real-time phase-vocoder engine for
// independently stretching the duration and shifting the pitch of
// audio, pulled one grain at a time by the caller.
//
// # Usage
//
// Construct a [Stretcher] for the input/output sample rates and
// channel count you need, then drive it in a loop: ask it which input
// samples the next grain needs via [Stretcher.SpecifyGrain], supply
// those samples to [Stretcher.AnalyseGrain], and collect the
// synthesized output from [Stretcher.SynthesiseGrain]. A Stretcher
// processes exactly one grain at a time and keeps all state required
// to produce the next — there is no overlapping or concurrent grain
// processing within a single instance.
//
//	request := bungee.DefaultRequest()
//	request.Position, request.Speed, request.Pitch = 0, 1, 1.5
//	st, err := bungee.NewStretcher(rates, channelCount)
//	...
//	st.Preroll(&request)
//	for {
//		in, _ := st.SpecifyGrain(request)
//		st.AnalyseGrain(samples[in.Begin:in.End])
//		out, _ := st.SynthesiseGrain()
//		st.Next(&request)
//	}
//
// # Algorithm Selection
//
// The engine implements identity-phase-locking: spectral bins are
// grouped into partials (see internal/partials), and every bin within
// a partial is corrected by the phase-propagation computed at the
// partial's peak (see internal/stretch), rather than correcting every
// bin independently. This preserves the phase relationship between
// harmonically related bins and avoids the smeared, "phasy" artifact
// a per-bin phase vocoder produces on sustained tonal material.
package bungee

import "math"

// SampleRates describes the input and output sample rates a Stretcher
// was constructed for. They need not match: a Stretcher configured
// with different input and output rates performs sample-rate
// conversion as a side effect of its resampling stages.
type SampleRates struct {
	Input  int
	Output int
}

// Request describes the desired time-stretch and pitch-shift for the
// next grain. It is the engine's only input: a caller drives the
// Stretcher by mutating Position (directly, or via the Stretcher's
// Preroll/Next helpers) and resubmitting the same Request to
// [Stretcher.SpecifyGrain].
type Request struct {
	// Position is the input-frame index of this grain's centre. NaN
	// is a valid sentinel meaning an invalid grain: it produces no
	// audio output and is used to flush the pipeline. The engine
	// derives the analysis hop by differencing successive grains'
	// Position whenever it can, falling back to Speed only when that
	// is impossible (the first grain, a NaN position, or Reset).
	Position float64
	// Speed is the playback speed multiplier used to derive the hop
	// when Position can't be differenced against the previous grain.
	// 1 is unchanged duration, 2 is twice as fast, 0.5 is half as fast.
	Speed float64
	// Pitch is the pitch multiplier: 1 is unchanged pitch, 2 is one
	// octave up, 0.5 is one octave down. Must be > 0.
	Pitch float64
	// Reset forces this grain to be treated as discontinuous with the
	// previous one, as if it were the first grain after a seek.
	Reset bool
	// ResampleMode selects which side of the pipeline performs this
	// grain's fractional resampling.
	ResampleMode ResampleMode
}

// DefaultRequest returns a Request for unchanged pitch, with Position
// and Speed both set to NaN (an invalid grain; the caller sets them
// before use) and resampling on the output side, matching the
// reference implementation's defaultRequest.
func DefaultRequest() Request {
	return Request{Position: math.NaN(), Speed: math.NaN(), Pitch: 1, ResampleMode: ResampleAutoOut}
}

// InputChunk describes the range of input samples, in request-frame
// positions (not bytes or channel-interleaved offsets), a Stretcher
// needs supplied to [Stretcher.AnalyseGrain] for the grain most
// recently specified by [Stretcher.SpecifyGrain]. Begin may be
// negative and End may exceed the caller's available input near the
// start or end of a stream; the caller is responsible for padding
// with silence as needed.
type InputChunk struct {
	Begin int
	End   int
}

// FrameCount returns the number of frames the chunk spans.
func (c InputChunk) FrameCount() int {
	return c.End - c.Begin
}

// OutputChunk describes synthesized output from
// [Stretcher.SynthesiseGrain]: Data holds channelStride-planar
// samples (channel 0's frames, then channel 1's, and so on), and
// Begin/End give the output-frame position range it covers so a
// caller assembling a continuous output stream can detect gaps or
// overlaps.
type OutputChunk struct {
	Data  []float64
	Begin int
	End   int
	// Request is the request that produced this chunk, carried along
	// so a caller assembling multiple chunks can tell when the
	// requested speed or pitch changed mid-stream.
	Request Request
}

// FrameCount returns the number of output frames in the chunk (the
// length of one channel's worth of Data).
func (c OutputChunk) FrameCount() int {
	return c.End - c.Begin
}

// ResampleMode selects which side of the grain pipeline — input,
// output, both, or neither — performs the sample-rate and
// pitch-driven fractional resampling, trading CPU cost against which
// stage's resampling artifacts dominate.
type ResampleMode int

const (
	// ResampleAutoOut resamples on the output side whenever the pitch
	// request or sample-rate conversion requires it. The default.
	ResampleAutoOut ResampleMode = iota
	// ResampleAutoIn resamples on the input side instead.
	ResampleAutoIn
	// ResampleAutoInOut resamples on the input side when the resample
	// ratio (pitch × input rate / output rate) is above 1 and on the
	// output side when it is below 1.
	ResampleAutoInOut
	// ResampleForceOut always resamples on the output side, even for
	// ratios that would otherwise need no resampling.
	ResampleForceOut
	// ResampleForceIn always resamples on the input side.
	ResampleForceIn
)

// String returns the mode's name, for debug printing and error messages.
func (m ResampleMode) String() string {
	switch m {
	case ResampleAutoOut:
		return "autoOut"
	case ResampleAutoIn:
		return "autoIn"
	case ResampleAutoInOut:
		return "autoInOut"
	case ResampleForceOut:
		return "forceOut"
	case ResampleForceIn:
		return "forceIn"
	default:
		return "unknown"
	}
}

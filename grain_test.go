package bungee

import "testing"

func TestComputeValidBinCountUnchangedPitch(t *testing.T) {
	if got := computeValidBinCount(129, 1.0); got != 130 {
		t.Fatalf("got %d, want 130", got)
	}
}

func TestComputeValidBinCountPitchUpShrinksRange(t *testing.T) {
	got := computeValidBinCount(129, 2.0)
	if got >= 130 {
		t.Fatalf("expected fewer valid bins when shifting pitch up, got %d", got)
	}
	if got < 1 {
		t.Fatalf("expected at least 1 valid bin, got %d", got)
	}
}

func TestComputeValidBinCountPitchDownClampsToNyquist(t *testing.T) {
	// A ratio < 1 implies more valid bins than exist; the count must
	// clamp at nyquist+1 rather than overrun the spectrum.
	if got := computeValidBinCount(129, 0.5); got != 130 {
		t.Fatalf("got %d, want 130 (clamped at nyquist+1)", got)
	}
}

func testRequest() Request {
	return Request{Position: 0, Speed: 1, Pitch: 1}
}

func TestSpecifyFirstGrainIsDiscontinuous(t *testing.T) {
	tm := newTiming(SampleRates{Input: 44100, Output: 44100})
	g := newEmptyGrain()
	chunk := g.specify(nil, tm, 1, testRequest())

	if g.continuous {
		t.Fatal("expected the first grain to be discontinuous")
	}
	if chunk.FrameCount() != tm.TransformLength() {
		t.Fatalf("input chunk frame count = %d, want %d", chunk.FrameCount(), tm.TransformLength())
	}
}

func TestSpecifyPassthroughOnSecondGrain(t *testing.T) {
	tm := newTiming(SampleRates{Input: 44100, Output: 44100})
	first := newEmptyGrain()
	first.specify(nil, tm, 1, testRequest())

	second := newEmptyGrain()
	req := testRequest()
	req.Position = float64(tm.SynthesisHop())
	second.specify(first, tm, 1, req)

	if !second.continuous {
		t.Fatal("expected second grain at unity speed/pitch to be continuous")
	}
	if second.passthrough != 1 {
		t.Fatalf("expected second grain at unity speed/pitch, same direction, to be a passthrough, got %d", second.passthrough)
	}
}

func TestSpecifyNonUnityPitchIsNotPassthrough(t *testing.T) {
	tm := newTiming(SampleRates{Input: 44100, Output: 44100})
	first := newEmptyGrain()
	first.specify(nil, tm, 1, testRequest())

	second := newEmptyGrain()
	req := testRequest()
	req.Pitch = 1.5
	req.Reset = true
	second.specify(first, tm, 1, req)

	if second.passthrough != 0 {
		t.Fatalf("expected a pitch-shifted grain not to be a passthrough, got %d", second.passthrough)
	}
}

func TestSpecifyInvalidPreviousForcesDiscontinuous(t *testing.T) {
	tm := newTiming(SampleRates{Input: 44100, Output: 44100})
	empty := newEmptyGrain()

	g := newEmptyGrain()
	g.specify(empty, tm, 1, testRequest())

	if g.continuous {
		t.Fatal("expected a grain following an empty ring slot to be discontinuous")
	}
}

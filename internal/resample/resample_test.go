package resample

import (
	"math"
	"testing"
)

func TestPaddedAccessors(t *testing.T) {
	p := NewPadded(4, 1)
	if p.Padding() < minPadding {
		t.Fatalf("padding %d below minimum %d", p.Padding(), minPadding)
	}
	unpadded := p.Unpadded()
	if len(unpadded) != 4 {
		t.Fatalf("len(Unpadded()) = %d, want 4", len(unpadded))
	}
	for i := range unpadded {
		unpadded[i] = float64(i + 1)
	}
	for i := 0; i < 4; i++ {
		if p.At(i) != float64(i+1) {
			t.Fatalf("At(%d) = %v, want %v", i, p.At(i), i+1)
		}
	}
}

func TestResampleUnitRatioIsIdentity(t *testing.T) {
	p := NewPadded(8, 1)
	u := p.Unpadded()
	for i := range u {
		u[i] = math.Sin(float64(i))
	}

	out := make([]float64, 8)
	end, err := Resample(VariableToFixed, Nearest, out, p, 0, 1, 1, false)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if math.Abs(end-8) > 1e-9 {
		t.Fatalf("end offset = %v, want 8", end)
	}
	for i := range u {
		if math.Abs(out[i]-u[i]) > 1e-9 {
			t.Fatalf("index %d: got %v, want %v", i, out[i], u[i])
		}
	}
}

func TestResampleNoneProducesSilence(t *testing.T) {
	p := NewPadded(4, 1)
	u := p.Unpadded()
	for i := range u {
		u[i] = 1
	}
	out := make([]float64, 4)
	if _, err := Resample(VariableToFixed, None, out, p, 0, 1, 1, false); err != nil {
		t.Fatalf("Resample: %v", err)
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("index %d: got %v, want 0", i, v)
		}
	}
}

func TestResampleRejectsOutOfRangeOffset(t *testing.T) {
	p := NewPadded(4, 1)
	out := make([]float64, 2)
	if _, err := Resample(VariableToFixed, Nearest, out, p, 1000, 1, 1, false); err == nil {
		t.Fatal("expected error for out-of-range beginOffset")
	}
}

func TestBilinearInterpolatesBetweenSamples(t *testing.T) {
	p := NewPadded(4, 1)
	u := p.Unpadded()
	u[0], u[1], u[2], u[3] = 0, 10, 20, 30

	out := make([]float64, 1)
	if _, err := Resample(VariableToFixed, Bilinear, out, p, 0.5, 1, 1, false); err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if math.Abs(out[0]-5) > 1e-9 {
		t.Fatalf("got %v, want 5", out[0])
	}
}

func TestVariableFrameCount(t *testing.T) {
	got := VariableFrameCount(100, 1, 1)
	if got != 100 {
		t.Fatalf("got %d, want 100", got)
	}
	got2 := VariableFrameCount(100, 2, 2)
	if got2 != 200 {
		t.Fatalf("got %d, want 200", got2)
	}
}

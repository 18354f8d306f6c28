package phase

import (
	"math"
	"testing"
)

func TestRevolutionsRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		rev  float64
	}{
		{"zero", 0},
		{"quarter", 0.25},
		{"negative quarter", -0.25},
		{"near edge", 0.499},
		{"near negative edge", -0.499},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromRevolutions(tt.rev).ToRevolutions()
			if math.Abs(got-tt.rev) > 1e-4 {
				t.Fatalf("round trip: got %v, want %v", got, tt.rev)
			}
		})
	}
}

func TestRevolutionsWrap(t *testing.T) {
	// A full revolution plus a quarter should wrap to the same value as a quarter.
	a := FromRevolutions(0.25)
	b := FromRevolutions(1.25)
	if a != b {
		t.Fatalf("wraparound mismatch: %v != %v", a, b)
	}
}

func TestRadiansRoundTrip(t *testing.T) {
	want := math.Pi / 3
	got := FromRadians(want).ToRadians()
	if math.Abs(got-want) > 1e-3 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestArithmeticWraps(t *testing.T) {
	// near the +π boundary, adding a small positive angle should wrap to
	// a large negative angle rather than overflow/panic.
	near := FromRevolutions(0.499)
	delta := FromRevolutions(0.01)
	sum := near + delta
	if sum.ToRevolutions() > 0 {
		t.Fatalf("expected wraparound to negative, got %v", sum.ToRevolutions())
	}
}

func TestWidenNarrowRoundTrip(t *testing.T) {
	t0 := FromRevolutions(0.125)
	if got := Widen(t0).Narrow(); got != t0 {
		t.Fatalf("widen/narrow round trip: got %v, want %v", got, t0)
	}
}

func TestFromTime(t *testing.T) {
	// one full period should land back at phase zero.
	got := FromTime(8, 3) // period = 1<<3 = 8
	if got != 0 {
		t.Fatalf("expected zero phase after one full period, got %v", got)
	}
	half := FromTime(4, 3)
	if math.Abs(half.ToRevolutions()-0.5) > 1e-6 && math.Abs(half.ToRevolutions()+0.5) > 1e-6 {
		t.Fatalf("expected half revolution, got %v", half.ToRevolutions())
	}
}

package stretch

import (
	"testing"

	"github.com/kupix/bungee-go/internal/phase"
)

func TestFrequencyUnisonIsZeroRotation(t *testing.T) {
	f := NewFrequency(1.0)
	ph := []phase.Type{0, phase.FromRevolutions(0.1), phase.FromRevolutions(0.37), phase.FromRevolutions(-0.2)}
	rotation := make([]phase.Type, len(ph))
	f.Rotate(ph, rotation, len(ph))
	for m, got := range rotation {
		if got != 0 {
			t.Fatalf("bin %d: got rotation %v, want 0 at unison speed", m, got)
		}
	}
}

func TestFrequencyRotateFirstBinAlwaysZero(t *testing.T) {
	f := NewFrequency(0.5)
	ph := []phase.Type{phase.FromRevolutions(0.3), phase.FromRevolutions(0.6)}
	rotation := make([]phase.Type, len(ph))
	f.Rotate(ph, rotation, len(ph))
	if rotation[0] != 0 {
		t.Fatalf("rotation[0] = %v, want 0", rotation[0])
	}
}

func TestFrequencyRotateZeroLengthIsNoOp(t *testing.T) {
	f := NewFrequency(1.0)
	var rotation []phase.Type
	f.Rotate(nil, rotation, 0)
}

func TestTimeOffsetNoReverseIsPlainDifference(t *testing.T) {
	tm := NewTime(false, false, 8, 256, 256)
	measured := phase.FromRevolutions(0.3)
	previous := phase.FromRevolutions(0.1)
	got := tm.Offset(measured, previous)
	want := measured - previous
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTimeOffsetReverseFlipsSign(t *testing.T) {
	measured := phase.FromRevolutions(0.2)
	previous := phase.FromRevolutions(0.05)

	forward := NewTime(false, false, 8, 256, 256).Offset(measured, previous)
	reversedPrev := NewTime(false, true, 8, 256, 256).Offset(measured, previous)

	if forward == reversedPrev {
		t.Fatalf("expected reversePrevious to change the result: forward=%v reversedPrev=%v", forward, reversedPrev)
	}
}

func TestTimeDeltaZeroAtBinZero(t *testing.T) {
	tm := NewTime(false, false, 8, 256, 256)
	got := tm.Delta(phase.FromRevolutions(0.3), phase.FromRevolutions(0.3), 0)
	if got != 0 {
		t.Fatalf("expected zero delta for equal phases at bin 0, got %v", got)
	}
}

func TestNewTimeZeroAnalysisHopHasZeroMultiplier(t *testing.T) {
	tm := NewTime(false, false, 8, 0, 256)
	if tm.multiplier != 0 {
		t.Fatalf("expected zero multiplier for zero analysis hop, got %v", tm.multiplier)
	}
}

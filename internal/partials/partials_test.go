package partials

import (
	"testing"
)

func TestEnumerateSinglePeak(t *testing.T) {
	energy := []float64{0, 1, 4, 1, 0, 0, 0, 0}
	got := Enumerate(energy, len(energy)-1)
	if len(got) == 0 {
		t.Fatal("expected at least one partial")
	}
	found := false
	for _, p := range got {
		if p.Peak == 2 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a partial peaking at bin 2, got %+v", got)
	}
}

func TestEnumerateTwoPeaksSplitAtValley(t *testing.T) {
	energy := []float64{0, 5, 0, 0, 5, 0, 0}
	got := Enumerate(energy, len(energy)-1)
	if len(got) < 2 {
		t.Fatalf("expected at least 2 partials for two separated peaks, got %+v", got)
	}
}

func TestEnumerateZeroValidBins(t *testing.T) {
	if got := Enumerate([]float64{1, 2, 3}, 0); got != nil {
		t.Fatalf("expected nil for validBinCount=0, got %+v", got)
	}
}

func TestEnergyMatchesPowerOfComplex(t *testing.T) {
	re := []float64{3, 0}
	im := []float64{4, 0}
	got := Energy(re, im)
	want := []float64{25, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSuppressTransientMergesIntoTallerRightValley(t *testing.T) {
	// Four partials peaking at bins 0, 2, 4, 6 (energies 50, 20, 15, 10).
	// Bin 2's partial is an interior, non-strongest, non-boundary spike
	// with no precedent in the previous grain; its right valley (bin 3,
	// energy 3) is taller than its left valley (bin 1, energy 1), so it
	// should merge into the following partial by simply being dropped.
	energy := []float64{50, 1, 20, 3, 15, 0, 10}
	previous := []float64{50, 1, 1, 3, 15, 0, 10}
	partials := Enumerate(energy, len(energy))
	if len(partials) != 4 {
		t.Fatalf("test setup: expected 4 partials, got %+v", partials)
	}

	after := SuppressTransient(partials, energy, previous, DefaultTransientThreshold)

	if len(after) != 3 {
		t.Fatalf("expected one partial merged away, got %+v", after)
	}
	for _, p := range after {
		if p.Peak == 2 {
			t.Fatalf("expected bin 2's partial to be dropped, got %+v", after)
		}
	}
	if after[0].End != 1 {
		t.Fatalf("expected the preceding partial's End untouched at 1, got %d", after[0].End)
	}
}

func TestSuppressTransientMergesIntoTallerLeftValley(t *testing.T) {
	// Same shape as above but with the valley depths swapped: bin 2's
	// left valley (bin 1, energy 3) is now taller than its right valley
	// (bin 3, energy 1), so it should merge backwards by extending the
	// preceding partial's End to absorb its range.
	energy := []float64{50, 3, 20, 1, 15, 0, 10}
	previous := []float64{50, 3, 1, 1, 15, 0, 10}
	partials := Enumerate(energy, len(energy))
	if len(partials) != 4 {
		t.Fatalf("test setup: expected 4 partials, got %+v", partials)
	}

	after := SuppressTransient(partials, energy, previous, DefaultTransientThreshold)

	if len(after) != 3 {
		t.Fatalf("expected one partial merged away, got %+v", after)
	}
	if after[0].End != 3 {
		t.Fatalf("expected the preceding partial's End extended to 3, got %d", after[0].End)
	}
}

func TestSuppressTransientNeverMergesTheStrongestPartial(t *testing.T) {
	// Three partials peaking at bins 0, 2, 4 (energies 5, 100, 5). Bin
	// 2's partial is strictly interior (not a boundary partial) and is
	// a spike with no precedent, but it is also the strongest partial
	// in the grain, which is always exempt.
	energy := []float64{5, 1, 100, 1, 5, 1}
	previous := []float64{5, 1, 1, 1, 5, 1}
	partials := Enumerate(energy, len(energy)-1)
	if len(partials) != 3 {
		t.Fatalf("test setup: expected 3 partials, got %+v", partials)
	}

	after := SuppressTransient(partials, energy, previous, DefaultTransientThreshold)
	if len(after) != len(partials) {
		t.Fatalf("expected the strongest partial to survive unmerged: before=%d after=%d", len(partials), len(after))
	}
}

func TestSuppressTransientNeverMergesBoundaryPartials(t *testing.T) {
	// Bin 0 is a spike with no precedent but is the first partial, so
	// it has no left neighbor to absorb it and must be left alone.
	energy := []float64{100, 1, 5}
	previous := []float64{1, 1, 5}
	partials := Enumerate(energy, len(energy)-1)

	after := SuppressTransient(partials, energy, previous, DefaultTransientThreshold)
	if len(after) != len(partials) {
		t.Fatalf("expected the boundary partial to survive unmerged: before=%d after=%d", len(partials), len(after))
	}
}

func TestSuppressTransientLeavesStableSpectrumAlone(t *testing.T) {
	energy := []float64{0, 5, 0, 0, 5, 0}
	previous := []float64{0, 5, 0, 0, 5, 0}
	partials := Enumerate(energy, len(energy)-1)

	after := SuppressTransient(partials, energy, previous, DefaultTransientThreshold)
	if len(after) != len(partials) {
		t.Fatalf("expected no merging for a stable spectrum: before=%d after=%d", len(partials), len(after))
	}
}

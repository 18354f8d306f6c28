// Package partials segments a grain's per-bin energy spectrum into
// spectral partials (contiguous ranges of bins dominated by one
// spectral peak) and suppresses partials whose sudden energy jump
// marks a transient rather than a sustained tone.
//
// Partial segmentation and phase-locked synthesis (see the stretch
// package) together implement identity-phase-locking: every bin
// within a partial inherits the phase-advance correction computed at
// the partial's peak bin, which keeps harmonically related bins in
// step with each other and avoids the "phasiness" a bin-independent
// phase vocoder produces.
package partials

import "github.com/cwbudde/algo-vecmath"

// Partial is a contiguous half-open range of bins assigned to one
// spectral peak, running from the previous partial's End (0 for the
// first partial) up to End. Peak is the bin index of the local energy
// maximum within that range and End is the bin index of the next local
// minimum (or the end of the usable spectrum).
type Partial struct {
	Peak int
	End  int
}

// Energy computes per-bin power from a half-spectrum (re, im same
// length), using [github.com/cwbudde/algo-vecmath]'s Power.
func Energy(re, im []float64) []float64 {
	out := make([]float64, len(re))
	vecmath.Power(out, re, im)
	return out
}

// Enumerate segments the first validBinCount bins of energy into
// partials by scanning for valleys (local energy minima) and taking
// each partial's peak as the loudest bin between one valley and the
// next. A sentinel value appended past validBinCount guarantees the
// final valley-to-valley run always closes without a special case for
// the end of the spectrum.
func Enumerate(energy []float64, validBinCount int) []Partial {
	if validBinCount <= 0 {
		return nil
	}

	n := min(validBinCount, len(energy))

	scan := make([]float64, n+1)
	copy(scan, energy[:n])
	scan[n] = -1 // sentinel: always a downward step, forces a final valley

	valleys := []int{0}
	rising := n > 1 && scan[1] >= scan[0]

	for i := 1; i < len(scan); i++ {
		switch {
		case rising && scan[i] < scan[i-1]:
			rising = false
		case !rising && scan[i] > scan[i-1]:
			valleys = append(valleys, i-1)
			rising = true
		}
	}
	valleys = append(valleys, n)

	partials := make([]Partial, 0, len(valleys)-1)
	for i := 0; i < len(valleys)-1; i++ {
		start, end := valleys[i], valleys[i+1]
		if start >= end {
			continue
		}
		peak := start
		for b := start + 1; b < end; b++ {
			if scan[b] > scan[peak] {
				peak = b
			}
		}
		partials = append(partials, Partial{Peak: peak, End: end})
	}

	return partials
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// DefaultTransientThreshold is the factor by which a partial's peak
// energy must exceed the same-bin energy of the previous grain before
// it is judged transient and merged into a neighboring partial, rather
// than phase-locked on its own terms.
const DefaultTransientThreshold = 1.5

// SuppressTransient merges interior partials whose peak bin's energy
// exceeds threshold times the same bin's energy in the previous grain
// into whichever neighbor has the taller separating valley, returning
// the result as a new slice (partials itself is not modified). The globally strongest partial and the first and last
// partials are never merged away: the strongest because it anchors the
// grain's own phase relationships, the boundary two because they have
// only one neighbor to merge into and no valley on their open side.
//
// This targets a genuine artifact: a transient (a drum hit, a
// plosive) creates a brand-new, isolated spectral peak that has no
// correspondence in the previous grain's phase. Phase-locking it on
// its own would propagate a spurious, uncorrelated phase forward;
// merging it into a neighbor across the shallower of its two valleys
// instead lets that neighbor's own, already-established phase
// correction dominate.
func SuppressTransient(partials []Partial, energy, previousEnergy []float64, threshold float64) []Partial {
	if threshold <= 0 {
		threshold = DefaultTransientThreshold
	}
	if len(partials) == 0 {
		return nil
	}

	strongest := 0
	for i, p := range partials {
		if peakEnergy(energy, p) > peakEnergy(energy, partials[strongest]) {
			strongest = i
		}
	}

	out := make([]Partial, 0, len(partials))

	for i, p := range partials {
		boundary := i == 0 || i == len(partials)-1
		if boundary || i == strongest || p.Peak >= len(previousEnergy) || p.Peak >= len(energy) ||
			energy[p.Peak] <= threshold*previousEnergy[p.Peak] {
			out = append(out, p)
			continue
		}

		// Transient: merge into whichever neighbor has the taller
		// separating valley.
		leftValley := valleyEnergy(energy, partials[i-1].End)
		rightValley := valleyEnergy(energy, p.End)
		if leftValley >= rightValley && len(out) > 0 {
			out[len(out)-1].End = p.End
		}
		// Otherwise the right valley is taller: p is simply dropped and
		// its range is absorbed by whichever partial comes next.
	}

	return out
}

func peakEnergy(energy []float64, p Partial) float64 {
	if p.Peak < 0 || p.Peak >= len(energy) {
		return 0
	}
	return energy[p.Peak]
}

func valleyEnergy(energy []float64, bin int) float64 {
	if bin < 0 || bin >= len(energy) {
		return 0
	}
	return energy[bin]
}

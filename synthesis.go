package bungee

import (
	"math"

	"github.com/kupix/bungee-go/internal/phase"
	"github.com/kupix/bungee-go/internal/stretch"
)

// synthesiseSpectrum applies the frequency (speed-driven bin rotation)
// and time (phase propagation) components to curr's spectrum, given the previous grain prev (nil
// for the very first grain). It mutates curr.rotation in place and
// multiplies curr.transformed by the resulting per-bin unit rotation
// (conjugated when reading the input in reverse), leaving
// curr.transformed ready for the inverse FFT. Invalid (flush) grains
// are left untouched — there is no spectrum to rotate.
//
// Frequency.Rotate first builds the continuous per-bin rotation array
// driven by curr's own measured phase gradient. When curr is
// continuous with prev, each partial's peak bin then receives a
// further correction (delta) derived from the measured phase advance
// at that bin versus prev, via the Time propagator; when discontinuous,
// the correction simply zeroes the peak's own rotation. Every bin
// within a partial inherits its peak's delta (identity-phase-locking),
// added onto the frequency-rotation array already in place there —
// not copied wholesale from the previous grain's rotation.
func synthesiseSpectrum(curr, prev *grain) {
	if !curr.valid() {
		return
	}

	freq := stretch.NewFrequency(curr.speed)
	freq.Rotate(curr.phase, curr.rotation, curr.validBinCount)

	delta := make([]phase.Type, len(curr.partialList))

	if curr.continuous && prev != nil && prev.valid() {
		log2SynthesisHop := curr.log2TransformLength - 3
		timeProp := stretch.NewTime(curr.reverse(), prev.reverse(), log2SynthesisHop, curr.hop, prev.hop)

		for i, p := range curr.partialList {
			peak := p.Peak
			offset := timeProp.Offset(curr.phase[peak], prev.phase[peak])
			stretched := timeProp.Delta(curr.phase[peak], prev.phase[peak], peak)
			delta[i] = prev.rotation[peak] - offset + stretched - curr.rotation[peak]
		}
	} else {
		for i, p := range curr.partialList {
			delta[i] = -curr.rotation[p.Peak]
		}
	}

	n := 0
	for i, p := range curr.partialList {
		for ; n < p.End; n++ {
			curr.rotation[n] += delta[i]
		}
	}

	// The Nyquist bin always takes the rotation of the bin below it,
	// whether or not validBinCount reached it.
	if bins := len(curr.rotation); bins > 1 {
		curr.rotation[bins-1] = curr.rotation[bins-2]
	}

	rotateAndInverseReady(curr, curr.rotation, curr.reverse())
}

// rotateAndInverseReady multiplies every channel's spectrum by the
// unit-magnitude complex number corresponding to each bin's rotation,
// conjugating it first when reverse is true (reading the input
// backwards flips the sign convention of phase advance).
func rotateAndInverseReady(g *grain, rotation []phase.Type, reverse bool) {
	unit := make([]complex128, len(rotation))
	for i, r := range rotation {
		theta := r.ToRadians()
		c := complex(math.Cos(theta), math.Sin(theta))
		if reverse {
			c = complex(real(c), -imag(c))
		}
		unit[i] = c
	}

	for _, spectrum := range g.transformed {
		for i := range spectrum {
			spectrum[i] *= unit[i]
		}
	}
}

package bungee

// ringSize is the number of grains kept alive at once: synthesis
// overlap-adds each grain's contribution across four synthesis hops,
// so output at any given hop depends on the four most recent grains.
const ringSize = 4

// grainRing holds the ringSize most recent grains, stored and addressed
// newest-first: index 0 is the grain most recently inserted by
// [grainRing.rotate], index ringSize-1 is the oldest still held.
type grainRing struct {
	slots [ringSize]*grain
}

// newGrainRing returns a ring with all ringSize slots empty (flushed).
func newGrainRing() *grainRing {
	r := &grainRing{}
	for i := range r.slots {
		r.slots[i] = newEmptyGrain()
	}
	return r
}

// rotate shifts every slot one position toward the oldest end,
// discarding the oldest grain, and inserts g as the newest.
func (r *grainRing) rotate(g *grain) {
	copy(r.slots[1:], r.slots[:ringSize-1])
	r.slots[0] = g
}

// at returns the grain at logical index i (0 == newest).
func (r *grainRing) at(i int) *grain {
	return r.slots[i]
}

// flushed reports whether every slot holds an empty grain (position NaN).
func (r *grainRing) flushed() bool {
	for _, g := range r.slots {
		if g.valid() {
			return false
		}
	}
	return true
}

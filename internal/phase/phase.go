// Package phase implements Bungee's fixed-point phase angle representation.
//
// A [Type] value represents an angle in the half-open interval
// [-π, π) using a 16-bit two's-complement integer, where the full
// int16 range maps to one full revolution. Arithmetic on Type values
// (addition, subtraction, negation) wraps automatically because Go
// defines integer overflow behavior for fixed-width signed integers,
// which is exactly the wraparound the original C++ implementation
// relied on as an (implementation-defined, but in practice universal)
// property of int16_t arithmetic.
//
// [Wide] is a 32-bit counterpart that carries 16 extra low-order bits
// of sub-LSB precision before truncating back down to a Type. The
// stretch package's propagator does its 32-bit arithmetic on plain
// int32 values rather than on Wide.
package phase

import (
	"fmt"
	"math"
)

// Type is a phase angle in [-π, π), quantized to 16 bits per revolution.
type Type int16

// Wide is a phase angle with extra low-order precision bits, used by
// intermediate computations that would otherwise lose precision if
// rounded to a Type at every step.
type Wide int32

// widenShift is the number of extra low-order bits Wide carries over Type.
const widenShift = 16

// ToRevolutions converts t to a fraction of a full revolution in [-0.5, 0.5).
func (t Type) ToRevolutions() float64 {
	return float64(t) / 65536.0
}

// ToRadians converts t to radians in [-π, π).
func (t Type) ToRadians() float64 {
	return t.ToRevolutions() * 2 * math.Pi
}

// String renders t in degrees, for debug printing.
func (t Type) String() string {
	return fmt.Sprintf("%.2f°", t.ToRevolutions()*360)
}

// FromRevolutions builds a Type from a fraction of a full revolution,
// wrapping any multiple of a whole revolution away first so the
// float-to-integer conversion always lands in range.
func FromRevolutions(r float64) Type {
	r -= math.Floor(r + 0.5)
	return Type(int32(math.Round(r * 65536.0)))
}

// FromRadians builds a Type from an angle in radians.
func FromRadians(radians float64) Type {
	return FromRevolutions(radians / (2 * math.Pi))
}

// FromTime builds a Type representing the phase advance accumulated
// over the given time (in samples) at one cycle per 1<<log2Period
// samples — i.e. the phase of a sinusoid of period 1<<log2Period
// samples, time samples after time zero.
func FromTime(time float64, log2Period int) Type {
	return FromRevolutions(time / float64(int64(1)<<uint(log2Period)))
}

// Widen promotes t to a Wide, preserving its value with zero low-order bits.
func Widen(t Type) Wide {
	return Wide(t) << widenShift
}

// Narrow truncates w back down to a Type, discarding the extra low-order bits.
func (w Wide) Narrow() Type {
	return Type(w >> widenShift)
}

// ToRadians converts w to radians.
func (w Wide) ToRadians() float64 {
	return float64(w) / float64(int64(1)<<(widenShift+16)) * 2 * math.Pi
}


package sweep

import "math/bits"

// SmartParameterLoopIndex maps a zero-based task index to a position in
// the unit interval. Consecutive indices walk a base-2 van der Corput
// sequence tier by tier: every tier halves the spacing of the previous one
// and visits the new midpoints in bit-reversed order, so any prefix of
// the sequence is an evenly spread sample of the interval.
//
//	0 -> 0, 1 -> 1, 2 -> 1/2, 3 -> 1/4, 4 -> 3/4, 5 -> 1/8, ...
//
// Non-positive indices return 0.
func SmartParameterLoopIndex(index int) float64 {
	num, den := Fraction(index)
	return float64(num) / float64(den)
}

// Fraction returns SmartParameterLoopIndex(index) as an exact rational
// num/den. den is always a power of two.
func Fraction(index int) (num, den uint64) {
	if index <= 0 {
		return 0, 1
	}
	n := uint64(index)
	b := Tier(index)
	den = uint64(1) << b

	var k uint64
	if n > 1 {
		k = n - den/2 - 1
	}
	num = 2*ReverseBits(k, b-1) + 1
	return num, den
}

// Tier returns ceil(log2(index)), the resolution level the index belongs
// to. Indices up to 1 are on tier 0.
func Tier(index int) int {
	if index <= 1 {
		return 0
	}
	return bits.Len64(uint64(index) - 1)
}

// ReverseBits reverses the low width bits of x. A non-positive width
// yields 0.
// Example: ReverseBits(0b110, 3) = 0b011.
func ReverseBits(x uint64, width int) uint64 {
	var result uint64
	for range width {
		result = (result << 1) | (x & 1)
		x >>= 1
	}
	return result
}

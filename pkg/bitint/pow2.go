// SPDX-License-Identifier: MIT
/*
Package bitint provides the power-of-two helpers used to size FFT frames.

All functions are allocation free and constant time, so they are safe to
call from the audio callback.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size. Sizes of zero or
// below return 1.
//
// Subtracting one first keeps exact powers unchanged: for 8, bits.Len(7) is 3
// and 1<<3 is 8, whereas bits.Len(8) would give 16.
func NextPowerOfTwo(size int) int {
	if size <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2. A power of 2 has
// a single set bit, so clearing the lowest set bit leaves zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Log2 returns the exponent of a power of 2, or -1 when n is not one.
func Log2(n int) int {
	if !IsPowerOfTwo(n) {
		return -1
	}
	return bits.TrailingZeros(uint(n))
}

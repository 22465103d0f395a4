// SPDX-License-Identifier: MIT
package bitint

import (
	"fmt"
	"testing"
)

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		n        int
		expected int
	}{
		{-10, 1},     // Negative number
		{0, 1},       // Zero
		{1, 1},       // One
		{8, 8},       // Already power of two
		{10, 16},     // Not power of two
		{1000, 1024}, // Analysis frame
		{3, 4},       // Small non-power
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d→%d", tt.n, tt.expected), func(t *testing.T) {
			result := NextPowerOfTwo(tt.n)
			if result != tt.expected {
				t.Errorf("NextPowerOfTwo(%d) = %d, expected %d", tt.n, result, tt.expected)
			}
		})
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	tests := []struct {
		n        int
		expected bool
	}{
		{-8, false},
		{0, false},
		{1, true},
		{2, true},
		{6, false},
		{1024, true},
		{1023, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.n), func(t *testing.T) {
			if got := IsPowerOfTwo(tt.n); got != tt.expected {
				t.Errorf("IsPowerOfTwo(%d) = %v, expected %v", tt.n, got, tt.expected)
			}
		})
	}
}

func TestLog2(t *testing.T) {
	for exp := 0; exp < 16; exp++ {
		if got := Log2(1 << exp); got != exp {
			t.Errorf("Log2(%d) = %d, expected %d", 1<<exp, got, exp)
		}
	}
	if got := Log2(12); got != -1 {
		t.Errorf("Log2(12) = %d, expected -1", got)
	}
}

func TestZeroAllocs(t *testing.T) {
	allocs := testing.AllocsPerRun(100, func() {
		_ = NextPowerOfTwo(1000)
		_ = IsPowerOfTwo(1024)
		_ = Log2(2048)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations, got %.1f", allocs)
	}
}

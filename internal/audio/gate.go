// SPDX-License-Identifier: MIT
package audio

import "math"

func (e *Engine) EnableGate() {
	e.gateEnabled = true
}

func (e *Engine) DisableGate() {
	e.gateEnabled = false
}

// SetGateThreshold adjusts the noise gate threshold.
// The value is in the range of 0.0-1.0 where 0=always open, 1=always closed.
func (e *Engine) SetGateThreshold(threshold float64) {
	threshold = max(0.0, min(threshold, 1.0))
	e.gateThreshold = int32(threshold * float64(math.MaxInt32))
}

// GetGateThreshold returns the current noise gate threshold as a float64.
func (e *Engine) GetGateThreshold() float64 {
	return float64(e.gateThreshold) / float64(math.MaxInt32)
}

// gateOpen reports whether the buffer should be analysed.
func (e *Engine) gateOpen(buffer []int32) bool {
	if !e.gateEnabled {
		return true
	}
	return peakAmplitude(buffer) > e.gateThreshold
}

// peakAmplitude returns the largest absolute sample without branching.
// math.MinInt32 has no positive counterpart and saturates to math.MaxInt32.
func peakAmplitude(buffer []int32) int32 {
	var peak int32
	for _, sample := range buffer {
		mask := sample >> 31
		amplitude := (sample ^ mask) - mask
		amplitude ^= amplitude >> 31
		diff := amplitude - peak
		peak += diff &^ (diff >> 31)
	}
	return peak
}

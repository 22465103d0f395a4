// SPDX-License-Identifier: MIT
package spectrum

// BinRange is the half-open slice [Min, Max) of raw bins the reducer reads.
type BinRange struct {
	Min   int
	Max   int
	Count int
}

// MapRange converts a frequency band into raw bin indices using floor
// division by the per-bin resolution sampleRate/fftSize. Frequencies outside
// the raw array are not rejected here; ProcessFrame catches short inputs.
func MapRange(fftSize int, sampleRate, minFrequency, maxFrequency float64) BinRange {
	resolution := sampleRate / float64(fftSize)

	r := BinRange{
		Min: int(minFrequency / resolution),
		Max: int(maxFrequency / resolution),
	}
	r.Count = r.Max - r.Min
	if r.Count < 0 {
		r.Count = 0
	}
	return r
}

// OutputSize returns the frame length for the range given the requested
// number of output bins. An empty range always yields an empty frame.
func (r BinRange) OutputSize(outputBins int) int {
	if r.Count == 0 {
		return 0
	}
	if outputBins > 0 {
		return outputBins
	}
	return r.Count
}

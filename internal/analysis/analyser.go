// SPDX-License-Identifier: MIT
/*
Package analysis turns blocks of PCM samples into the byte-scaled magnitude
spectrum consumed by the spectrum reducer.

Each frame is windowed, transformed with a real FFT, normalised by the frame
size, converted to decibels and quantised onto [0,255] between the
analyser's decibel bounds. The output holds fftSize/2 values, one per bin
from DC up to but excluding Nyquist.

Thread Safety:
- An Analyser is owned by a single goroutine (the audio callback)
- Process reuses internal buffers and performs no allocations
*/
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	applog "spectra/internal/log"
	"spectra/internal/spectrum"
	"spectra/pkg/bitint"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// int32 full scale, maps samples onto [-1.0, 1.0).
const normFactor = 1.0 / float64(0x80000000)

// Analyser holds the FFT plan and the pre-allocated frame buffers.
type Analyser struct {
	fft        *fourier.FFT
	fftSize    int
	sampleRate float64
	windowType WindowFunc

	minDecibels float64
	maxDecibels float64

	window    []float64
	input     []float64
	coeffs    []complex128
	magnitude []float64 // Linear magnitudes, fftSize/2.
	frame     []float64 // Byte-scaled output, fftSize/2.
}

// NewAnalyser creates an analyser for frames of fftSize samples. The decibel
// bounds start at the reducer defaults.
func NewAnalyser(fftSize int, sampleRate float64, windowType WindowFunc) (*Analyser, error) {
	if !bitint.IsPowerOfTwo(fftSize) || fftSize < 2 {
		return nil, fmt.Errorf("fft size must be a power of 2, got %d", fftSize)
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}

	bins := fftSize / 2
	applog.Debugf("Analysis: Initializing Analyser (Size: %d = 2^%d, SampleRate: %.1f Hz, Window: %v)", fftSize, bitint.Log2(fftSize), sampleRate, windowType)

	return &Analyser{
		fft:         fourier.NewFFT(fftSize),
		fftSize:     fftSize,
		sampleRate:  sampleRate,
		windowType:  windowType,
		minDecibels: spectrum.DefaultMinDecibels,
		maxDecibels: spectrum.DefaultMaxDecibels,
		window:      coefficients(fftSize, windowType),
		input:       make([]float64, fftSize),
		coeffs:      make([]complex128, fftSize/2+1),
		magnitude:   make([]float64, bins),
		frame:       make([]float64, bins),
	}, nil
}

// SetDecibelRange changes the bounds used for byte quantisation.
func (a *Analyser) SetDecibelRange(minDb, maxDb float64) error {
	if !(minDb < maxDb) {
		return fmt.Errorf("decibel range must satisfy min < max, got [%g, %g]", minDb, maxDb)
	}
	a.minDecibels = minDb
	a.maxDecibels = maxDb
	return nil
}

// Process analyses one block of mono samples. Shorter blocks are zero padded
// and longer ones truncated. The returned slice is owned by the analyser and
// is overwritten by the next call.
func (a *Analyser) Process(samples []int32) []float64 {
	for i := 0; i < a.fftSize; i++ {
		if i < len(samples) {
			a.input[i] = float64(samples[i]) * normFactor * a.window[i]
		} else {
			a.input[i] = 0
		}
	}

	a.fft.Coefficients(a.coeffs, a.input)

	for i := range a.magnitude {
		a.magnitude[i] = cmplx.Abs(a.coeffs[i])
	}
	floats.Scale(1/float64(a.fftSize), a.magnitude)

	span := a.maxDecibels - a.minDecibels
	for i, m := range a.magnitude {
		// log10(0) is -Inf, which clamps to zero below.
		db := 20 * math.Log10(m)
		v := math.Floor(255 * (db - a.minDecibels) / span)
		switch {
		case v < 0 || math.IsNaN(v):
			v = 0
		case v > 255:
			v = 255
		}
		a.frame[i] = v
	}

	return a.frame
}

// Magnitudes returns the linear magnitudes of the last frame. The slice is
// owned by the analyser.
func (a *Analyser) Magnitudes() []float64 {
	return a.magnitude
}

// PeakBin returns the bin with the largest magnitude in the last frame.
func (a *Analyser) PeakBin() int {
	return floats.MaxIdx(a.magnitude)
}

// FrequencyForBin returns the centre frequency (Hz) of a bin, or 0 outside
// the output range.
func (a *Analyser) FrequencyForBin(bin int) float64 {
	if bin < 0 || bin >= len(a.frame) {
		return 0
	}
	return float64(bin) * a.sampleRate / float64(a.fftSize)
}

// Bins returns the number of values produced per frame.
func (a *Analyser) Bins() int { return len(a.frame) }

func (a *Analyser) FFTSize() int        { return a.fftSize }
func (a *Analyser) SampleRate() float64 { return a.sampleRate }
func (a *Analyser) Window() WindowFunc  { return a.windowType }

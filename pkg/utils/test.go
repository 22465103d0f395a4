// SPDX-License-Identifier: MIT
//
// Package utils holds signal generators and fakes shared by the package
// tests.
package utils

import (
	"math"
	"sync"
)

// MockTransport records every frame it is sent instead of transmitting.
type MockTransport struct {
	mu     sync.Mutex
	frames [][]float64
	other  []any
	closed bool
}

// Send stores a copy of []float64 frames and keeps any other value as is.
func (m *MockTransport) Send(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame, ok := data.([]float64); ok {
		stored := make([]float64, len(frame))
		copy(stored, frame)
		m.frames = append(m.frames, stored)
		return nil
	}
	m.other = append(m.other, data)
	return nil
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Frames returns the frames received so far.
func (m *MockTransport) Frames() [][]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// LastFrame returns the most recent frame, or nil.
func (m *MockTransport) LastFrame() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.frames) == 0 {
		return nil
	}
	return m.frames[len(m.frames)-1]
}

// Closed reports whether Close was called.
func (m *MockTransport) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GenerateSineWave returns size int32 samples of a sine at 90% of full scale.
func GenerateSineWave(size int, sampleRate, frequency float64) []int32 {
	buffer := make([]int32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = int32(math.Sin(2*math.Pi*frequency*t) * math.MaxInt32 * 0.9)
	}
	return buffer
}

// GenerateComplexWave returns a 440Hz fundamental with two harmonics.
func GenerateComplexWave(size int, sampleRate float64) []int32 {
	buffer := make([]int32, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		buffer[i] = int32(signal * math.MaxInt32 * 0.9)
	}
	return buffer
}

// BinFrequency returns the frequency that lands exactly on an FFT bin.
func BinFrequency(bin, fftSize int, sampleRate float64) float64 {
	return float64(bin) * sampleRate / float64(fftSize)
}

// Interleave merges per-channel sample slices into one interleaved buffer.
// All channels must have the same length.
func Interleave(channels ...[]int32) []int32 {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	out := make([]int32, frames*len(channels))
	for i := 0; i < frames; i++ {
		for c, ch := range channels {
			out[i*len(channels)+c] = ch[i]
		}
	}
	return out
}

// RawSpectrum returns n byte-scaled values produced by fn.
func RawSpectrum(n int, fn func(i int) float64) []float64 {
	raw := make([]float64, n)
	for i := range raw {
		raw[i] = fn(i)
	}
	return raw
}

// FindPeakBin returns the index of the largest value in [startBin, endBin].
// The bounds are clamped to the slice.
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}
	if startBin < 0 {
		startBin = 0
	}
	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]
	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}
	return peakBin
}

// SPDX-License-Identifier: MIT
package utils

import (
	"math"
	"testing"
)

func TestMockTransport(t *testing.T) {
	tests := []struct {
		name      string
		inputData []float64
	}{
		{"Empty Data", []float64{}},
		{"Single Value", []float64{0.5}},
		{"Multiple Values", []float64{0.1, 0.2, 0.3, 0.4, 0.5}},
		{"Large Dataset", make([]float64, 1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mt := &MockTransport{}

			if err := mt.Send(tt.inputData); err != nil {
				t.Fatalf("MockTransport.Send() error = %v", err)
			}

			last := mt.LastFrame()
			if len(last) != len(tt.inputData) {
				t.Fatalf("stored length = %d, want %d", len(last), len(tt.inputData))
			}

			if len(tt.inputData) > 0 {
				original := tt.inputData[0]
				tt.inputData[0] = 999.999
				if last[0] == 999.999 {
					t.Errorf("MockTransport.Send() stored reference instead of copy")
				}
				tt.inputData[0] = original
			}
		})
	}
}

func TestMockTransport_OtherValuesAndClose(t *testing.T) {
	mt := &MockTransport{}
	_ = mt.Send("hello")

	if len(mt.Frames()) != 0 || mt.LastFrame() != nil {
		t.Errorf("non-frame value recorded as a frame")
	}
	if mt.Closed() {
		t.Fatal("Closed() = true before Close")
	}
	_ = mt.Close()
	if !mt.Closed() {
		t.Error("Closed() = false after Close")
	}
}

func TestGenerateSineWave(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		sampleRate float64
		frequency  float64
	}{
		{"A4 Note", 1024, 44100, 440.0},
		{"Middle C", 1024, 44100, 261.63},
		{"High Sample Rate", 1024, 192000, 440.0},
		{"Low Sample Rate", 1024, 8000, 440.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GenerateSineWave(tt.size, tt.sampleRate, tt.frequency)
			if len(result) != tt.size {
				t.Fatalf("buffer size = %d, want %d", len(result), tt.size)
			}

			samplesPerCycle := tt.sampleRate / tt.frequency
			if samplesPerCycle > 2 && float64(tt.size) > samplesPerCycle {
				crossCount := 0
				for i := 1; i < tt.size; i++ {
					if (result[i-1] < 0 && result[i] >= 0) || (result[i-1] >= 0 && result[i] < 0) {
						crossCount++
					}
				}

				expected := float64(tt.size) / (samplesPerCycle / 2)
				tolerance := 0.2 * expected
				if math.Abs(float64(crossCount)-expected) > tolerance {
					t.Errorf("zero crossings = %d, expected approximately %.1f±%.1f", crossCount, expected, tolerance)
				}
			}
		})
	}
}

func TestGenerateComplexWave(t *testing.T) {
	result := GenerateComplexWave(256, 8000)
	if len(result) != 256 {
		t.Fatalf("buffer size = %d, want 256", len(result))
	}
	for _, v := range result {
		if v != 0 {
			return
		}
	}
	t.Error("GenerateComplexWave() produced all zeros")
}

func TestInterleave(t *testing.T) {
	left := []int32{1, 2, 3}
	right := []int32{-1, -2, -3}

	got := Interleave(left, right)
	want := []int32{1, -1, 2, -2, 3, -3}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Interleave()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if Interleave() != nil {
		t.Error("Interleave() with no channels should be nil")
	}
}

func TestBinFrequency(t *testing.T) {
	if got := BinFrequency(40, 1024, 44100); math.Abs(got-1722.65625) > 1e-9 {
		t.Errorf("BinFrequency() = %v, want 1722.65625", got)
	}
}

func TestFindPeakBin(t *testing.T) {
	const size = 1024
	hill := RawSpectrum(size, func(i int) float64 {
		return math.Exp(-0.01 * math.Pow(float64(i-size/4), 2))
	})

	tests := []struct {
		name     string
		mags     []float64
		start    int
		end      int
		expected int
	}{
		{"Full Range", hill, 0, size - 1, size / 4},
		{"Partial Range Start", hill, size / 8, size - 1, size / 4},
		{"Negative Start", hill, -10, size - 1, size / 4},
		{"Out of Range End", hill, 0, size * 2, size / 4},
		{"Range Before Peak", hill, 0, size / 8, size / 8},
		{"Empty Slice", []float64{}, 0, 10, 0},
		{"Single Value", []float64{1.0}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindPeakBin(tt.mags, tt.start, tt.end); got != tt.expected {
				t.Errorf("FindPeakBin() = %d, want %d", got, tt.expected)
			}
		})
	}

	allocs := testing.AllocsPerRun(100, func() {
		FindPeakBin(hill, 0, len(hill)-1)
	})
	if allocs > 0 {
		t.Errorf("FindPeakBin allocated memory: got %.1f allocs, want 0", allocs)
	}
}

func BenchmarkGenerateSineWave(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GenerateSineWave(1024, 44100, 440)
	}
}

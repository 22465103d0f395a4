// SPDX-License-Identifier: MIT
package analysis

import (
	"testing"

	"spectra/pkg/utils"
)

const (
	testFFTSize    = 1024
	testSampleRate = 44100
)

func newTestAnalyser(t *testing.T) *Analyser {
	t.Helper()
	a, err := NewAnalyser(testFFTSize, testSampleRate, Hann)
	if err != nil {
		t.Fatalf("NewAnalyser() error = %v", err)
	}
	return a
}

func TestNewAnalyser_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		sampleRate float64
	}{
		{"Not power of two", 1000, testSampleRate},
		{"Zero size", 0, testSampleRate},
		{"One sample", 1, testSampleRate},
		{"Zero sample rate", testFFTSize, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAnalyser(tt.size, tt.sampleRate, Hann); err == nil {
				t.Errorf("NewAnalyser(%d, %g) expected error", tt.size, tt.sampleRate)
			}
		})
	}
}

func TestProcess_PureTonePeaksAtBin(t *testing.T) {
	a := newTestAnalyser(t)
	const bin = 40
	tone := utils.GenerateSineWave(testFFTSize, testSampleRate, utils.BinFrequency(bin, testFFTSize, testSampleRate))

	frame := a.Process(tone)

	if len(frame) != testFFTSize/2 {
		t.Fatalf("len(frame) = %d, want %d", len(frame), testFFTSize/2)
	}
	if got := a.PeakBin(); got != bin {
		t.Errorf("PeakBin() = %d, want %d", got, bin)
	}
	if got := utils.FindPeakBin(frame, 0, len(frame)-1); got != bin {
		t.Errorf("byte frame peak = %d, want %d", got, bin)
	}
	if frame[bin] < 200 {
		t.Errorf("frame[%d] = %v, want a loud byte value", bin, frame[bin])
	}
	for i, v := range frame {
		if v < 0 || v > 255 || v != float64(int(v)) {
			t.Fatalf("frame[%d] = %v, want an integer in [0,255]", i, v)
		}
	}
}

func TestProcess_SilenceIsZero(t *testing.T) {
	a := newTestAnalyser(t)
	frame := a.Process(make([]int32, testFFTSize))

	for i, v := range frame {
		if v != 0 {
			t.Fatalf("frame[%d] = %v, want 0 for silence", i, v)
		}
	}
}

func TestProcess_ShortBlockIsPadded(t *testing.T) {
	a := newTestAnalyser(t)
	tone := utils.GenerateSineWave(testFFTSize/2, testSampleRate, 5000)

	frame := a.Process(tone)
	if len(frame) != testFFTSize/2 {
		t.Errorf("len(frame) = %d, want %d", len(frame), testFFTSize/2)
	}
}

func TestSetDecibelRange(t *testing.T) {
	a := newTestAnalyser(t)
	tone := utils.GenerateSineWave(testFFTSize, testSampleRate, utils.BinFrequency(64, testFFTSize, testSampleRate))

	wide := a.Process(tone)[64]
	if err := a.SetDecibelRange(-30, -20); err != nil {
		t.Fatalf("SetDecibelRange() error = %v", err)
	}
	narrow := a.Process(tone)[64]
	if narrow != 255 || wide >= narrow {
		t.Errorf("peak byte wide=%v narrow=%v, want the narrow range to saturate", wide, narrow)
	}

	if err := a.SetDecibelRange(0, 0); err == nil {
		t.Error("SetDecibelRange(0, 0) expected error")
	}
}

func TestFrequencyForBin(t *testing.T) {
	a := newTestAnalyser(t)

	tests := []struct {
		bin  int
		want float64
	}{
		{0, 0},
		{1, testSampleRate / float64(testFFTSize)},
		{256, 11025},
		{-1, 0},
		{testFFTSize / 2, 0},
	}
	for _, tt := range tests {
		if got := a.FrequencyForBin(tt.bin); got != tt.want {
			t.Errorf("FrequencyForBin(%d) = %v, want %v", tt.bin, got, tt.want)
		}
	}
}

func TestParseWindowFunc(t *testing.T) {
	tests := []struct {
		name    string
		want    WindowFunc
		wantErr bool
	}{
		{"Hann", Hann, false},
		{"hanning", Hann, false},
		{"BLACKMAN", Blackman, false},
		{"BlackmanNuttall", BlackmanNuttall, false},
		{"hamming", Hamming, false},
		{"", Hann, false},
		{"triangle", Hann, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWindowFunc(tt.name)
			if got != tt.want || (err != nil) != tt.wantErr {
				t.Errorf("ParseWindowFunc(%q) = %v, %v; want %v, err %v", tt.name, got, err, tt.want, tt.wantErr)
			}
		})
	}
}

func TestWindowString(t *testing.T) {
	if Hann.String() != "Hann" || Nuttall.String() != "Nuttall" {
		t.Errorf("unexpected names %q %q", Hann, Nuttall)
	}
	if WindowFunc(99).String() != "WindowFunc(99)" {
		t.Errorf("unknown window name = %q", WindowFunc(99))
	}
}

func TestProcessHotPath(t *testing.T) {
	a := newTestAnalyser(t)
	input := utils.GenerateComplexWave(testFFTSize, testSampleRate)

	// Warm-up call.
	a.Process(input)
	allocs := testing.AllocsPerRun(100, func() {
		a.Process(input)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in Process hot path, got %.1f", allocs)
	}
}

func BenchmarkProcess(b *testing.B) {
	a, err := NewAnalyser(testFFTSize, testSampleRate, Hann)
	if err != nil {
		b.Fatal(err)
	}
	input := utils.GenerateComplexWave(testFFTSize, testSampleRate)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Process(input)
	}
}

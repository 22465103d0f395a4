// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"strconv"
	"testing"

	"spectra/internal/config"
	"spectra/pkg/utils"
)

const (
	testSampleRate = 44100
	testFrameSize  = 1024

	lowThreshold  = int32(math.MaxInt32 / 1000)
	highThreshold = int32(math.MaxInt32 / 2)
)

var (
	testBuffer  = utils.GenerateComplexWave(testFrameSize, testSampleRate)
	quietBuffer = scaled(utils.GenerateSineWave(testFrameSize, testSampleRate, 440), 0.001)
	loudBuffer  = utils.GenerateSineWave(testFrameSize, testSampleRate, 440)
)

func scaled(buffer []int32, gain float64) []int32 {
	out := make([]int32, len(buffer))
	for i, v := range buffer {
		out[i] = int32(float64(v) * gain)
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func absFloat(x float64) float64 {
	return math.Abs(x)
}

func testConfig(channels int) *config.Config {
	cfg := config.NewConfig()
	cfg.Audio.SampleRate = testSampleRate
	cfg.Audio.FramesPerBuffer = testFrameSize
	cfg.Audio.InputChannels = channels
	cfg.Spectrum.MaxFrequency = 0
	return cfg
}

func newPipelineEngine(t testing.TB, cfg *config.Config, tr *utils.MockTransport) *Engine {
	t.Helper()
	var engine *Engine
	var err error
	if tr == nil {
		engine, err = newEngine(cfg, nil)
	} else {
		engine, err = newEngine(cfg, tr)
	}
	if err != nil {
		t.Fatalf("newEngine() error = %v", err)
	}
	return engine
}

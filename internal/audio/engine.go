// SPDX-License-Identifier: MIT
/*
Package audio captures PCM input with PortAudio and drives the spectrum
pipeline once per buffer:

	capture -> downmix -> noise gate -> analyser -> reducer -> transport

Thread Safety:
- The PortAudio callback runs the pipeline on a locked OS thread
- Reconfiguration and frame processing are serialised by a mutex
- The latest reduced frame is published under a separate RWMutex so readers
  never contend with reconfiguration
- Recording state uses atomic operations
*/
package audio

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"spectra/internal/analysis"
	"spectra/internal/config"
	applog "spectra/internal/log"
	"spectra/internal/spectrum"
	"spectra/internal/transport"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

// ErrPanelDisabled is returned once a pipeline error has switched the
// spectrum off for the rest of the session.
var ErrPanelDisabled = errors.New("spectrum panel disabled")

type Engine struct {
	// Core configuration.
	config *config.Config

	// Audio input handling.
	inputBuffer  []int32
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	// Spectrum pipeline, guarded by mu.
	mu        sync.Mutex
	analyser  *analysis.Analyser
	reducer   *spectrum.Reducer
	monoInput []int32
	silence   []int32
	disabled  atomic.Bool
	cause     error

	// Latest reduced frame for pull-based consumers.
	frameMu sync.RWMutex
	latest  []float64
	frames  atomic.Uint64

	transport transport.Transport

	// Noise gate for signal conditioning.
	gateEnabled   bool
	gateThreshold int32 // Absolute amplitude threshold (0-2147483647)

	// Recording state and buffers.
	isRecording int32 // Atomic flag for thread-safe state
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *audio.IntBuffer // Reusable buffer for format conversion
	sampleShift uint             // Right shift from int32 to the file bit depth
}

// NewEngine resolves the configured input device and builds the pipeline.
// PortAudio must already be initialised.
func NewEngine(cfg *config.Config, tr transport.Transport) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, err
	}

	engine, err := newEngine(cfg, tr)
	if err != nil {
		return nil, err
	}

	engine.inputDevice = inputDevice
	if cfg.Audio.LowLatency {
		engine.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		engine.inputLatency = inputDevice.DefaultHighInputLatency
	}

	applog.Infof("Engine: Input device %q, latency %s", inputDevice.Name, engine.inputLatency)
	return engine, nil
}

// newEngine builds everything except the PortAudio device.
func newEngine(cfg *config.Config, tr transport.Transport) (*Engine, error) {
	windowType, err := analysis.ParseWindowFunc(cfg.Audio.FFTWindow)
	if err != nil {
		return nil, err
	}

	analyser, err := analysis.NewAnalyser(cfg.Audio.FramesPerBuffer, cfg.Audio.SampleRate, windowType)
	if err != nil {
		return nil, fmt.Errorf("analyser: %w", err)
	}

	reducer, err := spectrum.New(cfg.ReducerConfig())
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:      cfg,
		inputBuffer: make([]int32, cfg.Audio.FramesPerBuffer*cfg.Audio.InputChannels),
		analyser:    analyser,
		reducer:     reducer,
		monoInput:   make([]int32, cfg.Audio.FramesPerBuffer),
		silence:     make([]int32, cfg.Audio.FramesPerBuffer),
		latest:      make([]float64, 0, reducer.OutputSize()),
		transport:   tr,
		gateEnabled: cfg.Audio.GateThreshold > 0,
	}
	engine.SetGateThreshold(cfg.Audio.GateThreshold)

	return engine, nil
}

func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.config.Audio.InputChannels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: e.config.Audio.FramesPerBuffer,
		SampleRate:      e.config.Audio.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		e.inputStream = nil
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	return nil
}

func (e *Engine) StopInputStream() error {
	if e.inputStream != nil {
		if err := e.inputStream.Stop(); err != nil {
			return err
		}

		if err := e.inputStream.Close(); err != nil {
			return err
		}

		e.inputStream = nil
	}

	return nil
}

// processInputStream is the PortAudio callback. It only touches
// pre-allocated buffers apart from the frame handed to the transport.
func (e *Engine) processInputStream(in []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	n := copy(e.inputBuffer, in)
	e.processBuffer(e.inputBuffer[:n])
	e.record(e.inputBuffer[:n])
}

// processBuffer runs one interleaved buffer through the spectrum pipeline.
// A closed gate feeds silence so smoothing decays instead of freezing.
func (e *Engine) processBuffer(buffer []int32) {
	if e.disabled.Load() {
		return
	}

	mono := e.downmix(buffer)
	if !e.gateOpen(mono) {
		mono = e.silence
	}

	e.mu.Lock()
	raw := e.analyser.Process(mono)
	out, err := e.reducer.ProcessFrame(raw)
	if err != nil {
		e.mu.Unlock()
		e.disable(err)
		return
	}

	e.frameMu.Lock()
	e.latest = append(e.latest[:0], out...)
	e.frameMu.Unlock()

	var frame []float64
	if e.transport != nil {
		frame = make([]float64, len(out))
		copy(frame, out)
	}
	e.mu.Unlock()

	e.frames.Add(1)
	if frame != nil {
		if err := e.transport.Send(frame); err != nil {
			applog.Warnf("Engine: Transport error: %v", err)
		}
	}
}

// downmix averages interleaved channels into the mono buffer. Mono input
// is used in place.
func (e *Engine) downmix(buffer []int32) []int32 {
	channels := e.config.Audio.InputChannels
	if channels <= 1 {
		return buffer
	}

	frames := len(buffer) / channels
	for i := range e.monoInput {
		if i >= frames {
			e.monoInput[i] = 0
			continue
		}
		var sum int64
		for c := range channels {
			sum += int64(buffer[i*channels+c])
		}
		e.monoInput[i] = int32(sum / int64(channels))
	}
	return e.monoInput
}

// disable logs the first pipeline error and stops producing frames.
func (e *Engine) disable(err error) {
	if !e.disabled.CompareAndSwap(false, true) {
		return
	}

	e.mu.Lock()
	e.cause = err
	e.mu.Unlock()

	var indexErr *spectrum.IndexError
	switch {
	case errors.As(err, &indexErr):
		applog.Errorf("Engine: Raw frame too short (%v), disabling spectrum panel", err)
	case errors.Is(err, spectrum.ErrConfiguration):
		applog.Errorf("Engine: Invalid spectrum configuration (%v), disabling spectrum panel", err)
	default:
		applog.Errorf("Engine: %v, disabling spectrum panel", err)
	}
}

// Enabled reports whether the spectrum panel is still producing frames.
func (e *Engine) Enabled() bool {
	return !e.disabled.Load()
}

// Err returns the error that disabled the panel, or nil.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cause
}

// Reconfigure applies a partial reducer update between frames. An invalid
// update disables the panel and is returned.
func (e *Engine) Reconfigure(opts ...spectrum.Option) (bool, error) {
	return e.update(func(cfg *spectrum.Config) {
		for _, opt := range opts {
			opt(cfg)
		}
	})
}

// ApplySpectrum replaces the reducer configuration between frames. The
// analyser is rebuilt when the FFT size or sample rate changes.
func (e *Engine) ApplySpectrum(cfg spectrum.Config) (bool, error) {
	return e.update(func(next *spectrum.Config) { *next = cfg })
}

// update derives the next configuration from the one in force and commits
// it under a single hold of e.mu. Nothing is committed unless both the
// analyser and the reducer accept it.
func (e *Engine) update(edit func(*spectrum.Config)) (bool, error) {
	if e.disabled.Load() {
		return false, ErrPanelDisabled
	}

	e.mu.Lock()
	prev := e.reducer.Config()
	next := prev
	edit(&next)

	analyser := e.analyser
	var err error
	if next.FFTSize != prev.FFTSize || next.SampleRate != prev.SampleRate {
		analyser, err = analysis.NewAnalyser(next.FFTSize, next.SampleRate, e.analyser.Window())
	}
	changed := false
	if err == nil {
		changed, err = e.reducer.Replace(next)
	}
	if err == nil {
		e.analyser = analyser
	}
	e.mu.Unlock()

	if err != nil {
		e.disable(err)
		return false, err
	}
	if changed {
		applog.Infof("Engine: Spectrum reconfigured, %d output bins", e.OutputSize())
	}
	return changed, nil
}

// SpectrumConfig returns the reducer configuration in force.
func (e *Engine) SpectrumConfig() spectrum.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reducer.Config()
}

// OutputSize returns the current reduced frame length.
func (e *Engine) OutputSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reducer.OutputSize()
}

// LatestFrame implements transport.FrameProvider.
func (e *Engine) LatestFrame(dst []float64) []float64 {
	e.frameMu.RLock()
	defer e.frameMu.RUnlock()
	return append(dst[:0], e.latest...)
}

// Snapshot returns a copy of the latest reduced frame.
func (e *Engine) Snapshot() []float64 {
	return e.LatestFrame(nil)
}

// Frames returns the number of frames produced so far.
func (e *Engine) Frames() uint64 {
	return e.frames.Load()
}

var _ transport.FrameProvider = (*Engine)(nil)

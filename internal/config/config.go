// SPDX-License-Identifier: MIT
package config

import (
	"time"

	"spectra/internal/spectrum"
)

// Boundaries and defaults for the capture side and the spectrum reducer.
const (
	DefaultDeviceID        = MinDeviceID // System default device
	DefaultChannels        = 1           // Mono audio
	DefaultSampleRate      = 44100       // CD-quality audio
	DefaultFramesPerBuffer = 1024        // One analysis frame per buffer
	DefaultFFTWindow       = "Hann"      // Analysis window
	DefaultFormat          = "wav"       // WAV file format for recordings
	DefaultBitDepth        = 32          // Raw int32 capture
	DefaultLogLevel        = "info"

	DefaultWebSocketAddress = ":8080"
	DefaultUDPTarget        = "127.0.0.1:9090"
	DefaultUDPSendInterval  = 16 * time.Millisecond // ~60Hz

	// Hardware and processing limits
	MinDeviceID     = -1     // -1 represents system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MaxChannels     = 2
	MaxBufferFrames = 8192 // Maximum frames per buffer (power of 2)
)

// Config is the application configuration, loaded from YAML and then
// overridden by environment variables and command line flags.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Enable debug logging.
	LogLevel  string          `yaml:"log_level"` // debug, info, warn, error.
	Command   string          `yaml:"-"`         // One-off command from the CLI (e.g. "list").
	Source    string          `yaml:"-"`         // File the config was loaded from, if any.
	Audio     AudioConfig     `yaml:"audio"`     // Capture settings.
	Spectrum  SpectrumConfig  `yaml:"spectrum"`  // Reducer settings.
	Recording RecordingConfig `yaml:"recording"` // Raw input recording.
	Transport TransportConfig `yaml:"transport"` // Where reduced frames go.
}

// AudioConfig holds settings related to audio input and analysis.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index (-1 for default).
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz.
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames per callback, also the FFT size.
	LowLatency      bool    `yaml:"low_latency"`       // Request the device's low latency setting.
	InputChannels   int     `yaml:"input_channels"`    // 1 for mono, 2 for stereo.
	FFTWindow       string  `yaml:"fft_window"`        // Window function name (e.g. "Hann").
	GateThreshold   float64 `yaml:"gate_threshold"`    // Noise gate in [0,1], 0 disables.
}

// SpectrumConfig mirrors spectrum.Config. FFT size and sample rate come from
// the audio section.
type SpectrumConfig struct {
	Smoothing    float64 `yaml:"smoothing"`     // Smoothing time constant in [0,1).
	MinDecibels  float64 `yaml:"min_decibels"`  // Lower bound for normalisation.
	MaxDecibels  float64 `yaml:"max_decibels"`  // Upper bound (0 dB is full scale).
	MinFrequency float64 `yaml:"min_frequency"` // Hz.
	MaxFrequency float64 `yaml:"max_frequency"` // Hz, 0 means the Nyquist frequency.
	Normalize    bool    `yaml:"normalize"`     // Scale in linear magnitude.
	Bins         int     `yaml:"bins"`          // Output bins, 0 for the natural bin range.
}

// RecordingConfig holds settings related to audio recording functionality.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`     // Record raw input alongside analysis.
	OutputFile string `yaml:"output_file"` // Target path, generated when empty.
	Format     string `yaml:"format"`      // Only "wav" is supported.
	BitDepth   int    `yaml:"bit_depth"`   // 16, 24 or 32.
}

// TransportConfig holds settings related to sending reduced frames.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`  // Serve frames as JSON over WebSocket.
	WebSocketAddress string        `yaml:"websocket_address"`  // Listen address, e.g. ":8080".
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Publish binary frames over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // host:port for UDP packets.
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Interval between UDP packets.
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			InputChannels:   DefaultChannels,
			FFTWindow:       DefaultFFTWindow,
			GateThreshold:   0.001,
		},
		Spectrum: SpectrumConfig{
			Smoothing:   spectrum.DefaultSmoothingTimeConstant,
			MinDecibels: spectrum.DefaultMinDecibels,
			MaxDecibels: spectrum.DefaultMaxDecibels,
		},
		Recording: RecordingConfig{
			Format:   DefaultFormat,
			BitDepth: DefaultBitDepth,
		},
		Transport: TransportConfig{
			WebSocketEnabled: true,
			WebSocketAddress: DefaultWebSocketAddress,
			UDPTargetAddress: DefaultUDPTarget,
			UDPSendInterval:  DefaultUDPSendInterval,
		},
	}
}

// ReducerConfig builds the reducer snapshot from the audio and spectrum
// sections.
func (c *Config) ReducerConfig() spectrum.Config {
	maxFrequency := c.Spectrum.MaxFrequency
	if maxFrequency == 0 {
		maxFrequency = c.Audio.SampleRate / 2
	}

	return spectrum.Config{
		FFTSize:               c.Audio.FramesPerBuffer,
		SampleRate:            c.Audio.SampleRate,
		SmoothingTimeConstant: c.Spectrum.Smoothing,
		MinDecibels:           c.Spectrum.MinDecibels,
		MaxDecibels:           c.Spectrum.MaxDecibels,
		MinFrequency:          c.Spectrum.MinFrequency,
		MaxFrequency:          maxFrequency,
		Normalize:             c.Spectrum.Normalize,
		OutputBins:            c.Spectrum.Bins,
	}
}

// SPDX-License-Identifier: MIT
package spectrum

import (
	"errors"
	"fmt"
	"math"
)

// Defaults mirror a typical browser analysis node running at CD quality.
const (
	DefaultFFTSize               = 1024
	DefaultSampleRate            = 44100
	DefaultSmoothingTimeConstant = 0.5
	DefaultMinDecibels           = -100
	DefaultMaxDecibels           = 0
)

var (
	// ErrConfiguration is wrapped by every *ConfigError.
	ErrConfiguration = errors.New("spectrum: invalid configuration")
	// ErrIndex is wrapped by every *IndexError.
	ErrIndex = errors.New("spectrum: raw frame shorter than bin range")
)

// ConfigError reports a configuration field that failed validation.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("spectrum: invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// IndexError is returned by ProcessFrame when the raw array cannot be
// indexed up to the configured maximum bin.
type IndexError struct {
	Need int // minimum raw length (maxBin)
	Have int // supplied raw length
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("spectrum: raw frame has %d bins, bin range needs %d", e.Have, e.Need)
}

func (e *IndexError) Unwrap() error { return ErrIndex }

// Config is an immutable snapshot of the reducer parameters.
type Config struct {
	FFTSize               int     // width of the underlying raw frequency array
	SampleRate            float64 // source sample rate in Hz
	SmoothingTimeConstant float64 // [0,1), 0 disables smoothing
	MinDecibels           float64
	MaxDecibels           float64
	MinFrequency          float64 // Hz
	MaxFrequency          float64 // Hz, at most SampleRate/2
	Normalize             bool    // scale in linear magnitude rather than decibels
	OutputBins            int     // 0 keeps the natural bin range
}

// DefaultConfig returns the full-band configuration with the package defaults.
func DefaultConfig() Config {
	return Config{
		FFTSize:               DefaultFFTSize,
		SampleRate:            DefaultSampleRate,
		SmoothingTimeConstant: DefaultSmoothingTimeConstant,
		MinDecibels:           DefaultMinDecibels,
		MaxDecibels:           DefaultMaxDecibels,
		MinFrequency:          0,
		MaxFrequency:          DefaultSampleRate / 2,
	}
}

// Validate reports the first field that violates its constraint. Values are
// never clamped.
func (c Config) Validate() error {
	switch {
	case c.FFTSize <= 0:
		return &ConfigError{"fft size", fmt.Sprintf("must be positive, got %d", c.FFTSize)}
	case !(c.SampleRate > 0) || math.IsInf(c.SampleRate, 0):
		return &ConfigError{"sample rate", fmt.Sprintf("must be positive, got %g", c.SampleRate)}
	case !(c.SmoothingTimeConstant >= 0 && c.SmoothingTimeConstant < 1):
		return &ConfigError{"smoothing time constant", fmt.Sprintf("must be in [0,1), got %g", c.SmoothingTimeConstant)}
	case !(c.MinDecibels < c.MaxDecibels):
		return &ConfigError{"decibel range", fmt.Sprintf("min %g must be below max %g", c.MinDecibels, c.MaxDecibels)}
	case !(c.MinFrequency >= 0):
		return &ConfigError{"min frequency", fmt.Sprintf("must not be negative, got %g", c.MinFrequency)}
	case !(c.MinFrequency <= c.MaxFrequency):
		return &ConfigError{"frequency range", fmt.Sprintf("min %g exceeds max %g", c.MinFrequency, c.MaxFrequency)}
	case c.MaxFrequency > c.SampleRate/2:
		return &ConfigError{"max frequency", fmt.Sprintf("%g exceeds nyquist %g", c.MaxFrequency, c.SampleRate/2)}
	case c.OutputBins < 0:
		return &ConfigError{"output bins", fmt.Sprintf("must not be negative, got %d", c.OutputBins)}
	}
	return nil
}

// affectsRange reports whether moving from c to next changes the bin range or
// the output size.
func (c Config) affectsRange(next Config) bool {
	return c.FFTSize != next.FFTSize ||
		c.SampleRate != next.SampleRate ||
		c.MinFrequency != next.MinFrequency ||
		c.MaxFrequency != next.MaxFrequency ||
		c.OutputBins != next.OutputBins
}

// Option mutates a copy of the current configuration during Reconfigure.
type Option func(*Config)

func WithFFTSize(n int) Option { return func(c *Config) { c.FFTSize = n } }

func WithSampleRate(hz float64) Option { return func(c *Config) { c.SampleRate = hz } }

func WithSmoothing(alpha float64) Option {
	return func(c *Config) { c.SmoothingTimeConstant = alpha }
}

func WithDecibels(min, max float64) Option {
	return func(c *Config) { c.MinDecibels, c.MaxDecibels = min, max }
}

func WithFrequencyRange(min, max float64) Option {
	return func(c *Config) { c.MinFrequency, c.MaxFrequency = min, max }
}

func WithNormalize(on bool) Option { return func(c *Config) { c.Normalize = on } }

func WithOutputBins(n int) Option { return func(c *Config) { c.OutputBins = n } }

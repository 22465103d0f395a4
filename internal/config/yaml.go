// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	applog "spectra/internal/log"
	"spectra/pkg/bitint"

	"gopkg.in/yaml.v3"
)

// candidates are searched in order when LoadConfig is given no path.
var candidates = []string{
	"spectra.yaml",
	"config.yaml",
}

// LoadConfig loads configuration from a YAML file specified by path. If path
// is empty, it searches the default candidates and falls back to built-in
// defaults when none exists. Environment overrides are applied after the file
// and the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		cfg.Source = path
		applog.Debugf("Config: Loaded %s", path)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ReloadSpectrum re-reads the spectrum section from the file c was loaded
// from and returns a copy of c carrying it. Every other section, including
// values set by flags, is kept. c itself is not modified.
func (c *Config) ReloadSpectrum() (*Config, error) {
	if c.Source == "" {
		return nil, fmt.Errorf("no config file to reload")
	}

	reloaded, err := LoadConfig(c.Source)
	if err != nil {
		return nil, err
	}

	next := *c
	next.Spectrum = reloaded.Spectrum
	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &next, nil
}

// Validate checks every section. Spectrum errors keep their
// spectrum.ErrConfiguration identity through wrapping.
func (c *Config) Validate() error {
	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}

	// Audio
	if c.Audio.InputDevice < MinDeviceID {
		return fmt.Errorf("audio.input_device must be >= %d, got %d", MinDeviceID, c.Audio.InputDevice)
	}
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate must be in [%d, %d], got %g", MinSampleRate, MaxSampleRate, c.Audio.SampleRate)
	}
	if c.Audio.InputChannels < 1 || c.Audio.InputChannels > MaxChannels {
		return fmt.Errorf("audio.input_channels must be 1 or 2, got %d", c.Audio.InputChannels)
	}
	if n := c.Audio.FramesPerBuffer; n > 0 && !bitint.IsPowerOfTwo(n) && n < MaxBufferFrames {
		return fmt.Errorf("audio.frames_per_buffer must be a power of 2, got %d (try %d)", n, bitint.NextPowerOfTwo(n))
	}
	if !bitint.IsPowerOfTwo(c.Audio.FramesPerBuffer) || c.Audio.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("audio.frames_per_buffer must be a power of 2 up to %d, got %d", MaxBufferFrames, c.Audio.FramesPerBuffer)
	}
	if c.Audio.GateThreshold < 0 || c.Audio.GateThreshold > 1 {
		return fmt.Errorf("audio.gate_threshold must be in [0,1], got %g", c.Audio.GateThreshold)
	}

	// Spectrum
	if err := c.ReducerConfig().Validate(); err != nil {
		return fmt.Errorf("spectrum: %w", err)
	}

	// Recording
	if c.Recording.Enabled {
		if !strings.EqualFold(c.Recording.Format, DefaultFormat) {
			return fmt.Errorf("recording.format %q is not supported", c.Recording.Format)
		}
		switch c.Recording.BitDepth {
		case 16, 24, 32:
		default:
			return fmt.Errorf("recording.bit_depth must be 16, 24 or 32, got %d", c.Recording.BitDepth)
		}
	}

	// Transport
	if c.Transport.WebSocketEnabled && c.Transport.WebSocketAddress == "" {
		return fmt.Errorf("transport.websocket_address must be set when WebSocket is enabled")
	}
	if c.Transport.UDPEnabled {
		if c.Transport.UDPTargetAddress == "" {
			return fmt.Errorf("transport.udp_target_address must be set when UDP is enabled")
		}
		if !strings.Contains(c.Transport.UDPTargetAddress, ":") {
			return fmt.Errorf("transport.udp_target_address '%s' appears invalid (missing port?)", c.Transport.UDPTargetAddress)
		}
		if c.Transport.UDPSendInterval <= 0 {
			return fmt.Errorf("transport.udp_send_interval must be positive when UDP is enabled")
		}
	}

	return nil
}

// applyEnvOverrides reads ENV_* variables over whatever the file provided.
// Unparseable values are ignored with a warning.
func (c *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Debug = bVal
			applog.Infof("Config: Overriding debug from env: %v", bVal)
		} else {
			applog.Warnf("Config: Ignoring ENV_DEBUG=%q: %v", val, err)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
		applog.Infof("Config: Overriding log_level from env: %s", val)
	}

	// ENV_SPECTRUM_{...}

	// ENV_SPECTRUM_BINS
	if val, ok := os.LookupEnv("ENV_SPECTRUM_BINS"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			c.Spectrum.Bins = iVal
			applog.Infof("Config: Overriding spectrum.bins from env: %d", iVal)
		} else {
			applog.Warnf("Config: Ignoring ENV_SPECTRUM_BINS=%q: %v", val, err)
		}
	}
	// ENV_SPECTRUM_SMOOTHING
	if val, ok := os.LookupEnv("ENV_SPECTRUM_SMOOTHING"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			c.Spectrum.Smoothing = fVal
			applog.Infof("Config: Overriding spectrum.smoothing from env: %g", fVal)
		} else {
			applog.Warnf("Config: Ignoring ENV_SPECTRUM_SMOOTHING=%q: %v", val, err)
		}
	}

	// ENV_WS_{...} and ENV_UDP_{...}
	// These are specific to the transport layer.

	// ENV_WS_ADDRESS
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		c.Transport.WebSocketAddress = val
		applog.Infof("Config: Overriding transport.websocket_address from env: %s", val)
	}
	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = bVal
			applog.Infof("Config: Overriding transport.udp_enabled from env: %v", bVal)
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
		applog.Infof("Config: Overriding transport.udp_target_address from env: %s", val)
	}
	// ENV_UDP_SEND_INTERVAL
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = dur
			applog.Infof("Config: Overriding transport.udp_send_interval from env: %s", dur)
		}
	}
}

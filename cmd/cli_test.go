// SPDX-License-Identifier: MIT
package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"spectra/internal/config"
	"spectra/internal/spectrum"
)

func TestParseArgs_Defaults(t *testing.T) {
	cfg, err := ParseArgs(nil)
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}

	want := config.NewConfig()
	if cfg.Audio != want.Audio || cfg.Spectrum != want.Spectrum || cfg.Command != "" {
		t.Errorf("ParseArgs() = %+v, want defaults", cfg)
	}
}

func TestParseArgs_SpectrumFlags(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"--bins", "32",
		"--min-freq", "100",
		"--max-freq", "8000",
		"--smoothing", "0.25",
		"--normalize",
		"-b", "2048",
		"-s", "48000",
	})
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}

	got := cfg.ReducerConfig()
	want := spectrum.Config{
		FFTSize:               2048,
		SampleRate:            48000,
		SmoothingTimeConstant: 0.25,
		MinDecibels:           spectrum.DefaultMinDecibels,
		MaxDecibels:           spectrum.DefaultMaxDecibels,
		MinFrequency:          100,
		MaxFrequency:          8000,
		Normalize:             true,
		OutputBins:            32,
	}
	if got != want {
		t.Errorf("ReducerConfig() = %+v, want %+v", got, want)
	}
}

func TestParseArgs_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spectra.yaml")
	content := "spectrum:\n  bins: 12\n  smoothing: 0.3\nrecording:\n  output_file: file.wav\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := ParseArgs([]string{"--config", path, "--bins", "48", "--record"})
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}

	if cfg.Spectrum.Bins != 48 {
		t.Errorf("bins = %d, want flag value 48", cfg.Spectrum.Bins)
	}
	if cfg.Spectrum.Smoothing != 0.3 {
		t.Errorf("smoothing = %v, want file value 0.3", cfg.Spectrum.Smoothing)
	}
	if !cfg.Recording.Enabled || cfg.Recording.OutputFile != "file.wav" {
		t.Errorf("recording = %+v, want enabled with file.wav", cfg.Recording)
	}
	if cfg.Source != path {
		t.Errorf("Source = %q, want %q", cfg.Source, path)
	}
}

func TestParseArgs_ListCommand(t *testing.T) {
	cfg, err := ParseArgs([]string{"list", "--verbose"})
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}
	if cfg.Command != "list" {
		t.Errorf("Command = %q, want list", cfg.Command)
	}
	if !cfg.Debug || cfg.LogLevel != "debug" {
		t.Errorf("verbose not applied: debug=%v level=%q", cfg.Debug, cfg.LogLevel)
	}
}

func TestParseArgs_Transport(t *testing.T) {
	cfg, err := ParseArgs([]string{"--udp-target", "127.0.0.1:7000", "--ws-address", ""})
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}
	if !cfg.Transport.UDPEnabled || cfg.Transport.UDPTargetAddress != "127.0.0.1:7000" {
		t.Errorf("udp = %v %q", cfg.Transport.UDPEnabled, cfg.Transport.UDPTargetAddress)
	}
	if cfg.Transport.WebSocketEnabled {
		t.Error("an empty --ws-address should disable the WebSocket server")
	}
}

func TestParseArgs_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"Smoothing out of range", []string{"--smoothing", "1.2"}},
		{"Inverted range", []string{"--min-freq", "5000", "--max-freq", "100"}},
		{"Negative bins", []string{"--bins", "-4"}},
		{"Unknown flag", []string{"--colour"}},
		{"Not a number", []string{"--bins", "many"}},
		{"Stray argument", []string{"extra"}},
		{"Missing file", []string{"--config", "does-not-exist.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseArgs(tt.args); err == nil {
				t.Errorf("ParseArgs(%v) expected error", tt.args)
			}
		})
	}
}

func TestParseArgs_SpectrumErrorIdentity(t *testing.T) {
	_, err := ParseArgs([]string{"--smoothing", "1.2"})
	if !errors.Is(err, spectrum.ErrConfiguration) {
		t.Errorf("ParseArgs() error = %v, want spectrum.ErrConfiguration", err)
	}
}

func TestParseArgs_Help(t *testing.T) {
	cfg, err := ParseArgs([]string{"--help"})
	if err != nil || cfg != nil {
		t.Errorf("ParseArgs(--help) = %v, %v; want nil, nil", cfg, err)
	}
}

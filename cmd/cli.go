// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"

	"spectra/internal/config"
	"spectra/pkg/build"

	"github.com/spf13/cobra"
)

// flagValues receives raw flag values. Only flags the user changed are
// copied over the loaded configuration.
type flagValues struct {
	configPath      string
	device          int
	sampleRate      float64
	framesPerBuffer int
	channels        int
	lowLatency      bool
	bins            int
	minFreq         float64
	maxFreq         float64
	smoothing       float64
	normalize       bool
	record          bool
	output          string
	logLevel        string
	verbose         bool
	wsAddress       string
	udpTarget       string
}

// ParseArgs parses the command line, loads the configuration file and
// applies flag overrides. It returns a nil config when the command only
// printed help or version output.
func ParseArgs(args []string) (*config.Config, error) {
	info := build.Current()
	defaults := config.NewConfig()

	var (
		fv      flagValues
		options *config.Config
	)

	rootCmd := &cobra.Command{
		Use:           info.Name,
		Short:         "Real-time audio spectrum reducer",
		Long:          "Captures audio, reduces its spectrum to a fixed number of bins and streams the frames over WebSocket or UDP.",
		Version:       info.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve(cmd, &fv)
			options = cfg
			return err
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve(cmd, &fv)
			if err != nil {
				return err
			}
			cfg.Command = "list"
			options = cfg
			return nil
		},
	}
	rootCmd.AddCommand(listCmd)

	flags := rootCmd.PersistentFlags()

	flags.StringVar(&fv.configPath, "config", "",
		"Path to a YAML config file (default: spectra.yaml or config.yaml if present)")

	// Audio Device Configuration
	flags.IntVarP(&fv.device, "device", "d", defaults.Audio.InputDevice,
		"Specify input device ID. Use 'list' command to see available devices.")
	flags.IntVarP(&fv.channels, "channels", "c", defaults.Audio.InputChannels,
		"Number of channels to capture (1=mono, 2=stereo)")
	flags.Float64VarP(&fv.sampleRate, "sample-rate", "s", defaults.Audio.SampleRate,
		"Sample rate, measured in Hertz (Hz)")
	flags.IntVarP(&fv.framesPerBuffer, "frames-per-buffer", "b", defaults.Audio.FramesPerBuffer,
		"Frames per buffer, also the FFT size (power of 2)")
	flags.BoolVarP(&fv.lowLatency, "low-latency", "l", defaults.Audio.LowLatency,
		"Use the device's low latency setting")

	// Spectrum Configuration
	flags.IntVarP(&fv.bins, "bins", "n", defaults.Spectrum.Bins,
		"Number of output bins (0 keeps one bin per FFT bin in range)")
	flags.Float64Var(&fv.minFreq, "min-freq", defaults.Spectrum.MinFrequency,
		"Lowest frequency shown, in Hz")
	flags.Float64Var(&fv.maxFreq, "max-freq", defaults.Spectrum.MaxFrequency,
		"Highest frequency shown, in Hz (0 for Nyquist)")
	flags.Float64Var(&fv.smoothing, "smoothing", defaults.Spectrum.Smoothing,
		"Smoothing time constant in [0,1), 0 disables smoothing")
	flags.BoolVar(&fv.normalize, "normalize", defaults.Spectrum.Normalize,
		"Scale bins by linear magnitude instead of decibels")

	// Transport Configuration
	flags.StringVar(&fv.wsAddress, "ws-address", defaults.Transport.WebSocketAddress,
		"WebSocket listen address")
	flags.StringVar(&fv.udpTarget, "udp-target", "",
		"Enable UDP publishing to host:port")

	// Recording Configuration
	flags.BoolVarP(&fv.record, "record", "r", defaults.Recording.Enabled,
		"Record the raw input to a WAV file")
	flags.StringVarP(&fv.output, "output", "o", defaults.Recording.OutputFile,
		"Recording file name (default: spectra-YYYYMMDD-HHMMSS.wav)")

	// Debug Configuration
	flags.StringVar(&fv.logLevel, "log-level", defaults.LogLevel,
		"Log level: debug, info, warn, error")
	flags.BoolVarP(&fv.verbose, "verbose", "v", false,
		"Show verbose output (same as --log-level debug)")

	// cobra falls back to os.Args when given nil.
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return options, nil
}

// resolve loads the configuration and overlays every flag the user set.
func resolve(cmd *cobra.Command, fv *flagValues) (*config.Config, error) {
	cfg, err := config.LoadConfig(fv.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed

	if changed("device") {
		cfg.Audio.InputDevice = fv.device
	}
	if changed("channels") {
		cfg.Audio.InputChannels = fv.channels
	}
	if changed("sample-rate") {
		cfg.Audio.SampleRate = fv.sampleRate
	}
	if changed("frames-per-buffer") {
		cfg.Audio.FramesPerBuffer = fv.framesPerBuffer
	}
	if changed("low-latency") {
		cfg.Audio.LowLatency = fv.lowLatency
	}

	if changed("bins") {
		cfg.Spectrum.Bins = fv.bins
	}
	if changed("min-freq") {
		cfg.Spectrum.MinFrequency = fv.minFreq
	}
	if changed("max-freq") {
		cfg.Spectrum.MaxFrequency = fv.maxFreq
	}
	if changed("smoothing") {
		cfg.Spectrum.Smoothing = fv.smoothing
	}
	if changed("normalize") {
		cfg.Spectrum.Normalize = fv.normalize
	}

	if changed("ws-address") {
		cfg.Transport.WebSocketEnabled = fv.wsAddress != ""
		cfg.Transport.WebSocketAddress = fv.wsAddress
	}
	if changed("udp-target") {
		cfg.Transport.UDPEnabled = fv.udpTarget != ""
		cfg.Transport.UDPTargetAddress = fv.udpTarget
	}

	if changed("record") {
		cfg.Recording.Enabled = fv.record
	}
	if changed("output") {
		cfg.Recording.OutputFile = fv.output
	}

	if changed("log-level") {
		cfg.LogLevel = fv.logLevel
	}
	if fv.verbose {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// SPDX-License-Identifier: MIT
package main

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"spectra/cmd"
	"spectra/internal/audio"
	"spectra/internal/config"
	applog "spectra/internal/log"
	"spectra/internal/transport"
	"spectra/internal/transport/udp"
	"spectra/pkg/build"
)

// main runs in three phases:
//
// 1. Startup (cold path): build info, arguments, logging, PortAudio, one-off
// commands.
//
// 2. Streaming (hot path): the PortAudio callback captures, analyses and
// reduces every buffer and hands frames to the transports. SIGHUP reloads
// the spectrum section of the config file between frames.
//
// 3. Shutdown (cold path): stop recording, close the stream and transports.
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := build.Initialize(); err != nil {
		applog.Debugf("Build: %v, using development metadata", err)
	}

	// One thread for the audio callback, one for transports and signals.
	runtime.GOMAXPROCS(2)

	cfg, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		applog.Fatalf("%v", err)
	}
	if cfg == nil {
		return // help or version output only
	}

	configureLogging(cfg)
	applog.Infof("Main: %s", build.Current())

	if err := audio.Initialize(); err != nil {
		applog.Fatalf("%v", err)
	}
	defer audio.Terminate()

	if cfg.Command == "list" {
		if err := audio.ListDevices(os.Stdout); err != nil {
			applog.Fatalf("%v", err)
		}
		return
	}

	// ==================== STREAMING PHASE (Hot Path) ====================

	engine, publisher, err := start(cfg)
	if err != nil {
		applog.Fatalf("%v", err)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	for sig := range signals {
		if sig != syscall.SIGHUP {
			break
		}
		reload(cfg, engine)
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	applog.Infof("Main: Shutting down after %d frames", engine.Frames())

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			applog.Errorf("Main: Error stopping UDP publisher: %v", err)
		}
	}
	if err := engine.Close(); err != nil {
		applog.Errorf("Main: Error closing audio engine: %v", err)
	}
}

func configureLogging(cfg *config.Config) {
	level, _ := applog.ParseLevel(cfg.LogLevel)
	if cfg.Debug {
		level = applog.LevelDebug
	}
	applog.SetLevel(level)
}

// start builds the transports and the engine, then opens the input stream.
func start(cfg *config.Config) (*audio.Engine, *udp.Publisher, error) {
	var sinks transport.Multi
	if cfg.Transport.WebSocketEnabled {
		ws := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddress)
		ws.Start()
		sinks = append(sinks, ws)
	}
	if len(sinks) == 0 || cfg.Debug {
		sinks = append(sinks, transport.NewLoggingTransport(60))
	}

	engine, err := audio.NewEngine(cfg, sinks)
	if err != nil {
		sinks.Close()
		return nil, nil, err
	}

	var publisher *udp.Publisher
	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			engine.Close()
			return nil, nil, err
		}
		publisher, err = udp.NewPublisher(cfg.Transport.UDPSendInterval, sender, engine)
		if err != nil {
			sender.Close()
			engine.Close()
			return nil, nil, err
		}
	}

	if err := engine.StartInputStream(); err != nil {
		engine.Close()
		return nil, nil, err
	}
	if publisher != nil {
		publisher.Start()
	}

	if cfg.Recording.Enabled {
		if err := engine.StartRecording(cfg.Recording.OutputFile); err != nil {
			applog.Errorf("Main: Recording disabled: %v", err)
		}
	}

	applog.Infof("Main: Streaming %d bins (Ctrl+C to stop, SIGHUP to reload spectrum settings)", engine.OutputSize())
	return engine, publisher, nil
}

// reload applies the spectrum section of the config file to the engine.
func reload(cfg *config.Config, engine *audio.Engine) {
	next, err := cfg.ReloadSpectrum()
	if err != nil {
		applog.Warnf("Main: Reload skipped: %v", err)
		return
	}

	changed, err := engine.ApplySpectrum(next.ReducerConfig())
	if err != nil {
		applog.Errorf("Main: Reload failed: %v", err)
		return
	}
	*cfg = *next
	applog.Infof("Main: Reloaded %s (changed: %v)", cfg.Source, changed)
}

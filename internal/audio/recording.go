// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	applog "spectra/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// RecordingName returns a timestamped file name for a recording started at t.
func RecordingName(t time.Time) string {
	return "spectra-" + t.Format("20060102-150405") + ".wav"
}

// StartRecording writes the raw input to a WAV file at the configured bit
// depth. An empty filename uses RecordingName in the working directory.
func (e *Engine) StartRecording(filename string) error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		return fmt.Errorf("already recording")
	}
	if filename == "" {
		filename = RecordingName(time.Now())
	}

	bitDepth := e.config.Recording.BitDepth
	switch bitDepth {
	case 16, 24, 32:
	case 0:
		bitDepth = 32
	default:
		return fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	e.outputFile = file

	channels := e.config.Audio.InputChannels
	sampleRate := int(e.config.Audio.SampleRate)
	e.wavEncoder = wav.NewEncoder(file, sampleRate, bitDepth, channels, 1)
	e.sampleShift = uint(32 - bitDepth)

	e.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, e.config.Audio.FramesPerBuffer*channels),
		SourceBitDepth: bitDepth,
	}

	atomic.StoreInt32(&e.isRecording, 1)
	applog.Infof("Engine: Recording to %s (%d-bit, %d ch)", filepath.Base(filename), bitDepth, channels)

	return nil
}

// record appends one interleaved buffer to the WAV file when recording.
func (e *Engine) record(buffer []int32) {
	if atomic.LoadInt32(&e.isRecording) == 0 || e.wavEncoder == nil {
		return
	}

	n := min(len(buffer), cap(e.sampleBuf.Data))
	e.sampleBuf.Data = e.sampleBuf.Data[:n]
	for i := range n {
		e.sampleBuf.Data[i] = int(buffer[i] >> e.sampleShift)
	}

	if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
		applog.Errorf("Engine: Error writing to WAV file: %v", err)
	}
}

func (e *Engine) StopRecording() error {
	if atomic.LoadInt32(&e.isRecording) == 0 {
		return nil
	}

	atomic.StoreInt32(&e.isRecording, 0)

	if e.wavEncoder != nil {
		if err := e.wavEncoder.Close(); err != nil {
			return err
		}
		e.wavEncoder = nil
	}

	if e.outputFile != nil {
		if err := e.outputFile.Close(); err != nil {
			return err
		}
		e.outputFile = nil
	}

	return nil
}

// Close stops recording and the input stream, then closes the transport.
func (e *Engine) Close() error {
	if err := e.StopRecording(); err != nil {
		return err
	}

	if err := e.StopInputStream(); err != nil {
		return err
	}

	if e.transport != nil {
		return e.transport.Close()
	}
	return nil
}

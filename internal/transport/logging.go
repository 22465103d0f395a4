// SPDX-License-Identifier: MIT
package transport

import (
	"sync/atomic"

	applog "spectra/internal/log"

	"gonum.org/v1/gonum/floats"
)

// LoggingTransport writes a short summary of every Nth frame to the debug
// log. It is used for headless runs with no network consumer.
type LoggingTransport struct {
	every uint64
	count atomic.Uint64
}

// NewLoggingTransport logs one frame in every. Values below 1 log all frames.
func NewLoggingTransport(every int) *LoggingTransport {
	if every < 1 {
		every = 1
	}
	applog.Infof("Transport: Using LoggingTransport (every %d frames)", every)
	return &LoggingTransport{every: uint64(every)}
}

// Send logs the frame size and its peak. Non-frame values are ignored.
func (lt *LoggingTransport) Send(data any) error {
	n := lt.count.Add(1)
	if (n-1)%lt.every != 0 {
		return nil
	}

	frame, ok := data.([]float64)
	if !ok || len(frame) == 0 {
		applog.Debugf("Transport: Frame %d (%T)", n, data)
		return nil
	}
	peak := floats.MaxIdx(frame)
	applog.Debugf("Transport: Frame %d, %d bins, peak %.3f at bin %d", n, len(frame), frame[peak], peak)
	return nil
}

// Frames returns how many values were sent.
func (lt *LoggingTransport) Frames() uint64 {
	return lt.count.Load()
}

// Close is a no-op.
func (lt *LoggingTransport) Close() error {
	applog.Debugf("Transport: LoggingTransport closed after %d frames", lt.count.Load())
	return nil
}

var _ Transport = (*LoggingTransport)(nil)

// SPDX-License-Identifier: MIT
package transport

// Transport delivers reduced spectrum frames to a consumer. Implementations
// must be safe for concurrent use and must not block the audio goroutine.
type Transport interface {
	Send(data any) error
	Close() error
}

// FrameProvider exposes the most recent reduced frame to pull-based
// publishers.
type FrameProvider interface {
	// LatestFrame copies the latest frame into dst, growing it when needed,
	// and returns the result. It returns dst[:0] before the first frame.
	LatestFrame(dst []float64) []float64
}

// Multi fans a frame out to several transports. Every transport is tried
// and the first error is returned.
type Multi []Transport

func (m Multi) Send(data any) error {
	var first error
	for _, t := range m {
		if err := t.Send(data); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) Close() error {
	var first error
	for _, t := range m {
		if err := t.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var _ Transport = Multi(nil)

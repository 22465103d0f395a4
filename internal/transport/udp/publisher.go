// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	applog "spectra/internal/log"
	"spectra/internal/transport"
)

// DefaultInterval is used when the configured interval is not positive.
const DefaultInterval = 16 * time.Millisecond // ~60Hz

// Sink receives encoded packets. *Sender implements it.
type Sink interface {
	Send(data []byte) error
}

// Publisher periodically pulls the latest reduced frame from a
// FrameProvider and sends it as one packet. It runs in its own goroutine
// between Start and Stop.
type Publisher struct {
	sink     Sink
	frames   transport.FrameProvider
	interval time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex // Guards ticker and doneChan.

	sequenceNum uint32

	// Reused on every tick.
	frameBuf  []float64
	f32Buf    []float32
	packetBuf *bytes.Buffer
}

// NewPublisher creates a publisher reading from frames and writing to sink.
func NewPublisher(interval time.Duration, sink Sink, frames transport.FrameProvider) (*Publisher, error) {
	if sink == nil {
		return nil, fmt.Errorf("UDPPublisher: sink cannot be nil")
	}
	if frames == nil {
		return nil, fmt.Errorf("UDPPublisher: frame provider cannot be nil")
	}
	if interval <= 0 {
		applog.Warnf("UDPPublisher: Invalid interval %s, defaulting to %s", interval, DefaultInterval)
		interval = DefaultInterval
	}

	applog.Infof("UDPPublisher: Initializing (Interval: %s)", interval)
	return &Publisher{
		sink:      sink,
		frames:    frames,
		interval:  interval,
		packetBuf: new(bytes.Buffer),
	}, nil
}

// Start launches the publishing goroutine. Calling it while running is a
// no-op.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("UDPPublisher: Start called but already running.")
		return
	}
	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	ticker, done := p.ticker, p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-ticker.C:
				p.publish()
			case <-done:
				return
			}
		}
	}()
}

// Stop signals the goroutine and waits for it to exit. Calling it when not
// running is a no-op.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}
	close(p.doneChan)
	p.ticker.Stop()
	p.ticker = nil
	p.mu.Unlock()

	p.wg.Wait()
	applog.Infof("UDPPublisher: Stopped after %d packets.", p.sequenceNum)
	return nil
}

// publish sends the latest frame. Nothing is sent before the first frame.
func (p *Publisher) publish() {
	p.frameBuf = p.frames.LatestFrame(p.frameBuf)
	if len(p.frameBuf) == 0 {
		return
	}

	if cap(p.f32Buf) < len(p.frameBuf) {
		p.f32Buf = make([]float32, len(p.frameBuf))
	}
	p.f32Buf = p.f32Buf[:len(p.frameBuf)]
	for i, v := range p.frameBuf {
		p.f32Buf[i] = float32(v)
	}

	p.sequenceNum++
	EncodePacket(p.packetBuf, p.sequenceNum, time.Now().UnixNano(), p.f32Buf)

	if err := p.sink.Send(p.packetBuf.Bytes()); err != nil {
		applog.Warnf("UDPPublisher: Error sending packet %d: %v", p.sequenceNum, err)
		return
	}
	applog.Debugf("UDPPublisher: Sent packet %d (%d bytes)", p.sequenceNum, p.packetBuf.Len())
}

// Close stops the publisher and closes the sink when it is an io.Closer.
func (p *Publisher) Close() error {
	if err := p.Stop(); err != nil {
		return err
	}
	if closer, ok := p.sink.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

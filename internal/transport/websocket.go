// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"net/http"
	"sync"
	"sync/atomic"

	applog "spectra/internal/log"

	"github.com/gorilla/websocket"
)

// Path served by the WebSocket transport.
const SpectrumPath = "/spectrum"

// SpectrumMessage is the JSON envelope for one reduced frame.
type SpectrumMessage struct {
	Type string    `json:"type"`
	Seq  uint64    `json:"seq"`
	Bins []float64 `json:"bins"`
}

// WebSocketTransport broadcasts frames as JSON to every connected client.
//
// Thread Safety:
// - Send only enqueues and never blocks; frames are dropped when the queue is full
// - A single goroutine writes to clients
// - The client set is guarded by a mutex
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan any
	done      chan struct{}
	closeOnce sync.Once
	server    *http.Server
	seq       atomic.Uint64
	dropped   atomic.Uint64
}

// NewWebSocketTransport creates the transport and starts its broadcast loop.
// Call Start to listen on addr, or mount Handler on an existing server.
func NewWebSocketTransport(addr string) *WebSocketTransport {
	wst := &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Visualisers are served from anywhere.
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, 256),
		done:      make(chan struct{}),
	}

	go wst.handleBroadcasts()
	return wst
}

// Handler returns the HTTP handler serving SpectrumPath.
func (wst *WebSocketTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(SpectrumPath, wst.handleWebSocket)
	return mux
}

// Start listens on the configured address in a background goroutine.
func (wst *WebSocketTransport) Start() {
	wst.server = &http.Server{
		Addr:    wst.addr,
		Handler: wst.Handler(),
	}

	go func() {
		applog.Infof("WebSocketTransport: Listening on %s%s", wst.addr, SpectrumPath)
		if err := wst.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Errorf("WebSocketTransport: Server error: %v", err)
		}
	}()
}

func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("WebSocketTransport: Upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	applog.Infof("WebSocketTransport: Client connected, total: %d", total)

	// Clients never send; a read error means the peer went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wst.remove(conn)
				return
			}
		}
	}()
}

func (wst *WebSocketTransport) remove(conn *websocket.Conn) {
	wst.clientsMu.Lock()
	_, ok := wst.clients[conn]
	delete(wst.clients, conn)
	total := len(wst.clients)
	wst.clientsMu.Unlock()

	if ok {
		conn.Close()
		applog.Infof("WebSocketTransport: Client disconnected, total: %d", total)
	}
}

func (wst *WebSocketTransport) handleBroadcasts() {
	for {
		select {
		case <-wst.done:
			return
		case data := <-wst.broadcast:
			wst.clientsMu.Lock()
			for client := range wst.clients {
				if err := client.WriteJSON(data); err != nil {
					applog.Warnf("WebSocketTransport: Error sending to client: %v", err)
					client.Close()
					delete(wst.clients, client)
				}
			}
			wst.clientsMu.Unlock()
		}
	}
}

// Send queues data for broadcast. A []float64 is wrapped in a
// SpectrumMessage with the next sequence number. The slice must not be
// modified after the call.
func (wst *WebSocketTransport) Send(data any) error {
	if frame, ok := data.([]float64); ok {
		data = SpectrumMessage{Type: "spectrum", Seq: wst.seq.Add(1), Bins: frame}
	}

	select {
	case <-wst.done:
		return errors.New("websocket transport is closed")
	default:
	}

	select {
	case wst.broadcast <- data:
	default:
		wst.dropped.Add(1)
	}
	return nil
}

// Clients returns the number of connected clients.
func (wst *WebSocketTransport) Clients() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

// Dropped returns how many frames were discarded because the queue was full.
func (wst *WebSocketTransport) Dropped() uint64 {
	return wst.dropped.Load()
}

// Close disconnects every client and shuts the server down. It is safe to
// call more than once.
func (wst *WebSocketTransport) Close() error {
	var err error
	wst.closeOnce.Do(func() {
		applog.Infof("WebSocketTransport: Closing server")
		close(wst.done)

		wst.clientsMu.Lock()
		for client := range wst.clients {
			client.Close()
		}
		wst.clients = make(map[*websocket.Conn]bool)
		wst.clientsMu.Unlock()

		if wst.server != nil {
			err = wst.server.Close()
		}
	})
	return err
}

var _ Transport = (*WebSocketTransport)(nil)

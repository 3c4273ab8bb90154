package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/terminal-sim/terminal-sim/sim/trace"
)

// playbackFrame is one websocket message: the playback position plus the
// interval record that produced it (absent at interval 0).
type playbackFrame struct {
	CurrentInterval int                   `json:"current_interval"`
	MaxComputed     int                   `json:"max_computed_interval"`
	Record          *trace.IntervalRecord `json:"record,omitempty"`
}

// playbackFrameLocked builds the frame for the current position. Caller
// holds s.mu.
func (s *Server) playbackFrameLocked() playbackFrame {
	frame := playbackFrame{
		CurrentInterval: s.engine.CurrentInterval(),
		MaxComputed:     s.engine.MaxComputedInterval(),
	}
	if k := s.engine.CurrentInterval() - 1; k >= 0 && k < s.engine.RecordedIntervals() {
		rec := s.engine.IntervalRecordAt(k)
		frame.Record = &rec
	}
	return frame
}

// wsHub fans playback frames out to connected websocket clients.
type wsHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func newWSHub() *wsHub {
	return &wsHub{conns: make(map[*websocket.Conn]bool)}
}

func (h *wsHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()
}

func (h *wsHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

// broadcast pushes a frame to every subscriber, dropping connections whose
// writes fail.
func (h *wsHub) broadcast(frame playbackFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16 * 1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
}

// handleWS upgrades the connection and streams playback frames until the
// client goes away. The first frame reflects the current position.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	frame := s.playbackFrameLocked()
	s.mu.Unlock()
	payload, _ := json.Marshal(frame)
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		conn.Close()
		return
	}

	s.hub.add(conn)

	// Reader loop: clients send nothing meaningful; exit on error/close.
	go func() {
		defer func() {
			s.hub.remove(conn)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

package telemetry

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"printcore/internal/log"
)

// wireMessage is the JSON shape written to each dashboard client, mirroring
// the teacher's ws.Message but specialized to this domain's three event
// kinds instead of a generic Type/Data map.
type wireMessage struct {
	Kind      string    `json:"kind"`
	Line      string    `json:"line"`
	Timestamp time.Time `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server upgrades incoming HTTP connections to websockets and relays every
// Hub event to each connected client as JSON, per SPEC_FULL.md §4.7's
// "operator dashboard" feed.
type Server struct {
	hub    *Hub
	logger *log.Logger
}

// NewServer builds a Server backed by hub.
func NewServer(hub *Hub, logger *log.Logger) *Server {
	return &Server{hub: hub, logger: logger}
}

// ServeHTTP implements http.Handler, upgrading the request and streaming
// hub events until the client disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("telemetry: upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	ch := make(chan Event, 16)
	s.hub.Register(id, ch)
	defer s.hub.Unregister(id)

	var writeMu sync.Mutex
	stopReader := make(chan struct{})
	go func() {
		defer close(stopReader)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			msg := wireMessage{Kind: ev.Kind, Line: ev.Line, Timestamp: time.Now()}
			writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			err := conn.WriteJSON(msg)
			writeMu.Unlock()
			if err != nil {
				return
			}
		case <-stopReader:
			return
		}
	}
}

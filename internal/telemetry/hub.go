// Package telemetry streams STATE:/ATTR:/discovery lines produced by
// cmd/telemetryd's discovery engines to connected operator-dashboard
// websocket clients. It is grounded on the teacher's common/ws package,
// adapted from a generic pub/sub hub into a line-feed specific to this
// domain.
package telemetry

import "sync"

// Event is one line telemetryd wants to fan out to dashboard clients.
type Event struct {
	Kind string // "state", "attr", or "discovery"
	Line string
}

// Hub manages in-process subscribers for websocket-capable clients,
// mirroring common/ws.Hub's register/unregister/broadcast shape but
// specialized to Event instead of a generic Message.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]chan Event
	register   chan registration
	unregister chan string
	broadcast  chan Event
	shutdown   chan struct{}
}

type registration struct {
	id string
	ch chan Event
}

// NewHub creates and starts a new Hub.
func NewHub() *Hub {
	h := &Hub{
		clients:    make(map[string]chan Event),
		register:   make(chan registration),
		unregister: make(chan string),
		broadcast:  make(chan Event, 256),
		shutdown:   make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case reg := <-h.register:
			h.mu.Lock()
			h.clients[reg.id] = reg.ch
			h.mu.Unlock()
		case id := <-h.unregister:
			h.mu.Lock()
			if ch, ok := h.clients[id]; ok {
				close(ch)
				delete(h.clients, id)
			}
			h.mu.Unlock()
		case ev := <-h.broadcast:
			h.mu.RLock()
			for _, ch := range h.clients {
				deliver(ch, ev)
			}
			h.mu.RUnlock()
		case <-h.shutdown:
			h.mu.Lock()
			for id, ch := range h.clients {
				close(ch)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

// deliver sends ev to ch without blocking the hub. "state" events (printer
// STATE: transitions) matter more to a dashboard than "discovery"/"attr"
// chatter, so when a client's buffer is full a state event evicts the
// oldest queued event to make room instead of being dropped; other kinds
// are simply dropped on a full buffer, same as before.
func deliver(ch chan Event, ev Event) {
	select {
	case ch <- ev:
		return
	default:
	}
	if ev.Kind != "state" {
		return
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- ev:
	default:
	}
}

// Register adds a client channel under id; ch should be buffered (size 16
// is a reasonable default for a slow dashboard client).
func (h *Hub) Register(id string, ch chan Event) {
	h.register <- registration{id: id, ch: ch}
}

// Unregister removes and closes the client channel registered under id.
func (h *Hub) Unregister(id string) {
	h.unregister <- id
}

// Publish fans an event out to every registered client, non-blocking.
func (h *Hub) Publish(ev Event) {
	select {
	case h.broadcast <- ev:
	default:
		// Drop if the broadcast queue itself is backed up.
	}
}

// Stop shuts the hub down and closes all client channels.
func (h *Hub) Stop() {
	close(h.shutdown)
}

package ws

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/adarshgogate/BloodDonorApp/pkg/logger"
)

// EventPublisher is what services need from the hub. Depending on the
// interface lets service tests record events without sockets.
type EventPublisher interface {
	BroadcastToAll(event Event)
}

// Hub tracks live connections, keyed by username; one user may hold several
// (browser tabs). Run owns registration; broadcasts read the map under mu.
type Hub struct {
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	seq    atomic.Int64
	logger log.Logger
}

// NewHub returns a hub. Start it with `go hub.Run()`.
func NewHub(l log.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.Component(l, "ws"),
	}
}

// Run is the hub's event loop. It returns after Shutdown.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		close(client.send)
		return
	default:
	}

	if _, ok := h.clients[client.username]; !ok {
		h.clients[client.username] = make(map[*Client]bool)
	}
	h.clients[client.username][client] = true

	// Queued here, after the client is in the map, so a client that has
	// seen "ready" is guaranteed to receive every later broadcast.
	client.sendEvent(Event{Op: OpReady, Data: ReadyData{Username: client.username, Role: client.role}})

	level.Info(h.logger).Log("msg", "client connected", "user", client.username,
		"connections", len(h.clients[client.username]))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.username]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}

	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.clients, client.username)
	}
	level.Info(h.logger).Log("msg", "client disconnected", "user", client.username, "remaining", len(clients))
}

// enqueueRegister hands client to Run unless the hub is shut down.
func (h *Hub) enqueueRegister(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// enqueueUnregister never blocks past Shutdown.
func (h *Hub) enqueueUnregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastToAll sends event to every connection. A client whose buffer is
// full is dropped rather than allowed to stall the broadcast.
func (h *Hub) BroadcastToAll(event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		level.Error(h.logger).Log("msg", "failed to marshal broadcast event", "op", event.Op, "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.clients {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				go h.enqueueUnregister(client)
			}
		}
	}
}

// ConnectionCount returns the number of open connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}

// Shutdown closes every connection and stops Run. Safe to call twice.
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		defer h.mu.Unlock()

		for _, clients := range h.clients {
			for client := range clients {
				close(client.send)
			}
		}
		h.clients = make(map[string]map[*Client]bool)
		level.Info(h.logger).Log("msg", "hub shut down, all connections closed")
	})
}

package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/CUknot/roomchat/metrics"
	"github.com/CUknot/roomchat/services"
)

// Frame is the JSON shape of every websocket message in both directions.
type Frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub maintains the set of active clients and delivers events to them
type Hub struct {
	// Registered clients, by room subscription and by user.
	clients map[*Client]bool
	rooms   map[uint]map[*Client]bool
	users   map[uint]map[*Client]bool
	closed  bool
	mu      sync.RWMutex

	log zerolog.Logger
}

// NewHub creates a new hub instance
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		rooms:   make(map[uint]map[*Client]bool),
		users:   make(map[uint]map[*Client]bool),
		log:     log.With().Str("component", "hub").Logger(),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client and
// refuses new ones.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		h.remove(client)
	}
	h.log.Info().Int("clients", len(clients)).Msg("hub stopped")
}

// Register adds client to the hub and its user's channel. It reports false
// once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[client] = true
	addTo(h.users, client.userID, client)
	metrics.WebsocketConnections.Inc()
	return true
}

func (h *Hub) Unregister(client *Client) {
	h.remove(client)
}

// remove drops client from every index and closes its send channel. It is
// safe to call more than once.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}
	delete(h.clients, client)
	removeFrom(h.users, client.userID, client)
	for roomID := range client.rooms {
		removeFrom(h.rooms, roomID, client)
	}
	client.rooms = nil
	close(client.send)
	metrics.WebsocketConnections.Dec()
}

// joinRoom subscribes a registered client to a room
func (h *Hub) joinRoom(client *Client, roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}
	client.rooms[roomID] = true
	addTo(h.rooms, roomID, client)
}

// leaveRoom removes a client from a room
func (h *Hub) leaveRoom(client *Client, roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(client.rooms, roomID)
	removeFrom(h.rooms, roomID, client)
}

// Publish delivers evt to the clients of its audience on this instance.
func (h *Hub) Publish(_ context.Context, evt services.Event) error {
	metrics.EventsPublished.WithLabelValues(evt.Name, string(evt.Audience.Kind)).Inc()
	return h.deliver(evt)
}

func (h *Hub) deliver(evt services.Event) error {
	frame, err := json.Marshal(Frame{Type: evt.Name, Payload: evt.Payload})
	if err != nil {
		return fmt.Errorf("hub: encode %s: %w", evt.Name, err)
	}

	var index map[uint]map[*Client]bool
	switch evt.Audience.Kind {
	case services.AudienceRoom:
		index = h.rooms
	case services.AudienceUser:
		index = h.users
	default:
		return fmt.Errorf("hub: unknown audience kind %q", evt.Audience.Kind)
	}

	h.mu.RLock()
	var slow []*Client
	for client := range index[evt.Audience.ID] {
		select {
		case client.send <- frame:
			metrics.EventsDelivered.Inc()
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.log.Warn().Str("session", client.id).Uint("user_id", client.userID).Msg("dropping slow client")
		metrics.SlowClientsDropped.Inc()
		h.remove(client)
	}
	return nil
}

func addTo(index map[uint]map[*Client]bool, key uint, client *Client) {
	if _, ok := index[key]; !ok {
		index[key] = make(map[*Client]bool)
	}
	index[key][client] = true
}

func removeFrom(index map[uint]map[*Client]bool, key uint, client *Client) {
	if clients, ok := index[key]; ok {
		delete(clients, client)
		// Clean up empty sets
		if len(clients) == 0 {
			delete(index, key)
		}
	}
}

package websocket

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultQueueSize bounds the number of events waiting for the run loop
const DefaultQueueSize = 1024

type outbound struct {
	communityID uuid.UUID
	name        string
	data        []byte
}

// Hub fans community events out to the websocket clients subscribed to that
// community. A single run loop delivers events in the order Publish accepted
// them; delivery is best effort and never blocks the publisher.
type Hub struct {
	// Registered clients organized by community ID
	clients map[uuid.UUID]map[*Client]bool

	events     chan outbound
	register   chan *Client
	unregister chan *Client

	done      chan struct{}
	closeOnce sync.Once

	// Guards clients for readers outside the run loop
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub; queueSize <= 0 selects DefaultQueueSize
func NewHub(queueSize int, logger zerolog.Logger) *Hub {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		events:     make(chan outbound, queueSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registrations and delivers events until Close is called
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case ev := <-h.events:
			h.deliver(ev)

		case <-h.done:
			h.closeAllClients()
			return
		}
	}
}

// Close stops the run loop and disconnects every client. Safe to call twice.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

// Publish serialises payload and enqueues it for channel. It never blocks:
// when the hub is stopped or the queue is full the event is dropped and logged.
func (h *Hub) Publish(channel Channel, payload interface{}) {
	name := channel.Name()

	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", name).Msg("Failed to marshal event payload")
		return
	}
	frame, err := json.Marshal(Frame{Event: name, Data: data})
	if err != nil {
		h.logger.Error().Err(err).Str("event", name).Msg("Failed to marshal event frame")
		return
	}

	select {
	case <-h.done:
		h.logger.Debug().Str("event", name).Msg("Hub stopped, event dropped")
		return
	default:
	}

	select {
	case h.events <- outbound{communityID: channel.CommunityID, name: name, data: frame}:
	default:
		h.logger.Warn().Str("event", name).Msg("Event queue full, event dropped")
	}
}

// Subscribe hands a client to the run loop. It returns false once the hub is stopped.
func (h *Hub) Subscribe(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unsubscribe removes a client; a no-op after the hub has stopped
func (h *Hub) Unsubscribe(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// RevokeMember disconnects every subscription accountID holds on the community.
// Once it returns, no later event of that community reaches those sockets.
func (h *Hub) RevokeMember(communityID, accountID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	revoked := 0
	for client := range h.clients[communityID] {
		if client.accountID == accountID && h.removeLocked(client) {
			revoked++
		}
	}
	if revoked > 0 {
		h.logger.Info().
			Str("communityID", communityID.String()).
			Str("accountID", accountID.String()).
			Int("clients", revoked).
			Msg("Subscriptions revoked")
	}
	return revoked
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.communityID]; !ok {
		h.clients[client.communityID] = make(map[*Client]bool)
	}
	h.clients[client.communityID][client] = true

	h.logger.Info().
		Str("communityID", client.communityID.String()).
		Str("accountID", client.accountID.String()).
		Msg("Client subscribed")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.removeLocked(client) {
		h.logger.Info().
			Str("communityID", client.communityID.String()).
			Str("accountID", client.accountID.String()).
			Msg("Client unsubscribed")
	}
}

// removeLocked drops client and closes its send channel; h.mu must be held
func (h *Hub) removeLocked(client *Client) bool {
	clients, ok := h.clients[client.communityID]
	if !ok || !clients[client] {
		return false
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.communityID)
	}
	return true
}

func (h *Hub) deliver(ev outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[ev.communityID]
	if len(clients) == 0 {
		return
	}

	delivered := 0
	for client := range clients {
		select {
		case client.send <- ev.data:
			delivered++
		default:
			// Slow consumer; it misses this and every later event
			h.removeLocked(client)
			h.logger.Warn().
				Str("communityID", ev.communityID.String()).
				Str("accountID", client.accountID.String()).
				Msg("Client send buffer full, disconnecting")
		}
	}

	h.logger.Debug().Str("event", ev.name).Int("clients", delivered).Msg("Event delivered")
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
	h.logger.Info().Msg("Hub stopped")
}

// ClientCount returns the number of subscribers of a community
func (h *Hub) ClientCount(communityID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[communityID])
}

package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dom/account-service/internal/logging"
	"github.com/google/uuid"
)

// Hub tracks the connected clients of every user and pushes session events
// to all of them.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopOnce   sync.Once
	stopped    bool
	log        logging.Logger
	mu         sync.RWMutex
}

func NewHub(log logging.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		log:        log.With("component", "ws_hub"),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for _, set := range h.clients {
				for client := range set {
					client.Close()
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.stopped {
				client.Close()
			} else {
				set, ok := h.clients[client.userID]
				if !ok {
					set = make(map[*Client]bool)
					h.clients[client.userID] = set
				}
				set[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.userID]; ok {
				if _, ok := set[client]; ok {
					delete(set, client)
					client.Close()
				}
				if len(set) == 0 {
					delete(h.clients, client.userID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop closes every client and blocks until Run has returned.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Notify sends an event to every connection of userID. It never blocks: a
// client whose buffer is full misses the event.
func (h *Hub) Notify(userID uuid.UUID, eventType string, payload interface{}) {
	if payload == nil {
		payload = SessionEventPayload{UserID: userID.String()}
	}
	msg, err := NewMessage(MessageType(eventType), payload)
	if err != nil {
		h.log.Error(context.Background(), "failed to build event", "type", eventType, "error", err)
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error(context.Background(), "failed to marshal event", "type", eventType, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		if !client.trySend(data) {
			h.log.Warn(context.Background(), "dropped event for slow client", "user_id", userID, "type", eventType)
		}
	}
}

// ClientCount returns the number of open connections for userID.
func (h *Hub) ClientCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

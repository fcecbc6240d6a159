package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client is one connected change-feed subscriber.
type Client struct {
	ID     string
	Events chan Change
}

// Hub fans changes out to in-process subscribers such as SSE connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

func (h *Hub) Subscribe(buffer int) *Client {
	client := &Client{
		ID:     uuid.New().String(),
		Events: make(chan Change, buffer),
	}

	h.mu.Lock()
	h.clients[client.ID] = client
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("Change feed client registered", zap.String("client_id", client.ID), zap.Int("total", total))
	return client
}

// Unsubscribe removes the client and closes its channel.
func (h *Hub) Unsubscribe(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.logger.Debug("Change feed client unregistered", zap.String("client_id", clientID), zap.Int("total", len(h.clients)))
	}
}

// Notify broadcasts change without blocking; clients with a full buffer miss it.
func (h *Hub) Notify(_ context.Context, change Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.Events <- change:
		default:
			h.logger.Warn("Change feed client buffer full, skipping event",
				zap.String("client_id", client.ID),
				zap.String("table", change.Table),
			)
		}
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Package notify fans out plan-recompute events to connected UI
// clients: whenever a race's plan is recomputed, every subscriber of
// that race receives a small JSON event and refreshes. Redis pub/sub
// bridges events across instances.
package notify

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	RaceID string
	Send   chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(raceID string) *Client {
	client := &Client{
		RaceID: raceID,
		Send:   make(chan []byte, 16),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[raceID] == nil {
		h.clients[raceID] = map[*Client]struct{}{}
	}
	h.clients[raceID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if raceClients, ok := h.clients[client.RaceID]; ok {
		delete(raceClients, client)
		if len(raceClients) == 0 {
			delete(h.clients, client.RaceID)
		}
	}
	close(client.Send)
}

// PlanRecomputed pushes the event to local subscribers and publishes it
// for other instances. Slow clients are skipped, not blocked on.
func (h *Hub) PlanRecomputed(raceID string, payload []byte) {
	h.mu.RLock()
	clients := h.clients[raceID]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.Send <- payload:
		default:
		}
	}

	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(raceID), payload).Err()
		if err != nil {
			log.Printf("redis publish error: %v", err)
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "plans:*:recomputed")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		raceID := raceIDFromChannel(msg.Channel)
		h.mu.RLock()
		clients := h.clients[raceID]
		h.mu.RUnlock()
		for client := range clients {
			select {
			case client.Send <- []byte(msg.Payload):
			default:
			}
		}
	}
}

func redisChannel(raceID string) string {
	return "plans:" + raceID + ":recomputed"
}

func raceIDFromChannel(ch string) string {
	// plans:{race}:recomputed
	const prefix = "plans:"
	const suffix = ":recomputed"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}

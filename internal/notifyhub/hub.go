// Package notifyhub delivers freshly persisted notifications to connected
// websocket clients. Notifications reach the hub through the Redis pub/sub
// bridge, so delivery works across multiple server processes.
package notifyhub

import (
	"context"
	"encoding/json"

	"smartcomplaint/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Hub routes notification messages to the connections of their recipient.
type Hub struct {
	// Clients maps a user id to that user's active connections.
	Clients map[uint][]Client

	RegisterCh   chan Client
	UnregisterCh chan Client

	Redis *redis.Client
	Log   *zap.SugaredLogger

	dispatchCh chan models.NotificationMessage
}

// NewHub creates a hub. Redis may be nil in tests; the pub/sub listener is
// only started when a client is available.
func NewHub(rdb *redis.Client, log *zap.SugaredLogger) *Hub {
	return &Hub{
		Clients:      make(map[uint][]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		Redis:        rdb,
		Log:          log,
		dispatchCh:   make(chan models.NotificationMessage, 64),
	}
}

// Dispatch hands a message to the hub directly, bypassing Redis. Used by the
// pub/sub listener and by tests.
func (h *Hub) Dispatch(msg models.NotificationMessage) {
	h.dispatchCh <- msg
}

// Run is the hub's main loop. It owns the Clients map; all mutation happens
// here.
func (h *Hub) Run() {
	if h.Redis != nil {
		h.startPubSubListener()
	}

	for {
		select {
		case client := <-h.RegisterCh:
			userID := client.GetUserID()
			h.Clients[userID] = append(h.Clients[userID], client)
			h.Log.Infof("Notification stream connected for user %d", userID)

		case client := <-h.UnregisterCh:
			h.removeClient(client)

		case msg := <-h.dispatchCh:
			for _, client := range h.Clients[msg.UserID] {
				select {
				case client.GetSendChannel() <- msg:
				default:
					// Slow consumer: drop the connection rather than block
					// the hub.
					h.removeClient(client)
					client.Close()
				}
			}
		}
	}
}

func (h *Hub) removeClient(client Client) {
	userID := client.GetUserID()
	conns := h.Clients[userID]
	for i, c := range conns {
		if c == client {
			h.Clients[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.Clients[userID]) == 0 {
		delete(h.Clients, userID)
	}
}

// startPubSubListener subscribes to every per-user notification channel and
// feeds the hub's dispatch loop.
func (h *Hub) startPubSubListener() {
	go func() {
		ctx := context.Background()
		pubsub := h.Redis.PSubscribe(ctx, "notify:*")
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var n models.NotificationMessage
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				h.Log.Errorf("ERROR: Failed to unmarshal pub/sub notification: %v", err)
				continue
			}
			h.dispatchCh <- n
		}
	}()
}

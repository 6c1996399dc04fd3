package models

import "time"

// NotificationMessage is the wire form of a notification pushed over the
// websocket stream and the Redis pub/sub bridge.
type NotificationMessage struct {
	UserID      uint      `json:"user_id"`
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	ComplaintID string    `json:"complaint_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

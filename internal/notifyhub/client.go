package notifyhub

import "smartcomplaint/backend/internal/models"

// Client is the interface for one live notification subscription. It
// abstracts the underlying connection so the hub can manage different client
// types uniformly.
type Client interface {
	// GetUserID returns the recipient user id for this connection.
	GetUserID() uint

	// GetSendChannel returns the channel the hub delivers notifications to.
	// It is a send-only channel.
	GetSendChannel() chan<- models.NotificationMessage

	// Run starts the client's pumps handling the connection.
	Run()
	// Close shuts down the client's send channel and connection.
	Close()
}

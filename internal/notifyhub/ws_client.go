package notifyhub

import (
	"encoding/json"
	"time"

	"smartcomplaint/backend/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// WebSocketClient implements the notifyhub.Client interface over a
// gorilla/websocket connection.
type WebSocketClient struct {
	UserID uint
	Conn   *websocket.Conn
	Hub    *Hub
	Send   chan models.NotificationMessage
	Log    *zap.SugaredLogger
}

func (c *WebSocketClient) GetUserID() uint { return c.UserID }
func (c *WebSocketClient) GetSendChannel() chan<- models.NotificationMessage {
	return c.Send
}

// Run starts the pumps for the connection.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops the write pump.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

// readPump drains the connection. The stream is one-way; clients send
// nothing meaningful, but the read loop is needed for pong and close
// handling.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Log.Warnf("WARNING: Notification stream read error for user %d: %v", c.UserID, err)
			}
			break
		}
	}
}

// writePump reads from the Send channel and writes to the websocket.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed by the hub.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				c.Log.Errorf("ERROR: Failed to encode notification for user %d: %v", c.UserID, err)
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			// Keep the connection alive.
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

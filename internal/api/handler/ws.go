package handler

import (
	"net/http"

	"smartcomplaint/backend/internal/models"
	"smartcomplaint/backend/internal/notifyhub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and registers the caller on the
// notification hub. Runs behind AuthRequired; websocket clients pass the
// token via the "token" query parameter.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	user := currentUser(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to upgrade connection"})
		return
	}

	client := &notifyhub.WebSocketClient{
		UserID: user.ID,
		Conn:   conn,
		Hub:    h.Hub,
		Send:   make(chan models.NotificationMessage, 64),
		Log:    h.Log,
	}

	h.Hub.RegisterCh <- client
	client.Run()
}

package handler

import (
	"net/http"
	"time"

	"smartcomplaint/backend/internal/config"

	"github.com/gin-gonic/gin"
)

// GetNotifications returns the caller's unread notifications, newest first,
// capped at the unread limit.
func (h *Handler) GetNotifications(c *gin.Context) {
	user := currentUser(c)

	notifications, err := h.Storage.GetUnreadNotifications(user.ID, config.UnreadNotificationsLimit)
	if err != nil {
		h.fail(c, err)
		return
	}

	rows := make([]gin.H, 0, len(notifications))
	for _, n := range notifications {
		var complaintID *string
		if n.Complaint != nil {
			complaintID = &n.Complaint.ComplaintID
		}
		rows = append(rows, gin.H{
			"id":           n.ID,
			"title":        n.Title,
			"message":      n.Message,
			"type":         n.Type,
			"complaint_id": complaintID,
			"created_at":   n.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": rows})
}

type markReadRequest struct {
	NotificationID uint `json:"notification_id"`
}

// MarkNotificationRead flips the read flag on one of the caller's
// notifications.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	user := currentUser(c)
	n, err := h.Storage.GetNotificationByID(req.NotificationID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if n == nil || n.UserID != user.ID {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Notification not found"})
		return
	}

	now := time.Now()
	n.Read = true
	n.ReadAt = &now
	if err := h.Storage.SaveNotification(n); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

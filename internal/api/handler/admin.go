package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats returns the caller's dashboard aggregates; admins see the
// global view including the user count.
func (h *Handler) GetDashboardStats(c *gin.Context) {
	dashboard, err := h.Stats.DashboardStats(currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": dashboard})
}

// GetAdminData returns the admin panel listing and summary. Admin only.
func (h *Handler) GetAdminData(c *gin.Context) {
	overview, err := h.Stats.AdminOverview(currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"complaints": overview.Complaints,
		"stats":      overview.Stats,
	})
}

// CheckReminders runs the staleness sweep. Admin only.
func (h *Handler) CheckReminders(c *gin.Context) {
	sent, err := h.Stats.CheckReminders(currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"reminders_sent": sent,
		"message":        fmt.Sprintf("Sent %d reminders", sent),
	})
}

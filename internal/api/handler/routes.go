package handler

import "github.com/gin-gonic/gin"

// SetupRoutes mounts the API surface on the engine.
func (h *Handler) SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// Public
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.GET("/session", h.Session)

	// Authenticated
	authorized := api.Group("/")
	authorized.Use(h.AuthRequired())
	{
		authorized.POST("/logout", h.Logout)

		authorized.POST("/submit-complaint", h.SubmitComplaint)
		authorized.GET("/get-complaints", h.GetComplaints)
		authorized.POST("/update-status", h.UpdateStatus)
		authorized.POST("/delete-complaint", h.DeleteComplaint)
		authorized.POST("/submit-feedback", h.SubmitFeedback)
		authorized.POST("/reopen-complaint", h.ReopenComplaint)

		authorized.GET("/get-notifications", h.GetNotifications)
		authorized.POST("/mark-notification-read", h.MarkNotificationRead)

		authorized.GET("/get-dashboard-stats", h.GetDashboardStats)
		authorized.GET("/get-admin-data", h.GetAdminData)
		authorized.POST("/check-reminders", h.CheckReminders)
	}

	// Live notification stream
	r.GET("/ws", h.AuthRequired(), h.ServeWebSocket)
}

package handler

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"smartcomplaint/backend/internal/complaint"
	"smartcomplaint/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SubmitComplaint files a new complaint with optional GPS fix and inline
// attachments.
func (h *Handler) SubmitComplaint(c *gin.Context) {
	var req complaint.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	created, fileResults, err := h.Complaints.Submit(currentUser(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"complaint_id": created.ComplaintID,
		"files":        fileResults,
		"message":      "Complaint submitted successfully!",
	})
}

// GetComplaints lists complaints visible to the caller, newest first.
func (h *Handler) GetComplaints(c *gin.Context) {
	complaints, err := h.Complaints.List(currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	rows := make([]gin.H, 0, len(complaints))
	for i := range complaints {
		rows = append(rows, h.complaintRow(&complaints[i]))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "complaints": rows})
}

func (h *Handler) complaintRow(cm *models.Complaint) gin.H {
	files := make([]gin.H, 0, len(cm.Files))
	for _, f := range cm.Files {
		files = append(files, gin.H{
			"id":   f.ID,
			"name": f.Name,
			"url":  h.Blobs.URL(f.StoredName),
			"type": fileType(f.Name),
			"size": f.Size,
		})
	}

	var feedbackAt *string
	if cm.FeedbackSubmittedAt != nil {
		s := cm.FeedbackSubmittedAt.Format(time.RFC3339)
		feedbackAt = &s
	}

	return gin.H{
		"id":                    cm.ComplaintID,
		"complaint_type":        cm.ComplaintType,
		"urgency":               cm.Urgency,
		"location":              cm.Location,
		"latitude":              cm.Latitude,
		"longitude":             cm.Longitude,
		"details":               cm.Details,
		"name":                  cm.Name,
		"roll":                  cm.Roll,
		"tags":                  []string(cm.Tags),
		"status":                cm.Status,
		"submitted_at":          cm.SubmittedAt.Format(time.RFC3339),
		"updated_at":            cm.UpdatedAt.Format(time.RFC3339),
		"files":                 files,
		"has_gps":               cm.HasGPS(),
		"rating":                cm.Rating,
		"feedback":              cm.Feedback,
		"feedback_submitted_at": feedbackAt,
		"reopened":              cm.Reopened,
		"reopen_reason":         cm.ReopenReason,
		"reopen_count":          cm.ReopenCount,
		"user_name":             cm.User.Username,
		"user_email":            cm.User.Email,
	}
}

func fileType(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return "unknown"
	}
	return ext
}

type updateStatusRequest struct {
	ComplaintID string `json:"complaint_id"`
	Status      string `json:"status"`
}

// UpdateStatus overwrites a complaint's status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	if err := h.Complaints.SetStatus(currentUser(c), req.ComplaintID, req.Status); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status updated successfully"})
}

type deleteComplaintRequest struct {
	ComplaintID string `json:"complaint_id"`
}

// DeleteComplaint removes a complaint and everything attached to it. Admin
// only.
func (h *Handler) DeleteComplaint(c *gin.Context) {
	var req deleteComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	if err := h.Complaints.Delete(currentUser(c), req.ComplaintID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Complaint deleted successfully"})
}

type feedbackRequest struct {
	ComplaintID string `json:"complaint_id"`
	Rating      int    `json:"rating"`
	Feedback    string `json:"feedback"`
}

// SubmitFeedback records the owner's rating for a complaint.
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	if err := h.Complaints.SubmitFeedback(currentUser(c), req.ComplaintID, req.Rating, req.Feedback); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Feedback submitted successfully"})
}

type reopenRequest struct {
	ComplaintID string `json:"complaint_id"`
	Reason      string `json:"reason"`
}

// ReopenComplaint puts an owner's complaint back into the active workflow.
func (h *Handler) ReopenComplaint(c *gin.Context) {
	var req reopenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	if err := h.Complaints.Reopen(currentUser(c), req.ComplaintID, req.Reason); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Complaint reopened successfully"})
}

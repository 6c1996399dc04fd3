// Package handler translates HTTP requests into lifecycle, identity and
// aggregation calls. Domain failures are returned as HTTP 200 with a
// success:false envelope; only authentication failures use 4xx codes.
package handler

import (
	"errors"

	"smartcomplaint/backend/internal/auth"
	"smartcomplaint/backend/internal/blobstore"
	"smartcomplaint/backend/internal/complaint"
	"smartcomplaint/backend/internal/models"
	"smartcomplaint/backend/internal/notifyhub"
	"smartcomplaint/backend/internal/stats"
	"smartcomplaint/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const userContextKey = "user"

// Handler carries the services behind the API surface.
type Handler struct {
	Auth       *auth.Service
	Complaints *complaint.Service
	Stats      *stats.Service
	Storage    storage.Storage
	Hub        *notifyhub.Hub
	Blobs      blobstore.Store
	Log        *zap.SugaredLogger
}

// NewHandler wires the API handler.
func NewHandler(authSvc *auth.Service, complaints *complaint.Service, statsSvc *stats.Service,
	s storage.Storage, hub *notifyhub.Hub, blobs blobstore.Store, log *zap.SugaredLogger) *Handler {
	return &Handler{
		Auth:       authSvc,
		Complaints: complaints,
		Stats:      statsSvc,
		Storage:    s,
		Hub:        hub,
		Blobs:      blobs,
		Log:        log,
	}
}

// currentUser returns the user placed in the context by AuthRequired.
func currentUser(c *gin.Context) *models.User {
	user, _ := c.Get(userContextKey)
	if u, ok := user.(*models.User); ok {
		return u
	}
	return nil
}

// fail writes the uniform failure envelope. Validation, not-found and
// permission failures all surface their message here; anything unexpected is
// masked behind a generic message.
func (h *Handler) fail(c *gin.Context, err error) {
	var vErr *complaint.ValidationError
	switch {
	case errors.As(err, &vErr),
		errors.Is(err, complaint.ErrNotFound),
		errors.Is(err, complaint.ErrPermissionDenied),
		errors.Is(err, auth.ErrFieldsRequired),
		errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, auth.ErrUsernameExists),
		errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(200, gin.H{"success": false, "message": err.Error()})
	default:
		h.Log.Errorf("ERROR: Unhandled API error: %v", err)
		c.JSON(200, gin.H{"success": false, "message": "Internal server error"})
	}
}

// userPayload is the user block returned by the auth endpoints.
func userPayload(u *models.User) gin.H {
	return gin.H{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
		"is_admin": u.IsAdmin,
	}
}

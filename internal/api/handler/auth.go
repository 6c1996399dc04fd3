package handler

import (
	"net/http"

	"smartcomplaint/backend/internal/auth"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	// Username may hold either a username or an email address.
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account and logs the new user in.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	user, token, err := h.Auth.Register(req.Username, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    userPayload(user),
	})
}

// Login authenticates by email or username.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	user, token, err := h.Auth.Login(req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    userPayload(user),
	})
}

// Logout revokes the current session token.
func (h *Handler) Logout(c *gin.Context) {
	claimsVal, _ := c.Get("claims")
	claims, ok := claimsVal.(*auth.Claims)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Invalid session"})
		return
	}

	if err := h.Auth.Logout(claims); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

// Session reports whether the caller holds a valid session. Unlike the other
// endpoints it never fails; an anonymous caller just gets is_authenticated
// false.
func (h *Handler) Session(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusOK, gin.H{"is_authenticated": false})
		return
	}

	claims, err := h.Auth.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"is_authenticated": false})
		return
	}
	user, err := h.Storage.GetUserByID(claims.UserID)
	if err != nil || user == nil {
		c.JSON(http.StatusOK, gin.H{"is_authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"is_authenticated": true,
		"user":             userPayload(user),
	})
}

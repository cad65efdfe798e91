package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"smartstock/internal/auth"
	"smartstock/internal/middleware"
	"smartstock/internal/models"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// Login picks a name and a role. There is no password; the role only gates
// destructive actions.
func (h *Handler) Login(c *gin.Context) {
	var input LoginRequest
	// 1. Validate Input JSON
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and role are required"})
		return
	}
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || !models.ValidRole(input.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be admin or staff"})
		return
	}

	// 2. Remember who is operating the tracker
	user := models.User{ID: uuid.NewString(), Username: input.Username, Role: input.Role}
	if err := h.repo.SetCurrentUser(c.Request.Context(), user); err != nil {
		h.fail(c, err)
		return
	}

	// 3. Generate JWT Token
	token, err := auth.GenerateToken(h.secret, user, h.now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	h.log.Info("user logged in", "username", user.Username, "role", user.Role)

	// 4. Success! Return Token and User
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.repo.ClearCurrentUser(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) Me(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, user)
}

package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snapcal/backend/internal/service"
)

// AuthHandler handles device pairing endpoints
type AuthHandler struct {
	authService service.IAuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/pair", h.Pair)
	}
}

// Pair exchanges the shared pairing key for a device token.
func (h *AuthHandler) Pair(c *gin.Context) {
	var req PairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	token, err := h.authService.Pair(req.PairingKey)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPairingKey) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid pairing key"})
			return
		}
		log.Printf("[AuthHandler] pairing failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to pair device"})
		return
	}

	c.JSON(http.StatusOK, PairResponse{Token: token})
}

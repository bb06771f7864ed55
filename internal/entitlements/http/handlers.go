package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Bid2Bid/bid2bid-backend/internal/auth"
	"github.com/Bid2Bid/bid2bid-backend/internal/entitlements/service"
)

// Handler serves the check-subscription endpoint the clients poll on
// every screen mount.
type Handler struct {
	entitlements *service.EntitlementService
}

func NewHandler(entitlements *service.EntitlementService) *Handler {
	return &Handler{entitlements: entitlements}
}

func (h *Handler) check(c *gin.Context) {
	userID := auth.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "authentication required"})
		return
	}

	c.JSON(http.StatusOK, h.entitlements.Status(c.Request.Context(), userID))
}

// Register mounts the subscription routes on an authenticated group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/subscription", h.check)
}

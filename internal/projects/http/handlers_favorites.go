package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Bid2Bid/bid2bid-backend/internal/auth"
)

func (h *Handler) listFavorites(c *gin.Context) {
	items, err := h.svc.ListFavorites(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "favorites": items})
}

func (h *Handler) removeFavorite(c *gin.Context) {
	if err := h.svc.RemoveFavorite(c.Request.Context(), auth.UserID(c), c.Param("vendor_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) suggestVendorNames(c *gin.Context) {
	names, err := h.svc.SuggestVendorNames(c.Request.Context(), auth.UserID(c), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "suggestions": names})
}

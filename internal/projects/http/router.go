package http

import "github.com/gin-gonic/gin"

// Register mounts project, favorites and suggestion routes on an
// authenticated group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	projects.POST("", h.create)
	projects.GET("", h.list)
	projects.GET("/:id", h.get)
	projects.PUT("/:id", h.save)
	projects.DELETE("/:id", h.delete)

	rg.GET("/favorites", h.listFavorites)
	rg.DELETE("/favorites/:vendor_id", h.removeFavorite)
	rg.GET("/vendors/suggestions", h.suggestVendorNames)
}

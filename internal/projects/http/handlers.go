package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Bid2Bid/bid2bid-backend/internal/auth"
	"github.com/Bid2Bid/bid2bid-backend/internal/draft"
	"github.com/Bid2Bid/bid2bid-backend/internal/projects/domain"
	"github.com/Bid2Bid/bid2bid-backend/internal/projects/service"
)

// Handler exposes project, vendor and share operations to the clients.
type Handler struct {
	svc *service.ProjectService
}

func NewHandler(svc *service.ProjectService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false, "error": draft.ErrNameRequired.Error()})
		return
	}

	p, err := h.svc.Create(c.Request.Context(), auth.UserID(c), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	b, err := h.svc.Load(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "bundle": toBundleResp(b)})
}

func (h *Handler) save(c *gin.Context) {
	var req saveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if req.ProjectID == "" {
		req.ProjectID = c.Param("id")
	}

	b, err := h.svc.SaveDraft(c.Request.Context(), auth.UserID(c), req.toDraft())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "bundle": toBundleResp(b)})
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": domain.ErrNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// respondError maps domain and draft sentinel errors onto HTTP statuses.
// Entitlement denials carry a distinct marker so clients can show the
// upgrade prompt instead of a generic failure notice.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, draft.ErrUpgradeRequired):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "upgrade_required", "message": err.Error()})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrVendorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, draft.ErrNameRequired),
		errors.Is(err, draft.ErrVendorLimit),
		errors.Is(err, draft.ErrLastVendor),
		errors.Is(err, draft.ErrInvalidEmail),
		errors.Is(err, draft.ErrDuplicateEmail),
		errors.Is(err, draft.ErrShareLimit),
		errors.Is(err, draft.ErrInvalidDuration),
		errors.Is(err, domain.ErrNameRequired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false, "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "something went wrong, your changes were not saved"})
	}
}

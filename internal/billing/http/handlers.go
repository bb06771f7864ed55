package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Bid2Bid/bid2bid-backend/internal/auth"
	"github.com/Bid2Bid/bid2bid-backend/internal/billing"
	"github.com/Bid2Bid/bid2bid-backend/internal/billing/appstore"
	"github.com/Bid2Bid/bid2bid-backend/internal/billing/repository"
	entdomain "github.com/Bid2Bid/bid2bid-backend/internal/entitlements/domain"
	entservice "github.com/Bid2Bid/bid2bid-backend/internal/entitlements/service"
)

// Handler serves checkout/portal redirects, purchase registration, and
// the app-store webhook.
type Handler struct {
	payments          *billing.PaymentClient
	transactions      *repository.TransactionRepository
	entitlements      *entservice.EntitlementService
	expectedProductID string
	webhookLimiter    *rate.Limiter
}

func NewHandler(
	payments *billing.PaymentClient,
	transactions *repository.TransactionRepository,
	entitlements *entservice.EntitlementService,
	expectedProductID string,
	ratePerSecond, burst int,
) *Handler {
	return &Handler{
		payments:          payments,
		transactions:      transactions,
		entitlements:      entitlements,
		expectedProductID: expectedProductID,
		webhookLimiter:    rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

func (h *Handler) checkout(c *gin.Context) {
	userID := auth.UserID(c)
	url, err := h.payments.CreateCheckout(c.Request.Context(), userID, auth.UserEmail(c))
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("create checkout failed")
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": "could not start checkout, please try again"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "url": url})
}

func (h *Handler) portal(c *gin.Context) {
	userID := auth.UserID(c)
	url, err := h.payments.CustomerPortal(c.Request.Context(), userID, auth.UserEmail(c))
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("customer portal failed")
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": "could not open the customer portal, please try again"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "url": url})
}

type registerPurchaseReq struct {
	OriginalTransactionID string `json:"original_transaction_id" binding:"required"`
	ProductID             string `json:"product_id" binding:"required"`
}

// registerPurchase is called by the client right after a native purchase
// or restore, so webhooks for the transaction can be attributed to the
// user later.
func (h *Handler) registerPurchase(c *gin.Context) {
	var req registerPurchaseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if req.ProductID != h.expectedProductID {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "product id mismatch"})
		return
	}

	userID := auth.UserID(c)
	if err := h.transactions.Register(c.Request.Context(), userID, req.OriginalTransactionID, req.ProductID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("purchase registration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "could not register purchase"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// appStoreWebhook ingests store subscription-lifecycle notifications. The
// store retries on non-2xx, so only malformed payloads are rejected;
// unattributable or unhandled notifications are acknowledged and logged.
func (h *Handler) appStoreWebhook(c *gin.Context) {
	if !h.webhookLimiter.Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limited"})
		return
	}

	var n appstore.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	txn, outcome, err := n.Evaluate(h.expectedProductID)
	if err != nil {
		status := http.StatusBadRequest
		log.Warn().Err(err).Str("notification_type", n.NotificationType).Msg("app store webhook rejected")
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if !outcome.Handled {
		log.Info().Str("notification_type", n.NotificationType).Msg("unhandled app store notification type")
		c.JSON(http.StatusOK, gin.H{"received": true, "processed": false})
		return
	}

	userID, err := h.transactions.FindUser(c.Request.Context(), txn.OriginalTransactionID)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			// Acknowledge so the store stops retrying; the client will
			// register the transaction and entitlement catches up on the
			// next renewal notification.
			log.Warn().
				Str("original_transaction_id", txn.OriginalTransactionID).
				Msg("webhook for unregistered transaction")
			c.JSON(http.StatusOK, gin.H{"received": true, "processed": false})
			return
		}
		log.Error().Err(err).Msg("transaction lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
		return
	}

	status := entdomain.Status{
		Subscribed:      outcome.Subscribed,
		SubscriptionEnd: outcome.SubscriptionEnd,
	}
	if outcome.Subscribed {
		status.Tier = "premium"
	}
	if err := h.entitlements.Update(c.Request.Context(), userID, status); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("entitlement update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("notification_type", n.NotificationType).
		Bool("subscribed", outcome.Subscribed).
		Msg("app store webhook processed")
	c.JSON(http.StatusOK, gin.H{"received": true, "processed": true})
}

// Register mounts the authenticated billing routes.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/billing/checkout", h.checkout)
	rg.POST("/billing/portal", h.portal)
	rg.POST("/billing/purchases", h.registerPurchase)
}

// RegisterWebhook mounts the public webhook endpoint.
func (h *Handler) RegisterWebhook(r gin.IRouter) {
	r.POST("/webhooks/app-store", h.appStoreWebhook)
}

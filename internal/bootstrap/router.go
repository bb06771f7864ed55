package bootstrap

import (
	"database/sql"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Bid2Bid/bid2bid-backend/config"
	httpapi "github.com/Bid2Bid/bid2bid-backend/internal/api/http"
	"github.com/Bid2Bid/bid2bid-backend/internal/api/http/middleware"
	authmw "github.com/Bid2Bid/bid2bid-backend/internal/auth/middleware"
	"github.com/Bid2Bid/bid2bid-backend/internal/billing"
	billinghttp "github.com/Bid2Bid/bid2bid-backend/internal/billing/http"
	billingrepo "github.com/Bid2Bid/bid2bid-backend/internal/billing/repository"
	enthttp "github.com/Bid2Bid/bid2bid-backend/internal/entitlements/http"
	entrepo "github.com/Bid2Bid/bid2bid-backend/internal/entitlements/repository"
	entservice "github.com/Bid2Bid/bid2bid-backend/internal/entitlements/service"
	projecthttp "github.com/Bid2Bid/bid2bid-backend/internal/projects/http"
	projectrepo "github.com/Bid2Bid/bid2bid-backend/internal/projects/repository"
	projectservice "github.com/Bid2Bid/bid2bid-backend/internal/projects/service"
)

type RouterDeps struct {
	ServiceName string
	Cfg         *config.Config
	DB          *sql.DB
	Redis       *redis.Client
	AuthClient  *fbauth.Client
}

// BuildRouter wires repositories, services and handlers onto one engine.
// It returns the entitlement service too, so the caller can hand it to
// the nightly sweeper.
func BuildRouter(dep RouterDeps) (*gin.Engine, *entservice.EntitlementService) {
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), middleware.ZLogMiddleware(), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.Cfg.App.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: dep.Cfg.App.CORSAllowCredentials,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Cfg.App.Version, dep.DB)
	healthHandler.RegisterRoutes(r)

	subscriberRepo := entrepo.NewSubscriberRepository(dep.DB)
	statusCache := entrepo.NewStatusCache(dep.Redis, dep.Cfg.Billing.EntitlementTTL)
	entitlementSvc := entservice.NewEntitlementService(subscriberRepo, statusCache)

	projectStore := projectrepo.NewProjectStore(dep.DB)
	projectSvc := projectservice.NewProjectService(projectStore, entitlementSvc)

	paymentClient := billing.NewPaymentClient(dep.Cfg.Billing.PaymentBaseURL, dep.Cfg.Billing.PaymentServiceToken)
	transactionRepo := billingrepo.NewTransactionRepository(dep.DB)
	billingHandler := billinghttp.NewHandler(
		paymentClient,
		transactionRepo,
		entitlementSvc,
		dep.Cfg.Billing.AppStoreProductID,
		dep.Cfg.Billing.WebhookRatePerSecond,
		dep.Cfg.Billing.WebhookBurst,
	)

	// The store calls the webhook directly; it never carries a user token.
	billingHandler.RegisterWebhook(r)

	api := r.Group("/api/v1")
	api.Use(authmw.FirebaseAuthMiddleware(dep.AuthClient))

	projecthttp.NewHandler(projectSvc).Register(api)
	enthttp.NewHandler(entitlementSvc).Register(api)
	billingHandler.Register(api)

	return r, entitlementSvc
}

// internal/router/router.go
package router

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/javajoker/dpp-backend/internal/config"
	"github.com/javajoker/dpp-backend/internal/fixtures"
	"github.com/javajoker/dpp-backend/internal/handlers"
	"github.com/javajoker/dpp-backend/internal/i18n"
	"github.com/javajoker/dpp-backend/internal/metrics"
	"github.com/javajoker/dpp-backend/internal/middleware"
	"github.com/javajoker/dpp-backend/internal/services"
	"github.com/javajoker/dpp-backend/internal/storage"
)

const (
	generalRatePerMin = 300
	generalBurst      = 60
)

// Dependencies are the backends the router wires services onto. Archive and
// Notifier may be nil.
type Dependencies struct {
	DB       *gorm.DB
	KV       storage.KV
	Fixtures *fixtures.Store
	Archive  storage.Archive
	Notifier services.Notifier
}

// Initialize builds the services and the HTTP engine. The rate limiter
// goroutines stop when ctx is cancelled.
func Initialize(ctx context.Context, cfg *config.Config, deps Dependencies) *gin.Engine {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize services
	blockchainService := services.NewBlockchainService(cfg)
	repairService := services.NewRepairService(deps.Fixtures)
	ownershipService := services.NewOwnershipService(deps.KV, cfg.Store.Prefix, blockchainService, deps.Archive, deps.Fixtures, m)
	verificationService := services.NewVerificationService(deps.Fixtures, ownershipService, cfg.Blockchain.Network, m)
	badgeService := services.NewBadgeService(deps.Fixtures, repairService)
	sustainabilityService := services.NewSustainabilityService(deps.Fixtures, repairService)
	transferService := services.NewTransferService(cfg, deps.KV, ownershipService, blockchainService, deps.Fixtures, deps.Notifier, deps.Archive, m)

	// Initialize handlers
	productHandler := handlers.NewProductHandler(deps.Fixtures, ownershipService, repairService, sustainabilityService, badgeService)
	ownershipHandler := handlers.NewOwnershipHandler(deps.Fixtures, ownershipService, verificationService)
	verificationHandler := handlers.NewVerificationHandler(deps.Fixtures, verificationService)
	transferHandler := handlers.NewTransferHandler(transferService)

	generalLimiter := middleware.NewRateLimiter(ctx, middleware.PerMinute(generalRatePerMin), generalBurst)
	// Transfer codes are six digits, so code lookups get a much tighter budget.
	lookupLimiter := middleware.NewRateLimiter(ctx, middleware.PerMinute(cfg.Transfer.LookupRatePerMin), cfg.Transfer.LookupBurst)

	auditDB := deps.DB
	if !cfg.Server.AuditLog {
		auditDB = nil
	}

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(m))
	r.Use(middleware.CORS(strings.Split(cfg.Frontend.BaseURL, ",")...))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(generalLimiter.Middleware())
	r.Use(middleware.AuditLogMiddleware(auditDB))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"version":   "1.0.0",
			"network":   blockchainService.Network(),
			"languages": i18n.GetSupportedLanguages(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Product passport routes
		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.GET("/:id/repairs", productHandler.GetRepairs)
			products.GET("/:id/sustainability", productHandler.GetSustainability)
			products.GET("/:id/badges", productHandler.GetBadges)
			products.GET("/:id/ownership", ownershipHandler.GetOwnership)
			products.POST("/:id/ownership/activate", ownershipHandler.Activate)
			products.GET("/:id/ownership/verify", ownershipHandler.VerifyOwnership)
		}

		v1.POST("/ownership/update", ownershipHandler.UpdateOwnership)
		v1.GET("/verify", verificationHandler.VerifyCertificate)

		// Transfer routes
		transfers := v1.Group("/transfers")
		{
			transfers.POST("", transferHandler.CreateTransfer)
			transfers.GET("", transferHandler.GetTransfers)
			transfers.GET("/:id", transferHandler.GetTransfer)
			transfers.GET("/:id/claim-link", transferHandler.GetClaimLink)
			transfers.POST("/:id/approve", transferHandler.ApproveTransfer)
			transfers.POST("/:id/reject", transferHandler.RejectTransfer)
			transfers.PUT("/:id/status", transferHandler.UpdateStatus)
			transfers.POST("/:id/complete", transferHandler.CompleteTransfer)

			lookup := transfers.Group("", lookupLimiter.Middleware())
			{
				lookup.GET("/code/:code", transferHandler.LookupByCode)
				lookup.GET("/claim-link/:token", transferHandler.ResolveClaimLink)
				lookup.POST("/claim", transferHandler.ClaimTransfer)
			}
		}
	}

	return r
}

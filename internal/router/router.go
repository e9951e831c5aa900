// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gamevault/gamevault-backend/internal/config"
	"github.com/gamevault/gamevault-backend/internal/handlers"
	"github.com/gamevault/gamevault-backend/internal/middleware"
	"github.com/gamevault/gamevault-backend/internal/repository"
	"github.com/gamevault/gamevault-backend/internal/services"
	"github.com/gamevault/gamevault-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, *services.PurchaseService) {
	// Initialize services
	store := repository.NewStore(db)
	notifier := services.NewTelegramNotifier(cfg.Telegram)
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(store, cfg.JWT)
	listingService := services.NewListingService(store)
	purchaseService := services.NewPurchaseService(store, notifier, cfg.Marketplace)
	paymentService := services.NewPaymentService(store, notifier, cfg.Marketplace)
	withdrawalService := services.NewWithdrawalService(store, notifier, cfg.Marketplace)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	listingHandler := handlers.NewListingHandler(listingService, storageService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
	walletHandler := handlers.NewWalletHandler(paymentService, storageService)
	sellerHandler := handlers.NewSellerHandler(withdrawalService)
	adminHandler := handlers.NewAdminHandler(paymentService, withdrawalService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	limits := middleware.NewRateLimiters(cfg.RateLimit)

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(limits.General())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(limits.Auth())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Listing routes
		listings := v1.Group("/listings")
		{
			listings.GET("", middleware.OptionalAuth(), listingHandler.GetListings)
			listings.GET("/:id", middleware.OptionalAuth(), listingHandler.GetListing)

			protected := listings.Group("")
			protected.Use(middleware.AuthRequired(), middleware.SellerRequired())
			{
				protected.POST("", listingHandler.CreateListing)
				protected.PUT("/:id/stock", listingHandler.UpdateStock)
			}
		}

		// Purchase routes
		purchases := v1.Group("/purchases")
		purchases.Use(middleware.AuthRequired())
		{
			purchases.POST("", limits.Checkout(), purchaseHandler.CreatePurchase)
			purchases.GET("", purchaseHandler.GetMyPurchases)
			purchases.GET("/:id", purchaseHandler.GetPurchase)
			purchases.PUT("/:id/status", purchaseHandler.UpdatePurchaseStatus)
			purchases.POST("/:id/confirm", purchaseHandler.ConfirmPurchase)
		}

		// Seller routes
		seller := v1.Group("/seller")
		seller.Use(middleware.AuthRequired(), middleware.SellerRequired())
		{
			seller.GET("/sales", purchaseHandler.GetMySales)
			seller.GET("/balance", sellerHandler.GetBalance)
			seller.POST("/withdrawals", sellerHandler.RequestWithdrawal)
			seller.GET("/withdrawals", sellerHandler.GetMyWithdrawals)
		}

		// Wallet routes
		wallet := v1.Group("/wallet")
		wallet.Use(middleware.AuthRequired())
		{
			wallet.GET("", walletHandler.GetWallet)
			wallet.POST("/topups", limits.Checkout(), walletHandler.SubmitTopUp)
			wallet.GET("/topups", walletHandler.GetMyTopUps)
		}

		// Upload routes
		v1.POST("/uploads", middleware.AuthRequired(), limits.Upload(), walletHandler.UploadFile)

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			adminPayments := admin.Group("/payments")
			{
				adminPayments.GET("/pending", adminHandler.GetPendingPayments)
				adminPayments.POST("/:id/approve", adminHandler.ApprovePayment)
				adminPayments.POST("/:id/reject", adminHandler.RejectPayment)
			}

			adminWithdrawals := admin.Group("/withdrawals")
			{
				adminWithdrawals.GET("/pending", adminHandler.GetPendingWithdrawals)
				adminWithdrawals.POST("/:id/pay", adminHandler.MarkWithdrawalPaid)
				adminWithdrawals.POST("/:id/reject", adminHandler.RejectWithdrawal)
			}
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r, purchaseService
}

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/quickbites/backend/internal/api/handlers"
	"github.com/quickbites/backend/internal/api/middleware"
	"github.com/quickbites/backend/internal/config"
	"github.com/quickbites/backend/internal/services"
	"github.com/quickbites/backend/pkg/logger"
	"gorm.io/gorm"
)

func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) *services.RewardService {
	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RateLimitMiddleware(cfg))

	// Initialize services
	emailService := services.NewEmailService(cfg)
	authService := services.NewAuthService(db, cfg.JWTSecret)
	walletService := services.NewWalletService(db)
	profileService := services.NewProfileService(db, cfg)
	auditService := services.NewAuditService(db)
	rewardService := services.NewRewardService(db, cfg, walletService)
	eligibilityService := services.NewEligibilityService(db, cfg)
	reviewService := services.NewReviewService(db, cfg, walletService, profileService, rewardService, auditService)
	moderationService := services.NewModerationService(db, cfg, profileService, auditService, emailService)
	orderService := services.NewOrderService(db)
	storageService := services.NewStorageService(cfg.AWSRegion, cfg.S3Bucket, cfg.AWSAccessKey, cfg.AWSSecretKey)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	orderHandler := handlers.NewOrderHandler(orderService)
	reviewHandler := handlers.NewReviewHandler(reviewService, eligibilityService, authService, storageService)
	profileHandler := handlers.NewProfileHandler(profileService)
	walletHandler := handlers.NewWalletHandler(walletService, rewardService)
	adminHandler := handlers.NewAdminHandler(moderationService, auditService, rewardService)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "message": "Server is running"})
	})

	// API routes
	api := router.Group("/api/v1")

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh-token", authHandler.Refresh)
		auth.POST("/logout", middleware.AuthMiddleware(cfg), authHandler.Logout)
		auth.GET("/me", middleware.AuthMiddleware(cfg), authHandler.Me)
		auth.POST("/verify-mobile", middleware.AuthMiddleware(cfg), authHandler.VerifyMobile)
	}

	// Order routes
	orders := api.Group("/orders", middleware.AuthMiddleware(cfg))
	{
		orders.POST("/", middleware.Authorize(middleware.CapSubmitReview), orderHandler.Create)
		orders.GET("/", orderHandler.ListMine)
		orders.GET("/:order_id", orderHandler.Get)
		orders.POST("/:order_id/accept", middleware.Authorize(middleware.CapManageOrders), orderHandler.Accept)
		orders.POST("/:order_id/deliver", middleware.Authorize(middleware.CapManageOrders), orderHandler.MarkDelivered)
	}

	// Review routes
	reviews := api.Group("/reviews")
	{
		reviews.GET("/restaurant/:restaurant_id", reviewHandler.ListForRestaurant)

		authed := reviews.Group("", middleware.AuthMiddleware(cfg))
		{
			authed.GET("/eligibility/:order_id", reviewHandler.CheckEligibility)
			authed.GET("/mine", reviewHandler.ListMine)
			authed.POST("/", middleware.Authorize(middleware.CapSubmitReview), reviewHandler.Submit)
			authed.POST("/photos", middleware.Authorize(middleware.CapSubmitReview), reviewHandler.UploadPhotos)
			authed.POST("/:review_id/helpful", reviewHandler.MarkHelpful)
			authed.POST("/:review_id/report", reviewHandler.Report)
			authed.POST("/:review_id/respond", middleware.Authorize(middleware.CapRespondReview), reviewHandler.Respond)
		}
	}

	// Profile and wallet routes
	me := api.Group("/me", middleware.AuthMiddleware(cfg))
	{
		me.GET("/profile", profileHandler.GetMine)
		me.GET("/wallet", middleware.Authorize(middleware.CapViewOwnWallet), walletHandler.Get)
		me.GET("/wallet/transactions", middleware.Authorize(middleware.CapViewOwnWallet), walletHandler.Transactions)
		me.GET("/rewards", middleware.Authorize(middleware.CapViewOwnWallet), walletHandler.Rewards)
	}

	// Admin routes
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg), middleware.AdminOnly())
	{
		admin.GET("/reviews", adminHandler.AllReviews)
		admin.GET("/reviews/flagged", adminHandler.FlaggedReviews)
		admin.GET("/reviews/stats", adminHandler.Stats)
		admin.GET("/reviews/:review_id", adminHandler.ReviewDetail)
		admin.POST("/reviews/:review_id/approve", adminHandler.ApproveReview)
		admin.POST("/reviews/:review_id/hide", adminHandler.HideReview)
		admin.DELETE("/reviews/:review_id", adminHandler.DeleteReview)
		admin.POST("/reviewers/:user_id/ban", adminHandler.BanReviewer)
		admin.POST("/reviewers/:user_id/unban", adminHandler.UnbanReviewer)
		admin.GET("/audit-log", adminHandler.AuditLog)
		admin.POST("/rewards/:reward_id/reverse", adminHandler.ReverseReward)
	}

	logger.Info("Routes initialized successfully")

	return rewardService
}

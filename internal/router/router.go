package router

import (
	"log"
	"net/http"

	"snapbooth/config"
	"snapbooth/internal/handler"
	"snapbooth/internal/middleware"
	"snapbooth/internal/repository"
	"snapbooth/internal/service"
	"snapbooth/internal/ws"
	"snapbooth/pkg/cloudinary"
	"snapbooth/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client, gateway payment.Gateway) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewIPRateLimiter(10, 30)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	voucherRepo := repository.NewVoucherRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)

	boothHub := ws.NewBoothHub()

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	fcmSvc := service.NewFCMService(cfg.Firebase.ServiceAccountPath)
	if fcmSvc != nil {
		log.Printf("[FCM] Push notifications enabled")
	} else if cfg.Firebase.ServiceAccountPath != "" {
		log.Printf("[FCM] Push notifications disabled: failed to init (check service account file)")
	} else {
		log.Printf("[FCM] Push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, fcmSvc, boothHub)
	feePolicy := &service.SettingFeePolicy{Settings: settingRepo, Fallback: cfg.Settlement.FeePercent}
	settlementSvc := service.NewSettlementService(ledgerRepo, feePolicy, nil)
	reconcileSvc := service.NewReconcileService(
		ledgerRepo, gateway, settlementSvc, notifSvc,
		cfg.Midtrans.ServerKey, cfg.Midtrans.StatusTimeout, cfg.Subscription.PeriodDays, nil,
	)
	earningsSvc := service.NewEarningsService(ledgerRepo, nil)
	boothSvc := service.NewBoothService(cfg, projectRepo, sessionRepo, voucherRepo, ledgerRepo, gateway, cloud, nil)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, userRepo)
	projectHandler := handler.NewProjectHandler(projectRepo)
	frameHandler := handler.NewFrameHandler(projectRepo, cloud)
	voucherHandler := handler.NewVoucherHandler(voucherRepo)
	boothHandler := handler.NewBoothHandler(cfg, boothSvc)
	webhookHandler := handler.NewPaymentWebhookHandler(reconcileSvc)
	earningsHandler := handler.NewEarningsHandler(earningsSvc, ledgerRepo)
	adminHandler := handler.NewAdminHandler(ledgerRepo, settingRepo, settlementSvc)
	subscriptionHandler := handler.NewSubscriptionHandler(boothSvc, userRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	walletHandler := handler.NewWalletHandler(walletRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", authHandler.Me)
			me.PATCH("/fcm-token", authHandler.UpdateFCMToken)
			me.GET("/earnings", earningsHandler.Summary)
			me.GET("/earnings/history", earningsHandler.History)
			me.GET("/transactions", earningsHandler.Transactions)
			me.GET("/notifications", notificationHandler.List)
			me.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
			me.GET("/wallet", walletHandler.Get)
			me.GET("/wallet/transactions", walletHandler.Transactions)
			me.GET("/subscription", subscriptionHandler.Status)
			me.POST("/subscription/checkout", subscriptionHandler.Checkout)
		}

		projects := api.Group("/projects")
		projects.Use(authMw)
		{
			projects.POST("", projectHandler.Create)
			projects.GET("", projectHandler.List)
			projects.GET("/:id", projectHandler.Get)
			projects.PATCH("/:id", projectHandler.Update)
			projects.DELETE("/:id", projectHandler.Delete)
			projects.POST("/:id/rotate-key", projectHandler.RotateBoothKey)
			projects.POST("/:id/frames", frameHandler.Create)
			projects.GET("/:id/frames", frameHandler.List)
			projects.PATCH("/:id/frames/:frameId", frameHandler.Update)
			projects.DELETE("/:id/frames/:frameId", frameHandler.Delete)
		}

		vouchers := api.Group("/vouchers")
		vouchers.Use(authMw)
		{
			vouchers.POST("", voucherHandler.Create)
			vouchers.GET("", voucherHandler.List)
			vouchers.PATCH("/:id", voucherHandler.Update)
			vouchers.DELETE("/:id", voucherHandler.Delete)
		}

		// Kiosk flow, authenticated per-project by booth key.
		booth := api.Group("/booth/:slug")
		booth.Use(boothHandler.BoothAuth())
		{
			booth.GET("/vouchers/:voucherCode", boothHandler.CheckVoucher)
			booth.POST("/sessions", boothHandler.StartSession)
			booth.POST("/sessions/:code/checkout", boothHandler.Checkout)
			booth.POST("/sessions/:code/photos", boothHandler.UploadPhoto)
			booth.POST("/sessions/:code/finalize", boothHandler.Finalize)
		}

		// Public: the session code is the only credential.
		api.GET("/gallery/:code", boothHandler.Gallery)
		api.GET("/gallery/:code/qr", boothHandler.GalleryQR)

		// Gateway-facing payment notification endpoint.
		api.POST("/payments/notification", webhookHandler.Handle)

		// Kiosk websocket, pushed a message when its order is paid.
		api.GET("/ws/booth", ws.UpgradeBoothWS(boothHub))

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/transactions", adminHandler.ListTransactions)
			admin.POST("/settlements/backfill", adminHandler.Backfill)
			admin.PATCH("/transactions/:orderId/paid-out", adminHandler.MarkPaidOut)
			admin.PATCH("/earnings/:id/paid", adminHandler.MarkEarningPaid)
			admin.GET("/settings", adminHandler.ListSettings)
			admin.PUT("/settings/:key", adminHandler.UpdateSetting)
		}
	}

	return r
}

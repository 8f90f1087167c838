package api

import (
	"strings"
	"time"

	"github.com/classeur/core/internal/api/handlers"
	"github.com/classeur/core/internal/api/middleware"
	"github.com/classeur/core/internal/config"
	"github.com/classeur/core/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter initializes and returns the Gin router with all routes configured
func SetupRouter(db *gorm.DB, cfg *config.Config) (*gin.Engine, *middleware.AuthManager, error) {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.CORSOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authManager, err := middleware.NewAuthManager(cfg.DataDir, cfg.JWTSecret, middleware.DefaultTokenExpiry)
	if err != nil {
		return nil, nil, err
	}

	// Services
	logService := services.NewLogServiceWithLevel(db, cfg.LogLevel)
	userService := services.NewUserService(db)
	accountService := services.NewAccountService(db, cfg.GetEncryptionKey())
	messageService := services.NewMessageService(db, accountService)
	senderService := services.NewSenderService(db)
	settingsService := services.NewSettingsService(db)
	filingService := services.NewFilingService(db, senderService, settingsService, messageService)

	// Background schedulers
	syncScheduler := services.NewSyncScheduler(db, messageService, logService, time.Duration(cfg.PollIntervalMins)*time.Minute)
	syncScheduler.Start()
	tokenScheduler := services.NewTokenScheduler(db, messageService, time.Duration(cfg.TokenIntervalMins)*time.Minute)
	tokenScheduler.Start()

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, authManager.JWTManager, logService)
	userHandler := handlers.NewUserHandler(userService, logService)
	accountHandler := handlers.NewAccountHandler(accountService, logService)
	messageHandler := handlers.NewMessageHandler(messageService, syncScheduler, logService)
	filingHandler := handlers.NewFilingHandler(filingService, senderService, logService)
	settingsHandler := handlers.NewSettingsHandler(settingsService, filingService, logService)
	logHandler := handlers.NewLogHandler(logService)
	oauthHandler := handlers.NewOAuthHandler(accountService)

	// Health check endpoint (no auth required)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.Use(middleware.APIKeyMiddleware(authManager.APIKeyManager))

		// Auth routes (API key required, but no JWT required)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}

		// OAuth routes the browser reaches without a JWT
		oauth := api.Group("/oauth")
		{
			oauth.GET("/config", oauthHandler.GetOAuthConfig)
			oauth.GET("/google/callback", oauthHandler.GoogleCallback)
		}

		// Protected routes (API key + JWT required)
		protected := api.Group("")
		protected.Use(middleware.JWTMiddleware(authManager.JWTManager))
		{
			protected.POST("/auth/refresh", authHandler.RefreshToken)
			protected.POST("/auth/logout", authHandler.Logout)
			protected.GET("/auth/me", authHandler.GetCurrentUser)

			userGroup := protected.Group("/user")
			{
				userGroup.GET("/profile", userHandler.GetProfile)
				userGroup.PUT("/profile", userHandler.UpdateProfile)
				userGroup.PUT("/password", userHandler.ChangePassword)
			}

			accounts := protected.Group("/accounts")
			{
				accounts.GET("", accountHandler.ListAccounts)
				accounts.POST("", accountHandler.CreateAccount)
				accounts.POST("/test", accountHandler.TestConnectionDirect) // must be before /:id routes
				accounts.GET("/:id", accountHandler.GetAccount)
				accounts.PUT("/:id", accountHandler.UpdateAccount)
				accounts.DELETE("/:id", accountHandler.DeleteAccount)
				accounts.POST("/:id/test", accountHandler.TestConnection)
				accounts.PUT("/:id/enable", accountHandler.EnableAccount)
				accounts.PUT("/:id/disable", accountHandler.DisableAccount)
			}

			messages := protected.Group("/messages")
			{
				messages.GET("", messageHandler.ListMessages)
				messages.POST("/sync", messageHandler.SyncMessages)
				messages.GET("/:id", messageHandler.GetMessage)
				messages.PUT("/:id/read", messageHandler.MarkAsRead)
			}

			filingGroup := protected.Group("/filing")
			{
				filingGroup.POST("/suggest", filingHandler.Suggest)
				filingGroup.POST("/file", filingHandler.File)
				filingGroup.POST("/client-folders", filingHandler.CreateClientFolder)
				filingGroup.GET("/senders", filingHandler.ListSenderPaths)
				filingGroup.PUT("/senders", filingHandler.UpsertSenderPath)
				filingGroup.DELETE("/senders/:email", filingHandler.DeleteSenderPath)
			}

			settings := protected.Group("/settings")
			{
				settings.GET("", settingsHandler.GetGeneralSettings)
				settings.PUT("", settingsHandler.UpdateGeneralSettings)
				settings.GET("/folder-tree", settingsHandler.GetFolderTree)
				settings.POST("/folder-tree/nodes", settingsHandler.AddFolderNode)
				settings.PUT("/folder-tree/nodes/:id", settingsHandler.RenameFolderNode)
				settings.DELETE("/folder-tree/nodes/:id", settingsHandler.RemoveFolderNode)
			}

			logs := protected.Group("/logs")
			{
				logs.GET("", logHandler.QueryLogs)
				logs.GET("/recent", logHandler.GetRecentLogs)
			}

			oauthProtected := protected.Group("/oauth")
			{
				oauthProtected.GET("/google/auth", oauthHandler.GetGoogleAuthURL)
			}
		}
	}

	return router, authManager, nil
}

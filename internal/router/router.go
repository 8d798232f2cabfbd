// Package router assembles the HTTP surface of the API.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"fintrack/internal/cache"
	"fintrack/internal/handlers"
	"fintrack/internal/middleware"
	"fintrack/internal/services"

	_ "fintrack/internal/docs" // Register swagger docs
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Tokens       *middleware.JWTManager
	UserCache    cache.UserCache
	Users        services.UserServicer
	Transactions services.TransactionServicer
	Settings     services.SettingsServicer
	Dashboard    services.DashboardServicer
	Audit        services.AuditServicer

	UploadMaxBytes    int64
	CORSAllowedOrigin string
	// RequestLogging is off in tests to keep output quiet.
	RequestLogging bool
}

// New builds the gin engine with every route mounted under /api/v1.
func New(d Deps) *gin.Engine {
	authHandler := handlers.NewAuthHandler(d.Users, d.Tokens)
	transactionHandler := handlers.NewTransactionHandler(d.Transactions, d.Audit, d.UploadMaxBytes)
	dashboardHandler := handlers.NewDashboardHandler(d.Dashboard)
	settingsHandler := handlers.NewSettingsHandler(d.Settings, d.Audit)

	router := gin.New()
	if d.UploadMaxBytes > 0 {
		router.MaxMultipartMemory = d.UploadMaxBytes
	}
	router.Use(gin.Recovery())
	if d.RequestLogging {
		router.Use(middleware.RequestLogging())
	}
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(d.CORSAllowedOrigin))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(d.Tokens, d.Users, d.UserCache))
	admin := middleware.RequireAdmin()

	protected.GET("/auth/me", authHandler.Me)

	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.POST("", admin, transactionHandler.CreateTransaction)
	transactions.PUT("/:id", admin, transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", admin, transactionHandler.DeleteTransaction)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/summary", dashboardHandler.Summary)
	dashboard.GET("/statistics", dashboardHandler.Statistics)

	settings := protected.Group("/settings")
	settings.GET("", settingsHandler.GetSettings)
	settings.PUT("", admin, settingsHandler.UpdateSettings)

	return router
}

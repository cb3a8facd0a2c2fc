// Package server assembles the HTTP router shared by cmd/api and the
// end-to-end tests.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"splitease/internal/config"
	_ "splitease/internal/docs" // Import swagger docs
	"splitease/internal/handlers"
	"splitease/internal/metrics"
	"splitease/internal/middleware"
	"splitease/internal/services"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewRouter wires services and handlers onto a Gin engine.
func NewRouter(deps Deps) *gin.Engine {
	db := deps.DB
	cfg := deps.Config

	// Initialize services
	activityService := services.NewActivityService(db)
	userService := services.NewUserService(db)
	groupService := services.NewGroupService(db, activityService)
	categoryService := services.NewCategoryService(db)
	expenseService := services.NewExpenseService(db, activityService)
	balanceService := services.NewBalanceService(db)
	settlementService := services.NewSettlementService(db, activityService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	groupHandler := handlers.NewGroupHandler(groupService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	balanceHandler := handlers.NewBalanceHandler(balanceService)
	settlementHandler := handlers.NewSettlementHandler(settlementService)
	activityHandler := handlers.NewActivityHandler(activityService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics())
	}
	router.Use(cors())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	// Group routes
	groups := protected.Group("/groups")
	groups.POST("", groupHandler.CreateGroup)
	groups.GET("", groupHandler.ListGroups)
	groups.GET("/:id", groupHandler.GetGroup)
	groups.PUT("/:id", groupHandler.UpdateGroup)
	groups.DELETE("/:id", groupHandler.DeleteGroup)
	groups.GET("/:id/members", groupHandler.ListMembers)
	groups.POST("/:id/members", groupHandler.AddMember)
	groups.DELETE("/:id/members/:userId", groupHandler.RemoveMember)
	groups.POST("/:id/expenses", expenseHandler.CreateExpense)
	groups.GET("/:id/expenses", expenseHandler.ListGroupExpenses)
	groups.GET("/:id/balances", balanceHandler.GetGroupBalances)
	groups.GET("/:id/balances/me", balanceHandler.GetMyBalance)
	groups.POST("/:id/balances/recompute", balanceHandler.RecomputeBalances)
	groups.GET("/:id/settlements/preview", settlementHandler.PreviewSettlements)
	groups.POST("/:id/settlements/confirm", settlementHandler.ConfirmSettlements)
	groups.POST("/:id/settlements", settlementHandler.CreateSettlement)
	groups.GET("/:id/settlements", settlementHandler.ListSettlements)
	groups.GET("/:id/activities", activityHandler.ListGroupActivities)

	// Expense routes
	expenses := protected.Group("/expenses")
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	// Settlement routes
	settlements := protected.Group("/settlements")
	settlements.GET("/:id", settlementHandler.GetSettlement)
	settlements.POST("/:id/complete", settlementHandler.CompleteSettlement)

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/:id", categoryHandler.GetCategory)

	protected.GET("/balances/summary", balanceHandler.GetSummary)
	protected.GET("/activities", activityHandler.ListMyActivities)

	// Service routes
	internal := router.Group("/internal")
	internal.Use(middleware.ServiceKeyMiddleware(cfg.ServiceAPIKey))
	internal.POST("/groups/:id/recompute", balanceHandler.ServiceRecompute)
	internal.GET("/metrics", gin.WrapH(metrics.Handler()))

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

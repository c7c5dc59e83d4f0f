// Package server assembles services and handlers into the HTTP router.
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "pennywise/internal/docs" // swagger docs
	"pennywise/internal/events"
	"pennywise/internal/handlers"
	"pennywise/internal/middleware"
	"pennywise/internal/services"
)

// Deps are the long-lived collaborators the router needs.
type Deps struct {
	DB        *gorm.DB
	Currency  services.CurrencyNormalizer
	Knowledge services.KnowledgeServicer
	Publisher events.Publisher

	// AllowedOrigins restricts CORS; empty allows any origin.
	AllowedOrigins []string
}

// NewRouter builds the services and wires every route under /api/v1.
func NewRouter(deps Deps) *gin.Engine {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	// Services
	db := deps.DB
	reassignment := services.NewReassignmentService()
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db, reassignment)
	subcategoryService := services.NewSubcategoryService(db, reassignment)
	budgetService := services.NewBudgetService(db)
	transactionService := services.NewTransactionService(db, deps.Currency)
	recurringService := services.NewRecurringTransactionService(db, deps.Currency)
	overviewService := services.NewOverviewService(db)
	auditService := services.NewAuditService(db, publisher)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, categoryService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	subcategoryHandler := handlers.NewSubcategoryHandler(subcategoryService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	recurringHandler := handlers.NewRecurringTransactionHandler(recurringService, auditService)
	reportHandler := handlers.NewReportHandler(overviewService)
	currencyHandler := handlers.NewCurrencyHandler(deps.Currency)
	knowledgeHandler := handlers.NewKnowledgeHandler(deps.Knowledge)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(corsMiddleware(deps.AllowedOrigins))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	subcategories := protected.Group("/subcategories")
	subcategories.POST("", subcategoryHandler.CreateSubcategory)
	subcategories.GET("", subcategoryHandler.GetUserSubcategories)
	subcategories.GET("/:id", subcategoryHandler.GetSubcategoryByID)
	subcategories.PUT("/:id", subcategoryHandler.UpdateSubcategory)
	subcategories.DELETE("/:id", subcategoryHandler.DeleteSubcategory)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetUserBudgets)
	budgets.GET("/:id", budgetHandler.GetBudgetByID)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	recurring := protected.Group("/recurring-transactions")
	recurring.POST("", recurringHandler.CreateRecurringTransaction)
	recurring.GET("", recurringHandler.GetUserRecurringTransactions)
	recurring.GET("/:id", recurringHandler.GetRecurringTransactionByID)
	recurring.DELETE("/:id", recurringHandler.DeleteRecurringTransaction)

	reports := protected.Group("/reports")
	reports.GET("/overview", reportHandler.GetOverview)
	reports.GET("/overview/export", reportHandler.ExportOverview)

	protected.GET("/currencies", currencyHandler.GetCurrencies)

	knowledge := protected.Group("/knowledge")
	knowledge.POST("/query", knowledgeHandler.Query)
	knowledge.POST("/convert-currency", knowledgeHandler.ConvertCurrency)
	knowledge.POST("/analyze-budget", knowledgeHandler.AnalyzeBudget)

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AddAllowHeaders("Authorization")
	corsConfig.AddExposeHeaders("X-Request-ID", "Content-Disposition")
	return cors.New(corsConfig)
}

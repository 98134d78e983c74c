package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"centavo/internal/config"
	"centavo/internal/database"
	"centavo/internal/events"
	"centavo/internal/handlers"
	"centavo/internal/logger"
	"centavo/internal/middleware"
	"centavo/internal/services"
	"centavo/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "centavo/internal/docs" // Import swagger docs
)

// @title           Centavo API
// @version         1.0
// @description     Centavo tracks bank accounts, credit cards, invoices, and goals for personal and business finances.

// @host      localhost:8080
// @BasePath  /api/v1

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Event bus: Redis when configured, in-process otherwise
	var bus events.Bus
	if appConfig.RedisAddr != "" {
		bus, err = events.NewRedisBus(context.Background(), appConfig.RedisAddr)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Infof("Using Redis event bus at %s", appConfig.RedisAddr)
	} else {
		bus = events.NewMemoryBus()
		log.Info("Using in-process event bus")
	}
	defer func() {
		if err := bus.Close(); err != nil {
			log.Warnf("event bus close error: %v", err)
		}
	}()

	// Initialize services
	db := dbManager.DB()
	auditService := services.NewAuditService(db)
	accountService := services.NewAccountService(db, bus)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db, accountService, bus)
	cardService := services.NewCardService(db, bus)
	invoiceService := services.NewInvoiceService(db)
	paymentService := services.NewPaymentService(db, accountService, bus)
	goalService := services.NewGoalService(db, bus)

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(accountService, transactionService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	cardHandler := handlers.NewCardHandler(cardService, auditService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, paymentService, cardService, auditService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, auditService)
	goalHandler := handlers.NewGoalHandler(goalService, auditService)
	eventsHandler := handlers.NewEventsHandler(bus)

	// Initialize Gin router
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Change-event stream
	v1.GET("/events", eventsHandler.Stream)

	// Account routes
	accounts := v1.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.GET("/:id/transactions", accountHandler.GetAccountTransactions)

	// Transaction routes
	transactions := v1.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Category routes
	categories := v1.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Card routes
	cards := v1.Group("/cards")
	cards.POST("", cardHandler.CreateCard)
	cards.GET("", cardHandler.GetCards)
	cards.GET("/:id", cardHandler.GetCard)
	cards.PUT("/:id", cardHandler.UpdateCard)
	cards.DELETE("/:id", cardHandler.DeleteCard)
	cards.POST("/:id/purchases", cardHandler.CreatePurchase)
	cards.GET("/:id/invoice", invoiceHandler.GetInvoice)
	cards.GET("/:id/invoice/statement", invoiceHandler.GetStatement)
	cards.POST("/:id/invoice/pay", invoiceHandler.PayInvoice)

	// Payment routes
	payments := v1.Group("/payments")
	payments.GET("", paymentHandler.GetPayments)
	payments.GET("/:id", paymentHandler.GetPayment)
	payments.POST("/:id/reverse", paymentHandler.ReversePayment)

	// Goal routes
	goals := v1.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.GET("/progress", goalHandler.GetGoalsProgress)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)

	log.Infof("Starting Centavo API on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

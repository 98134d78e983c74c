package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"centavo/internal/events"
	"centavo/internal/handlers"
	"centavo/internal/logger"
	"centavo/internal/middleware"
	"centavo/internal/models"
	"centavo/internal/services"
	"centavo/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Bus    events.Bus
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integrationdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.Account{},
		&models.Card{},
		&models.Category{},
		&models.InvoiceItem{},
		&models.InvoicePayment{},
		&models.Transaction{},
		&models.Goal{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	bus := events.NewMemoryBus()
	t.Cleanup(func() { _ = bus.Close() })

	// Services
	auditService := services.NewAuditService(db)
	accountService := services.NewAccountService(db, bus)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db, accountService, bus)
	cardService := services.NewCardService(db, bus)
	invoiceService := services.NewInvoiceService(db)
	paymentService := services.NewPaymentService(db, accountService, bus)
	goalService := services.NewGoalService(db, bus)

	// Handlers
	accountHandler := handlers.NewAccountHandler(accountService, transactionService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	cardHandler := handlers.NewCardHandler(cardService, auditService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, paymentService, cardService, auditService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, auditService)
	goalHandler := handlers.NewGoalHandler(goalService, auditService)
	eventsHandler := handlers.NewEventsHandler(bus)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	v1.GET("/events", eventsHandler.Stream)

	accounts := v1.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.GET("/:id/transactions", accountHandler.GetAccountTransactions)

	transactions := v1.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	categories := v1.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

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

	payments := v1.Group("/payments")
	payments.GET("", paymentHandler.GetPayments)
	payments.GET("/:id", paymentHandler.GetPayment)
	payments.POST("/:id/reverse", paymentHandler.ReversePayment)

	goals := v1.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.GET("/progress", goalHandler.GetGoalsProgress)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)

	return &testApp{DB: db, Bus: bus, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// createAccount creates an account over HTTP and returns its ID.
func (app *testApp) createAccount(t *testing.T, name string, initialBalance int64) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"initial_balance":%d}`, name, initialBalance)
	rec := app.request("POST", "/api/v1/accounts", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	account := result["account"].(map[string]interface{})
	return account["id"].(string)
}

// createCard creates a card over HTTP and returns its ID.
func (app *testApp) createCard(t *testing.T, name, accountID string, creditLimit int64) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"credit_limit":%d,"closing_day":25,"due_day":5,"account_id":%q}`,
		name, creditLimit, accountID)
	rec := app.request("POST", "/api/v1/cards", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create card failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	card := result["card"].(map[string]interface{})
	return card["id"].(string)
}

// accountBalance reads an account's balance over HTTP.
func (app *testApp) accountBalance(t *testing.T, accountID string) int64 {
	t.Helper()
	rec := app.request("GET", "/api/v1/accounts/"+accountID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get account failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	account := result["account"].(map[string]interface{})
	return int64(account["balance"].(float64))
}

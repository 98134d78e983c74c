package services

import (
	"time"

	"gorm.io/gorm"

	"centavo/internal/models"
	"centavo/internal/pagination"
)

// AccountUpdateFields holds optional account fields for partial updates.
type AccountUpdateFields struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// AccountServicer defines the contract for bank-account business logic.
type AccountServicer interface {
	CreateAccount(name, description string, scope models.Scope, currency string, initialBalance int64) (*models.Account, error)
	GetAccounts(scope *models.Scope, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(accountID string) (*models.Account, error)
	UpdateAccount(accountID string, fields AccountUpdateFields) (*models.Account, error)
	// ApplyBalanceChange adjusts the materialized balance inside the caller's
	// database transaction. Income adds, expense subtracts; a debit that
	// would overdraw the account fails with ErrInsufficientBalance.
	ApplyBalanceChange(tx *gorm.DB, account *models.Account, transactionType models.TransactionType, amount int64) error
}

// CardUpdateFields holds optional card fields for partial updates.
type CardUpdateFields struct {
	Name        *string
	CreditLimit *int64
	ClosingDay  *int
	DueDay      *int
	AccountID   *string
	Color       *string
	IsActive    *bool
}

// PurchaseInput describes a card purchase, possibly split into installments.
type PurchaseInput struct {
	Description  string
	Amount       int64
	Date         time.Time
	Installments int
	CategoryID   *string
}

// CardSummary is a card together with its aggregate limit figures.
type CardSummary struct {
	models.Card
	LimitUsed      int64 `json:"limit_used"`
	LimitAvailable int64 `json:"limit_available"`
}

// CardServicer defines the contract for card business logic.
type CardServicer interface {
	CreateCard(name string, scope models.Scope, creditLimit int64, closingDay, dueDay int, accountID, color string) (*models.Card, error)
	GetCards(scope *models.Scope, page pagination.PageRequest) (*pagination.PageResponse[CardSummary], error)
	GetCardByID(cardID string) (*models.Card, error)
	UpdateCard(cardID string, fields CardUpdateFields) (*models.Card, error)
	// DeleteCard removes a card, downgrading to deactivation when invoice
	// items or payments still reference it. Returns true when deactivated
	// rather than deleted.
	DeleteCard(cardID string) (bool, error)
	CreatePurchase(cardID string, input PurchaseInput) ([]models.InvoiceItem, error)
}

// Invoice aggregates one card's line items for a statement month.
type Invoice struct {
	CardID         string               `json:"card_id"`
	StatementMonth string               `json:"statement_month"`
	Items          []models.InvoiceItem `json:"items"`
	Total          int64                `json:"total"`
	TotalPaid      int64                `json:"total_paid"`
	PaidCount      int                  `json:"paid_count"`
	IsPaid         bool                 `json:"is_paid"`
	PaymentDate    *time.Time           `json:"payment_date,omitempty"`
	LimitUsed      int64                `json:"limit_used"`
	LimitAvailable int64                `json:"limit_available"`
}

// InvoiceServicer reads invoices. Read-only and safe to call repeatedly.
type InvoiceServicer interface {
	GetInvoice(cardID, statementMonth string) (*Invoice, error)
}

// PaymentServicer defines the contract for invoice payment and reversal.
// Each operation is a single database transaction.
type PaymentServicer interface {
	// PayInvoice pays every pending item of the card's statement month.
	PayInvoice(cardID, accountID, statementMonth string, paymentDate time.Time) (*models.InvoicePayment, error)
	// PayInvoiceItems pays only the given pending items of the month.
	PayInvoiceItems(cardID, accountID, statementMonth string, itemIDs []string, paymentDate time.Time) (*models.InvoicePayment, error)
	// ReversePayment undoes a payment: items back to pending, ledger entry
	// removed, account credited.
	ReversePayment(paymentID string) (*models.InvoicePayment, error)
	GetPaymentByID(paymentID string) (*models.InvoicePayment, error)
	GetPayments(cardID, statementMonth *string, page pagination.PageRequest) (*pagination.PageResponse[models.InvoicePayment], error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
	MinAmount  *int64
	MaxAmount  *int64
	Scope      *models.Scope
}

// TransactionServicer defines the contract for ledger transactions.
type TransactionServicer interface {
	CreateTransaction(accountID string, categoryID *string, transactionType models.TransactionType, amount int64, description string, date time.Time, scope models.Scope) (*models.Transaction, error)
	GetAccountTransactions(accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(transactionID string) (*models.Transaction, error)
	DeleteTransaction(transactionID string) error
}

// CategoryServicer defines the contract for category business logic.
type CategoryServicer interface {
	CreateCategory(name string, categoryType models.CategoryType, description, icon, color string) (*models.Category, error)
	GetCategories(page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(categoryID string) (*models.Category, error)
	UpdateCategory(categoryID string, name, description, icon, color string) (*models.Category, error)
	DeleteCategory(categoryID string) error
}

// GoalUpdateFields holds optional goal fields for partial updates.
type GoalUpdateFields struct {
	Name        *string
	AmountLimit *int64
	StartDate   *time.Time
	EndDate     *time.Time
	IsActive    *bool
}

// GoalProgress is a goal with its recomputed progress and classification.
type GoalProgress struct {
	Goal       models.Goal       `json:"goal"`
	Current    int64             `json:"current"`
	Percentage float64           `json:"percentage"`
	Status     models.GoalStatus `json:"status"`
}

// GoalServicer defines the contract for goal business logic.
type GoalServicer interface {
	CreateGoal(name string, goalType models.GoalType, categoryID *string, amountLimit int64, startDate, endDate time.Time, scope models.Scope) (*models.Goal, error)
	GetGoals(scope *models.Scope, page pagination.PageRequest) (*pagination.PageResponse[models.Goal], error)
	GetGoalByID(goalID string) (*models.Goal, error)
	UpdateGoal(goalID string, fields GoalUpdateFields) (*models.Goal, error)
	DeleteGoal(goalID string) error
	// GetGoalsProgress computes progress for every active goal with grouped
	// aggregate queries rather than one query per goal.
	GetGoalsProgress(scope *models.Scope) ([]GoalProgress, error)
	GetGoalProgress(goalID string) (*GoalProgress, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}

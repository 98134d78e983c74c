package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"centavo/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestAccount creates a personal bank account with the given balance
// (in cents).
func CreateTestAccount(t *testing.T, db *gorm.DB, balance int64) *models.Account {
	t.Helper()

	account := &models.Account{
		Name:     fmt.Sprintf("Test Account %d", nextID()),
		Scope:    models.ScopePersonal,
		Balance:  balance,
		Currency: "BRL",
		IsActive: true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCard creates an active card linked to the given account.
func CreateTestCard(t *testing.T, db *gorm.DB, accountID string, creditLimit int64) *models.Card {
	t.Helper()

	card := &models.Card{
		Name:        fmt.Sprintf("Test Card %d", nextID()),
		Scope:       models.ScopePersonal,
		CreditLimit: creditLimit,
		ClosingDay:  25,
		DueDay:      5,
		AccountID:   accountID,
		Color:       "#6633cc",
		IsActive:    true,
	}
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("failed to create test card: %v", err)
	}
	return card
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		Name: fmt.Sprintf("Test Category %d", nextID()),
		Type: categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestInvoiceItem creates a pending invoice item for the given card
// and statement month (YYYY-MM), with the given amount in cents.
func CreateTestInvoiceItem(t *testing.T, db *gorm.DB, cardID, statementMonth string, amount int64) *models.InvoiceItem {
	t.Helper()

	month, err := time.Parse(models.StatementMonthLayout, statementMonth)
	if err != nil {
		t.Fatalf("invalid statement month %q: %v", statementMonth, err)
	}

	item := &models.InvoiceItem{
		CardID:         cardID,
		StatementMonth: statementMonth,
		Description:    fmt.Sprintf("Test Purchase %d", nextID()),
		Amount:         amount,
		DueDate:        month.AddDate(0, 1, 4),
		Status:         models.InvoiceItemStatusPending,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test invoice item: %v", err)
	}
	return item
}

// CreateTestTransaction creates a transaction of the given type and amount
// (in cents), dated now.
func CreateTestTransaction(t *testing.T, db *gorm.DB, accountID string, txType models.TransactionType, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		AccountID: accountID,
		Type:      txType,
		Amount:    amount,
		Date:      time.Now(),
		Scope:     models.ScopePersonal,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestGoal creates an active goal spanning the given date range.
func CreateTestGoal(t *testing.T, db *gorm.DB, goalType models.GoalType, categoryID *string, limit int64, start, end time.Time) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		Name:        fmt.Sprintf("Test Goal %d", nextID()),
		Type:        goalType,
		CategoryID:  categoryID,
		AmountLimit: limit,
		StartDate:   start,
		EndDate:     end,
		Scope:       models.ScopePersonal,
		IsActive:    true,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

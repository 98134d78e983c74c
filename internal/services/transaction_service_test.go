package services

import (
	"testing"
	"time"

	"centavo/internal/events"
	"centavo/internal/models"
	"centavo/internal/testutil"

	"gorm.io/gorm"
)

func transactionTestStack(t *testing.T) (*gorm.DB, TransactionServicer, AccountServicer) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	bus := events.NewMemoryBus()
	t.Cleanup(func() { _ = bus.Close() })

	accountSvc := NewAccountService(db, bus)
	return db, NewTransactionService(db, accountSvc, bus), accountSvc
}

func TestCreateTransaction(t *testing.T) {
	t.Run("income_increases_balance", func(t *testing.T) {
		db, svc, accountSvc := transactionTestStack(t)
		account := testutil.CreateTestAccount(t, db, 100000)

		tx, err := svc.CreateTransaction(account.ID, nil, models.TransactionTypeIncome, 25000, "Salary", time.Now(), models.ScopePersonal)
		testutil.AssertNoError(t, err)
		if tx.ID == "" {
			t.Fatal("expected transaction ID to be set")
		}

		updated, err := accountSvc.GetAccountByID(account.ID)
		testutil.AssertNoError(t, err)
		if updated.Balance != 125000 {
			t.Errorf("expected balance 125000, got %d", updated.Balance)
		}
	})

	t.Run("expense_decreases_balance", func(t *testing.T) {
		db, svc, accountSvc := transactionTestStack(t)
		account := testutil.CreateTestAccount(t, db, 100000)

		_, err := svc.CreateTransaction(account.ID, nil, models.TransactionTypeExpense, 40000, "Rent", time.Now(), models.ScopePersonal)
		testutil.AssertNoError(t, err)

		updated, err := accountSvc.GetAccountByID(account.ID)
		testutil.AssertNoError(t, err)
		if updated.Balance != 60000 {
			t.Errorf("expected balance 60000, got %d", updated.Balance)
		}
	})

	t.Run("expense_exceeding_balance_refused", func(t *testing.T) {
		db, svc, _ := transactionTestStack(t)
		account := testutil.CreateTestAccount(t, db, 1000)

		_, err := svc.CreateTransaction(account.ID, nil, models.TransactionTypeExpense, 5000, "Too big", time.Now(), models.ScopePersonal)
		testutil.AssertAppError(t, err, "INSUFFICIENT_BALANCE")
		testutil.AssertBalance(t, db, account.ID, 1000)

		var count int64
		if err := db.Model(&models.Transaction{}).Where("account_id = ?", account.ID).Count(&count).Error; err != nil {
			t.Fatalf("failed to count transactions: %v", err)
		}
		if count != 0 {
			t.Errorf("expected no ledger entry after refused expense, got %d", count)
		}
	})

	t.Run("scope_defaults_to_account_scope", func(t *testing.T) {
		db, svc, _ := transactionTestStack(t)
		account := testutil.CreateTestAccount(t, db, 0)

		tx, err := svc.CreateTransaction(account.ID, nil, models.TransactionTypeIncome, 1000, "", time.Now(), "")
		testutil.AssertNoError(t, err)
		if tx.Scope != account.Scope {
			t.Errorf("expected scope %s, got %s", account.Scope, tx.Scope)
		}
	})

	t.Run("zero_amount_rejected", func(t *testing.T) {
		db, svc, _ := transactionTestStack(t)
		account := testutil.CreateTestAccount(t, db, 0)

		_, err := svc.CreateTransaction(account.ID, nil, models.TransactionTypeIncome, 0, "", time.Now(), models.ScopePersonal)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_account", func(t *testing.T) {
		_, svc, _ := transactionTestStack(t)

		_, err := svc.CreateTransaction("00000000-0000-0000-0000-000000000000", nil, models.TransactionTypeIncome, 1000, "", time.Now(), models.ScopePersonal)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("unknown_category", func(t *testing.T) {
		db, svc, _ := transactionTestStack(t)
		account := testutil.CreateTestAccount(t, db, 0)

		missing := "00000000-0000-0000-0000-000000000000"
		_, err := svc.CreateTransaction(account.ID, &missing, models.TransactionTypeIncome, 1000, "", time.Now(), models.ScopePersonal)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestGetTransactions(t *testing.T) {
	t.Run("filters_by_type_and_amount", func(t *testing.T) {
		db, svc, _ := transactionTestStack(t)
		account := testutil.CreateTestAccount(t, db, 0)
		testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeIncome, 5000)
		testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeExpense, 3000)
		testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeExpense, 9000)

		expense := models.TransactionTypeExpense
		minAmount := int64(5000)
		result, err := svc.GetTransactions(paginationDefaults(), TransactionFilter{
			Type:      &expense,
			MinAmount: &minAmount,
		})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Fatalf("expected 1 transaction, got %d", result.TotalItems)
		}
		if result.Data[0].Amount != 9000 {
			t.Errorf("expected amount 9000, got %d", result.Data[0].Amount)
		}
	})

	t.Run("account_scoped_listing", func(t *testing.T) {
		db, svc, _ := transactionTestStack(t)
		first := testutil.CreateTestAccount(t, db, 0)
		second := testutil.CreateTestAccount(t, db, 0)
		testutil.CreateTestTransaction(t, db, first.ID, models.TransactionTypeIncome, 1000)
		testutil.CreateTestTransaction(t, db, second.ID, models.TransactionTypeIncome, 2000)

		result, err := svc.GetAccountTransactions(first.ID, paginationDefaults(), TransactionFilter{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 transaction for first account, got %d", result.TotalItems)
		}
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("restores_balance", func(t *testing.T) {
		db, svc, accountSvc := transactionTestStack(t)
		account := testutil.CreateTestAccount(t, db, 100000)

		tx, err := svc.CreateTransaction(account.ID, nil, models.TransactionTypeExpense, 30000, "Groceries", time.Now(), models.ScopePersonal)
		testutil.AssertNoError(t, err)

		err = svc.DeleteTransaction(tx.ID)
		testutil.AssertNoError(t, err)

		updated, err := accountSvc.GetAccountByID(account.ID)
		testutil.AssertNoError(t, err)
		if updated.Balance != 100000 {
			t.Errorf("expected balance back at 100000, got %d", updated.Balance)
		}

		_, err = svc.GetTransactionByID(tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("payment_entry_refused", func(t *testing.T) {
		db, svc, _ := transactionTestStack(t)
		account := testutil.CreateTestAccount(t, db, 0)

		paymentID := "11111111-1111-1111-1111-111111111111"
		entry := &models.Transaction{
			AccountID:        account.ID,
			Type:             models.TransactionTypeExpense,
			Amount:           5000,
			Date:             time.Now(),
			Scope:            models.ScopePersonal,
			InvoicePaymentID: &paymentID,
		}
		if err := db.Create(entry).Error; err != nil {
			t.Fatalf("failed to create payment entry: %v", err)
		}

		err := svc.DeleteTransaction(entry.ID)
		testutil.AssertAppError(t, err, "PAYMENT_ENTRY_IMMUTABLE")
	})

	t.Run("unknown_transaction", func(t *testing.T) {
		_, svc, _ := transactionTestStack(t)

		err := svc.DeleteTransaction("00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

package services

import (
	"testing"

	"centavo/internal/events"
	"centavo/internal/models"
	"centavo/internal/testutil"

	"gorm.io/gorm"
)

func accountTestStack(t *testing.T) (*gorm.DB, AccountServicer) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	bus := events.NewMemoryBus()
	t.Cleanup(func() { _ = bus.Close() })

	return db, NewAccountService(db, bus)
}

func TestCreateAccount(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		_, svc := accountTestStack(t)

		account, err := svc.CreateAccount("Checking", "day to day", models.ScopePersonal, "BRL", 0)
		testutil.AssertNoError(t, err)

		if account.ID == "" {
			t.Fatal("expected account ID to be set")
		}
		if account.Currency != "BRL" || !account.IsActive {
			t.Errorf("unexpected account fields: %+v", account)
		}
	})

	t.Run("initial_balance_writes_ledger_entry", func(t *testing.T) {
		db, svc := accountTestStack(t)

		account, err := svc.CreateAccount("Savings", "", models.ScopePersonal, "BRL", 150000)
		testutil.AssertNoError(t, err)
		if account.Balance != 150000 {
			t.Errorf("expected balance 150000, got %d", account.Balance)
		}

		var entries []models.Transaction
		if err := db.Where("account_id = ?", account.ID).Find(&entries).Error; err != nil {
			t.Fatalf("failed to load transactions: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 ledger entry, got %d", len(entries))
		}
		if entries[0].Type != models.TransactionTypeIncome || entries[0].Amount != 150000 {
			t.Errorf("unexpected ledger entry: %+v", entries[0])
		}
	})

	t.Run("zero_balance_writes_no_entry", func(t *testing.T) {
		db, svc := accountTestStack(t)

		account, err := svc.CreateAccount("Empty", "", models.ScopeBusiness, "BRL", 0)
		testutil.AssertNoError(t, err)

		var count int64
		if err := db.Model(&models.Transaction{}).Where("account_id = ?", account.ID).Count(&count).Error; err != nil {
			t.Fatalf("failed to count transactions: %v", err)
		}
		if count != 0 {
			t.Errorf("expected no ledger entries, got %d", count)
		}
	})

	t.Run("empty_name_rejected", func(t *testing.T) {
		_, svc := accountTestStack(t)

		_, err := svc.CreateAccount("", "", models.ScopePersonal, "BRL", 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("defaults_applied", func(t *testing.T) {
		_, svc := accountTestStack(t)

		account, err := svc.CreateAccount("Defaulted", "", "", "", 0)
		testutil.AssertNoError(t, err)
		if account.Scope != models.ScopePersonal {
			t.Errorf("expected personal scope, got %s", account.Scope)
		}
		if account.Currency != "BRL" {
			t.Errorf("expected BRL currency, got %s", account.Currency)
		}
	})
}

func TestGetAccounts(t *testing.T) {
	t.Run("excludes_inactive", func(t *testing.T) {
		db, svc := accountTestStack(t)
		active := testutil.CreateTestAccount(t, db, 0)
		inactive := testutil.CreateTestAccount(t, db, 0)
		if err := db.Model(inactive).Update("is_active", false).Error; err != nil {
			t.Fatalf("failed to deactivate account: %v", err)
		}

		result, err := svc.GetAccounts(nil, paginationDefaults())
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Fatalf("expected 1 account, got %d", result.TotalItems)
		}
		if result.Data[0].ID != active.ID {
			t.Error("expected only the active account")
		}
	})

	t.Run("filters_by_scope", func(t *testing.T) {
		db, svc := accountTestStack(t)
		testutil.CreateTestAccount(t, db, 0) // personal

		business := models.ScopeBusiness
		result, err := svc.GetAccounts(&business, paginationDefaults())
		testutil.AssertNoError(t, err)
		if result.TotalItems != 0 {
			t.Errorf("expected no business accounts, got %d", result.TotalItems)
		}
	})
}

func TestUpdateAccount(t *testing.T) {
	t.Run("partial_update", func(t *testing.T) {
		db, svc := accountTestStack(t)
		account := testutil.CreateTestAccount(t, db, 5000)

		name := "Renamed"
		updated, err := svc.UpdateAccount(account.ID, AccountUpdateFields{Name: &name})
		testutil.AssertNoError(t, err)
		if updated.Name != "Renamed" {
			t.Errorf("expected renamed account, got %s", updated.Name)
		}
		if updated.Balance != 5000 {
			t.Errorf("expected balance untouched at 5000, got %d", updated.Balance)
		}
	})

	t.Run("unknown_account", func(t *testing.T) {
		_, svc := accountTestStack(t)

		name := "Nope"
		_, err := svc.UpdateAccount("00000000-0000-0000-0000-000000000000", AccountUpdateFields{Name: &name})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestApplyBalanceChange(t *testing.T) {
	t.Run("rejects_unknown_type", func(t *testing.T) {
		db, svc := accountTestStack(t)
		account := testutil.CreateTestAccount(t, db, 1000)

		err := svc.ApplyBalanceChange(db, account, models.TransactionType("transfer"), 500)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("debit_is_relative_to_stored_balance", func(t *testing.T) {
		db, svc := accountTestStack(t)
		account := testutil.CreateTestAccount(t, db, 100000)

		// Another writer changes the stored balance after our snapshot was
		// taken. The debit must apply to the stored value, not the snapshot.
		if err := db.Model(&models.Account{}).Where("id = ?", account.ID).
			Update("balance", int64(40000)).Error; err != nil {
			t.Fatalf("failed to update balance out of band: %v", err)
		}

		err := svc.ApplyBalanceChange(db, account, models.TransactionTypeExpense, 10000)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, db, account.ID, 30000)
	})

	t.Run("overdraw_refused", func(t *testing.T) {
		db, svc := accountTestStack(t)
		account := testutil.CreateTestAccount(t, db, 5000)

		err := svc.ApplyBalanceChange(db, account, models.TransactionTypeExpense, 10000)
		testutil.AssertAppError(t, err, "INSUFFICIENT_BALANCE")
		testutil.AssertBalance(t, db, account.ID, 5000)
	})
}

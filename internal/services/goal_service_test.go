package services

import (
	"testing"
	"time"

	"centavo/internal/events"
	"centavo/internal/models"
	"centavo/internal/testutil"

	"gorm.io/gorm"
)

func goalTestStack(t *testing.T) (*gorm.DB, GoalServicer) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	bus := events.NewMemoryBus()
	t.Cleanup(func() { _ = bus.Close() })

	return db, NewGoalService(db, bus)
}

// addLedgerEntry inserts a transaction row directly, bypassing balance logic,
// so goal aggregation can be exercised in isolation.
func addLedgerEntry(t *testing.T, db *gorm.DB, accountID string, txType models.TransactionType, amount int64, date time.Time, categoryID *string) {
	t.Helper()
	entry := &models.Transaction{
		AccountID:  accountID,
		CategoryID: categoryID,
		Type:       txType,
		Amount:     amount,
		Date:       date,
		Scope:      models.ScopePersonal,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create ledger entry: %v", err)
	}
}

func TestCreateGoal(t *testing.T) {
	start := time.Now().AddDate(0, 0, -10)
	end := time.Now().AddDate(0, 1, 0)

	t.Run("valid_general_goal", func(t *testing.T) {
		_, svc := goalTestStack(t)

		goal, err := svc.CreateGoal("Save for trip", models.GoalTypeIncome, nil, 100000, start, end, models.ScopePersonal)
		testutil.AssertNoError(t, err)
		if goal.ID == "" {
			t.Fatal("expected goal ID to be set")
		}
		if !goal.IsActive {
			t.Error("expected goal to be active")
		}
	})

	t.Run("category_type_must_match_goal_type", func(t *testing.T) {
		db, svc := goalTestStack(t)
		category := testutil.CreateTestCategory(t, db, models.CategoryTypeIncome)

		_, err := svc.CreateGoal("Dining cap", models.GoalTypeExpense, &category.ID, 50000, start, end, models.ScopePersonal)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("end_before_start_rejected", func(t *testing.T) {
		_, svc := goalTestStack(t)

		_, err := svc.CreateGoal("Backwards", models.GoalTypeExpense, nil, 50000, end, start, models.ScopePersonal)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_category", func(t *testing.T) {
		_, svc := goalTestStack(t)

		missing := "00000000-0000-0000-0000-000000000000"
		_, err := svc.CreateGoal("Orphan", models.GoalTypeExpense, &missing, 50000, start, end, models.ScopePersonal)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestGetGoalsProgress(t *testing.T) {
	t.Run("general_goal_sums_matching_transactions", func(t *testing.T) {
		db, svc := goalTestStack(t)
		account := testutil.CreateTestAccount(t, db, 0)

		start := time.Now().AddDate(0, 0, -10)
		end := time.Now().AddDate(0, 0, 10)
		goal := testutil.CreateTestGoal(t, db, models.GoalTypeExpense, nil, 100000, start, end)

		addLedgerEntry(t, db, account.ID, models.TransactionTypeExpense, 30000, time.Now(), nil)
		addLedgerEntry(t, db, account.ID, models.TransactionTypeExpense, 20000, time.Now(), nil)
		// Income and out-of-range entries must not count.
		addLedgerEntry(t, db, account.ID, models.TransactionTypeIncome, 99999, time.Now(), nil)
		addLedgerEntry(t, db, account.ID, models.TransactionTypeExpense, 77777, start.AddDate(0, 0, -5), nil)

		progress, err := svc.GetGoalsProgress(nil)
		testutil.AssertNoError(t, err)

		if len(progress) != 1 {
			t.Fatalf("expected 1 goal, got %d", len(progress))
		}
		p := progress[0]
		if p.Goal.ID != goal.ID {
			t.Fatalf("unexpected goal in progress list")
		}
		if p.Current != 50000 {
			t.Errorf("expected current 50000, got %d", p.Current)
		}
		if p.Percentage != 50 {
			t.Errorf("expected 50%%, got %v", p.Percentage)
		}
		if p.Status != models.GoalStatusActive {
			t.Errorf("expected active status, got %s", p.Status)
		}
	})

	t.Run("category_goal_ignores_other_categories", func(t *testing.T) {
		db, svc := goalTestStack(t)
		account := testutil.CreateTestAccount(t, db, 0)
		dining := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)
		other := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

		start := time.Now().AddDate(0, 0, -10)
		end := time.Now().AddDate(0, 0, 10)
		testutil.CreateTestGoal(t, db, models.GoalTypeExpense, &dining.ID, 40000, start, end)

		addLedgerEntry(t, db, account.ID, models.TransactionTypeExpense, 15000, time.Now(), &dining.ID)
		addLedgerEntry(t, db, account.ID, models.TransactionTypeExpense, 25000, time.Now(), &other.ID)
		addLedgerEntry(t, db, account.ID, models.TransactionTypeExpense, 10000, time.Now(), nil)

		progress, err := svc.GetGoalsProgress(nil)
		testutil.AssertNoError(t, err)

		if len(progress) != 1 {
			t.Fatalf("expected 1 goal, got %d", len(progress))
		}
		if progress[0].Current != 15000 {
			t.Errorf("expected current 15000, got %d", progress[0].Current)
		}
	})

	t.Run("expense_over_limit_fails_even_before_end", func(t *testing.T) {
		db, svc := goalTestStack(t)
		account := testutil.CreateTestAccount(t, db, 0)

		start := time.Now().AddDate(0, 0, -10)
		end := time.Now().AddDate(0, 1, 0) // still running
		testutil.CreateTestGoal(t, db, models.GoalTypeExpense, nil, 100000, start, end)

		addLedgerEntry(t, db, account.ID, models.TransactionTypeExpense, 120000, time.Now(), nil)

		progress, err := svc.GetGoalsProgress(nil)
		testutil.AssertNoError(t, err)
		if progress[0].Status != models.GoalStatusFailed {
			t.Errorf("expected failed status, got %s", progress[0].Status)
		}
	})

	t.Run("expense_under_limit_completes_after_end", func(t *testing.T) {
		db, svc := goalTestStack(t)
		account := testutil.CreateTestAccount(t, db, 0)

		start := time.Now().AddDate(0, -2, 0)
		end := time.Now().AddDate(0, 0, -1) // already over
		testutil.CreateTestGoal(t, db, models.GoalTypeExpense, nil, 100000, start, end)

		addLedgerEntry(t, db, account.ID, models.TransactionTypeExpense, 60000, time.Now().AddDate(0, -1, 0), nil)

		progress, err := svc.GetGoalsProgress(nil)
		testutil.AssertNoError(t, err)
		if progress[0].Status != models.GoalStatusCompleted {
			t.Errorf("expected completed status, got %s", progress[0].Status)
		}
	})

	t.Run("income_reaching_target_completes_before_end", func(t *testing.T) {
		db, svc := goalTestStack(t)
		account := testutil.CreateTestAccount(t, db, 0)

		start := time.Now().AddDate(0, 0, -10)
		end := time.Now().AddDate(0, 1, 0)
		testutil.CreateTestGoal(t, db, models.GoalTypeIncome, nil, 100000, start, end)

		addLedgerEntry(t, db, account.ID, models.TransactionTypeIncome, 100000, time.Now(), nil)

		progress, err := svc.GetGoalsProgress(nil)
		testutil.AssertNoError(t, err)
		if progress[0].Status != models.GoalStatusCompleted {
			t.Errorf("expected completed status, got %s", progress[0].Status)
		}
	})

	t.Run("income_short_of_target_fails_after_end", func(t *testing.T) {
		db, svc := goalTestStack(t)
		account := testutil.CreateTestAccount(t, db, 0)

		start := time.Now().AddDate(0, -2, 0)
		end := time.Now().AddDate(0, 0, -1)
		testutil.CreateTestGoal(t, db, models.GoalTypeIncome, nil, 100000, start, end)

		addLedgerEntry(t, db, account.ID, models.TransactionTypeIncome, 40000, time.Now().AddDate(0, -1, 0), nil)

		progress, err := svc.GetGoalsProgress(nil)
		testutil.AssertNoError(t, err)
		p := progress[0]
		if p.Status != models.GoalStatusFailed {
			t.Errorf("expected failed status, got %s", p.Status)
		}
		if p.Percentage != 40 {
			t.Errorf("expected 40%%, got %v", p.Percentage)
		}
	})

	t.Run("deleted_transactions_do_not_count", func(t *testing.T) {
		db, svc := goalTestStack(t)
		account := testutil.CreateTestAccount(t, db, 0)

		start := time.Now().AddDate(0, 0, -10)
		end := time.Now().AddDate(0, 1, 0)
		testutil.CreateTestGoal(t, db, models.GoalTypeExpense, nil, 100000, start, end)

		entry := testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeExpense, 30000)
		if err := db.Delete(entry).Error; err != nil {
			t.Fatalf("failed to soft-delete transaction: %v", err)
		}

		progress, err := svc.GetGoalsProgress(nil)
		testutil.AssertNoError(t, err)
		if progress[0].Current != 0 {
			t.Errorf("expected current 0 after soft delete, got %d", progress[0].Current)
		}
	})
}

func TestGetGoalProgress(t *testing.T) {
	t.Run("single_goal", func(t *testing.T) {
		db, svc := goalTestStack(t)
		account := testutil.CreateTestAccount(t, db, 0)

		start := time.Now().AddDate(0, 0, -10)
		end := time.Now().AddDate(0, 1, 0)
		goal := testutil.CreateTestGoal(t, db, models.GoalTypeExpense, nil, 80000, start, end)
		addLedgerEntry(t, db, account.ID, models.TransactionTypeExpense, 20000, time.Now(), nil)

		p, err := svc.GetGoalProgress(goal.ID)
		testutil.AssertNoError(t, err)
		if p.Current != 20000 || p.Percentage != 25 {
			t.Errorf("unexpected progress: current=%d percentage=%v", p.Current, p.Percentage)
		}
	})

	t.Run("unknown_goal", func(t *testing.T) {
		_, svc := goalTestStack(t)

		_, err := svc.GetGoalProgress("00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "GOAL_NOT_FOUND")
	})
}

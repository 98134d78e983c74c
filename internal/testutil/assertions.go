package testutil

import (
	"errors"
	"testing"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"

	"gorm.io/gorm"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertBalance reloads the account and fails when its stored balance
// (in cents) differs from want. Payment and reversal tests lean on this
// after every money movement.
func AssertBalance(t *testing.T, db *gorm.DB, accountID string, want int64) {
	t.Helper()

	var account models.Account
	if err := db.First(&account, "id = ?", accountID).Error; err != nil {
		t.Fatalf("failed to reload account %s: %v", accountID, err)
	}
	if account.Balance != want {
		t.Errorf("expected balance %d, got %d", want, account.Balance)
	}
}

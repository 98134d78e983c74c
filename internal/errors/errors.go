// Package errors provides custom error types for the Centavo API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Account errors.
var (
	ErrAccountNotFound = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
)

// Card errors.
var (
	ErrCardNotFound = &AppError{Code: "CARD_NOT_FOUND", Message: "Card not found", StatusCode: http.StatusNotFound}
	ErrCardInactive = &AppError{Code: "CARD_INACTIVE", Message: "Card is deactivated", StatusCode: http.StatusConflict}
)

// Category errors.
var (
	ErrCategoryNotFound = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryInUse    = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing records", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound   = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInsufficientBalance   = &AppError{Code: "INSUFFICIENT_BALANCE", Message: "Insufficient account balance", StatusCode: http.StatusBadRequest}
	ErrPaymentEntryImmutable = &AppError{Code: "PAYMENT_ENTRY_IMMUTABLE", Message: "Invoice payment entries can only be removed by reversing the payment", StatusCode: http.StatusConflict}
)

// Invoice and payment errors.
var (
	ErrInvoiceItemNotFound    = &AppError{Code: "INVOICE_ITEM_NOT_FOUND", Message: "Invoice item not found", StatusCode: http.StatusNotFound}
	ErrNoPendingItems         = &AppError{Code: "NO_PENDING_ITEMS", Message: "No pending items for this statement month", StatusCode: http.StatusBadRequest}
	ErrItemNotPayable         = &AppError{Code: "ITEM_NOT_PAYABLE", Message: "One or more items cannot be paid", StatusCode: http.StatusBadRequest}
	ErrInvoiceAlreadyPaid     = &AppError{Code: "INVOICE_ALREADY_PAID", Message: "Invoice is already paid for this month", StatusCode: http.StatusConflict}
	ErrPaymentNotFound        = &AppError{Code: "PAYMENT_NOT_FOUND", Message: "Invoice payment not found", StatusCode: http.StatusNotFound}
	ErrPaymentAlreadyReversed = &AppError{Code: "PAYMENT_ALREADY_REVERSED", Message: "Invoice payment has already been reversed", StatusCode: http.StatusConflict}
	ErrPaymentAmountMismatch  = &AppError{Code: "PAYMENT_AMOUNT_MISMATCH", Message: "Paid items no longer match the recorded payment amount", StatusCode: http.StatusConflict}
	ErrStatementFormatUnknown = &AppError{Code: "STATEMENT_FORMAT_UNKNOWN", Message: "Unsupported statement export format", StatusCode: http.StatusBadRequest}
)

// Goal errors.
var (
	ErrGoalNotFound = &AppError{Code: "GOAL_NOT_FOUND", Message: "Goal not found", StatusCode: http.StatusNotFound}
)

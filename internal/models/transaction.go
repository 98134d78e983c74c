package models

import "time"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction is a realized, dated money movement against an account.
// InvoicePaymentID links the ledger entry written by an invoice payment to
// its payment event; such entries can only be removed through reversal.
type Transaction struct {
	Base
	AccountID   string          `gorm:"type:uuid;not null;index" json:"account_id"`
	CategoryID  *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	Type        TransactionType `gorm:"not null" json:"type"`
	Amount      int64           `gorm:"type:bigint;not null" json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Scope       Scope           `gorm:"not null;default:'personal'" json:"scope"`

	InvoicePaymentID *string `gorm:"type:uuid;index" json:"invoice_payment_id,omitempty"`

	// Relationships
	Account        Account         `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Category       *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	InvoicePayment *InvoicePayment `gorm:"foreignKey:InvoicePaymentID" json:"invoice_payment,omitempty"`
}

package models

import "time"

// InvoiceItemStatus represents the lifecycle state of an invoice line item.
type InvoiceItemStatus string

const (
	InvoiceItemStatusPending  InvoiceItemStatus = "pending"
	InvoiceItemStatusPaid     InvoiceItemStatus = "paid"
	InvoiceItemStatusCanceled InvoiceItemStatus = "canceled"
)

// StatementMonthLayout is the canonical format for statement months.
const StatementMonthLayout = "2006-01"

// InvoiceItem is a single scheduled charge against a card for one statement
// month. Purchases split into installments produce one row per installment,
// each carrying its position and the original purchase amount. PaymentID is
// set by the payment service and cleared by reversal.
type InvoiceItem struct {
	Base
	CardID         string            `gorm:"type:uuid;not null;index" json:"card_id"`
	CategoryID     *string           `gorm:"type:uuid" json:"category_id,omitempty"`
	StatementMonth string            `gorm:"not null;index" json:"statement_month"`
	Description    string            `json:"description"`
	Amount         int64             `gorm:"type:bigint;not null" json:"amount"`
	DueDate        time.Time         `gorm:"not null" json:"due_date"`
	Status         InvoiceItemStatus `gorm:"not null;default:'pending'" json:"status"`
	PaidAt         *time.Time        `json:"paid_at,omitempty"`
	PaymentID      *string           `gorm:"type:uuid;index" json:"payment_id,omitempty"`

	// Installment metadata, set only when the purchase was split.
	InstallmentNumber *int   `json:"installment_number,omitempty"`
	InstallmentTotal  *int   `json:"installment_total,omitempty"`
	OriginalAmount    *int64 `gorm:"type:bigint" json:"original_amount,omitempty"`

	// Relationships
	Card     Card      `gorm:"foreignKey:CardID" json:"card,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

package models

import "time"

// InvoicePayment records one invoice payment event for a card and statement
// month. The ledger transaction created alongside it references this row by
// ID, so reversal never has to match transactions by description or date.
// ReversedAt is set when the payment has been undone. A partial unique
// index allows at most one live full payment per card and month.
type InvoicePayment struct {
	Base
	CardID         string     `gorm:"type:uuid;not null;index;uniqueIndex:idx_invoice_payments_full_once,where:partial = false AND reversed_at IS NULL AND deleted_at IS NULL" json:"card_id"`
	AccountID      string     `gorm:"type:uuid;not null" json:"account_id"`
	StatementMonth string     `gorm:"not null;index;uniqueIndex:idx_invoice_payments_full_once" json:"statement_month"`
	Amount         int64      `gorm:"type:bigint;not null" json:"amount"`
	PaymentDate    time.Time  `gorm:"not null" json:"payment_date"`
	Partial        bool       `gorm:"not null;default:false" json:"partial"`
	ReversedAt     *time.Time `json:"reversed_at,omitempty"`

	// Relationships
	Card    Card    `gorm:"foreignKey:CardID" json:"card,omitempty"`
	Account Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

// Reversed reports whether this payment has already been undone.
func (p *InvoicePayment) Reversed() bool {
	return p.ReversedAt != nil
}

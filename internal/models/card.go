package models

// Card represents a credit card. ClosingDay decides which statement month a
// purchase lands on; DueDay places the invoice due date in the following
// month. Cards with linked invoice items are deactivated instead of deleted.
type Card struct {
	Base
	Name        string `gorm:"not null" json:"name"`
	Scope       Scope  `gorm:"not null;default:'personal'" json:"scope"`
	CreditLimit int64  `gorm:"type:bigint;not null" json:"credit_limit"`
	ClosingDay  int    `gorm:"not null" json:"closing_day"`
	DueDay      int    `gorm:"not null" json:"due_day"`
	AccountID   string `gorm:"type:uuid;not null" json:"account_id"`
	Color       string `json:"color"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	// Relationships
	Account      Account       `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	InvoiceItems []InvoiceItem `gorm:"foreignKey:CardID" json:"invoice_items,omitempty"`
}

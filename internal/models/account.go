package models

// Account represents a bank account. Balance is a materialized value in
// cents, adjusted only inside the transaction/payment service transactions
// that create or remove ledger entries.
type Account struct {
	Base
	Name        string `gorm:"not null" json:"name"`
	Scope       Scope  `gorm:"not null;default:'personal'" json:"scope"`
	Description string `json:"description"`
	Balance     int64  `gorm:"type:bigint;not null;default:0" json:"balance"`
	Currency    string `gorm:"not null;default:'BRL'" json:"currency"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}

package models

// CategoryType says which side of the ledger a category classifies.
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category labels transactions, invoice items and goals. The (name, type)
// pair is unique among live rows; the type is fixed after creation so a
// goal's income/expense semantics cannot change underneath it.
type Category struct {
	Base
	Name        string       `gorm:"not null" json:"name"`
	Type        CategoryType `gorm:"not null" json:"type"`
	Description string       `json:"description"`
	Icon        string       `json:"icon"`
	Color       string       `json:"color"`
}

package models

import "time"

// GoalType represents whether a goal targets income or spending.
type GoalType string

const (
	GoalTypeIncome  GoalType = "income"
	GoalTypeExpense GoalType = "expense"
)

// GoalStatus is the computed classification of a goal's progress.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusFailed    GoalStatus = "failed"
)

// Goal is a budget target over a date range. Category-scoped goals sum
// transactions of their category; general goals sum every transaction of
// their type. Progress is never persisted, it is recomputed on read.
type Goal struct {
	Base
	Name        string     `gorm:"not null" json:"name"`
	Type        GoalType   `gorm:"not null" json:"type"`
	CategoryID  *string    `gorm:"type:uuid" json:"category_id,omitempty"`
	AmountLimit int64      `gorm:"type:bigint;not null" json:"amount_limit"`
	StartDate   time.Time  `gorm:"not null" json:"start_date"`
	EndDate     time.Time  `gorm:"not null" json:"end_date"`
	Scope       Scope      `gorm:"not null;default:'personal'" json:"scope"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

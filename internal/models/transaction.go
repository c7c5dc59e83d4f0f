package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single expense recorded in an input currency together
// with its amount converted to the canonical currency.
type Transaction struct {
	Base
	UserID                 string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID             string          `gorm:"type:uuid;not null;index" json:"category_id"`
	SubcategoryID          string          `gorm:"type:uuid;not null;index" json:"subcategory_id"`
	Amount                 decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency               string          `gorm:"size:3;not null;default:USD" json:"currency"`
	CanonicalAmount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"canonical_amount"`
	Description            string          `gorm:"size:200" json:"description"`
	Date                   time.Time       `gorm:"not null;index" json:"date"`
	BudgetID               *string         `gorm:"type:uuid;index" json:"budget_id,omitempty"`
	RecurringTransactionID *string         `gorm:"type:uuid;index" json:"recurring_transaction_id,omitempty"`

	// Relationships
	Category    *Category    `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Subcategory *Subcategory `gorm:"foreignKey:SubcategoryID" json:"subcategory,omitempty"`
	Budget      *Budget      `gorm:"foreignKey:BudgetID;constraint:OnDelete:SET NULL" json:"budget,omitempty"`
}

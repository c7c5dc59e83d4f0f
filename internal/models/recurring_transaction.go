package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is how often a recurring transaction repeats.
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// RecurringTransaction is a template expanded into concrete transactions
// when it is created.
type RecurringTransaction struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID    string          `gorm:"type:uuid;not null;index" json:"category_id"`
	SubcategoryID string          `gorm:"type:uuid;not null;index" json:"subcategory_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency      string          `gorm:"size:3;not null;default:USD" json:"currency"`
	Description   string          `gorm:"size:200" json:"description"`
	StartDate     time.Time       `gorm:"not null" json:"start_date"`
	EndDate       time.Time       `gorm:"not null" json:"end_date"`
	Frequency     Frequency       `gorm:"size:10;not null;default:monthly" json:"frequency"`
	DayOfMonth    int             `gorm:"not null" json:"day_of_month"`
	IsActive      bool            `gorm:"not null;default:true" json:"is_active"`

	Transactions []Transaction `gorm:"foreignKey:RecurringTransactionID;constraint:OnDelete:SET NULL" json:"-"`
}

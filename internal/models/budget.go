package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBudgetLimit is applied when a budget is created without a ceiling.
var DefaultBudgetLimit = decimal.NewFromInt(5000)

// Budget is a spending ceiling over an inclusive date range.
type Budget struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string          `gorm:"not null;size:100" json:"name"`
	TotalLimit decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_limit"`
	StartDate  time.Time       `gorm:"not null" json:"start_date"`
	EndDate    time.Time       `gorm:"not null" json:"end_date"`
}

// Covers reports whether date falls within the budget's inclusive range.
func (b *Budget) Covers(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(b.StartDate)) && !d.After(DateOnly(b.EndDate))
}

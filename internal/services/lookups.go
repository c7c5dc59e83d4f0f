package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pennywise/internal/amount"
	"pennywise/internal/currency"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
)

func findCategory(db *gorm.DB, userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

func findSubcategory(db *gorm.DB, userID, subcategoryID string) (*models.Subcategory, error) {
	var subcategory models.Subcategory
	if err := db.Where("id = ? AND user_id = ?", subcategoryID, userID).First(&subcategory).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSubcategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &subcategory, nil
}

func findBudget(db *gorm.DB, userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// checkCategoryPair verifies that both ids belong to the user and that the
// subcategory sits under the category.
func checkCategoryPair(db *gorm.DB, userID, categoryID, subcategoryID string) error {
	if categoryID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category_id is required")
	}
	if subcategoryID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "subcategory_id is required")
	}
	if _, err := findCategory(db, userID, categoryID); err != nil {
		return err
	}
	subcategory, err := findSubcategory(db, userID, subcategoryID)
	if err != nil {
		return err
	}
	if subcategory.CategoryID != categoryID {
		return apperrors.ErrSubcategoryMismatch
	}
	return nil
}

// checkBudgetCovers verifies that the budget belongs to the user and that
// date lies within its range.
func checkBudgetCovers(db *gorm.DB, userID, budgetID string, date time.Time) (*models.Budget, error) {
	budget, err := findBudget(db, userID, budgetID)
	if err != nil {
		return nil, err
	}
	if !budget.Covers(date) {
		return nil, apperrors.ErrDateOutsideBudget
	}
	return budget, nil
}

// resolvedAmount is the outcome of the evaluate and convert phases of a write.
type resolvedAmount struct {
	Amount    decimal.Decimal
	Currency  string
	Canonical decimal.Decimal
}

// amountResolver evaluates an amount expression and converts it to the
// canonical currency.
type amountResolver struct {
	currency CurrencyNormalizer
}

func (r amountResolver) resolve(ctx context.Context, expr, code string) (*resolvedAmount, error) {
	value, err := amount.Evaluate(expr)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidExpression, err.Error())
	}

	if code == "" {
		code = r.currency.Canonical()
	}
	if err := r.currency.ValidateCode(ctx, code); err != nil {
		return nil, currencyError(err)
	}

	canonical, err := r.currency.Normalize(ctx, value, code)
	if err != nil {
		return nil, currencyError(err)
	}

	return &resolvedAmount{Amount: value, Currency: code, Canonical: canonical}, nil
}

func currencyError(err error) error {
	if errors.Is(err, currency.ErrUnsupportedCurrency) {
		return apperrors.WithMessage(apperrors.ErrUnsupportedCurrency, err.Error())
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

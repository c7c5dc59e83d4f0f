package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db      *gorm.DB
	amounts amountResolver
	now     func() time.Time
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, currency CurrencyNormalizer) TransactionServicer {
	return &transactionService{
		db:      db,
		amounts: amountResolver{currency: currency},
		now:     time.Now,
	}
}

// CreateTransaction validates references, evaluates the amount, converts it
// to the canonical currency and only then persists the record.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, input TransactionInput) (*models.Transaction, error) {
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	date = models.DateOnly(date)

	if err := checkCategoryPair(s.db, userID, input.CategoryID, input.SubcategoryID); err != nil {
		return nil, err
	}

	budgetID := normalizeOptionalID(input.BudgetID)
	if budgetID != nil {
		if _, err := checkBudgetCovers(s.db, userID, *budgetID, date); err != nil {
			return nil, err
		}
	}

	resolved, err := s.amounts.resolve(ctx, input.Amount, strings.ToUpper(strings.TrimSpace(input.Currency)))
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:          userID,
		CategoryID:      input.CategoryID,
		SubcategoryID:   input.SubcategoryID,
		Amount:          resolved.Amount,
		Currency:        resolved.Currency,
		CanonicalAmount: resolved.Canonical,
		Description:     strings.TrimSpace(input.Description),
		Date:            date,
		BudgetID:        budgetID,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return transaction, nil
}

func normalizeOptionalID(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	return &trimmed
}

// GetUserTransactions retrieves a paginated, filtered list of the user's
// transactions, newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if filter.FromDate != nil && filter.ToDate != nil && filter.FromDate.After(*filter.ToDate) {
		return nil, apperrors.ErrInvalidDateRange
	}

	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter).Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Category").Preload("Subcategory").
		Order("date DESC").Order("created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", models.DateOnly(*f.FromDate))
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", models.DateOnly(*f.ToDate))
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.SubcategoryID != nil {
		q = q.Where("subcategory_id = ?", *f.SubcategoryID)
	}
	if f.BudgetID != nil {
		q = q.Where("budget_id = ?", *f.BudgetID)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Category").Preload("Subcategory").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies a partial update. Changing the amount or the
// currency re-runs evaluation and conversion before anything is written.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, update TransactionUpdate) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	categoryID, subcategoryID := transaction.CategoryID, transaction.SubcategoryID
	if update.CategoryID != nil {
		categoryID = *update.CategoryID
	}
	if update.SubcategoryID != nil {
		subcategoryID = *update.SubcategoryID
	}
	if update.CategoryID != nil || update.SubcategoryID != nil {
		if err := checkCategoryPair(s.db, userID, categoryID, subcategoryID); err != nil {
			return nil, err
		}
	}

	date := transaction.Date
	if update.Date != nil {
		date = models.DateOnly(*update.Date)
	}

	budgetID := transaction.BudgetID
	switch {
	case update.ClearBudget:
		budgetID = nil
	case update.BudgetID != nil:
		budgetID = normalizeOptionalID(update.BudgetID)
	}
	if budgetID != nil && (update.BudgetID != nil || update.Date != nil) {
		if _, err := checkBudgetCovers(s.db, userID, *budgetID, date); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"category_id":    categoryID,
		"subcategory_id": subcategoryID,
		"date":           date,
		"budget_id":      budgetID,
	}
	if update.Description != nil {
		updates["description"] = strings.TrimSpace(*update.Description)
	}

	if update.Amount != nil || update.Currency != nil {
		expr := transaction.Amount.StringFixed(2)
		if update.Amount != nil {
			expr = *update.Amount
		}
		code := transaction.Currency
		if update.Currency != nil {
			code = strings.ToUpper(strings.TrimSpace(*update.Currency))
		}

		resolved, err := s.amounts.resolve(ctx, expr, code)
		if err != nil {
			return nil, err
		}
		updates["amount"] = resolved.Amount
		updates["currency"] = resolved.Currency
		updates["canonical_amount"] = resolved.Canonical
	}

	if err := s.db.Model(&transaction).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetTransactionByID(userID, transactionID)
}

// DeleteTransaction deletes a transaction
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	result := s.db.Where("id = ? AND user_id = ?", transactionID, userID).Delete(&models.Transaction{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/logger"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/recurrence"
)

const recurringInsertBatchSize = 100

// recurringTransactionService handles recurring rules and their expansion.
type recurringTransactionService struct {
	db      *gorm.DB
	amounts amountResolver
	now     func() time.Time
}

// NewRecurringTransactionService creates a new RecurringTransactionServicer.
func NewRecurringTransactionService(db *gorm.DB, currency CurrencyNormalizer) RecurringTransactionServicer {
	return &recurringTransactionService{
		db:      db,
		amounts: amountResolver{currency: currency},
		now:     time.Now,
	}
}

// CreateRecurringTransaction stores the rule and every transaction it
// expands into, or nothing at all. The amount is converted once, before the
// database transaction opens.
func (s *recurringTransactionService) CreateRecurringTransaction(ctx context.Context, userID string, input RecurringInput) (*RecurringResult, error) {
	start, end := models.DateOnly(input.StartDate), models.DateOnly(input.EndDate)
	if start.After(end) {
		return nil, apperrors.ErrInvalidDateRange
	}

	dates, err := recurrence.Expand(recurrence.Rule{
		Start:      start,
		End:        end,
		Frequency:  string(input.Frequency),
		DayOfMonth: input.DayOfMonth,
	})
	if err != nil {
		if errors.Is(err, recurrence.ErrInvalidRule) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidRecurrence, err.Error())
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := checkCategoryPair(s.db, userID, input.CategoryID, input.SubcategoryID); err != nil {
		return nil, err
	}

	resolved, err := s.amounts.resolve(ctx, input.Amount, strings.ToUpper(strings.TrimSpace(input.Currency)))
	if err != nil {
		return nil, err
	}

	rule := &models.RecurringTransaction{
		UserID:        userID,
		CategoryID:    input.CategoryID,
		SubcategoryID: input.SubcategoryID,
		Amount:        resolved.Amount,
		Currency:      resolved.Currency,
		Description:   strings.TrimSpace(input.Description),
		StartDate:     start,
		EndDate:       end,
		Frequency:     input.Frequency,
		DayOfMonth:    input.DayOfMonth,
		IsActive:      true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rule).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(dates) == 0 {
			return nil
		}

		instances := make([]models.Transaction, 0, len(dates))
		for _, date := range dates {
			ruleID := rule.ID
			instances = append(instances, models.Transaction{
				UserID:                 userID,
				CategoryID:             rule.CategoryID,
				SubcategoryID:          rule.SubcategoryID,
				Amount:                 rule.Amount,
				Currency:               rule.Currency,
				CanonicalAmount:        resolved.Canonical,
				Description:            rule.Description,
				Date:                   date,
				RecurringTransactionID: &ruleID,
			})
		}
		if err := tx.CreateInBatches(instances, recurringInsertBatchSize).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("expanded recurring transaction",
		"user_id", userID,
		"recurring_transaction_id", rule.ID,
		"frequency", rule.Frequency,
		"instances", len(dates),
	)

	return &RecurringResult{RecurringTransaction: rule, TransactionsCreated: len(dates)}, nil
}

// GetUserRecurringTransactions lists the user's active rules.
func (s *recurringTransactionService) GetUserRecurringTransactions(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.RecurringTransaction], error) {
	page.Defaults()

	base := s.db.Model(&models.RecurringTransaction{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rules []models.RecurringTransaction
	if err := base.Order("start_date ASC").Scopes(pagination.Paginate(page)).Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(rules, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetRecurringTransactionByID retrieves a rule by ID for a specific user
func (s *recurringTransactionService) GetRecurringTransactionByID(userID, recurringID string) (*models.RecurringTransaction, error) {
	return findRecurring(s.db, userID, recurringID)
}

func findRecurring(db *gorm.DB, userID, recurringID string) (*models.RecurringTransaction, error) {
	var rule models.RecurringTransaction
	if err := db.Where("id = ? AND user_id = ?", recurringID, userID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rule, nil
}

// DeleteRecurringTransaction removes the rule's instances dated today or
// later and deactivates the rule. Past instances are kept. It returns the
// number of instances removed.
func (s *recurringTransactionService) DeleteRecurringTransaction(userID, recurringID string) (int64, error) {
	today := models.DateOnly(s.now().UTC())

	var removed int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		rule, err := findRecurring(tx, userID, recurringID)
		if err != nil {
			return err
		}

		result := tx.Where("user_id = ? AND recurring_transaction_id = ? AND date >= ?", userID, rule.ID, today).
			Delete(&models.Transaction{})
		if result.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		removed = result.RowsAffected

		if err := tx.Model(rule).Update("is_active", false).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}

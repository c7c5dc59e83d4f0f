package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/logger"
	"pennywise/internal/models"
)

// reassignmentService moves references off categories and subcategories
// that are being deleted.
type reassignmentService struct{}

// NewReassignmentService creates a new ReassignmentServicer.
func NewReassignmentService() ReassignmentServicer {
	return &reassignmentService{}
}

// EnsureUncategorized returns the user's sentinel category and its sentinel
// subcategory, creating either when missing.
func (s *reassignmentService) EnsureUncategorized(tx *gorm.DB, userID string) (*models.Category, *models.Subcategory, error) {
	var category models.Category
	err := tx.Where("user_id = ? AND name = ?", userID, models.UncategorizedName).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		category = models.Category{UserID: userID, Name: models.UncategorizedName}
		err = tx.Create(&category).Error
	}
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var subcategory models.Subcategory
	err = tx.Where("user_id = ? AND category_id = ? AND name = ?", userID, category.ID, models.UncategorizedName).
		First(&subcategory).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		subcategory = models.Subcategory{UserID: userID, CategoryID: category.ID, Name: models.UncategorizedName}
		err = tx.Create(&subcategory).Error
	}
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &category, &subcategory, nil
}

// ReassignCategory moves every transaction and recurring rule under category
// to the sentinel pair and deletes the category's subcategories. The
// category row itself is left for the caller to delete.
func (s *reassignmentService) ReassignCategory(tx *gorm.DB, userID string, category *models.Category) (*ReassignmentResult, error) {
	target, targetSub, err := s.EnsureUncategorized(tx, userID)
	if err != nil {
		return nil, err
	}
	if category.ID == target.ID {
		return nil, apperrors.ErrProtectedCategory
	}

	var subcategories []models.Subcategory
	if err := tx.Where("user_id = ? AND category_id = ?", userID, category.ID).Find(&subcategories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &ReassignmentResult{}
	for i := range subcategories {
		moved, err := s.moveSubcategory(tx, userID, subcategories[i].ID, target, targetSub)
		if err != nil {
			return nil, err
		}
		result.Transactions += moved.Transactions
		result.RecurringTransactions += moved.RecurringTransactions

		if err := tx.Delete(&subcategories[i]).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result.DeletedSubcategories++
	}

	// Rows whose subcategory already belonged elsewhere.
	updates := map[string]interface{}{"category_id": target.ID, "subcategory_id": targetSub.ID}
	txResult := tx.Model(&models.Transaction{}).
		Where("user_id = ? AND category_id = ?", userID, category.ID).
		Updates(updates)
	if txResult.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, txResult.Error)
	}
	result.Transactions += txResult.RowsAffected

	ruleResult := tx.Model(&models.RecurringTransaction{}).
		Where("user_id = ? AND category_id = ?", userID, category.ID).
		Updates(updates)
	if ruleResult.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, ruleResult.Error)
	}
	result.RecurringTransactions += ruleResult.RowsAffected

	logger.Get().Infow("reassigned category references",
		"user_id", userID,
		"category_id", category.ID,
		"transactions", result.Transactions,
		"recurring_transactions", result.RecurringTransactions,
		"deleted_subcategories", result.DeletedSubcategories,
	)

	return result, nil
}

// ReassignSubcategory moves the subcategory's transactions and recurring
// rules to the sentinel pair. The subcategory row is left for the caller.
func (s *reassignmentService) ReassignSubcategory(tx *gorm.DB, userID string, subcategory *models.Subcategory) (*ReassignmentResult, error) {
	target, targetSub, err := s.EnsureUncategorized(tx, userID)
	if err != nil {
		return nil, err
	}
	if subcategory.ID == targetSub.ID {
		return nil, apperrors.ErrProtectedCategory
	}

	result, err := s.moveSubcategory(tx, userID, subcategory.ID, target, targetSub)
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("reassigned subcategory references",
		"user_id", userID,
		"subcategory_id", subcategory.ID,
		"transactions", result.Transactions,
		"recurring_transactions", result.RecurringTransactions,
	)

	return result, nil
}

func (s *reassignmentService) moveSubcategory(tx *gorm.DB, userID, subcategoryID string, target *models.Category, targetSub *models.Subcategory) (*ReassignmentResult, error) {
	updates := map[string]interface{}{"category_id": target.ID, "subcategory_id": targetSub.ID}

	txResult := tx.Model(&models.Transaction{}).
		Where("user_id = ? AND subcategory_id = ?", userID, subcategoryID).
		Updates(updates)
	if txResult.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, txResult.Error)
	}

	ruleResult := tx.Model(&models.RecurringTransaction{}).
		Where("user_id = ? AND subcategory_id = ?", userID, subcategoryID).
		Updates(updates)
	if ruleResult.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, ruleResult.Error)
	}

	return &ReassignmentResult{
		Transactions:          txResult.RowsAffected,
		RecurringTransactions: ruleResult.RowsAffected,
	}, nil
}

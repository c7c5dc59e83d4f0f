package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// subcategoryService handles subcategory-related business logic.
type subcategoryService struct {
	db           *gorm.DB
	reassignment ReassignmentServicer
}

// NewSubcategoryService creates a new SubcategoryServicer.
func NewSubcategoryService(db *gorm.DB, reassignment ReassignmentServicer) SubcategoryServicer {
	return &subcategoryService{db: db, reassignment: reassignment}
}

// CreateSubcategory creates a subcategory under one of the user's categories.
func (s *subcategoryService) CreateSubcategory(userID, categoryID, name string) (*models.Subcategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "subcategory name is required")
	}

	if _, err := findCategory(s.db, userID, categoryID); err != nil {
		return nil, err
	}

	if err := s.checkDuplicate(userID, categoryID, name, ""); err != nil {
		return nil, err
	}

	subcategory := &models.Subcategory{UserID: userID, CategoryID: categoryID, Name: name}
	if err := s.db.Create(subcategory).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return subcategory, nil
}

func (s *subcategoryService) checkDuplicate(userID, categoryID, name, excludeID string) error {
	q := s.db.Model(&models.Subcategory{}).
		Where("user_id = ? AND category_id = ? AND name = ?", userID, categoryID, name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateSubcategory
	}
	return nil
}

// GetUserSubcategories retrieves a paginated list of subcategories,
// optionally restricted to one category.
func (s *subcategoryService) GetUserSubcategories(userID string, categoryID *string, page pagination.PageRequest) (*pagination.PageResponse[models.Subcategory], error) {
	page.Defaults()

	base := s.db.Model(&models.Subcategory{}).Where("user_id = ?", userID)
	if categoryID != nil {
		base = base.Where("category_id = ?", *categoryID)
	}
	base = base.Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var subcategories []models.Subcategory
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&subcategories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(subcategories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetSubcategoryByID retrieves a subcategory by ID for a specific user
func (s *subcategoryService) GetSubcategoryByID(userID, subcategoryID string) (*models.Subcategory, error) {
	return findSubcategory(s.db, userID, subcategoryID)
}

// UpdateSubcategory renames a subcategory
func (s *subcategoryService) UpdateSubcategory(userID, subcategoryID, name string) (*models.Subcategory, error) {
	subcategory, err := findSubcategory(s.db, userID, subcategoryID)
	if err != nil {
		return nil, err
	}
	if subcategory.Name == models.UncategorizedName {
		return nil, apperrors.WithMessage(apperrors.ErrProtectedCategory, "this subcategory cannot be renamed")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "subcategory name is required")
	}
	if name == subcategory.Name {
		return subcategory, nil
	}
	if err := s.checkDuplicate(userID, subcategory.CategoryID, name, subcategoryID); err != nil {
		return nil, err
	}

	if err := s.db.Model(subcategory).Update("name", name).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return subcategory, nil
}

// DeleteSubcategory moves the subcategory's transactions and recurring rules
// to "Uncategorized" and deletes it.
func (s *subcategoryService) DeleteSubcategory(userID, subcategoryID string) (*ReassignmentResult, error) {
	var result *ReassignmentResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		subcategory, err := findSubcategory(tx, userID, subcategoryID)
		if err != nil {
			return err
		}

		moved, err := s.reassignment.ReassignSubcategory(tx, userID, subcategory)
		if err != nil {
			return err
		}

		if err := tx.Delete(subcategory).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		moved.DeletedSubcategories = 1
		result = moved
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
